// Утилита json-check: запрос с response_format json_object.
//
// Отказ в авторизации печатается отдельно от прочих ошибок, чтобы сразу
// было видно, что проблема в ключе, а не в запросе.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilkoid/poncho-cookbook/internal/app"
	"github.com/ilkoid/poncho-cookbook/internal/ui"
	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// В json_object режиме слово "json" должно быть в сообщении
const defaultPrompt = "json Mumbai is the capital of Chandigarh?"

//go:embed prompt.yaml
var promptYAML []byte

func main() {
	os.Exit(run())
}

// run возвращает код выхода: 2 — отказ в авторизации, 1 — прочие ошибки.
func run() int {
	prompt := defaultPrompt
	if len(os.Args) > 1 {
		prompt = strings.Join(os.Args[1:], " ")
	}

	ctx, shutdown := utils.SetupGracefulShutdown()
	defer shutdown()

	out := ui.Stdout()

	components, err := app.Initialize(app.Options{})
	if err != nil {
		out.Error(err)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	msgs, opts, err := app.RenderPrompt(promptYAML, prompt)
	if err != nil {
		out.Error(err)
		return 1
	}

	resp, err := components.LLM.Generate(ctx, msgs, opts...)
	switch {
	case errors.Is(err, llm.ErrAuthentication):
		out.Line("Authentication failed: %v", err)
		return 2
	case err != nil:
		out.Error(err)
		return 1
	}

	fmt.Println(resp.Message.Content)
	return 0
}
