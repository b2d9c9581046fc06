// Утилита recipe-assistant: полный сценарий с recipe API.
//
// Модель выбирает findRecipe или getNutritionInfo и сокращает запрос до
// поискового термина, инструмент обращается к recipe API, затем follow-up
// запрос превращает результат в ответ на естественном языке.
//
// Использование:
//
//	recipe-assistant [query]
//
// По умолчанию query = "Nutrition of Mutton curry".
package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/ilkoid/poncho-cookbook/internal/agent"
	"github.com/ilkoid/poncho-cookbook/internal/app"
	"github.com/ilkoid/poncho-cookbook/internal/ui"
	"github.com/ilkoid/poncho-cookbook/pkg/chain"
	"github.com/ilkoid/poncho-cookbook/pkg/tools/std"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

const defaultQuery = "Nutrition of Mutton curry"

//go:embed prompt.yaml
var promptYAML []byte

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recipe-assistant: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	query := defaultQuery
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	ctx, shutdown := utils.SetupGracefulShutdown()
	defer shutdown()

	// 1. Конфиг и клиенты: все переменные окружения проверяются здесь
	components, err := app.Initialize(app.Options{WithRecipes: true})
	if err != nil {
		return err
	}

	// 2. Completion с retry: единственное место, где он включён
	provider, err := components.RetryingLLM()
	if err != nil {
		return err
	}

	registry, err := std.NewRegistry(std.Deps{Recipes: components.Recipes}, std.RecipeTools...)
	if err != nil {
		return err
	}

	msgs, opts, err := app.RenderPrompt(promptYAML, query)
	if err != nil {
		return err
	}

	orchestrator, err := agent.New(agent.Config{
		LLM:      provider,
		Registry: registry,
		Continue: true,
		Options:  opts,
	})
	if err != nil {
		return err
	}

	out := ui.Stdout()
	out.Header("Recipe assistant")
	out.User(query)

	// 3. Запрос → tool call → follow-up
	conv := chain.NewConversation(msgs...)
	result, err := orchestrator.Run(ctx, conv)
	if err != nil {
		return err
	}

	for _, o := range result.Outcomes {
		out.ToolCall(o.Name, o.Args, o.Output)
	}
	if len(result.Outcomes) == 0 {
		out.Line("No tool calls found (finish reason: %s)", result.FinishReason)
	}
	out.Answer(result.Content)
	return nil
}
