// Утилита test-steps: превращает шаги тест-кейса в вызовы click/enter.
//
// Few-shot диалог показывает модели пример разбора; ответ — упорядоченный
// список tool calls, которые печатаются как шаги автоматизации.
package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/ilkoid/poncho-cookbook/internal/agent"
	"github.com/ilkoid/poncho-cookbook/internal/app"
	"github.com/ilkoid/poncho-cookbook/internal/ui"
	"github.com/ilkoid/poncho-cookbook/pkg/chain"
	"github.com/ilkoid/poncho-cookbook/pkg/tools/std"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

//go:embed prompt.yaml
var promptYAML []byte

const defaultCase = `
1: Click Sales in Site Navigation App
2: Click on the Add New button
4: Click om Logout button
3: Enter the name as 'John Doe' and click on the Save button
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "test-steps: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	testCase := defaultCase
	if len(os.Args) > 1 {
		raw, err := os.ReadFile(os.Args[1])
		if err != nil {
			return fmt.Errorf("read test case: %w", err)
		}
		testCase = string(raw)
	}

	ctx, shutdown := utils.SetupGracefulShutdown()
	defer shutdown()

	components, err := app.Initialize(app.Options{})
	if err != nil {
		return err
	}

	registry, err := std.NewRegistry(std.Deps{}, std.StepTools...)
	if err != nil {
		return err
	}

	msgs, opts, err := app.RenderPrompt(promptYAML, testCase)
	if err != nil {
		return err
	}

	orchestrator, err := agent.New(agent.Config{LLM: components.LLM, Registry: registry, Options: opts})
	if err != nil {
		return err
	}

	out := ui.Stdout()
	out.Header("Test steps")
	out.User(testCase)

	conv := chain.NewConversation(msgs...)
	result, err := orchestrator.Run(ctx, conv)
	if err != nil {
		return err
	}

	if len(result.Outcomes) == 0 {
		out.Line("No steps generated (finish reason: %s)", result.FinishReason)
		out.Answer(result.Content)
		return nil
	}

	for i, o := range result.Outcomes {
		if o.Status != chain.StatusOK {
			out.Line("%d. skipped %s: %s", i+1, o.Name, o.Status)
			continue
		}
		step, err := std.ParseStep(o.Output)
		if err != nil {
			return err
		}
		out.Line("%d. %s", i+1, step)
	}
	return nil
}
