// Утилита recipe-search: один запрос, выбор инструмента и сырой результат.
//
// Follow-up запроса нет: программа печатает выбранный инструмент,
// оптимизированный поисковый запрос и то, что вернул recipe API.
//
// Использование:
//
//	recipe-search [query]
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
	"github.com/ilkoid/poncho-cookbook/pkg/recipes"
	"github.com/ilkoid/poncho-cookbook/pkg/tools/std"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

const defaultQuery = " nutrition of White Sauce Pasta with garlic naan is ?"

//go:embed prompt.yaml
var promptYAML []byte

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recipe-search: %v\n", err)
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

	components, err := app.Initialize(app.Options{WithRecipes: true})
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

	orchestrator, err := agent.New(agent.Config{LLM: components.LLM, Registry: registry, Options: opts})
	if err != nil {
		return err
	}

	out := ui.Stdout()
	out.Header("Recipe search")
	out.User(query)

	conv := chain.NewConversation(msgs...)
	result, err := orchestrator.Run(ctx, conv)
	if err != nil {
		return err
	}

	if len(result.Outcomes) == 0 {
		out.Line("No tool calls found")
		out.Line("Finish reason: %s", result.FinishReason)
		return nil
	}

	for _, o := range result.Outcomes {
		out.Line("Function name: %s", o.Name)
		if args, err := agent.DecodeStructured[std.SearchArgs](o.Args); err == nil {
			out.Line("Optimized query: %s", args.SearchQuery)
		}
		printOutput(out, o)
	}
	return nil
}

// printOutput печатает результат инструмента; нутриенты по одному в строке.
func printOutput(out *ui.Printer, o chain.ToolOutcome) {
	if o.Status != chain.StatusOK {
		out.Line("%s: %s", o.Status, o.Output)
		return
	}

	nutrition, err := agent.DecodeStructured[struct {
		Recipe    string             `json:"recipe"`
		Nutrients []recipes.Nutrient `json:"nutrients"`
	}](o.Output)
	if err != nil || len(nutrition.Nutrients) == 0 {
		out.Answer(o.Output)
		return
	}

	out.Answer(nutrition.Recipe)
	for _, n := range nutrition.Nutrients {
		out.Line("  %s", n.String())
	}
}
