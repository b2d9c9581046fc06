// Утилита city-info: несколько tool calls в одном ответе и structured output.
//
// Модель вызывает getWeather и getFavouriteFood для нескольких городов,
// результаты добавляются в диалог, а follow-up запрос с response_format
// json_schema возвращает список ответов на вопросы пользователя.
package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/ilkoid/poncho-cookbook/internal/agent"
	"github.com/ilkoid/poncho-cookbook/internal/app"
	"github.com/ilkoid/poncho-cookbook/internal/ui"
	"github.com/ilkoid/poncho-cookbook/pkg/chain"
	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/tools/std"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

const defaultQuery = "What is the temperature in New York and mumbai? What is the favourite food in Mumbai?"

//go:embed prompt.yaml
var promptYAML []byte

// Answer — ответ на один вопрос пользователя.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answers — structured output follow-up запроса.
type Answers struct {
	Answers []Answer `json:"answers"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "city-info: %v\n", err)
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

	components, err := app.Initialize(app.Options{})
	if err != nil {
		return err
	}

	schema, err := jsonschema.GenerateSchemaForType(Answers{})
	if err != nil {
		return fmt.Errorf("generate answers schema: %w", err)
	}

	registry, err := std.NewRegistry(std.Deps{}, std.CityTools...)
	if err != nil {
		return err
	}

	msgs, opts, err := app.RenderPrompt(promptYAML, query)
	if err != nil {
		return err
	}

	orchestrator, err := agent.New(agent.Config{
		LLM:             components.LLM,
		Options:         opts,
		Registry:        registry,
		Continue:        true,
		FollowUpOptions: []llm.GenerateOption{llm.WithJSONSchema("answers", schema)},
		// Без результата на каждый вызов follow-up запрос невалиден
		UnknownToolPolicy: chain.UnknownToolSynthesize,
	})
	if err != nil {
		return err
	}

	out := ui.Stdout()
	out.Header("City info")
	out.User(query)

	conv := chain.NewConversation(msgs...)
	result, err := orchestrator.Run(ctx, conv)
	if err != nil {
		return err
	}

	for _, o := range result.Outcomes {
		out.ToolCall(o.Name, o.Args, o.Output)
	}

	if !result.FollowUp {
		out.Answer(result.Content)
		return nil
	}

	answers, err := agent.DecodeStructured[Answers](result.Content)
	if err != nil {
		return err
	}
	rows := make([][2]string, 0, len(answers.Answers))
	for _, a := range answers.Answers {
		rows = append(rows, [2]string{a.Question, a.Answer})
	}
	out.Table(rows)
	return nil
}
