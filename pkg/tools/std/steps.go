package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/poncho-cookbook/pkg/tools"
)

// Step — один шаг UI автоматизации, полученный из tool call.
type Step struct {
	Action string `json:"action"`
	XPath  string `json:"xpath"`
	Value  string `json:"value,omitempty"`
}

// String возвращает шаг в читаемом виде.
func (s Step) String() string {
	if s.Value == "" {
		return fmt.Sprintf("%s %s", s.Action, s.XPath)
	}
	return fmt.Sprintf("%s %s = %q", s.Action, s.XPath, s.Value)
}

// ParseStep разбирает результат click/enter обратно в Step.
func ParseStep(output string) (Step, error) {
	var s Step
	if err := json.Unmarshal([]byte(output), &s); err != nil {
		return Step{}, fmt.Errorf("invalid step output: %w", err)
	}
	return s, nil
}

// ClickArgs — аргументы click.
type ClickArgs struct {
	XPath string `json:"xpath"`
}

// EnterArgs — аргументы enter.
type EnterArgs struct {
	XPath string `json:"xpath"`
	Value string `json:"value"`
}

func marshalStep(s Step) (string, error) {
	out, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Инструменты ничего не выполняют: они фиксируют шаги, которые модель
// извлекла из тест-кейса.
func newClickTool() (tools.Tool, error) {
	return tools.NewTyped(tools.ToolDefinition{
		Name:        string(KindClick),
		Description: "Clicks the button",
		Parameters: tools.ObjectSchema(map[string]tools.Property{
			"xpath": tools.String("The xpath locator of the button to click"),
		}, "xpath"),
	}, func(ctx context.Context, args ClickArgs) (string, error) {
		return marshalStep(Step{Action: string(KindClick), XPath: args.XPath})
	})
}

func newEnterTool() (tools.Tool, error) {
	return tools.NewTyped(tools.ToolDefinition{
		Name:        string(KindEnter),
		Description: "Enters the text, number or date in the input field",
		Parameters: tools.ObjectSchema(map[string]tools.Property{
			"xpath": tools.String("The xpath locator of the input field"),
			"value": tools.String("The value to enter in the input field"),
		}, "xpath", "value"),
	}, func(ctx context.Context, args EnterArgs) (string, error) {
		return marshalStep(Step{Action: string(KindEnter), XPath: args.XPath, Value: args.Value})
	})
}
