// Загрузка и Рендер - чтение файла и text/template.

package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/ilkoid/poncho-cookbook/pkg/llm"
)

// Parse парсит YAML промпта (например, встроенного через go:embed).
func Parse(data []byte) (*PromptFile, error) {
	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	if len(pf.Messages) == 0 {
		return nil, fmt.Errorf("prompt has no messages")
	}
	for i, msg := range pf.Messages {
		switch llm.Role(msg.Role) {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		default:
			return nil, fmt.Errorf("message #%d: unsupported role '%s'", i, msg.Role)
		}
	}
	return &pf, nil
}

// RenderMessages принимает данные (struct или map) и возвращает готовые сообщения
// где все {{.Field}} заменены на значения.
func (pf *PromptFile) RenderMessages(data any) ([]llm.Message, error) {
	rendered := make([]llm.Message, len(pf.Messages))

	for i, msg := range pf.Messages {
		tmpl, err := template.New("msg").Option("missingkey=error").Parse(msg.Content)
		if err != nil {
			return nil, fmt.Errorf("template parse error in message #%d (%s): %w", i, msg.Role, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("template execute error in message #%d: %w", i, err)
		}

		rendered[i] = newMessage(msg.Role, buf.String())
	}

	return rendered, nil
}

// Options переводит PromptConfig в опции запроса.
func (pf *PromptFile) Options() []llm.GenerateOption {
	var opts []llm.GenerateOption
	if pf.Config.Model != "" {
		opts = append(opts, llm.WithModel(pf.Config.Model))
	}
	if pf.Config.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*pf.Config.Temperature))
	}
	if pf.Config.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(pf.Config.MaxTokens))
	}
	if pf.Config.Format != "" {
		opts = append(opts, llm.WithFormat(pf.Config.Format))
	}
	if pf.Config.ToolChoice != "" {
		opts = append(opts, llm.WithToolChoice(pf.Config.ToolChoice))
	}
	return opts
}

// newMessage собирает сообщение по роли из YAML (роли проверены в Parse).
func newMessage(role, content string) llm.Message {
	switch llm.Role(role) {
	case llm.RoleSystem:
		return llm.SystemMessage(content)
	case llm.RoleAssistant:
		return llm.AssistantMessage(content)
	default:
		return llm.UserMessage(content)
	}
}
