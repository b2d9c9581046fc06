package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// HandlerFunc обрабатывает уже разобранные и проверенные аргументы.
type HandlerFunc[A any] func(ctx context.Context, args A) (string, error)

// Typed — инструмент с типизированными аргументами.
//
// Execute снимает markdown-обёртку, проверяет JSON, валидирует его по
// Parameters и декодирует в A до вызова handler.
type Typed[A any] struct {
	def     ToolDefinition
	schema  *gojsonschema.Schema
	handler HandlerFunc[A]
}

// NewTyped собирает типизированный инструмент.
//
// Схема компилируется сразу: ошибка в Parameters обнаруживается при старте,
// а не при первом tool call.
func NewTyped[A any](def ToolDefinition, handler HandlerFunc[A]) (*Typed[A], error) {
	if err := validateToolDefinition(def); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("tool '%s': handler is required", def.Name)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(map[string]any(def.Parameters)))
	if err != nil {
		return nil, fmt.Errorf("tool '%s': invalid parameters schema: %w", def.Name, err)
	}

	return &Typed[A]{def: def, schema: schema, handler: handler}, nil
}

// Definition возвращает определение инструмента.
func (t *Typed[A]) Definition() ToolDefinition {
	return t.def
}

// Decode разбирает и валидирует аргументы без вызова handler.
func (t *Typed[A]) Decode(argsJSON string) (A, error) {
	var args A

	clean := utils.CleanJsonBlock(argsJSON)
	if clean == "" {
		clean = "{}"
	}
	if !json.Valid([]byte(clean)) {
		return args, &ArgumentError{Tool: t.def.Name, Kind: ErrMalformedArguments, Details: truncate(clean, 200)}
	}

	result, err := t.schema.Validate(gojsonschema.NewStringLoader(clean))
	if err != nil {
		return args, &ArgumentError{Tool: t.def.Name, Kind: ErrMalformedArguments, Details: err.Error()}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return args, &ArgumentError{Tool: t.def.Name, Kind: ErrInvalidArguments, Details: strings.Join(msgs, "; ")}
	}

	if err := json.Unmarshal([]byte(clean), &args); err != nil {
		return args, &ArgumentError{Tool: t.def.Name, Kind: ErrInvalidArguments, Details: err.Error()}
	}
	return args, nil
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
func (t *Typed[A]) Execute(ctx context.Context, argsJSON string) (string, error) {
	args, err := t.Decode(argsJSON)
	if err != nil {
		return "", err
	}
	return t.handler(ctx, args)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
