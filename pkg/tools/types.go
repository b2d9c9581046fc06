// Интерфейс Tool, определения и ошибки диспетчеризации.

package tools

import (
	"context"
	"errors"
	"fmt"
)

// JSONSchema представляет JSON Schema для параметров инструмента.
//
// Формат соответствует JSON Schema для Function Calling API.
type JSONSchema map[string]any

// ToolDefinition описывает инструмент для LLM (Function Calling API format).
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"` // JSON Schema объекта аргументов
}

// Tool — контракт, который должен реализовать любой инструмент.
type Tool interface {
	// Definition возвращает описание инструмента для LLM.
	Definition() ToolDefinition

	// Execute выполняет логику инструмента.
	// argsJSON — сырой JSON с аргументами, который прислала LLM.
	Execute(ctx context.Context, argsJSON string) (string, error)
}

// Ошибки диспетчеризации. Проверяются через errors.Is.
var (
	ErrToolNotFound       = errors.New("tool not found")
	ErrMalformedArguments = errors.New("malformed tool arguments")
	ErrInvalidArguments   = errors.New("tool arguments do not match schema")
)

// ArgumentError описывает проблему с аргументами конкретного tool call.
//
// Kind — ErrMalformedArguments (не JSON) или ErrInvalidArguments (JSON не
// соответствует схеме).
type ArgumentError struct {
	Tool    string
	Kind    error
	Details string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tool '%s': %v: %s", e.Tool, e.Kind, e.Details)
}

func (e *ArgumentError) Unwrap() error {
	return e.Kind
}

// ObjectSchema собирает схему параметров вида {type: object, properties, required}.
func ObjectSchema(properties map[string]Property, required ...string) JSONSchema {
	props := make(map[string]any, len(properties))
	for name, p := range properties {
		props[name] = p.schema()
	}
	req := make([]any, 0, len(required))
	for _, r := range required {
		req = append(req, r)
	}
	return JSONSchema{
		"type":       "object",
		"properties": props,
		"required":   req,
	}
}

// Property — описание одного параметра {type, description}.
type Property struct {
	Type        string
	Description string
}

func (p Property) schema() map[string]any {
	return map[string]any{
		"type":        p.Type,
		"description": p.Description,
	}
}

// String — короткая запись строкового параметра.
func String(description string) Property {
	return Property{Type: "string", Description: description}
}
