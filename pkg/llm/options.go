// Package llm provides options pattern for LLM generation parameters.
package llm

import (
	"encoding/json"

	"github.com/ilkoid/poncho-cookbook/pkg/tools"
)

// Response formats.
const (
	FormatText       = ""
	FormatJSONObject = "json_object"
	FormatJSONSchema = "json_schema"
)

// GenerateOptions holds parameters for a single completion request.
// Zero values mean "use the provider default".
type GenerateOptions struct {
	// Model overrides the model (deployment) configured on the provider.
	Model string

	Temperature *float64
	MaxTokens   int

	// Format is one of FormatText, FormatJSONObject, FormatJSONSchema.
	Format string

	// Schema is used when Format == FormatJSONSchema.
	Schema *ResponseSchema

	// Tools declared for this request. Empty means no function calling.
	Tools []tools.ToolDefinition

	// ToolChoice is "auto", "none" or "required". Defaults to "auto" when tools are set.
	ToolChoice string
}

// ResponseSchema describes a structured-output schema.
type ResponseSchema struct {
	Name   string
	Schema json.Marshaler
	Strict bool
}

// GenerateOption is a functional option for configuring GenerateOptions.
type GenerateOption func(*GenerateOptions)

// ApplyOptions folds options into GenerateOptions.
func ApplyOptions(opts ...GenerateOption) GenerateOptions {
	var o GenerateOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithModel sets the model for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature sets the temperature for generation.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = &temp
	}
}

// WithMaxTokens sets the maximum tokens for generation.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// WithFormat sets the response format, e.g. FormatJSONObject.
func WithFormat(format string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Format = format
	}
}

// WithJSONSchema requests structured output matching schema.
func WithJSONSchema(name string, schema json.Marshaler) GenerateOption {
	return func(o *GenerateOptions) {
		o.Format = FormatJSONSchema
		o.Schema = &ResponseSchema{Name: name, Schema: schema, Strict: true}
	}
}

// WithTools declares the tools the model may call.
func WithTools(defs []tools.ToolDefinition) GenerateOption {
	return func(o *GenerateOptions) {
		o.Tools = defs
	}
}

// WithToolChoice overrides the tool choice mode.
func WithToolChoice(choice string) GenerateOption {
	return func(o *GenerateOptions) {
		o.ToolChoice = choice
	}
}
