package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	def ToolDefinition
}

func (s stubTool) Definition() ToolDefinition { return s.def }

func (s stubTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	return "ok", nil
}

func cityTool(name string) stubTool {
	return stubTool{def: ToolDefinition{
		Name:        name,
		Description: "city lookup",
		Parameters: ObjectSchema(map[string]Property{
			"city": String("The name of the city"),
		}, "city"),
	}}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(cityTool("getWeather")))

	tool, err := r.Get("getWeather")
	require.NoError(t, err)
	assert.Equal(t, "getWeather", tool.Definition().Name)

	_, err = r.Get("getStockPrice")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegistry_DefinitionsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"getWeather", "getFavouriteFood", "click", "enter"} {
		require.NoError(t, r.Register(cityTool(name)))
	}

	defs := r.Definitions()
	require.Len(t, defs, 4)
	assert.Equal(t, "getWeather", defs[0].Name)
	assert.Equal(t, "getFavouriteFood", defs[1].Name)
	assert.Equal(t, "click", defs[2].Name)
	assert.Equal(t, "enter", defs[3].Name)
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(cityTool("getWeather")))
	assert.Error(t, r.Register(cityTool("getWeather")))
}

func TestValidateToolDefinition(t *testing.T) {
	tests := []struct {
		name    string
		def     ToolDefinition
		wantErr string
	}{
		{
			name:    "empty name",
			def:     ToolDefinition{Parameters: JSONSchema{"type": "object"}},
			wantErr: "name cannot be empty",
		},
		{
			name:    "nil parameters",
			def:     ToolDefinition{Name: "x"},
			wantErr: "parameters cannot be nil",
		},
		{
			name:    "non-object type",
			def:     ToolDefinition{Name: "x", Parameters: JSONSchema{"type": "string"}},
			wantErr: "must be 'object'",
		},
		{
			name:    "required not array",
			def:     ToolDefinition{Name: "x", Parameters: JSONSchema{"type": "object", "required": "city"}},
			wantErr: "must be an array",
		},
		{
			name:    "required with non-string",
			def:     ToolDefinition{Name: "x", Parameters: JSONSchema{"type": "object", "required": []any{1}}},
			wantErr: "required[0] must be a string",
		},
		{
			name: "valid",
			def:  cityTool("getWeather").def,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateToolDefinition(tt.def)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
