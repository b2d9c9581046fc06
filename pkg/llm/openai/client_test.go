package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/tools"
)

// completionServer отвечает фиксированным телом и сохраняет последний запрос.
type completionServer struct {
	status   int
	body     string
	lastPath string
	lastReq  map[string]any
	lastAuth http.Header
}

func (s *completionServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lastPath = r.URL.Path + "?" + r.URL.RawQuery
		s.lastAuth = r.Header.Clone()
		s.lastReq = map[string]any{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&s.lastReq))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}
}

func newTestClient(t *testing.T, provider string, srv *completionServer) *Client {
	t.Helper()
	ts := httptest.NewServer(srv.handler(t))
	t.Cleanup(ts.Close)

	endpoint := ts.URL
	if provider == "openai" {
		endpoint = ts.URL + "/v1"
	}
	client, err := NewClient(config.LLMConfig{
		Provider: provider,
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "gpt-4o-deploy",
	})
	require.NoError(t, err)
	return client
}

const toolCallsBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": "",
      "tool_calls": [
        {"id": "call_1", "type": "function", "function": {"name": "getWeather", "arguments": "{\"city\":\"New York\"}"}},
        {"id": "call_2", "type": "function", "function": {"name": "getWeather", "arguments": "{\"city\":\"Mumbai\"}"}}
      ]
    }
  }]
}`

const stopBody = `{
  "id": "chatcmpl-2",
  "object": "chat.completion",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "It is sunny."}}]
}`

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{"azure", config.LLMConfig{Provider: "azure", Endpoint: "https://x.openai.azure.com", APIKey: "k", Model: "gpt-4o"}, false},
		{"azure without endpoint", config.LLMConfig{Provider: "azure", APIKey: "k", Model: "gpt-4o"}, true},
		{"openai default base url", config.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o"}, false},
		{"unknown provider", config.LLMConfig{Provider: "ollama", APIKey: "k", Model: "llama"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Model, client.model)
			assert.NotNil(t, client.api)
		})
	}
}

func TestGenerate_AzureToolCalls(t *testing.T) {
	srv := &completionServer{status: http.StatusOK, body: toolCallsBody}
	client := newTestClient(t, "azure", srv)

	defs := []tools.ToolDefinition{{
		Name:        "getWeather",
		Description: "Get the weather information for a specific city",
		Parameters: tools.ObjectSchema(map[string]tools.Property{
			"city": tools.String("The name of the city"),
		}, "city"),
	}}

	resp, err := client.Generate(context.Background(),
		[]llm.Message{llm.SystemMessage("You are a city assistant"), llm.UserMessage("Weather in New York and Mumbai?")},
		llm.WithTools(defs))
	require.NoError(t, err)

	assert.True(t, resp.WantsTools())
	require.Len(t, resp.Message.ToolCalls, 2)
	assert.Equal(t, llm.ToolCall{ID: "call_1", Name: "getWeather", Args: `{"city":"New York"}`}, resp.Message.ToolCalls[0])
	assert.Equal(t, "call_2", resp.Message.ToolCalls[1].ID)

	// Azure: deployment в пути, api-version в query, ключ в заголовке api-key
	assert.Contains(t, srv.lastPath, "/openai/deployments/gpt-4o-deploy/chat/completions")
	assert.Contains(t, srv.lastPath, "api-version=2024-08-01-preview")
	assert.Equal(t, "test-key", srv.lastAuth.Get("api-key"))

	assert.Equal(t, "auto", srv.lastReq["tool_choice"])
	reqTools, ok := srv.lastReq["tools"].([]any)
	require.True(t, ok)
	require.Len(t, reqTools, 1)
}

func TestGenerate_SendsToolHistory(t *testing.T) {
	srv := &completionServer{status: http.StatusOK, body: stopBody}
	client := newTestClient(t, "openai", srv)

	history := []llm.Message{
		llm.UserMessage("Weather in Mumbai?"),
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "getWeather", Args: `{"city":"Mumbai"}`}}},
		llm.ToolMessage("75 degrees", "call_1"),
	}

	resp, err := client.Generate(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, llm.FinishStop, resp.FinishReason)
	assert.Equal(t, "It is sunny.", resp.Message.Content)
	assert.Equal(t, llm.RoleAssistant, resp.Message.Role)

	msgs, ok := srv.lastReq["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)

	assistant := msgs[1].(map[string]any)
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].(map[string]any)["id"])

	tool := msgs[2].(map[string]any)
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_1", tool["tool_call_id"])

	_, hasTools := srv.lastReq["tools"]
	assert.False(t, hasTools, "no tools option means no tools in payload")
}

func TestGenerate_ResponseFormats(t *testing.T) {
	type answer struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	schema, err := jsonschema.GenerateSchemaForType(answer{})
	require.NoError(t, err)

	t.Run("json_object", func(t *testing.T) {
		srv := &completionServer{status: http.StatusOK, body: stopBody}
		client := newTestClient(t, "openai", srv)

		_, err := client.Generate(context.Background(), []llm.Message{llm.UserMessage("json please")}, llm.WithFormat(llm.FormatJSONObject))
		require.NoError(t, err)

		format := srv.lastReq["response_format"].(map[string]any)
		assert.Equal(t, "json_object", format["type"])
	})

	t.Run("json_schema", func(t *testing.T) {
		srv := &completionServer{status: http.StatusOK, body: stopBody}
		client := newTestClient(t, "openai", srv)

		_, err := client.Generate(context.Background(), []llm.Message{llm.UserMessage("answers")}, llm.WithJSONSchema("answer", schema))
		require.NoError(t, err)

		format := srv.lastReq["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		js := format["json_schema"].(map[string]any)
		assert.Equal(t, "answer", js["name"])
		assert.Equal(t, true, js["strict"])
	})

	t.Run("json_schema without schema", func(t *testing.T) {
		client := newTestClient(t, "openai", &completionServer{status: http.StatusOK, body: stopBody})
		_, err := client.Generate(context.Background(), nil, llm.WithFormat(llm.FormatJSONSchema))
		assert.Error(t, err)
	})
}

func TestGenerate_AuthenticationError(t *testing.T) {
	srv := &completionServer{
		status: http.StatusUnauthorized,
		body:   `{"error": {"code": "401", "message": "Access denied due to invalid subscription key."}}`,
	}
	client := newTestClient(t, "azure", srv)

	_, err := client.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrAuthentication)
}

func TestGenerate_ServerErrorIsNotAuth(t *testing.T) {
	srv := &completionServer{
		status: http.StatusInternalServerError,
		body:   `{"error": {"message": "internal"}}`,
	}
	client := newTestClient(t, "openai", srv)

	_, err := client.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	require.Error(t, err)
	assert.False(t, errors.Is(err, llm.ErrAuthentication))
	assert.True(t, strings.HasPrefix(err.Error(), "openai api error"))
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := &completionServer{status: http.StatusOK, body: `{"id": "x", "choices": []}`}
	client := newTestClient(t, "openai", srv)

	_, err := client.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	assert.ErrorIs(t, err, llm.ErrNoChoices)
}

func TestConvertToolsToOpenAI(t *testing.T) {
	input := []tools.ToolDefinition{
		{
			Name:        "click",
			Description: "Clicks the button",
			Parameters:  tools.ObjectSchema(map[string]tools.Property{"xpath": tools.String("locator")}, "xpath"),
		},
	}

	result := convertToolsToOpenAI(input)
	require.Len(t, result, 1)
	assert.Equal(t, openai.ToolTypeFunction, result[0].Type)
	assert.Equal(t, "click", result[0].Function.Name)
	assert.Equal(t, "Clicks the button", result[0].Function.Description)
	assert.NotNil(t, result[0].Function.Parameters)
}

func TestMapToOpenAI_RoundTripToolCalls(t *testing.T) {
	in := llm.Message{
		Role:      llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{ID: "call_9", Name: "enter", Args: `{"xpath":"//a","value":"x"}`}},
	}

	out := mapFromOpenAI(mapToOpenAI(in))
	assert.Equal(t, in, out)
}

func TestRetryProvider_RetriesClientTimeout(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)

	client, err := NewClient(config.LLMConfig{
		Provider: "openai",
		Endpoint: ts.URL + "/v1",
		APIKey:   "test-key",
		Model:    "gpt-4o",
		Timeout:  50 * time.Millisecond,
	})
	require.NoError(t, err)

	provider, err := llm.NewRetryProvider(client, llm.RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(3), hits.Load())
}
