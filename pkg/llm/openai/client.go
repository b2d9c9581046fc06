// Package openai реализует адаптер llm.Provider для Azure OpenAI и
// OpenAI-совместимых API.
//
// Поддерживает Function Calling (tools) и structured output
// (response_format json_object / json_schema).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/tools"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// Client реализует интерфейс llm.Provider поверх go-openai.
type Client struct {
	api         *openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewClient создает клиент на основе конфигурации LLM.
//
// provider "azure": endpoint — адрес ресурса Azure, model — имя deployment.
// provider "openai": endpoint (если задан) — custom base URL.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	var clientCfg openai.ClientConfig
	switch cfg.Provider {
	case "azure":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("llm.endpoint is required for azure provider")
		}
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		clientCfg.APIVersion = cfg.APIVersion
		// Имя модели в запросе и есть имя deployment
		clientCfg.AzureModelMapperFunc = func(model string) string { return model }
	case "openai":
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			clientCfg.BaseURL = cfg.Endpoint
		}
	default:
		return nil, fmt.Errorf("unsupported llm provider '%s'", cfg.Provider)
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate выполняет запрос к API и возвращает ответ модели.
//
// Алгоритм:
//  1. Конвертирует сообщения в формат go-openai
//  2. Добавляет tools и response_format из опций
//  3. Вызывает API, классифицирует ошибку авторизации
//  4. Конвертирует первый choice обратно вместе с finish_reason
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (llm.Response, error) {
	startTime := time.Now()
	options := llm.ApplyOptions(opts...)

	req, err := c.buildRequest(messages, options)
	if err != nil {
		return llm.Response{}, err
	}

	utils.Debug("LLM request started",
		"model", req.Model,
		"messages_count", len(messages),
		"tools_count", len(options.Tools),
		"format", options.Format)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err.Error(),
			"model", req.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		if isAuthError(err) {
			return llm.Response{}, fmt.Errorf("%w: %v", llm.ErrAuthentication, err)
		}
		return llm.Response{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return llm.Response{}, llm.ErrNoChoices
	}

	choice := resp.Choices[0]
	result := llm.Response{
		Message:      mapFromOpenAI(choice.Message),
		FinishReason: llm.FinishReason(choice.FinishReason),
	}

	utils.Info("LLM response received",
		"model", req.Model,
		"finish_reason", string(result.FinishReason),
		"tool_calls_count", len(result.Message.ToolCalls),
		"content_length", len(result.Message.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

func (c *Client) buildRequest(messages []llm.Message, options llm.GenerateOptions) (openai.ChatCompletionRequest, error) {
	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    openaiMsgs,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
	}
	if options.Model != "" {
		req.Model = options.Model
	}
	if options.Temperature != nil {
		req.Temperature = float32(*options.Temperature)
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}

	if len(options.Tools) > 0 {
		req.Tools = convertToolsToOpenAI(options.Tools)
		req.ToolChoice = "auto"
		if options.ToolChoice != "" {
			req.ToolChoice = options.ToolChoice
		}
	}

	switch options.Format {
	case llm.FormatText:
	case llm.FormatJSONObject:
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	case llm.FormatJSONSchema:
		if options.Schema == nil || options.Schema.Schema == nil {
			return req, fmt.Errorf("json_schema format requires a schema")
		}
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   options.Schema.Name,
				Schema: options.Schema.Schema,
				Strict: options.Schema.Strict,
			},
		}
	default:
		return req, fmt.Errorf("unsupported response format '%s'", options.Format)
	}

	return req, nil
}

// isAuthError определяет отказ в авторизации по HTTP статусу.
func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized || reqErr.HTTPStatusCode == http.StatusForbidden
	}
	return false
}

// mapToOpenAI конвертирует наше сообщение в формат SDK.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}

	if len(m.ToolCalls) > 0 {
		msg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			msg.ToolCalls[i] = openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			}
		}
	}
	return msg
}

// mapFromOpenAI конвертирует сообщение SDK обратно в наш формат.
func mapFromOpenAI(m openai.ChatCompletionMessage) llm.Message {
	role := llm.Role(m.Role)
	if role == "" {
		role = llm.RoleAssistant
	}
	result := llm.Message{
		Role:    role,
		Content: m.Content,
	}

	if len(m.ToolCalls) > 0 {
		result.ToolCalls = make([]llm.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			result.ToolCalls[i] = llm.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments,
			}
		}
	}
	return result
}

// convertToolsToOpenAI конвертирует определения инструментов в формат
// OpenAI Function Calling.
//
// ToolDefinition.Parameters уже является JSON Schema объектом, поэтому
// передаётся в SDK как есть.
func convertToolsToOpenAI(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(defs))
	for i, def := range defs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}
	return result
}
