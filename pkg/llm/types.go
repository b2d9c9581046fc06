// Базовые типы - универсальный язык общения с моделями.
package llm

import "errors"

// Role — роль автора сообщения.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message — одно сообщение диалога.
//
// ToolCalls заполнены у assistant сообщения, которое просит вызвать функции.
// ToolCallID заполнен у tool сообщения и указывает на исходный ToolCall.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall — запрос модели на вызов функции.
//
// Args — JSON строка аргументов в том виде, в каком её прислала модель.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"arguments"`
}

// FinishReason — причина завершения генерации.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
)

// Response — ответ completion endpoint.
type Response struct {
	Message      Message
	FinishReason FinishReason
}

// WantsTools сообщает, что модель запросила вызов инструментов.
func (r Response) WantsTools() bool {
	return r.FinishReason == FinishToolCalls
}

var (
	// ErrAuthentication — endpoint отклонил ключ (HTTP 401/403).
	ErrAuthentication = errors.New("authentication failed")

	// ErrNoChoices — в ответе нет ни одного варианта.
	ErrNoChoices = errors.New("no choices in response")
)

// SystemMessage создаёт system сообщение.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage создаёт user сообщение.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage создаёт assistant сообщение (few-shot примеры).
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage создаёт tool сообщение с результатом вызова toolCallID.
func ToolMessage(content, toolCallID string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}
