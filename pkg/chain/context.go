// Package chain содержит историю диалога и шаг выполнения tool calls.
package chain

import (
	"sync"

	"github.com/ilkoid/poncho-cookbook/pkg/llm"
)

// Conversation — упорядоченная история сообщений диалога.
//
// Thread-safe через sync.RWMutex.
// Все изменения истории должны проходить через методы этого типа.
type Conversation struct {
	mu       sync.RWMutex
	messages []llm.Message
}

// NewConversation создаёт диалог с начальными сообщениями.
func NewConversation(msgs ...llm.Message) *Conversation {
	c := &Conversation{messages: make([]llm.Message, 0, len(msgs)+4)}
	c.messages = append(c.messages, msgs...)
	return c
}

// Append добавляет сообщения в конец истории (thread-safe).
func (c *Conversation) Append(msgs ...llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// Messages возвращает копию истории (thread-safe).
func (c *Conversation) Messages() []llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]llm.Message, len(c.messages))
	copy(result, c.messages)
	return result
}

// Len возвращает число сообщений.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last возвращает копию последнего сообщения или nil для пустой истории.
func (c *Conversation) Last() *llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return nil
	}
	msg := c.messages[len(c.messages)-1]
	return &msg
}

// PendingToolCalls возвращает вызовы последнего assistant сообщения с
// tool calls, на которые в истории нет tool сообщения с тем же ID.
//
// Endpoint отклоняет запрос, в котором остался такой "висящий" вызов.
func (c *Conversation) PendingToolCalls() []llm.ToolCall {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := -1
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == llm.RoleAssistant && len(c.messages[i].ToolCalls) > 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	answered := make(map[string]bool)
	for _, m := range c.messages[idx+1:] {
		if m.Role == llm.RoleTool {
			answered[m.ToolCallID] = true
		}
	}

	var pending []llm.ToolCall
	for _, tc := range c.messages[idx].ToolCalls {
		if !answered[tc.ID] {
			pending = append(pending, tc)
		}
	}
	return pending
}
