package chain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-cookbook/pkg/llm"
)

func TestConversation_AppendAndCopy(t *testing.T) {
	conv := NewConversation(llm.SystemMessage("sys"))
	conv.Append(llm.UserMessage("hi"))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)

	// Изменение копии не влияет на историю
	msgs[0].Content = "changed"
	assert.Equal(t, "sys", conv.Messages()[0].Content)

	last := conv.Last()
	require.NotNil(t, last)
	assert.Equal(t, llm.RoleUser, last.Role)
}

func TestConversation_LastEmpty(t *testing.T) {
	assert.Nil(t, NewConversation().Last())
	assert.Nil(t, NewConversation().PendingToolCalls())
}

func TestConversation_PendingToolCalls(t *testing.T) {
	assistant := llm.Message{
		Role: llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "getWeather"},
			{ID: "call_2", Name: "getFavouriteFood"},
		},
	}

	conv := NewConversation(llm.UserMessage("q"), assistant)
	assert.Len(t, conv.PendingToolCalls(), 2)

	conv.Append(llm.ToolMessage("sunny", "call_1"))
	pending := conv.PendingToolCalls()
	require.Len(t, pending, 1)
	assert.Equal(t, "call_2", pending[0].ID)

	conv.Append(llm.ToolMessage("pizza", "call_2"))
	assert.Empty(t, conv.PendingToolCalls())

	// Ответ без tool calls не сбрасывает проверку предыдущего вызова
	conv.Append(llm.AssistantMessage("done"))
	assert.Empty(t, conv.PendingToolCalls())
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	conv := NewConversation()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv.Append(llm.UserMessage("x"))
			_ = conv.Messages()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, conv.Len())
}
