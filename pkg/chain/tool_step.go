package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/tools"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// DefaultToolTimeout — защитный timeout выполнения одного инструмента.
const DefaultToolTimeout = 30 * time.Second

// UnknownToolPolicy определяет реакцию на вызов незарегистрированного инструмента.
type UnknownToolPolicy int

const (
	// UnknownToolSkip — логировать и не добавлять tool сообщение.
	UnknownToolSkip UnknownToolPolicy = iota
	// UnknownToolSynthesize — добавить tool сообщение с текстом ошибки.
	UnknownToolSynthesize
	// UnknownToolAbort — прервать выполнение с ErrToolNotFound.
	UnknownToolAbort
)

// String возвращает имя политики для логов.
func (p UnknownToolPolicy) String() string {
	switch p {
	case UnknownToolSynthesize:
		return "synthesize"
	case UnknownToolAbort:
		return "abort"
	default:
		return "skip"
	}
}

// Status — итог обработки одного tool call.
type Status string

const (
	StatusOK               Status = "ok"
	StatusUnknownTool      Status = "unknown_tool"
	StatusInvalidArguments Status = "invalid_arguments"
	StatusFailed           Status = "failed"
)

// ToolOutcome — результат обработки одного tool call.
//
// Output — текст tool сообщения. Для StatusUnknownTool при политике
// UnknownToolSkip сообщение не добавляется и Output пустой.
type ToolOutcome struct {
	CallID   string
	Name     string
	Args     string
	Output   string
	Status   Status
	Err      error
	Duration time.Duration
}

// Appended сообщает, попал ли результат в историю как tool сообщение.
func (o ToolOutcome) Appended() bool {
	return o.Status != StatusUnknownTool || o.Output != ""
}

// ToolExecutionStep выполняет tool calls из assistant сообщения.
//
// Вызовы обрабатываются строго по порядку; tool сообщения добавляются
// в историю в том же порядке, каждое с ToolCallID исходного вызова.
type ToolExecutionStep struct {
	registry *tools.Registry
	policy   UnknownToolPolicy

	// defaultToolTimeout — если tool не завершится за это время, он будет отменён
	defaultToolTimeout time.Duration

	// toolTimeouts — переопределение timeout для конкретных инструментов
	toolTimeouts map[string]time.Duration
}

// NewToolExecutionStep создаёт step поверх реестра инструментов.
func NewToolExecutionStep(registry *tools.Registry, policy UnknownToolPolicy) *ToolExecutionStep {
	return &ToolExecutionStep{
		registry:           registry,
		policy:             policy,
		defaultToolTimeout: DefaultToolTimeout,
	}
}

// Execute выполняет все tool calls сообщения msg и добавляет результаты в conv.
//
// Ошибки аргументов и ошибки обработчика не прерывают выполнение: модель
// получает "Error: ..." и может исправиться. Наружу возвращаются только
// отмена контекста и ErrToolNotFound при политике UnknownToolAbort.
func (s *ToolExecutionStep) Execute(ctx context.Context, conv *Conversation, msg llm.Message) ([]ToolOutcome, error) {
	outcomes := make([]ToolOutcome, 0, len(msg.ToolCalls))

	for _, tc := range msg.ToolCalls {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome, err := s.executeToolCall(ctx, tc)
		outcomes = append(outcomes, outcome)
		if err != nil {
			return outcomes, err
		}

		if outcome.Appended() {
			conv.Append(llm.ToolMessage(outcome.Output, tc.ID))
		}
	}

	return outcomes, nil
}

// executeToolCall выполняет один tool call.
//
// "Raw In, String Out": аргументы уходят в инструмент как JSON строка,
// результат возвращается строкой.
func (s *ToolExecutionStep) executeToolCall(ctx context.Context, tc llm.ToolCall) (ToolOutcome, error) {
	start := time.Now()
	outcome := ToolOutcome{
		CallID: tc.ID,
		Name:   tc.Name,
		Args:   tc.Args,
	}

	tool, err := s.registry.Get(tc.Name)
	if err != nil {
		outcome.Status = StatusUnknownTool
		outcome.Err = err
		utils.Warn("Unknown tool requested",
			"tool", tc.Name,
			"call_id", tc.ID,
			"policy", s.policy.String())

		switch s.policy {
		case UnknownToolSynthesize:
			outcome.Output = fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
		case UnknownToolAbort:
			return outcome, err
		}
		return outcome, nil
	}

	timeout := s.defaultToolTimeout
	if custom, ok := s.toolTimeouts[tc.Name]; ok {
		timeout = custom
	}
	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type execResult struct {
		output string
		err    error
	}
	resultChan := make(chan execResult, 1)

	go func() {
		out, execErr := tool.Execute(toolCtx, tc.Args)
		resultChan <- execResult{out, execErr}
	}()

	select {
	case <-toolCtx.Done():
		outcome.Duration = time.Since(start)
		// Отмена внешнего контекста прерывает весь run
		if ctx.Err() != nil {
			outcome.Status = StatusFailed
			outcome.Err = ctx.Err()
			return outcome, ctx.Err()
		}
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("tool execution timeout after %v", timeout)
		outcome.Output = fmt.Sprintf("Error: tool '%s' exceeded timeout of %v", tc.Name, timeout)
		utils.Warn("Tool execution timeout", "tool", tc.Name, "timeout", timeout.String())
		return outcome, nil

	case res := <-resultChan:
		outcome.Duration = time.Since(start)
		switch {
		case res.err == nil:
			outcome.Status = StatusOK
			outcome.Output = res.output
		case errors.Is(res.err, tools.ErrMalformedArguments), errors.Is(res.err, tools.ErrInvalidArguments):
			outcome.Status = StatusInvalidArguments
			outcome.Err = res.err
			outcome.Output = fmt.Sprintf("Error: %v", res.err)
		case ctx.Err() != nil:
			outcome.Status = StatusFailed
			outcome.Err = res.err
			return outcome, ctx.Err()
		default:
			outcome.Status = StatusFailed
			outcome.Err = res.err
			outcome.Output = fmt.Sprintf("Error: %v", res.err)
		}

		if outcome.Err != nil {
			utils.Warn("Tool execution failed",
				"tool", tc.Name,
				"call_id", tc.ID,
				"status", string(outcome.Status),
				"error", outcome.Err.Error())
		} else {
			utils.Debug("Tool executed",
				"tool", tc.Name,
				"call_id", tc.ID,
				"duration_ms", outcome.Duration.Milliseconds())
		}
		return outcome, nil
	}
}

// SetDefaultToolTimeout устанавливает защитный timeout для всех инструментов.
//
// Вызывать до начала Execute().
func (s *ToolExecutionStep) SetDefaultToolTimeout(timeout time.Duration) {
	s.defaultToolTimeout = timeout
}

// SetToolTimeout устанавливает индивидуальный timeout для конкретного инструмента.
func (s *ToolExecutionStep) SetToolTimeout(toolName string, timeout time.Duration) {
	if s.toolTimeouts == nil {
		s.toolTimeouts = make(map[string]time.Duration)
	}
	s.toolTimeouts[toolName] = timeout
}
