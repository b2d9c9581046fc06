// Package agent реализует оркестрацию tool calls поверх llm.Provider.
//
// Один Run:
//   - отправляет диалог с определениями инструментов;
//   - при finish_reason "tool_calls" выполняет вызовы по порядку через
//     chain.ToolExecutionStep и добавляет tool сообщения с ID вызова;
//   - опционально делает второй (follow-up) запрос с расширенным диалогом.
//
// Обычный ответ возвращается без изменений и без обращений к реестру.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-cookbook/pkg/chain"
	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/tools"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// ErrDanglingToolCall — follow-up запрос невозможен: у tool call нет результата.
var ErrDanglingToolCall = errors.New("tool call without result")

// Orchestrator выполняет один цикл "запрос → tool calls → (follow-up)".
//
// Thread-safe через sync.Mutex: одновременные Run выполняются по очереди.
type Orchestrator struct {
	llm      llm.Provider
	registry *tools.Registry
	step     *chain.ToolExecutionStep

	continueAfterTools bool
	options            []llm.GenerateOption
	followUpOptions    []llm.GenerateOption

	mu sync.Mutex
}

// Config конфигурация для создания Orchestrator.
type Config struct {
	// LLM — провайдер языковой модели (обязательный)
	LLM llm.Provider

	// Registry — реестр инструментов, определения которых уходят в запрос (обязательный)
	Registry *tools.Registry

	// Continue — после tool calls сделать follow-up запрос
	Continue bool

	// Options — опции первого запроса (tools добавляются автоматически)
	Options []llm.GenerateOption

	// FollowUpOptions — опции follow-up запроса поверх Options (без tools).
	// Если пусто, используются те же tools, что и в первом запросе.
	FollowUpOptions []llm.GenerateOption

	// UnknownToolPolicy — реакция на вызов незарегистрированного инструмента
	UnknownToolPolicy chain.UnknownToolPolicy

	// ToolTimeout — timeout одного инструмента (0 — chain.DefaultToolTimeout)
	ToolTimeout time.Duration
}

// Result — итог одного Run.
type Result struct {
	// RunID — идентификатор запуска, есть во всех его логах
	RunID string

	// Content — текст финального ответа модели. Пустой, если были tool calls
	// и Continue выключен.
	Content string

	// FinishReason — причина завершения последнего запроса
	FinishReason llm.FinishReason

	// Outcomes — результаты tool calls в порядке их следования
	Outcomes []chain.ToolOutcome

	// FollowUp — был ли сделан follow-up запрос
	FollowUp bool
}

// Outputs возвращает тексты успешно выполненных инструментов.
func (r Result) Outputs() []string {
	out := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == chain.StatusOK {
			out = append(out, o.Output)
		}
	}
	return out
}

// UnknownTools возвращает имена инструментов, которых не было в реестре.
func (r Result) UnknownTools() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status == chain.StatusUnknownTool {
			names = append(names, o.Name)
		}
	}
	return names
}

// New создаёт новый Orchestrator с заданной конфигурацией.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("cfg.LLM is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("cfg.Registry is required")
	}

	step := chain.NewToolExecutionStep(cfg.Registry, cfg.UnknownToolPolicy)
	if cfg.ToolTimeout > 0 {
		step.SetDefaultToolTimeout(cfg.ToolTimeout)
	}

	return &Orchestrator{
		llm:                cfg.LLM,
		registry:           cfg.Registry,
		step:               step,
		continueAfterTools: cfg.Continue,
		options:            cfg.Options,
		followUpOptions:    cfg.FollowUpOptions,
	}, nil
}

// Run выполняет запрос для диалога conv.
//
// Assistant сообщение и tool сообщения добавляются в conv, поэтому после
// Run диалог можно продолжать. Ошибки completion endpoint возвращаются
// как есть: повторы — забота декоратора llm.RetryProvider.
func (o *Orchestrator) Run(ctx context.Context, conv *chain.Conversation) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	result := Result{RunID: uuid.NewString()}
	start := time.Now()

	utils.Info("Orchestrator run started",
		"run_id", result.RunID,
		"messages_count", conv.Len(),
		"tools_count", o.registry.Len())

	toolOpts := append([]llm.GenerateOption{llm.WithTools(o.registry.Definitions())}, o.options...)
	resp, err := o.llm.Generate(ctx, conv.Messages(), toolOpts...)
	if err != nil {
		utils.Error("Completion request failed", "run_id", result.RunID, "error", err.Error())
		return result, fmt.Errorf("completion request: %w", err)
	}
	conv.Append(resp.Message)
	result.FinishReason = resp.FinishReason

	if !resp.WantsTools() {
		result.Content = resp.Message.Content
		utils.Info("Orchestrator run completed",
			"run_id", result.RunID,
			"finish_reason", string(resp.FinishReason),
			"duration_ms", time.Since(start).Milliseconds())
		return result, nil
	}

	outcomes, err := o.step.Execute(ctx, conv, resp.Message)
	result.Outcomes = outcomes
	if err != nil {
		return result, fmt.Errorf("tool execution: %w", err)
	}

	if !o.continueAfterTools {
		utils.Info("Orchestrator run completed without follow-up",
			"run_id", result.RunID,
			"tool_calls", len(outcomes),
			"duration_ms", time.Since(start).Milliseconds())
		return result, nil
	}

	if pending := conv.PendingToolCalls(); len(pending) > 0 {
		return result, fmt.Errorf("%w: '%s' (id %s)", ErrDanglingToolCall, pending[0].Name, pending[0].ID)
	}

	// FollowUpOptions дополняют опции промпта, а не заменяют их
	followOpts := toolOpts
	if len(o.followUpOptions) > 0 {
		followOpts = append(append([]llm.GenerateOption{}, o.options...), o.followUpOptions...)
	}
	followResp, err := o.llm.Generate(ctx, conv.Messages(), followOpts...)
	if err != nil {
		utils.Error("Follow-up request failed", "run_id", result.RunID, "error", err.Error())
		return result, fmt.Errorf("follow-up request: %w", err)
	}
	conv.Append(followResp.Message)

	result.FollowUp = true
	result.FinishReason = followResp.FinishReason
	result.Content = followResp.Message.Content

	utils.Info("Orchestrator run completed",
		"run_id", result.RunID,
		"tool_calls", len(outcomes),
		"finish_reason", string(followResp.FinishReason),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
