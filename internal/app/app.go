// Package app собирает зависимости демо-программ: конфиг, логгер,
// LLM провайдер и recipe клиент.
package app

import (
	"fmt"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
	"github.com/ilkoid/poncho-cookbook/pkg/llm"
	"github.com/ilkoid/poncho-cookbook/pkg/llm/openai"
	"github.com/ilkoid/poncho-cookbook/pkg/prompt"
	"github.com/ilkoid/poncho-cookbook/pkg/recipes"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// Components — инициализированные зависимости программы.
type Components struct {
	Config *config.AppConfig

	// LLM — клиент completion endpoint без retry
	LLM *openai.Client

	// Recipes — nil, если программа не просила recipe клиент
	Recipes *recipes.Client
}

// Options управляет тем, что собирает Initialize.
type Options struct {
	ConfigPath  string
	WithRecipes bool
}

// Initialize загружает конфигурацию и создаёт компоненты.
//
// Все обязательные переменные окружения проверяются до первого сетевого
// вызова. Логгер инициализируется до создания клиентов, поэтому
// вызывающий должен вызвать utils.Close (или shutdown из
// utils.SetupGracefulShutdown).
func Initialize(opts Options) (*Components, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultYAMLFile
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.WithRecipes {
		if err := cfg.RequireRecipes(); err != nil {
			return nil, err
		}
	}

	if err := utils.InitLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := openai.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	c := &Components{Config: cfg, LLM: client}

	if opts.WithRecipes {
		c.Recipes, err = recipes.NewFromConfig(cfg.Recipes)
		if err != nil {
			return nil, fmt.Errorf("create recipes client: %w", err)
		}
	}

	utils.Info("Components initialized",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"recipes", opts.WithRecipes)

	return c, nil
}

// RetryingLLM оборачивает LLM клиент в retry декоратор из конфигурации.
func (c *Components) RetryingLLM() (llm.Provider, error) {
	return llm.NewRetryProvider(c.LLM, llm.PolicyFromConfig(c.Config.Retry))
}

// PromptData — данные шаблона промпта программы.
type PromptData struct {
	Query string
}

// RenderPrompt разбирает встроенный YAML промпт и подставляет запрос.
//
// Возвращает сообщения начального диалога и опции модели из секции config.
func RenderPrompt(raw []byte, query string) ([]llm.Message, []llm.GenerateOption, error) {
	pf, err := prompt.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse prompt: %w", err)
	}
	msgs, err := pf.RenderMessages(PromptData{Query: query})
	if err != nil {
		return nil, nil, fmt.Errorf("render prompt: %w", err)
	}
	return msgs, pf.Options(), nil
}
