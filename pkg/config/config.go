// Package config загружает настройки демо-программ.
//
// Источники (в порядке применения):
//  1. .env файл в текущей директории (если есть)
//  2. YAML файл с подстановкой ${VAR}
//  3. Переменные окружения ENDPOINT, OPENAI_KEY, MODEL, SPOONACULAR_API_KEY
//     для полей, которые остались пустыми
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Имена переменных окружения.
const (
	EnvEndpoint     = "ENDPOINT"
	EnvOpenAIKey    = "OPENAI_KEY"
	EnvModel        = "MODEL"
	EnvSpoonacular  = "SPOONACULAR_API_KEY"
	DefaultEnvFile  = ".env"
	DefaultYAMLFile = "config.yaml"
)

// ErrMissingConfig возвращается, если не задана обязательная настройка.
var ErrMissingConfig = errors.New("missing required configuration")

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	LLM     LLMConfig     `yaml:"llm"`
	Recipes RecipesConfig `yaml:"recipes"`
	Retry   RetryConfig   `yaml:"retry"`
	Log     LogConfig     `yaml:"log"`
}

// LLMConfig — параметры chat completion endpoint.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`    // "azure" или "openai"
	Endpoint    string        `yaml:"endpoint"`    // Azure endpoint или custom base URL
	APIKey      string        `yaml:"api_key"`     // Поддерживает ${VAR}
	Model       string        `yaml:"model"`       // Имя модели или Azure deployment
	APIVersion  string        `yaml:"api_version"` // Только для azure
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GetDefaults возвращает копию с дефолтными значениями для незаполненных полей.
func (c LLMConfig) GetDefaults() LLMConfig {
	if c.Provider == "" {
		c.Provider = "azure"
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-08-01-preview"
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// RecipesConfig — параметры recipe API (Spoonacular).
type RecipesConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	RateLimit     int           `yaml:"rate_limit"`     // Запросов в минуту
	BurstLimit    int           `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int           `yaml:"retry_attempts"` // Попытки на сетевые ошибки и 429
	Timeout       string        `yaml:"timeout"`        // Например "30s"
	CacheSizeMB   int           `yaml:"cache_size_mb"`
	CacheTTL      time.Duration `yaml:"cache_ttl"` // 0 отключает кэш поиска
	NutrientLimit int           `yaml:"nutrient_limit"`
}

// GetDefaults возвращает копию с дефолтными значениями для незаполненных полей.
func (c RecipesConfig) GetDefaults() RecipesConfig {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.spoonacular.com"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 60
	}
	if c.BurstLimit == 0 {
		c.BurstLimit = 1
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 3
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.CacheSizeMB == 0 {
		c.CacheSizeMB = 1
	}
	if c.NutrientLimit == 0 {
		c.NutrientLimit = 5
	}
	return c
}

// RetryConfig — параметры retry декоратора вокруг completion запроса.
type RetryConfig struct {
	Attempts  int           `yaml:"attempts"`   // Всего попыток, включая первую
	BaseDelay time.Duration `yaml:"base_delay"` // Стартовая задержка экспоненты
	MaxDelay  time.Duration `yaml:"max_delay"`
	Jitter    int           `yaml:"jitter_percent"`
}

// GetDefaults возвращает копию с дефолтными значениями для незаполненных полей.
func (c RetryConfig) GetDefaults() RetryConfig {
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 20 * time.Second
	}
	if c.Jitter == 0 {
		c.Jitter = 50
	}
	return c
}

// LogConfig — настройки логгера.
type LogConfig struct {
	File       string `yaml:"file"`  // Пусто — без файла
	Level      string `yaml:"level"` // debug, info, warn, error
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// GetDefaults возвращает копию с дефолтными значениями для незаполненных полей.
func (c LogConfig) GetDefaults() LogConfig {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	return c
}

// Load читает .env и YAML, подставляет ENV переменные и возвращает готовую структуру.
//
// Отсутствующий YAML файл не ошибка: конфигурация тогда берётся из окружения.
// Ошибка валидации возвращается до любого сетевого вызова.
func Load(path string) (*AppConfig, error) {
	// .env опционален, как load_dotenv
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}

	var cfg AppConfig

	rawBytes, err := os.ReadFile(path)
	switch {
	case err == nil:
		contentWithEnv := os.ExpandEnv(string(rawBytes))
		if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Работаем только на переменных окружения
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnv заполняет пустые поля из переменных окружения.
func (c *AppConfig) applyEnv() {
	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fill(&c.LLM.Endpoint, EnvEndpoint)
	fill(&c.LLM.APIKey, EnvOpenAIKey)
	fill(&c.LLM.Model, EnvModel)
	fill(&c.Recipes.APIKey, EnvSpoonacular)
}

func (c *AppConfig) applyDefaults() {
	c.LLM = c.LLM.GetDefaults()
	c.Recipes = c.Recipes.GetDefaults()
	c.Retry = c.Retry.GetDefaults()
	c.Log = c.Log.GetDefaults()
}

// validate проверяет обязательные поля.
//
// Для azure endpoint обязателен, для openai он опционален (дефолтный base URL).
func (c *AppConfig) validate() error {
	var missing []string
	if c.LLM.Endpoint == "" && c.LLM.Provider == "azure" {
		missing = append(missing, EnvEndpoint)
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if c.LLM.Model == "" {
		missing = append(missing, EnvModel)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	switch c.LLM.Provider {
	case "azure", "openai":
	default:
		return fmt.Errorf("llm.provider must be 'azure' or 'openai', got '%s'", c.LLM.Provider)
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be positive, got %d", c.Retry.Attempts)
	}
	return nil
}

// RequireRecipes проверяет, что ключ recipe API задан.
//
// Вызывается программами, которым нужен recipe API, до первого запроса.
func (c *AppConfig) RequireRecipes() error {
	if c.Recipes.APIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingConfig, EnvSpoonacular)
	}
	return nil
}
