// Package recipes — клиент recipe API (Spoonacular-совместимый).
//
// Устроен как SDK: HTTP клиент с rate limiting, retry на сетевых ошибках
// и 429, классификацией ошибок и кэшем поиска. Ответ API с ошибкой или
// сетевой сбой логируются и трактуются как "не найдено" (nil, nil);
// наружу пробрасывается только отмена контекста.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент recipe API.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    HTTPClient
	retryAttempts int
	nutrientLimit int
	limiter       *rate.Limiter
	cache         *searchCache
}

// NewFromConfig создает клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолты из GetDefaults().
// Без API ключа возвращает ошибку до любого сетевого вызова.
func NewFromConfig(cfg config.RecipesConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s", config.ErrMissingConfig, config.EnvSpoonacular)
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid recipes.timeout format: %w", err)
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(cfg.RateLimit) / 60.0

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: cfg.RetryAttempts,
		nutrientLimit: cfg.NutrientLimit,
		limiter:       rate.NewLimiter(rate.Limit(ratePerSec), cfg.BurstLimit),
		cache:         newSearchCache(cfg.CacheSizeMB, cfg.CacheTTL),
	}, nil
}

// WithHTTPClient подменяет HTTP клиент (для тестов).
func (c *Client) WithHTTPClient(h HTTPClient) *Client {
	c.httpClient = h
	return c
}

// Search ищет один рецепт по свободному запросу.
//
// GET /recipes/complexSearch?query=...&number=1
// Пустой список результатов — (nil, nil).
func (c *Client) Search(ctx context.Context, query string) (*Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if r, ok := c.cache.get(query); ok {
		utils.Debug("Recipe search cache hit", "query", query, "recipe_id", r.ID)
		return r, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("number", "1")

	body, err := c.get(ctx, "/recipes/complexSearch", params)
	if err != nil {
		return nil, c.notFound(ctx, "Error fetching recipe", err, "query", query)
	}

	first := gjson.GetBytes(body, "results.0")
	if !first.Exists() {
		utils.Info("No recipes found for the given query", "query", query)
		return nil, nil
	}

	recipe := &Recipe{
		ID:    first.Get("id").Int(),
		Title: first.Get("title").String(),
	}
	if err := c.cache.put(query, recipe); err != nil {
		utils.Warn("Failed to cache recipe", "query", query, "error", err.Error())
	}
	return recipe, nil
}

// Nutrition возвращает первые nutrientLimit нутриентов рецепта.
//
// GET /recipes/{id}/nutritionWidget.json
// Нет поля nutrients — (nil, nil).
func (c *Client) Nutrition(ctx context.Context, recipeID int64) ([]Nutrient, error) {
	path := "/recipes/" + strconv.FormatInt(recipeID, 10) + "/nutritionWidget.json"

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, c.notFound(ctx, "Error fetching nutritional details", err, "recipe_id", recipeID)
	}

	nutrients := gjson.GetBytes(body, "nutrients")
	if !nutrients.Exists() || !nutrients.IsArray() {
		utils.Info("Nutritional details not found", "recipe_id", recipeID)
		return nil, nil
	}

	items := nutrients.Array()
	if len(items) > c.nutrientLimit {
		items = items[:c.nutrientLimit]
	}

	result := make([]Nutrient, 0, len(items))
	for _, item := range items {
		result = append(result, Nutrient{
			Name:                item.Get("name").String(),
			Amount:              item.Get("amount").Float(),
			Unit:                item.Get("unit").String(),
			PercentOfDailyNeeds: item.Get("percentOfDailyNeeds").Float(),
		})
	}
	return result, nil
}

// notFound логирует ошибку и превращает её в "не найдено".
// Отмена контекста пробрасывается как есть.
func (c *Client) notFound(ctx context.Context, msg string, err error, keyvals ...any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// Ошибки транспорта содержат URL вместе с apiKey
	msgErr := utils.RedactValue(utils.RedactQueryParams(err.Error(), "apiKey"), c.apiKey)
	keyvals = append(keyvals, "error", msgErr, "error_type", ClassifyError(err).String())
	utils.Warn(msg, keyvals...)
	return nil
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuthFailed
		case http.StatusPaymentRequired:
			return ErrQuotaExceeded
		case http.StatusTooManyRequests:
			return ErrRateLimit
		}
		return ErrUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	errMsgLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsgLower, "timeout"):
		return ErrTimeout
	case strings.Contains(errMsgLower, "connection refused"),
		strings.Contains(errMsgLower, "no such host"):
		return ErrNetwork
	}
	return ErrUnknown
}

// get выполняет GET запрос с retry логикой и rate limiting.
//
// Повторяет сетевые ошибки и 429 (с учётом Retry-After). Любой другой
// не-200 ответ сразу возвращается как *StatusError.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	var lastErr error
	for i := 0; i < c.retryAttempts; i++ {
		// Ждем разрешения от лимитера (блокирует, если превысили лимит)
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		body, retryAfter, err := c.do(ctx, u.String())
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code != http.StatusTooManyRequests {
			return nil, err
		}

		if i == c.retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryAfter):
		}
	}

	return nil, fmt.Errorf("max retries exceeded, last error: %w", lastErr)
}

// do выполняет один запрос. retryAfter имеет смысл только для 429.
func (c *Client) do(ctx context.Context, rawURL string) ([]byte, time.Duration, error) {
	retryAfter := time.Second

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retryAfter, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retryAfter, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if sec, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(sec) * time.Second
			}
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, retryAfter, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, 0, nil
}
