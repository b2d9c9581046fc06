package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// RetryPolicy — ограниченный retry с рандомизированной экспонентой.
type RetryPolicy struct {
	Attempts  int           // Всего попыток, включая первую
	BaseDelay time.Duration // Задержка перед второй попыткой (до jitter)
	MaxDelay  time.Duration // Потолок одной задержки
	Jitter    uint64        // Разброс задержки в процентах
}

// PolicyFromConfig переводит RetryConfig в RetryPolicy.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	cfg = cfg.GetDefaults()
	return RetryPolicy{
		Attempts:  cfg.Attempts,
		BaseDelay: cfg.BaseDelay,
		MaxDelay:  cfg.MaxDelay,
		Jitter:    uint64(cfg.Jitter),
	}
}

func (p RetryPolicy) backoff() retry.Backoff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	b := retry.NewExponential(base)
	if p.Jitter > 0 {
		b = retry.WithJitterPercent(p.Jitter, b)
	}
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// Retry вызывает fn, пока она не вернёт nil или не кончатся попытки.
//
// Повторяется любая ошибка, пока жив ctx вызывающего. Timeout HTTP клиента
// тоже повторяется, хотя и совпадает с context.DeadlineExceeded. После
// последней попытки возвращается ошибка последнего вызова.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		result  T
		attempt int
	)

	err := retry.Do(ctx, policy.backoff(), func(attemptCtx context.Context) error {
		attempt++
		v, err := fn(attemptCtx)
		if err == nil {
			result = v
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		utils.Warn("Attempt failed, will retry if attempts remain",
			"attempt", attempt,
			"max_attempts", policy.Attempts,
			"error", err.Error())
		return retry.RetryableError(err)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// RetryProvider — декоратор Provider с ограниченным retry.
type RetryProvider struct {
	next   Provider
	policy RetryPolicy
}

// NewRetryProvider оборачивает provider.
func NewRetryProvider(next Provider, policy RetryPolicy) (*RetryProvider, error) {
	if next == nil {
		return nil, fmt.Errorf("retry provider: next provider is required")
	}
	if policy.Attempts < 1 {
		return nil, fmt.Errorf("retry provider: attempts must be positive, got %d", policy.Attempts)
	}
	return &RetryProvider{next: next, policy: policy}, nil
}

// Generate реализует Provider.
func (p *RetryProvider) Generate(ctx context.Context, messages []Message, opts ...GenerateOption) (Response, error) {
	return Retry(ctx, p.policy, func(ctx context.Context) (Response, error) {
		return p.next.Generate(ctx, messages, opts...)
	})
}
