package recipes

import "fmt"

// Recipe — первый результат поиска рецепта.
type Recipe struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Nutrient — одна строка nutrition widget.
type Nutrient struct {
	Name                string  `json:"name"`
	Amount              float64 `json:"amount"`
	Unit                string  `json:"unit"`
	PercentOfDailyNeeds float64 `json:"percentOfDailyNeeds"`
}

// String возвращает строку вида "Calories: 540.2 kcal (27% DV)".
func (n Nutrient) String() string {
	return fmt.Sprintf("%s: %.1f %s (%.0f%% DV)", n.Name, n.Amount, n.Unit, n.PercentOfDailyNeeds)
}

// ErrorType представляет тип ошибки при работе с recipe API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
	ErrQuotaExceeded
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	case ErrQuotaExceeded:
		return "quota_exceeded"
	default:
		return "unknown"
	}
}

// StatusError — ответ API с кодом, отличным от 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recipe api error: status %d, body: %s", e.Code, e.Body)
}
