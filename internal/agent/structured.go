package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// ErrEmptyContent — в ответе модели нет JSON для декодирования.
var ErrEmptyContent = errors.New("no json content in response")

// DecodeStructured декодирует structured output ответа модели в T.
//
// Снимает markdown-обёртку; если модель добавила текст вокруг JSON,
// берётся первый сбалансированный объект.
func DecodeStructured[T any](content string) (T, error) {
	var out T

	clean := utils.CleanJsonBlock(content)
	if !json.Valid([]byte(clean)) {
		clean = utils.ExtractJSON(clean)
	}
	if clean == "" {
		return out, ErrEmptyContent
	}

	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return out, fmt.Errorf("decode structured output: %w", err)
	}
	return out, nil
}
