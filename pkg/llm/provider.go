// Интерфейс Провайдера, через который работает всё приложение.

package llm

import "context"

// Provider — абстракция над chat completion API.
type Provider interface {
	// Generate отправляет историю сообщений и возвращает ответ модели
	// вместе с причиной завершения.
	Generate(ctx context.Context, messages []Message, opts ...GenerateOption) (Response, error)
}
