package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupGracefulShutdown возвращает контекст, который отменяется по SIGINT
// (Ctrl+C) или SIGTERM, и функцию очистки для defer.
//
//	ctx, shutdown := utils.SetupGracefulShutdown()
//	defer shutdown()
//
// Функция очистки снимает обработчик сигналов и закрывает лог.
func SetupGracefulShutdown() (context.Context, func()) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		Close()
	}
}
