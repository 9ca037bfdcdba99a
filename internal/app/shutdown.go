package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"municipal-updates/internal/observability"
)

// GracefulShutdown отменяет context по SIGINT/SIGTERM или по истечении jobTimeout (0 без лимита).
// cancel снимает подписку на сигналы.
func GracefulShutdown(parent context.Context, logger *observability.Logger, jobTimeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if jobTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, jobTimeout)
		prev := cancel
		cancel = func() {
			cancelTimeout()
			prev()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
