package scraper

import (
	"context"
	"time"

	"municipal-updates/internal/browser"
)

const DefaultFreshTimeout = 20 * time.Second

var freshPollInterval = 500 * time.Millisecond

// AwaitFresh блокирует, пока дескриптор снова не станет живым, либо до таймаута.
// Нужен перед каждым чтением у источников, перерисовывающих листинг на клиенте.
func AwaitFresh(ctx context.Context, s browser.Session, el browser.Element, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultFreshTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(freshPollInterval)
	defer ticker.Stop()

	for {
		stale, err := s.IsStale(ctx, el)
		if err != nil {
			return NewError(CodeExtraction, "staleness check failed", err).
				WithDetail("selector", el.Selector())
		}
		if !stale {
			return nil
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return NewError(CodeStaleElementTimeout, "element did not stabilize", nil).
				WithDetail("selector", el.Selector()).
				WithDetail("timeout", timeout.String())
		case <-ctx.Done():
			return NewError(CodeExtraction, "wait for fresh element cancelled", ctx.Err()).
				WithDetail("selector", el.Selector())
		}
	}
}
