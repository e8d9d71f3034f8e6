package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"foodsafe/internal/domain"
	"foodsafe/internal/port"
)

// circuitState tracks rate-limit backoff for a single completer.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackCompleter tries completers in order, skipping those still backing
// off from a rate limit. It implements port.ChatCompleter.
type FallbackCompleter struct {
	completers []port.ChatCompleter
	circuits   []*circuitState
	names      []string
	logger     *zap.Logger
}

// NewFallbackCompleter creates a FallbackCompleter from an ordered list of
// completers and their names.
func NewFallbackCompleter(completers []port.ChatCompleter, names []string, logger *zap.Logger) *FallbackCompleter {
	circuits := make([]*circuitState, len(completers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackCompleter{
		completers: completers,
		circuits:   circuits,
		names:      names,
		logger:     logger,
	}
}

// Complete returns the first successful completion. Only rate-limited
// failures move on to the next completer; any other failure is returned.
func (f *FallbackCompleter) Complete(ctx context.Context, req port.ChatRequest) (string, error) {
	now := time.Now()
	var earliestReset time.Time

	for i, c := range f.completers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Debug("skipping rate-limited completer",
				zap.String("completer", f.names[i]), zap.Time("reset_at", resetAt))
			earliestReset = earliest(earliestReset, resetAt)
			continue
		}

		text, err := c.Complete(ctx, req)
		if err == nil {
			return text, nil
		}

		var rlErr *RateLimitError
		if !errors.As(err, &rlErr) {
			return "", err
		}
		f.logger.Warn("completer rate limited",
			zap.String("completer", f.names[i]), zap.Duration("retry_after", rlErr.RetryAfter))
		resetAt := now.Add(rlErr.RetryAfter)
		f.circuits[i].open(resetAt)
		earliestReset = earliest(earliestReset, resetAt)
	}

	retryAfter := time.Until(earliestReset)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return "", &domain.RemoteServiceError{
		Provider:   "all",
		StatusCode: http.StatusTooManyRequests,
		Err:        NewRateLimitError("all", fmt.Errorf("all completers rate limited"), int(retryAfter.Seconds())),
	}
}

func earliest(current, candidate time.Time) time.Time {
	if current.IsZero() || candidate.Before(current) {
		return candidate
	}
	return current
}
