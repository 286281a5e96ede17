package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clearleaf/greenwash-cli/internal/resilience"
)

// ErrUnavailable is returned for every call after an auth-class failure
// has flipped the gate; callers turn it into cheap placeholders instead
// of burning the rest of a batch against a dead key.
var ErrUnavailable = errors.New("oracle unavailable: API key invalid/expired")

// Gate wraps a Client with the shared requests-per-minute budget, a
// per-call timeout, one retry on rate limits, and the process-local
// unavailable flag. All pipeline oracle traffic goes through one Gate.
type Gate struct {
	inner       Client
	limiter     *rate.Limiter
	timeout     time.Duration
	unavailable atomic.Bool
}

// NewGate builds a Gate allowing rpm requests per minute with the given
// per-call timeout. Zero values fall back to 30 rpm and 30s.
func NewGate(inner Client, rpm int, timeout time.Duration) *Gate {
	if rpm <= 0 {
		rpm = 30
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gate{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		timeout: timeout,
	}
}

// Complete waits for the rate budget, applies the call timeout, and runs
// the inner client with one retry on rate-limit errors. Excess calls wait;
// they are never dropped.
func (g *Gate) Complete(ctx context.Context, prompt string) (string, error) {
	if g.unavailable.Load() {
		return "", resilience.WithKind(resilience.KindOracleAuth, ErrUnavailable)
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = resilience.IsRateLimited
	cfg.OnRetry = resilience.RetryLogger("oracle", "complete")

	// The limiter sits inside the retried closure so every attempt,
	// including the rate-limit retry, draws from the shared budget.
	out, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.inner.Complete(callCtx, prompt)
	})
	if err != nil {
		if resilience.IsAuth(err) && g.unavailable.CompareAndSwap(false, true) {
			zap.L().Error("oracle auth failure, short-circuiting remaining calls", zap.Error(err))
		}
		return "", err
	}
	return out, nil
}

// Unavailable reports whether the auth flag has been tripped.
func (g *Gate) Unavailable() bool {
	return g.unavailable.Load()
}
