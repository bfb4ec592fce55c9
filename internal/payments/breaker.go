package payments

import (
	"context"
	"errors"
	"sync"
	"time"

	"TalentHive/internal/metrics"
)

// ErrBreakerOpen is returned without calling the processor while the
// breaker is open.
var ErrBreakerOpen = errors.New("payment processor circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

type BreakerConfig struct {
	// Consecutive transient failures that open the breaker.
	FailureThreshold int
	// Successes in half-open needed to close again.
	SuccessThreshold int
	// How long the breaker stays open before probing.
	Timeout             time.Duration
	HalfOpenMaxRequests int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 3,
	}
}

// Breaker is a closed/open/half-open circuit breaker. Only transient
// failures count against it: a declined card says nothing about whether the
// processor is healthy.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu            sync.Mutex
	state         BreakerState
	failures      int
	successes     int
	halfOpenCount int
	changedAt     time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg, now: time.Now, changedAt: time.Now()}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Execute runs fn under breaker protection.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	b.advance()
	switch b.state {
	case BreakerOpen:
		b.mu.Unlock()
		return ErrBreakerOpen
	case BreakerHalfOpen:
		if b.halfOpenCount >= b.cfg.HalfOpenMaxRequests {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.halfOpenCount++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && IsTransient(err) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) advance() {
	now := b.now()
	switch b.state {
	case BreakerOpen:
		if now.Sub(b.changedAt) >= b.cfg.Timeout {
			b.state = BreakerHalfOpen
			b.halfOpenCount = 0
			b.successes = 0
			b.changedAt = now
		}
	case BreakerHalfOpen:
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = BreakerClosed
			b.failures = 0
			b.changedAt = now
		}
	case BreakerClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.state = BreakerOpen
			b.changedAt = now
		}
	}
}

func (b *Breaker) onFailure() {
	b.failures++
	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
		b.halfOpenCount = 0
		b.changedAt = b.now()
	}
}

func (b *Breaker) onSuccess() {
	b.failures = 0
	if b.state == BreakerHalfOpen {
		b.successes++
	}
}

// Guarded decorates a Processor with a breaker and call metrics.
type Guarded struct {
	next    Processor
	breaker *Breaker
}

func NewGuarded(next Processor, breaker *Breaker) *Guarded {
	if breaker == nil {
		breaker = NewBreaker(DefaultBreakerConfig())
	}
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) call(op string, fn func() error) error {
	start := time.Now()
	err := g.breaker.Execute(fn)
	if errors.Is(err, ErrBreakerOpen) {
		err = Transient(op, "processor temporarily unavailable", err)
	}
	result := "ok"
	switch {
	case err == nil:
	case IsTransient(err):
		result = "transient"
	default:
		result = "permanent"
	}
	metrics.RecordProcessorCall(op, result, time.Since(start))
	return err
}

func (g *Guarded) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	var out *Intent
	err := g.call("create_intent", func() error {
		var err error
		out, err = g.next.CreateIntent(ctx, req)
		return err
	})
	return out, err
}

func (g *Guarded) Confirm(ctx context.Context, intentID string) (ChargeStatus, error) {
	var out ChargeStatus
	err := g.call("confirm", func() error {
		var err error
		out, err = g.next.Confirm(ctx, intentID)
		return err
	})
	return out, err
}

func (g *Guarded) Release(ctx context.Context, accountID string, amount int64, currency, reference string) (string, error) {
	var out string
	err := g.call("release", func() error {
		var err error
		out, err = g.next.Release(ctx, accountID, amount, currency, reference)
		return err
	})
	return out, err
}

func (g *Guarded) Refund(ctx context.Context, intentID string, amount int64, reason string) (string, error) {
	var out string
	err := g.call("refund", func() error {
		var err error
		out, err = g.next.Refund(ctx, intentID, amount, reason)
		return err
	})
	return out, err
}

var (
	_ Processor = (*PaystackClient)(nil)
	_ Processor = (*Guarded)(nil)
)
