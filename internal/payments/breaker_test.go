package payments

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyProcessor struct {
	Processor
	err   error
	calls int
}

func (f *flakyProcessor) Confirm(context.Context, string) (ChargeStatus, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return ChargeSucceeded, nil
}

func TestBreakerOpensOnTransientFailures(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute, HalfOpenMaxRequests: 1})
	b.now = func() time.Time { return clock }

	p := &flakyProcessor{err: Transient("confirm", "down", nil)}
	g := NewGuarded(p, b)
	for i := 0; i < 2; i++ {
		if _, err := g.Confirm(context.Background(), "x"); !IsTransient(err) {
			t.Fatalf("call %d: want transient got=%v", i, err)
		}
	}
	_, err := g.Confirm(context.Background(), "x")
	if !errors.Is(err, ErrBreakerOpen) || !IsTransient(err) {
		t.Fatalf("open breaker must short circuit with a transient error, got=%v", err)
	}
	if p.calls != 2 {
		t.Fatalf("calls: want=2 got=%d", p.calls)
	}

	clock = clock.Add(2 * time.Minute)
	p.err = nil
	if _, err := g.Confirm(context.Background(), "x"); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if got := b.State(); got != BreakerClosed {
		t.Fatalf("state: want=closed got=%d", got)
	}
}

func TestBreakerIgnoresPermanentFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute, HalfOpenMaxRequests: 1})
	p := &flakyProcessor{err: Permanent("confirm", "declined", nil)}
	g := NewGuarded(p, b)
	for i := 0; i < 3; i++ {
		_, _ = g.Confirm(context.Background(), "x")
	}
	if p.calls != 3 || b.State() != BreakerClosed {
		t.Fatalf("permanent failures must not trip the breaker: calls=%d state=%d", p.calls, b.State())
	}
}
