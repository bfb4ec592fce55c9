// Package paymentstest provides an in-memory payment processor.
package paymentstest

import (
	"context"
	"fmt"
	"sync"

	"TalentHive/internal/payments"
)

// Processor records every call and can be told to fail the next call of a
// given kind. Intents succeed on Confirm unless marked otherwise. Like
// Paystack, a reference can only be initialized once.
type Processor struct {
	mu sync.Mutex

	Intents  map[string]payments.IntentRequest
	Payouts  map[string]string // reference -> payout id
	Refunds  []string
	Statuses map[string]payments.ChargeStatus

	CreateCalls  int
	ConfirmCalls int
	ReleaseCalls int
	RefundCalls  int

	failNext map[string]error
}

func New() *Processor {
	return &Processor{
		Intents:  make(map[string]payments.IntentRequest),
		Payouts:  make(map[string]string),
		Statuses: make(map[string]payments.ChargeStatus),
		failNext: make(map[string]error),
	}
}

// FailNext makes the next call of kind ("create", "confirm", "release",
// "refund") return err without side effects.
func (p *Processor) FailNext(kind string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext[kind] = err
}

// FailTransient and FailPermanent are shorthands for FailNext.
func (p *Processor) FailTransient(kind string) {
	p.FailNext(kind, payments.Transient("fake."+kind, "simulated outage", nil))
}

func (p *Processor) FailPermanent(kind string) {
	p.FailNext(kind, payments.Permanent("fake."+kind, "simulated decline", nil))
}

// SetStatus fixes what Confirm reports for intentID.
func (p *Processor) SetStatus(intentID string, s payments.ChargeStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Statuses[intentID] = s
}

func (p *Processor) take(kind string) error {
	err := p.failNext[kind]
	delete(p.failNext, kind)
	return err
}

func (p *Processor) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CreateCalls++
	if err := p.take("create"); err != nil {
		return nil, err
	}
	id := "intent_" + req.Reference
	if _, ok := p.Intents[id]; ok {
		return nil, payments.Permanent("fake.create", "Duplicate Transaction Reference", nil)
	}
	p.Intents[id] = req
	return &payments.Intent{ID: id, ClientSecret: "secret_" + req.Reference, AuthorizationURL: "https://pay.test/" + req.Reference}, nil
}

func (p *Processor) Confirm(_ context.Context, intentID string) (payments.ChargeStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConfirmCalls++
	if err := p.take("confirm"); err != nil {
		return "", err
	}
	if _, ok := p.Intents[intentID]; !ok {
		return "", payments.Permanent("fake.confirm", "unknown intent "+intentID, nil)
	}
	if s, ok := p.Statuses[intentID]; ok {
		return s, nil
	}
	return payments.ChargeSucceeded, nil
}

func (p *Processor) Release(_ context.Context, accountID string, amount int64, currency, reference string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ReleaseCalls++
	if err := p.take("release"); err != nil {
		return "", err
	}
	if id, ok := p.Payouts[reference]; ok {
		return id, nil
	}
	id := fmt.Sprintf("payout_%d", len(p.Payouts)+1)
	p.Payouts[reference] = id
	return id, nil
}

func (p *Processor) Refund(_ context.Context, intentID string, amount int64, reason string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RefundCalls++
	if err := p.take("refund"); err != nil {
		return "", err
	}
	id := fmt.Sprintf("refund_%d", len(p.Refunds)+1)
	p.Refunds = append(p.Refunds, intentID)
	return id, nil
}

// Counts returns create, confirm, release and refund call counts.
func (p *Processor) Counts() (create, confirm, release, refund int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CreateCalls, p.ConfirmCalls, p.ReleaseCalls, p.RefundCalls
}

var _ payments.Processor = (*Processor)(nil)
