// Package payments talks to the escrow payment processor. Every failure a
// processor call returns is a *ProcessorError classified as transient (safe
// to retry) or permanent (needs a human).
package payments

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"TalentHive/internal/apperr"
)

// IntentRequest asks the processor to collect and hold a charge.
type IntentRequest struct {
	Amount    int64
	Currency  string
	Reference string
	Email     string
	Metadata  map[string]string
}

// Intent is the processor side handle of a pending charge.
type Intent struct {
	ID               string
	ClientSecret     string
	AuthorizationURL string
}

type ChargeStatus string

const (
	ChargeSucceeded ChargeStatus = "success"
	ChargePending   ChargeStatus = "pending"
	ChargeFailed    ChargeStatus = "failed"
)

// Processor is the external payment provider.
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	Confirm(ctx context.Context, intentID string) (ChargeStatus, error)
	// Release pays amount out to accountID. reference is the idempotency key
	// the provider dedups on.
	Release(ctx context.Context, accountID string, amount int64, currency, reference string) (payoutID string, err error)
	Refund(ctx context.Context, intentID string, amount int64, reason string) (refundID string, err error)
}

// ProcessorError is a failed processor call.
type ProcessorError struct {
	Op         string
	Transient  bool
	StatusCode int
	Message    string
	Err        error
}

func (e *ProcessorError) Error() string {
	class := "permanent"
	if e.Transient {
		class = "transient"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s processor error (status %d): %s", e.Op, class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s processor error: %s", e.Op, class, e.Message)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

func Transient(op, message string, err error) *ProcessorError {
	return &ProcessorError{Op: op, Transient: true, Message: message, Err: err}
}

func Permanent(op, message string, err error) *ProcessorError {
	return &ProcessorError{Op: op, Transient: false, Message: message, Err: err}
}

// IsTransient reports whether err is a retry safe processor failure.
func IsTransient(err error) bool {
	var pe *ProcessorError
	return errors.As(err, &pe) && pe.Transient
}

// classifyStatus maps an HTTP status from the provider: throttling and
// server side failures may succeed on retry, everything else will not.
func classifyStatus(op string, status int, message string) *ProcessorError {
	return &ProcessorError{
		Op:         op,
		Transient:  status == http.StatusTooManyRequests || status >= 500,
		StatusCode: status,
		Message:    message,
	}
}

// classifyTransport wraps a transport level failure. Network errors and
// deadlines are transient; anything else is treated as permanent.
func classifyTransport(op string, err error) *ProcessorError {
	if err == nil {
		return nil
	}
	var pe *ProcessorError
	if errors.As(err, &pe) {
		return pe
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Transient(op, "processor call timed out", err)
	case errors.As(err, &netErr):
		// *url.Error satisfies net.Error, so dial and DNS failures land here too.
		return Transient(op, "network error calling processor", err)
	case errors.Is(err, context.Canceled):
		return Transient(op, "processor call cancelled", err)
	}
	return Permanent(op, err.Error(), err)
}

// ToAppError maps a processor failure onto the engine taxonomy.
func ToAppError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProcessorError
	if !errors.As(err, &pe) {
		pe = classifyTransport(op, err)
	}
	kind := apperr.KindPaymentPermanent
	if pe.Transient {
		kind = apperr.KindPaymentTransient
	}
	return &apperr.Error{Kind: kind, Op: op, Message: pe.Error(), Cause: pe}
}
