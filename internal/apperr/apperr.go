package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind standardizes failure semantics across the contract engine.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindContractNotActive Kind = "contract_not_active"
	KindNotFound          Kind = "not_found"
	KindAlreadySigned     Kind = "already_signed"
	KindAlreadyResponded  Kind = "already_responded"
	KindConflict          Kind = "conflict"
	KindPaymentTransient  Kind = "payment_processor_transient"
	KindPaymentPermanent  Kind = "payment_processor_permanent"
	KindInternal          Kind = "internal"
)

// Error is the canonical engine error.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Kind)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Kind)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an error with an explicit kind.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message)}
}

// Wrap annotates cause with kind. A nil cause returns nil.
func Wrap(kind Kind, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Message: cause.Error(), Cause: cause}
}

func Validation(op, format string, args ...any) error {
	return New(KindValidation, op, fmt.Sprintf(format, args...))
}

func Forbidden(op, format string, args ...any) error {
	return New(KindForbidden, op, fmt.Sprintf(format, args...))
}

func InvalidTransition(op, format string, args ...any) error {
	return New(KindInvalidTransition, op, fmt.Sprintf(format, args...))
}

func ContractNotActive(op, format string, args ...any) error {
	return New(KindContractNotActive, op, fmt.Sprintf(format, args...))
}

func NotFound(op, format string, args ...any) error {
	return New(KindNotFound, op, fmt.Sprintf(format, args...))
}

func AlreadySigned(op, format string, args ...any) error {
	return New(KindAlreadySigned, op, fmt.Sprintf(format, args...))
}

func AlreadyResponded(op, format string, args ...any) error {
	return New(KindAlreadyResponded, op, fmt.Sprintf(format, args...))
}

func Conflict(op, format string, args ...any) error {
	return New(KindConflict, op, fmt.Sprintf(format, args...))
}

// KindOf extracts the kind carried by err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// Is reports whether err (or anything it wraps) carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsPaymentProcessor reports whether err came from the external processor.
func IsPaymentProcessor(err error) bool {
	k := KindOf(err)
	return k == KindPaymentTransient || k == KindPaymentPermanent
}

// MessageOf returns the user facing reason for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus maps a kind to the status code handlers respond with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindContractNotActive, KindAlreadySigned, KindAlreadyResponded, KindConflict:
		return http.StatusConflict
	case KindPaymentTransient:
		return http.StatusServiceUnavailable
	case KindPaymentPermanent:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
