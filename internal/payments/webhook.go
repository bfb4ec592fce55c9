package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// SignatureHeader carries the HMAC-SHA512 of the raw webhook body keyed
// with the Paystack secret key.
const SignatureHeader = "x-paystack-signature"

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// WebhookEvent is the subset of a Paystack event the engine reacts to.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference       string `json:"reference"`
		Status          string `json:"status"`
		Amount          int64  `json:"amount"`
		Currency        string `json:"currency"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// VerifyWebhook checks signature against body and decodes the event.
func VerifyWebhook(secret string, body []byte, signature string) (*WebhookEvent, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return nil, ErrMissingSignature
	}
	decoded, err := hex.DecodeString(signature)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), decoded) {
		return nil, ErrInvalidSignature
	}
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}

// SignWebhook computes the signature Paystack would send for body.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
