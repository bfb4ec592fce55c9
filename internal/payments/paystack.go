package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PaystackClient implements Processor against the Paystack REST API.
// Charges initialised through /transaction/initialize are held by the
// platform until released with a transfer to the freelancer's recipient.
type PaystackClient struct {
	SecretKey string
	BaseURL   string
	http      *http.Client
}

// Paystack API Response structures
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"` // minor units
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
}

type transferData struct {
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
}

type refundData struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// NewPaystackClient creates a client with a per request timeout.
func NewPaystackClient(secretKey, baseURL string, timeout time.Duration) *PaystackClient {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PaystackClient{
		SecretKey: secretKey,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

// do makes an HTTP request to the Paystack API and decodes the data field
// of the response envelope into out.
func (ps *PaystackClient) do(ctx context.Context, op, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return Permanent(op, "failed to marshal payload", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, ps.BaseURL+endpoint, body)
	if err != nil {
		return Permanent(op, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+ps.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ps.http.Do(req)
	if err != nil {
		return classifyTransport(op, err)
	}
	defer resp.Body.Close()

	var env paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return classifyStatus(op, resp.StatusCode, resp.Status)
		}
		// The call may have been applied; only a retry with the same
		// reference can tell.
		return Transient(op, "failed to decode response", err)
	}
	if resp.StatusCode >= 300 || !env.Status {
		status := resp.StatusCode
		if status < 300 {
			status = http.StatusBadRequest
		}
		return classifyStatus(op, status, "paystack error: "+env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return Transient(op, "failed to decode response data", err)
		}
	}
	return nil
}

// CreateIntent initializes a transaction. Paystack identifies the charge by
// our reference, so the reference doubles as the intent id.
func (ps *PaystackClient) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	const op = "paystack.initialize"
	if strings.TrimSpace(req.Email) == "" {
		return nil, Permanent(op, "customer email is required", nil)
	}
	payload := map[string]any{
		"email":     req.Email,
		"amount":    req.Amount,
		"currency":  strings.ToUpper(req.Currency),
		"reference": req.Reference,
		"metadata":  req.Metadata,
	}
	var data initializeData
	if err := ps.do(ctx, op, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return nil, err
	}
	id := data.Reference
	if id == "" {
		id = req.Reference
	}
	return &Intent{ID: id, ClientSecret: data.AccessCode, AuthorizationURL: data.AuthorizationURL}, nil
}

// Confirm verifies the charge behind intentID.
func (ps *PaystackClient) Confirm(ctx context.Context, intentID string) (ChargeStatus, error) {
	const op = "paystack.verify"
	var data verifyData
	if err := ps.do(ctx, op, http.MethodGet, "/transaction/verify/"+url.PathEscape(intentID), nil, &data); err != nil {
		return "", err
	}
	switch data.Status {
	case "success":
		return ChargeSucceeded, nil
	case "failed", "abandoned", "reversed":
		return ChargeFailed, nil
	default:
		return ChargePending, nil
	}
}

// Release initiates a balance transfer to a recipient code.
func (ps *PaystackClient) Release(ctx context.Context, accountID string, amount int64, currency, reference string) (string, error) {
	const op = "paystack.transfer"
	if strings.TrimSpace(accountID) == "" {
		return "", Permanent(op, "payout recipient is required", nil)
	}
	payload := map[string]any{
		"source":    "balance",
		"reason":    "Milestone payment",
		"amount":    amount,
		"currency":  strings.ToUpper(currency),
		"recipient": accountID,
		"reference": reference,
	}
	var data transferData
	if err := ps.do(ctx, op, http.MethodPost, "/transfer", payload, &data); err != nil {
		return "", err
	}
	if data.Status == "failed" || data.Status == "reversed" {
		return "", Permanent(op, fmt.Sprintf("transfer %s", data.Status), nil)
	}
	return data.TransferCode, nil
}

// Refund refunds amount of the charge behind intentID back to the client.
func (ps *PaystackClient) Refund(ctx context.Context, intentID string, amount int64, reason string) (string, error) {
	const op = "paystack.refund"
	payload := map[string]any{
		"transaction":   intentID,
		"amount":        amount,
		"merchant_note": reason,
	}
	var data refundData
	if err := ps.do(ctx, op, http.MethodPost, "/refund", payload, &data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", data.ID), nil
}
