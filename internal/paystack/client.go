// Package paystack is a stateless client for the two Paystack transaction
// endpoints used by the checkout flow.
package paystack

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"paystack-bridge/internal/pkg/httpclient"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.paystack.co"

// StatusSuccess is the transaction status Paystack reports for a settled charge.
const StatusSuccess = "success"

// TransactionRequest is the body of an initialize call.
type TransactionRequest struct {
	AmountMinor int64  `json:"amount"`
	Email       string `json:"email"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// Transaction is the gateway's record of a transaction.
type Transaction struct {
	Reference   string
	AmountMinor int64
	// Status is data.status; empty when the gateway omitted it.
	Status   string
	Currency string
	PaidAt   string
}

// Settled reports whether the record describes a successful charge. An absent
// data.status defers to the envelope status, which was already true.
func (t *Transaction) Settled() bool {
	return t.Status == "" || strings.EqualFold(t.Status, StatusSuccess)
}

// Options configure a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client implements initialize and verify against the Paystack REST API.
type Client struct {
	http *httpclient.Client
}

// NewClient builds a client; zero options fall back to production defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Client{
		http: httpclient.New().
			WithBaseURL(strings.TrimRight(opts.BaseURL, "/")).
			WithTimeout(opts.Timeout).
			WithRetries(opts.Retries),
	}
}

type envelope struct {
	Status  *bool           `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Amount    *int64 `json:"amount"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

// InitializeTransaction creates a transaction and returns the hosted
// checkout URL the buyer must be redirected to.
func (c *Client) InitializeTransaction(ctx context.Context, creds Credentials, req TransactionRequest) (string, error) {
	const op = "initialize"

	resp, err := c.http.Post(ctx, "/transaction/initialize", creds.ActiveKey(), req)
	if err != nil {
		return "", &GatewayError{Op: op, Err: err}
	}

	var data initializeData
	if err := decode(op, resp, &data); err != nil {
		return "", err
	}
	if data.AuthorizationURL == "" {
		return "", &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "missing authorization_url"}
	}
	return data.AuthorizationURL, nil
}

// FetchTransaction asks the gateway for its authoritative record of ref.
func (c *Client) FetchTransaction(ctx context.Context, creds Credentials, ref string) (*Transaction, error) {
	const op = "verify"

	if ref == "" {
		return nil, &GatewayError{Op: op, Message: "empty reference"}
	}

	resp, err := c.http.Get(ctx, "/transaction/verify/"+url.PathEscape(ref), creds.ActiveKey())
	if err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}

	var data verifyData
	if err := decode(op, resp, &data); err != nil {
		return nil, err
	}
	if data.Amount == nil {
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "missing amount"}
	}

	return &Transaction{
		Reference:   data.Reference,
		AmountMinor: *data.Amount,
		Status:      data.Status,
		Currency:    data.Currency,
		PaidAt:      data.PaidAt,
	}, nil
}

// decode validates the envelope and unmarshals data into out.
func decode(op string, resp *httpclient.Response, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "response is not JSON", Err: err}
	}
	if !resp.OK() {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}
	if env.Status == nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "missing status"}
	}
	if !*env.Status {
		msg := env.Message
		if msg == "" {
			msg = "status false"
		}
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "missing data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "unexpected data shape", Err: err}
	}
	return nil
}
