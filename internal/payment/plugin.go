// Package payment drives the Paystack checkout flow: it initiates
// transactions for confirmed orders and verifies the buyer's return.
package payment

import (
	"fmt"

	"go.uber.org/zap"

	"paystack-bridge/internal/paystack"
)

// Settings is the process-wide configuration the flow reads. It is never
// mutated while requests are in flight.
type Settings struct {
	Credentials    paystack.Credentials
	VerifiedStatus string
	InvalidStatus  string

	// RedirectURL, when set, replaces the thank-you page after a verified payment.
	RedirectURL string

	// ThankYouURL builds the default post-payment page for an order.
	ThankYouURL func(orderID uint64) string

	// CallbackURL, when set, is sent to the gateway to override the
	// dashboard callback.
	CallbackURL string

	// StrictReconcile compares the paid amount against the larger of the
	// reference's embedded total and the stored order total.
	StrictReconcile bool
}

// Plugin implements payment initiation and callback verification.
type Plugin struct {
	gateway  Gateway
	orders   OrderStore
	attempts AttemptLog
	reporter Reporter
	settings Settings
	logger   *zap.Logger
}

// Option customizes a Plugin.
type Option func(*Plugin)

// WithAttemptLog records every initiation and verification outcome.
func WithAttemptLog(log AttemptLog) Option {
	return func(p *Plugin) { p.attempts = log }
}

// WithReporter announces verified payments.
func WithReporter(r Reporter) Option {
	return func(p *Plugin) { p.reporter = r }
}

// NewPlugin creates a new payment plugin.
func NewPlugin(gateway Gateway, orders OrderStore, settings Settings, logger *zap.Logger, opts ...Option) *Plugin {
	if settings.ThankYouURL == nil {
		settings.ThankYouURL = func(id uint64) string {
			return fmt.Sprintf("/orders/%d/thank-you", id)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Plugin{
		gateway:  gateway,
		orders:   orders,
		settings: settings,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings returns the plugin's configuration.
func (p *Plugin) Settings() Settings {
	return p.settings
}
