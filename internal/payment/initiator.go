package payment

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/paystack"
	"paystack-bridge/internal/reference"
)

// Outcome is the terminal state of an initiation.
type Outcome int

const (
	OutcomeRedirected Outcome = iota
	OutcomeConfigIncomplete
	OutcomeInvalidOrder
	OutcomeGatewayFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirected:
		return "redirected"
	case OutcomeConfigIncomplete:
		return "config_incomplete"
	case OutcomeInvalidOrder:
		return "invalid_order"
	case OutcomeGatewayFailed:
		return "gateway_failed"
	default:
		return "unknown"
	}
}

// Initiation is the result of Initiate.
type Initiation struct {
	Outcome          Outcome
	Reference        string
	AmountMinor      int64
	AuthorizationURL string
	Err              error
}

// Initiate turns a confirmed order into a gateway transaction and redirects
// the buyer to the hosted checkout. On every failure the buyer gets a
// warning and the order is left as it was.
func (p *Plugin) Initiate(ctx context.Context, order *models.Order, payerEmail string, sink ResponseSink) Initiation {
	creds := p.settings.Credentials
	if !creds.Complete() {
		p.logger.Warn("Paystack key missing for active mode", zap.String("mode", string(creds.Mode)))
		sink.Notify(MsgConfigIncomplete, LevelWarning)
		return Initiation{Outcome: OutcomeConfigIncomplete, Err: ErrConfigIncomplete}
	}

	req, err := p.buildRequest(order, payerEmail)
	if err != nil {
		p.logger.Warn("Order cannot be initiated", zap.Uint64("order_id", order.ID), zap.Error(err))
		sink.Notify(MsgInvalidOrder, LevelWarning)
		return Initiation{Outcome: OutcomeInvalidOrder, Err: err}
	}

	authURL, err := p.gateway.InitializeTransaction(ctx, creds, req)
	if err != nil {
		p.logger.Error("Paystack initialize failed",
			zap.Uint64("order_id", order.ID),
			zap.String("reference", req.Reference),
			zap.Error(err))
		sink.Notify(MsgGatewayUnavailable, LevelWarning)
		return Initiation{Outcome: OutcomeGatewayFailed, Reference: req.Reference, AmountMinor: req.AmountMinor, Err: err}
	}

	if p.attempts != nil {
		attempt := &models.PaymentAttempt{
			OrderID:     order.ID,
			Reference:   req.Reference,
			AmountMinor: req.AmountMinor,
			Mode:        string(creds.Mode),
			Status:      models.AttemptPending,
		}
		if err := p.attempts.Record(ctx, attempt); err != nil {
			p.logger.Error("Failed to record payment attempt", zap.String("reference", req.Reference), zap.Error(err))
		}
	}

	p.logger.Info("Redirecting buyer to Paystack",
		zap.Uint64("order_id", order.ID),
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.AmountMinor))
	sink.Redirect(authURL)

	return Initiation{
		Outcome:          OutcomeRedirected,
		Reference:        req.Reference,
		AmountMinor:      req.AmountMinor,
		AuthorizationURL: authURL,
	}
}

func (p *Plugin) buildRequest(order *models.Order, payerEmail string) (paystack.TransactionRequest, error) {
	if order == nil {
		return paystack.TransactionRequest{}, fmt.Errorf("%w: no order", ErrInvalidOrder)
	}
	if order.Total.IsNegative() {
		return paystack.TransactionRequest{}, fmt.Errorf("%w: negative total", ErrInvalidOrder)
	}

	email := strings.TrimSpace(payerEmail)
	if email == "" {
		email = strings.TrimSpace(order.Email)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return paystack.TransactionRequest{}, fmt.Errorf("%w: payer email: %v", ErrInvalidOrder, err)
	}

	ref, err := reference.Encode(reference.Fields{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Created:     order.CreatedUnix,
		Total:       order.Total,
	})
	if err != nil {
		return paystack.TransactionRequest{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	return paystack.TransactionRequest{
		AmountMinor: MinorUnits(order.Total),
		Email:       addr.Address,
		Reference:   ref,
		CallbackURL: p.settings.CallbackURL,
	}, nil
}
