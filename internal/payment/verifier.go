package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/paystack"
	"paystack-bridge/internal/reference"
	"paystack-bridge/internal/repository"
)

// Verdict is the final determination for a callback.
type Verdict int

const (
	Unverified Verdict = iota
	Verified
	TransportFailure
)

func (v Verdict) String() string {
	switch v {
	case Verified:
		return "verified"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unverified"
	}
}

// Result carries a verdict and what it was derived from.
type Result struct {
	Verdict     Verdict
	OrderID     uint64
	OrderNumber string
	Reference   string
	// Expected is the reconciliation baseline in major units.
	Expected decimal.Decimal
	// PaidMinor is the gateway's recorded amount; zero when unknown.
	PaidMinor int64
	Err       error
}

// HandleCallback processes an inbound notification. Replays are safe: the
// verdict is always recomputed from the gateway and the order transition is
// idempotent.
func (p *Plugin) HandleCallback(ctx context.Context, values url.Values, sink ResponseSink) Result {
	params, err := ParseCallbackParams(values)
	if err != nil {
		p.logger.Warn("Rejected Paystack callback", zap.Error(err))
		sink.Notify(MsgUnverified, LevelError)
		return Result{Verdict: Unverified, Err: err}
	}

	res := p.Verify(ctx, params.Reference)

	switch res.Verdict {
	case Verified:
		if err := p.Settle(ctx, res); err != nil {
			res.Err = err
			sink.Notify(MsgOrderUpdateFailed, LevelError)
			return res
		}
		if p.settings.RedirectURL != "" {
			sink.Redirect(p.settings.RedirectURL)
		} else {
			sink.Redirect(p.settings.ThankYouURL(res.OrderID))
		}
	case TransportFailure:
		sink.Notify(MsgTransportFailure, LevelError)
	default:
		sink.Notify(MsgUnverified, LevelError)
	}
	return res
}

// Verify derives a verdict for a reference from the gateway's record. It does
// not touch order state.
func (p *Plugin) Verify(ctx context.Context, ref string) Result {
	res := p.verify(ctx, ref)

	fields := []zap.Field{
		zap.String("reference", ref),
		zap.Uint64("order_id", res.OrderID),
		zap.String("verdict", res.Verdict.String()),
		zap.Int64("paid_minor", res.PaidMinor),
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	p.logger.Info("Paystack verification finished", fields...)

	if p.attempts != nil && res.Verdict != TransportFailure && res.OrderID != 0 {
		status := models.AttemptUnverified
		lastErr := ""
		if res.Verdict == Verified {
			status = models.AttemptVerified
		}
		if res.Err != nil {
			lastErr = res.Err.Error()
		}
		if err := p.attempts.MarkOutcome(ctx, ref, status, res.PaidMinor, lastErr); err != nil {
			p.logger.Error("Failed to record verification outcome", zap.String("reference", ref), zap.Error(err))
		}
	}
	return res
}

func (p *Plugin) verify(ctx context.Context, ref string) Result {
	fields, err := reference.Decode(ref)
	if err != nil {
		return Result{Verdict: Unverified, Reference: ref, Err: err}
	}

	res := Result{
		Verdict:     Unverified,
		OrderID:     fields.OrderID,
		OrderNumber: fields.OrderNumber,
		Reference:   ref,
		Expected:    fields.Total,
	}

	if p.settings.StrictReconcile {
		order, err := p.orders.GetOrder(ctx, fields.OrderID)
		if err != nil {
			res.Err = fmt.Errorf("load order %d: %w", fields.OrderID, err)
			if !errors.Is(err, repository.ErrNotFound) {
				res.Verdict = TransportFailure
			}
			return res
		}
		if order.Total.GreaterThan(res.Expected) {
			res.Expected = order.Total
		}
	}

	trx, err := p.gateway.FetchTransaction(ctx, p.settings.Credentials, ref)
	if err != nil {
		res.Err = err
		if paystack.IsTransport(err) {
			res.Verdict = TransportFailure
		}
		return res
	}
	res.PaidMinor = trx.AmountMinor

	if !trx.Settled() {
		res.Err = fmt.Errorf("%w: gateway status %q", ErrNotSettled, trx.Status)
		return res
	}

	paid := MajorUnits(trx.AmountMinor)
	if paid.Sub(res.Expected).IsNegative() {
		res.Err = fmt.Errorf("%w: paid %s, expected %s", ErrAmountMismatch, paid.StringFixed(2), res.Expected.StringFixed(2))
		return res
	}

	res.Verdict = Verified
	return res
}

// Settle applies a Verified result: the order moves to the verified status
// with both flags set, then the payment is reported.
func (p *Plugin) Settle(ctx context.Context, res Result) error {
	if res.Verdict != Verified {
		return fmt.Errorf("settle %s result", res.Verdict)
	}

	flags := models.StatusFlags{Succeeded: true, Completed: true}
	if err := p.orders.SetOrderStatus(ctx, res.OrderID, p.settings.VerifiedStatus, flags); err != nil {
		p.logger.Error("Failed to mark order verified",
			zap.Uint64("order_id", res.OrderID),
			zap.String("reference", res.Reference),
			zap.Error(err))
		if p.attempts != nil {
			// Reopen the attempt so the reconciliation sweep retries it.
			if merr := p.attempts.MarkOutcome(ctx, res.Reference, models.AttemptUnverified, res.PaidMinor, err.Error()); merr != nil {
				p.logger.Error("Failed to reopen payment attempt", zap.String("reference", res.Reference), zap.Error(merr))
			}
		}
		return fmt.Errorf("set order %d status: %w", res.OrderID, err)
	}

	if p.reporter != nil {
		report := Report{
			OrderID:     res.OrderID,
			OrderNumber: res.OrderNumber,
			Reference:   res.Reference,
			AmountPaid:  MajorUnits(res.PaidMinor),
			Mode:        p.settings.Credentials.Mode,
		}
		if err := p.reporter.Report(ctx, report); err != nil {
			p.logger.Warn("Payment report failed", zap.String("reference", res.Reference), zap.Error(err))
		}
	}
	return nil
}

// Invalidate moves the order of an unverified result to the invalid status
// and retires the attempt. It is used for attempts that never settled within
// the expiry window. Orders already paid through another attempt keep their
// status.
func (p *Plugin) Invalidate(ctx context.Context, res Result) error {
	if res.Verdict != Unverified || res.OrderID == 0 {
		return fmt.Errorf("invalidate %s result", res.Verdict)
	}

	if p.settings.InvalidStatus != "" {
		order, err := p.orders.GetOrder(ctx, res.OrderID)
		if err != nil {
			return fmt.Errorf("load order %d: %w", res.OrderID, err)
		}
		if !order.Succeeded {
			if err := p.orders.SetOrderStatus(ctx, res.OrderID, p.settings.InvalidStatus, models.StatusFlags{}); err != nil {
				return fmt.Errorf("set order %d status: %w", res.OrderID, err)
			}
		}
	}

	if p.attempts != nil {
		lastErr := ""
		if res.Err != nil {
			lastErr = res.Err.Error()
		}
		if err := p.attempts.MarkOutcome(ctx, res.Reference, models.AttemptInvalid, res.PaidMinor, lastErr); err != nil {
			p.logger.Error("Failed to mark attempt invalid", zap.String("reference", res.Reference), zap.Error(err))
		}
	}
	return nil
}
