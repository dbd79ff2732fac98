package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/paystack"
)

// Gateway is the subset of the Paystack client the flow depends on.
type Gateway interface {
	// InitializeTransaction returns the hosted checkout URL.
	InitializeTransaction(ctx context.Context, creds paystack.Credentials, req paystack.TransactionRequest) (string, error)

	// FetchTransaction returns the gateway's record for a reference.
	FetchTransaction(ctx context.Context, creds paystack.Credentials, ref string) (*paystack.Transaction, error)
}

// OrderStore is the order-management collaborator. SetOrderStatus must be
// idempotent: repeating a transition that already holds is not an error.
type OrderStore interface {
	GetOrder(ctx context.Context, id uint64) (*models.Order, error)
	SetOrderStatus(ctx context.Context, id uint64, status string, flags models.StatusFlags) error
}

// AttemptLog records initialization attempts and verification outcomes.
type AttemptLog interface {
	Record(ctx context.Context, attempt *models.PaymentAttempt) error
	MarkOutcome(ctx context.Context, ref, status string, gatewayAmount int64, lastErr string) error
}

// Report describes a settled payment.
type Report struct {
	OrderID     uint64
	OrderNumber string
	Reference   string
	AmountPaid  decimal.Decimal
	Mode        paystack.Mode
}

// Reporter announces settled payments. Implementations must tolerate being
// called more than once for the same reference.
type Reporter interface {
	Report(ctx context.Context, r Report) error
}

// Level classifies a buyer-facing message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ResponseSink receives the buyer-facing side effects of a call.
type ResponseSink interface {
	Redirect(url string)
	Notify(message string, level Level)
}
