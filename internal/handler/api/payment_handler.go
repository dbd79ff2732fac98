package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/payment"
)

// Verifier re-runs verification for a reference.
type Verifier interface {
	Verify(ctx context.Context, ref string) payment.Result
	Settle(ctx context.Context, res payment.Result) error
}

// AttemptFinder lists the attempts of an order.
type AttemptFinder interface {
	FindByOrder(ctx context.Context, orderID uint64) ([]models.PaymentAttempt, error)
}

// PaymentHandler serves the operator API.
type PaymentHandler struct {
	verifier Verifier
	attempts AttemptFinder
	logger   *zap.Logger
}

func NewPaymentHandler(verifier Verifier, attempts AttemptFinder, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{verifier: verifier, attempts: attempts, logger: logger}
}

type verdictResponse struct {
	Reference string `json:"reference"`
	Verdict   string `json:"verdict"`
	OrderID   uint64 `json:"order_id,omitempty"`
	Expected  string `json:"expected,omitempty"`
	PaidMinor int64  `json:"paid_minor"`
	Settled   bool   `json:"settled"`
	Error     string `json:"error,omitempty"`
}

// Verify re-derives the verdict for a reference and applies it when verified.
// POST /api/payments/:reference/verify
func (h *PaymentHandler) Verify(c echo.Context) error {
	params, err := payment.ParseCallbackParams(url.Values{"trxref": {c.Param("reference")}})
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	res := h.verifier.Verify(ctx, params.Reference)

	out := verdictResponse{
		Reference: res.Reference,
		Verdict:   res.Verdict.String(),
		OrderID:   res.OrderID,
		PaidMinor: res.PaidMinor,
	}
	if res.OrderID != 0 {
		out.Expected = res.Expected.StringFixed(2)
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	if res.Verdict == payment.Verified {
		if err := h.verifier.Settle(ctx, res); err != nil {
			h.logger.Error("Manual settle failed", zap.String("reference", res.Reference), zap.Error(err))
			out.Error = err.Error()
			return c.JSON(http.StatusOK, models.APIResponse{Status: false, Msg: "Verified but order update failed", Obj: out})
		}
		out.Settled = true
	}

	return successResponse(c, "Successful", out)
}

// OrderPayments lists the payment attempts of an order.
// GET /api/orders/:id/payments
func (h *PaymentHandler) OrderPayments(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid order id")
	}

	attempts, err := h.attempts.FindByOrder(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Failed to list payment attempts", zap.Uint64("order_id", id), zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Failed to retrieve payments")
	}

	return successResponse(c, "Successful", map[string]interface{}{
		"order_id": id,
		"payments": attempts,
	})
}
