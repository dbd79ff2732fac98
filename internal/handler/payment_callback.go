package handler

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/payment"
	"paystack-bridge/internal/repository"
)

// OrderReader loads orders for display and initiation.
type OrderReader interface {
	GetOrder(ctx context.Context, id uint64) (*models.Order, error)
}

// PaymentHandler serves the buyer-facing checkout and callback routes.
type PaymentHandler struct {
	plugin *payment.Plugin
	orders OrderReader
	logger *zap.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(plugin *payment.Plugin, orders OrderReader, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		plugin: plugin,
		orders: orders,
		logger: logger,
	}
}

// Checkout starts a Paystack transaction for a confirmed order.
// POST /checkout/:id
func (h *PaymentHandler) Checkout(c echo.Context) error {
	order, page, ok := h.loadOrder(c)
	if !ok {
		return renderPaymentResult(c, page)
	}

	if order.Succeeded {
		page.Title = "Already paid"
		page.Messages = []pageMessage{{Text: "This order has already been paid.", Level: string(payment.LevelInfo)}}
		return renderPaymentResult(c, page)
	}

	sink := &echoSink{}
	h.plugin.Initiate(c.Request().Context(), order, c.FormValue("email"), sink)

	page.Title = "Payment not started"
	return sink.respond(c, page)
}

// PaystackCallback verifies the buyer's return from the hosted checkout.
// GET|POST /payment/paystack/callback
func (h *PaymentHandler) PaystackCallback(c echo.Context) error {
	values := url.Values{}
	for k, v := range c.QueryParams() {
		values[k] = v
	}
	if form, err := c.FormParams(); err == nil {
		for k, v := range form {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
	}

	sink := &echoSink{}
	res := h.plugin.HandleCallback(c.Request().Context(), values, sink)

	page := resultPage{Title: "Payment not verified"}
	if res.OrderNumber != "" {
		page.OrderNumber = res.OrderNumber
	}
	if res.Verdict == payment.Verified {
		page.Title = "Payment received"
	}
	return sink.respond(c, page)
}

// ThankYou is the default page after a verified payment.
// GET /orders/:id/thank-you
func (h *PaymentHandler) ThankYou(c echo.Context) error {
	order, page, ok := h.loadOrder(c)
	if !ok {
		return renderPaymentResult(c, page)
	}

	if order.Succeeded {
		page.Title = "Payment successful"
		page.Messages = []pageMessage{{Text: "Thank you for your order!", Level: string(payment.LevelInfo)}}
	} else {
		page.Title = "Payment pending"
		page.Messages = []pageMessage{{Text: "We have not confirmed a payment for this order yet.", Level: string(payment.LevelWarning)}}
	}
	return renderPaymentResult(c, page)
}

func (h *PaymentHandler) loadOrder(c echo.Context) (*models.Order, resultPage, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, resultPage{Title: "Error", Messages: []pageMessage{{Text: "Order not found.", Level: string(payment.LevelError)}}}, false
	}

	order, err := h.orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		msg := "Order not found."
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("Failed to load order", zap.Uint64("order_id", id), zap.Error(err))
			msg = "We could not load your order. Please try again later."
		}
		return nil, resultPage{Title: "Error", Messages: []pageMessage{{Text: msg, Level: string(payment.LevelError)}}}, false
	}

	return order, resultPage{OrderNumber: order.Number, Amount: order.Total.StringFixed(2)}, true
}
