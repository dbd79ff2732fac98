package payment

import (
	"errors"

	"paystack-bridge/internal/reference"
)

var (
	// ErrConfigIncomplete means the active mode has no key configured.
	ErrConfigIncomplete = errors.New("paystack configuration incomplete")

	// ErrMissingReference means the callback carried no trxref.
	ErrMissingReference = errors.New("callback without transaction reference")

	// ErrMalformedReference aliases the codec's error so callers can match
	// either name.
	ErrMalformedReference = reference.ErrMalformed

	// ErrAmountMismatch means the gateway recorded less than the order total.
	ErrAmountMismatch = errors.New("amount paid is below order total")

	// ErrNotSettled means the gateway record is not a successful charge.
	ErrNotSettled = errors.New("transaction not settled")

	// ErrInvalidOrder means an order cannot be turned into a transaction.
	ErrInvalidOrder = errors.New("order cannot be paid")
)

// Buyer-facing messages.
const (
	MsgConfigIncomplete   = "Your vendor's Paystack payment configuration seems to be incomplete, but your order has been created. Please contact the site administrator to fix this."
	MsgGatewayUnavailable = "We are unable to process your payment via Paystack at this time, but your order has been created. Please contact the site administrator for assistance."
	MsgInvalidOrder       = "This order cannot be paid online at the moment, but it has been created. Please contact the site administrator for assistance."
	MsgUnverified         = "We were unable to verify your transaction. If you have already completed the payment process on Paystack, please contact the site administrator for assistance."
	MsgTransportFailure   = "We could not reach Paystack to confirm your transaction. Please refresh this page in a moment; your order has not been changed."
	MsgOrderUpdateFailed  = "Your payment was confirmed but we could not update your order. Please contact the site administrator with your payment reference."
)
