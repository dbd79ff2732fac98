package paystack

import (
	"errors"
	"fmt"
	"net/http"
)

// GatewayError is every failure of a gateway call: transport problems,
// non-2xx responses, bodies that are not the expected JSON, or status=false.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := "paystack " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Transport reports whether the call failed before the gateway could give a
// definitive answer: network errors, timeouts and 5xx responses.
func (e *GatewayError) Transport() bool {
	if e.StatusCode >= http.StatusInternalServerError {
		return true
	}
	return e.StatusCode == 0 && e.Err != nil
}

// IsTransport reports whether err is a transport-class GatewayError.
func IsTransport(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Transport()
}
