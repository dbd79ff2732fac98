package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"paystack-bridge/internal/payment"
)

// echoSink buffers the side effects requested by the payment plugin until the
// handler writes the response.
type echoSink struct {
	redirect string
	messages []pageMessage
}

var _ payment.ResponseSink = (*echoSink)(nil)

func (s *echoSink) Redirect(url string) {
	if s.redirect == "" {
		s.redirect = url
	}
}

func (s *echoSink) Notify(message string, level payment.Level) {
	s.messages = append(s.messages, pageMessage{Text: message, Level: string(level)})
}

// respond issues the redirect if one was requested, else renders the queued
// messages. The buyer always gets one or the other.
func (s *echoSink) respond(c echo.Context, page resultPage) error {
	if s.redirect != "" {
		return c.Redirect(http.StatusFound, s.redirect)
	}
	page.Messages = append(page.Messages, s.messages...)
	if len(page.Messages) == 0 {
		page.Messages = []pageMessage{{Text: payment.MsgUnverified, Level: string(payment.LevelError)}}
	}
	return renderPaymentResult(c, page)
}
