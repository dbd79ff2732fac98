// Package notify reports settled payments to an operator channel.
package notify

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"paystack-bridge/internal/dedup"
	"paystack-bridge/internal/payment"
)

// Nop discards reports.
type Nop struct{}

func (Nop) Report(context.Context, payment.Report) error { return nil }

// chatName addresses a channel by its @username.
type chatName string

func (c chatName) Recipient() string { return string(c) }

// TelegramReporter posts one message per settled reference.
type TelegramReporter struct {
	bot     *tele.Bot
	chat    tele.Recipient
	deduper dedup.Deduper
	logger  *zap.Logger
}

// TelegramOptions configure a TelegramReporter.
type TelegramOptions struct {
	Token string
	Chat  string
	// APIURL overrides the Bot API endpoint.
	APIURL string
}

// NewTelegramReporter creates a reporter without contacting Telegram.
func NewTelegramReporter(opts TelegramOptions, deduper dedup.Deduper, logger *zap.Logger) (*TelegramReporter, error) {
	if opts.Token == "" || opts.Chat == "" {
		return nil, fmt.Errorf("telegram reporter: token and chat are required")
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     opts.APIURL,
		Token:   opts.Token,
		Offline: true,
		OnError: func(err error, _ tele.Context) {
			logger.Error("telebot error", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}

	return &TelegramReporter{
		bot:     bot,
		chat:    parseChat(opts.Chat),
		deduper: deduper,
		logger:  logger,
	}, nil
}

// Report sends the payment report unless this reference was already reported.
func (r *TelegramReporter) Report(ctx context.Context, rep payment.Report) error {
	if r.deduper != nil {
		seen, err := r.deduper.Seen(ctx, "report:"+rep.Reference)
		if err != nil {
			r.logger.Warn("Report dedup unavailable", zap.Error(err))
		} else if seen {
			return nil
		}
	}

	if _, err := r.bot.Send(r.chat, FormatReport(rep), tele.ModeHTML); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatReport renders the channel message for a settled payment.
func FormatReport(rep payment.Report) string {
	return fmt.Sprintf(
		"💵 New Paystack payment\n\n🧾 Order: %s (#%d)\n💸 Amount: %s\n🔗 Reference: <code>%s</code>\n⚙️ Mode: %s",
		html.EscapeString(rep.OrderNumber), rep.OrderID, formatAmount(rep.AmountPaid),
		html.EscapeString(rep.Reference), rep.Mode,
	)
}

func parseChat(chat string) tele.Recipient {
	chat = strings.TrimSpace(chat)
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		return tele.ChatID(id)
	}
	return chatName(chat)
}

func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}
