package payment_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/payment"
	"paystack-bridge/internal/paystack"
	"paystack-bridge/internal/reference"
)

func encodeRef(t *testing.T, o *models.Order) string {
	t.Helper()
	ref, err := reference.Encode(reference.Fields{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		Created:     o.CreatedUnix,
		Total:       o.Total,
	})
	require.NoError(t, err)
	return ref
}

func callback(ref string) url.Values {
	return url.Values{"trxref": {ref}, "reference": {ref}}
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{authURL: "https://checkout.paystack.com/abc"}
	store := newFakeStore(order42())
	reporter := &fakeReporter{}
	p := payment.NewPlugin(gw, store, testSettings(), zap.NewNop(), payment.WithReporter(reporter))

	sink := &recordingSink{}
	started := p.Initiate(ctx, order42(), "", sink)
	require.Equal(t, payment.OutcomeRedirected, started.Outcome)
	assert.Equal(t, int64(150000), gw.initCalls[0].AmountMinor)
	assert.Equal(t, []string{"https://checkout.paystack.com/abc"}, sink.redirects)

	gw.trx = &paystack.Transaction{AmountMinor: 150000}
	sink = &recordingSink{}
	res := p.HandleCallback(ctx, callback(started.Reference), sink)

	assert.Equal(t, payment.Verified, res.Verdict)
	assert.NoError(t, res.Err)
	assert.Equal(t, uint64(42), res.OrderID)
	assert.Equal(t, []string{started.Reference}, gw.fetchCalls)
	assert.Equal(t, []string{"/orders/42/thank-you"}, sink.redirects)
	assert.Empty(t, sink.messages)

	require.Len(t, store.calls, 1)
	assert.Equal(t, statusCall{id: 42, status: "confirmed", flags: models.StatusFlags{Succeeded: true, Completed: true}}, store.calls[0])

	require.Len(t, reporter.reports, 1)
	assert.Equal(t, "ORD-42", reporter.reports[0].OrderNumber)
	assert.Equal(t, "1500.00", reporter.reports[0].AmountPaid.StringFixed(2))
}

func TestCallbackRedirectURL(t *testing.T) {
	settings := testSettings()
	settings.RedirectURL = "https://shop.example.com/paid"
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000, Status: "success"}}
	p := payment.NewPlugin(gw, newFakeStore(order42()), settings, zap.NewNop())
	sink := &recordingSink{}

	res := p.HandleCallback(context.Background(), callback(encodeRef(t, order42())), sink)
	assert.Equal(t, payment.Verified, res.Verdict)
	assert.Equal(t, []string{"https://shop.example.com/paid"}, sink.redirects)
}

func TestReconciliationMonotonicity(t *testing.T) {
	o := order42()
	o.Total = decimal.RequireFromString("5000.00")

	cases := []struct {
		paid    int64
		verdict payment.Verdict
	}{
		{500000, payment.Verified},
		{500001, payment.Verified},
		{900000, payment.Verified},
		{499999, payment.Unverified},
		{499900, payment.Unverified},
		{0, payment.Unverified},
	}

	for _, tc := range cases {
		gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: tc.paid}}
		store := newFakeStore(o)
		p := payment.NewPlugin(gw, store, testSettings(), zap.NewNop())
		sink := &recordingSink{}

		res := p.HandleCallback(context.Background(), callback(encodeRef(t, o)), sink)
		assert.Equal(t, tc.verdict, res.Verdict, "paid %d", tc.paid)

		if tc.verdict == payment.Verified {
			assert.Len(t, store.calls, 1)
			continue
		}
		assert.ErrorIs(t, res.Err, payment.ErrAmountMismatch)
		assert.Empty(t, store.calls)
		assert.Empty(t, sink.redirects)
		require.Len(t, sink.messages, 1)
		assert.Equal(t, payment.LevelError, sink.messages[0].level)
	}
}

func TestCallbackIdempotent(t *testing.T) {
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000, Status: "success"}}
	store := newFakeStore(order42())
	p := payment.NewPlugin(gw, store, testSettings(), zap.NewNop())
	ref := encodeRef(t, order42())

	first := p.HandleCallback(context.Background(), callback(ref), &recordingSink{})
	second := p.HandleCallback(context.Background(), callback(ref), &recordingSink{})

	assert.Equal(t, first.Verdict, second.Verdict)
	assert.Equal(t, payment.Verified, second.Verdict)
	assert.Len(t, gw.fetchCalls, 2, "every replay asks the gateway again")

	require.Len(t, store.calls, 2)
	assert.Equal(t, store.calls[0], store.calls[1])
	got, err := store.GetOrder(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
}

func TestCallbackReplayAfterGatewayChange(t *testing.T) {
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000, Status: "abandoned"}}
	p := payment.NewPlugin(gw, newFakeStore(order42()), testSettings(), zap.NewNop())
	ref := encodeRef(t, order42())

	first := p.HandleCallback(context.Background(), callback(ref), &recordingSink{})
	assert.Equal(t, payment.Unverified, first.Verdict)
	assert.ErrorIs(t, first.Err, payment.ErrNotSettled)

	gw.trx = &paystack.Transaction{AmountMinor: 150000, Status: "success"}
	second := p.HandleCallback(context.Background(), callback(ref), &recordingSink{})
	assert.Equal(t, payment.Verified, second.Verdict)
}

func TestCallbackMalformedInput(t *testing.T) {
	cases := map[string]url.Values{
		"no params":      {},
		"empty trxref":   {"trxref": {""}},
		"not base64":     {"trxref": {"%%%###"}},
		"garbage base64": {"trxref": {"aGVsbG8gd29ybGQ"}},
		"two fields":     {"trxref": {"NDI6T1JELTQy"}},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000}}
			store := newFakeStore(order42())
			p := payment.NewPlugin(gw, store, testSettings(), zap.NewNop())
			sink := &recordingSink{}

			var res payment.Result
			require.NotPanics(t, func() {
				res = p.HandleCallback(context.Background(), values, sink)
			})

			assert.Equal(t, payment.Unverified, res.Verdict)
			assert.True(t, errors.Is(res.Err, payment.ErrMalformedReference) || errors.Is(res.Err, payment.ErrMissingReference))
			assert.Empty(t, gw.fetchCalls)
			assert.Empty(t, store.calls)
			assert.Empty(t, sink.redirects)
			require.Len(t, sink.messages, 1)
			assert.Equal(t, payment.MsgUnverified, sink.messages[0].text)
		})
	}
}

func TestCallbackGatewayErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		verdict payment.Verdict
		msg     string
	}{
		{"transport", &paystack.GatewayError{Op: "verify", Err: context.DeadlineExceeded}, payment.TransportFailure, payment.MsgTransportFailure},
		{"server error", &paystack.GatewayError{Op: "verify", StatusCode: 502}, payment.TransportFailure, payment.MsgTransportFailure},
		{"status false", &paystack.GatewayError{Op: "verify", StatusCode: 200, Message: "not found"}, payment.Unverified, payment.MsgUnverified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{verErr: tc.err}
			attempts := &fakeAttempts{}
			store := newFakeStore(order42())
			p := payment.NewPlugin(gw, store, testSettings(), zap.NewNop(), payment.WithAttemptLog(attempts))
			sink := &recordingSink{}

			res := p.HandleCallback(context.Background(), callback(encodeRef(t, order42())), sink)

			assert.Equal(t, tc.verdict, res.Verdict)
			assert.Equal(t, uint64(42), res.OrderID)
			assert.Empty(t, store.calls)
			assert.Empty(t, sink.redirects)
			require.Len(t, sink.messages, 1)
			assert.Equal(t, tc.msg, sink.messages[0].text)

			if tc.verdict == payment.TransportFailure {
				assert.Empty(t, attempts.outcomes)
			} else {
				require.Len(t, attempts.outcomes, 1)
				assert.Equal(t, models.AttemptUnverified, attempts.outcomes[0].status)
			}
		})
	}
}

func TestCallbackStoreFailure(t *testing.T) {
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000}}
	store := newFakeStore(order42())
	store.setErr = errors.New("db down")
	reporter := &fakeReporter{}
	attempts := &fakeAttempts{}
	p := payment.NewPlugin(gw, store, testSettings(), zap.NewNop(), payment.WithReporter(reporter), payment.WithAttemptLog(attempts))
	sink := &recordingSink{}

	res := p.HandleCallback(context.Background(), callback(encodeRef(t, order42())), sink)

	assert.Equal(t, payment.Verified, res.Verdict)
	assert.Error(t, res.Err)
	assert.Empty(t, sink.redirects)
	require.Len(t, sink.messages, 1)
	assert.Equal(t, payment.MsgOrderUpdateFailed, sink.messages[0].text)
	assert.Empty(t, reporter.reports)

	// Verified, then reopened for the sweep.
	require.Len(t, attempts.outcomes, 2)
	assert.Equal(t, models.AttemptVerified, attempts.outcomes[0].status)
	assert.Equal(t, models.AttemptUnverified, attempts.outcomes[1].status)
}

func TestCallbackReporterFailureKeepsVerdict(t *testing.T) {
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000}}
	reporter := &fakeReporter{err: errors.New("telegram down")}
	p := payment.NewPlugin(gw, newFakeStore(order42()), testSettings(), zap.NewNop(), payment.WithReporter(reporter))
	sink := &recordingSink{}

	res := p.HandleCallback(context.Background(), callback(encodeRef(t, order42())), sink)
	assert.Equal(t, payment.Verified, res.Verdict)
	assert.NoError(t, res.Err)
	assert.Len(t, sink.redirects, 1)
}

func TestStrictReconcile(t *testing.T) {
	// Reference claims 10.00 while the stored order says 1500.00.
	forged := order42()
	forged.Total = decimal.RequireFromString("10.00")
	ref := encodeRef(t, forged)
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 1000}}

	t.Run("embedded baseline", func(t *testing.T) {
		p := payment.NewPlugin(gw, newFakeStore(order42()), testSettings(), zap.NewNop())
		res := p.Verify(context.Background(), ref)
		assert.Equal(t, payment.Verified, res.Verdict)
		assert.Equal(t, "10.00", res.Expected.StringFixed(2))
	})

	t.Run("strict baseline", func(t *testing.T) {
		settings := testSettings()
		settings.StrictReconcile = true
		p := payment.NewPlugin(gw, newFakeStore(order42()), settings, zap.NewNop())
		res := p.Verify(context.Background(), ref)
		assert.Equal(t, payment.Unverified, res.Verdict)
		assert.ErrorIs(t, res.Err, payment.ErrAmountMismatch)
		assert.Equal(t, "1500.00", res.Expected.StringFixed(2))
	})

	t.Run("strict unknown order", func(t *testing.T) {
		settings := testSettings()
		settings.StrictReconcile = true
		p := payment.NewPlugin(gw, newFakeStore(), settings, zap.NewNop())
		res := p.Verify(context.Background(), ref)
		assert.Equal(t, payment.Unverified, res.Verdict)
	})

	t.Run("strict store outage", func(t *testing.T) {
		settings := testSettings()
		settings.StrictReconcile = true
		store := newFakeStore(order42())
		store.getErr = errors.New("db down")
		p := payment.NewPlugin(gw, store, settings, zap.NewNop())
		res := p.Verify(context.Background(), ref)
		assert.Equal(t, payment.TransportFailure, res.Verdict)
	})
}

func TestVerifyRecordsOutcome(t *testing.T) {
	gw := &fakeGateway{trx: &paystack.Transaction{AmountMinor: 150000}}
	attempts := &fakeAttempts{}
	p := payment.NewPlugin(gw, newFakeStore(order42()), testSettings(), zap.NewNop(), payment.WithAttemptLog(attempts))
	ref := encodeRef(t, order42())

	res := p.Verify(context.Background(), ref)
	require.Equal(t, payment.Verified, res.Verdict)
	require.Len(t, attempts.outcomes, 1)
	assert.Equal(t, outcome{ref: ref, status: models.AttemptVerified, amount: 150000}, attempts.outcomes[0])
}

func TestInvalidate(t *testing.T) {
	ref := encodeRef(t, order42())

	t.Run("unpaid order", func(t *testing.T) {
		store := newFakeStore(order42())
		attempts := &fakeAttempts{}
		p := payment.NewPlugin(&fakeGateway{}, store, testSettings(), zap.NewNop(), payment.WithAttemptLog(attempts))

		err := p.Invalidate(context.Background(), payment.Result{Verdict: payment.Unverified, OrderID: 42, Reference: ref})
		require.NoError(t, err)
		require.Len(t, store.calls, 1)
		assert.Equal(t, statusCall{id: 42, status: "cancelled"}, store.calls[0])
		require.Len(t, attempts.outcomes, 1)
		assert.Equal(t, models.AttemptInvalid, attempts.outcomes[0].status)
	})

	t.Run("already paid", func(t *testing.T) {
		paid := order42()
		paid.Succeeded = true
		store := newFakeStore(paid)
		attempts := &fakeAttempts{}
		p := payment.NewPlugin(&fakeGateway{}, store, testSettings(), zap.NewNop(), payment.WithAttemptLog(attempts))

		require.NoError(t, p.Invalidate(context.Background(), payment.Result{Verdict: payment.Unverified, OrderID: 42, Reference: ref}))
		assert.Empty(t, store.calls)
		require.Len(t, attempts.outcomes, 1)
		assert.Equal(t, models.AttemptInvalid, attempts.outcomes[0].status)
	})

	t.Run("refuses verified", func(t *testing.T) {
		p := payment.NewPlugin(&fakeGateway{}, newFakeStore(order42()), testSettings(), zap.NewNop())
		assert.Error(t, p.Invalidate(context.Background(), payment.Result{Verdict: payment.Verified, OrderID: 42}))
	})
}
