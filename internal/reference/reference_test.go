package reference_test

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paystack-bridge/internal/reference"
)

func TestRoundTrip(t *testing.T) {
	cases := []reference.Fields{
		{OrderID: 42, OrderNumber: "ORD-42", Created: 1700000000, Total: decimal.RequireFromString("1500.00")},
		{OrderID: 1, OrderNumber: "A", Created: 0, Total: decimal.Zero},
		{OrderID: 18446744073709551615, OrderNumber: "X_9/+", Created: -5, Total: decimal.RequireFromString("0.01")},
		{OrderID: 7, OrderNumber: "ORD 7", Created: 1, Total: decimal.RequireFromString("19.99")},
	}

	for _, f := range cases {
		t.Run(f.OrderNumber, func(t *testing.T) {
			ref, err := reference.Encode(f)
			require.NoError(t, err)

			assert.Equal(t, ref, url.QueryEscape(ref), "reference must survive as a query value")

			got, err := reference.Decode(ref)
			require.NoError(t, err)
			assert.Equal(t, f.OrderID, got.OrderID)
			assert.Equal(t, f.OrderNumber, got.OrderNumber)
			assert.Equal(t, f.Created, got.Created)
			assert.True(t, f.Total.Equal(got.Total), "total %s != %s", f.Total, got.Total)
		})
	}
}

func TestEncodeDistinctOrders(t *testing.T) {
	a, err := reference.Encode(reference.Fields{OrderID: 1, OrderNumber: "N", Created: 1, Total: decimal.NewFromInt(1)})
	require.NoError(t, err)
	b, err := reference.Encode(reference.Fields{OrderID: 2, OrderNumber: "N", Created: 1, Total: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncodeRejects(t *testing.T) {
	_, err := reference.Encode(reference.Fields{OrderID: 1, OrderNumber: "A:B", Total: decimal.NewFromInt(1)})
	assert.Error(t, err)

	_, err = reference.Encode(reference.Fields{OrderID: 1, OrderNumber: "", Total: decimal.NewFromInt(1)})
	assert.Error(t, err)

	_, err = reference.Encode(reference.Fields{OrderID: 1, OrderNumber: "A", Total: decimal.NewFromInt(-1)})
	assert.Error(t, err)
}

func TestDecodeLegacyStdBase64(t *testing.T) {
	ref := base64.StdEncoding.EncodeToString([]byte("42:ORD-42:1700000000:1500.00"))

	got, err := reference.Decode(ref)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.OrderID)
	assert.Equal(t, "ORD-42", got.OrderNumber)
	assert.Equal(t, int64(1700000000), got.Created)
	assert.Equal(t, "1500.00", got.Total.StringFixed(2))
}

func TestDecodeMalformed(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	cases := map[string]string{
		"empty":          "",
		"not base64":     "!!!***",
		"three fields":   enc("1:ORD:1700000000"),
		"five fields":    enc("1:ORD:1700000000:1.00:x"),
		"bad id":         enc("x:ORD:1700000000:1.00"),
		"negative id":    enc("-1:ORD:1700000000:1.00"),
		"empty number":   enc("1::1700000000:1.00"),
		"bad created":    enc("1:ORD:yesterday:1.00"),
		"bad total":      enc("1:ORD:1700000000:lots"),
		"negative total": enc("1:ORD:1700000000:-3.00"),
		"binary":         enc("\x00\xff\xfe"),
		"too long":       string(make([]byte, reference.MaxLength+1)),
	}

	for name, ref := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := reference.Decode(ref)
				assert.ErrorIs(t, err, reference.ErrMalformed)
			})
		})
	}
}
