// Package reference builds the opaque payment reference that travels to the
// gateway and back through the buyer's redirect.
package reference

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Delimiter separates the order fields inside a decoded reference. Order
// numbers containing it are rejected at encode time.
const Delimiter = ":"

// MaxLength bounds the encoded form accepted by Decode.
const MaxLength = 512

// ErrMalformed is returned for any reference that cannot be decoded back into
// order fields.
var ErrMalformed = errors.New("malformed payment reference")

// Fields are the order identity values carried inside a reference.
type Fields struct {
	OrderID     uint64
	OrderNumber string
	Created     int64
	Total       decimal.Decimal
}

// Encode joins the fields and applies unpadded URL-safe base64.
func Encode(f Fields) (string, error) {
	if f.OrderNumber == "" {
		return "", fmt.Errorf("encode reference: empty order number")
	}
	if strings.Contains(f.OrderNumber, Delimiter) {
		return "", fmt.Errorf("encode reference: order number %q contains %q", f.OrderNumber, Delimiter)
	}
	if f.Total.IsNegative() {
		return "", fmt.Errorf("encode reference: negative total %s", f.Total.StringFixed(2))
	}

	raw := strings.Join([]string{
		strconv.FormatUint(f.OrderID, 10),
		f.OrderNumber,
		strconv.FormatInt(f.Created, 10),
		f.Total.StringFixed(2),
	}, Delimiter)

	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}

// Decode reverses Encode. Padded standard base64 is accepted as well. Every
// failure wraps ErrMalformed.
func Decode(ref string) (Fields, error) {
	if ref == "" || len(ref) > MaxLength {
		return Fields{}, fmt.Errorf("%w: bad length %d", ErrMalformed, len(ref))
	}

	raw, err := decodeBase64(ref)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	parts := strings.Split(string(raw), Delimiter)
	if len(parts) != 4 {
		return Fields{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformed, len(parts))
	}

	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: order id: %v", ErrMalformed, err)
	}
	if parts[1] == "" {
		return Fields{}, fmt.Errorf("%w: empty order number", ErrMalformed)
	}
	created, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: created: %v", ErrMalformed, err)
	}
	total, err := decimal.NewFromString(parts[3])
	if err != nil {
		return Fields{}, fmt.Errorf("%w: total: %v", ErrMalformed, err)
	}
	if total.IsNegative() {
		return Fields{}, fmt.Errorf("%w: negative total", ErrMalformed)
	}

	return Fields{
		OrderID:     id,
		OrderNumber: parts[1],
		Created:     created,
		Total:       total,
	}, nil
}

func decodeBase64(ref string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(ref); err == nil {
		return raw, nil
	}
	return base64.StdEncoding.DecodeString(ref)
}
