package payment

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"paystack-bridge/internal/reference"
)

// maxParamLength caps every sanitized parameter value.
const maxParamLength = 512

// CallbackParams are the typed, sanitized inputs of a callback.
type CallbackParams struct {
	Reference string
	Extra     map[string]string
}

// SanitizeParams keeps parameters whose key is made of [A-Za-z0-9_-], takes
// the first value of each, drops control characters, trims whitespace and
// caps the length.
func SanitizeParams(values url.Values) map[string]string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if !validKey(k) || len(values[k]) == 0 {
			continue
		}
		out[k] = cleanValue(values[k][0])
	}
	return out
}

// ParseCallbackParams extracts the transaction reference from a callback.
// Paystack sends it as trxref and reference; trxref wins.
func ParseCallbackParams(values url.Values) (CallbackParams, error) {
	params := SanitizeParams(values)

	ref := params["trxref"]
	if ref == "" {
		ref = params["reference"]
	}
	if ref == "" {
		return CallbackParams{Extra: params}, ErrMissingReference
	}
	if len(ref) > reference.MaxLength || !base64Alphabet(ref) {
		return CallbackParams{Extra: params}, fmt.Errorf("%w: unexpected characters", ErrMalformedReference)
	}

	delete(params, "trxref")
	delete(params, "reference")
	return CallbackParams{Reference: ref, Extra: params}, nil
}

func validKey(k string) bool {
	if k == "" || len(k) > 64 {
		return false
	}
	for _, r := range k {
		if !(r == '_' || r == '-' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}

func cleanValue(v string) string {
	v = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)
	v = strings.TrimSpace(v)
	if len(v) > maxParamLength {
		v = v[:maxParamLength]
	}
	return v
}

func base64Alphabet(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '+', r == '/', r == '=', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
