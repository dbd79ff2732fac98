package paystack

import "strings"

// Mode selects which secret key is used.
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

// ParseMode maps a configured value to a Mode. The second return value is
// false for anything other than "test" or "live", in which case ModeTest is
// returned.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLive:
		return ModeLive, true
	case ModeTest:
		return ModeTest, true
	default:
		return ModeTest, false
	}
}

// Credentials hold one key per mode; only the active mode's key is ever sent.
type Credentials struct {
	Mode    Mode
	TestKey string
	LiveKey string
}

// ActiveKey returns the key for the current mode.
func (c Credentials) ActiveKey() string {
	if c.Mode == ModeLive {
		return strings.TrimSpace(c.LiveKey)
	}
	return strings.TrimSpace(c.TestKey)
}

// Complete reports whether the active mode has a key configured.
func (c Credentials) Complete() bool {
	return c.ActiveKey() != ""
}
