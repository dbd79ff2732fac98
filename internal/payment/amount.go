package payment

import "github.com/shopspring/decimal"

// MinorUnitFactor converts major currency units to the gateway's minor units.
const MinorUnitFactor = 100

var minorFactor = decimal.NewFromInt(MinorUnitFactor)

// MinorUnits converts a major-unit amount, rounding half away from zero.
func MinorUnits(major decimal.Decimal) int64 {
	return major.Mul(minorFactor).Round(0).IntPart()
}

// MajorUnits converts a minor-unit amount back to major units exactly.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorFactor)
}
