package token

import "github.com/shopspring/decimal"

// Unit conversions move the exponent only, so they are exact for any
// amount and any decimals. Rounding happens where a caller commits to an
// integer base-unit amount, never inside the conversion.

// ToUnits converts a raw base-unit amount into its human decimal
// representation (1500000, 6 decimals -> 1.5).
func ToUnits(raw decimal.Decimal, decimals uint8) decimal.Decimal {
	return raw.Shift(-int32(decimals))
}

// ToBaseUnits converts a human decimal amount into base units. The result
// may carry a fractional part; rounding policy stays with the caller.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) decimal.Decimal {
	return amount.Shift(int32(decimals))
}

// ToBaseUnitsFloor commits to an integer base-unit amount, rounding down
// so a maker never offers more than the human amount it was given.
func ToBaseUnitsFloor(amount decimal.Decimal, decimals uint8) decimal.Decimal {
	return ToBaseUnits(amount, decimals).Floor()
}
