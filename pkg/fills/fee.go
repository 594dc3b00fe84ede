package fills

import "github.com/shopspring/decimal"

// ProtocolFee is the worst-case protocol fee for filling orderCount
// orders: orderCount x feeMultiplier x gasPrice, in wei. The multiplier
// is venue configuration, not a package constant, so callers can price
// against arbitrary deployments. Decimal arithmetic keeps large gas
// prices exact.
func ProtocolFee(orderCount int, feeMultiplier, gasPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(orderCount)).Mul(feeMultiplier).Mul(gasPrice)
}
