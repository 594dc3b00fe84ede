package fills

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/pkg/order"
)

// considerationPrecision bounds the fractional digits carried through the
// maker/taker price division. Multiplication happens first, so each term
// rounds at most once.
const considerationPrecision = 36

// Consideration re-derives the total taker-asset amount a fill plan is
// worth, independently of how the plan was produced. For Buy the fill
// amounts are already taker-asset units (see Planner.Allocate), so the
// unit price is 1; for Sell each order contributes at its notional price
// makerAssetAmount/takerAssetAmount.
//
// Empty inputs are worth zero. Mismatched lengths are a caller bug and
// fail with ErrInvalidArgument.
func Consideration(side order.Side, orders []*order.SignedOrder, fillAmounts []decimal.Decimal) (decimal.Decimal, error) {
	if len(orders) != len(fillAmounts) {
		return decimal.Decimal{}, fmt.Errorf("%w: %d orders, %d fill amounts", ErrInvalidArgument, len(orders), len(fillAmounts))
	}

	total := decimal.Zero
	for i, o := range orders {
		if side == order.Buy {
			total = total.Add(fillAmounts[i])
			continue
		}
		if o.MakerAssetAmount == nil || o.TakerAssetAmount == nil || o.TakerAssetAmount.Sign() <= 0 {
			return decimal.Decimal{}, fmt.Errorf("%w: order %d has unusable asset amounts", ErrInvalidArgument, i)
		}
		maker := decimal.NewFromBigInt(o.MakerAssetAmount, 0)
		taker := decimal.NewFromBigInt(o.TakerAssetAmount, 0)
		total = total.Add(fillAmounts[i].Mul(maker).DivRound(taker, considerationPrecision))
	}

	return total, nil
}
