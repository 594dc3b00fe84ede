package fills

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/pkg/order"
	"github.com/strandex/fillkit/pkg/token"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Plan is the allocator's output: the orders to fill and, index-aligned,
// how much of each to take. FullyFilled reports whether the requested
// base amount was reached exactly; a plan cut short by exhausted
// candidates is never fully filled.
type Plan struct {
	Orders      []*order.SignedOrder
	FillAmounts []decimal.Decimal
	FullyFilled bool
}

// Planner computes fill plans against a token registry. The registry is
// consulted only for Buy-side unit conversion; Sell plans never touch it.
type Planner struct {
	tokens     token.Registry
	classifier Classifier
}

type Option func(*Planner)

// WithClassifier replaces the auction classifier. The default treats
// every order as a plain limit order.
func WithClassifier(c Classifier) Option {
	return func(p *Planner) { p.classifier = c }
}

func NewPlanner(tokens token.Registry, opts ...Option) *Planner {
	p := &Planner{
		tokens:     tokens,
		classifier: NoAuctions{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Allocate walks the candidates best execution price first (ascending for
// Buy, descending for Sell; price ties keep their input order) and takes
// from each until target base units are covered or the list runs out.
//
// For Buy, every recorded amount is re-expressed in the order's taker
// (quote) asset immediately after it is computed: base fill -> maker
// decimal units -> times the candidate price -> taker base units. All
// arithmetic is exact; each final amount is rounded up to an integer base
// unit once at the end, so a plan never under-delivers.
//
// The caller's slice is left untouched and the returned plan shares no
// state with it beyond the order pointers.
func (p *Planner) Allocate(side order.Side, target decimal.Decimal, candidates []order.Candidate) (*Plan, error) {
	if target.IsNegative() {
		return nil, fmt.Errorf("%w: negative target %s", ErrInvalidArgument, target)
	}

	sorted := make([]order.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if side == order.Buy {
			return sorted[i].Price.LessThan(sorted[j].Price)
		}
		return sorted[i].Price.GreaterThan(sorted[j].Price)
	})

	plan := &Plan{}
	filled := decimal.Zero
	for _, c := range sorted {
		if filled.GreaterThanOrEqual(target) {
			break
		}
		if p.classifier.IsDutchAuction(c.Order) {
			// Auction formats cannot be priced statically; leave them
			// to a dedicated path.
			continue
		}

		available := c.Available()
		fill := available
		if filled.Add(available).GreaterThan(target) {
			fill = target.Sub(filled)
			filled = target
		} else {
			filled = filled.Add(available)
		}

		if side == order.Buy {
			var err error
			if fill, err = p.quoteAmount(c, fill); err != nil {
				return nil, err
			}
		}

		plan.Orders = append(plan.Orders, c.Order)
		plan.FillAmounts = append(plan.FillAmounts, fill)
	}
	plan.FullyFilled = filled.Equal(target)

	// Terminal rounding: fills must never under-deliver to fractional
	// truncation, so round toward positive infinity.
	for i, amount := range plan.FillAmounts {
		plan.FillAmounts[i] = amount.Ceil()
	}

	return plan, nil
}

// quoteAmount converts a base-unit fill into the order's taker asset
// using the maker/taker token decimals behind the order's asset data.
func (p *Planner) quoteAmount(c order.Candidate, baseFill decimal.Decimal) (decimal.Decimal, error) {
	maker, err := p.tokens.ByAssetData(c.Order.MakerAssetData)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("maker asset: %w", err)
	}
	taker, err := p.tokens.ByAssetData(c.Order.TakerAssetData)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("taker asset: %w", err)
	}

	units := token.ToUnits(baseFill, maker.Decimals)
	return token.ToBaseUnits(units.Mul(c.Price), taker.Decimals), nil
}
