package fills

import "github.com/strandex/fillkit/pkg/order"

// Classifier reports whether an order belongs to a special auction format
// the greedy allocator must not price statically.
type Classifier interface {
	IsDutchAuction(o *order.SignedOrder) bool
}

// NoAuctions is the default Classifier. Dutch auction detection is not
// wired up yet; every order is treated as a plain limit order.
type NoAuctions struct{}

func (NoAuctions) IsDutchAuction(*order.SignedOrder) bool { return false }
