package token

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Token is the metadata the allocator needs about a traded asset. Decimals
// drive every unit conversion, so a lookup miss is always surfaced as an
// error and never defaulted.
type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

var ErrUnknownToken = errors.New("unknown token")

// Registry resolves token metadata, keyed by address or by the asset-data
// encoding carried on an order.
type Registry interface {
	ByAddress(addr common.Address) (Token, error)
	ByAssetData(assetData hexutil.Bytes) (Token, error)
	List() ([]Token, error)
}
