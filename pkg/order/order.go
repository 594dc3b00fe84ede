package order

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// Side is the requester's direction: Buy consumes asks (cheapest first),
// Sell consumes bids (highest first).
type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

func (s Side) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Side) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	side, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// SignedOrder is a venue order the way relayers hand it out. It is
// read-only input here: this module never signs, submits or stores one.
type SignedOrder struct {
	ChainID             int64          `json:"chainId"`
	ExchangeAddress     common.Address `json:"exchangeAddress"`
	MakerAddress        common.Address `json:"makerAddress"`
	TakerAddress        common.Address `json:"takerAddress"`
	FeeRecipientAddress common.Address `json:"feeRecipientAddress"`
	SenderAddress       common.Address `json:"senderAddress"`

	MakerAssetAmount *big.Int `json:"makerAssetAmount"`
	TakerAssetAmount *big.Int `json:"takerAssetAmount"` // always > 0, used as a price divisor
	MakerFee         *big.Int `json:"makerFee"`
	TakerFee         *big.Int `json:"takerFee"`

	MakerAssetData    hexutil.Bytes `json:"makerAssetData"`
	TakerAssetData    hexutil.Bytes `json:"takerAssetData"`
	MakerFeeAssetData hexutil.Bytes `json:"makerFeeAssetData"`
	TakerFeeAssetData hexutil.Bytes `json:"takerFeeAssetData"`

	Salt                  *big.Int `json:"salt"`
	ExpirationTimeSeconds *big.Int `json:"expirationTimeSeconds"`

	// Signature is the raw signed representation, opaque to this module.
	Signature hexutil.Bytes `json:"signature"`
}

// Candidate wraps a standing order the way the venue ranks it: a unit
// price in quote per base, size and filled in base units.
type Candidate struct {
	Price  decimal.Decimal `json:"price"`
	Size   decimal.Decimal `json:"size"`
	Filled decimal.Decimal `json:"filled"` // consumed elsewhere; zero when untouched
	Order  *SignedOrder    `json:"order"`
}

// Available is the base quantity still open on the candidate, never
// negative even when Filled overshoots Size.
func (c Candidate) Available() decimal.Decimal {
	avail := c.Size.Sub(c.Filled)
	if avail.Sign() < 0 {
		return decimal.Zero
	}
	return avail
}
