package builder

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/pkg/order"
	"github.com/strandex/fillkit/pkg/relayer"
	"github.com/strandex/fillkit/pkg/token"
	"github.com/strandex/fillkit/pkg/util"
)

// Config pins the venue an order is built for.
type Config struct {
	ChainID         int64
	ExchangeAddress common.Address
	OrderExpiry     time.Duration
}

// Builder shapes unsigned venue orders. Counterparty and fee fields come
// from the relayer when one is configured and stay zero otherwise.
// Signing is someone else's job: Signature is always left empty.
type Builder struct {
	cfg     Config
	tokens  token.Registry
	relayer *relayer.Client // optional
	clock   util.Clock
}

func New(cfg Config, tokens token.Registry, rc *relayer.Client, clock util.Clock) *Builder {
	return &Builder{
		cfg:     cfg,
		tokens:  tokens,
		relayer: rc,
		clock:   clock,
	}
}

// LimitOrderParams describes the trade a maker wants to place: Amount is
// the base quantity and Price the quote per base, both in human units.
type LimitOrderParams struct {
	MakerAddress common.Address
	BaseToken    common.Address
	QuoteToken   common.Address
	Side         order.Side
	Amount       decimal.Decimal
	Price        decimal.Decimal
}

// BuildLimitOrder assembles an unsigned limit order. Amounts are
// committed with floor rounding so the maker never offers more than the
// human amounts given.
func (b *Builder) BuildLimitOrder(ctx context.Context, p LimitOrderParams) (*order.SignedOrder, error) {
	if !p.Amount.IsPositive() || !p.Price.IsPositive() {
		return nil, fmt.Errorf("amount and price must be positive, got %s at %s", p.Amount, p.Price)
	}

	base, err := b.tokens.ByAddress(p.BaseToken)
	if err != nil {
		return nil, fmt.Errorf("base token: %w", err)
	}
	quote, err := b.tokens.ByAddress(p.QuoteToken)
	if err != nil {
		return nil, fmt.Errorf("quote token: %w", err)
	}

	baseAmount := token.ToBaseUnitsFloor(p.Amount, base.Decimals).BigInt()
	quoteAmount := token.ToBaseUnitsFloor(p.Amount.Mul(p.Price), quote.Decimals).BigInt()
	if baseAmount.Sign() <= 0 || quoteAmount.Sign() <= 0 {
		return nil, fmt.Errorf("order of %s at %s rounds to zero base units", p.Amount, p.Price)
	}

	o := b.newOrder(p.MakerAddress)
	if p.Side == order.Buy {
		// Buyer gives quote, wants base
		o.MakerAssetAmount = quoteAmount
		o.TakerAssetAmount = baseAmount
		o.MakerAssetData = order.EncodeERC20AssetData(quote.Address)
		o.TakerAssetData = order.EncodeERC20AssetData(base.Address)
	} else {
		o.MakerAssetAmount = baseAmount
		o.TakerAssetAmount = quoteAmount
		o.MakerAssetData = order.EncodeERC20AssetData(base.Address)
		o.TakerAssetData = order.EncodeERC20AssetData(quote.Address)
	}

	if err := b.applyOrderConfig(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// CollectibleOrderParams describes a single collectible offered for a
// fungible payment token. Price is in human payment-token units.
type CollectibleOrderParams struct {
	MakerAddress common.Address
	Collectible  common.Address
	TokenID      *big.Int
	PaymentToken common.Address
	Price        decimal.Decimal
}

// BuildSellCollectibleOrder assembles an unsigned order selling one
// ERC721 token. Only the payment token needs registry metadata; the
// collectible itself has no decimals to resolve.
func (b *Builder) BuildSellCollectibleOrder(ctx context.Context, p CollectibleOrderParams) (*order.SignedOrder, error) {
	if !p.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive, got %s", p.Price)
	}
	if p.TokenID == nil {
		return nil, fmt.Errorf("collectible token id is required")
	}

	payment, err := b.tokens.ByAddress(p.PaymentToken)
	if err != nil {
		return nil, fmt.Errorf("payment token: %w", err)
	}

	takerAmount := token.ToBaseUnitsFloor(p.Price, payment.Decimals).BigInt()
	if takerAmount.Sign() <= 0 {
		return nil, fmt.Errorf("price %s rounds to zero payment units", p.Price)
	}

	o := b.newOrder(p.MakerAddress)
	o.MakerAssetAmount = big.NewInt(1)
	o.TakerAssetAmount = takerAmount
	o.MakerAssetData = order.EncodeERC721AssetData(p.Collectible, p.TokenID)
	o.TakerAssetData = order.EncodeERC20AssetData(payment.Address)

	if err := b.applyOrderConfig(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// newOrder carries the venue constants and the fields every order shares.
func (b *Builder) newOrder(maker common.Address) *order.SignedOrder {
	return &order.SignedOrder{
		ChainID:               b.cfg.ChainID,
		ExchangeAddress:       b.cfg.ExchangeAddress,
		MakerAddress:          maker,
		MakerFee:              big.NewInt(0),
		TakerFee:              big.NewInt(0),
		Salt:                  pseudoRandomSalt(),
		ExpirationTimeSeconds: big.NewInt(b.clock.Now().Add(b.cfg.OrderExpiry).Unix()),
	}
}

// applyOrderConfig lets the relayer pick counterparty and fee fields.
func (b *Builder) applyOrderConfig(ctx context.Context, o *order.SignedOrder) error {
	if b.relayer == nil {
		return nil
	}

	cfg, err := b.relayer.GetOrderConfig(ctx, relayer.OrderConfigRequest{
		ExchangeAddress:       o.ExchangeAddress,
		MakerAddress:          o.MakerAddress,
		TakerAddress:          o.TakerAddress,
		MakerAssetAmount:      o.MakerAssetAmount,
		TakerAssetAmount:      o.TakerAssetAmount,
		MakerAssetData:        o.MakerAssetData,
		TakerAssetData:        o.TakerAssetData,
		ExpirationTimeSeconds: o.ExpirationTimeSeconds,
	})
	if err != nil {
		return err
	}

	o.SenderAddress = cfg.SenderAddress
	o.FeeRecipientAddress = cfg.FeeRecipientAddress
	if cfg.MakerFee != nil {
		o.MakerFee = cfg.MakerFee
	}
	if cfg.TakerFee != nil {
		o.TakerFee = cfg.TakerFee
	}
	o.MakerFeeAssetData = cfg.MakerFeeAssetData
	o.TakerFeeAssetData = cfg.TakerFeeAssetData

	return nil
}

// pseudoRandomSalt decorrelates otherwise-identical orders.
func pseudoRandomSalt() *big.Int {
	var buf [32]byte
	_, _ = crand.Read(buf[:])
	return new(big.Int).SetBytes(buf[:])
}
