package api

import (
	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/pkg/order"
)

// API request and response types for REST endpoints and WebSocket messages

// ==============================
// REST Request Types
// ==============================

// QuoteRequest is the payload for POST /api/v1/quote. Amount is the
// target in base units of the asset being bought or sold; candidates are
// supplied by the caller, the server keeps no book of its own.
type QuoteRequest struct {
	Side       order.Side        `json:"side"`       // "buy" or "sell"
	Amount     decimal.Decimal   `json:"amount"`     // target, base units
	Candidates []order.Candidate `json:"candidates"` // price/size/filled plus the raw order
}

// BuildOrderRequest is the payload for POST /api/v1/orders/build.
// Amount and price are in human units; addresses are hex strings.
type BuildOrderRequest struct {
	MakerAddress string          `json:"makerAddress"`
	BaseToken    string          `json:"baseToken"`
	QuoteToken   string          `json:"quoteToken"`
	Side         order.Side      `json:"side"`
	Amount       decimal.Decimal `json:"amount"`
	Price        decimal.Decimal `json:"price"`
}

// ==============================
// REST Response Types
// ==============================

// QuoteResponse carries the fill plan plus its cost breakdown
type QuoteResponse struct {
	Side                  string               `json:"side"`
	Orders                []*order.SignedOrder `json:"orders"`
	FillAmounts           []decimal.Decimal    `json:"fillAmounts"` // index-aligned with orders
	FullyFilled           bool                 `json:"fullyFilled"`
	TotalTakerAssetAmount decimal.Decimal      `json:"totalTakerAssetAmount"`
	ProtocolFee           decimal.Decimal      `json:"protocolFee"` // wei
	GasPrice              decimal.Decimal      `json:"gasPrice"`    // wei
	Timestamp             int64                `json:"timestamp"`   // Unix milliseconds
}

// TokenInfo represents a registry entry
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// GasInfo represents the oracle's current view
type GasInfo struct {
	GasPrice            decimal.Decimal `json:"gasPrice"`            // wei
	ProtocolFeePerOrder decimal.Decimal `json:"protocolFeePerOrder"` // wei, at the current gas price
	Timestamp           int64           `json:"timestamp"`           // Unix milliseconds
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by client to subscribe to channels
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // "quotes", "gas"
}

// QuoteUpdate is broadcast on the quotes channel after every served quote
type QuoteUpdate struct {
	Type                  string          `json:"type"` // "quote"
	Side                  string          `json:"side"`
	Amount                decimal.Decimal `json:"amount"`
	OrderCount            int             `json:"orderCount"`
	FullyFilled           bool            `json:"fullyFilled"`
	TotalTakerAssetAmount decimal.Decimal `json:"totalTakerAssetAmount"`
	Timestamp             int64           `json:"timestamp"`
}

// GasUpdate is broadcast on the gas channel at the refresh cadence
type GasUpdate struct {
	Type      string          `json:"type"` // "gas"
	GasPrice  decimal.Decimal `json:"gasPrice"`
	Timestamp int64           `json:"timestamp"`
}
