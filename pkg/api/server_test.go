package api

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/pkg/builder"
	"github.com/strandex/fillkit/pkg/fills"
	"github.com/strandex/fillkit/pkg/gas"
	"github.com/strandex/fillkit/pkg/order"
	"github.com/strandex/fillkit/pkg/token"
	"github.com/strandex/fillkit/pkg/util"
)

var (
	wethAddr = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	daiAddr  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	usdcAddr = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := token.NewStaticRegistry()
	for _, tok := range []token.Token{
		{Address: wethAddr, Symbol: "WETH", Decimals: 18},
		{Address: daiAddr, Symbol: "DAI", Decimals: 18},
		{Address: usdcAddr, Symbol: "USDC", Decimals: 6},
	} {
		if err := reg.Register(tok); err != nil {
			t.Fatalf("register %s: %v", tok.Symbol, err)
		}
	}

	b := builder.New(builder.Config{
		ChainID:         1,
		ExchangeAddress: common.HexToAddress("0x61935CbDd02287B511119DDb11Aeb42F1593b7Ef"),
		OrderExpiry:     time.Hour,
	}, reg, nil, util.RealClock{})

	s := NewServer(Deps{
		Planner:       fills.NewPlanner(reg),
		Builder:       b,
		Tokens:        reg,
		Oracle:        gas.NewFixed(1_000_000_000),
		FeeMultiplier: dec("70000"),
	})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// sellWETHOrder is a maker selling WETH for DAI, the ask a buyer fills
func sellWETHOrder() *order.SignedOrder {
	return &order.SignedOrder{
		ChainID:          1,
		MakerAssetAmount: big.NewInt(1),
		TakerAssetAmount: big.NewInt(1),
		MakerFee:         big.NewInt(0),
		TakerFee:         big.NewInt(0),
		MakerAssetData:   order.EncodeERC20AssetData(wethAddr),
		TakerAssetData:   order.EncodeERC20AssetData(daiAddr),
	}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestQuoteEndpoint(t *testing.T) {
	srv := testServer(t)

	req := QuoteRequest{
		Side:   order.Buy,
		Amount: dec("100"),
		Candidates: []order.Candidate{
			{Price: dec("3"), Size: dec("80"), Order: sellWETHOrder()},
			{Price: dec("2"), Size: dec("40"), Order: sellWETHOrder()},
		},
	}

	resp := postJSON(t, srv.URL+"/api/v1/quote", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var quote QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !quote.FullyFilled {
		t.Error("expected fully filled quote")
	}
	if len(quote.Orders) != 2 || len(quote.FillAmounts) != 2 {
		t.Fatalf("expected 2 orders and 2 fills, got %d and %d", len(quote.Orders), len(quote.FillAmounts))
	}

	// Cheapest ask first: 40 base at price 2, then 60 at price 3,
	// re-expressed in the taker (quote) asset
	if want := dec("80"); !quote.FillAmounts[0].Equal(want) {
		t.Errorf("expected first fill %s, got %s", want, quote.FillAmounts[0])
	}
	if want := dec("180"); !quote.FillAmounts[1].Equal(want) {
		t.Errorf("expected second fill %s, got %s", want, quote.FillAmounts[1])
	}
	if want := dec("260"); !quote.TotalTakerAssetAmount.Equal(want) {
		t.Errorf("expected total %s, got %s", want, quote.TotalTakerAssetAmount)
	}
	if want := dec("140000000000000"); !quote.ProtocolFee.Equal(want) {
		t.Errorf("expected protocol fee %s, got %s", want, quote.ProtocolFee)
	}
	if want := dec("1000000000"); !quote.GasPrice.Equal(want) {
		t.Errorf("expected gas price %s, got %s", want, quote.GasPrice)
	}
}

func TestQuoteEndpointEmptyCandidates(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/quote", QuoteRequest{
		Side:   order.Sell,
		Amount: dec("10"),
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var quote QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if quote.FullyFilled {
		t.Error("expected unfilled quote with no candidates")
	}
	if len(quote.Orders) != 0 {
		t.Errorf("expected no orders, got %d", len(quote.Orders))
	}
	if !quote.TotalTakerAssetAmount.IsZero() {
		t.Errorf("expected zero total, got %s", quote.TotalTakerAssetAmount)
	}
	if !quote.ProtocolFee.IsZero() {
		t.Errorf("expected zero protocol fee, got %s", quote.ProtocolFee)
	}
}

func TestQuoteEndpointRejectsBadRequests(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "unknown side", body: `{"side":"hold","amount":"10"}`},
		{name: "missing side", body: `{"amount":"10"}`},
		{name: "negative amount", body: `{"side":"buy","amount":"-5"}`},
		{name: "not json", body: `certainly not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/quote", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", resp.StatusCode)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Error == "" {
				t.Error("expected an error field")
			}
		})
	}
}

func TestBuildOrderEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/orders/build", BuildOrderRequest{
		MakerAddress: "0x00000000000000000000000000000000000000a1",
		BaseToken:    wethAddr.Hex(),
		QuoteToken:   daiAddr.Hex(),
		Side:         order.Sell,
		Amount:       dec("1.5"),
		Price:        dec("2000"),
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var o order.SignedOrder
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	if want := big.NewInt(1_500_000_000_000_000_000); o.MakerAssetAmount.Cmp(want) != 0 {
		t.Errorf("expected maker amount %s, got %s", want, o.MakerAssetAmount)
	}
	if len(o.Signature) != 0 {
		t.Errorf("expected unsigned order, got signature %x", o.Signature)
	}
}

func TestBuildOrderEndpointRejectsBadAddress(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/orders/build", BuildOrderRequest{
		MakerAddress: "not-an-address",
		BaseToken:    wethAddr.Hex(),
		QuoteToken:   daiAddr.Hex(),
		Side:         order.Buy,
		Amount:       dec("1"),
		Price:        dec("2000"),
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestTokenEndpoints(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/tokens")
	if err != nil {
		t.Fatalf("get tokens: %v", err)
	}
	defer resp.Body.Close()

	var tokens []TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	// List is sorted by symbol
	if tokens[0].Symbol != "DAI" || tokens[2].Symbol != "WETH" {
		t.Errorf("unexpected token order: %s, %s, %s", tokens[0].Symbol, tokens[1].Symbol, tokens[2].Symbol)
	}

	one, err := http.Get(srv.URL + "/api/v1/tokens/" + usdcAddr.Hex())
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	defer one.Body.Close()

	var info TokenInfo
	if err := json.NewDecoder(one.Body).Decode(&info); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if info.Symbol != "USDC" || info.Decimals != 6 {
		t.Errorf("expected USDC with 6 decimals, got %s with %d", info.Symbol, info.Decimals)
	}
}

func TestTokenEndpointNotFound(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/tokens/0x0000000000000000000000000000000000000042")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}

	bad, err := http.Get(srv.URL + "/api/v1/tokens/zzz")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	defer bad.Body.Close()

	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", bad.StatusCode)
	}
}

func TestGasEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/gas")
	if err != nil {
		t.Fatalf("get gas: %v", err)
	}
	defer resp.Body.Close()

	var info GasInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode gas: %v", err)
	}

	if want := dec("1000000000"); !info.GasPrice.Equal(want) {
		t.Errorf("expected gas price %s, got %s", want, info.GasPrice)
	}
	if want := dec("70000000000000"); !info.ProtocolFeePerOrder.Equal(want) {
		t.Errorf("expected fee per order %s, got %s", want, info.ProtocolFeePerOrder)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestWebSocketQuoteBroadcast(t *testing.T) {
	srv := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	sub := WSSubscribeRequest{Op: "subscribe", Channels: []string{"quotes"}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Give the read pump a moment to record the subscription
	time.Sleep(200 * time.Millisecond)

	resp := postJSON(t, srv.URL+"/api/v1/quote", QuoteRequest{
		Side:   order.Buy,
		Amount: dec("10"),
		Candidates: []order.Candidate{
			{Price: dec("2"), Size: dec("40"), Order: sellWETHOrder()},
		},
	})
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var update QuoteUpdate
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}

	if update.Type != "quote" {
		t.Errorf("expected type quote, got %s", update.Type)
	}
	if update.Side != "buy" {
		t.Errorf("expected side buy, got %s", update.Side)
	}
	if update.OrderCount != 1 {
		t.Errorf("expected 1 order, got %d", update.OrderCount)
	}
	if !update.FullyFilled {
		t.Error("expected fully filled broadcast")
	}
}
