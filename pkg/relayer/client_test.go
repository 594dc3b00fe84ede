package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	testMaker    = common.HexToAddress("0x5409ED021D9299bf6814279A6A1411A7e866A631")
	testExchange = common.HexToAddress("0x61935CbDd02287B511119DDb11Aeb42F1593b7Ef")
	testFeeRecip = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

func testRequest() OrderConfigRequest {
	return OrderConfigRequest{
		ExchangeAddress:       testExchange,
		MakerAddress:          testMaker,
		MakerAssetAmount:      big.NewInt(1000),
		TakerAssetAmount:      big.NewInt(2000),
		MakerAssetData:        hexutil.MustDecode("0xf47261b0000000000000000000000000c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"),
		TakerAssetData:        hexutil.MustDecode("0xf47261b00000000000000000000000006b175474e89094c44da98b954eedeac495271d0f"),
		ExpirationTimeSeconds: big.NewInt(1700000000),
	}
}

func TestGetOrderConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v3/order_config" {
			t.Errorf("expected /v3/order_config, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}

		var req OrderConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.MakerAddress != testMaker {
			t.Errorf("expected maker %s, got %s", testMaker.Hex(), req.MakerAddress.Hex())
		}

		resp := OrderConfigResponse{
			FeeRecipientAddress: testFeeRecip,
			MakerFee:            big.NewInt(0),
			TakerFee:            big.NewInt(500),
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/v3", 5*time.Second)
	got, err := client.GetOrderConfig(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GetOrderConfig() error = %v", err)
	}

	if got.FeeRecipientAddress != testFeeRecip {
		t.Errorf("expected fee recipient %s, got %s", testFeeRecip.Hex(), got.FeeRecipientAddress.Hex())
	}
	if got.TakerFee.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("expected taker fee 500, got %s", got.TakerFee)
	}
}

// TestGetOrderConfigRejected tests that a non-2xx answer surfaces as
// ErrRejected with the relayer's reason attached
func TestGetOrderConfigRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"maker not whitelisted"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.GetOrderConfig(context.Background(), testRequest())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestGetOrderConfigBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.GetOrderConfig(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected decode error, got nil")
	}
}

func TestGetOrderConfigContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.GetOrderConfig(ctx, testRequest()); err == nil {
		t.Fatalf("expected context error, got nil")
	}
}
