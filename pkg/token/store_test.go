package token

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/strandex/fillkit/pkg/order"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "tokens"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSeedAndLookup(t *testing.T) {
	store := newTestStore(t)

	empty, err := store.Empty()
	if err != nil {
		t.Fatalf("Empty() error = %v", err)
	}
	if !empty {
		t.Fatalf("expected fresh store to be empty")
	}

	if err := store.Seed([]Token{testWETH, testUSDC}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	empty, err = store.Empty()
	if err != nil {
		t.Fatalf("Empty() error = %v", err)
	}
	if empty {
		t.Errorf("expected seeded store to be non-empty")
	}

	got, err := store.ByAddress(testWETH.Address)
	if err != nil {
		t.Fatalf("ByAddress() error = %v", err)
	}
	if got.Symbol != "WETH" || got.Decimals != 18 {
		t.Errorf("expected WETH/18, got %s/%d", got.Symbol, got.Decimals)
	}

	got, err = store.ByAssetData(order.EncodeERC20AssetData(testUSDC.Address))
	if err != nil {
		t.Fatalf("ByAssetData() error = %v", err)
	}
	if got.Symbol != "USDC" {
		t.Errorf("expected USDC, got %s", got.Symbol)
	}

	tokens, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(tokens))
	}
}

func TestStoreUnknownToken(t *testing.T) {
	store := newTestStore(t)

	if err := store.Put(testWETH); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	unknown := common.HexToAddress("0x2222222222222222222222222222222222222222")
	if _, err := store.ByAddress(unknown); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("expected ErrUnknownToken, got %v", err)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Put(testUSDC); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	relabeled := testUSDC
	relabeled.Symbol = "USDC.e"
	if err := store.Put(relabeled); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}

	got, err := store.ByAddress(testUSDC.Address)
	if err != nil {
		t.Fatalf("ByAddress() error = %v", err)
	}
	if got.Symbol != "USDC.e" {
		t.Errorf("expected overwritten symbol USDC.e, got %s", got.Symbol)
	}
}
