package token

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/strandex/fillkit/pkg/order"
)

// StaticRegistry holds the token table in memory, thread-safe.
// Suits tests and deployments with a fixed token list.
type StaticRegistry struct {
	mu     sync.RWMutex
	tokens map[common.Address]Token
}

// NewStaticRegistry creates an empty registry
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		tokens: make(map[common.Address]Token),
	}
}

// Register adds a token to the registry
// Returns error if a token with the same address already exists
func (r *StaticRegistry) Register(t Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[t.Address]; exists {
		return fmt.Errorf("token %s already registered", t.Address.Hex())
	}

	r.tokens[t.Address] = t
	return nil
}

func (r *StaticRegistry) ByAddress(addr common.Address) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tokens[addr]
	if !exists {
		return Token{}, fmt.Errorf("token %s: %w", addr.Hex(), ErrUnknownToken)
	}

	return t, nil
}

func (r *StaticRegistry) ByAssetData(assetData hexutil.Bytes) (Token, error) {
	addr, err := order.DecodeAssetAddress(assetData)
	if err != nil {
		return Token{}, err
	}
	return r.ByAddress(addr)
}

// List returns all registered tokens sorted by symbol.
// Returns a copy to avoid concurrent modification
func (r *StaticRegistry) List() ([]Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })

	return tokens, nil
}

// Count returns the total number of registered tokens
func (r *StaticRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Exists checks if a token is registered
func (r *StaticRegistry) Exists(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tokens[addr]
	return exists
}
