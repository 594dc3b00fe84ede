package token

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/strandex/fillkit/pkg/order"
)

// Store provides Pebble-based persistence for the token table, so a node
// keeps its registry across restarts and can grow it at runtime.
type Store struct {
	db *pebble.DB
}

// NewStore opens a Pebble database at the given path
func NewStore(dbPath string) (*Store, error) {
	opts := &pebble.Options{
		// The token table is small; keep the footprint modest
		Cache:        pebble.NewCache(8 << 20),  // 8MB cache
		MemTableSize: 4 << 20,                   // 4MB memtable
		MaxOpenFiles: 200,
		BytesPerSync: 512 << 10, // 512KB
	}

	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", dbPath, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Put persists a token to Pebble, overwriting any previous entry
func (s *Store) Put(t Token) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	key := tokenKey(t.Address)
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

func (s *Store) ByAddress(addr common.Address) (Token, error) {
	key := tokenKey(addr)
	data, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return Token{}, fmt.Errorf("token %s: %w", addr.Hex(), ErrUnknownToken)
	}
	if err != nil {
		return Token{}, fmt.Errorf("failed to get token: %w", err)
	}
	defer closer.Close()

	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return t, nil
}

func (s *Store) ByAssetData(assetData hexutil.Bytes) (Token, error) {
	addr, err := order.DecodeAssetAddress(assetData)
	if err != nil {
		return Token{}, err
	}
	return s.ByAddress(addr)
}

// List returns all persisted tokens
func (s *Store) List() ([]Token, error) {
	prefix := tokenPrefixAll()
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	var tokens []Token
	for iter.First(); iter.Valid(); iter.Next() {
		var t Token
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			continue // Skip invalid entries
		}
		tokens = append(tokens, t)
	}
	// Keys iterate in address order; present by symbol like the registry
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })

	return tokens, nil
}

// Empty reports whether the store holds no token entries
func (s *Store) Empty() (bool, error) {
	prefix := tokenPrefixAll()
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return false, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	return !iter.First(), nil
}

// Seed writes a token list atomically, used on first start
func (s *Store) Seed(tokens []Token) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, t := range tokens {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal token %s: %w", t.Symbol, err)
		}
		if err := batch.Set(tokenKey(t.Address), data, nil); err != nil {
			return fmt.Errorf("failed to batch token %s: %w", t.Symbol, err)
		}
	}

	return batch.Commit(pebble.Sync)
}
