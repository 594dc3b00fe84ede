package gas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strandex/fillkit/pkg/util"
)

// Oracle supplies the gas price, in wei, that protocol fee estimates are
// built on.
type Oracle interface {
	GasPrice(ctx context.Context) (decimal.Decimal, error)
}

// Fixed always answers with the configured price.
type Fixed struct {
	price decimal.Decimal
}

func NewFixed(wei int64) Fixed {
	return Fixed{price: decimal.NewFromInt(wei)}
}

func (f Fixed) GasPrice(context.Context) (decimal.Decimal, error) {
	return f.price, nil
}

// RPC asks an Ethereum node for its gas price suggestion.
type RPC struct {
	client *ethclient.Client
}

func DialRPC(ctx context.Context, url string) (*RPC, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial eth rpc: %w", err)
	}
	return &RPC{client: client}, nil
}

func (r *RPC) GasPrice(ctx context.Context) (decimal.Decimal, error) {
	price, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	return decimal.NewFromBigInt(price, 0), nil
}

// Station polls a gas-station JSON endpoint. The "fast" figure arrives in
// tenths of gwei, so wei = fast x 1e8.
type Station struct {
	httpClient *http.Client
	url        string
}

func NewStation(url string) *Station {
	return &Station{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
	}
}

type stationResponse struct {
	Fast decimal.Decimal `json:"fast"`
}

func (s *Station) GasPrice(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("gas station status %d", resp.StatusCode)
	}

	var out stationResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to decode gas station response: %w", err)
	}
	if !out.Fast.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("gas station returned unusable fast price %s", out.Fast)
	}

	return out.Fast.Shift(8), nil
}

// Cached memoizes another oracle for a TTL and serves the last good
// answer when a refresh fails, so a flaky gas source does not take the
// quote path down with it.
type Cached struct {
	inner Oracle
	ttl   time.Duration
	clock util.Clock
	log   *zap.SugaredLogger

	mu        sync.Mutex
	price     decimal.Decimal
	fetchedAt time.Time
	primed    bool
}

func NewCached(inner Oracle, ttl time.Duration, clock util.Clock, log *zap.SugaredLogger) *Cached {
	return &Cached{inner: inner, ttl: ttl, clock: clock, log: log}
}

func (c *Cached) GasPrice(ctx context.Context) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.primed && c.clock.Now().Sub(c.fetchedAt) < c.ttl {
		return c.price, nil
	}

	price, err := c.inner.GasPrice(ctx)
	if err != nil {
		if c.primed {
			c.log.Warnw("gas_refresh_failed", "err", err)
			return c.price, nil
		}
		return decimal.Decimal{}, err
	}

	c.price = price
	c.fetchedAt = c.clock.Now()
	c.primed = true

	return price, nil
}
