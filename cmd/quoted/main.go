package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/params"
	"github.com/strandex/fillkit/pkg/api"
	"github.com/strandex/fillkit/pkg/builder"
	"github.com/strandex/fillkit/pkg/fills"
	"github.com/strandex/fillkit/pkg/gas"
	"github.com/strandex/fillkit/pkg/relayer"
	"github.com/strandex/fillkit/pkg/token"
	"github.com/strandex/fillkit/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	// Setup logging (write to both console and file)
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = filepath.Join(cfg.Node.DataDir, "quoted.log")
	}

	logger, err := util.NewLoggerWithFile(cfg.Node.LogLevel, logFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", logFile)

	// ---- Token store ----
	store, err := token.NewStore(filepath.Join(cfg.Node.DataDir, "tokens"))
	if err != nil {
		sugar.Fatalw("token_store_open_failed", "err", err)
	}
	defer store.Close()

	empty, err := store.Empty()
	if err != nil {
		sugar.Fatalw("token_store_read_failed", "err", err)
	}
	if empty {
		seeds, err := tokenSeeds(cfg)
		if err != nil {
			sugar.Fatalw("token_seed_load_failed", "err", err)
		}
		tokens := make([]token.Token, 0, len(seeds))
		for _, seed := range seeds {
			if !common.IsHexAddress(seed.Address) {
				sugar.Fatalw("token_seed_invalid_address", "address", seed.Address, "symbol", seed.Symbol)
			}
			tokens = append(tokens, token.Token{
				Address:  common.HexToAddress(seed.Address),
				Symbol:   seed.Symbol,
				Decimals: seed.Decimals,
			})
		}
		if err := store.Seed(tokens); err != nil {
			sugar.Fatalw("token_seed_failed", "err", err)
		}
		sugar.Infow("token_store_seeded", "tokens", len(tokens))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Gas oracle ----
	var source gas.Oracle
	switch cfg.Gas.Source {
	case "station":
		source = gas.NewStation(cfg.Gas.StationURL)
	case "rpc":
		rpc, err := gas.DialRPC(ctx, cfg.Gas.EthRPCURL)
		if err != nil {
			sugar.Fatalw("eth_rpc_dial_failed", "url", cfg.Gas.EthRPCURL, "err", err)
		}
		source = rpc
	default:
		source = gas.NewFixed(cfg.Gas.DefaultPriceWei)
	}
	oracle := gas.NewCached(source, cfg.Gas.RefreshInterval, util.RealClock{}, sugar)
	sugar.Infow("gas_oracle_ready", "source", cfg.Gas.Source)

	// ---- Relayer (optional) ----
	var rc *relayer.Client
	if cfg.Relayer.URL != "" {
		rc = relayer.NewClient(cfg.Relayer.URL, cfg.Relayer.Timeout)
		sugar.Infow("relayer_configured", "url", cfg.Relayer.URL)
	}

	// ---- Planner & builder ----
	planner := fills.NewPlanner(store)
	bld := builder.New(builder.Config{
		ChainID:         cfg.Venue.ChainID,
		ExchangeAddress: common.HexToAddress(cfg.Venue.ExchangeAddress),
		OrderExpiry:     cfg.Venue.OrderExpiry,
	}, store, rc, util.RealClock{})

	// ---- API Server ----
	apiServer := api.NewServer(api.Deps{
		Planner:       planner,
		Builder:       bld,
		Tokens:        store,
		Oracle:        oracle,
		FeeMultiplier: decimal.NewFromInt(cfg.Venue.ProtocolFeeMultiplier),
	})

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	go func() {
		sugar.Infow("api_server_starting", "addr", addr)
		if err := apiServer.Start(addr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	sugar.Infow("quoted_started",
		"chain_id", cfg.Venue.ChainID,
		"fee_multiplier", cfg.Venue.ProtocolFeeMultiplier,
		"gas_source", cfg.Gas.Source)

	// Gas broadcast loop: push refreshed prices to WebSocket subscribers
	ticker := time.NewTicker(cfg.Gas.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sugar.Info("shutting down")
			return
		case <-ticker.C:
			price, err := oracle.GasPrice(ctx)
			if err != nil {
				sugar.Warnw("gas_refresh_failed", "err", err)
				continue
			}
			apiServer.BroadcastGas(price)
		}
	}
}

// tokenSeeds returns the configured token list, preferring an external
// JSON file when one is set.
func tokenSeeds(cfg params.Config) ([]params.TokenSeed, error) {
	if cfg.Node.TokenListPath == "" {
		return cfg.Tokens, nil
	}

	data, err := os.ReadFile(cfg.Node.TokenListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list: %w", err)
	}

	var seeds []params.TokenSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse token list %s: %w", cfg.Node.TokenListPath, err)
	}
	return seeds, nil
}
