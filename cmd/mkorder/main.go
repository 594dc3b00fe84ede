package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/params"
	"github.com/strandex/fillkit/pkg/builder"
	"github.com/strandex/fillkit/pkg/order"
	"github.com/strandex/fillkit/pkg/relayer"
	"github.com/strandex/fillkit/pkg/token"
	"github.com/strandex/fillkit/pkg/util"
)

func main() {
	var (
		sideFlag   = flag.String("side", "buy", "order side: buy or sell")
		amountFlag = flag.String("amount", "", "base amount in human units, e.g. 1.5")
		priceFlag  = flag.String("price", "", "quote per base in human units, e.g. 2000")
		makerFlag  = flag.String("maker", "", "maker address (0x...)")
		baseFlag   = flag.String("base", "WETH", "base token symbol from the configured token list")
		quoteFlag  = flag.String("quote", "DAI", "quote token symbol from the configured token list")
		useRelayer = flag.Bool("relayer", false, "ask the configured relayer for fee and counterparty fields")
	)
	flag.Parse()

	// Step 1: Load config and the token list
	cfg := params.LoadFromEnv("")

	base, ok := seedBySymbol(cfg, *baseFlag)
	if !ok {
		fmt.Printf("Error: unknown base token %q\n", *baseFlag)
		os.Exit(1)
	}
	quote, ok := seedBySymbol(cfg, *quoteFlag)
	if !ok {
		fmt.Printf("Error: unknown quote token %q\n", *quoteFlag)
		os.Exit(1)
	}

	// Step 2: Parse inputs
	side, err := order.ParseSide(*sideFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		fmt.Printf("Error: invalid -amount %q\n", *amountFlag)
		os.Exit(1)
	}
	price, err := decimal.NewFromString(*priceFlag)
	if err != nil {
		fmt.Printf("Error: invalid -price %q\n", *priceFlag)
		os.Exit(1)
	}

	if !common.IsHexAddress(*makerFlag) {
		fmt.Printf("Error: -maker must be a hex address, got %q\n", *makerFlag)
		os.Exit(1)
	}
	maker := common.HexToAddress(*makerFlag)

	fmt.Println("Building unsigned order...")
	fmt.Printf("  Side: %s\n", side)
	fmt.Printf("  Amount: %s %s\n", amount, base.Symbol)
	fmt.Printf("  Price: %s %s per %s\n", price, quote.Symbol, base.Symbol)
	fmt.Printf("  Maker: %s\n\n", maker.Hex())

	// Step 3: Build the order; the relayer fills fee fields when asked
	var rc *relayer.Client
	if *useRelayer {
		rc = relayer.NewClient(cfg.Relayer.URL, cfg.Relayer.Timeout)
		fmt.Printf("Consulting relayer at %s...\n\n", cfg.Relayer.URL)
	}

	b := builder.New(builder.Config{
		ChainID:         cfg.Venue.ChainID,
		ExchangeAddress: common.HexToAddress(cfg.Venue.ExchangeAddress),
		OrderExpiry:     cfg.Venue.OrderExpiry,
	}, seedRegistry(cfg), rc, util.RealClock{})

	o, err := b.BuildLimitOrder(context.Background(), builder.LimitOrderParams{
		MakerAddress: maker,
		BaseToken:    common.HexToAddress(base.Address),
		QuoteToken:   common.HexToAddress(quote.Address),
		Side:         side,
		Amount:       amount,
		Price:        price,
	})
	if err != nil {
		fmt.Printf("Error building order: %v\n", err)
		os.Exit(1)
	}

	// Step 4: Serialize to JSON
	orderJSON, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Unsigned Order (JSON):")
	fmt.Println(string(orderJSON))
	fmt.Println()

	// Step 5: What to do with it
	fmt.Println("The signature field is empty: sign the order hash with your")
	fmt.Println("wallet tooling before handing the order to a relayer.")
	fmt.Println()
	fmt.Println("To preview a fill plan against a candidate set:")
	fmt.Printf("  POST http://localhost:%d/api/v1/quote\n", cfg.API.Port)
}

// seedBySymbol finds a token list entry by its symbol.
func seedBySymbol(cfg params.Config, symbol string) (params.TokenSeed, bool) {
	for _, seed := range cfg.Tokens {
		if seed.Symbol == symbol {
			return seed, true
		}
	}
	return params.TokenSeed{}, false
}

// seedRegistry builds an in-memory registry from the config token list,
// so the CLI needs no data directory.
func seedRegistry(cfg params.Config) *token.StaticRegistry {
	reg := token.NewStaticRegistry()
	for _, seed := range cfg.Tokens {
		if !common.IsHexAddress(seed.Address) {
			continue
		}
		_ = reg.Register(token.Token{
			Address:  common.HexToAddress(seed.Address),
			Symbol:   seed.Symbol,
			Decimals: seed.Decimals,
		})
	}
	return reg
}
