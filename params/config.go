package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Venue struct {
	// ChainID identifies the network orders are built for (1 = mainnet).
	ChainID int64
	// ExchangeAddress is the venue's exchange contract.
	ExchangeAddress string
	// ProtocolFeeMultiplier is the per-order fee multiplier applied to the
	// gas price when estimating the worst-case protocol fee.
	ProtocolFeeMultiplier int64
	// OrderExpiry is how far in the future built orders expire.
	OrderExpiry time.Duration
}

type Gas struct {
	// Source selects the gas price oracle: "fixed", "station" or "rpc".
	Source string
	// DefaultPriceWei is the fixed oracle value and the fallback when a
	// remote source is unreachable.
	DefaultPriceWei int64
	// StationURL is the gas station JSON endpoint ("station" source).
	StationURL string
	// EthRPCURL is the Ethereum JSON-RPC endpoint ("rpc" source).
	EthRPCURL string
	// RefreshInterval bounds how often a remote source is re-queried.
	RefreshInterval time.Duration
}

type Relayer struct {
	// URL is the relayer API root, e.g. "http://localhost:3000/v3".
	URL     string
	Timeout time.Duration
}

type API struct {
	Port int
}

type Node struct {
	DataDir  string
	LogLevel string
	// TokenListPath optionally points at a JSON token list used to seed
	// the token store instead of the built-in Tokens.
	TokenListPath string
}

// TokenSeed is a token registry entry in config form. Addresses stay as
// strings here so params needs nothing beyond the standard library.
type TokenSeed struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type Config struct {
	Venue   Venue
	Gas     Gas
	Relayer Relayer
	API     API
	Node    Node
	Tokens  []TokenSeed
}

func Default() Config {
	return Config{
		Venue: Venue{
			ChainID:               1,
			ExchangeAddress:       "0x61935CbDd02287B511119DDb11Aeb42F1593b7Ef",
			ProtocolFeeMultiplier: 70000,
			OrderExpiry:           24 * time.Hour,
		},
		Gas: Gas{
			Source:          "fixed",
			DefaultPriceWei: 1_000_000_000, // 1 gwei
			StationURL:      "https://ethgasstation.info/json/ethgasAPI.json",
			EthRPCURL:       "",
			RefreshInterval: 15 * time.Second,
		},
		Relayer: Relayer{
			URL:     "http://localhost:3000/v3",
			Timeout: 10 * time.Second,
		},
		API: API{
			Port: 8080,
		},
		Node: Node{
			DataDir:  "data",
			LogLevel: "info",
		},
		Tokens: []TokenSeed{
			{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Decimals: 18},
			{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18},
			{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
			{Address: "0xE41d2489571d322189246DaFA5ebDe1F4699F498", Symbol: "ZRX", Decimals: 18},
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	// Override with environment variables
	if chainID := os.Getenv("VENUE_CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			cfg.Venue.ChainID = id
		}
	}
	cfg.Venue.ExchangeAddress = getEnv("VENUE_EXCHANGE_ADDRESS", cfg.Venue.ExchangeAddress)
	if mult := os.Getenv("PROTOCOL_FEE_MULTIPLIER"); mult != "" {
		if m, err := strconv.ParseInt(mult, 10, 64); err == nil {
			cfg.Venue.ProtocolFeeMultiplier = m
		}
	}
	if expiry := os.Getenv("ORDER_EXPIRY_SECONDS"); expiry != "" {
		if sec, err := strconv.Atoi(expiry); err == nil {
			cfg.Venue.OrderExpiry = time.Duration(sec) * time.Second
		}
	}

	cfg.Gas.Source = getEnv("GAS_SOURCE", cfg.Gas.Source)
	if price := os.Getenv("GAS_PRICE_WEI"); price != "" {
		if wei, err := strconv.ParseInt(price, 10, 64); err == nil {
			cfg.Gas.DefaultPriceWei = wei
		}
	}
	cfg.Gas.StationURL = getEnv("GAS_STATION_URL", cfg.Gas.StationURL)
	cfg.Gas.EthRPCURL = getEnv("ETH_RPC_URL", cfg.Gas.EthRPCURL)
	if refresh := os.Getenv("GAS_REFRESH_MS"); refresh != "" {
		if ms, err := strconv.Atoi(refresh); err == nil {
			cfg.Gas.RefreshInterval = time.Duration(ms) * time.Millisecond
		}
	}

	cfg.Relayer.URL = getEnv("RELAYER_URL", cfg.Relayer.URL)
	if timeout := os.Getenv("RELAYER_TIMEOUT_MS"); timeout != "" {
		if ms, err := strconv.Atoi(timeout); err == nil {
			cfg.Relayer.Timeout = time.Duration(ms) * time.Millisecond
		}
	}

	if port := os.Getenv("API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.API.Port = p
		}
	}

	cfg.Node.DataDir = getEnv("DATA_DIR", cfg.Node.DataDir)
	cfg.Node.LogLevel = getEnv("LOG_LEVEL", cfg.Node.LogLevel)
	cfg.Node.TokenListPath = getEnv("TOKEN_LIST_PATH", cfg.Node.TokenListPath)

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
