package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"github.com/strandex/fillkit/pkg/builder"
	"github.com/strandex/fillkit/pkg/fills"
	"github.com/strandex/fillkit/pkg/gas"
	"github.com/strandex/fillkit/pkg/order"
	"github.com/strandex/fillkit/pkg/token"
)

// Deps collects everything the handlers answer from. The server itself
// is stateless: candidates arrive with each quote request and no order
// is ever stored.
type Deps struct {
	Planner       *fills.Planner
	Builder       *builder.Builder
	Tokens        token.Registry
	Oracle        gas.Oracle
	FeeMultiplier decimal.Decimal
}

// Server handles REST API and WebSocket connections
type Server struct {
	deps     Deps
	router   *mux.Router
	hub      *hub // stream fan-out
	quoteLog *os.File
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	// Optional quote audit log (one JSON object per line)
	var quoteLog *os.File
	if path := os.Getenv("QUOTE_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[api] WARNING: failed to open quote log file %s: %v", path, err)
		} else {
			log.Printf("[api] quote log: %s", path)
			quoteLog = f
		}
	}

	s := &Server{
		deps:     deps,
		router:   mux.NewRouter(),
		hub:      newHub(),
		quoteLog: quoteLog,
	}

	s.setupRoutes()

	// The hub runs for the server's lifetime so /ws works whether the
	// router is mounted via Start or embedded through Handler
	go s.hub.run()

	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Quoting
	api.HandleFunc("/quote", s.handleQuote).Methods("POST")

	// Order construction (unsigned)
	api.HandleFunc("/orders/build", s.handleBuildOrder).Methods("POST")

	// Token metadata
	api.HandleFunc("/tokens", s.handleGetTokens).Methods("GET")
	api.HandleFunc("/tokens/{address}", s.handleGetToken).Methods("GET")

	// Gas
	api.HandleFunc("/gas", s.handleGetGas).Methods("GET")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(s.router)

	log.Printf("[api] server starting on %s", addr)
	return http.ListenAndServe(addr, handler)
}

// Handler exposes the routed handler for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Side != order.Buy && req.Side != order.Sell {
		respondError(w, http.StatusBadRequest, "invalid side", `expected "buy" or "sell"`)
		return
	}

	plan, err := s.deps.Planner.Allocate(req.Side, req.Amount, req.Candidates)
	if err != nil {
		switch {
		case errors.Is(err, fills.ErrInvalidArgument):
			respondError(w, http.StatusBadRequest, "invalid quote request", err.Error())
		case errors.Is(err, token.ErrUnknownToken):
			respondError(w, http.StatusBadRequest, "unknown token", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "allocation failed", err.Error())
		}
		return
	}

	total, err := fills.Consideration(req.Side, plan.Orders, plan.FillAmounts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "valuation failed", err.Error())
		return
	}

	gasPrice, err := s.deps.Oracle.GasPrice(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "gas price unavailable", err.Error())
		return
	}

	orders := plan.Orders
	if orders == nil {
		orders = []*order.SignedOrder{}
	}
	fillAmounts := plan.FillAmounts
	if fillAmounts == nil {
		fillAmounts = []decimal.Decimal{}
	}

	response := QuoteResponse{
		Side:                  req.Side.String(),
		Orders:                orders,
		FillAmounts:           fillAmounts,
		FullyFilled:           plan.FullyFilled,
		TotalTakerAssetAmount: total,
		ProtocolFee:           fills.ProtocolFee(len(plan.Orders), s.deps.FeeMultiplier, gasPrice),
		GasPrice:              gasPrice,
		Timestamp:             time.Now().UnixMilli(),
	}

	s.logQuote("QUOTE_SERVED", map[string]interface{}{
		"side":         response.Side,
		"amount":       req.Amount.String(),
		"order_count":  len(orders),
		"fully_filled": response.FullyFilled,
		"total":        total.String(),
	})

	s.hub.broadcast("quotes", QuoteUpdate{
		Type:                  "quote",
		Side:                  response.Side,
		Amount:                req.Amount,
		OrderCount:            len(orders),
		FullyFilled:           response.FullyFilled,
		TotalTakerAssetAmount: total,
		Timestamp:             response.Timestamp,
	})

	respondJSON(w, response)
}

func (s *Server) handleBuildOrder(w http.ResponseWriter, r *http.Request) {
	var req BuildOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if !common.IsHexAddress(req.MakerAddress) {
		respondError(w, http.StatusBadRequest, "invalid maker address", "")
		return
	}
	if !common.IsHexAddress(req.BaseToken) || !common.IsHexAddress(req.QuoteToken) {
		respondError(w, http.StatusBadRequest, "invalid token address", "")
		return
	}

	o, err := s.deps.Builder.BuildLimitOrder(r.Context(), builder.LimitOrderParams{
		MakerAddress: common.HexToAddress(req.MakerAddress),
		BaseToken:    common.HexToAddress(req.BaseToken),
		QuoteToken:   common.HexToAddress(req.QuoteToken),
		Side:         req.Side,
		Amount:       req.Amount,
		Price:        req.Price,
	})
	if err != nil {
		if errors.Is(err, token.ErrUnknownToken) {
			respondError(w, http.StatusBadRequest, "unknown token", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "order build failed", err.Error())
		return
	}

	respondJSON(w, o)
}

func (s *Server) handleGetTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.deps.Tokens.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token list failed", err.Error())
		return
	}

	response := make([]TokenInfo, len(tokens))
	for i, t := range tokens {
		response[i] = TokenInfo{
			Address:  t.Address.Hex(),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		}
	}

	respondJSON(w, response)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	addressStr := vars["address"]

	if !common.IsHexAddress(addressStr) {
		respondError(w, http.StatusBadRequest, "invalid address", "")
		return
	}

	t, err := s.deps.Tokens.ByAddress(common.HexToAddress(addressStr))
	if err != nil {
		if errors.Is(err, token.ErrUnknownToken) {
			respondError(w, http.StatusNotFound, "token not found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "token lookup failed", err.Error())
		return
	}

	respondJSON(w, TokenInfo{
		Address:  t.Address.Hex(),
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	})
}

func (s *Server) handleGetGas(w http.ResponseWriter, r *http.Request) {
	gasPrice, err := s.deps.Oracle.GasPrice(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "gas price unavailable", err.Error())
		return
	}

	respondJSON(w, GasInfo{
		GasPrice:            gasPrice,
		ProtocolFeePerOrder: fills.ProtocolFee(1, s.deps.FeeMultiplier, gasPrice),
		Timestamp:           time.Now().UnixMilli(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast Methods
// ==============================

// BroadcastGas pushes a gas price update to subscribed WebSocket clients.
// Called from the refresh loop in cmd/quoted.
func (s *Server) BroadcastGas(gasPrice decimal.Decimal) {
	s.hub.broadcast("gas", GasUpdate{
		Type:      "gas",
		GasPrice:  gasPrice,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// logQuote writes a quote event to the audit log file
func (s *Server) logQuote(eventType string, data map[string]interface{}) {
	if s.quoteLog == nil {
		return // Logging disabled
	}

	entry := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"event":     eventType,
		"data":      data,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[api] failed to marshal quote log entry: %v", err)
		return
	}

	s.quoteLog.Write(jsonData)
	s.quoteLog.Write([]byte("\n"))
}
