package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client talks to the relayer's order-configuration endpoint. Beyond the
// transport timeout it carries no retry policy of its own; callers bound
// calls with their context.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var ErrRejected = errors.New("order config rejected")

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// OrderConfigRequest is the partial order sent to POST /order_config: the
// fields the maker has decided, with the venue left to pick the rest.
type OrderConfigRequest struct {
	ExchangeAddress       common.Address `json:"exchangeAddress"`
	MakerAddress          common.Address `json:"makerAddress"`
	TakerAddress          common.Address `json:"takerAddress"`
	MakerAssetAmount      *big.Int       `json:"makerAssetAmount"`
	TakerAssetAmount      *big.Int       `json:"takerAssetAmount"`
	MakerAssetData        hexutil.Bytes  `json:"makerAssetData"`
	TakerAssetData        hexutil.Bytes  `json:"takerAssetData"`
	ExpirationTimeSeconds *big.Int       `json:"expirationTimeSeconds"`
}

// OrderConfigResponse supplies the venue-chosen counterparty and fee
// fields for the order under construction.
type OrderConfigResponse struct {
	SenderAddress       common.Address `json:"senderAddress"`
	FeeRecipientAddress common.Address `json:"feeRecipientAddress"`
	MakerFee            *big.Int       `json:"makerFee"`
	TakerFee            *big.Int       `json:"takerFee"`
	MakerFeeAssetData   hexutil.Bytes  `json:"makerFeeAssetData"`
	TakerFeeAssetData   hexutil.Bytes  `json:"takerFeeAssetData"`
}

func (c *Client) GetOrderConfig(ctx context.Context, req OrderConfigRequest) (*OrderConfigResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order config request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order_config", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, snippet(raw))
	}

	var out OrderConfigResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode order config response: %w", err)
	}

	return &out, nil
}

// snippet keeps error messages readable when a relayer returns a page of
// HTML instead of JSON.
func snippet(b []byte) string {
	const max = 200
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
