package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// EtherscanClient fetches transaction history through the Etherscan
// account API, which indexes by address where a bare node cannot.
type EtherscanClient struct {
	apiKey  string
	network string
	client  *http.Client
}

// NewEtherscanClient builds a history client for the given network
// ("mainnet", "sepolia", ...).
func NewEtherscanClient(apiKey, network string) *EtherscanClient {
	return &EtherscanClient{
		apiKey:  apiKey,
		network: network,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type etherscanTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	BlockNumber     string `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	TxReceiptStatus string `json:"txreceipt_status"`
}

type etherscanResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Result  []etherscanTx `json:"result"`
}

// TransactionHistory lists the most recent transactions for an address,
// newest first, capped at limit.
func (c *EtherscanClient) TransactionHistory(ctx context.Context, address string, limit int) ([]Transaction, error) {
	if !ValidAddress(address) {
		return nil, ErrInvalidAddress
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("etherscan api key is required for transaction history")
	}
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(limit))
	q.Set("sort", "desc")
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build etherscan request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call etherscan: %w", err)
	}
	defer resp.Body.Close()

	var body etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode etherscan response: %w", err)
	}
	// Status "0" with message "No transactions found" is an empty result,
	// not an error.
	if body.Status != "1" && body.Message != "No transactions found" {
		return nil, fmt.Errorf("etherscan error: %s", body.Message)
	}

	txs := make([]Transaction, 0, len(body.Result))
	for _, raw := range body.Result {
		txs = append(txs, normalizeEtherscanTx(raw))
		if len(txs) >= limit {
			break
		}
	}
	return txs, nil
}

func (c *EtherscanClient) endpoint() string {
	if c.network == "" || c.network == "mainnet" {
		return "https://api.etherscan.io/api"
	}
	return fmt.Sprintf("https://api-%s.etherscan.io/api", c.network)
}

func normalizeEtherscanTx(raw etherscanTx) Transaction {
	wei := new(big.Int)
	wei.SetString(raw.Value, 10)
	ts, _ := strconv.ParseInt(raw.TimeStamp, 10, 64)
	block, _ := strconv.ParseUint(raw.BlockNumber, 10, 64)

	return Transaction{
		Hash:        raw.Hash,
		From:        raw.From,
		To:          raw.To,
		Value:       WeiToEther(wei),
		Timestamp:   ts,
		BlockNumber: block,
		GasUsed:     raw.GasUsed,
		GasPrice:    raw.GasPrice,
		Status:      raw.TxReceiptStatus == "1",
	}
}
