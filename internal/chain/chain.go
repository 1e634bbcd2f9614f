// Package chain talks to the Ethereum network: keypair generation for new
// custody wallets, balance queries, transaction submission and lookups.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

var (
	// ErrInvalidAddress indicates a string that is not a hex Ethereum address.
	ErrInvalidAddress = errors.New("invalid ethereum address")

	// ErrKeyMismatch indicates the from address does not belong to the
	// provided private key.
	ErrKeyMismatch = errors.New("from address does not match the provided private key")

	// ErrTxNotFound indicates the transaction hash is unknown to the node.
	ErrTxNotFound = errors.New("transaction not found")
)

// Wallet is a freshly generated keypair. The private key leaves this
// process exactly once, in the registration response.
type Wallet struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}

// KeyGenerator is the only chain capability the custody flow depends on.
type KeyGenerator interface {
	GenerateWallet() (Wallet, error)
}

// Balance reports an address balance in wei and ether.
type Balance struct {
	Address    string
	BalanceWei string
	BalanceEth string
}

// Transaction is a normalized view of an on-chain transaction.
type Transaction struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	Timestamp   int64  `json:"timestamp"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     string `json:"gasUsed"`
	GasPrice    string `json:"gasPrice"`
	Status      bool   `json:"status"`
}

// TxRequest describes a transfer to sign and broadcast. Value is a decimal
// ether amount; Data and GasLimit are optional.
type TxRequest struct {
	From       string
	To         string
	Value      string
	Data       string
	GasLimit   uint64
	PrivateKey string
}

// Provider is the node-backed collaborator consumed by the wallet service.
type Provider interface {
	KeyGenerator
	BalanceOf(ctx context.Context, address string) (Balance, error)
	SendTransaction(ctx context.Context, req TxRequest) (string, error)
	TransactionDetails(ctx context.Context, hash string) (Transaction, error)
}

// HistoryClient lists past transactions for an address, newest first.
type HistoryClient interface {
	TransactionHistory(ctx context.Context, address string, limit int) ([]Transaction, error)
}

// ValidAddress reports whether s is a well-formed hex Ethereum address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// WeiToEther renders a wei amount as a decimal ether string.
func WeiToEther(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(params.Ether))
	return f.Text('f', -1)
}

// EtherToWei parses a decimal ether string into wei.
func EtherToWei(value string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(value)
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid ether amount %q", value)
	}
	r.Mul(r, new(big.Rat).SetInt64(params.Ether))
	if !r.IsInt() {
		return nil, fmt.Errorf("ether amount %q has sub-wei precision", value)
	}
	return r.Num(), nil
}
