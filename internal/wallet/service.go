// Package wallet exposes read and transfer operations for on-chain
// wallets: balance (optionally priced in fiat), transaction submission,
// history and detail lookups, and standalone fiat conversion.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethergate/ethergate/internal/chain"
	"github.com/ethergate/ethergate/internal/fiat"
)

// ErrMissingFields indicates a transfer request without its required fields.
var ErrMissingFields = errors.New("from, to, value and privateKey are required")

// Service backs the wallet endpoints with the chain and fiat collaborators.
type Service struct {
	provider        chain.Provider
	history         chain.HistoryClient
	converter       fiat.Converter
	defaultCurrency string
}

// NewService builds a wallet service.
func NewService(provider chain.Provider, history chain.HistoryClient, converter fiat.Converter, defaultCurrency string) *Service {
	return &Service{provider: provider, history: history, converter: converter, defaultCurrency: defaultCurrency}
}

// CreateWallet draws a standalone keypair. Nothing is stored; the
// caller is the only holder of the returned key. Unlike registration
// there is no credential attached.
func (s *Service) CreateWallet() (chain.Wallet, error) {
	return s.provider.GenerateWallet()
}

// BalanceOutput reports the on-chain balance for an address together
// with its value in the requested (or default) fiat currency.
type BalanceOutput struct {
	Address    string      `json:"address"`
	BalanceWei string      `json:"balanceWei"`
	BalanceEth string      `json:"balanceEth"`
	FiatValue  *fiat.Value `json:"fiatValue,omitempty"`
}

// Balance fetches the balance and prices it in fiat. A fiat lookup
// failure does not fail the balance query.
func (s *Service) Balance(ctx context.Context, address, currency string) (BalanceOutput, error) {
	bal, err := s.provider.BalanceOf(ctx, address)
	if err != nil {
		return BalanceOutput{}, err
	}

	out := BalanceOutput{Address: bal.Address, BalanceWei: bal.BalanceWei, BalanceEth: bal.BalanceEth}

	cur := currency
	if cur == "" {
		cur = s.defaultCurrency
	}
	if cur != "" {
		if value, err := s.converter.Convert(ctx, bal.BalanceEth, cur); err == nil {
			out.FiatValue = &value
		}
	}
	return out, nil
}

// SendInput mirrors the transaction endpoint body.
type SendInput struct {
	From       string
	To         string
	Value      string
	Data       string
	GasLimit   uint64
	PrivateKey string
}

// Send validates and submits a signed transfer, returning its hash.
func (s *Service) Send(ctx context.Context, in SendInput) (string, error) {
	if in.From == "" || in.To == "" || in.Value == "" || in.PrivateKey == "" {
		return "", ErrMissingFields
	}
	return s.provider.SendTransaction(ctx, chain.TxRequest{
		From:       in.From,
		To:         in.To,
		Value:      in.Value,
		Data:       in.Data,
		GasLimit:   in.GasLimit,
		PrivateKey: in.PrivateKey,
	})
}

// History lists recent transactions for an address.
func (s *Service) History(ctx context.Context, address string, limit int) ([]chain.Transaction, error) {
	return s.history.TransactionHistory(ctx, address, limit)
}

// Details resolves a single transaction by hash.
func (s *Service) Details(ctx context.Context, hash string) (chain.Transaction, error) {
	return s.provider.TransactionDetails(ctx, hash)
}

// Convert prices an ether amount in the requested (or default) currency.
func (s *Service) Convert(ctx context.Context, ethAmount, currency string) (fiat.Value, error) {
	cur := currency
	if cur == "" {
		cur = s.defaultCurrency
	}
	value, err := s.converter.Convert(ctx, ethAmount, cur)
	if err != nil {
		return fiat.Value{}, fmt.Errorf("convert %s ETH to %s: %w", ethAmount, strings.ToUpper(cur), err)
	}
	return value, nil
}
