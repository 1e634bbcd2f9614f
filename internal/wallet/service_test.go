package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/ethergate/ethergate/internal/chain"
	"github.com/ethergate/ethergate/internal/fiat"
)

type fakeProvider struct {
	balance  chain.Balance
	sentReq  chain.TxRequest
	sendHash string
	sendErr  error
}

func (p *fakeProvider) GenerateWallet() (chain.Wallet, error) {
	return chain.Wallet{
		Address:    testAddress,
		PrivateKey: "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
	}, nil
}

func (p *fakeProvider) BalanceOf(_ context.Context, address string) (chain.Balance, error) {
	if !chain.ValidAddress(address) {
		return chain.Balance{}, chain.ErrInvalidAddress
	}
	return p.balance, nil
}

func (p *fakeProvider) SendTransaction(_ context.Context, req chain.TxRequest) (string, error) {
	p.sentReq = req
	return p.sendHash, p.sendErr
}

func (p *fakeProvider) TransactionDetails(_ context.Context, _ string) (chain.Transaction, error) {
	return chain.Transaction{}, chain.ErrTxNotFound
}

type fakeHistory struct {
	txs []chain.Transaction
}

func (h *fakeHistory) TransactionHistory(_ context.Context, _ string, limit int) ([]chain.Transaction, error) {
	if limit < len(h.txs) {
		return h.txs[:limit], nil
	}
	return h.txs, nil
}

type fakeConverter struct {
	rate float64
	err  error
}

func (c *fakeConverter) Convert(_ context.Context, _ string, currency string) (fiat.Value, error) {
	if c.err != nil {
		return fiat.Value{}, c.err
	}
	return fiat.Value{Currency: currency, Value: "100.00", ExchangeRate: c.rate}, nil
}

const testAddress = "0x7F8C1e2D3B4A5968778695A4b3C2D1E0f9A8B7C6"

func TestBalanceIncludesFiatValue(t *testing.T) {
	provider := &fakeProvider{balance: chain.Balance{Address: testAddress, BalanceWei: "1000000000000000000", BalanceEth: "1"}}
	svc := NewService(provider, &fakeHistory{}, &fakeConverter{rate: 2500}, "USD")

	out, err := svc.Balance(context.Background(), testAddress, "")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if out.BalanceEth != "1" {
		t.Fatalf("unexpected balance %+v", out)
	}
	if out.FiatValue == nil || out.FiatValue.Currency != "USD" {
		t.Fatalf("expected default-currency fiat value, got %+v", out.FiatValue)
	}
}

func TestBalanceSurvivesFiatFailure(t *testing.T) {
	provider := &fakeProvider{balance: chain.Balance{Address: testAddress, BalanceWei: "0", BalanceEth: "0"}}
	svc := NewService(provider, &fakeHistory{}, &fakeConverter{err: errors.New("rate source down")}, "USD")

	out, err := svc.Balance(context.Background(), testAddress, "EUR")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if out.FiatValue != nil {
		t.Fatalf("expected no fiat value on converter failure")
	}
}

func TestBalanceInvalidAddress(t *testing.T) {
	svc := NewService(&fakeProvider{}, &fakeHistory{}, &fakeConverter{}, "USD")

	if _, err := svc.Balance(context.Background(), "not-an-address", ""); !errors.Is(err, chain.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestSendRequiresFields(t *testing.T) {
	svc := NewService(&fakeProvider{}, &fakeHistory{}, &fakeConverter{}, "USD")

	_, err := svc.Send(context.Background(), SendInput{From: testAddress, To: testAddress})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestSendForwardsRequest(t *testing.T) {
	provider := &fakeProvider{sendHash: "0xdeadbeef"}
	svc := NewService(provider, &fakeHistory{}, &fakeConverter{}, "USD")

	hash, err := svc.Send(context.Background(), SendInput{
		From:       testAddress,
		To:         testAddress,
		Value:      "0.5",
		PrivateKey: "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if hash != "0xdeadbeef" {
		t.Fatalf("unexpected hash %q", hash)
	}
	if provider.sentReq.Value != "0.5" {
		t.Fatalf("request not forwarded: %+v", provider.sentReq)
	}
}

func TestCreateWalletReturnsKeypair(t *testing.T) {
	svc := NewService(&fakeProvider{}, &fakeHistory{}, &fakeConverter{}, "USD")

	w, err := svc.CreateWallet()
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if w.Address == "" || w.PrivateKey == "" {
		t.Fatalf("incomplete wallet %+v", w)
	}
}

func TestHistoryHonorsLimit(t *testing.T) {
	history := &fakeHistory{txs: []chain.Transaction{{Hash: "a"}, {Hash: "b"}, {Hash: "c"}}}
	svc := NewService(&fakeProvider{}, history, &fakeConverter{}, "USD")

	txs, err := svc.History(context.Background(), testAddress, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
}
