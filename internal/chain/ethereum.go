package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const transferGasLimit = 21_000

// NodeProvider implements Provider against a JSON-RPC Ethereum node
// (an Infura endpoint in the default configuration).
type NodeProvider struct {
	client *ethclient.Client

	mu      sync.Mutex
	chainID *big.Int
}

// NewNodeProvider dials the given JSON-RPC endpoint. The HTTP transport
// connects lazily, so construction succeeds without a reachable node;
// key generation never touches the network at all.
func NewNodeProvider(rpcURL string) (*NodeProvider, error) {
	if rpcURL == "" {
		return nil, errors.New("rpc url is required")
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum node: %w", err)
	}
	return &NodeProvider{client: client}, nil
}

// InfuraURL assembles the JSON-RPC endpoint for an Infura project.
func InfuraURL(network, projectID string) string {
	return fmt.Sprintf("https://%s.infura.io/v3/%s", network, projectID)
}

// GenerateWallet draws a fresh secp256k1 keypair and derives its address.
func (p *NodeProvider) GenerateWallet() (Wallet, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Wallet{
		Address:    crypto.PubkeyToAddress(priv.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(priv)),
	}, nil
}

// BalanceOf queries the latest balance for the address.
func (p *NodeProvider) BalanceOf(ctx context.Context, address string) (Balance, error) {
	if !ValidAddress(address) {
		return Balance{}, ErrInvalidAddress
	}
	wei, err := p.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return Balance{}, fmt.Errorf("query balance: %w", err)
	}
	return Balance{
		Address:    address,
		BalanceWei: wei.String(),
		BalanceEth: WeiToEther(wei),
	}, nil
}

// SendTransaction signs the transfer with the supplied private key,
// broadcasts it and waits for one confirmation.
func (p *NodeProvider) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	if !ValidAddress(req.From) || !ValidAddress(req.To) {
		return "", ErrInvalidAddress
	}

	priv, err := crypto.HexToECDSA(strings.TrimPrefix(req.PrivateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	sender := crypto.PubkeyToAddress(priv.PublicKey)
	if !strings.EqualFold(sender.Hex(), req.From) {
		return "", ErrKeyMismatch
	}

	value, err := EtherToWei(req.Value)
	if err != nil {
		return "", err
	}

	var data []byte
	if req.Data != "" && req.Data != "0x" {
		if data, err = hexutil.Decode(req.Data); err != nil {
			return "", fmt.Errorf("decode calldata: %w", err)
		}
	}

	nonce, err := p.client.PendingNonceAt(ctx, sender)
	if err != nil {
		return "", fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit = transferGasLimit
	}

	chainID, err := p.networkID(ctx)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(req.To), value, gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), priv)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := p.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("broadcast transaction: %w", err)
	}

	if err := p.waitMined(ctx, signed.Hash()); err != nil {
		return "", err
	}
	return signed.Hash().Hex(), nil
}

// TransactionDetails looks up a transaction, its receipt and block time.
func (p *NodeProvider) TransactionDetails(ctx context.Context, hash string) (Transaction, error) {
	txHash := common.HexToHash(hash)

	tx, pending, err := p.client.TransactionByHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return Transaction{}, ErrTxNotFound
		}
		return Transaction{}, fmt.Errorf("fetch transaction: %w", err)
	}
	if pending {
		return Transaction{}, fmt.Errorf("transaction %s not yet mined", hash)
	}

	receipt, err := p.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return Transaction{}, fmt.Errorf("fetch receipt: %w", err)
	}

	header, err := p.client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return Transaction{}, fmt.Errorf("fetch block header: %w", err)
	}

	chainID, err := p.networkID(ctx)
	if err != nil {
		return Transaction{}, err
	}
	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return Transaction{}, fmt.Errorf("recover sender: %w", err)
	}

	to := ""
	if tx.To() != nil {
		to = tx.To().Hex()
	}
	return Transaction{
		Hash:        tx.Hash().Hex(),
		From:        from.Hex(),
		To:          to,
		Value:       WeiToEther(tx.Value()),
		Timestamp:   int64(header.Time),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     fmt.Sprintf("%d", receipt.GasUsed),
		GasPrice:    tx.GasPrice().String(),
		Status:      receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}

// networkID memoizes the chain id on first success. A transient fetch
// failure is returned but not cached, so later calls retry.
func (p *NodeProvider) networkID(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chainID != nil {
		return p.chainID, nil
	}
	id, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	p.chainID = id
	return id, nil
}

func (p *NodeProvider) waitMined(ctx context.Context, hash common.Hash) error {
	for {
		if _, err := p.client.TransactionReceipt(ctx, hash); err == nil {
			return nil
		} else if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("poll receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
