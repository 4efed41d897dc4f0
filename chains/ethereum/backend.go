package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/chinmay1088/chaingate/api"
	"github.com/chinmay1088/chaingate/chain"
	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const maxExplorerPage = 100

// ethNode is the subset of *ethclient.Client the backend uses.
type ethNode interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, msg geth.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Backend serves an EVM chain over JSON-RPC and, optionally, account
// history from an etherscan-style explorer.
type Backend struct {
	node     ethNode
	chainID  *big.Int
	explorer *api.Explorer
	pageSize int
	log      *zap.Logger
	decimals sync.Map // common.Address -> int32
}

// Dial connects to rpcURL. A zero or nil chainID is taken from the node;
// otherwise it must match what the node reports. explorer may be nil, in
// which case history is not supported.
func Dial(ctx context.Context, rpcURL string, chainID *big.Int, explorer *api.Explorer, log *zap.Logger) (*Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum node: %w", err)
	}

	nodeChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}
	if chainID != nil && chainID.Sign() > 0 && chainID.Cmp(nodeChainID) != 0 {
		client.Close()
		return nil, fmt.Errorf("node reports chain id %s, configured %s", nodeChainID, chainID)
	}

	backend := newBackend(client, nodeChainID, explorer, log)
	backend.log.Info("connected to ethereum node", zap.String("chain_id", nodeChainID.String()))
	return backend, nil
}

func newBackend(node ethNode, chainID *big.Int, explorer *api.Explorer, log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{
		node:     node,
		chainID:  new(big.Int).Set(chainID),
		explorer: explorer,
		pageSize: maxExplorerPage,
		log:      log,
	}
}

func (b *Backend) Symbol() string      { return Symbol }
func (b *Backend) Family() chain.Family { return chain.FamilyAccount }

// ChainID returns a copy of the chain id in use.
func (b *Backend) ChainID() *big.Int { return new(big.Int).Set(b.chainID) }

// Close closes the RPC connection.
func (b *Backend) Close() { b.node.Close() }

func (b *Backend) GetBalance(ctx context.Context, address string) (chain.Amount, error) {
	account, err := parseAddress(address)
	if err != nil {
		return chain.Amount{}, err
	}
	wei, err := b.node.BalanceAt(ctx, account, nil)
	if err != nil {
		return chain.Amount{}, nodeError("eth_getBalance", err)
	}
	return WeiToEther(wei), nil
}

func (b *Backend) Nonce(ctx context.Context, address string) (uint64, error) {
	account, err := parseAddress(address)
	if err != nil {
		return 0, err
	}
	nonce, err := b.node.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, nodeError("eth_getTransactionCount", err)
	}
	return nonce, nil
}

func (b *Backend) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := b.node.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nodeError("eth_gasPrice", err)
	}
	return price, nil
}

// Broadcast decodes the signed transaction and submits it. Errors answered
// by the node (nonce too low, underpriced, insufficient funds) are
// rejections; anything else is a transport failure.
func (b *Backend) Broadcast(ctx context.Context, payload chain.SignedPayload) (string, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(payload); err != nil {
		return "", fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	if err := b.node.SendTransaction(ctx, tx); err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return "", &chain.BroadcastRejectedError{Reason: rpcErr.Error()}
		}
		return "", chain.NewNetworkError("eth_sendRawTransaction", err)
	}
	return tx.Hash().Hex(), nil
}

// IsTokenAddress reports whether s looks like a contract address.
func (b *Backend) IsTokenAddress(s string) bool {
	return common.IsHexAddress(s)
}

// TokenBalance returns the ERC-20 balance of wallet at contract token,
// scaled by the token's decimals.
func (b *Backend) TokenBalance(ctx context.Context, token, wallet string) (chain.Amount, error) {
	tokenAddr, err := parseAddress(token)
	if err != nil {
		return chain.Amount{}, fmt.Errorf("invalid token: %w", err)
	}
	owner, err := parseAddress(wallet)
	if err != nil {
		return chain.Amount{}, fmt.Errorf("invalid wallet: %w", err)
	}

	decimals, err := b.tokenDecimals(ctx, tokenAddr)
	if err != nil {
		return chain.Amount{}, err
	}
	raw, err := b.tokenBalance(ctx, tokenAddr, owner)
	if err != nil {
		return chain.Amount{}, err
	}
	return chain.FromBaseUnits(raw, decimals), nil
}

// FetchHistory reads normal transactions from the explorer, newest first.
func (b *Backend) FetchHistory(ctx context.Context, address string, limit int) (chain.History, error) {
	if b.explorer == nil {
		return nil, fmt.Errorf("ethereum history without an explorer: %w", chain.ErrNotSupported)
	}
	if _, err := parseAddress(address); err != nil {
		return nil, err
	}

	pageSize := min(limit, b.pageSize)

	return chain.Paginate(ctx, limit, func(ctx context.Context, cursor string) ([]chain.Transaction, string, error) {
		page := 1
		if cursor != "" {
			n, err := strconv.Atoi(cursor)
			if err != nil {
				return nil, "", fmt.Errorf("invalid page cursor %q", cursor)
			}
			page = n
		}

		records, err := b.explorer.TxList(ctx, address, page, pageSize)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch transactions: %w", err)
		}

		txs := make([]chain.Transaction, 0, len(records))
		for _, r := range records {
			tx, err := convertTransaction(r)
			if err != nil {
				return nil, "", err
			}
			txs = append(txs, tx)
		}

		next := ""
		if len(records) == pageSize {
			next = strconv.Itoa(page + 1)
		}
		return txs, next, nil
	}), nil
}

// nodeError wraps a failed read. Context errors stay reachable through Unwrap.
func nodeError(op string, err error) error {
	return chain.NewNetworkError(op, err)
}

func parseAddress(address string) (common.Address, error) {
	if err := ValidateAddress(address); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(address), nil
}

func convertTransaction(r api.ExplorerTx) (chain.Transaction, error) {
	value, ok := new(big.Int).SetString(r.Value, 10)
	if !ok {
		return chain.Transaction{}, fmt.Errorf("invalid value %q in transaction %s", r.Value, r.Hash)
	}

	tx := chain.Transaction{
		Hash:     r.Hash,
		From:     r.From,
		To:       r.To,
		Amount:   WeiToEther(value),
		Currency: Symbol,
		Status:   chain.StatusConfirmed,
	}

	if ts, err := strconv.ParseInt(r.TimeStamp, 10, 64); err == nil {
		tx.Timestamp = time.Unix(ts, 0).UTC()
	}
	if gasUsed, err := strconv.ParseUint(r.GasUsed, 10, 64); err == nil {
		tx.GasUsed = &gasUsed
	}
	if gasPrice, ok := new(big.Int).SetString(r.GasPrice, 10); ok {
		tx.GasPrice = gasPrice
	}

	switch {
	case r.IsError == "1" || r.TxReceiptStatus == "0":
		tx.Status = chain.StatusFailed
	case r.Confirmations == "0":
		tx.Status = chain.StatusPending
	}
	return tx, nil
}
