package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

const maxSignaturesPage = 1000

// solanaNode is the subset of *rpc.Client the backend uses.
type solanaNode interface {
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendRawTransactionWithOpts(ctx context.Context, txData []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	Close() error
}

// Backend serves Solana over JSON-RPC.
type Backend struct {
	node     solanaNode
	pageSize int
	log      *zap.Logger
}

// Dial connects to rpcURL and checks the node answers getVersion.
func Dial(ctx context.Context, rpcURL string, log *zap.Logger) (*Backend, error) {
	client := rpc.New(rpcURL)
	version, err := client.GetVersion(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach solana node: %w", err)
	}

	backend := newBackend(client, log)
	backend.log.Info("connected to solana node", zap.String("version", version.SolanaCore))
	return backend, nil
}

func newBackend(node solanaNode, log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{node: node, pageSize: maxSignaturesPage, log: log}
}

func (b *Backend) Symbol() string      { return Symbol }
func (b *Backend) Family() chain.Family { return chain.FamilyBlockhash }

// Close closes the RPC client.
func (b *Backend) Close() error { return b.node.Close() }

func (b *Backend) GetBalance(ctx context.Context, address string) (chain.Amount, error) {
	account, err := ParseAddress(address)
	if err != nil {
		return chain.Amount{}, err
	}
	result, err := b.node.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return chain.Amount{}, chain.NewNetworkError("getBalance", err)
	}
	return LamportsToSOL(result.Value), nil
}

func (b *Backend) RecentBlockhash(ctx context.Context) (string, error) {
	result, err := b.node.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", chain.NewNetworkError("getLatestBlockhash", err)
	}
	if result == nil || result.Value == nil {
		return "", errors.New("node returned no blockhash")
	}
	return result.Value.Blockhash.String(), nil
}

// Broadcast submits the signed transaction with preflight checks. A
// preflight or validation failure reported by the node is a rejection.
func (b *Backend) Broadcast(ctx context.Context, payload chain.SignedPayload) (string, error) {
	sig, err := b.node.SendRawTransactionWithOpts(ctx, payload, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return "", &chain.BroadcastRejectedError{Reason: rpcErr.Message}
		}
		return "", chain.NewNetworkError("sendTransaction", err)
	}
	return sig.String(), nil
}

// FetchHistory pages getSignaturesForAddress backwards and loads each
// transaction to compute the balance change of address.
func (b *Backend) FetchHistory(ctx context.Context, address string, limit int) (chain.History, error) {
	account, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	pageSize := min(limit, b.pageSize)

	return chain.Paginate(ctx, limit, func(ctx context.Context, cursor string) ([]chain.Transaction, string, error) {
		opts := &rpc.GetSignaturesForAddressOpts{
			Limit:      &pageSize,
			Commitment: rpc.CommitmentConfirmed,
		}
		if cursor != "" {
			before, err := solana.SignatureFromBase58(cursor)
			if err != nil {
				return nil, "", fmt.Errorf("invalid signature cursor: %w", err)
			}
			opts.Before = before
		}

		sigs, err := b.node.GetSignaturesForAddressWithOpts(ctx, account, opts)
		if err != nil {
			return nil, "", chain.NewNetworkError("getSignaturesForAddress", err)
		}

		txs := make([]chain.Transaction, 0, len(sigs))
		for _, sig := range sigs {
			tx, err := b.loadTransaction(ctx, account, sig)
			if err != nil {
				return nil, "", err
			}
			txs = append(txs, tx)
		}

		next := ""
		if len(sigs) == pageSize {
			next = sigs[len(sigs)-1].Signature.String()
		}
		return txs, next, nil
	}), nil
}

func (b *Backend) loadTransaction(ctx context.Context, account solana.PublicKey, sig *rpc.TransactionSignature) (chain.Transaction, error) {
	tx := chain.Transaction{
		Hash:     sig.Signature.String(),
		Currency: Symbol,
		Status:   signatureStatus(sig),
	}
	if sig.BlockTime != nil {
		tx.Timestamp = sig.BlockTime.Time().UTC()
	}

	maxVersion := uint64(0)
	result, err := b.node.GetTransaction(ctx, sig.Signature, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return chain.Transaction{}, chain.NewNetworkError("getTransaction", err)
	}
	if result == nil || result.Meta == nil || result.Transaction == nil {
		b.log.Debug("transaction details unavailable", zap.String("signature", tx.Hash))
		return tx, nil
	}

	decoded, err := result.Transaction.GetTransaction()
	if err != nil {
		return chain.Transaction{}, fmt.Errorf("failed to decode transaction %s: %w", tx.Hash, err)
	}

	keys := decoded.Message.AccountKeys
	idx := -1
	for i, k := range keys {
		if k.Equals(account) {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(result.Meta.PreBalances) || idx >= len(result.Meta.PostBalances) {
		return tx, nil
	}

	amount, incoming := lamportDelta(result.Meta.PreBalances[idx], result.Meta.PostBalances[idx])
	tx.Amount = amount
	if incoming {
		tx.To = account.String()
		if len(keys) > 0 {
			tx.From = keys[0].String()
		}
	} else {
		tx.From = account.String()
		if idx == 0 {
			// the fee payer's loss includes the fee
			tx.Amount = amount.Sub(LamportsToSOL(result.Meta.Fee))
			if len(keys) > 1 {
				tx.To = keys[1].String()
			}
		}
	}
	return tx, nil
}

func signatureStatus(sig *rpc.TransactionSignature) chain.Status {
	if sig.Err != nil {
		return chain.StatusFailed
	}
	switch sig.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return chain.StatusConfirmed
	default:
		return chain.StatusPending
	}
}
