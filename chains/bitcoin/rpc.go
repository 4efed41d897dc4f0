package bitcoin

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/chinmay1088/chaingate/chain"
	"go.uber.org/zap"
)

// RPCConfig locates a bitcoind (or btcd) JSON-RPC endpoint.
type RPCConfig struct {
	Host       string
	User       string
	Pass       string
	DisableTLS bool
}

// rpcNode is the subset of *rpcclient.Client the backend uses.
type rpcNode interface {
	GetBlockCount() (int64, error)
	ListUnspentMinMaxAddresses(minConf, maxConf int, addrs []btcutil.Address) ([]btcjson.ListUnspentResult, error)
	EstimateSmartFee(confTarget int64, mode *btcjson.EstimateSmartFeeMode) (*btcjson.EstimateSmartFeeResult, error)
	SendRawTransaction(tx *wire.MsgTx, allowHighFees bool) (*chainhash.Hash, error)
	GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
	Shutdown()
}

// RPCBackend serves Bitcoin from a node's JSON-RPC interface. Balances and
// unspent outputs come from the node wallet, so the addresses queried must
// be imported as watch-only.
type RPCBackend struct {
	node     rpcNode
	params   *chaincfg.Params
	priority FeePriority
	log      *zap.Logger
}

// DialRPC connects to the node and checks it answers. rpcclient's HTTP POST
// mode is lazy, so a getblockcount round trip is what proves the connection.
func DialRPC(cfg RPCConfig, params *chaincfg.Params, priority FeePriority, log *zap.Logger) (*RPCBackend, error) {
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   cfg.DisableTLS,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc client: %w", err)
	}

	backend := newRPCBackend(client, params, priority, log)
	height, err := client.GetBlockCount()
	if err != nil {
		client.Shutdown()
		return nil, fmt.Errorf("failed to reach bitcoin node at %s: %w", cfg.Host, err)
	}
	backend.log.Info("connected to bitcoin node", zap.String("host", cfg.Host), zap.Int64("height", height))
	return backend, nil
}

func newRPCBackend(node rpcNode, params *chaincfg.Params, priority FeePriority, log *zap.Logger) *RPCBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &RPCBackend{node: node, params: params, priority: priority, log: log}
}

func (b *RPCBackend) Symbol() string      { return Symbol }
func (b *RPCBackend) Family() chain.Family { return chain.FamilyUTXO }

// Close shuts the client down.
func (b *RPCBackend) Close() {
	b.node.Shutdown()
}

func (b *RPCBackend) GetBalance(ctx context.Context, address string) (chain.Amount, error) {
	utxos, err := b.ListUnspent(ctx, address)
	if err != nil {
		return chain.Amount{}, err
	}
	var total chain.Amount
	for _, u := range utxos {
		total = total.Add(u.Amount)
	}
	return total, nil
}

func (b *RPCBackend) ListUnspent(ctx context.Context, address string) ([]chain.UnspentOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decoded, err := ParseAddress(address, b.params)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	results, err := b.node.ListUnspentMinMaxAddresses(0, 9999999, []btcutil.Address{decoded})
	if err != nil {
		return nil, chain.NewNetworkError("listunspent", err)
	}

	out := make([]chain.UnspentOutput, 0, len(results))
	for _, r := range results {
		amount, err := btcutil.NewAmount(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for %s:%d: %w", r.TxID, r.Vout, err)
		}
		out = append(out, chain.UnspentOutput{
			TxID:   r.TxID,
			Vout:   r.Vout,
			Amount: FromSatoshis(int64(amount)),
		})
	}
	return out, nil
}

// FeeRate asks estimatesmartfee (BTC/kvB) and converts to BTC per vbyte,
// rounded up to whole satoshis.
func (b *RPCBackend) FeeRate(ctx context.Context) (chain.Amount, error) {
	if err := ctx.Err(); err != nil {
		return chain.Amount{}, err
	}
	mode := btcjson.EstimateModeConservative
	result, err := b.node.EstimateSmartFee(b.priority.TargetBlocks(), &mode)
	if err != nil {
		return chain.Amount{}, chain.NewNetworkError("estimatesmartfee", err)
	}
	if result.FeeRate == nil {
		return chain.Amount{}, fmt.Errorf("node has no fee estimate: %v", result.Errors)
	}

	perKvB, err := btcutil.NewAmount(*result.FeeRate)
	if err != nil {
		return chain.Amount{}, fmt.Errorf("invalid fee rate: %w", err)
	}
	rate := FromSatoshis(int64(perKvB)).Shift(-3).RoundCeil(Decimals)
	if rate.LessThan(minFeeRate) {
		rate = minFeeRate
	}
	return rate, nil
}

func (b *RPCBackend) Broadcast(ctx context.Context, payload chain.SignedPayload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	hash, err := b.node.SendRawTransaction(&tx, false)
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) && isRejection(rpcErr.Code) {
			return "", &chain.BroadcastRejectedError{Reason: rpcErr.Message}
		}
		return "", chain.NewNetworkError("sendrawtransaction", err)
	}
	return hash.String(), nil
}

// PrevOut resolves an outpoint with getrawtransaction. The node needs
// -txindex for outputs that are not in its wallet.
func (b *RPCBackend) PrevOut(ctx context.Context, op chain.OutPoint) (*wire.TxOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(op.TxID)
	if err != nil {
		return nil, fmt.Errorf("invalid txid %q: %w", op.TxID, err)
	}
	tx, err := b.node.GetRawTransaction(hash)
	if err != nil {
		return nil, chain.NewNetworkError("getrawtransaction", err)
	}
	outs := tx.MsgTx().TxOut
	if int(op.Vout) >= len(outs) {
		return nil, fmt.Errorf("transaction %s has no output %d", op.TxID, op.Vout)
	}
	return outs[op.Vout], nil
}

// FetchHistory is not available from a node without an address index.
func (b *RPCBackend) FetchHistory(context.Context, string, int) (chain.History, error) {
	return nil, fmt.Errorf("bitcoin rpc history: %w", chain.ErrNotSupported)
}

// isRejection reports whether code is one of bitcoind's transaction
// rejection codes rather than a server fault.
func isRejection(code btcjson.RPCErrorCode) bool {
	switch code {
	case btcjson.ErrRPCVerify, btcjson.ErrRPCVerifyRejected, btcjson.ErrRPCVerifyAlreadyInChain,
		btcjson.ErrRPCDeserialization:
		return true
	default:
		return false
	}
}
