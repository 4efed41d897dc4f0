package bitcoin

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/chinmay1088/chaingate/api"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var minFeeRate = decimal.New(1, -Decimals) // 1 sat/vB

// EsploraBackend serves Bitcoin from an esplora REST API.
type EsploraBackend struct {
	client   *api.Esplora
	priority FeePriority
	log      *zap.Logger
}

// NewEsploraBackend creates a backend. Esplora is stateless over HTTP, so
// there is no connection to establish up front.
func NewEsploraBackend(client *api.Esplora, priority FeePriority, log *zap.Logger) *EsploraBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &EsploraBackend{client: client, priority: priority, log: log}
}

func (b *EsploraBackend) Symbol() string      { return Symbol }
func (b *EsploraBackend) Family() chain.Family { return chain.FamilyUTXO }

func (b *EsploraBackend) GetBalance(ctx context.Context, address string) (chain.Amount, error) {
	sats, err := b.client.Balance(ctx, address)
	if err != nil {
		return chain.Amount{}, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return FromSatoshis(sats), nil
}

func (b *EsploraBackend) ListUnspent(ctx context.Context, address string) ([]chain.UnspentOutput, error) {
	utxos, err := b.client.UTXOs(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch UTXOs: %w", err)
	}

	out := make([]chain.UnspentOutput, 0, len(utxos))
	for _, u := range utxos {
		out = append(out, chain.UnspentOutput{
			TxID:   u.TxID,
			Vout:   u.Vout,
			Amount: FromSatoshis(u.Value),
		})
	}
	return out, nil
}

// FeeRate returns the estimate for the configured priority in BTC per vbyte,
// never below 1 sat/vB.
func (b *EsploraBackend) FeeRate(ctx context.Context) (chain.Amount, error) {
	rates, err := b.client.FeeEstimates(ctx)
	if err != nil {
		return chain.Amount{}, fmt.Errorf("failed to fetch fee estimates: %w", err)
	}

	target := strconv.FormatInt(b.priority.TargetBlocks(), 10)
	satPerVByte, ok := rates[target]
	if !ok {
		return chain.Amount{}, fmt.Errorf("no fee estimate for a %s block target", target)
	}

	// whole satoshis per vbyte keep the fee representable
	rate := satPerVByte.Ceil().Shift(-Decimals)
	if rate.LessThan(minFeeRate) {
		rate = minFeeRate
	}
	b.log.Debug("fee rate",
		zap.String("priority", string(b.priority)),
		zap.String("sat_per_vbyte", satPerVByte.String()),
	)
	return rate, nil
}

func (b *EsploraBackend) Broadcast(ctx context.Context, payload chain.SignedPayload) (string, error) {
	return b.client.Broadcast(ctx, hex.EncodeToString(payload))
}

// PrevOut resolves an outpoint through GET /tx/{txid}.
func (b *EsploraBackend) PrevOut(ctx context.Context, op chain.OutPoint) (*wire.TxOut, error) {
	tx, err := b.client.Transaction(ctx, op.TxID)
	if err != nil {
		return nil, err
	}
	if int(op.Vout) >= len(tx.Vout) {
		return nil, fmt.Errorf("transaction %s has no output %d", op.TxID, op.Vout)
	}

	out := tx.Vout[op.Vout]
	script, err := hex.DecodeString(out.ScriptPubKey)
	if err != nil {
		return nil, fmt.Errorf("invalid script for %s: %w", op, err)
	}
	return wire.NewTxOut(out.Value, script), nil
}

// FetchHistory pages through /address/{addr}/txs, newest first.
func (b *EsploraBackend) FetchHistory(ctx context.Context, address string, limit int) (chain.History, error) {
	return chain.Paginate(ctx, limit, func(ctx context.Context, cursor string) ([]chain.Transaction, string, error) {
		page, err := b.client.AddressTransactions(ctx, address, cursor)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch transactions: %w", err)
		}

		txs := make([]chain.Transaction, 0, len(page))
		next := ""
		for _, tx := range page {
			txs = append(txs, convertTransaction(address, tx))
			// only confirmed transactions can be used as a chain cursor
			if tx.Status.Confirmed {
				next = tx.TxID
			}
		}
		return txs, next, nil
	}), nil
}

// convertTransaction reports tx from the point of view of address. Incoming
// transfers carry the net amount received; outgoing ones the amount paid to
// other addresses.
func convertTransaction(address string, tx api.EsploraTx) chain.Transaction {
	var received, sent, paidOut int64
	var from, to string

	for _, in := range tx.Vin {
		if in.PrevOut == nil {
			continue
		}
		if from == "" {
			from = in.PrevOut.ScriptPubKeyAddress
		}
		if in.PrevOut.ScriptPubKeyAddress == address {
			sent += in.PrevOut.Value
		}
	}
	for _, out := range tx.Vout {
		if out.ScriptPubKeyAddress == address {
			received += out.Value
			continue
		}
		if to == "" {
			to = out.ScriptPubKeyAddress
		}
		paidOut += out.Value
	}

	result := chain.Transaction{
		Hash:     tx.TxID,
		Currency: Symbol,
		Status:   chain.StatusPending,
	}
	if sent > 0 {
		result.From = address
		result.To = to
		result.Amount = FromSatoshis(paidOut)
	} else {
		result.From = from
		result.To = address
		result.Amount = FromSatoshis(received)
	}
	if tx.Status.Confirmed {
		result.Status = chain.StatusConfirmed
		result.Timestamp = time.Unix(tx.Status.BlockTime, 0).UTC()
	}
	return result
}
