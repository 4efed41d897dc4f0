package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/coinselect"
	"github.com/chinmay1088/chaingate/txbuilder"
	"go.uber.org/zap"
)

// SendRequest describes a plain value transfer. Change on UTXO chains goes
// back to From.
type SendRequest struct {
	From      string
	To        string
	Amount    chain.Amount
	Currency  string
	KeyHandle chain.KeyHandle
}

func (r SendRequest) validate() error {
	switch {
	case strings.TrimSpace(r.From) == "":
		return fmt.Errorf("%w: from address is required", ErrInvalidRequest)
	case strings.TrimSpace(r.To) == "":
		return fmt.Errorf("%w: to address is required", ErrInvalidRequest)
	case !r.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidRequest, r.Amount.String())
	}
	return nil
}

// SendTransaction drafts, signs and broadcasts req and returns the
// transaction id. Nothing is retried: a failed broadcast is reported as is.
func (g *Gateway) SendTransaction(ctx context.Context, req SendRequest) (txID string, err error) {
	defer g.observe(OpSendTransaction, req.Currency, time.Now(), &err)

	c, err := g.registry.Lookup(req.Currency)
	if err != nil {
		return "", err
	}
	if err := req.validate(); err != nil {
		return "", err
	}
	if c.Signer == nil {
		return "", fmt.Errorf("%s: no signer configured: %w", c.Backend.Symbol(), chain.ErrNotSupported)
	}

	var draft chain.Draft
	switch c.Backend.Family() {
	case chain.FamilyUTXO:
		b, ok := c.Backend.(chain.UTXOBackend)
		if !ok {
			return "", familyMismatch(c.Backend)
		}
		draft, err = g.draftUTXO(ctx, c, b, req)
	case chain.FamilyAccount:
		b, ok := c.Backend.(chain.AccountBackend)
		if !ok {
			return "", familyMismatch(c.Backend)
		}
		draft, err = g.draftAccount(ctx, c, b, req)
	case chain.FamilyBlockhash:
		b, ok := c.Backend.(chain.BlockhashBackend)
		if !ok {
			return "", familyMismatch(c.Backend)
		}
		draft, err = g.draftBlockhash(ctx, c, b, req)
	default:
		return "", fmt.Errorf("%s: unknown chain family %s: %w", c.Backend.Symbol(), c.Backend.Family(), chain.ErrNotSupported)
	}
	if err != nil {
		return "", err
	}

	payload, err := c.Signer.Sign(ctx, draft, req.KeyHandle)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	txID, err = c.Backend.Broadcast(ctx, payload)
	if g.observer != nil {
		g.observer.ObserveBroadcast(c.Backend.Symbol(), err)
	}
	if err != nil {
		g.log.Warn("broadcast failed",
			zap.String("currency", c.Backend.Symbol()),
			zap.Error(err),
		)
		return "", err
	}

	g.log.Info("transaction broadcast",
		zap.String("currency", c.Backend.Symbol()),
		zap.String("txid", txID),
		zap.String("amount", req.Amount.String()),
	)
	return txID, nil
}

func (g *Gateway) draftUTXO(ctx context.Context, c Chain, b chain.UTXOBackend, req SendRequest) (chain.Draft, error) {
	utxos, err := b.ListUnspent(ctx, req.From)
	if err != nil {
		return nil, fmt.Errorf("failed to list unspent outputs: %w", err)
	}
	rate, err := b.FeeRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fee rate: %w", err)
	}

	policy := coinselect.PerByteFee{Rate: rate, Precision: c.Decimals}
	sel, err := coinselect.Select(req.Amount, policy, utxos, c.Dust)
	if err != nil {
		return nil, err
	}

	g.log.Debug("inputs selected",
		zap.String("currency", b.Symbol()),
		zap.Int("inputs", len(sel.Inputs)),
		zap.String("fee", sel.Fee.String()),
		zap.Bool("change", sel.HasChange),
	)
	return txbuilder.UTXO(sel, req.To, req.Amount, req.From)
}

func (g *Gateway) draftAccount(ctx context.Context, c Chain, b chain.AccountBackend, req SendRequest) (chain.Draft, error) {
	nonce, err := b.Nonce(ctx, req.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := b.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	draft, err := txbuilder.Account(txbuilder.AccountParams{
		To:       req.To,
		Amount:   req.Amount,
		Nonce:    nonce,
		GasPrice: gasPrice,
		ChainID:  b.ChainID(),
	})
	if err != nil {
		return nil, err
	}

	maxFee := chain.FromBaseUnits(draft.MaxFee(), c.Decimals)
	if err := g.checkBalance(ctx, b, req.From, req.Amount.Add(maxFee)); err != nil {
		return nil, err
	}
	return draft, nil
}

func (g *Gateway) draftBlockhash(ctx context.Context, c Chain, b chain.BlockhashBackend, req SendRequest) (chain.Draft, error) {
	if err := g.checkBalance(ctx, b, req.From, req.Amount.Add(c.TxFee)); err != nil {
		return nil, err
	}
	blockhash, err := b.RecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return txbuilder.Blockhash(req.From, req.To, req.Amount, blockhash)
}

func (g *Gateway) checkBalance(ctx context.Context, b chain.Backend, address string, needed chain.Amount) error {
	balance, err := b.GetBalance(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	if balance.LessThan(needed) {
		return fmt.Errorf("have %s %s, need %s: %w", balance.String(), b.Symbol(), needed.String(), chain.ErrInsufficientFunds)
	}
	return nil
}

func familyMismatch(b chain.Backend) error {
	return fmt.Errorf("%s: backend does not implement the %s capability: %w", b.Symbol(), b.Family(), chain.ErrNotSupported)
}
