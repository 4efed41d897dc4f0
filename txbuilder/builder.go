// Package txbuilder turns selections and fetched chain parameters into
// unsigned drafts. Every function here is pure: no I/O, no clocks, and equal
// inputs give deeply equal drafts.
package txbuilder

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/coinselect"
)

// TransferGasLimit is the gas consumed by a plain value transfer.
const TransferGasLimit uint64 = 21000

// UTXO builds a draft paying amount to to, with change going back to
// changeAddress when the selection produced any.
func UTXO(sel coinselect.Selection, to string, amount chain.Amount, changeAddress string) (chain.UTXODraft, error) {
	if strings.TrimSpace(to) == "" {
		return chain.UTXODraft{}, errors.New("recipient address is required")
	}
	if !amount.IsPositive() {
		return chain.UTXODraft{}, fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if len(sel.Inputs) == 0 {
		return chain.UTXODraft{}, errors.New("selection has no inputs")
	}
	if sel.HasChange && strings.TrimSpace(changeAddress) == "" {
		return chain.UTXODraft{}, errors.New("change address is required")
	}

	spent := amount.Add(sel.Fee)
	if sel.HasChange {
		spent = spent.Add(sel.Change)
	}
	if !sel.Total.Equal(spent) {
		return chain.UTXODraft{}, fmt.Errorf("selection total %s does not match amount, fee and change %s", sel.Total.String(), spent.String())
	}

	inputs := make([]chain.OutPoint, 0, len(sel.Inputs))
	for _, in := range sel.Inputs {
		inputs = append(inputs, in.OutPoint())
	}

	draft := chain.UTXODraft{
		Inputs:      inputs,
		Outputs:     []chain.TxOutput{{Address: to, Amount: amount}},
		ChangeIndex: -1,
		Fee:         sel.Fee,
	}
	if sel.HasChange {
		draft.Outputs = append(draft.Outputs, chain.TxOutput{Address: changeAddress, Amount: sel.Change})
		draft.ChangeIndex = len(draft.Outputs) - 1
	}
	return draft, nil
}

// AccountParams are the fetched values an account transfer is built from.
type AccountParams struct {
	To       string
	Amount   chain.Amount
	Nonce    uint64
	GasPrice *big.Int
	ChainID  *big.Int
}

// Account builds a plain value transfer with TransferGasLimit.
func Account(p AccountParams) (chain.AccountDraft, error) {
	if strings.TrimSpace(p.To) == "" {
		return chain.AccountDraft{}, errors.New("recipient address is required")
	}
	if !p.Amount.IsPositive() {
		return chain.AccountDraft{}, fmt.Errorf("amount must be positive, got %s", p.Amount.String())
	}
	if p.GasPrice == nil || p.GasPrice.Sign() < 0 {
		return chain.AccountDraft{}, errors.New("gas price is required")
	}
	if p.ChainID == nil || p.ChainID.Sign() <= 0 {
		return chain.AccountDraft{}, errors.New("chain id is required")
	}

	return chain.AccountDraft{
		To:       p.To,
		Amount:   p.Amount,
		Nonce:    p.Nonce,
		GasLimit: TransferGasLimit,
		GasPrice: new(big.Int).Set(p.GasPrice),
		ChainID:  new(big.Int).Set(p.ChainID),
	}, nil
}

// Blockhash builds a transfer bound to recentBlockhash.
func Blockhash(from, to string, amount chain.Amount, recentBlockhash string) (chain.BlockhashDraft, error) {
	if strings.TrimSpace(from) == "" {
		return chain.BlockhashDraft{}, errors.New("sender address is required")
	}
	if strings.TrimSpace(to) == "" {
		return chain.BlockhashDraft{}, errors.New("recipient address is required")
	}
	if !amount.IsPositive() {
		return chain.BlockhashDraft{}, fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if recentBlockhash == "" {
		return chain.BlockhashDraft{}, errors.New("recent blockhash is required")
	}

	return chain.BlockhashDraft{
		From:            from,
		To:              to,
		Amount:          amount,
		RecentBlockhash: recentBlockhash,
	}, nil
}
