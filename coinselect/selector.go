// Package coinselect picks the unspent outputs that fund a UTXO payment.
package coinselect

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/chinmay1088/chaingate/chain"
)

// Selection is the outcome of a successful Select.
type Selection struct {
	Inputs []chain.UnspentOutput
	// Total is the value of all selected inputs.
	Total chain.Amount
	// Fee includes any dust that was folded in instead of creating change.
	Fee       chain.Amount
	Change    chain.Amount
	HasChange bool
}

// Select funds target from available using a largest-first strategy.
//
// Outputs are ordered by amount descending, ties broken by txid then vout
// ascending, so the same inputs always give the same selection. After each
// input the fee is recomputed for a payment plus change. A leftover below
// dust is never emitted as change; it is added to the fee. When only the
// smaller single-output fee is covered, the inputs suffice without change.
func Select(target chain.Amount, policy FeePolicy, available []chain.UnspentOutput, dust chain.Amount) (Selection, error) {
	if !target.IsPositive() {
		return Selection{}, fmt.Errorf("target must be positive, got %s", target.String())
	}
	if policy == nil {
		return Selection{}, errors.New("fee policy is required")
	}

	candidates := make([]chain.UnspentOutput, 0, len(available))
	for _, u := range available {
		if u.Amount.IsPositive() {
			candidates = append(candidates, u)
		}
	}
	slices.SortFunc(candidates, compareOutputs)

	var sum chain.Amount
	for i, u := range candidates {
		sum = sum.Add(u.Amount)
		n := i + 1

		fee := policy.Fee(n, 2)
		if need := target.Add(fee); sum.GreaterThanOrEqual(need) {
			sel := Selection{
				Inputs: candidates[:n:n],
				Total:  sum,
				Fee:    fee,
			}
			change := sum.Sub(need)
			if change.LessThan(dust) {
				sel.Fee = fee.Add(change)
			} else {
				sel.Change = change
				sel.HasChange = true
			}
			return sel, nil
		}

		// Without a change output the transaction is smaller. A leftover
		// below dust plus the cost of the change output is not worth
		// returning, so it goes to the fee.
		single := policy.Fee(n, 1)
		threshold := dust.Add(fee.Sub(single))
		if need := target.Add(single); sum.GreaterThanOrEqual(need) && sum.Sub(need).LessThan(threshold) {
			return Selection{
				Inputs: candidates[:n:n],
				Total:  sum,
				Fee:    sum.Sub(target),
			}, nil
		}
	}

	return Selection{}, fmt.Errorf("%w: have %s, need %s plus fee", chain.ErrInsufficientFunds, sum.String(), target.String())
}

func compareOutputs(a, b chain.UnspentOutput) int {
	if c := b.Amount.Cmp(a.Amount); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TxID, b.TxID); c != 0 {
		return c
	}
	return cmp.Compare(a.Vout, b.Vout)
}
