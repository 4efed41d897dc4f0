package coinselect

import (
	"github.com/chinmay1088/chaingate/chain"
	"github.com/shopspring/decimal"
)

// FeePolicy prices a transaction by its shape. Selection asks again every
// time the input count grows.
type FeePolicy interface {
	Fee(inputs, outputs int) chain.Amount
}

// FlatFee charges the same amount regardless of size.
type FlatFee struct {
	Amount chain.Amount
}

func (f FlatFee) Fee(_, _ int) chain.Amount { return f.Amount }

// PerByteFee charges Rate per virtual byte of a P2WPKH transaction.
type PerByteFee struct {
	// Rate is the native amount per vbyte, e.g. 0.0000001 BTC (10 sat/vB).
	Rate chain.Amount
	// Precision rounds the fee up to this many decimal places (8 for BTC).
	// Zero leaves the product unrounded.
	Precision int32
}

func (f PerByteFee) Fee(inputs, outputs int) chain.Amount {
	fee := f.Rate.Mul(decimal.NewFromInt(int64(VSize(inputs, outputs))))
	if f.Precision > 0 {
		fee = fee.RoundCeil(f.Precision)
	}
	return fee
}

// Per-component sizes of a P2WPKH spend.
const (
	overheadBytes = 10  // version, locktime, in/out counts
	inputBytes    = 41  // outpoint, empty script, sequence
	outputBytes   = 34  // value, script length, 22 byte witness program
	witnessHeader = 2   // segwit marker and flag
	witnessBytes  = 108 // item count, signature, pubkey
)

// VSize estimates the virtual size in bytes of a transaction spending inputs
// P2WPKH outputs into outputs P2WPKH outputs.
func VSize(inputs, outputs int) int {
	weight := 4*(overheadBytes+inputBytes*inputs+outputBytes*outputs) + witnessHeader + witnessBytes*inputs
	return (weight + 3) / 4
}
