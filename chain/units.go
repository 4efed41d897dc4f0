package chain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a native amount into the chain's smallest unit, e.g.
// BTC to satoshi with decimals = 8. Amounts with more fractional digits than
// the chain supports are rejected instead of rounded.
func ToBaseUnits(amount Amount, decimals int32) (*big.Int, error) {
	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount.String(), decimals)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits converts a smallest-unit integer into a native amount.
func FromBaseUnits(units *big.Int, decimals int32) Amount {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -decimals)
}
