// Package ethereum implements the account backend and signer for Ethereum
// and other EVM chains.
package ethereum

import (
	"fmt"
	"math/big"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	// Symbol is the native currency of the chain.
	Symbol = "ETH"
	// Decimals is the number of wei digits in one ether.
	Decimals = 18
)

// BuildUnsigned encodes draft as an unsigned legacy transaction. Equal
// drafts give byte-identical RLP.
func BuildUnsigned(draft chain.AccountDraft) (*types.Transaction, error) {
	if !common.IsHexAddress(draft.To) {
		return nil, fmt.Errorf("invalid recipient address: %s", draft.To)
	}
	if draft.GasPrice == nil {
		return nil, fmt.Errorf("gas price is required")
	}
	value, err := EtherToWei(draft.Amount)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(draft.To)
	return types.NewTx(&types.LegacyTx{
		Nonce:    draft.Nonce,
		To:       &to,
		Value:    value,
		Gas:      draft.GasLimit,
		GasPrice: new(big.Int).Set(draft.GasPrice),
	}), nil
}

// EtherToWei converts ether to wei. Precision beyond one wei is an error.
func EtherToWei(ether chain.Amount) (*big.Int, error) {
	if ether.IsNegative() {
		return nil, fmt.Errorf("amount %s is negative", ether.String())
	}
	return chain.ToBaseUnits(ether, Decimals)
}

// WeiToEther converts wei to ether.
func WeiToEther(wei *big.Int) chain.Amount {
	return chain.FromBaseUnits(wei, Decimals)
}

// ValidateAddress checks that address is a 20 byte hex address.
func ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid ethereum address: %s", address)
	}
	return nil
}
