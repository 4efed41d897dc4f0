package chain

import (
	"fmt"
	"math/big"
)

// Draft is an unsigned transaction description. The set of implementations
// is closed: UTXODraft, AccountDraft and BlockhashDraft.
type Draft interface {
	Family() Family
	draft()
}

// TxOutput pays Amount to Address.
type TxOutput struct {
	Address string `json:"address"`
	Amount  Amount `json:"amount"`
}

// UTXODraft spends Inputs into Outputs. Inputs carry references only; the
// value of each input is looked up again by whoever signs the draft.
type UTXODraft struct {
	Inputs  []OutPoint `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
	// ChangeIndex is the position of the change output, -1 if there is none.
	ChangeIndex int    `json:"change_index"`
	Fee         Amount `json:"fee"`
}

func (UTXODraft) Family() Family { return FamilyUTXO }
func (UTXODraft) draft()         {}

// TotalOutput sums every output of the draft.
func (d UTXODraft) TotalOutput() Amount {
	var total Amount
	for _, out := range d.Outputs {
		total = total.Add(out.Amount)
	}
	return total
}

// AccountDraft is a plain value transfer on an account chain.
type AccountDraft struct {
	To       string   `json:"to"`
	Amount   Amount   `json:"amount"`
	Nonce    uint64   `json:"nonce"`
	GasLimit uint64   `json:"gas_limit"`
	GasPrice *big.Int `json:"gas_price"`
	ChainID  *big.Int `json:"chain_id"`
}

func (AccountDraft) Family() Family { return FamilyAccount }
func (AccountDraft) draft()         {}

// MaxFee is GasLimit * GasPrice.
func (d AccountDraft) MaxFee() *big.Int {
	if d.GasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(d.GasLimit), d.GasPrice)
}

// BlockhashDraft is a plain value transfer bound to a recent blockhash.
type BlockhashDraft struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          Amount `json:"amount"`
	RecentBlockhash string `json:"recent_blockhash"`
}

func (BlockhashDraft) Family() Family { return FamilyBlockhash }
func (BlockhashDraft) draft()         {}

// UnexpectedDraft is returned by signers handed a draft of the wrong family.
func UnexpectedDraft(want Family, got Draft) error {
	if got == nil {
		return fmt.Errorf("expected %s draft, got nil", want)
	}
	return fmt.Errorf("expected %s draft, got %s", want, got.Family())
}
