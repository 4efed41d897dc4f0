package txbuilder

import (
	"math/big"
	"testing"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/coinselect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) chain.Amount { return decimal.RequireFromString(s) }

func selection(t *testing.T) coinselect.Selection {
	t.Helper()
	sel, err := coinselect.Select(d("0.4"), coinselect.FlatFee{Amount: d("0.0001")}, []chain.UnspentOutput{
		{TxID: "bb", Vout: 0, Amount: d("0.5")},
		{TxID: "aa", Vout: 1, Amount: d("0.3")},
		{TxID: "cc", Vout: 2, Amount: d("0.2")},
	}, d("0.00001"))
	require.NoError(t, err)
	return sel
}

func TestUTXO(t *testing.T) {
	draft, err := UTXO(selection(t), "bc1qrecipient", d("0.4"), "bc1qchange")
	require.NoError(t, err)

	assert.Equal(t, []chain.OutPoint{{TxID: "bb", Vout: 0}}, draft.Inputs)
	require.Len(t, draft.Outputs, 2)
	assert.Equal(t, "bc1qrecipient", draft.Outputs[0].Address)
	assert.True(t, draft.Outputs[0].Amount.Equal(d("0.4")))
	assert.Equal(t, "bc1qchange", draft.Outputs[1].Address)
	assert.True(t, draft.Outputs[1].Amount.Equal(d("0.0999")))
	assert.Equal(t, 1, draft.ChangeIndex)
	assert.True(t, draft.Fee.Equal(d("0.0001")))
	assert.True(t, draft.TotalOutput().Add(draft.Fee).Equal(d("0.5")))
}

func TestUTXONoChange(t *testing.T) {
	sel := coinselect.Selection{
		Inputs: []chain.UnspentOutput{{TxID: "aa", Vout: 0, Amount: d("0.40011")}},
		Total:  d("0.40011"),
		Fee:    d("0.00011"),
	}

	draft, err := UTXO(sel, "bc1qrecipient", d("0.4"), "")
	require.NoError(t, err)
	assert.Len(t, draft.Outputs, 1)
	assert.Equal(t, -1, draft.ChangeIndex)
}

func TestUTXOIsPure(t *testing.T) {
	sel := selection(t)
	a, err := UTXO(sel, "bc1qrecipient", d("0.4"), "bc1qchange")
	require.NoError(t, err)
	b, err := UTXO(sel, "bc1qrecipient", d("0.4"), "bc1qchange")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUTXOValidation(t *testing.T) {
	sel := selection(t)

	tests := []struct {
		name   string
		to     string
		amount string
		change string
	}{
		{name: "missing recipient", to: "", amount: "0.4", change: "bc1qchange"},
		{name: "non-positive amount", to: "bc1qrecipient", amount: "0", change: "bc1qchange"},
		{name: "missing change address", to: "bc1qrecipient", amount: "0.4", change: ""},
		{name: "amount not matching selection", to: "bc1qrecipient", amount: "0.3", change: "bc1qchange"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UTXO(sel, tt.to, d(tt.amount), tt.change)
			assert.Error(t, err)
		})
	}
}

func TestAccount(t *testing.T) {
	gasPrice := big.NewInt(30_000_000_000)
	chainID := big.NewInt(1)

	draft, err := Account(AccountParams{
		To:       "0x000000000000000000000000000000000000dEaD",
		Amount:   d("1.0"),
		Nonce:    5,
		GasPrice: gasPrice,
		ChainID:  chainID,
	})
	require.NoError(t, err)

	assert.Equal(t, "0x000000000000000000000000000000000000dEaD", draft.To)
	assert.True(t, draft.Amount.Equal(d("1")))
	assert.Equal(t, uint64(5), draft.Nonce)
	assert.Equal(t, TransferGasLimit, draft.GasLimit)
	assert.Equal(t, 0, draft.GasPrice.Cmp(gasPrice))
	assert.Equal(t, 0, draft.ChainID.Cmp(chainID))

	// the draft does not alias the caller's values
	gasPrice.SetInt64(1)
	assert.Equal(t, int64(30_000_000_000), draft.GasPrice.Int64())
	assert.Equal(t, "630000000000000", draft.MaxFee().String())
}

func TestAccountValidation(t *testing.T) {
	valid := AccountParams{To: "0xabc", Amount: d("1"), GasPrice: big.NewInt(1), ChainID: big.NewInt(1)}

	noChain := valid
	noChain.ChainID = nil
	_, err := Account(noChain)
	assert.Error(t, err)

	noGas := valid
	noGas.GasPrice = nil
	_, err = Account(noGas)
	assert.Error(t, err)

	zero := valid
	zero.Amount = d("0")
	_, err = Account(zero)
	assert.Error(t, err)
}

func TestBlockhash(t *testing.T) {
	draft, err := Blockhash("from", "to", d("0.25"), "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N")
	require.NoError(t, err)
	assert.Equal(t, chain.FamilyBlockhash, draft.Family())
	assert.Equal(t, "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", draft.RecentBlockhash)

	_, err = Blockhash("from", "to", d("0.25"), "")
	assert.Error(t, err)
}
