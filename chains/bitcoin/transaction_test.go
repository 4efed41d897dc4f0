package bitcoin

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mainnetAddr = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	testnetAddr = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
)

func btc(s string) chain.Amount { return decimal.RequireFromString(s) }

func txid(b string) string { return strings.Repeat(b, 32) }

func sampleDraft() chain.UTXODraft {
	return chain.UTXODraft{
		Inputs: []chain.OutPoint{{TxID: txid("11"), Vout: 0}, {TxID: txid("22"), Vout: 3}},
		Outputs: []chain.TxOutput{
			{Address: mainnetAddr, Amount: btc("0.4")},
			{Address: mainnetAddr, Amount: btc("0.0999")},
		},
		ChangeIndex: 1,
		Fee:         btc("0.0001"),
	}
}

func TestBuildUnsignedIsDeterministic(t *testing.T) {
	a, err := BuildUnsigned(sampleDraft(), &chaincfg.MainNetParams)
	require.NoError(t, err)
	b, err := BuildUnsigned(sampleDraft(), &chaincfg.MainNetParams)
	require.NoError(t, err)

	rawA, err := Serialize(a)
	require.NoError(t, err)
	rawB, err := Serialize(b)
	require.NoError(t, err)
	assert.Equal(t, rawA, rawB)

	require.Len(t, a.TxIn, 2)
	require.Len(t, a.TxOut, 2)
	assert.Equal(t, int32(2), a.Version)
	assert.Equal(t, uint32(3), a.TxIn[1].PreviousOutPoint.Index)
	assert.Equal(t, int64(40000000), a.TxOut[0].Value)
	assert.Equal(t, int64(9990000), a.TxOut[1].Value)
}

func TestBuildUnsignedRejectsBadDrafts(t *testing.T) {
	wrongNet := sampleDraft()
	wrongNet.Outputs[0].Address = testnetAddr
	_, err := BuildUnsigned(wrongNet, &chaincfg.MainNetParams)
	assert.Error(t, err)

	badHash := sampleDraft()
	badHash.Inputs[0].TxID = "zz"
	_, err = BuildUnsigned(badHash, &chaincfg.MainNetParams)
	assert.Error(t, err)

	tooPrecise := sampleDraft()
	tooPrecise.Outputs[0].Amount = btc("0.123456789")
	_, err = BuildUnsigned(tooPrecise, &chaincfg.MainNetParams)
	assert.Error(t, err)

	_, err = BuildUnsigned(chain.UTXODraft{}, &chaincfg.MainNetParams)
	assert.Error(t, err)
}

func TestSatoshiConversion(t *testing.T) {
	sats, err := ToSatoshis(btc("0.0999"))
	require.NoError(t, err)
	assert.Equal(t, int64(9990000), sats)

	assert.True(t, FromSatoshis(546).Equal(btc("0.00000546")))

	_, err = ToSatoshis(btc("-1"))
	assert.Error(t, err)
}

func TestNetworkParams(t *testing.T) {
	assert.Equal(t, chaincfg.MainNetParams.Name, NetworkParams("mainnet").Name)
	assert.Equal(t, chaincfg.TestNet3Params.Name, NetworkParams("testnet").Name)
	assert.Equal(t, chaincfg.MainNetParams.Name, NetworkParams("").Name)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)
	assert.Equal(t, int64(6), p.TargetBlocks())

	p, err = ParsePriority("FAST")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.TargetBlocks())
	assert.Equal(t, int64(144), PrioritySlow.TargetBlocks())

	_, err = ParsePriority("ludicrous")
	assert.Error(t, err)
}
