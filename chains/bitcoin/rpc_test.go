package bitcoin

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	unspent []btcjson.ListUnspentResult
	feeRate *float64
	sendErr error
	sent    *wire.MsgTx
	raw     map[string]*wire.MsgTx
}

func (f *fakeNode) GetBlockCount() (int64, error) { return 800000, nil }

func (f *fakeNode) ListUnspentMinMaxAddresses(int, int, []btcutil.Address) ([]btcjson.ListUnspentResult, error) {
	return f.unspent, nil
}

func (f *fakeNode) EstimateSmartFee(int64, *btcjson.EstimateSmartFeeMode) (*btcjson.EstimateSmartFeeResult, error) {
	return &btcjson.EstimateSmartFeeResult{FeeRate: f.feeRate, Blocks: 6}, nil
}

func (f *fakeNode) SendRawTransaction(tx *wire.MsgTx, _ bool) (*chainhash.Hash, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = tx
	hash := tx.TxHash()
	return &hash, nil
}

func (f *fakeNode) GetRawTransaction(hash *chainhash.Hash) (*btcutil.Tx, error) {
	return btcutil.NewTx(f.raw[hash.String()]), nil
}

func (f *fakeNode) Shutdown() {}

func TestRPCBackendUnspentAndBalance(t *testing.T) {
	node := &fakeNode{unspent: []btcjson.ListUnspentResult{
		{TxID: txid("aa"), Vout: 0, Amount: 0.5},
		{TxID: txid("bb"), Vout: 1, Amount: 0.00012345},
	}}
	b := newRPCBackend(node, &chaincfg.MainNetParams, PriorityMedium, nil)

	utxos, err := b.ListUnspent(context.Background(), mainnetAddr)
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	assert.True(t, utxos[1].Amount.Equal(btc("0.00012345")))

	balance, err := b.GetBalance(context.Background(), mainnetAddr)
	require.NoError(t, err)
	assert.True(t, balance.Equal(btc("0.50012345")))

	_, err = b.ListUnspent(context.Background(), testnetAddr)
	assert.Error(t, err)
}

func TestRPCBackendFeeRate(t *testing.T) {
	rate := 0.00012345 // BTC/kvB
	b := newRPCBackend(&fakeNode{feeRate: &rate}, &chaincfg.MainNetParams, PriorityMedium, nil)

	got, err := b.FeeRate(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(btc("0.00000013")), got.String())

	_, err = newRPCBackend(&fakeNode{}, &chaincfg.MainNetParams, PriorityMedium, nil).FeeRate(context.Background())
	assert.Error(t, err)
}

func TestRPCBackendBroadcast(t *testing.T) {
	tx, err := BuildUnsigned(sampleDraft(), &chaincfg.MainNetParams)
	require.NoError(t, err)
	raw, err := Serialize(tx)
	require.NoError(t, err)

	node := &fakeNode{}
	b := newRPCBackend(node, &chaincfg.MainNetParams, PriorityMedium, nil)
	hash, err := b.Broadcast(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, tx.TxHash().String(), hash)

	node.sendErr = &btcjson.RPCError{Code: btcjson.ErrRPCVerifyRejected, Message: "min relay fee not met"}
	_, err = b.Broadcast(context.Background(), raw)
	require.ErrorIs(t, err, chain.ErrBroadcastRejected)
	assert.Contains(t, err.Error(), "min relay fee not met")

	node.sendErr = &btcjson.RPCError{Code: btcjson.ErrRPCInWarmup, Message: "loading block index"}
	_, err = b.Broadcast(context.Background(), raw)
	assert.ErrorIs(t, err, chain.ErrNetwork)
}

func TestRPCBackendPrevOut(t *testing.T) {
	prev := wire.NewMsgTx(2)
	prev.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))
	prev.AddTxOut(wire.NewTxOut(2000, []byte{0x52}))
	hash := prev.TxHash()

	b := newRPCBackend(&fakeNode{raw: map[string]*wire.MsgTx{hash.String(): prev}}, &chaincfg.MainNetParams, PriorityMedium, nil)
	out, err := b.PrevOut(context.Background(), chain.OutPoint{TxID: hash.String(), Vout: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), out.Value)
}

func TestRPCBackendHistoryNotSupported(t *testing.T) {
	b := newRPCBackend(&fakeNode{}, &chaincfg.MainNetParams, PriorityMedium, nil)
	_, err := b.FetchHistory(context.Background(), mainnetAddr, 10)
	assert.ErrorIs(t, err, chain.ErrNotSupported)
}
