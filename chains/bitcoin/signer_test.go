package bitcoin

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKey struct{ key *btcec.PrivateKey }

func (s staticKey) BitcoinKey(chain.KeyHandle) (*btcec.PrivateKey, error) { return s.key, nil }

type prevOutMap map[chain.OutPoint]*wire.TxOut

func (m prevOutMap) PrevOut(_ context.Context, op chain.OutPoint) (*wire.TxOut, error) {
	out, ok := m[op]
	if !ok {
		return nil, errors.New("unknown outpoint")
	}
	return out, nil
}

func testKey(t *testing.T) (*btcec.PrivateKey, string, []byte) {
	t.Helper()
	key, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x07}, 32))
	addr, err := P2WPKHAddress(key.PubKey(), &chaincfg.MainNetParams)
	require.NoError(t, err)
	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)
	return key, addr.EncodeAddress(), script
}

func TestSignerProducesValidWitnesses(t *testing.T) {
	key, addr, script := testKey(t)

	draft := chain.UTXODraft{
		Inputs: []chain.OutPoint{{TxID: txid("aa"), Vout: 1}, {TxID: txid("bb"), Vout: 0}},
		Outputs: []chain.TxOutput{
			{Address: mainnetAddr, Amount: btc("0.25")},
			{Address: addr, Amount: btc("0.0499")},
		},
		ChangeIndex: 1,
		Fee:         btc("0.0001"),
	}
	prevOuts := prevOutMap{
		draft.Inputs[0]: wire.NewTxOut(20000000, script),
		draft.Inputs[1]: wire.NewTxOut(10000000, script),
	}

	signer := NewSigner(staticKey{key}, prevOuts, &chaincfg.MainNetParams)
	payload, err := signer.Sign(context.Background(), draft, "")
	require.NoError(t, err)

	var tx wire.MsgTx
	require.NoError(t, tx.Deserialize(bytes.NewReader(payload)))
	require.Len(t, tx.TxIn, 2)

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range draft.Inputs {
		fetcher.AddPrevOut(tx.TxIn[i].PreviousOutPoint, prevOuts[in])
	}
	hashes := txscript.NewTxSigHashes(&tx, fetcher)
	for i, in := range tx.TxIn {
		require.Len(t, in.Witness, 2)
		prev := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		vm, err := txscript.NewEngine(prev.PkScript, &tx, i, txscript.StandardVerifyFlags, nil, hashes, prev.Value, fetcher)
		require.NoError(t, err)
		assert.NoError(t, vm.Execute(), "input %d", i)
	}
}

func TestSignerRejectsForeignInputs(t *testing.T) {
	key, _, _ := testKey(t)
	other, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x09}, 32))
	otherAddr, err := P2WPKHAddress(other.PubKey(), &chaincfg.MainNetParams)
	require.NoError(t, err)
	otherScript, err := txscript.PayToAddrScript(otherAddr)
	require.NoError(t, err)

	draft := chain.UTXODraft{
		Inputs:      []chain.OutPoint{{TxID: txid("aa"), Vout: 0}},
		Outputs:     []chain.TxOutput{{Address: mainnetAddr, Amount: btc("0.0999")}},
		ChangeIndex: -1,
		Fee:         btc("0.0001"),
	}
	signer := NewSigner(staticKey{key}, prevOutMap{draft.Inputs[0]: wire.NewTxOut(10000000, otherScript)}, &chaincfg.MainNetParams)

	_, err = signer.Sign(context.Background(), draft, "")
	assert.ErrorContains(t, err, "not spendable")
}

func TestSignerChecksFee(t *testing.T) {
	key, _, script := testKey(t)
	draft := chain.UTXODraft{
		Inputs:      []chain.OutPoint{{TxID: txid("aa"), Vout: 0}},
		Outputs:     []chain.TxOutput{{Address: mainnetAddr, Amount: btc("0.0999")}},
		ChangeIndex: -1,
		Fee:         btc("0.0001"),
	}
	// the real prevout is worth more than the draft accounts for
	signer := NewSigner(staticKey{key}, prevOutMap{draft.Inputs[0]: wire.NewTxOut(20000000, script)}, &chaincfg.MainNetParams)

	_, err := signer.Sign(context.Background(), draft, "")
	assert.ErrorContains(t, err, "inputs total")
}

func TestSignerRejectsOtherFamilies(t *testing.T) {
	key, _, _ := testKey(t)
	signer := NewSigner(staticKey{key}, prevOutMap{}, &chaincfg.MainNetParams)

	_, err := signer.Sign(context.Background(), chain.AccountDraft{}, "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "utxo"))
}

func TestSignerWithoutPrevOutSource(t *testing.T) {
	key, _, _ := testKey(t)
	signer := NewSigner(staticKey{key}, nil, &chaincfg.MainNetParams)

	_, err := signer.Sign(context.Background(), chain.UTXODraft{
		Inputs:      []chain.OutPoint{{TxID: txid("aa"), Vout: 0}},
		Outputs:     []chain.TxOutput{{Address: mainnetAddr, Amount: btc("0.0999")}},
		ChangeIndex: -1,
		Fee:         btc("0.0001"),
	}, "")
	assert.ErrorIs(t, err, chain.ErrNotSupported)
}
