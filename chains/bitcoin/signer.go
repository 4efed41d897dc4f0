package bitcoin

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/chinmay1088/chaingate/chain"
)

// PrevOutFetcher looks up the output an input spends. Drafts only carry
// outpoints, so the signer needs this for the amount committed to by
// segwit signatures.
type PrevOutFetcher interface {
	PrevOut(ctx context.Context, op chain.OutPoint) (*wire.TxOut, error)
}

// KeyResolver turns a key handle into a private key. Implementations must
// not retain or log the returned key.
type KeyResolver interface {
	BitcoinKey(handle chain.KeyHandle) (*btcec.PrivateKey, error)
}

// Signer signs P2WPKH spends.
type Signer struct {
	keys     KeyResolver
	prevOuts PrevOutFetcher
	params   *chaincfg.Params
}

// NewSigner creates a signer for params.
func NewSigner(keys KeyResolver, prevOuts PrevOutFetcher, params *chaincfg.Params) *Signer {
	return &Signer{keys: keys, prevOuts: prevOuts, params: params}
}

// Sign signs every input of a chain.UTXODraft. Every input must pay to the
// P2WPKH script of the resolved key, and the inputs must fund the outputs
// plus exactly the draft's fee.
func (s *Signer) Sign(ctx context.Context, draft chain.Draft, key chain.KeyHandle) (chain.SignedPayload, error) {
	d, ok := draft.(chain.UTXODraft)
	if !ok {
		return nil, chain.UnexpectedDraft(chain.FamilyUTXO, draft)
	}
	if s.prevOuts == nil {
		return nil, fmt.Errorf("no previous output source: %w", chain.ErrNotSupported)
	}

	tx, err := BuildUnsigned(d, s.params)
	if err != nil {
		return nil, err
	}

	privateKey, err := s.keys.BitcoinKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing key: %w", err)
	}
	address, err := P2WPKHAddress(privateKey.PubKey(), s.params)
	if err != nil {
		return nil, fmt.Errorf("failed to derive address: %w", err)
	}
	script, err := txscript.PayToAddrScript(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create script: %w", err)
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	var inputTotal int64
	for i, in := range d.Inputs {
		prev, err := s.prevOuts.PrevOut(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch previous output %s: %w", in, err)
		}
		if !bytes.Equal(prev.PkScript, script) {
			return nil, fmt.Errorf("input %d (%s) is not spendable by %s", i, in, address.EncodeAddress())
		}
		fetcher.AddPrevOut(tx.TxIn[i].PreviousOutPoint, prev)
		inputTotal += prev.Value
	}

	var outputTotal int64
	for _, out := range tx.TxOut {
		outputTotal += out.Value
	}
	fee, err := ToSatoshis(d.Fee)
	if err != nil {
		return nil, fmt.Errorf("invalid fee: %w", err)
	}
	if inputTotal != outputTotal+fee {
		return nil, fmt.Errorf("inputs total %d sat, outputs plus fee %d sat", inputTotal, outputTotal+fee)
	}

	hashes := txscript.NewTxSigHashes(tx, fetcher)
	for i, in := range tx.TxIn {
		prev := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		witness, err := txscript.WitnessSignature(tx, hashes, i, prev.Value, prev.PkScript, txscript.SigHashAll, privateKey, true)
		if err != nil {
			return nil, fmt.Errorf("failed to sign input %d: %w", i, err)
		}
		in.Witness = witness
	}

	raw, err := Serialize(tx)
	if err != nil {
		return nil, err
	}
	return chain.SignedPayload(raw), nil
}
