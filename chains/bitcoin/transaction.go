// Package bitcoin implements the UTXO backends and the signer for Bitcoin.
package bitcoin

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/chinmay1088/chaingate/chain"
)

const (
	// Symbol is the native currency of the chain.
	Symbol = "BTC"
	// Decimals is the number of satoshi digits in one bitcoin.
	Decimals = 8
	// txVersion 2 is required for relative lock times and is the default for segwit spends.
	txVersion = 2
)

// NetworkParams maps a configured network name to chain parameters.
func NetworkParams(network string) *chaincfg.Params {
	switch network {
	case "testnet":
		return &chaincfg.TestNet3Params
	case "regtest":
		return &chaincfg.RegressionNetParams
	case "signet":
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

// BuildUnsigned encodes draft as an unsigned transaction. Inputs and outputs
// keep the draft's order, so equal drafts encode to identical bytes.
func BuildUnsigned(draft chain.UTXODraft, params *chaincfg.Params) (*wire.MsgTx, error) {
	if len(draft.Inputs) == 0 {
		return nil, fmt.Errorf("draft has no inputs")
	}
	if len(draft.Outputs) == 0 {
		return nil, fmt.Errorf("draft has no outputs")
	}

	tx := wire.NewMsgTx(txVersion)
	for _, in := range draft.Inputs {
		prevHash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, fmt.Errorf("invalid previous transaction hash %q: %w", in.TxID, err)
		}
		// signature script and witness are set by the signer
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, in.Vout), nil, nil))
	}

	for i, out := range draft.Outputs {
		address, err := ParseAddress(out.Address, params)
		if err != nil {
			return nil, fmt.Errorf("invalid address for output %d: %w", i, err)
		}
		script, err := txscript.PayToAddrScript(address)
		if err != nil {
			return nil, fmt.Errorf("failed to create output script: %w", err)
		}
		value, err := ToSatoshis(out.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for output %d: %w", i, err)
		}
		tx.AddTxOut(wire.NewTxOut(value, script))
	}

	return tx, nil
}

// Serialize encodes tx in wire format, including witnesses when present.
func Serialize(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseAddress parses a Bitcoin address for params.
func ParseAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("address %s is not valid on %s", address, params.Name)
	}
	return decoded, nil
}

// P2WPKHAddress derives the native segwit address of publicKey.
func P2WPKHAddress(publicKey *btcec.PublicKey, params *chaincfg.Params) (*btcutil.AddressWitnessPubKeyHash, error) {
	pubKeyHash := btcutil.Hash160(publicKey.SerializeCompressed())
	return btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, params)
}

// ToSatoshis converts a BTC amount into satoshis. Sub-satoshi precision is an error.
func ToSatoshis(btc chain.Amount) (int64, error) {
	sats, err := chain.ToBaseUnits(btc, Decimals)
	if err != nil {
		return 0, err
	}
	if !sats.IsInt64() || sats.Sign() < 0 {
		return 0, fmt.Errorf("amount %s out of range", btc.String())
	}
	return sats.Int64(), nil
}

// FromSatoshis converts satoshis into BTC.
func FromSatoshis(sats int64) chain.Amount {
	return chain.FromBaseUnits(big.NewInt(sats), Decimals)
}
