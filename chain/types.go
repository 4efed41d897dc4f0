// Package chain defines the currency-agnostic data model shared by every
// backend, signer and the gateway itself.
package chain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Family identifies how a chain tracks value.
type Family int

const (
	// FamilyUTXO chains spend discrete unspent outputs (Bitcoin).
	FamilyUTXO Family = iota + 1
	// FamilyAccount chains keep per-account balances and nonces (Ethereum).
	FamilyAccount
	// FamilyBlockhash chains keep balances and bind transactions to a recent blockhash (Solana).
	FamilyBlockhash
)

func (f Family) String() string {
	switch f {
	case FamilyUTXO:
		return "utxo"
	case FamilyAccount:
		return "account"
	case FamilyBlockhash:
		return "blockhash"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Amount is an arbitrary-precision decimal in a chain's native unit.
type Amount = decimal.Decimal

// OutPoint references a single output of a previous transaction.
type OutPoint struct {
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Vout)
}

// UnspentOutput is a spendable output as reported by a UTXO backend.
type UnspentOutput struct {
	TxID   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Amount Amount `json:"amount"`
}

// OutPoint returns the reference to this output.
func (u UnspentOutput) OutPoint() OutPoint {
	return OutPoint{TxID: u.TxID, Vout: u.Vout}
}

// Balance is the result of a balance query. It is built fresh for every call.
type Balance struct {
	Address  string           `json:"address"`
	Amount   Amount           `json:"amount"`
	Currency string           `json:"currency"`
	USDValue *decimal.Decimal `json:"usd_value,omitempty"`
}

// Status is the confirmation state of a transaction as seen by its backend.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Transaction is a history record.
type Transaction struct {
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    Amount    `json:"amount"`
	Currency  string    `json:"currency"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	GasUsed   *uint64   `json:"gas_used,omitempty"`
	GasPrice  *big.Int  `json:"gas_price,omitempty"`
}

// KeyHandle is an opaque reference to signing key material. The gateway
// passes it through to the signer untouched.
type KeyHandle string

// SignedPayload is a broadcast-ready transaction. Only signers produce it.
type SignedPayload []byte

// NormalizeSymbol returns the canonical (upper case, trimmed) form of a
// currency symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
