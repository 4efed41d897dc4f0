package chain

import (
	"context"
	"math/big"
)

// Backend is the capability set every chain family implements.
type Backend interface {
	// Symbol is the native currency symbol, e.g. "BTC".
	Symbol() string
	Family() Family
	GetBalance(ctx context.Context, address string) (Amount, error)
	Broadcast(ctx context.Context, payload SignedPayload) (string, error)
	// FetchHistory returns ErrNotSupported when the backend has no history source.
	FetchHistory(ctx context.Context, address string, limit int) (History, error)
}

// UTXOBackend is implemented by chains that spend unspent outputs.
type UTXOBackend interface {
	Backend
	ListUnspent(ctx context.Context, address string) ([]UnspentOutput, error)
	// FeeRate is the fee per virtual byte, in the native unit.
	FeeRate(ctx context.Context) (Amount, error)
}

// AccountBackend is implemented by nonce based account chains.
type AccountBackend interface {
	Backend
	Nonce(ctx context.Context, address string) (uint64, error)
	// GasPrice is denominated in the chain's smallest unit (wei).
	GasPrice(ctx context.Context) (*big.Int, error)
	ChainID() *big.Int
}

// BlockhashBackend is implemented by chains whose transactions reference a
// recent blockhash instead of a nonce.
type BlockhashBackend interface {
	Backend
	RecentBlockhash(ctx context.Context) (string, error)
}

// TokenBackend answers contract token balance queries. The token contract
// and the wallet are always distinct parameters.
type TokenBackend interface {
	TokenBalance(ctx context.Context, token, wallet string) (Amount, error)
	IsTokenAddress(s string) bool
}

// Signer turns an unsigned draft into a broadcast-ready payload.
type Signer interface {
	Sign(ctx context.Context, draft Draft, key KeyHandle) (SignedPayload, error)
}
