package chain

import (
	"context"
	"math/big"
)

// UnavailableBackend stands in for a backend whose connection could not be
// established. Every call fails immediately with ErrBackendUnavailable.
type UnavailableBackend struct {
	symbol string
	family Family
	err    error
}

// NewUnavailable returns a backend for symbol that fails fast with cause.
func NewUnavailable(symbol string, family Family, cause error) *UnavailableBackend {
	return &UnavailableBackend{
		symbol: NormalizeSymbol(symbol),
		family: family,
		err:    Unavailable(NormalizeSymbol(symbol), cause),
	}
}

func (u *UnavailableBackend) Symbol() string { return u.symbol }
func (u *UnavailableBackend) Family() Family { return u.family }
func (u *UnavailableBackend) Err() error     { return u.err }

func (u *UnavailableBackend) GetBalance(context.Context, string) (Amount, error) {
	return Amount{}, u.err
}

func (u *UnavailableBackend) Broadcast(context.Context, SignedPayload) (string, error) {
	return "", u.err
}

func (u *UnavailableBackend) FetchHistory(context.Context, string, int) (History, error) {
	return nil, u.err
}

func (u *UnavailableBackend) ListUnspent(context.Context, string) ([]UnspentOutput, error) {
	return nil, u.err
}

func (u *UnavailableBackend) FeeRate(context.Context) (Amount, error) {
	return Amount{}, u.err
}

func (u *UnavailableBackend) Nonce(context.Context, string) (uint64, error) {
	return 0, u.err
}

func (u *UnavailableBackend) GasPrice(context.Context) (*big.Int, error) {
	return nil, u.err
}

func (u *UnavailableBackend) ChainID() *big.Int { return nil }

func (u *UnavailableBackend) RecentBlockhash(context.Context) (string, error) {
	return "", u.err
}

func (u *UnavailableBackend) TokenBalance(context.Context, string, string) (Amount, error) {
	return Amount{}, u.err
}

func (u *UnavailableBackend) IsTokenAddress(string) bool { return false }
