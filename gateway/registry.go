package gateway

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/chinmay1088/chaingate/chain"
)

// ErrDuplicateCurrency is returned when a symbol is registered twice.
var ErrDuplicateCurrency = errors.New("currency already registered")

// Chain is everything the gateway knows about one native currency.
type Chain struct {
	Backend chain.Backend
	// Signer may be nil for read-only deployments; sends then fail with
	// chain.ErrNotSupported.
	Signer chain.Signer
	// Decimals is the number of base-unit digits (8 for BTC, 18 for ETH).
	Decimals int32
	// Dust is the smallest change output worth creating on UTXO chains.
	Dust chain.Amount
	// TxFee is the flat fee a blockhash chain charges the sender on top of
	// the amount (the signature fee on Solana).
	TxFee chain.Amount
}

// Registry maps case-insensitive currency symbols to chains. Registration
// happens at startup; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	chains map[string]Chain
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[string]Chain)}
}

// Register adds c under its backend's symbol.
func (r *Registry) Register(c Chain) error {
	if c.Backend == nil {
		return errors.New("chain has no backend")
	}
	symbol := chain.NormalizeSymbol(c.Backend.Symbol())
	if symbol == "" {
		return errors.New("backend reports an empty symbol")
	}
	if c.Decimals < 0 {
		return fmt.Errorf("%s: decimals must not be negative", symbol)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chains[symbol]; ok {
		return fmt.Errorf("%s: %w", symbol, ErrDuplicateCurrency)
	}
	r.chains[symbol] = c
	return nil
}

// Lookup resolves symbol. Unknown symbols yield chain.ErrUnsupportedCurrency.
func (r *Registry) Lookup(symbol string) (Chain, error) {
	normalized := chain.NormalizeSymbol(symbol)
	r.mu.RLock()
	c, ok := r.chains[normalized]
	r.mu.RUnlock()
	if !ok {
		return Chain{}, fmt.Errorf("%s: %w", symbol, chain.ErrUnsupportedCurrency)
	}
	return c, nil
}

// Currencies lists the registered symbols in sorted order.
func (r *Registry) Currencies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbols := make([]string, 0, len(r.chains))
	for s := range r.chains {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// tokenBackend finds the first registered backend, in symbol order, that
// accepts token as a contract address.
func (r *Registry) tokenBackend(token string) (chain.TokenBackend, string, bool) {
	for _, symbol := range r.Currencies() {
		c, err := r.Lookup(symbol)
		if err != nil {
			continue
		}
		if tb, ok := c.Backend.(chain.TokenBackend); ok && tb.IsTokenAddress(token) {
			return tb, symbol, true
		}
	}
	return nil, "", false
}

// Close releases every backend that holds a connection.
func (r *Registry) Close() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.chains {
		switch b := c.Backend.(type) {
		case interface{ Close() error }:
			_ = b.Close()
		case interface{ Close() }:
			b.Close()
		}
	}
}
