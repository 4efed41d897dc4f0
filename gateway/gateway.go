// Package gateway dispatches currency-tagged requests to chain backends and
// composes coin selection, drafting, signing and broadcast for sends.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/price"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned for requests that fail validation before any
// backend is contacted.
var ErrInvalidRequest = errors.New("invalid request")

// Operation names reported to an Observer.
const (
	OpGetBalance      = "get_balance"
	OpGetTokenBalance = "get_token_balance"
	OpSendTransaction = "send_transaction"
	OpGetPrice        = "get_price"
	OpGetHistory      = "get_history"
)

// PriceSource is satisfied by *price.Cache.
type PriceSource interface {
	Get(ctx context.Context, currency string) (price.Quote, error)
}

// Observer is told about every operation and broadcast.
type Observer interface {
	ObserveRequest(operation, currency string, elapsed time.Duration, err error)
	ObserveBroadcast(currency string, err error)
}

// Config wires the optional collaborators.
type Config struct {
	Prices   PriceSource
	Observer Observer
	Logger   *zap.Logger
}

// Gateway is safe for concurrent use. Apart from the price cache it holds no
// mutable state.
type Gateway struct {
	registry *Registry
	prices   PriceSource
	observer Observer
	log      *zap.Logger
}

// New creates a gateway over registry.
func New(registry *Registry, cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Gateway{
		registry: registry,
		prices:   cfg.Prices,
		observer: cfg.Observer,
		log:      cfg.Logger,
	}
}

// Currencies lists the registered native symbols.
func (g *Gateway) Currencies() []string {
	return g.registry.Currencies()
}

// BalanceOption tunes GetBalance.
type BalanceOption func(*balanceOptions)

type balanceOptions struct {
	usd bool
}

// WithUSD attaches the USD value of the balance when a price is available.
func WithUSD() BalanceOption {
	return func(o *balanceOptions) { o.usd = true }
}

// GetBalance returns the balance of address. currency is either a registered
// native symbol or a token contract address understood by a token backend;
// in the latter case address is the wallet holding the token.
func (g *Gateway) GetBalance(ctx context.Context, address, currency string, opts ...BalanceOption) (bal chain.Balance, err error) {
	defer g.observe(OpGetBalance, currency, time.Now(), &err)

	var o balanceOptions
	for _, opt := range opts {
		opt(&o)
	}

	c, lookupErr := g.registry.Lookup(currency)
	if lookupErr != nil {
		bal, err = g.tokenBalance(ctx, address, currency)
	} else {
		bal, err = g.nativeBalance(ctx, c, address)
	}
	if err != nil {
		return chain.Balance{}, err
	}

	if o.usd {
		g.attachUSD(ctx, &bal)
	}
	return bal, nil
}

// GetTokenBalance returns the balance of token held by wallet.
func (g *Gateway) GetTokenBalance(ctx context.Context, wallet, token string) (bal chain.Balance, err error) {
	defer g.observe(OpGetTokenBalance, token, time.Now(), &err)
	return g.tokenBalance(ctx, wallet, token)
}

func (g *Gateway) nativeBalance(ctx context.Context, c Chain, address string) (chain.Balance, error) {
	if strings.TrimSpace(address) == "" {
		return chain.Balance{}, fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}
	amount, err := c.Backend.GetBalance(ctx, address)
	if err != nil {
		return chain.Balance{}, err
	}
	return chain.Balance{
		Address:  address,
		Amount:   amount,
		Currency: c.Backend.Symbol(),
	}, nil
}

func (g *Gateway) tokenBalance(ctx context.Context, wallet, token string) (chain.Balance, error) {
	token = strings.TrimSpace(token)
	wallet = strings.TrimSpace(wallet)

	tb, _, ok := g.registry.tokenBackend(token)
	if !ok {
		return chain.Balance{}, fmt.Errorf("%s: %w", token, chain.ErrUnsupportedCurrency)
	}
	// One address cannot be both the contract and its holder.
	if wallet == "" || strings.EqualFold(wallet, token) {
		return chain.Balance{}, fmt.Errorf("%s: token balance needs a wallet distinct from the contract: %w", token, chain.ErrUnsupportedCurrency)
	}

	amount, err := tb.TokenBalance(ctx, token, wallet)
	if err != nil {
		return chain.Balance{}, err
	}
	return chain.Balance{
		Address:  wallet,
		Amount:   amount,
		Currency: token,
	}, nil
}

// attachUSD never fabricates a value: a failed lookup leaves USDValue nil.
func (g *Gateway) attachUSD(ctx context.Context, bal *chain.Balance) {
	if g.prices == nil {
		return
	}
	quote, err := g.prices.Get(ctx, bal.Currency)
	if err != nil {
		g.log.Warn("balance returned without usd value",
			zap.String("currency", bal.Currency),
			zap.Error(err),
		)
		return
	}
	usd := bal.Amount.Mul(quote.PriceUSD).Round(2)
	bal.USDValue = &usd
}

// GetPrice returns the USD quote for currency.
func (g *Gateway) GetPrice(ctx context.Context, currency string) (quote price.Quote, err error) {
	defer g.observe(OpGetPrice, currency, time.Now(), &err)

	if g.prices == nil {
		return price.Quote{}, fmt.Errorf("%s: no price source configured: %w", chain.NormalizeSymbol(currency), price.ErrPriceUnavailable)
	}
	return g.prices.Get(ctx, currency)
}

// GetTransactionHistory returns up to limit transactions of address, newest
// first. Backends without a history source fail with chain.ErrNotSupported.
func (g *Gateway) GetTransactionHistory(ctx context.Context, address, currency string, limit int) (h chain.History, err error) {
	defer g.observe(OpGetHistory, currency, time.Now(), &err)

	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}
	c, err := g.registry.Lookup(currency)
	if err != nil {
		return nil, err
	}
	return c.Backend.FetchHistory(ctx, address, limit)
}

func (g *Gateway) observe(operation, currency string, start time.Time, err *error) {
	if g.observer == nil {
		return
	}
	g.observer.ObserveRequest(operation, g.metricLabel(currency), time.Since(start), *err)
}

// metricLabel keeps arbitrary token addresses out of metric labels.
func (g *Gateway) metricLabel(currency string) string {
	symbol := chain.NormalizeSymbol(currency)
	if _, err := g.registry.Lookup(symbol); err == nil {
		return symbol
	}
	if _, _, ok := g.registry.tokenBackend(strings.TrimSpace(currency)); ok {
		return "token"
	}
	return "unknown"
}
