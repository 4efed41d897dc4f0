package gateway

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/price"
	"github.com/shopspring/decimal"
)

func dec(s string) chain.Amount { return decimal.RequireFromString(s) }

type fakeBackend struct {
	symbol  string
	family  chain.Family
	balance chain.Amount
	err     error

	mu           sync.Mutex
	broadcasts   []chain.SignedPayload
	broadcastErr error
	history      chain.History
	historyErr   error
}

func (f *fakeBackend) Symbol() string       { return f.symbol }
func (f *fakeBackend) Family() chain.Family { return f.family }

func (f *fakeBackend) GetBalance(context.Context, string) (chain.Amount, error) {
	return f.balance, f.err
}

func (f *fakeBackend) Broadcast(_ context.Context, p chain.SignedPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, p)
	if f.broadcastErr != nil {
		return "", f.broadcastErr
	}
	return "tx-" + string(p), nil
}

func (f *fakeBackend) FetchHistory(context.Context, string, int) (chain.History, error) {
	return f.history, f.historyErr
}

func (f *fakeBackend) broadcastCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.broadcasts)
}

type fakeUTXO struct {
	fakeBackend
	utxos []chain.UnspentOutput
	rate  chain.Amount
}

func (f *fakeUTXO) ListUnspent(context.Context, string) ([]chain.UnspentOutput, error) {
	return f.utxos, f.err
}

func (f *fakeUTXO) FeeRate(context.Context) (chain.Amount, error) { return f.rate, f.err }

type fakeAccount struct {
	fakeBackend
	nonce    uint64
	gasPrice *big.Int
	chainID  *big.Int
	tokens   map[string]chain.Amount
}

func (f *fakeAccount) Nonce(context.Context, string) (uint64, error) { return f.nonce, f.err }

func (f *fakeAccount) GasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.gasPrice), f.err
}

func (f *fakeAccount) ChainID() *big.Int { return f.chainID }

func (f *fakeAccount) IsTokenAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && len(s) == 42
}

func (f *fakeAccount) TokenBalance(_ context.Context, token, _ string) (chain.Amount, error) {
	amount, ok := f.tokens[strings.ToLower(token)]
	if !ok {
		return chain.Amount{}, chain.NewNetworkError("call balanceOf", errors.New("execution reverted"))
	}
	return amount, nil
}

type fakeBlockhash struct {
	fakeBackend
	blockhash string
}

func (f *fakeBlockhash) RecentBlockhash(context.Context) (string, error) {
	return f.blockhash, f.err
}

// recordingSigner keeps the last draft and returns its family as payload.
type recordingSigner struct {
	mu     sync.Mutex
	drafts []chain.Draft
	keys   []chain.KeyHandle
	err    error
}

func (s *recordingSigner) Sign(_ context.Context, d chain.Draft, key chain.KeyHandle) (chain.SignedPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = append(s.drafts, d)
	s.keys = append(s.keys, key)
	if s.err != nil {
		return nil, s.err
	}
	return chain.SignedPayload(d.Family().String()), nil
}

func (s *recordingSigner) last() chain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.drafts) == 0 {
		return nil
	}
	return s.drafts[len(s.drafts)-1]
}

type fakePrices struct {
	quotes map[string]price.Quote
}

func (p *fakePrices) Get(_ context.Context, currency string) (price.Quote, error) {
	q, ok := p.quotes[chain.NormalizeSymbol(currency)]
	if !ok {
		return price.Quote{}, price.ErrPriceUnavailable
	}
	return q, nil
}

type observation struct {
	operation, currency string
	err                 error
}

type fakeObserver struct {
	mu         sync.Mutex
	requests   []observation
	broadcasts []observation
}

func (o *fakeObserver) ObserveRequest(operation, currency string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observation{operation, currency, err})
}

func (o *fakeObserver) ObserveBroadcast(currency string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.broadcasts = append(o.broadcasts, observation{"broadcast", currency, err})
}

func bigInt(n int64) *big.Int { return big.NewInt(n) }
