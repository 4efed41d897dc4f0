// Package price keeps USD quotes for native currencies in a bounded,
// time-windowed cache in front of an upstream price source.
package price

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL        = time.Minute
	DefaultMaxEntries = 256
	// DefaultFetchTimeout bounds a shared upstream fetch, which no longer
	// follows any single caller's context.
	DefaultFetchTimeout = 10 * time.Second
)

// Cache lookup outcomes reported to an Observer.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultStoreHit = "store_hit"
	ResultStale    = "stale"
	ResultFailed   = "failed"
)

// Fetcher is the upstream price source.
type Fetcher interface {
	FetchUSDPrice(ctx context.Context, symbol string) (chain.Amount, error)
}

// Observer is told the outcome of cache lookups.
type Observer interface {
	ObservePriceLookup(currency, result string)
}

// Entry is a cached price. Only the cache creates or replaces entries.
type Entry struct {
	Currency  string       `json:"currency"`
	PriceUSD  chain.Amount `json:"price_usd"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Quote is what callers get back from Get.
type Quote struct {
	Currency  string       `json:"currency"`
	PriceUSD  chain.Amount `json:"price_usd"`
	FetchedAt time.Time    `json:"fetched_at"`
	// Stale is set when the upstream fetch failed and an expired entry was served instead.
	Stale bool `json:"stale"`
}

// Config tunes a Cache. Zero values fall back to the defaults.
type Config struct {
	TTL        time.Duration
	MaxEntries int
	// FetchTimeout bounds one upstream fetch shared by concurrent callers.
	FetchTimeout time.Duration
	// Store is an optional shared second level, e.g. Redis.
	Store    Store
	Observer Observer
	Logger   *zap.Logger
	// Now replaces time.Now in tests.
	Now func() time.Time
}

// Cache is safe for concurrent use. Concurrent misses for the same currency
// share a single upstream fetch.
type Cache struct {
	fetcher  Fetcher
	ttl      time.Duration
	max      int
	timeout  time.Duration
	store    Store
	observer Observer
	log      *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
	flight  singleflight.Group
}

// NewCache creates a cache in front of fetcher.
func NewCache(fetcher Fetcher, cfg Config) *Cache {
	c := &Cache{
		fetcher:  fetcher,
		ttl:      cfg.TTL,
		max:      cfg.MaxEntries,
		timeout:  cfg.FetchTimeout,
		store:    cfg.Store,
		observer: cfg.Observer,
		log:      cfg.Logger,
		now:      cfg.Now,
		entries:  make(map[string]Entry),
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.max <= 0 {
		c.max = DefaultMaxEntries
	}
	if c.timeout <= 0 {
		c.timeout = DefaultFetchTimeout
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get returns the USD price of currency. A fresh cached entry is returned
// without any I/O. Otherwise the price is fetched; if that fails an expired
// entry is served with Stale set, and with no entry at all the result is
// ErrPriceUnavailable wrapping the *FetchError.
func (c *Cache) Get(ctx context.Context, currency string) (Quote, error) {
	symbol := chain.NormalizeSymbol(currency)
	if symbol == "" {
		return Quote{}, errors.New("currency is required")
	}

	if e, ok := c.lookup(symbol); ok && c.fresh(e) {
		c.observe(symbol, ResultHit)
		return quote(e, false), nil
	}

	// The fetch is shared, so one caller giving up must not fail the others.
	// Each caller still stops waiting when its own context is done.
	ch := c.flight.DoChan(symbol, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.refresh(fctx, symbol)
	})
	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return quote(res.Val.(Entry), false), nil
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if e, ok := c.lookup(symbol); ok {
		c.observe(symbol, ResultStale)
		c.log.Warn("serving stale price",
			zap.String("currency", symbol),
			zap.Time("fetched_at", e.FetchedAt),
			zap.Error(err),
		)
		return quote(e, true), nil
	}

	c.observe(symbol, ResultFailed)
	return Quote{}, fmt.Errorf("%s: %w: %w", symbol, ErrPriceUnavailable, err)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) refresh(ctx context.Context, symbol string) (Entry, error) {
	// another flight may have finished between the caller's lookup and now
	if e, ok := c.lookup(symbol); ok && c.fresh(e) {
		c.observe(symbol, ResultHit)
		return e, nil
	}

	if c.store != nil {
		e, found, err := c.store.Load(ctx, symbol)
		switch {
		case err != nil:
			c.log.Warn("price store load failed", zap.String("currency", symbol), zap.Error(err))
		case found && c.fresh(e):
			c.put(e)
			c.observe(symbol, ResultStoreHit)
			return e, nil
		}
	}

	c.observe(symbol, ResultMiss)
	usd, err := c.fetcher.FetchUSDPrice(ctx, symbol)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return Entry{}, err
		}
		return Entry{}, &FetchError{Currency: symbol, Err: err}
	}
	if !usd.IsPositive() {
		return Entry{}, &FetchError{Currency: symbol, Err: fmt.Errorf("non-positive price %s", usd.String())}
	}

	e := Entry{Currency: symbol, PriceUSD: usd, FetchedAt: c.now()}
	c.put(e)

	if c.store != nil {
		if err := c.store.Save(ctx, e, c.ttl); err != nil {
			c.log.Warn("price store save failed", zap.String("currency", symbol), zap.Error(err))
		}
	}
	return e, nil
}

func (c *Cache) lookup(symbol string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[symbol]
	return e, ok
}

func (c *Cache) fresh(e Entry) bool {
	return c.now().Sub(e.FetchedAt) < c.ttl
}

// put stores e, evicting the entry with the oldest FetchedAt when a new key
// would exceed the bound.
func (c *Cache) put(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[e.Currency]; !exists && len(c.entries) >= c.max {
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, v := range c.entries {
			if oldestKey == "" || v.FetchedAt.Before(oldest) || (v.FetchedAt.Equal(oldest) && k < oldestKey) {
				oldestKey, oldest = k, v.FetchedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[e.Currency] = e
}

func (c *Cache) observe(symbol, result string) {
	if c.observer != nil {
		c.observer.ObservePriceLookup(symbol, result)
	}
}

func quote(e Entry, stale bool) Quote {
	return Quote{
		Currency:  e.Currency,
		PriceUSD:  e.PriceUSD,
		FetchedAt: e.FetchedAt,
		Stale:     stale,
	}
}
