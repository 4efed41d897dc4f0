package cmd

import (
	"context"
	"math/big"

	"github.com/chinmay1088/chaingate/api"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/chains/bitcoin"
	"github.com/chinmay1088/chaingate/chains/ethereum"
	"github.com/chinmay1088/chaingate/chains/solana"
	"github.com/chinmay1088/chaingate/config"
	"github.com/chinmay1088/chaingate/gateway"
	"github.com/chinmay1088/chaingate/logger"
	"github.com/chinmay1088/chaingate/metrics"
	"github.com/chinmay1088/chaingate/price"
	"github.com/chinmay1088/chaingate/wallet"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// app holds the wired gateway and everything that needs closing.
type app struct {
	gateway  *gateway.Gateway
	registry *gateway.Registry
	redis    *price.RedisStore
}

// newApp dials every backend and builds the gateway. A backend that cannot
// be reached is registered as unavailable so the other chains keep working.
// keys and m may be nil; without keys the gateway is read-only.
func newApp(ctx context.Context, cfg *config.Config, keys *wallet.KeyRing, m *metrics.Metrics) (*app, error) {
	log := logger.Log
	client := api.NewClient(cfg.App.RequestTimeout)
	params := bitcoin.NetworkParams(cfg.App.Network)

	priority, err := bitcoin.ParsePriority(cfg.Bitcoin.FeePriority)
	if err != nil {
		return nil, err
	}

	var (
		btc      chain.Backend
		prevOuts bitcoin.PrevOutFetcher
		eth      chain.Backend
		sol      chain.Backend
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		switch cfg.Bitcoin.Backend {
		case config.BitcoinBackendRPC:
			b, err := bitcoin.DialRPC(bitcoin.RPCConfig{
				Host:       cfg.Bitcoin.RPC.Host,
				User:       cfg.Bitcoin.RPC.User,
				Pass:       cfg.Bitcoin.RPC.Pass,
				DisableTLS: cfg.Bitcoin.RPC.DisableTLS,
			}, params, priority, log)
			if err != nil {
				log.Warn("bitcoin backend unavailable", zap.Error(err))
				btc = chain.NewUnavailable(bitcoin.Symbol, chain.FamilyUTXO, err)
				return nil
			}
			btc, prevOuts = b, b
		default:
			b := bitcoin.NewEsploraBackend(api.NewEsplora(client, cfg.Bitcoin.EsploraURL), priority, log)
			btc, prevOuts = b, b
		}
		return nil
	})
	g.Go(func() error {
		var chainID *big.Int
		if cfg.Ethereum.ChainID > 0 {
			chainID = big.NewInt(cfg.Ethereum.ChainID)
		}
		explorer := api.NewExplorer(client, cfg.Ethereum.ExplorerURL, cfg.Ethereum.APIKey)
		b, err := ethereum.Dial(gctx, cfg.Ethereum.RPCURL, chainID, explorer, log)
		if err != nil {
			log.Warn("ethereum backend unavailable", zap.Error(err))
			eth = chain.NewUnavailable(ethereum.Symbol, chain.FamilyAccount, err)
			return nil
		}
		eth = b
		return nil
	})
	g.Go(func() error {
		b, err := solana.Dial(gctx, cfg.Solana.RPCURL, log)
		if err != nil {
			log.Warn("solana backend unavailable", zap.Error(err))
			sol = chain.NewUnavailable(solana.Symbol, chain.FamilyBlockhash, err)
			return nil
		}
		sol = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chains := []gateway.Chain{
		{Backend: btc, Decimals: bitcoin.Decimals, Dust: cfg.DustThreshold()},
		{Backend: eth, Decimals: ethereum.Decimals},
		{Backend: sol, Decimals: solana.Decimals, TxFee: solana.LamportsToSOL(solana.SignatureFeeLamports)},
	}
	if keys != nil {
		chains[0].Signer = bitcoin.NewSigner(keys, prevOuts, params)
		chains[1].Signer = ethereum.NewSigner(keys)
		chains[2].Signer = solana.NewSigner(keys)
	}

	a := &app{registry: gateway.NewRegistry()}
	for _, c := range chains {
		if err := a.registry.Register(c); err != nil {
			a.Close()
			return nil, err
		}
	}

	cacheCfg := price.Config{
		TTL:          cfg.Price.TTL,
		MaxEntries:   cfg.Price.MaxEntries,
		FetchTimeout: cfg.App.RequestTimeout,
		Logger:       log,
	}
	if cfg.Price.RedisAddr != "" {
		store, err := price.DialRedis(ctx, cfg.Price.RedisAddr)
		if err != nil {
			log.Warn("price store unavailable, using memory only", zap.String("addr", cfg.Price.RedisAddr), zap.Error(err))
		} else {
			a.redis = store
			cacheCfg.Store = store
		}
	}

	gwCfg := gateway.Config{Logger: log}
	if m != nil {
		cacheCfg.Observer = m
		gwCfg.Observer = m
	}
	gwCfg.Prices = price.NewCache(api.NewCoinGecko(client, cfg.Price.APIURL, cfg.Price.IDs), cacheCfg)

	a.gateway = gateway.New(a.registry, gwCfg)
	return a, nil
}

// Close releases backend connections and the price store.
func (a *app) Close() {
	a.registry.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
