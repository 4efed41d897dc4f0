// Package config loads chaingate settings from a YAML file and CHAINGATE_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chinmay1088/chaingate/api"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/chains/bitcoin"
	"github.com/chinmay1088/chaingate/price"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CHAINGATE"

	BitcoinBackendEsplora = "esplora"
	BitcoinBackendRPC     = "rpc"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Bitcoin  BitcoinConfig  `mapstructure:"bitcoin"`
	Ethereum EthereumConfig `mapstructure:"ethereum"`
	Solana   SolanaConfig   `mapstructure:"solana"`
	Price    PriceConfig    `mapstructure:"price"`
	Server   ServerConfig   `mapstructure:"server"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
}

type AppConfig struct {
	Env            string        `mapstructure:"env"`
	Network        string        `mapstructure:"network"` // mainnet or testnet
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type BitcoinConfig struct {
	Backend     string    `mapstructure:"backend"` // esplora or rpc
	EsploraURL  string    `mapstructure:"esplora_url"`
	RPC         RPCConfig `mapstructure:"rpc"`
	DustSats    int64     `mapstructure:"dust_sats"`
	FeePriority string    `mapstructure:"fee_priority"`
}

type RPCConfig struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

type EthereumConfig struct {
	RPCURL      string `mapstructure:"rpc_url"`
	ChainID     int64  `mapstructure:"chain_id"` // 0 asks the node
	ExplorerURL string `mapstructure:"explorer_url"`
	APIKey      string `mapstructure:"api_key"`
}

type SolanaConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
}

type PriceConfig struct {
	APIURL     string            `mapstructure:"api_url"`
	TTL        time.Duration     `mapstructure:"ttl"`
	MaxEntries int               `mapstructure:"max_entries"`
	IDs        map[string]string `mapstructure:"ids"`
	RedisAddr  string            `mapstructure:"redis_addr"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type WalletConfig struct {
	Dir string `mapstructure:"dir"`
}

// DefaultPath is ~/.chaingate/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chaingate", "config.yaml"), nil
}

// Option overrides a setting after defaults, file and environment are read.
type Option func(v *viper.Viper)

// WithNetwork forces app.network. Endpoints that are not configured
// explicitly follow the overridden network.
func WithNetwork(network string) Option {
	return func(v *viper.Viper) {
		v.Set("app.network", strings.ToLower(network))
	}
}

// Load reads path, or DefaultPath when path is empty. A missing default file
// is not an error; a missing explicit file is. Endpoints left empty are
// filled with the public defaults for the configured network.
func Load(path string, opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case !explicit && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	for _, opt := range opts {
		opt(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyNetworkDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.network", api.NetworkMainnet)
	v.SetDefault("app.request_timeout", 30*time.Second)

	v.SetDefault("bitcoin.backend", BitcoinBackendEsplora)
	v.SetDefault("bitcoin.esplora_url", "")
	v.SetDefault("bitcoin.rpc.host", "localhost:8332")
	v.SetDefault("bitcoin.rpc.user", "")
	v.SetDefault("bitcoin.rpc.pass", "")
	v.SetDefault("bitcoin.rpc.disable_tls", true)
	v.SetDefault("bitcoin.dust_sats", 546)
	v.SetDefault("bitcoin.fee_priority", string(bitcoin.PriorityMedium))

	v.SetDefault("ethereum.rpc_url", "")
	v.SetDefault("ethereum.chain_id", 0)
	v.SetDefault("ethereum.explorer_url", "")
	v.SetDefault("ethereum.api_key", "")

	v.SetDefault("solana.rpc_url", "")

	v.SetDefault("price.api_url", api.CoinGeckoURL)
	v.SetDefault("price.ttl", price.DefaultTTL)
	v.SetDefault("price.max_entries", price.DefaultMaxEntries)
	v.SetDefault("price.ids", maps.Clone(api.DefaultCoinIDs))
	v.SetDefault("price.redis_addr", "")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("wallet.dir", "")
}

func (c *Config) applyNetworkDefaults() {
	endpoints := api.DefaultEndpoints(c.App.Network)
	if c.Bitcoin.EsploraURL == "" {
		c.Bitcoin.EsploraURL = endpoints.Esplora
	}
	if c.Ethereum.RPCURL == "" {
		c.Ethereum.RPCURL = endpoints.EthereumRPC
	}
	if c.Ethereum.ExplorerURL == "" {
		c.Ethereum.ExplorerURL = endpoints.Explorer
	}
	if c.Solana.RPCURL == "" {
		c.Solana.RPCURL = endpoints.SolanaRPC
	}

	// viper lower-cases map keys.
	ids := make(map[string]string, len(c.Price.IDs))
	for symbol, id := range c.Price.IDs {
		ids[chain.NormalizeSymbol(symbol)] = id
	}
	c.Price.IDs = ids
}

// Validate checks values that would otherwise fail deep inside a backend.
func (c *Config) Validate() error {
	switch c.App.Network {
	case api.NetworkMainnet, api.NetworkTestnet:
	default:
		return fmt.Errorf("app.network must be %s or %s, got %q", api.NetworkMainnet, api.NetworkTestnet, c.App.Network)
	}
	switch c.Bitcoin.Backend {
	case BitcoinBackendEsplora, BitcoinBackendRPC:
	default:
		return fmt.Errorf("bitcoin.backend must be %s or %s, got %q", BitcoinBackendEsplora, BitcoinBackendRPC, c.Bitcoin.Backend)
	}
	if _, err := bitcoin.ParsePriority(c.Bitcoin.FeePriority); err != nil {
		return fmt.Errorf("bitcoin.fee_priority: %w", err)
	}
	if c.Bitcoin.DustSats < 0 {
		return errors.New("bitcoin.dust_sats must not be negative")
	}
	if c.Ethereum.ChainID < 0 {
		return errors.New("ethereum.chain_id must not be negative")
	}
	if c.Price.TTL <= 0 {
		return errors.New("price.ttl must be positive")
	}
	if c.Price.MaxEntries <= 0 {
		return errors.New("price.max_entries must be positive")
	}
	if c.App.RequestTimeout <= 0 {
		return errors.New("app.request_timeout must be positive")
	}
	return nil
}

// DustThreshold is the configured dust limit in BTC.
func (c *Config) DustThreshold() chain.Amount {
	return bitcoin.FromSatoshis(c.Bitcoin.DustSats)
}

// SetNetwork persists app.network into the config file at path, or
// DefaultPath when path is empty. Other settings in the file are kept.
func SetNetwork(path, network string) error {
	network = strings.ToLower(network)
	if network != api.NetworkMainnet && network != api.NetworkTestnet {
		return fmt.Errorf("invalid network %q, use %s or %s", network, api.NetworkMainnet, api.NetworkTestnet)
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	v.Set("app.network", network)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
