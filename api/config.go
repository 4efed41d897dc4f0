package api

// network type constants
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// Public endpoints used when the configuration does not name one.
const (
	// mainnet
	MainnetEthereumRPC = "https://ethereum-rpc.publicnode.com"
	MainnetSolanaRPC   = "https://api.mainnet-beta.solana.com"
	MainnetEsploraURL  = "https://mempool.space/api"
	MainnetExplorerURL = "https://api.etherscan.io/api"

	// testnet
	TestnetEthereumRPC = "https://ethereum-sepolia.publicnode.com"
	TestnetSolanaRPC   = "https://api.devnet.solana.com"
	TestnetEsploraURL  = "https://mempool.space/testnet/api"
	TestnetExplorerURL = "https://api-sepolia.etherscan.io/api"

	BlockstreamURL = "https://blockstream.info/api"
	CoinGeckoURL   = "https://api.coingecko.com/api/v3"
)

// Endpoints groups the defaults for one network.
type Endpoints struct {
	EthereumRPC string
	SolanaRPC   string
	Esplora     string
	Explorer    string
}

// DefaultEndpoints returns the public endpoints for network. Unknown
// networks fall back to mainnet.
func DefaultEndpoints(network string) Endpoints {
	if network == NetworkTestnet {
		return Endpoints{
			EthereumRPC: TestnetEthereumRPC,
			SolanaRPC:   TestnetSolanaRPC,
			Esplora:     TestnetEsploraURL,
			Explorer:    TestnetExplorerURL,
		}
	}
	return Endpoints{
		EthereumRPC: MainnetEthereumRPC,
		SolanaRPC:   MainnetSolanaRPC,
		Esplora:     MainnetEsploraURL,
		Explorer:    MainnetExplorerURL,
	}
}
