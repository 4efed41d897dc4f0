package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/chaingate/api"
	"github.com/chinmay1088/chaingate/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network [mainnet|testnet]",
	Short: "Show or change network",
	Long: `Show the current network and its endpoints, or switch between mainnet
and testnet. The choice is saved in the config file.

Testnet uses Bitcoin testnet, Ethereum Sepolia and Solana devnet.

Examples:
  chaingate network            # Show current network
  chaingate network testnet    # Switch to testnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		showCurrentNetwork()
		return nil
	}

	network := strings.ToLower(args[0])
	if err := config.SetNetwork(configPath, network); err != nil {
		return err
	}

	fmt.Printf("🌐 Switched to %s network\n", strings.ToUpper(network))
	if network == api.NetworkTestnet {
		fmt.Println()
		fmt.Println("⚠️  You are now on TESTNET mode")
		fmt.Println("💡 chaingate derives different addresses per network for your safety")
	}
	return nil
}

func showCurrentNetwork() {
	if cfg.App.Network == api.NetworkTestnet {
		fmt.Printf("🌐 Current network: %s\n", color.YellowString("Testnet"))
	} else {
		fmt.Printf("🌐 Current network: %s\n", color.GreenString("Mainnet"))
	}
	fmt.Println()
	fmt.Println("Endpoints:")
	if cfg.Bitcoin.Backend == config.BitcoinBackendRPC {
		fmt.Printf("   - Bitcoin:  %s (node RPC)\n", cfg.Bitcoin.RPC.Host)
	} else {
		fmt.Printf("   - Bitcoin:  %s\n", cfg.Bitcoin.EsploraURL)
	}
	fmt.Printf("   - Ethereum: %s\n", cfg.Ethereum.RPCURL)
	fmt.Printf("   - Solana:   %s\n", cfg.Solana.RPCURL)
	fmt.Printf("   - Prices:   %s\n", cfg.Price.APIURL)
}
