package cmd

import (
	"fmt"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/chains/bitcoin"
	"github.com/chinmay1088/chaingate/chains/ethereum"
	"github.com/chinmay1088/chaingate/chains/solana"
	"github.com/chinmay1088/chaingate/wallet"
	"github.com/spf13/cobra"
)

var supportedCurrencies = []string{bitcoin.Symbol, ethereum.Symbol, solana.Symbol}

var currencyNames = map[string]string{
	bitcoin.Symbol:  "Bitcoin",
	ethereum.Symbol: "Ethereum",
	solana.Symbol:   "Solana",
}

var addressCmd = &cobra.Command{
	Use:   "address [currency]",
	Short: "Show wallet address",
	Long: `Show your wallet address for the specified currency.
Supported currencies: btc, eth, sol

Examples:
  chaingate address eth                          # Ethereum address
  chaingate address btc --key-handle "m/84'/0'/0'/0/1"
  chaingate address                              # All addresses`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAddress,
}

func runAddress(cmd *cobra.Command, args []string) error {
	keyHandle, _ := cmd.Flags().GetString("key-handle")

	keys, err := unlockWallet()
	if err != nil {
		return err
	}
	defer keys.Wipe()

	currencies := supportedCurrencies
	if len(args) == 1 {
		currencies = []string{chain.NormalizeSymbol(args[0])}
	}

	if len(currencies) > 1 {
		fmt.Println("🔑 Your wallet addresses:")
		fmt.Printf("🌐 Network: %s\n", keys.Network())
		fmt.Println()
	}
	for _, currency := range currencies {
		address, err := keys.Address(currency, chain.KeyHandle(keyHandle))
		if err != nil {
			return fmt.Errorf("failed to get %s address: %w", currency, err)
		}
		if len(currencies) == 1 {
			fmt.Println(address)
			continue
		}
		fmt.Printf("%-9s (%s): %s\n", currencyNames[currency], currency, address)
	}
	return nil
}

// ownAddress resolves the wallet's default address for currency.
func ownAddress(currency string) (string, error) {
	keys, err := unlockWallet()
	if err != nil {
		return "", err
	}
	defer keys.Wipe()
	return keys.Address(currency, "")
}

// ownAddresses resolves the default address of every supported currency.
func ownAddresses(keys *wallet.KeyRing) (map[string]string, error) {
	out := make(map[string]string, len(supportedCurrencies))
	for _, currency := range supportedCurrencies {
		address, err := keys.Address(currency, "")
		if err != nil {
			return nil, err
		}
		out[currency] = address
	}
	return out, nil
}

func init() {
	addressCmd.Flags().String("key-handle", "", "BIP-32 derivation path (default: the network's first account)")
}
