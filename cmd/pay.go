package cmd

import (
	"fmt"

	"github.com/chinmay1088/chaingate/api"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/chains/bitcoin"
	"github.com/chinmay1088/chaingate/chains/ethereum"
	"github.com/chinmay1088/chaingate/chains/solana"
	"github.com/chinmay1088/chaingate/gateway"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var payCmd = &cobra.Command{
	Use:   "pay [currency] [amount] [address]",
	Short: "Send a payment",
	Long: `Build, sign and broadcast a payment from the wallet.

Supported currencies: btc, eth, sol

Examples:
  chaingate pay eth 0.1 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  chaingate pay btc 0.001 bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh
  chaingate pay sol 25 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU --usd`,
	Args: cobra.ExactArgs(3),
	RunE: runPay,
}

var currencyDecimals = map[string]int32{
	bitcoin.Symbol:  bitcoin.Decimals,
	ethereum.Symbol: ethereum.Decimals,
	solana.Symbol:   solana.Decimals,
}

func runPay(cmd *cobra.Command, args []string) error {
	currency := chain.NormalizeSymbol(args[0])
	recipient := args[2]

	usdFlag, _ := cmd.Flags().GetBool("usd")
	yesFlag, _ := cmd.Flags().GetBool("yes")
	keyHandle, _ := cmd.Flags().GetString("key-handle")

	decimals, ok := currencyDecimals[currency]
	if !ok {
		return fmt.Errorf("%s: %w", currency, chain.ErrUnsupportedCurrency)
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	keys, err := unlockWallet()
	if err != nil {
		return err
	}
	defer keys.Wipe()

	from, err := keys.Address(currency, chain.KeyHandle(keyHandle))
	if err != nil {
		return fmt.Errorf("failed to get sender address: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg, keys, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	var usdValue string
	quote, err := a.gateway.GetPrice(cmd.Context(), currency)
	switch {
	case err != nil && usdFlag:
		return fmt.Errorf("failed to convert USD amount: %w", err)
	case err != nil:
		// the confirmation simply omits the USD value
	case quote.PriceUSD.IsZero():
		if usdFlag {
			return fmt.Errorf("no USD price for %s", currency)
		}
	case usdFlag:
		usdValue = amount.StringFixed(2)
		amount = amount.DivRound(quote.PriceUSD, decimals)
	default:
		usdValue = amount.Mul(quote.PriceUSD).StringFixed(2)
	}

	fmt.Printf("📊 Transaction Details:\n")
	fmt.Printf("   From:    %s\n", from)
	fmt.Printf("   To:      %s\n", recipient)
	if usdValue != "" {
		fmt.Printf("   Amount:  %s %s (~$%s)\n", amount.String(), currency, usdValue)
	} else {
		fmt.Printf("   Amount:  %s %s\n", amount.String(), currency)
	}
	fmt.Printf("   Network: %s\n", cfg.App.Network)
	fmt.Println()

	if !yesFlag {
		if cfg.App.Network == api.NetworkTestnet {
			fmt.Println("⚠️ You are on testnet. No real funds will be sent.")
		} else {
			fmt.Println("🚨 You are on main network. By confirming this transaction real funds will be sent to this address.")
		}
		if !confirm("Press y to confirm or n to stop") {
			fmt.Println("❌ Transaction cancelled by user")
			return nil
		}
	}

	txID, err := a.gateway.SendTransaction(cmd.Context(), gateway.SendRequest{
		From:      from,
		To:        recipient,
		Amount:    amount,
		Currency:  currency,
		KeyHandle: chain.KeyHandle(keyHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	fmt.Printf("✅ Transaction sent successfully!\n")
	fmt.Printf("📝 Transaction Hash: %s\n", color.GreenString(txID))
	if link := explorerLink(currency, txID); link != "" {
		fmt.Printf("🔗 Explorer: %s\n", link)
	}
	return nil
}

func explorerLink(currency, txID string) string {
	testnet := cfg.App.Network == api.NetworkTestnet
	switch currency {
	case bitcoin.Symbol:
		if testnet {
			return "https://mempool.space/testnet/tx/" + txID
		}
		return "https://mempool.space/tx/" + txID
	case ethereum.Symbol:
		if testnet {
			return "https://sepolia.etherscan.io/tx/" + txID
		}
		return "https://etherscan.io/tx/" + txID
	case solana.Symbol:
		if testnet {
			return "https://solscan.io/tx/" + txID + "?cluster=devnet"
		}
		return "https://solscan.io/tx/" + txID
	}
	return ""
}

func init() {
	payCmd.Flags().Bool("usd", false, "Specify amount in USD")
	payCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	payCmd.Flags().String("key-handle", "", "BIP-32 derivation path of the sending key")
}
