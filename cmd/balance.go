package cmd

import (
	"errors"
	"fmt"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/chains/ethereum"
	"github.com/chinmay1088/chaingate/gateway"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [currency]",
	Short: "Check balances",
	Long: `Check balances for supported currencies.

Without --address the wallet is unlocked and its default addresses are used.

Supported currencies: btc, eth, sol

Examples:
  chaingate balance                       # All wallet balances
  chaingate balance eth --usd             # Ethereum balance with USD value
  chaingate balance btc --address bc1q... # Any Bitcoin address
  chaingate balance --token 0xA0b8...     # ERC-20 balance of the wallet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalance,
}

type balanceResult struct {
	currency string
	balance  chain.Balance
	err      error
}

func runBalance(cmd *cobra.Command, args []string) error {
	usdFlag, _ := cmd.Flags().GetBool("usd")
	address, _ := cmd.Flags().GetString("address")
	token, _ := cmd.Flags().GetString("token")

	currencies, err := balanceCurrencies(args, token, address)
	if err != nil {
		return err
	}

	addresses := map[string]string{}
	if address != "" {
		addresses[currencies[0]] = address
	} else {
		keys, err := unlockWallet()
		if err != nil {
			return err
		}
		addresses, err = ownAddresses(keys)
		keys.Wipe()
		if err != nil {
			return err
		}
	}

	a, err := newApp(cmd.Context(), cfg, nil, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []gateway.BalanceOption
	if usdFlag {
		opts = append(opts, gateway.WithUSD())
	}

	results := make([]balanceResult, len(currencies))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, currency := range currencies {
		g.Go(func() error {
			res := balanceResult{currency: currency}
			if token != "" {
				res.balance, res.err = a.gateway.GetTokenBalance(ctx, addresses[currency], token)
			} else {
				res.balance, res.err = a.gateway.GetBalance(ctx, addresses[currency], currency, opts...)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	fmt.Println("💰 Balances")
	fmt.Printf("🌐 Network: %s\n", cfg.App.Network)
	fmt.Println()

	for _, res := range results {
		name := currencyNames[res.currency]
		if name == "" {
			name = res.currency
		}
		if res.err != nil {
			fmt.Printf("❌ %s: %s\n", name, color.RedString(res.err.Error()))
			continue
		}

		fmt.Printf("🔹 %s: %s %s\n", name, color.GreenString(res.balance.Amount.String()), res.balance.Currency)
		if usdFlag {
			if res.balance.USDValue != nil {
				fmt.Printf("   💵 USD: $%s\n", res.balance.USDValue.StringFixed(2))
			} else {
				fmt.Printf("   💵 USD: %s\n", color.YellowString("price unavailable"))
			}
		}
		fmt.Printf("   📍 Address: %s\n", res.balance.Address)
		fmt.Println()
	}
	return nil
}

// balanceCurrencies picks the currencies to query. A token query only ever
// goes to the ERC-20 backend, so it is limited to ETH.
func balanceCurrencies(args []string, token, address string) ([]string, error) {
	currencies := supportedCurrencies
	if len(args) == 1 {
		currencies = []string{chain.NormalizeSymbol(args[0])}
	}
	if token != "" {
		if len(args) == 1 && currencies[0] != ethereum.Symbol {
			return nil, fmt.Errorf("tokens are only supported on %s", ethereum.Symbol)
		}
		currencies = []string{ethereum.Symbol}
	}
	if address != "" && len(currencies) > 1 {
		return nil, errors.New("--address needs a currency")
	}
	return currencies, nil
}

func init() {
	balanceCmd.Flags().Bool("usd", false, "Show USD value")
	balanceCmd.Flags().String("address", "", "Query this address instead of the wallet")
	balanceCmd.Flags().String("token", "", "ERC-20 contract address")
}
