package cmd

import (
	"fmt"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price [currency...]",
	Short: "Show USD prices",
	Long: `Show the USD spot price of one or more currencies.

Examples:
  chaingate price            # BTC, ETH and SOL
  chaingate price eth usdc   # Any currency with a configured price id`,
	RunE: runPrice,
}

func runPrice(cmd *cobra.Command, args []string) error {
	currencies := args
	if len(currencies) == 0 {
		currencies = supportedCurrencies
	}

	a, err := newApp(cmd.Context(), cfg, nil, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, currency := range currencies {
		quote, err := a.gateway.GetPrice(cmd.Context(), currency)
		if err != nil {
			fmt.Printf("❌ %s: %s\n", chain.NormalizeSymbol(currency), color.RedString(err.Error()))
			continue
		}
		line := fmt.Sprintf("💲 %s: $%s", quote.Currency, quote.PriceUSD.StringFixed(2))
		if quote.Stale {
			line += color.YellowString(" (stale, fetched %s)", quote.FetchedAt.Format("15:04:05"))
		}
		fmt.Println(line)
	}
	return nil
}
