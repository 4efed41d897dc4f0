package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const maxHistoryLimit = 100

var historyCmd = &cobra.Command{
	Use:     "history [currency]",
	Aliases: []string{"transactions"},
	Short:   "Show transaction history",
	Long: `Show the most recent transactions of an address, newest first.

Supported currencies: btc, eth, sol

Examples:
  chaingate history eth               # Last 10 Ethereum transactions of the wallet
  chaingate history sol --limit 5
  chaingate history btc --address bc1q...`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	currency := chain.NormalizeSymbol(args[0])
	limit, _ := cmd.Flags().GetInt("limit")
	address, _ := cmd.Flags().GetString("address")

	if limit < 1 || limit > maxHistoryLimit {
		return fmt.Errorf("limit must be between 1 and %d", maxHistoryLimit)
	}
	if address == "" {
		var err error
		address, err = ownAddress(currency)
		if err != nil {
			return err
		}
	}

	a, err := newApp(cmd.Context(), cfg, nil, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := a.gateway.GetTransactionHistory(cmd.Context(), address, currency, limit)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(limit,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("[cyan]Loading transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)

	var txs []chain.Transaction
	for tx, err := range history {
		if err != nil {
			_ = bar.Clear()
			return fmt.Errorf("failed to load history: %w", err)
		}
		txs = append(txs, tx)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("📜 %s transactions of %s\n", currency, address)
	fmt.Println()
	if len(txs) == 0 {
		fmt.Println("   No transactions found")
		return nil
	}

	for i, tx := range txs {
		direction := color.GreenString("IN ")
		if strings.EqualFold(tx.From, address) {
			direction = color.RedString("OUT")
		}
		when := "pending"
		if !tx.Timestamp.IsZero() {
			when = tx.Timestamp.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%2d. %s %s %s  %s  [%s]\n", i+1, direction, tx.Amount.String(), tx.Currency, when, statusLabel(tx.Status))
		fmt.Printf("    📝 %s\n", tx.Hash)
	}
	return nil
}

func statusLabel(s chain.Status) string {
	switch s {
	case chain.StatusConfirmed:
		return color.GreenString(string(s))
	case chain.StatusFailed:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 10, "Number of transactions to show")
	historyCmd.Flags().String("address", "", "Query this address instead of the wallet")
}
