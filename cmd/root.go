package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chinmay1088/chaingate/config"
	"github.com/chinmay1088/chaingate/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	version = "0.1.0"

	configPath  string
	networkFlag string
	verboseFlag bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chaingate",
	Short: "One interface for Bitcoin, Ethereum and Solana",
	Long: `chaingate is a multi-chain gateway. It looks up balances, prices and
transaction history, and builds, signs and broadcasts payments for Bitcoin,
Ethereum (including ERC-20 balances) and Solana through a single interface.

Keys are derived locally from a BIP-39 recovery phrase kept in an encrypted
vault. They never leave the machine.

Examples:
  chaingate init                         # Create a new wallet
  chaingate address                      # Show receive addresses
  chaingate balance --usd                # All balances with USD values
  chaingate balance eth --token 0xA0b8... # ERC-20 balance
  chaingate price btc eth                # Spot prices
  chaingate pay btc 0.001 bc1q...        # Send 0.001 BTC
  chaingate history sol --limit 5        # Recent Solana transactions
  chaingate serve                        # Run the HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var opts []config.Option
		if networkFlag != "" {
			opts = append(opts, config.WithNetwork(networkFlag))
		}
		loaded, err := config.Load(configPath, opts...)
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logger.Init(cfg.App.Env); err != nil {
			return err
		}
		if !verboseFlag {
			logger.SetLevel(zapcore.WarnLevel)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The command context is cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.chaingate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "override the configured network (mainnet or testnet)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chaingate v%s\n", version)
	},
}
