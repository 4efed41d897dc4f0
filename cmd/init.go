package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new wallet",
	Long: `Initialize a new chaingate wallet with a secure recovery phrase.

This command will:
  - Generate a new 24-word recovery phrase, or import one with --recover
  - Create an encrypted vault
  - Set up keys for Bitcoin, Ethereum and Solana`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	if manager.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove %s to create a new wallet", manager.VaultPath())
	}

	recoverFlag, _ := cmd.Flags().GetBool("recover")

	fmt.Println("🚀 Initializing chaingate wallet")
	fmt.Println()

	var mnemonic string
	if recoverFlag {
		mnemonic, err = readLine("Enter your recovery phrase: ")
		if err != nil {
			return err
		}
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}

	if recoverFlag {
		if err := manager.Import(mnemonic, password); err != nil {
			return fmt.Errorf("failed to import wallet: %w", err)
		}
		fmt.Println("✅ Wallet recovered successfully!")
	} else {
		fmt.Println("Generating wallet...")
		mnemonic, err = manager.Create(password)
		if err != nil {
			return fmt.Errorf("failed to initialize wallet: %w", err)
		}

		fmt.Println("✅ Wallet initialized successfully!")
		fmt.Println()
		fmt.Println("🔐 Recovery Phrase (24 words):")
		fmt.Println()
		fmt.Printf("   %s\n", mnemonic)
		fmt.Println()
		fmt.Println("⚠️  IMPORTANT:")
		fmt.Println("   - Write down this recovery phrase and store it securely")
		fmt.Println("   - Anyone with this phrase can access your funds")
		fmt.Println("   - This is the only way to recover your wallet")
	}

	fmt.Println()
	fmt.Println("🔑 Next steps:")
	fmt.Println("   - Run 'chaingate address' to see your addresses")
	fmt.Println("   - Run 'chaingate balance' to check your balances")
	return nil
}

func init() {
	initCmd.Flags().Bool("recover", false, "Import an existing recovery phrase")
}
