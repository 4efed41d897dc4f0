package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/chinmay1088/chaingate/wallet"
	"golang.org/x/term"
)

// PasswordEnv supplies the vault password to non-interactive runs.
const PasswordEnv = "CHAINGATE_WALLET_PASSWORD"

const minPasswordLength = 8

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// readNewPassword asks twice and enforces the minimum length.
func readNewPassword() (string, error) {
	password, err := readPassword("Enter a password for your wallet: ")
	if err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s (y/n): ", prompt)

	var response string
	fmt.Scanln(&response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func openManager() (*wallet.Manager, error) {
	return wallet.NewManager(cfg.Wallet.Dir, cfg.App.Network)
}

// unlockWallet opens the vault with the password from PasswordEnv, or asks
// for it. The caller must Wipe the key ring.
func unlockWallet() (*wallet.KeyRing, error) {
	manager, err := openManager()
	if err != nil {
		return nil, err
	}
	if !manager.VaultExists() {
		return nil, errors.New("no wallet found. Run 'chaingate init' first")
	}

	password, ok := os.LookupEnv(PasswordEnv)
	if !ok {
		password, err = readPassword("🔒 Enter wallet password: ")
		if err != nil {
			return nil, err
		}
	}
	return manager.Unlock(password)
}
