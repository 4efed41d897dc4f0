// Package wallet keeps the encrypted mnemonic on disk and derives signing
// keys from it.
package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chinmay1088/chaingate/crypto"
	"github.com/tyler-smith/go-bip39"
)

const vaultFile = "wallet.vault"

var (
	// ErrVaultExists is returned when creating a wallet over an existing vault.
	ErrVaultExists = errors.New("wallet already exists")
	// ErrNoVault is returned when no wallet has been created yet.
	ErrNoVault = errors.New("wallet not initialized")
)

// Manager owns the vault file in a wallet directory.
type Manager struct {
	mu        sync.Mutex
	vaultPath string
	network   string
}

// NewManager creates a manager for the vault in dir. An empty dir selects
// DefaultDir.
func NewManager(dir, network string) (*Manager, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Manager{
		vaultPath: filepath.Join(dir, vaultFile),
		network:   network,
	}, nil
}

// DefaultDir is ~/.chaingate.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chaingate"), nil
}

// VaultPath is the location of the encrypted vault.
func (m *Manager) VaultPath() string { return m.vaultPath }

// VaultExists reports whether a wallet has been created.
func (m *Manager) VaultExists() bool {
	_, err := os.Stat(m.vaultPath)
	return err == nil
}

// Create generates a 24 word mnemonic, seals it with password and returns it
// so the caller can show it to the user once.
func (m *Manager) Create(password string) (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	if err := m.store(mnemonic, password); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// Import seals an existing mnemonic with password.
func (m *Manager) Import(mnemonic, password string) error {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return errors.New("invalid mnemonic phrase")
	}
	return m.store(mnemonic, password)
}

// Unlock opens the vault and returns a key ring for the manager's network.
// The caller should Wipe the key ring when done.
func (m *Manager) Unlock(password string) (*KeyRing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.vaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoVault
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	vault, err := crypto.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	mnemonic, err := vault.Open(password)
	if err != nil {
		return nil, err
	}
	return NewKeyRing(mnemonic, m.network)
}

func (m *Manager) store(mnemonic, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.vaultPath); err == nil {
		return ErrVaultExists
	}

	vault, err := crypto.Seal(mnemonic, password)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	data, err := vault.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize vault: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.vaultPath), 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	// O_EXCL so two concurrent creates cannot both succeed.
	f, err := os.OpenFile(m.vaultPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return ErrVaultExists
	}
	if err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write vault: %w", err)
	}
	return f.Close()
}
