// Package crypto seals wallet secrets at rest with a password.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	ScryptN = 32768 // 2^15
	ScryptR = 8
	ScryptP = 1
	KeyLen  = 32 // AES-256

	saltLen = 32

	// VaultVersion is written into every new vault.
	VaultVersion = 2
)

// ErrWrongPassword is returned when a vault cannot be opened with the given password.
var ErrWrongPassword = errors.New("wrong password or corrupted vault")

// Vault is the on-disk form of an encrypted secret.
type Vault struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

type sealed struct {
	Secret string `json:"secret"`
}

// Seal encrypts secret under a key derived from password.
func Seal(secret, password string) (*Vault, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(sealed{Secret: secret})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault data: %w", err)
	}
	defer clearBytes(plaintext)

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &Vault{
		Version: VaultVersion,
		Salt:    salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, plaintext, additionalData(VaultVersion)),
	}, nil
}

// Open decrypts the vault. A wrong password yields ErrWrongPassword.
func (v *Vault) Open(password string) (string, error) {
	key, err := deriveKey(password, v.Salt)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	if len(v.Nonce) != aead.NonceSize() {
		return "", ErrWrongPassword
	}

	plaintext, err := aead.Open(nil, v.Nonce, v.Data, additionalData(v.Version))
	if err != nil {
		return "", ErrWrongPassword
	}
	defer clearBytes(plaintext)

	var s sealed
	if err := json.Unmarshal(plaintext, &s); err != nil {
		return "", fmt.Errorf("failed to deserialize vault data: %w", err)
	}
	return s.Secret, nil
}

// Marshal encodes the vault for storage.
func (v *Vault) Marshal() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal decodes a stored vault.
func Unmarshal(data []byte) (*Vault, error) {
	var v Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vault: %w", err)
	}
	if len(v.Salt) == 0 || len(v.Data) == 0 {
		return nil, errors.New("vault is missing salt or data")
	}
	return &v, nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// The version is authenticated so it cannot be swapped without detection.
func additionalData(version int) []byte {
	return []byte(fmt.Sprintf("chaingate-vault-v%d", version))
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
