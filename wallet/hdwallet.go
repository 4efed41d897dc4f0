package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
)

// parsePath parses an absolute BIP-32 path such as m/84'/0'/0'/0/0.
func parsePath(path string) (accounts.DerivationPath, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("derivation path %q must start with m/", path)
	}
	parsed, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}
	return parsed, nil
}

// deriveSecp256k1 walks path from the BIP-32 master key of seed.
func deriveSecp256k1(seed []byte, path accounts.DerivationPath) (*btcec.PrivateKey, error) {
	// The network only affects extended key serialization, which is never exported.
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", index, err)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	return priv, nil
}

// deriveEd25519 derives an ed25519 key following SLIP-10.
func deriveEd25519(seed []byte, path accounts.DerivationPath) (ed25519.PrivateKey, error) {
	key, _, err := slip10(seed, path)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(key), nil
}

// slip10 returns the private key and chain code at path. ed25519 only
// defines hardened children.
func slip10(seed []byte, path accounts.DerivationPath) ([]byte, []byte, error) {
	sum := hmacSHA512([]byte("ed25519 seed"), seed)
	key, chainCode := sum[:32], sum[32:]

	for _, index := range path {
		if index < hdkeychain.HardenedKeyStart {
			return nil, nil, fmt.Errorf("ed25519 derivation supports hardened indexes only, got %d", index)
		}
		data := make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)

		sum = hmacSHA512(chainCode, data)
		key, chainCode = sum[:32], sum[32:]
	}
	return key, chainCode, nil
}

func hmacSHA512(key, data []byte) []byte {
	h := hmac.New(sha512.New, key)
	h.Write(data)
	return h.Sum(nil)
}
