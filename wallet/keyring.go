package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/chains/bitcoin"
	"github.com/chinmay1088/chaingate/chains/ethereum"
	chainsolana "github.com/chinmay1088/chaingate/chains/solana"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	// Default derivation paths, used when a key handle is empty.
	BtcDerivationPath = "m/84'/0'/0'/0/0"
	EthDerivationPath = "m/44'/60'/0'/0/0"
	SolDerivationPath = "m/44'/501'/0'/0'"

	BtcTestnetDerivationPath = "m/84'/1'/0'/0/0"
	EthTestnetDerivationPath = "m/44'/1'/0'/0/0"
	SolTestnetDerivationPath = "m/44'/501'/0'/1'"
)

// ErrLocked is returned by a key ring after Wipe.
var ErrLocked = errors.New("wallet is locked")

// KeyRing derives signing keys from a BIP-39 seed. A key handle is a BIP-32
// path; the empty handle selects the chain's default path for the network.
// It implements the key resolvers of every chain signer.
type KeyRing struct {
	seed    []byte
	network string
}

// NewKeyRing validates mnemonic and derives its seed.
func NewKeyRing(mnemonic, network string) (*KeyRing, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	if network != NetworkTestnet {
		network = NetworkMainnet
	}
	return &KeyRing{seed: seed, network: network}, nil
}

// Network is the network the default paths are chosen for.
func (k *KeyRing) Network() string { return k.network }

func (k *KeyRing) isTestnet() bool { return k.network == NetworkTestnet }

// BitcoinKey derives the secp256k1 key at handle.
func (k *KeyRing) BitcoinKey(handle chain.KeyHandle) (*btcec.PrivateKey, error) {
	path := BtcDerivationPath
	if k.isTestnet() {
		path = BtcTestnetDerivationPath
	}
	return k.secp256k1(handle, path)
}

// EthereumKey derives the secp256k1 key at handle.
func (k *KeyRing) EthereumKey(handle chain.KeyHandle) (*ecdsa.PrivateKey, error) {
	path := EthDerivationPath
	if k.isTestnet() {
		path = EthTestnetDerivationPath
	}
	priv, err := k.secp256k1(handle, path)
	if err != nil {
		return nil, err
	}
	key, err := ethcrypto.ToECDSA(priv.Serialize())
	if err != nil {
		return nil, fmt.Errorf("failed to convert to ECDSA key: %w", err)
	}
	return key, nil
}

// SolanaKey derives the ed25519 key at handle.
func (k *KeyRing) SolanaKey(handle chain.KeyHandle) (solana.PrivateKey, error) {
	if k.seed == nil {
		return nil, ErrLocked
	}
	path := SolDerivationPath
	if k.isTestnet() {
		path = SolTestnetDerivationPath
	}
	parsed, err := parsePath(pathOrDefault(handle, path))
	if err != nil {
		return nil, err
	}
	key, err := deriveEd25519(k.seed, parsed)
	if err != nil {
		return nil, err
	}
	return solana.PrivateKey(key), nil
}

// Address returns the receive address for currency at handle.
func (k *KeyRing) Address(currency string, handle chain.KeyHandle) (string, error) {
	switch chain.NormalizeSymbol(currency) {
	case bitcoin.Symbol:
		key, err := k.BitcoinKey(handle)
		if err != nil {
			return "", err
		}
		addr, err := bitcoin.P2WPKHAddress(key.PubKey(), k.bitcoinParams())
		if err != nil {
			return "", fmt.Errorf("failed to derive bitcoin address: %w", err)
		}
		return addr.EncodeAddress(), nil
	case ethereum.Symbol:
		key, err := k.EthereumKey(handle)
		if err != nil {
			return "", err
		}
		return ethcrypto.PubkeyToAddress(key.PublicKey).Hex(), nil
	case chainsolana.Symbol:
		key, err := k.SolanaKey(handle)
		if err != nil {
			return "", err
		}
		return key.PublicKey().String(), nil
	default:
		return "", fmt.Errorf("%s: %w", currency, chain.ErrUnsupportedCurrency)
	}
}

// Wipe zeroes the seed. Every later derivation fails with ErrLocked.
func (k *KeyRing) Wipe() {
	for i := range k.seed {
		k.seed[i] = 0
	}
	k.seed = nil
}

func (k *KeyRing) bitcoinParams() *chaincfg.Params {
	return bitcoin.NetworkParams(k.network)
}

func (k *KeyRing) secp256k1(handle chain.KeyHandle, defaultPath string) (*btcec.PrivateKey, error) {
	if k.seed == nil {
		return nil, ErrLocked
	}
	parsed, err := parsePath(pathOrDefault(handle, defaultPath))
	if err != nil {
		return nil, err
	}
	return deriveSecp256k1(k.seed, parsed)
}

func pathOrDefault(handle chain.KeyHandle, path string) string {
	if handle == "" {
		return path
	}
	return string(handle)
}
