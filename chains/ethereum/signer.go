package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/ethereum/go-ethereum/core/types"
)

// KeyResolver turns a key handle into a private key. Implementations must
// not retain or log the returned key.
type KeyResolver interface {
	EthereumKey(handle chain.KeyHandle) (*ecdsa.PrivateKey, error)
}

// Signer signs account drafts with the latest signer for the draft's chain id.
type Signer struct {
	keys KeyResolver
}

// NewSigner creates a signer.
func NewSigner(keys KeyResolver) *Signer {
	return &Signer{keys: keys}
}

// Sign returns the binary encoding of the signed transaction.
func (s *Signer) Sign(_ context.Context, draft chain.Draft, key chain.KeyHandle) (chain.SignedPayload, error) {
	d, ok := draft.(chain.AccountDraft)
	if !ok {
		return nil, chain.UnexpectedDraft(chain.FamilyAccount, draft)
	}
	if d.ChainID == nil || d.ChainID.Sign() <= 0 {
		return nil, fmt.Errorf("chain id is required")
	}

	tx, err := BuildUnsigned(d)
	if err != nil {
		return nil, err
	}

	privateKey, err := s.keys.EthereumKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing key: %w", err)
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(d.ChainID), privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return chain.SignedPayload(raw), nil
}
