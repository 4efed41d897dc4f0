package solana

import (
	"context"
	"fmt"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/gagliardetto/solana-go"
)

// KeyResolver turns a key handle into a private key. Implementations must
// not retain or log the returned key.
type KeyResolver interface {
	SolanaKey(handle chain.KeyHandle) (solana.PrivateKey, error)
}

// Signer signs blockhash drafts.
type Signer struct {
	keys KeyResolver
}

// NewSigner creates a signer.
func NewSigner(keys KeyResolver) *Signer {
	return &Signer{keys: keys}
}

// Sign returns the wire encoding of the signed transfer. The resolved key
// must belong to the draft's sender, who also pays the fee.
func (s *Signer) Sign(_ context.Context, draft chain.Draft, key chain.KeyHandle) (chain.SignedPayload, error) {
	d, ok := draft.(chain.BlockhashDraft)
	if !ok {
		return nil, chain.UnexpectedDraft(chain.FamilyBlockhash, draft)
	}

	tx, err := BuildUnsigned(d)
	if err != nil {
		return nil, err
	}

	privateKey, err := s.keys.SolanaKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing key: %w", err)
	}
	if !privateKey.PublicKey().Equals(tx.Message.AccountKeys[0]) {
		return nil, fmt.Errorf("signing key does not belong to %s", d.From)
	}

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(privateKey.PublicKey()) {
			return &privateKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return chain.SignedPayload(raw), nil
}
