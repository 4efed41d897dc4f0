// Package solana implements the blockhash backend and signer for Solana.
package solana

import (
	"fmt"
	"math/big"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/mr-tron/base58"
)

const (
	// Symbol is the native currency of the chain.
	Symbol = "SOL"
	// Decimals is the number of lamport digits in one SOL.
	Decimals = 9
	// SignatureFeeLamports is the base fee for a transfer with one signature.
	SignatureFeeLamports = 5000
)

// BuildUnsigned encodes draft as a system transfer paid for by the sender.
func BuildUnsigned(draft chain.BlockhashDraft) (*solana.Transaction, error) {
	from, err := ParseAddress(draft.From)
	if err != nil {
		return nil, err
	}
	to, err := ParseAddress(draft.To)
	if err != nil {
		return nil, err
	}
	lamports, err := SOLToLamports(draft.Amount)
	if err != nil {
		return nil, err
	}
	blockhash, err := ParseBlockhash(draft.RecentBlockhash)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// ParseBlockhash decodes a base58 blockhash, which must be exactly 32 bytes.
func ParseBlockhash(s string) (solana.Hash, error) {
	if s == "" {
		return solana.Hash{}, fmt.Errorf("blockhash is empty")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.Hash{}, fmt.Errorf("blockhash decodes to %d bytes, expected %d", len(raw), solana.PublicKeyLength)
	}
	return solana.HashFromBytes(raw), nil
}

// ParseAddress decodes a base58 account address.
func ParseAddress(address string) (solana.PublicKey, error) {
	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid Solana address (%s): %w", address, err)
	}
	return pubKey, nil
}

// ValidateAddress checks that address is a base58 public key.
func ValidateAddress(address string) error {
	_, err := ParseAddress(address)
	return err
}

// SOLToLamports converts SOL to lamports. Precision beyond one lamport is an error.
func SOLToLamports(sol chain.Amount) (uint64, error) {
	lamports, err := chain.ToBaseUnits(sol, Decimals)
	if err != nil {
		return 0, err
	}
	if lamports.Sign() < 0 || !lamports.IsUint64() {
		return 0, fmt.Errorf("amount %s out of range", sol.String())
	}
	return lamports.Uint64(), nil
}

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) chain.Amount {
	return chain.FromBaseUnits(new(big.Int).SetUint64(lamports), Decimals)
}

// lamportDelta returns the size of a balance change and whether it was an increase.
func lamportDelta(pre, post uint64) (chain.Amount, bool) {
	if post >= pre {
		return LamportsToSOL(post - pre), true
	}
	return LamportsToSOL(pre - post), false
}
