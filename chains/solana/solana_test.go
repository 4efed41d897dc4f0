package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/chinmay1088/chaingate/chain"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockhash = "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"

func sol(s string) chain.Amount { return decimal.RequireFromString(s) }

type staticKey struct{ key solana.PrivateKey }

func (s staticKey) SolanaKey(chain.KeyHandle) (solana.PrivateKey, error) { return s.key, nil }

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func TestBuildUnsigned(t *testing.T) {
	from, to := newKey(t).PublicKey(), newKey(t).PublicKey()
	draft := chain.BlockhashDraft{From: from.String(), To: to.String(), Amount: sol("0.5"), RecentBlockhash: blockhash}

	a, err := BuildUnsigned(draft)
	require.NoError(t, err)
	b, err := BuildUnsigned(draft)
	require.NoError(t, err)

	msgA, err := a.Message.MarshalBinary()
	require.NoError(t, err)
	msgB, err := b.Message.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, msgA, msgB)
	assert.True(t, a.Message.AccountKeys[0].Equals(from))
	assert.Equal(t, blockhash, a.Message.RecentBlockhash.String())
}

func TestBuildUnsignedValidation(t *testing.T) {
	from, to := newKey(t).PublicKey().String(), newKey(t).PublicKey().String()

	tests := []struct {
		name  string
		draft chain.BlockhashDraft
	}{
		{"bad sender", chain.BlockhashDraft{From: "0OIl", To: to, Amount: sol("1"), RecentBlockhash: blockhash}},
		{"bad blockhash", chain.BlockhashDraft{From: from, To: to, Amount: sol("1"), RecentBlockhash: "abc"}},
		{"empty blockhash", chain.BlockhashDraft{From: from, To: to, Amount: sol("1")}},
		{"sub-lamport amount", chain.BlockhashDraft{From: from, To: to, Amount: sol("0.0000000001"), RecentBlockhash: blockhash}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildUnsigned(tt.draft)
			assert.Error(t, err)
		})
	}
}

func TestLamportConversion(t *testing.T) {
	lamports, err := SOLToLamports(sol("1.5"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)
	assert.True(t, LamportsToSOL(5000).Equal(sol("0.000005")))
}

func signedTransfer(t *testing.T, key solana.PrivateKey, to solana.PublicKey, amount string) []byte {
	t.Helper()
	payload, err := NewSigner(staticKey{key}).Sign(context.Background(), chain.BlockhashDraft{
		From:            key.PublicKey().String(),
		To:              to.String(),
		Amount:          sol(amount),
		RecentBlockhash: blockhash,
	}, "")
	require.NoError(t, err)
	return payload
}

func TestSigner(t *testing.T) {
	key := newKey(t)
	payload := signedTransfer(t, key, newKey(t).PublicKey(), "0.25")

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(payload))
	require.NoError(t, err)
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())

	other := newKey(t)
	_, err = NewSigner(staticKey{other}).Sign(context.Background(), chain.BlockhashDraft{
		From:            key.PublicKey().String(),
		To:              other.PublicKey().String(),
		Amount:          sol("0.25"),
		RecentBlockhash: blockhash,
	}, "")
	assert.ErrorContains(t, err, "does not belong")

	_, err = NewSigner(staticKey{key}).Sign(context.Background(), chain.UTXODraft{}, "")
	assert.Error(t, err)
}

type fakeNode struct {
	balance uint64
	hash    solana.Hash
	sendErr error
	sigs    []*rpc.TransactionSignature
	txs     map[solana.Signature]*rpc.GetTransactionResult
	befores []solana.Signature
}

func (f *fakeNode) GetVersion(context.Context) (*rpc.GetVersionResult, error) {
	return &rpc.GetVersionResult{SolanaCore: "1.18.0"}, nil
}

func (f *fakeNode) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return &rpc.GetBalanceResult{Value: f.balance}, nil
}

func (f *fakeNode) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{Blockhash: f.hash}}, nil
}

func (f *fakeNode) SendRawTransactionWithOpts(_ context.Context, data []byte, _ rpc.TransactionOpts) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return solana.Signature{}, err
	}
	return tx.Signatures[0], nil
}

func (f *fakeNode) GetSignaturesForAddressWithOpts(_ context.Context, _ solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	f.befores = append(f.befores, opts.Before)
	start := 0
	if !opts.Before.IsZero() {
		for i, s := range f.sigs {
			if s.Signature == opts.Before {
				start = i + 1
			}
		}
	}
	end := min(start+*opts.Limit, len(f.sigs))
	return f.sigs[start:end], nil
}

func (f *fakeNode) GetTransaction(_ context.Context, sig solana.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	return f.txs[sig], nil
}

func (f *fakeNode) Close() error { return nil }

func transactionResult(t *testing.T, payload []byte, pre, post []uint64) *rpc.GetTransactionResult {
	t.Helper()
	preJSON, _ := json.Marshal(pre)
	postJSON, _ := json.Marshal(post)
	raw := fmt.Sprintf(`{"slot":10,"blockTime":1700000000,"transaction":["%s","base64"],"meta":{"err":null,"fee":5000,"preBalances":%s,"postBalances":%s}}`,
		base64.StdEncoding.EncodeToString(payload), preJSON, postJSON)

	var result rpc.GetTransactionResult
	require.NoError(t, json.Unmarshal([]byte(raw), &result))
	return &result
}

func TestBackendReads(t *testing.T) {
	hash := solana.MustHashFromBase58(blockhash)
	b := newBackend(&fakeNode{balance: 1_500_000_000, hash: hash}, nil)

	balance, err := b.GetBalance(context.Background(), newKey(t).PublicKey().String())
	require.NoError(t, err)
	assert.True(t, balance.Equal(sol("1.5")))

	recent, err := b.RecentBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, blockhash, recent)

	_, err = b.GetBalance(context.Background(), "not base58 0OIl")
	assert.Error(t, err)
}

func TestBackendBroadcast(t *testing.T) {
	key := newKey(t)
	payload := signedTransfer(t, key, newKey(t).PublicKey(), "0.1")

	node := &fakeNode{}
	b := newBackend(node, nil)
	sig, err := b.Broadcast(context.Background(), payload)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	node.sendErr = &jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit."}
	_, err = b.Broadcast(context.Background(), payload)
	require.ErrorIs(t, err, chain.ErrBroadcastRejected)

	node.sendErr = errors.New("connection refused")
	_, err = b.Broadcast(context.Background(), payload)
	assert.ErrorIs(t, err, chain.ErrNetwork)
}

func TestBackendHistory(t *testing.T) {
	sender, receiver := newKey(t), newKey(t).PublicKey()

	node := &fakeNode{txs: map[solana.Signature]*rpc.GetTransactionResult{}}
	for i, amount := range []string{"0.5", "0.25", "0.125"} {
		payload := signedTransfer(t, sender, receiver, amount)
		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(payload))
		require.NoError(t, err)

		lamports, err := SOLToLamports(sol(amount))
		require.NoError(t, err)
		pre := []uint64{10_000_000_000, 0, 1}
		post := []uint64{10_000_000_000 - lamports - 5000, lamports, 1}
		node.txs[tx.Signatures[0]] = transactionResult(t, payload, pre, post)

		status := rpc.ConfirmationStatusFinalized
		if i == 2 {
			status = rpc.ConfirmationStatusProcessed
		}
		node.sigs = append(node.sigs, &rpc.TransactionSignature{
			Signature:          tx.Signatures[0],
			ConfirmationStatus: status,
		})
	}

	b := newBackend(node, nil)
	b.pageSize = 2

	history, err := b.FetchHistory(context.Background(), sender.PublicKey().String(), 10)
	require.NoError(t, err)
	txs, err := chain.Collect(history)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Len(t, node.befores, 2)
	assert.Equal(t, node.sigs[1].Signature, node.befores[1])

	assert.Equal(t, sender.PublicKey().String(), txs[0].From)
	assert.Equal(t, receiver.String(), txs[0].To)
	assert.True(t, txs[0].Amount.Equal(sol("0.5")), txs[0].Amount.String())
	assert.Equal(t, chain.StatusConfirmed, txs[0].Status)
	assert.Equal(t, chain.StatusPending, txs[2].Status)

	incoming, err := b.FetchHistory(context.Background(), receiver.String(), 1)
	require.NoError(t, err)
	in, err := chain.Collect(incoming)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, receiver.String(), in[0].To)
	assert.Equal(t, sender.PublicKey().String(), in[0].From)
	assert.True(t, in[0].Amount.Equal(sol("0.5")))
}
