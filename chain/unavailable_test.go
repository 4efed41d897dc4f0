package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailableBackendFailsFast(t *testing.T) {
	u := NewUnavailable("btc", FamilyUTXO, errors.New("dial tcp: connection refused"))
	ctx := context.Background()

	assert.Equal(t, "BTC", u.Symbol())
	assert.Equal(t, FamilyUTXO, u.Family())

	var b UTXOBackend = u
	_, err := b.GetBalance(ctx, "addr")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	_, err = b.ListUnspent(ctx, "addr")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	_, err = b.FeeRate(ctx)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	_, err = b.Broadcast(ctx, SignedPayload{0x01})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	_, err = b.FetchHistory(ctx, "addr", 10)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
