package chain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int32
		want     string
		wantErr  bool
	}{
		{name: "whole bitcoin", amount: "1", decimals: 8, want: "100000000"},
		{name: "one satoshi", amount: "0.00000001", decimals: 8, want: "1"},
		{name: "one ether", amount: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fractional sol", amount: "0.5", decimals: 9, want: "500000000"},
		{name: "too precise", amount: "0.000000001", decimals: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	got := FromBaseUnits(big.NewInt(9990000), 8)
	assert.True(t, got.Equal(decimal.RequireFromString("0.0999")), got.String())

	assert.True(t, FromBaseUnits(nil, 18).IsZero())
}

func TestErrorTaxonomy(t *testing.T) {
	var err error = NewNetworkError("get balance", assert.AnError)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, assert.AnError)

	err = &BroadcastRejectedError{Reason: "bad-txns-inputs-missingorspent"}
	assert.ErrorIs(t, err, ErrBroadcastRejected)
	assert.Contains(t, err.Error(), "missingorspent")

	err = Unavailable("BTC", assert.AnError)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}
