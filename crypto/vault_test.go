package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestSealOpen(t *testing.T) {
	v, err := Seal(testSecret, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, VaultVersion, v.Version)
	assert.Len(t, v.Salt, saltLen)
	assert.NotContains(t, string(v.Data), "abandon")

	got, err := v.Open("hunter22")
	require.NoError(t, err)
	assert.Equal(t, testSecret, got)

	_, err = v.Open("wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestVaultRoundTripThroughDisk(t *testing.T) {
	v, err := Seal(testSecret, "pw")
	require.NoError(t, err)

	data, err := v.Marshal()
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	got, err := loaded.Open("pw")
	require.NoError(t, err)
	assert.Equal(t, testSecret, got)
}

func TestOpenRejectsTampering(t *testing.T) {
	v, err := Seal(testSecret, "pw")
	require.NoError(t, err)

	tampered := *v
	tampered.Version = 1
	_, err = tampered.Open("pw")
	assert.ErrorIs(t, err, ErrWrongPassword)

	tampered = *v
	tampered.Data = append([]byte(nil), v.Data...)
	tampered.Data[0] ^= 0xff
	_, err = tampered.Open("pw")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestSealRequiresPassword(t *testing.T) {
	_, err := Seal(testSecret, "")
	assert.Error(t, err)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"version":2}`))
	assert.Error(t, err)
}
