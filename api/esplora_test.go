package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEsplora(t *testing.T, handler http.HandlerFunc) *Esplora {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEsplora(NewClient(5*time.Second), srv.URL+"/")
}

func TestEsploraBalance(t *testing.T) {
	e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address/bc1qtest", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"address": "bc1qtest",
			"chain_stats": {"funded_txo_sum": 150000, "spent_txo_sum": 50000, "tx_count": 3},
			"mempool_stats": {"funded_txo_sum": 2000, "spent_txo_sum": 0, "tx_count": 1}
		}`)
	})

	sats, err := e.Balance(context.Background(), "bc1qtest")
	require.NoError(t, err)
	assert.Equal(t, int64(102000), sats)
}

func TestEsploraUTXOs(t *testing.T) {
	e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address/bc1qtest/utxo", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"txid": "aa", "vout": 1, "value": 50000000, "status": {"confirmed": true, "block_height": 800000}},
			{"txid": "bb", "vout": 0, "value": 1200, "status": {"confirmed": false}}
		]`)
	})

	utxos, err := e.UTXOs(context.Background(), "bc1qtest")
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	assert.Equal(t, "aa", utxos[0].TxID)
	assert.Equal(t, uint32(1), utxos[0].Vout)
	assert.Equal(t, int64(50000000), utxos[0].Value)
	assert.True(t, utxos[0].Status.Confirmed)
	assert.False(t, utxos[1].Status.Confirmed)
}

func TestEsploraTransactionsPaging(t *testing.T) {
	e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/address/bc1qtest/txs":
			_, _ = io.WriteString(w, `[{"txid": "t2", "status": {"confirmed": true, "block_time": 1700000000}}]`)
		case "/address/bc1qtest/txs/chain/t2":
			_, _ = io.WriteString(w, `[{"txid": "t1", "status": {"confirmed": true, "block_time": 1690000000}}]`)
		default:
			http.NotFound(w, r)
		}
	})

	first, err := e.AddressTransactions(context.Background(), "bc1qtest", "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "t2", first[0].TxID)

	next, err := e.AddressTransactions(context.Background(), "bc1qtest", "t2")
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "t1", next[0].TxID)
}

func TestEsploraFeeEstimates(t *testing.T) {
	e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"1": 25.312, "6": 12.0, "144": 1.004}`)
	})

	rates, err := e.FeeEstimates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25.312", rates["1"].String())
	assert.Equal(t, "1.004", rates["144"].String())
}

func TestEsploraBroadcast(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "0200abcd", string(body))
			_, _ = io.WriteString(w, "f00d\n")
		})

		txid, err := e.Broadcast(context.Background(), "0200abcd")
		require.NoError(t, err)
		assert.Equal(t, "f00d", txid)
	})

	t.Run("rejected", func(t *testing.T) {
		e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, "sendrawtransaction RPC error: bad-txns-inputs-missingorspent")
		})

		_, err := e.Broadcast(context.Background(), "0200abcd")
		require.ErrorIs(t, err, chain.ErrBroadcastRejected)
		var rejected *chain.BroadcastRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Contains(t, rejected.Reason, "missingorspent")
	})

	t.Run("server error is a network error", func(t *testing.T) {
		e := newTestEsplora(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := e.Broadcast(context.Background(), "0200abcd")
		assert.ErrorIs(t, err, chain.ErrNetwork)
		assert.NotErrorIs(t, err, chain.ErrBroadcastRejected)
	})
}

func TestEsploraTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	e := NewEsplora(NewClient(time.Second), srv.URL)
	_, err := e.Balance(context.Background(), "bc1qtest")
	assert.ErrorIs(t, err, chain.ErrNetwork)
}
