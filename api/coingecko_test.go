package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGeckoFetchUSDPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		_, _ = io.WriteString(w, `{"bitcoin":{"usd":65123.45678901}}`)
	}))
	defer srv.Close()

	g := NewCoinGecko(NewClient(5*time.Second), srv.URL, nil)
	price, err := g.FetchUSDPrice(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "65123.45678901", price.String())
}

func TestCoinGeckoUnknownSymbol(t *testing.T) {
	g := NewCoinGecko(NewClient(time.Second), "http://127.0.0.1:1", nil)
	_, err := g.FetchUSDPrice(context.Background(), "DOGE")
	assert.Error(t, err)
}

func TestCoinGeckoMissingPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	g := NewCoinGecko(NewClient(5*time.Second), srv.URL, map[string]string{"eth": "ethereum"})
	_, err := g.FetchUSDPrice(context.Background(), "ETH")
	assert.ErrorContains(t, err, "price not found")
}
