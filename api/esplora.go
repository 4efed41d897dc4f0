package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/shopspring/decimal"
)

// Esplora talks to an esplora REST API such as mempool.space or
// blockstream.info.
type Esplora struct {
	client  *Client
	baseURL string
}

// NewEsplora creates a client for the esplora instance at baseURL.
func NewEsplora(client *Client, baseURL string) *Esplora {
	return &Esplora{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the instance this client talks to.
func (e *Esplora) BaseURL() string {
	return e.baseURL
}

// Address fetches the confirmed and mempool totals of address.
func (e *Esplora) Address(ctx context.Context, address string) (EsploraAddress, error) {
	var result EsploraAddress
	u := fmt.Sprintf("%s/address/%s", e.baseURL, url.PathEscape(address))
	if err := e.client.getJSON(ctx, "fetch address", u, &result); err != nil {
		return EsploraAddress{}, err
	}
	return result, nil
}

// Balance returns the balance of address in satoshis, including unconfirmed
// mempool activity.
func (e *Esplora) Balance(ctx context.Context, address string) (int64, error) {
	info, err := e.Address(ctx, address)
	if err != nil {
		return 0, err
	}
	confirmed := info.ChainStats.FundedTxoSum - info.ChainStats.SpentTxoSum
	pending := info.MempoolStats.FundedTxoSum - info.MempoolStats.SpentTxoSum
	return confirmed + pending, nil
}

// UTXOs lists the unspent outputs of address.
func (e *Esplora) UTXOs(ctx context.Context, address string) ([]EsploraUTXO, error) {
	var result []EsploraUTXO
	u := fmt.Sprintf("%s/address/%s/utxo", e.baseURL, url.PathEscape(address))
	if err := e.client.getJSON(ctx, "fetch utxos", u, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Transaction fetches a single transaction with its prevouts resolved.
func (e *Esplora) Transaction(ctx context.Context, txid string) (EsploraTx, error) {
	var result EsploraTx
	u := fmt.Sprintf("%s/tx/%s", e.baseURL, url.PathEscape(txid))
	if err := e.client.getJSON(ctx, "fetch transaction", u, &result); err != nil {
		return EsploraTx{}, err
	}
	return result, nil
}

// AddressTransactions returns one page of the history of address, newest
// first. The first page (empty lastSeen) includes mempool transactions;
// later pages continue the confirmed chain after lastSeen.
func (e *Esplora) AddressTransactions(ctx context.Context, address, lastSeen string) ([]EsploraTx, error) {
	u := fmt.Sprintf("%s/address/%s/txs", e.baseURL, url.PathEscape(address))
	if lastSeen != "" {
		u = fmt.Sprintf("%s/address/%s/txs/chain/%s", e.baseURL, url.PathEscape(address), url.PathEscape(lastSeen))
	}

	var result []EsploraTx
	if err := e.client.getJSON(ctx, "fetch transactions", u, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FeeEstimates returns the fee rate in sat/vB keyed by confirmation target
// in blocks, from GET /fee-estimates.
func (e *Esplora) FeeEstimates(ctx context.Context) (map[string]chain.Amount, error) {
	var raw map[string]json.Number
	if err := e.client.getJSON(ctx, "fetch fee estimates", e.baseURL+"/fee-estimates", &raw); err != nil {
		return nil, err
	}

	rates := make(map[string]chain.Amount, len(raw))
	for target, n := range raw {
		rate, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse fee estimate for target %s: %w", target, err)
		}
		rates[target] = rate
	}
	return rates, nil
}

// RecommendedFees returns mempool.space's fee recommendations. Only
// mempool.space serves this endpoint; use FeeEstimates elsewhere.
func (e *Esplora) RecommendedFees(ctx context.Context) (RecommendedFees, error) {
	var result RecommendedFees
	if err := e.client.getJSON(ctx, "fetch recommended fees", e.baseURL+"/v1/fees/recommended", &result); err != nil {
		return RecommendedFees{}, err
	}
	return result, nil
}

// Broadcast submits a raw transaction in hex and returns its txid. A
// rejection by the node is reported as *chain.BroadcastRejectedError.
func (e *Esplora) Broadcast(ctx context.Context, rawHex string) (string, error) {
	body, err := e.client.postText(ctx, "broadcast transaction", e.baseURL+"/tx", rawHex)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "", &chain.BroadcastRejectedError{Reason: statusErr.Body}
		}
		return "", err
	}

	txid := strings.TrimSpace(string(body))
	if txid == "" {
		return "", errors.New("broadcast returned an empty txid")
	}
	return txid, nil
}

// TipHeight returns the height of the best block.
func (e *Esplora) TipHeight(ctx context.Context) (string, error) {
	return e.client.getText(ctx, "fetch tip height", e.baseURL+"/blocks/tip/height")
}
