package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chinmay1088/chaingate/chain"
)

const noTransactionsFound = "No transactions found"

// Explorer reads account history from an etherscan-compatible API.
type Explorer struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewExplorer creates an explorer client. apiKey may be empty for
// instances that allow anonymous access.
func NewExplorer(client *Client, baseURL, apiKey string) *Explorer {
	return &Explorer{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// TxList returns page (1-based) of the normal transactions of address,
// newest first, with at most offset entries per page.
func (x *Explorer) TxList(ctx context.Context, address string, page, offset int) ([]ExplorerTx, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("page", strconv.Itoa(page))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("sort", "desc")
	if x.apiKey != "" {
		q.Set("apikey", x.apiKey)
	}

	var resp explorerResponse
	if err := x.client.getJSON(ctx, "fetch account history", x.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	if resp.Status != "1" {
		if resp.Message == noTransactionsFound {
			return nil, nil
		}
		var reason string
		if err := json.Unmarshal(resp.Result, &reason); err != nil || reason == "" {
			reason = resp.Message
		}
		return nil, chain.NewNetworkError("fetch account history", errors.New(reason))
	}

	var txs []ExplorerTx
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("failed to parse account history: %w", err)
	}
	return txs, nil
}
