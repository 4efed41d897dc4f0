package api

import "encoding/json"

// EsploraUTXO is one entry of GET /address/{addr}/utxo.
type EsploraUTXO struct {
	TxID   string        `json:"txid"`
	Vout   uint32        `json:"vout"`
	Value  int64         `json:"value"`
	Status EsploraStatus `json:"status"`
}

// EsploraStatus is the confirmation state of a transaction or output.
type EsploraStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
	BlockHash   string `json:"block_hash"`
}

// EsploraStats are the funded/spent totals of an address, in satoshis.
type EsploraStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
	TxCount      int64 `json:"tx_count"`
}

// EsploraAddress is GET /address/{addr}.
type EsploraAddress struct {
	Address      string       `json:"address"`
	ChainStats   EsploraStats `json:"chain_stats"`
	MempoolStats EsploraStats `json:"mempool_stats"`
}

// EsploraPrevOut is the output an input spends.
type EsploraPrevOut struct {
	ScriptPubKey        string `json:"scriptpubkey"`
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

// EsploraVin is a transaction input.
type EsploraVin struct {
	TxID    string          `json:"txid"`
	Vout    uint32          `json:"vout"`
	PrevOut *EsploraPrevOut `json:"prevout"`
}

// EsploraVout is a transaction output.
type EsploraVout struct {
	ScriptPubKey        string `json:"scriptpubkey"`
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

// EsploraTx is GET /tx/{txid} and the entries of /address/{addr}/txs.
type EsploraTx struct {
	TxID   string        `json:"txid"`
	Fee    int64         `json:"fee"`
	Vin    []EsploraVin  `json:"vin"`
	Vout   []EsploraVout `json:"vout"`
	Status EsploraStatus `json:"status"`
}

// RecommendedFees is mempool.space GET /v1/fees/recommended, in sat/vB.
type RecommendedFees struct {
	FastestFee  json.Number `json:"fastestFee"`
	HalfHourFee json.Number `json:"halfHourFee"`
	HourFee     json.Number `json:"hourFee"`
	EconomyFee  json.Number `json:"economyFee"`
	MinimumFee  json.Number `json:"minimumFee"`
}

// ExplorerTx is one entry of an etherscan txlist result. Numbers are
// decimal strings.
type ExplorerTx struct {
	Hash             string `json:"hash"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	TimeStamp        string `json:"timeStamp"`
	GasUsed          string `json:"gasUsed"`
	GasPrice         string `json:"gasPrice"`
	IsError          string `json:"isError"`
	TxReceiptStatus  string `json:"txreceipt_status"`
	Confirmations    string `json:"confirmations"`
	BlockNumber      string `json:"blockNumber"`
	ContractAddress  string `json:"contractAddress"`
	FunctionName     string `json:"functionName"`
	TransactionIndex string `json:"transactionIndex"`
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}
