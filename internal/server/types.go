package server

type InfoResponse struct {
	Network string `json:"network"`
	Height  uint32 `json:"height"`
	Hash    string `json:"hash"`
	Version uint8  `json:"format_version"`
}

type BlockHeightResponse struct {
	BlockHeight uint32 `json:"block_height"`
}

type TxLocationResponse struct {
	Txid        string `json:"txid"`
	BlockHeight uint32 `json:"block_height"`
	Index       uint16 `json:"index"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type UtxoResponse struct {
	Txid        string `json:"txid"`
	Vout        uint32 `json:"vout"`
	Value       int64  `json:"value"`
	Script      string `json:"script"`
	BlockHeight uint32 `json:"block_height"`
	Coinbase    bool   `json:"coinbase"`
}

type TxIDsResponse struct {
	Address string   `json:"address"`
	Txids   []string `json:"txids"`
}
