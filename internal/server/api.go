package server

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/finalized"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

type ApiHandler struct {
	State *finalized.State
}

func dbError(c *gin.Context, err error, msg string) {
	logging.L.Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "could not retrieve data from database",
	})
}

func (h *ApiHandler) GetInfo(c *gin.Context) {
	resp := InfoResponse{
		Network: h.State.Network().String(),
		Version: diskformat.FormatVersion,
	}
	tip, err := h.State.Tip()
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		dbError(c, err, "error fetching tip")
		return
	default:
		resp.Height = uint32(tip.Height)
		resp.Hash = tip.Hash.String()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApiHandler) GetBestBlockHeight(c *gin.Context) {
	tip, err := h.State.Tip()
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no blocks finalized yet"})
		return
	}
	if err != nil {
		dbError(c, err, "error fetching tip")
		return
	}
	c.JSON(http.StatusOK, BlockHeightResponse{BlockHeight: uint32(tip.Height)})
}

func (h *ApiHandler) GetTransactionLocation(c *gin.Context) {
	hash, err := chainhash.NewHashFromStr(c.Param("txid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse txid"})
		return
	}
	loc, err := h.State.TransactionLocation(*hash)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if err != nil {
		dbError(c, err, "error fetching transaction location")
		return
	}
	c.JSON(http.StatusOK, TxLocationResponse{
		Txid:        hash.String(),
		BlockHeight: uint32(loc.Height),
		Index:       uint16(loc.Index),
	})
}

func (h *ApiHandler) GetAddressBalance(c *gin.Context) {
	addr := c.MustGet(addressKey).(zcash.Address)
	balance, err := h.State.AddressBalance(addr)
	if err != nil {
		dbError(c, err, "error fetching address balance")
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Address: addr.String(), Balance: balance.Zatoshis()})
}

func (h *ApiHandler) GetAddressUtxos(c *gin.Context) {
	addr := c.MustGet(addressKey).(zcash.Address)
	utxos, err := h.State.AddressUtxos(addr)
	if err != nil {
		dbError(c, err, "error fetching address utxos")
		return
	}
	resp := make([]UtxoResponse, 0, len(utxos))
	for _, u := range utxos {
		resp = append(resp, UtxoResponse{
			Txid:        u.OutPoint.Hash.String(),
			Vout:        u.OutPoint.Index,
			Value:       u.Utxo.Output.Value.Zatoshis(),
			Script:      hex.EncodeToString(u.Utxo.Output.LockScript),
			BlockHeight: uint32(u.Utxo.Height),
			Coinbase:    u.Utxo.FromCoinbase,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApiHandler) GetAddressTxIDs(c *gin.Context) {
	addr := c.MustGet(addressKey).(zcash.Address)
	r, ok := heightRange(c)
	if !ok {
		return
	}
	txs, err := h.State.AddressTxIDs(addr, r)
	if err != nil {
		dbError(c, err, "error fetching address txids")
		return
	}
	resp := TxIDsResponse{Address: addr.String(), Txids: make([]string, 0, len(txs))}
	for _, tx := range txs {
		resp.Txids = append(resp.Txids, tx.Hash.String())
	}
	c.JSON(http.StatusOK, resp)
}
