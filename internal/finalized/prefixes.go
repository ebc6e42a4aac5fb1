package finalized

import "github.com/setavenger/ztransparent/internal/database"

/*

0x01 balance       key = [01][21 address]                          val = [8 balanceLE][8 first output location]
0x02 utxo          key = [02][8 output location]                   val = [output][8 address location]   // location only if the output pays to an address
0x03 addr-utxo     key = [03][8 address location][8 output loc]    val = []
0x04 addr-tx       key = [04][8 address location][5 tx location]   val = []
0x05 tx-loc        key = [05][32 tx hash]                          val = [5 tx location]
0x06 tx-hash       key = [06][5 tx location]                       val = [32 tx hash]
0x07 tip           key = [07]                                      val = [3 height][32 block hash]
0xFF meta          key = [FF]"db_version"                          val = [1 format version]

*/

// Prefix Keys "K"
const (
	KBalance  = 0x01
	KUtxo     = 0x02
	KAddrUtxo = 0x03
	KAddrTx   = 0x04
	KTxLoc    = 0x05
	KTxHash   = 0x06
	KTip      = 0x07

	KMeta = database.MetaPrefix
)

// Column is a named key prefix.
type Column struct {
	Prefix byte
	Name   string
}

// Columns lists every key prefix in key order.
var Columns = []Column{
	{KBalance, "balance_by_transparent_addr"},
	{KUtxo, "utxo_by_out_loc"},
	{KAddrUtxo, "utxo_loc_by_transparent_addr_loc"},
	{KAddrTx, "tx_loc_by_transparent_addr_loc"},
	{KTxLoc, "tx_loc_by_hash"},
	{KTxHash, "hash_by_tx_loc"},
	{KTip, "tip"},
	{KMeta, "meta"},
}

// ColumnName returns the name of prefix, or "" for unknown prefixes.
func ColumnName(prefix byte) string {
	for _, c := range Columns {
		if c.Prefix == prefix {
			return c.Name
		}
	}
	return ""
}
