package insight

import (
	"encoding/hex"
	"strings"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/fastrlp"
)

// Fingerprint identifies the inspected fields of a transaction.
//
// It is the Keccak-256 of the RLP list of the raw field strings, lower-cased,
// in a fixed order.
func Fingerprint(tx *Transaction) string {
	a := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(a)

	v := a.NewArray()
	for _, field := range []string{
		tx.From,
		tx.To,
		tx.Data,
		tx.Gas,
		tx.MaxFeePerGas,
		tx.MaxPriorityFeePerGas,
		tx.Value,
	} {
		v.Set(a.NewCopyBytes([]byte(strings.ToLower(field))))
	}

	dst := v.MarshalTo(nil)
	return "0x" + hex.EncodeToString(ethgo.Keccak256(dst))
}
