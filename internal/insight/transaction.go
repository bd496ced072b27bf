package insight

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/mowind/txinsight-go/internal/utils"
	"github.com/umbracle/ethgo"
	"github.com/valyala/fastjson"
)

// Transaction field names as they appear in eth_sendTransaction params.
const (
	FieldFrom                 = "from"
	FieldTo                   = "to"
	FieldData                 = "data"
	FieldInput                = "input"
	FieldGas                  = "gas"
	FieldMaxFeePerGas         = "maxFeePerGas"
	FieldMaxPriorityFeePerGas = "maxPriorityFeePerGas"
	FieldValue                = "value"
)

// emptyPayload marks a transaction without call data.
const emptyPayload = "0x"

// Transaction is the outgoing transaction as the wallet submitted it.
//
// Numeric fields keep their raw hex encoding; they are decoded on demand so
// that a malformed value is reported against the field it came from.
type Transaction struct {
	From                 string `json:"from,omitempty"`
	To                   string `json:"to,omitempty"`
	Data                 string `json:"data,omitempty"`
	Gas                  string `json:"gas,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	Value                string `json:"value,omitempty"`
}

// IsTransfer reports whether the transaction carries no call payload.
func (tx *Transaction) IsTransfer() bool {
	return tx.Data == "" || strings.EqualFold(tx.Data, emptyPayload)
}

// ToAddress returns the recipient when it is a well-formed address.
func (tx *Transaction) ToAddress() (ethgo.Address, bool) {
	return parseAddress(tx.To)
}

// FromAddress returns the sender when it is a well-formed address.
func (tx *Transaction) FromAddress() (ethgo.Address, bool) {
	return parseAddress(tx.From)
}

func parseAddress(s string) (ethgo.Address, bool) {
	if !utils.IsValidEthAddress(s) {
		return ethgo.ZeroAddress, false
	}
	return ethgo.HexToAddress(s), true
}

// quantity decodes one required numeric field.
func (tx *Transaction) quantity(field string) (*big.Int, error) {
	var raw string
	switch field {
	case FieldGas:
		raw = tx.Gas
	case FieldMaxFeePerGas:
		raw = tx.MaxFeePerGas
	case FieldMaxPriorityFeePerGas:
		raw = tx.MaxPriorityFeePerGas
	case FieldValue:
		raw = tx.Value
	default:
		return nil, fmt.Errorf("unknown quantity field %s", field)
	}

	v, err := ParseQuantity(raw)
	if err != nil {
		return nil, fieldError(field, raw, err)
	}
	return v, nil
}

var defaultPool fastjson.ParserPool

// ParseTransaction decodes a transaction object from JSON.
//
// Absent and null keys are left empty. A key holding anything other than a
// string is reported as an invalid field. "input" is accepted as an alias
// of "data".
func ParseTransaction(data []byte) (*Transaction, error) {
	p := defaultPool.Get()
	defer defaultPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return decodeTransaction(v)
}

func decodeTransaction(v *fastjson.Value) (*Transaction, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("transaction must be an object, got %s", v.Type())
	}

	tx := &Transaction{}
	fields := []struct {
		key string
		dst *string
	}{
		{FieldFrom, &tx.From},
		{FieldTo, &tx.To},
		{FieldData, &tx.Data},
		{FieldGas, &tx.Gas},
		{FieldMaxFeePerGas, &tx.MaxFeePerGas},
		{FieldMaxPriorityFeePerGas, &tx.MaxPriorityFeePerGas},
		{FieldValue, &tx.Value},
	}
	for _, f := range fields {
		s, err := stringField(v, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = s
	}

	if tx.Data == "" {
		input, err := stringField(v, FieldInput)
		if err != nil {
			return nil, err
		}
		tx.Data = input
	}

	return tx, nil
}

// stringField reads an optional string key.
func stringField(v *fastjson.Value, key string) (string, error) {
	vv := v.Get(key)
	if vv == nil || vv.Type() == fastjson.TypeNull {
		return "", nil
	}
	if vv.Type() != fastjson.TypeString {
		return "", fieldError(key, vv.String(), fmt.Errorf("must be a hex string, got %s", vv.Type()))
	}
	b, err := vv.StringBytes()
	if err != nil {
		return "", fieldError(key, "", err)
	}
	return string(b), nil
}

// ParseParams decodes the params of an insight request.
//
// Supported forms:
//
//	[{...tx}]
//	[{...tx}, {"mode": "cost"}]
//	{"transaction": {...tx}, "mode": "percent"}
//	{...tx}
//
// The returned mode is empty when the caller did not ask for one.
func ParseParams(params []byte) (*Transaction, string, error) {
	if len(params) == 0 {
		return nil, "", fmt.Errorf("params is required")
	}

	p := defaultPool.Get()
	defer defaultPool.Put(p)

	v, err := p.ParseBytes(params)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse params: %w", err)
	}

	switch v.Type() {
	case fastjson.TypeArray:
		items := v.GetArray()
		if len(items) == 0 || len(items) > 2 {
			return nil, "", fmt.Errorf("expected 1 or 2 parameters, got %d", len(items))
		}
		tx, err := decodeTransaction(items[0])
		if err != nil {
			return nil, "", err
		}
		if len(items) == 1 {
			return tx, "", nil
		}
		mode, err := modeField(items[1])
		return tx, mode, err

	case fastjson.TypeObject:
		if txValue := v.Get("transaction"); txValue != nil {
			tx, err := decodeTransaction(txValue)
			if err != nil {
				return nil, "", err
			}
			mode, err := modeField(v)
			return tx, mode, err
		}
		tx, err := decodeTransaction(v)
		return tx, "", err

	default:
		return nil, "", fmt.Errorf("params must be an array or object, got %s", v.Type())
	}
}

func modeField(v *fastjson.Value) (string, error) {
	if v.Type() == fastjson.TypeNull {
		return "", nil
	}
	if v.Type() != fastjson.TypeObject {
		return "", fmt.Errorf("options must be an object, got %s", v.Type())
	}
	mv := v.Get("mode")
	if mv == nil || mv.Type() == fastjson.TypeNull {
		return "", nil
	}
	b, err := mv.StringBytes()
	if err != nil {
		return "", fmt.Errorf("mode must be a string: %w", err)
	}
	return string(b), nil
}
