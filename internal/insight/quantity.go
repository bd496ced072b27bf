// Package insight computes the gas fee insight shown to a user before an
// outgoing transaction is signed.
//
// The estimator itself (Estimate) is pure: it takes the transaction
// descriptor and an already fetched gas price quote and produces a display
// panel. Fetching the quote is done by Handler through an injected
// QuoteSource so the arithmetic can be tested without a node.
package insight

import (
	"math/big"
	"strings"

	"github.com/mowind/txinsight-go/internal/utils"
	"github.com/umbracle/ethgo"
)

// weiPerGwei is 10^9.
var weiPerGwei = ethgo.Gwei(1)

// ParseQuantity decodes a 0x-prefixed hexadecimal quantity.
//
// An empty string, a missing prefix, a sign, "0x" with no digits or any
// non-hex digit is rejected. Zero is written "0x0".
//
// Parameters:
//   - s: The hex quantity string (e.g., "0x5208")
//
// Returns:
//   - *big.Int: The decoded non-negative value
//   - error: ErrMalformedQuantity or ErrMissingQuantity
func ParseQuantity(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrMissingQuantity
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, ErrMalformedQuantity
	}

	digits := s[2:]
	if !utils.IsHexDigits(digits) {
		return nil, ErrMalformedQuantity
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, ErrMalformedQuantity
	}
	return v, nil
}

// EffectiveGasCost returns the best point estimate of the fee paid, in wei.
//
// The sender never pays more than maxFeePerGas*gas and, under EIP-1559,
// pays (baseFee+priorityFee)*gas below that cap, so the lower bound wins.
func EffectiveGasCost(gas, maxFeePerGas, maxPriorityFeePerGas, gasPrice *big.Int) *big.Int {
	capped := new(big.Int).Mul(maxFeePerGas, gas)

	expected := new(big.Int).Add(gasPrice, maxPriorityFeePerGas)
	expected.Mul(expected, gas)

	if capped.Cmp(expected) <= 0 {
		return capped
	}
	return expected
}

// FormatGwei renders a wei amount in gwei without trailing zeros.
//
// Example:
//
//	FormatGwei(big.NewInt(21000000000000)) // "21000"
//	FormatGwei(big.NewInt(1500000000))     // "1.5"
func FormatGwei(wei *big.Int) string {
	r := new(big.Rat).SetFrac(wei, weiPerGwei)
	s := r.FloatString(9)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FeePercentage returns gasCost/(gasCost+value)*100 rounded to two decimals.
//
// Halves round away from zero. When both inputs are zero the result is "0.00".
func FeePercentage(gasCost, value *big.Int) string {
	total := new(big.Int).Add(gasCost, value)
	if total.Sign() == 0 {
		return "0.00"
	}

	scaled := new(big.Int).Mul(gasCost, big.NewInt(100))
	return new(big.Rat).SetFrac(scaled, total).FloatString(2)
}
