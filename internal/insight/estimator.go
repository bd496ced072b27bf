package insight

import (
	"fmt"
	"math/big"
	"strings"
)

// Mode selects which figure the insight reports.
type Mode string

const (
	// ModeCost reports the estimated fee in gwei.
	ModeCost Mode = "cost"
	// ModePercent reports the share of the transfer consumed by fees.
	ModePercent Mode = "percent"
)

// DefaultMode is used when neither the request nor the configuration names one.
const DefaultMode = ModePercent

// ParseMode validates a mode name. An empty name yields fallback.
func ParseMode(s string, fallback Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case ModeCost:
		return ModeCost, nil
	case ModePercent:
		return ModePercent, nil
	default:
		return "", fmt.Errorf("unsupported insight mode %q (want %s or %s)", s, ModeCost, ModePercent)
	}
}

// Quote is the current gas price in wei, hex encoded, as returned by
// eth_gasPrice. The empty Quote means no quote was obtained.
type Quote string

// Wei decodes the quote. An absent quote decodes to zero.
func (q Quote) Wei() (*big.Int, error) {
	if q == "" {
		return new(big.Int), nil
	}
	v, err := ParseQuantity(string(q))
	if err != nil {
		return nil, &QuoteError{Quote: q, Err: err}
	}
	return v, nil
}

// Panel wording.
const (
	Heading = "Transaction Fee Insight"

	nonTransferText = "Gas fee insight is not available for contract interactions. Only simple ETH transfers are analysed."
	costText        = "Estimated gas fee for this transfer: **%s gwei**."
	percentText     = "**%s%%** of the total amount sent in this transfer will be paid in gas fees."
)

// Estimate computes the insight for tx given the current gas price quote.
//
// A transaction carrying call data short-circuits to the non-transfer notice
// without decoding any numeric field. For transfers every required field
// must decode; the first failure is returned as a *FieldError and no figure
// is produced.
func Estimate(tx *Transaction, quote Quote, mode Mode) (*Result, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if !tx.IsTransfer() {
		return NonTransferResult(), nil
	}

	cost, err := GasCost(tx, quote)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeCost:
		return &Result{Content: panel(
			heading(Heading),
			text(fmt.Sprintf(costText, FormatGwei(cost))),
		)}, nil

	case ModePercent:
		value, err := tx.quantity(FieldValue)
		if err != nil {
			return nil, err
		}
		return &Result{Content: panel(
			heading(Heading),
			text(fmt.Sprintf(percentText, FeePercentage(cost, value))),
		)}, nil

	default:
		return nil, fmt.Errorf("unsupported insight mode %q", mode)
	}
}

// GasCost decodes the fee fields of tx and returns the effective gas cost in wei.
func GasCost(tx *Transaction, quote Quote) (*big.Int, error) {
	gas, err := tx.quantity(FieldGas)
	if err != nil {
		return nil, err
	}
	maxFee, err := tx.quantity(FieldMaxFeePerGas)
	if err != nil {
		return nil, err
	}
	priorityFee, err := tx.quantity(FieldMaxPriorityFeePerGas)
	if err != nil {
		return nil, err
	}
	gasPrice, err := quote.Wei()
	if err != nil {
		return nil, err
	}

	return EffectiveGasCost(gas, maxFee, priorityFee, gasPrice), nil
}

// NonTransferResult is the notice shown for contract interactions.
func NonTransferResult() *Result {
	return &Result{Content: panel(
		heading(Heading),
		text(nonTransferText),
	)}
}
