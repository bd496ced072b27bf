package insight

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// QuoteSource fetches the current gas price.
type QuoteSource interface {
	// GasPrice returns the eth_gasPrice result as a hex quantity.
	GasPrice(ctx context.Context) (Quote, error)
}

// QuoteFunc adapts a function to QuoteSource.
type QuoteFunc func(ctx context.Context) (Quote, error)

// GasPrice calls f(ctx).
func (f QuoteFunc) GasPrice(ctx context.Context) (Quote, error) {
	return f(ctx)
}

// Report is the insight returned to the wallet: the display document plus
// the metadata needed to correlate it.
type Report struct {
	Result
	Mode        Mode   `json:"mode"`
	Fingerprint string `json:"fingerprint"`
	// Degraded is set when no gas price quote could be used.
	Degraded bool `json:"degraded,omitempty"`
}

// Handler runs one insight invocation: fetch the quote, then estimate.
type Handler struct {
	quotes       QuoteSource
	logger       *logrus.Logger
	quoteTimeout time.Duration
}

// NewHandler creates an insight handler.
//
// Parameters:
//   - quotes: Source of the current gas price
//   - logger: The logger to use
//   - quoteTimeout: Upper bound for the gas price query; 0 leaves it to ctx
//
// Returns:
//   - *Handler: A new handler instance
func NewHandler(quotes QuoteSource, logger *logrus.Logger, quoteTimeout time.Duration) *Handler {
	return &Handler{
		quotes:       quotes,
		logger:       logger,
		quoteTimeout: quoteTimeout,
	}
}

// OnTransaction inspects tx and returns its insight report.
//
// Non-transfer transactions never trigger a quote request. If the quote
// cannot be fetched or decoded the estimate falls back to an absent quote
// and the report is marked degraded. Invalid transaction fields and a
// cancelled ctx are returned as errors.
func (h *Handler) OnTransaction(ctx context.Context, tx *Transaction, mode Mode) (*Report, error) {
	report := &Report{
		Mode:        mode,
		Fingerprint: Fingerprint(tx),
	}

	logger := h.logger.WithFields(logrus.Fields{
		"fingerprint": report.Fingerprint,
		"mode":        mode,
	})
	if to, ok := tx.ToAddress(); ok {
		logger = logger.WithField("to", to.String())
	}

	if !tx.IsTransfer() {
		logger.Debug("Transaction carries call data, skipping gas fee estimate")
		report.Result = *NonTransferResult()
		return report, nil
	}

	quote, err := h.fetchQuote(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithError(err).Warn("Gas price quote unavailable, estimating without it")
		quote = ""
		report.Degraded = true
	} else if _, err := quote.Wei(); err != nil {
		logger.WithError(err).Warn("Gas price quote is malformed, estimating without it")
		quote = ""
		report.Degraded = true
	}

	result, err := Estimate(tx, quote, mode)
	if err != nil {
		logger.WithError(err).Warn("Failed to estimate gas fee")
		return nil, err
	}

	report.Result = *result
	logger.WithFields(logrus.Fields{
		"quote":    string(quote),
		"degraded": report.Degraded,
	}).Debug("Gas fee insight computed")
	return report, nil
}

func (h *Handler) fetchQuote(ctx context.Context) (Quote, error) {
	if h.quotes == nil {
		return "", &QuoteError{Err: errNoQuoteSource}
	}

	if h.quoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.quoteTimeout)
		defer cancel()
	}

	quote, err := h.quotes.GasPrice(ctx)
	if err != nil {
		return "", &QuoteError{Err: err}
	}
	return quote, nil
}
