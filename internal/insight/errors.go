package insight

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransactionField is matched (errors.Is) by every FieldError.
	ErrInvalidTransactionField = errors.New("invalid transaction field")

	// ErrQuoteUnavailable reports a gas price quote that could not be fetched
	// or decoded.
	ErrQuoteUnavailable = errors.New("gas price quote unavailable")

	// ErrMissingQuantity is returned by ParseQuantity for an empty input.
	ErrMissingQuantity = errors.New("quantity is missing")

	// ErrMalformedQuantity is returned by ParseQuantity for non-hex input.
	ErrMalformedQuantity = errors.New("quantity is not a 0x-prefixed hex integer")

	errNoQuoteSource = errors.New("no quote source configured")
)

// FieldError describes a required transaction field that is missing or
// could not be decoded.
type FieldError struct {
	Field string
	Value string
	Err   error
}

// Error 实现 error 接口
func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid transaction field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid transaction field %q (%q): %v", e.Field, e.Value, e.Err)
}

// Unwrap 返回原始错误
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidTransactionField) true for any FieldError.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidTransactionField
}

func fieldError(field, value string, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}

// QuoteError wraps a failed or malformed gas price quote.
type QuoteError struct {
	Quote Quote
	Err   error
}

func (e *QuoteError) Error() string {
	if e.Quote != "" {
		return fmt.Sprintf("%v (%q): %v", ErrQuoteUnavailable, string(e.Quote), e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrQuoteUnavailable, e.Err)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

func (e *QuoteError) Is(target error) bool {
	return target == ErrQuoteUnavailable
}
