package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/mowind/txinsight-go/internal/downstream"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "plain",
			err:  New(ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid params"),
			want: "Invalid params [INVALID_PARAMS:-32602]",
		},
		{
			name: "wrapped",
			err:  Wrap(fmt.Errorf("dial tcp: refused"), ErrorTypeConnection, CodeConnection, "Connection failed"),
			want: "Connection failed [CONNECTION_ERROR:-32000]: dial tcp: refused",
		},
		{
			name: "formatted",
			err:  Newf(ErrorTypeConfig, jsonrpc.CodeInternalError, "bad %s", "port"),
			want: "bad port [CONFIG_ERROR:-32603]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, jsonrpc.CodeInternalError, "x"))
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := Wrap(cause, ErrorTypeTimeout, CodeTimeout, "Request timeout")

	assert.True(t, stderrors.Is(err, ErrTimeout))
	assert.False(t, stderrors.Is(err, ErrConnection))
	assert.Same(t, cause, stderrors.Unwrap(err))
}

func TestAppError_ToJSONRPCError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode int
	}{
		{"invalid params", New(ErrorTypeInvalidParams, 0, "bad"), jsonrpc.CodeInvalidParams},
		{"invalid field", New(ErrorTypeInvalidTransactionField, 0, "bad"), jsonrpc.CodeInvalidParams},
		{"method not found", New(ErrorTypeMethodNotFound, 0, "missing"), jsonrpc.CodeMethodNotFound},
		{"config", New(ErrorTypeConfig, 0, "cfg"), jsonrpc.CodeInternalError},
		{"quote unavailable keeps server code", New(ErrorTypeQuoteUnavailable, CodeQuoteUnavailable, "quote"), CodeQuoteUnavailable},
		{"downstream outside range", New(ErrorTypeDownstream, 500, "down"), jsonrpc.CodeServerErrorStart},
		{"unknown type", New(ErrorType("OTHER"), 0, "other"), jsonrpc.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpcErr := tt.err.ToJSONRPCError()
			assert.Equal(t, tt.wantCode, rpcErr.Code)
			assert.Equal(t, tt.err.Message, rpcErr.Message)

			data, ok := rpcErr.Data.(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, string(tt.err.Type), data["type"])
		})
	}
}

func TestServerCodesInReservedRange(t *testing.T) {
	for _, code := range []int{CodeConnection, CodeTimeout, CodeNetwork, CodeQuoteUnavailable,
		CodeDownstream, CodeForward, CodeInvalidResponse, CodeBatchSizeMismatch} {
		assert.True(t, jsonrpc.IsServerError(code), "code %d", code)
	}
}

func TestConverter_FromInsight(t *testing.T) {
	c := NewConverter()

	t.Run("field error", func(t *testing.T) {
		_, err := insight.Estimate(&insight.Transaction{Gas: "nope"}, "", insight.ModeCost)
		require.Error(t, err)

		appErr := c.FromInsight(err)
		assert.Equal(t, ErrorTypeInvalidTransactionField, appErr.Type)
		assert.Equal(t, insight.FieldGas, appErr.Context["field"])

		rpcErr := appErr.ToJSONRPCError()
		assert.Equal(t, jsonrpc.CodeInvalidParams, rpcErr.Code)
		data := rpcErr.Data.(map[string]interface{})
		assert.Equal(t, "INVALID_TRANSACTION_FIELD", data["type"])
		assert.Equal(t, "gas", data["field"])
	})

	t.Run("quote error", func(t *testing.T) {
		_, err := insight.Quote("1000").Wei()
		require.Error(t, err)

		appErr := c.FromInsight(err)
		assert.Equal(t, ErrorTypeQuoteUnavailable, appErr.Type)
		assert.Equal(t, CodeQuoteUnavailable, appErr.ToJSONRPCError().Code)
	})

	t.Run("cancelled", func(t *testing.T) {
		appErr := c.FromInsight(fmt.Errorf("wrapped: %w", context.Canceled))
		assert.Equal(t, ErrorTypeTimeout, appErr.Type)
	})

	t.Run("params error", func(t *testing.T) {
		_, _, err := insight.ParseParams([]byte(`42`))
		require.Error(t, err)
		assert.Equal(t, ErrorTypeInvalidParams, c.FromInsight(err).Type)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, c.FromInsight(nil))
	})
}

func TestConverter_FromDownstream(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantCode int
	}{
		{"connection", downstream.ConnectionError(fmt.Errorf("refused")), ErrorTypeConnection, CodeConnection},
		{"request", downstream.RequestError(fmt.Errorf("status 502")), ErrorTypeForward, CodeForward},
		{"invalid response", downstream.InvalidResponseError(fmt.Errorf("bad json")), ErrorTypeDownstream, CodeInvalidResponse},
		{"timeout", downstream.TimeoutError(context.DeadlineExceeded), ErrorTypeTimeout, CodeTimeout},
		{"batch mismatch", downstream.BatchSizeMismatchError(2, 1), ErrorTypeDownstream, CodeBatchSizeMismatch},
		{"plain", fmt.Errorf("other"), ErrorTypeDownstream, CodeDownstream},
	}

	c := NewConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := c.FromDownstream(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantCode, appErr.ToJSONRPCError().Code)
		})
	}
}

func TestConverter_FromJSONRPC(t *testing.T) {
	c := NewConverter()

	assert.Nil(t, c.FromJSONRPC(nil))
	assert.Equal(t, ErrorTypeMethodNotFound, c.FromJSONRPC(jsonrpc.MethodNotFoundError).Type)
	assert.Equal(t, ErrorTypeInvalidParams, c.FromJSONRPC(jsonrpc.InvalidParamsError).Type)
	assert.Equal(t, ErrorTypeJSONRPC, c.FromJSONRPC(jsonrpc.ParseError).Type)

	appErr := c.FromJSONRPC(&jsonrpc.Error{Code: -32010, Message: "execution reverted", Data: "0x"})
	assert.Equal(t, ErrorTypeDownstream, appErr.Type)
	assert.Equal(t, "0x", appErr.Context["original_data"])
}

func TestConvertError(t *testing.T) {
	appErr := New(ErrorTypeValidation, jsonrpc.CodeInvalidParams, "bad")
	assert.Same(t, appErr, ConvertError(fmt.Errorf("wrapped: %w", appErr)))

	assert.Equal(t, ErrorTypeMethodNotFound, ConvertError(jsonrpc.MethodNotFoundError).Type)
	assert.Equal(t, ErrorTypeConnection, ConvertError(downstream.ConnectionError(fmt.Errorf("x"))).Type)
	assert.Equal(t, ErrorTypeInvalidTransactionField,
		ConvertError(&insight.FieldError{Field: "value", Err: insight.ErrMalformedQuantity}).Type)
	assert.Equal(t, ErrorTypeInternal, ConvertError(fmt.Errorf("boom")).Type)
	assert.Nil(t, ConvertError(nil))
}

func TestConvertToJSONRPC(t *testing.T) {
	assert.Nil(t, ConvertToJSONRPC(nil))

	rpcErr := ConvertToJSONRPC(&insight.FieldError{Field: "gas", Err: insight.ErrMissingQuantity})
	assert.Equal(t, jsonrpc.CodeInvalidParams, rpcErr.Code)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsErrorType(ErrInvalidParams, ErrorTypeInvalidParams))
	assert.False(t, IsErrorType(fmt.Errorf("x"), ErrorTypeInvalidParams))

	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(ErrQuoteUnavailable))
	assert.False(t, IsRetryable(ErrInvalidParams))

	assert.True(t, IsClientError(ErrInvalidTransactionField))
	assert.False(t, IsClientError(ErrDownstream))
}
