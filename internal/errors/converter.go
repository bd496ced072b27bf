package errors

import (
	"context"
	stderrors "errors"

	"github.com/mowind/txinsight-go/internal/downstream"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// Converter 错误转换器
type Converter struct{}

// NewConverter 创建新的错误转换器
func NewConverter() *Converter {
	return &Converter{}
}

// FromJSONRPC 从 JSON-RPC 错误转换
func (c *Converter) FromJSONRPC(jsonErr *jsonrpc.Error) *AppError {
	if jsonErr == nil {
		return nil
	}

	var errorType ErrorType
	switch jsonErr.Code {
	case jsonrpc.CodeParseError, jsonrpc.CodeInvalidRequest:
		errorType = ErrorTypeJSONRPC
	case jsonrpc.CodeMethodNotFound:
		errorType = ErrorTypeMethodNotFound
	case jsonrpc.CodeInvalidParams:
		errorType = ErrorTypeInvalidParams
	case jsonrpc.CodeInternalError:
		errorType = ErrorTypeInternal
	default:
		if jsonrpc.IsServerError(jsonErr.Code) {
			errorType = ErrorTypeDownstream
		} else {
			errorType = ErrorTypeJSONRPC
		}
	}

	appErr := New(errorType, jsonErr.Code, jsonErr.Message)
	if jsonErr.Data != nil {
		appErr.WithContext("original_data", jsonErr.Data)
	}
	return appErr
}

// FromDownstream 从下游节点错误转换
func (c *Converter) FromDownstream(downstreamErr error) *AppError {
	if downstreamErr == nil {
		return nil
	}

	var err *downstream.Error
	if !stderrors.As(downstreamErr, &err) {
		return Wrap(downstreamErr, ErrorTypeDownstream, CodeDownstream, "Downstream service error")
	}

	switch err.Code {
	case downstream.ErrorCodeConnectionFailed:
		return Wrap(err, ErrorTypeConnection, CodeConnection, "Connection to downstream service failed")
	case downstream.ErrorCodeRequestFailed:
		return Wrap(err, ErrorTypeForward, CodeForward, "Request forwarding failed")
	case downstream.ErrorCodeInvalidResponse:
		return Wrap(err, ErrorTypeDownstream, CodeInvalidResponse, "Invalid response from downstream service")
	case downstream.ErrorCodeTimeout:
		return Wrap(err, ErrorTypeTimeout, CodeTimeout, "Downstream service timeout")
	case downstream.ErrorCodeBatchSizeMismatch:
		return Wrap(err, ErrorTypeDownstream, CodeBatchSizeMismatch, "Batch response size mismatch from downstream service")
	default:
		return Wrap(err, ErrorTypeDownstream, CodeDownstream, "Downstream service error")
	}
}

// FromInsight 从手续费洞察错误转换
func (c *Converter) FromInsight(insightErr error) *AppError {
	if insightErr == nil {
		return nil
	}

	var fieldErr *insight.FieldError
	if stderrors.As(insightErr, &fieldErr) {
		return Wrap(insightErr, ErrorTypeInvalidTransactionField, jsonrpc.CodeInvalidParams, "Invalid transaction field").
			WithContext("field", fieldErr.Field)
	}

	var quoteErr *insight.QuoteError
	if stderrors.As(insightErr, &quoteErr) {
		return Wrap(insightErr, ErrorTypeQuoteUnavailable, CodeQuoteUnavailable, "Gas price quote unavailable")
	}

	if stderrors.Is(insightErr, context.Canceled) || stderrors.Is(insightErr, context.DeadlineExceeded) {
		return Wrap(insightErr, ErrorTypeTimeout, CodeTimeout, "Request cancelled")
	}

	return Wrap(insightErr, ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid params")
}

// ConvertError 通用的错误转换函数
func ConvertError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var jsonErr *jsonrpc.Error
	if stderrors.As(err, &jsonErr) {
		return NewConverter().FromJSONRPC(jsonErr)
	}

	var downstreamErr *downstream.Error
	if stderrors.As(err, &downstreamErr) {
		return NewConverter().FromDownstream(err)
	}

	if stderrors.Is(err, insight.ErrInvalidTransactionField) || stderrors.Is(err, insight.ErrQuoteUnavailable) {
		return NewConverter().FromInsight(err)
	}

	return Wrap(err, ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal error")
}

// ConvertToJSONRPC 快速转换为 JSON-RPC 错误
func ConvertToJSONRPC(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}
	return ConvertError(err).ToJSONRPCError()
}

// IsErrorType 检查错误是否属于指定类型
func IsErrorType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable 检查错误是否可重试
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeConnection, ErrorTypeTimeout, ErrorTypeNetwork, ErrorTypeQuoteUnavailable:
			return true
		}
	}
	return false
}

// IsClientError 检查是否是客户端错误
func IsClientError(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeInvalidParams, ErrorTypeMethodNotFound, ErrorTypeInvalidTransactionField:
			return true
		}
	}
	return false
}
