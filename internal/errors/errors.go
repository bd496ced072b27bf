package errors

import (
	"fmt"

	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// ErrorType 错误类型
type ErrorType string

const (
	// 系统级错误
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeConfig     ErrorType = "CONFIG_ERROR"
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"

	// 网络/连接错误
	ErrorTypeConnection ErrorType = "CONNECTION_ERROR"
	ErrorTypeTimeout    ErrorType = "TIMEOUT_ERROR"
	ErrorTypeNetwork    ErrorType = "NETWORK_ERROR"

	// 手续费洞察错误
	ErrorTypeInvalidTransactionField ErrorType = "INVALID_TRANSACTION_FIELD"
	ErrorTypeQuoteUnavailable        ErrorType = "QUOTE_UNAVAILABLE"

	// JSON-RPC 相关错误
	ErrorTypeJSONRPC        ErrorType = "JSONRPC_ERROR"
	ErrorTypeMethodNotFound ErrorType = "METHOD_NOT_FOUND"
	ErrorTypeInvalidParams  ErrorType = "INVALID_PARAMS"

	// 下游节点错误
	ErrorTypeDownstream ErrorType = "DOWNSTREAM_ERROR"
	ErrorTypeForward    ErrorType = "FORWARD_ERROR"
)

// 服务器保留错误码分配
const (
	CodeConnection = jsonrpc.CodeServerErrorStart - iota
	CodeTimeout
	CodeNetwork
	CodeQuoteUnavailable
	CodeDownstream
	CodeForward
	CodeInvalidResponse
	CodeBatchSizeMismatch
)

// AppError 应用统一的错误类型
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        int                    `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	OriginalErr error                  `json:"-"`
}

// New 创建新的应用错误
func New(errorType ErrorType, code int, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf 创建带格式的应用错误
func Newf(errorType ErrorType, code int, format string, args ...interface{}) *AppError {
	return New(errorType, code, fmt.Sprintf(format, args...))
}

// Wrap 包装现有错误
func Wrap(err error, errorType ErrorType, code int, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(errorType, code, message)
	appErr.OriginalErr = err
	appErr.Details = err.Error()
	return appErr
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s [%s:%d]: %s", e.Message, e.Type, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s:%d]", e.Message, e.Type, e.Code)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.OriginalErr
}

// Is 按错误类型比较
func (e *AppError) Is(target error) bool {
	if targetErr, ok := target.(*AppError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// ToJSONRPCError 转换为 JSON-RPC 错误
func (e *AppError) ToJSONRPCError() *jsonrpc.Error {
	var jsonrpcCode int
	switch e.Type {
	case ErrorTypeInvalidParams, ErrorTypeValidation, ErrorTypeInvalidTransactionField:
		jsonrpcCode = jsonrpc.CodeInvalidParams
	case ErrorTypeMethodNotFound:
		jsonrpcCode = jsonrpc.CodeMethodNotFound
	case ErrorTypeInternal, ErrorTypeConfig:
		jsonrpcCode = jsonrpc.CodeInternalError
	case ErrorTypeConnection, ErrorTypeTimeout, ErrorTypeNetwork,
		ErrorTypeQuoteUnavailable, ErrorTypeDownstream, ErrorTypeForward:
		jsonrpcCode = e.Code
		if !jsonrpc.IsServerError(jsonrpcCode) {
			jsonrpcCode = jsonrpc.CodeServerErrorStart
		}
	default:
		jsonrpcCode = jsonrpc.CodeInternalError
	}

	errorData := map[string]interface{}{
		"type": string(e.Type),
	}
	if e.Details != "" {
		errorData["details"] = e.Details
	}
	for k, v := range e.Context {
		errorData[k] = v
	}

	return &jsonrpc.Error{
		Code:    jsonrpcCode,
		Message: e.Message,
		Data:    errorData,
	}
}

// 常用错误，仅用于 errors.Is 按类型比较
var (
	ErrInternal   = New(ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal server error")
	ErrConfig     = New(ErrorTypeConfig, jsonrpc.CodeInternalError, "Configuration error")
	ErrValidation = New(ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Validation failed")

	ErrConnection = New(ErrorTypeConnection, CodeConnection, "Connection failed")
	ErrTimeout    = New(ErrorTypeTimeout, CodeTimeout, "Request timeout")
	ErrNetwork    = New(ErrorTypeNetwork, CodeNetwork, "Network error")

	ErrInvalidTransactionField = New(ErrorTypeInvalidTransactionField, jsonrpc.CodeInvalidParams, "Invalid transaction field")
	ErrQuoteUnavailable        = New(ErrorTypeQuoteUnavailable, CodeQuoteUnavailable, "Gas price quote unavailable")

	ErrMethodNotFound = New(ErrorTypeMethodNotFound, jsonrpc.CodeMethodNotFound, "Method not found")
	ErrInvalidParams  = New(ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid params")

	ErrDownstream = New(ErrorTypeDownstream, CodeDownstream, "Downstream service error")
	ErrForward    = New(ErrorTypeForward, CodeForward, "Request forwarding failed")
)
