package errors

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey 请求ID的context key
	RequestIDKey contextKey = "request_id"
	// OperationKey 操作名称的context key
	OperationKey contextKey = "operation"

	// RequestIDHeader 透传请求ID的 HTTP 头
	RequestIDHeader = "X-Request-ID"
)

// NewContextWithRequestID 创建带有请求ID的context，requestID 为空时生成新的 uuid
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// NewContextWithOperation 创建带有操作名称的context
func NewContextWithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// GetRequestID 从context获取请求ID
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}

// GetOperation 从context获取操作名称
func GetOperation(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	operation, _ := ctx.Value(OperationKey).(string)
	return operation
}

// GenerateRequestID 生成新的请求ID
func GenerateRequestID() string {
	return uuid.New().String()
}
