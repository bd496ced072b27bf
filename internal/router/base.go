package router

import (
	"context"
	"fmt"

	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// BaseHandler 提供处理器的基础功能
type BaseHandler struct {
	method string
	logger *logrus.Logger
}

// NewBaseHandler 创建基础处理器
func NewBaseHandler(method string, logger *logrus.Logger) *BaseHandler {
	return &BaseHandler{
		method: method,
		logger: logger,
	}
}

// Method 返回方法名
func (h *BaseHandler) Method() string {
	return h.method
}

// Log 返回带请求ID的结构化日志器
func (h *BaseHandler) Log(ctx context.Context) apperrors.Logger {
	return apperrors.FromLogrus(h.logger).WithContext(ctx)
}

// CreateSuccessResponse 创建成功响应
func (h *BaseHandler) CreateSuccessResponse(id interface{}, result interface{}) (*jsonrpc.Response, error) {
	response, err := jsonrpc.NewResponse(id, result)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create success response")
		return nil, fmt.Errorf("failed to create response: %w", err)
	}
	return response, nil
}

// CreateErrorResponse 把应用错误转换为 JSON-RPC 错误响应并记录日志
func (h *BaseHandler) CreateErrorResponse(ctx context.Context, id interface{}, appErr *apperrors.AppError) *jsonrpc.Response {
	h.Log(ctx).WithField("method", h.method).LogAppError(appErr)
	return jsonrpc.NewErrorResponse(id, appErr.ToJSONRPCError())
}

// LogRequest 记录请求日志
func (h *BaseHandler) LogRequest(request *jsonrpc.Request) {
	h.logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
		"params": string(request.Params),
	}).Debug("Processing JSON-RPC request")
}

// LogResponse 记录响应日志
func (h *BaseHandler) LogResponse(request *jsonrpc.Request, response *jsonrpc.Response, err error) {
	fields := logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	}

	switch {
	case err != nil:
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("Request processing failed")
	case response != nil && response.Error != nil:
		fields["error_code"] = response.Error.Code
		fields["error_message"] = response.Error.Message
		h.logger.WithFields(fields).Debug("Request returned error")
	default:
		h.logger.WithFields(fields).Debug("Request processed successfully")
	}
}
