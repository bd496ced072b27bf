package router

import (
	"context"

	"github.com/mowind/txinsight-go/internal/downstream"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// ForwardHandlerName 默认转发处理器的名称
const ForwardHandlerName = "forward_handler"

// ForwardHandler 把请求原样转发给下游节点
type ForwardHandler struct {
	*BaseHandler
	client downstream.ClientInterface
}

// NewForwardHandler 创建转发处理器
func NewForwardHandler(client downstream.ClientInterface, logger *logrus.Logger) *ForwardHandler {
	return &ForwardHandler{
		BaseHandler: NewBaseHandler(ForwardHandlerName, logger),
		client:      client,
	}
}

// Client 返回下游客户端
func (h *ForwardHandler) Client() downstream.ClientInterface {
	return h.client
}

// Handle 转发单个请求，下游错误转换为 JSON-RPC 错误响应
func (h *ForwardHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)

	response, err := h.client.ForwardRequest(ctx, request)
	if err != nil {
		appErr := apperrors.NewConverter().FromDownstream(err)
		h.Log(ctx).WithField("method", request.Method).LogAppError(appErr)
		return jsonrpc.NewErrorResponse(request.ID, appErr.ToJSONRPCError()), nil
	}

	h.LogResponse(request, response, nil)
	return response, nil
}

// ForwardBatch 一次性转发一批请求，返回与请求顺序一致的响应
//
// 响应按ID与请求匹配。下游失败时每个请求都得到同一个转换后的错误。
func (h *ForwardHandler) ForwardBatch(ctx context.Context, requests []jsonrpc.Request) []*jsonrpc.Response {
	responses := make([]*jsonrpc.Response, len(requests))

	batchResponses, err := h.client.ForwardBatchRequest(ctx, requests)
	if err != nil {
		appErr := apperrors.NewConverter().FromDownstream(err)
		h.Log(ctx).WithField("count", len(requests)).LogAppError(appErr)
		rpcErr := appErr.ToJSONRPCError()
		for i := range requests {
			responses[i] = jsonrpc.NewErrorResponse(requests[i].ID, rpcErr)
		}
		return responses
	}

	ordered := downstream.OrderResponses(requests, batchResponses, h.logger)
	for i := range ordered {
		ordered[i].JSONRPC = jsonrpc.JSONRPCVersion
		responses[i] = &ordered[i]
	}
	return responses
}
