package router

import (
	"context"

	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// 转发前会被检查的交易方法
const (
	MethodSendTransaction = "eth_sendTransaction"
	MethodSignTransaction = "eth_signTransaction"
)

// IsInspectedMethod 判断方法是否携带待发送交易
func IsInspectedMethod(method string) bool {
	return method == MethodSendTransaction || method == MethodSignTransaction
}

// InspectingHandler 在转发交易前计算并记录手续费洞察
//
// 洞察失败只记录日志，请求总是原样转发。
type InspectingHandler struct {
	*BaseHandler
	insight *insight.Handler
	mode    insight.Mode
	forward *ForwardHandler
}

// NewInspectingHandler 创建交易检查处理器
func NewInspectingHandler(method string, h *insight.Handler, mode insight.Mode, forward *ForwardHandler, logger *logrus.Logger) *InspectingHandler {
	return &InspectingHandler{
		BaseHandler: NewBaseHandler(method, logger),
		insight:     h,
		mode:        mode,
		forward:     forward,
	}
}

// Handle 记录洞察后转发请求
func (h *InspectingHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.inspect(ctx, request)
	return h.forward.Handle(ctx, request)
}

func (h *InspectingHandler) inspect(ctx context.Context, request *jsonrpc.Request) {
	logger := h.Log(ctx).WithField("method", request.Method)

	tx, _, err := insight.ParseParams(request.Params)
	if err != nil {
		logger.WithError(err).Warnw("Cannot inspect outgoing transaction")
		return
	}

	report, err := h.insight.OnTransaction(ctx, tx, h.mode)
	if err != nil {
		logger.WithError(err).WithField("fingerprint", insight.Fingerprint(tx)).Warnw("Outgoing transaction insight failed")
		return
	}

	logger.Infow("Outgoing transaction insight",
		"fingerprint", report.Fingerprint,
		"mode", string(report.Mode),
		"insight", report.Text(),
		"degraded", report.Degraded,
	)
}
