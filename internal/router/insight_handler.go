package router

import (
	"context"
	"time"

	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// MethodOnTransaction 交易手续费洞察方法
const MethodOnTransaction = "insight_onTransaction"

// InsightHandler 处理 insight_onTransaction
type InsightHandler struct {
	*BaseHandler
	insight     *insight.Handler
	defaultMode insight.Mode
	converter   *apperrors.Converter
}

// NewInsightHandler 创建洞察处理器
func NewInsightHandler(h *insight.Handler, defaultMode insight.Mode, logger *logrus.Logger) *InsightHandler {
	return &InsightHandler{
		BaseHandler: NewBaseHandler(MethodOnTransaction, logger),
		insight:     h,
		defaultMode: defaultMode,
		converter:   apperrors.NewConverter(),
	}
}

// Handle 解析交易并返回洞察报告
func (h *InsightHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)
	ctx = apperrors.NewContextWithOperation(ctx, MethodOnTransaction)

	tx, modeName, err := insight.ParseParams(request.Params)
	if err != nil {
		return h.CreateErrorResponse(ctx, request.ID, h.converter.FromInsight(err)), nil
	}

	mode, err := insight.ParseMode(modeName, h.defaultMode)
	if err != nil {
		appErr := apperrors.Wrap(err, apperrors.ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid params").
			WithContext("field", "mode")
		return h.CreateErrorResponse(ctx, request.ID, appErr), nil
	}

	start := time.Now()
	report, err := h.insight.OnTransaction(ctx, tx, mode)
	h.Log(ctx).LogOperation("estimate", start, err)
	if err != nil {
		return h.CreateErrorResponse(ctx, request.ID, h.converter.FromInsight(err)), nil
	}

	response, err := h.CreateSuccessResponse(request.ID, report)
	h.LogResponse(request, response, err)
	return response, err
}
