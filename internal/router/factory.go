package router

import (
	"context"

	"github.com/mowind/txinsight-go/internal/downstream"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// Options 路由器配置
type Options struct {
	// DefaultMode 请求未指定模式时使用的洞察模式
	DefaultMode insight.Mode
	// InspectOutgoing 为 true 时注册 eth_sendTransaction / eth_signTransaction 检查处理器
	InspectOutgoing bool
	// MaxRequestSize 最大请求体大小（字节）
	MaxRequestSize int64
}

// RouterFactory 路由器工厂，简化路由器的创建和配置
type RouterFactory struct {
	logger *logrus.Logger
}

// NewRouterFactory 创建路由器工厂
func NewRouterFactory(logger *logrus.Logger) *RouterFactory {
	return &RouterFactory{
		logger: logger,
	}
}

// CreateRouter 创建完整配置的路由器
//
// insight_onTransaction 在本地处理，其余方法转发到下游节点。
func (f *RouterFactory) CreateRouter(insightHandler *insight.Handler, client downstream.ClientInterface, opts Options) *Router {
	if opts.DefaultMode == "" {
		opts.DefaultMode = insight.DefaultMode
	}

	router := NewRouterWithMaxSize(f.logger, opts.MaxRequestSize)

	if err := router.Register(NewInsightHandler(insightHandler, opts.DefaultMode, f.logger)); err != nil {
		f.logger.WithError(err).Error("Failed to register insight handler")
	}

	forwardHandler := NewForwardHandler(client, f.logger)

	if opts.InspectOutgoing {
		// 同一个检查处理器按方法名分别注册
		inspecting := NewInspectingHandler("inspect_handler", insightHandler, opts.DefaultMode, forwardHandler, f.logger)
		for _, method := range []string{MethodSendTransaction, MethodSignTransaction} {
			if err := router.Register(&MethodHandler{handler: inspecting, method: method}); err != nil {
				f.logger.WithError(err).WithField("method", method).Error("Failed to register inspecting handler")
			}
		}
	}

	router.SetDefaultHandler(forwardHandler)
	return router
}

// MethodHandler 包装处理器，以指定的方法名注册
type MethodHandler struct {
	handler Handler
	method  string
}

// Method 返回方法名
func (m *MethodHandler) Method() string {
	return m.method
}

// Handle 处理请求
func (m *MethodHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return m.handler.Handle(ctx, request)
}
