package downstream

import (
	"context"

	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// ClientInterface 定义下游节点客户端接口
type ClientInterface interface {
	// ForwardRequest 转发单个JSON-RPC请求到下游节点
	ForwardRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)

	// ForwardBatchRequest 转发批量JSON-RPC请求到下游节点
	ForwardBatchRequest(ctx context.Context, requests []jsonrpc.Request) ([]jsonrpc.Response, error)

	// GasPrice 获取当前 eth_gasPrice 报价
	GasPrice(ctx context.Context) (insight.Quote, error)

	// TestConnection 测试下游节点连接
	TestConnection(ctx context.Context) error

	// GetEndpoint 获取下游节点端点URL
	GetEndpoint() string

	// Close 关闭客户端连接
	Close() error
}

var (
	_ ClientInterface     = (*Client)(nil)
	_ insight.QuoteSource = (*Client)(nil)
)
