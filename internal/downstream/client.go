package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/mowind/txinsight-go/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	maxIdleConns    = 100
	idleConnTimeout = 90 * time.Second

	methodGasPrice      = "eth_gasPrice"
	methodClientVersion = "web3_clientVersion"
)

// Client 表示下游节点客户端
type Client struct {
	config     *config.DownstreamConfig
	httpClient *http.Client
	logger     *logrus.Logger
	nextID     uint64
}

// NewClient 创建新的下游节点客户端
func NewClient(cfg *config.DownstreamConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultDownstreamTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: utils.CreateTransport(maxIdleConns, idleConnTimeout, timeout),
		},
		logger: logger,
	}
}

// post 发送一次 JSON-RPC HTTP 请求并返回响应体
func (c *Client) post(ctx context.Context, payload interface{}) ([]byte, error) {
	reqData, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(err, ErrorCodeRequestFailed, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BuildURL(), bytes.NewReader(reqData))
	if err != nil {
		return nil, WrapError(err, ErrorCodeRequestFailed, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, TimeoutError(err)
		}
		return nil, ConnectionError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrorCodeInvalidResponse, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, RequestError(fmt.Errorf("downstream service returned status %d: %s",
			resp.StatusCode, string(respBody)))
	}
	return respBody, nil
}

// isTimeout 判断错误是否由超时导致
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ForwardRequest 转发JSON-RPC请求到下游节点
func (c *Client) ForwardRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	respBody, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	var jsonResp jsonrpc.Response
	if err := json.Unmarshal(respBody, &jsonResp); err != nil {
		return nil, InvalidResponseError(err)
	}
	c.reconcileID(req.ID, &jsonResp)

	return &jsonResp, nil
}

// ForwardBatchRequest 转发批量JSON-RPC请求到下游节点
func (c *Client) ForwardBatchRequest(ctx context.Context, requests []jsonrpc.Request) ([]jsonrpc.Response, error) {
	respBody, err := c.post(ctx, requests)
	if err != nil {
		return nil, err
	}

	var jsonResponses []jsonrpc.Response
	if err := json.Unmarshal(respBody, &jsonResponses); err != nil {
		// 部分节点对单元素批量请求返回单个对象
		var singleResp jsonrpc.Response
		if err := json.Unmarshal(respBody, &singleResp); err != nil {
			return nil, InvalidResponseError(err)
		}
		jsonResponses = []jsonrpc.Response{singleResp}
	}

	if len(jsonResponses) != len(requests) {
		return nil, BatchSizeMismatchError(len(requests), len(jsonResponses))
	}

	return OrderResponses(requests, jsonResponses, c.logger), nil
}

// OrderResponses 按请求ID匹配批量响应，返回与请求顺序一致的响应
//
// 节点可以任意顺序返回批量响应。ID为空的响应按出现顺序分配给未匹配的请求；
// 没有对应响应的请求得到内部错误。
func OrderResponses(requests []jsonrpc.Request, responses []jsonrpc.Response, logger logrus.FieldLogger) []jsonrpc.Response {
	byID := make(map[string][]int, len(responses))
	var anonymous []int
	for i := range responses {
		if responses[i].ID == nil {
			anonymous = append(anonymous, i)
			continue
		}
		key := toString(responses[i].ID)
		byID[key] = append(byID[key], i)
	}

	ordered := make([]jsonrpc.Response, len(requests))
	for i, req := range requests {
		idx := -1
		if req.ID != nil {
			key := toString(req.ID)
			if queue := byID[key]; len(queue) > 0 {
				idx, byID[key] = queue[0], queue[1:]
			}
		}
		if idx < 0 && len(anonymous) > 0 {
			idx, anonymous = anonymous[0], anonymous[1:]
		}

		if idx < 0 {
			logger.WithFields(logrus.Fields{
				"method": req.Method,
				"id":     req.ID,
			}).Warn("No downstream response for batch request")
			ordered[i] = *jsonrpc.NewErrorResponse(req.ID, jsonrpc.Errorf(jsonrpc.CodeInternalError,
				"downstream returned no response for this request"))
			continue
		}

		resp := responses[idx]
		if resp.ID == nil {
			resp.ID = req.ID
		}
		ordered[i] = resp
	}
	return ordered
}

// reconcileID 补齐缺失的响应ID，ID不一致时记录警告
func (c *Client) reconcileID(reqID interface{}, resp *jsonrpc.Response) {
	if reqID == nil {
		return
	}
	if resp.ID == nil {
		resp.ID = reqID
		return
	}
	if !compareIDs(reqID, resp.ID) {
		c.logger.WithFields(logrus.Fields{
			"expected": reqID,
			"actual":   resp.ID,
		}).Warn("Downstream response ID mismatch")
	}
}

// GasPrice 通过 eth_gasPrice 获取当前网络报价
func (c *Client) GasPrice(ctx context.Context) (insight.Quote, error) {
	req, err := jsonrpc.NewRequest(c.requestID(), methodGasPrice, nil)
	if err != nil {
		return "", WrapError(err, ErrorCodeRequestFailed, "failed to build eth_gasPrice request")
	}

	resp, err := c.ForwardRequest(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", RequestError(resp.Error)
	}

	var quote *string
	if err := json.Unmarshal(resp.Result, &quote); err != nil {
		return "", InvalidResponseError(fmt.Errorf("eth_gasPrice result is not a string: %w", err))
	}
	// 空报价会被当作"无报价"，必须按无效响应处理
	if quote == nil || *quote == "" {
		return "", InvalidResponseError(fmt.Errorf("eth_gasPrice returned an empty result"))
	}
	return insight.Quote(*quote), nil
}

func (c *Client) requestID() uint64 {
	return atomic.AddUint64(&c.nextID, 1)
}

// compareIDs 比较两个JSON-RPC ID值是否相等
func compareIDs(id1, id2 interface{}) bool {
	if id1 == nil && id2 == nil {
		return true
	}
	if id1 == nil || id2 == nil {
		return false
	}
	return toString(id1) == toString(id2)
}

// toString 将常见的ID类型转换为字符串
func toString(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TestConnection 测试下游节点连接
func (c *Client) TestConnection(ctx context.Context) error {
	req, err := jsonrpc.NewRequest(c.requestID(), methodClientVersion, nil)
	if err != nil {
		return WrapError(err, ErrorCodeRequestFailed, "failed to build connection test request")
	}

	if _, err := c.ForwardRequest(ctx, req); err != nil {
		return ConnectionError(fmt.Errorf("connection test failed: %w", err))
	}
	return nil
}

// GetEndpoint 获取下游节点端点URL
func (c *Client) GetEndpoint() string {
	return c.config.BuildURL()
}

// Close 关闭空闲连接
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
