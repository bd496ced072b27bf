package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONRPCVersion 协议版本
const JSONRPCVersion = "2.0"

// Request 表示 JSON-RPC 2.0 请求
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// Response 表示 JSON-RPC 2.0 响应
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      interface{}     `json:"id"`
}

// Error 表示 JSON-RPC 2.0 错误
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// IsBatch 判断请求体是否为批量请求（以 '[' 开头）
func IsBatch(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// ParseRequest 解析单个或批量 JSON-RPC 请求
//
// 单个请求返回长度为 1 的切片；批量请求不能为空，任一元素无效则整体失败。
func ParseRequest(data []byte) ([]Request, error) {
	if !IsBatch(data) {
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
		}
		if err := validateRequest(&req); err != nil {
			return nil, err
		}
		return []Request{req}, nil
	}

	var batch []Request
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC batch: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty batch request")
	}
	for i := range batch {
		if err := validateRequest(&batch[i]); err != nil {
			return nil, fmt.Errorf("request at index %d: %w", i, err)
		}
	}
	return batch, nil
}

func validateRequest(req *Request) error {
	if req.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %q", req.JSONRPC)
	}
	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	// ID 可以是 null、字符串或数字
	switch req.ID.(type) {
	case nil, string, float64, int, int64, uint64:
		return nil
	default:
		return fmt.Errorf("invalid id type: %T", req.ID)
	}
}

// NewRequest 创建请求，params 为 nil 时省略
func NewRequest(id interface{}, method string, params interface{}) (*Request, error) {
	req := &Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		ID:      id,
	}
	if params == nil {
		return req, nil
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	req.Params = raw
	return req, nil
}

// NewResponse 创建成功响应
func NewResponse(id interface{}, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		Result:  raw,
		ID:      id,
	}, nil
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(id interface{}, err *Error) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		Error:   err,
		ID:      id,
	}
}
