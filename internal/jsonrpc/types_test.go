package jsonrpc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   string
	}{
		{name: "single", data: `{"jsonrpc":"2.0","method":"insight_onTransaction","params":[{}],"id":1}`, wantCount: 1},
		{name: "string id", data: `{"jsonrpc":"2.0","method":"eth_chainId","id":"abc"}`, wantCount: 1},
		{name: "null id", data: `{"jsonrpc":"2.0","method":"eth_chainId","id":null}`, wantCount: 1},
		{name: "batch", data: ` [{"jsonrpc":"2.0","method":"eth_chainId","id":1},{"jsonrpc":"2.0","method":"eth_gasPrice","id":2}]`, wantCount: 2},
		{name: "batch of one", data: `[{"jsonrpc":"2.0","method":"eth_chainId","id":1}]`, wantCount: 1},
		{name: "invalid json", data: `invalid json`, wantErr: "invalid JSON-RPC request"},
		{name: "invalid batch json", data: `[{"jsonrpc":"2.0"`, wantErr: "invalid JSON-RPC batch"},
		{name: "empty batch", data: `[]`, wantErr: "empty batch"},
		{name: "wrong version", data: `{"jsonrpc":"1.0","method":"eth_chainId","id":1}`, wantErr: "invalid jsonrpc version"},
		{name: "missing method", data: `{"jsonrpc":"2.0","id":1}`, wantErr: "method is required"},
		{name: "object id", data: `{"jsonrpc":"2.0","method":"eth_chainId","id":{"a":1}}`, wantErr: "invalid id type"},
		{name: "bad element in batch", data: `[{"jsonrpc":"2.0","method":"eth_chainId","id":1},{"jsonrpc":"2.0","id":2}]`, wantErr: "index 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests, err := ParseRequest([]byte(tt.data))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest failed: %v", err)
			}
			if len(requests) != tt.wantCount {
				t.Errorf("Expected %d requests, got %d", tt.wantCount, len(requests))
			}
		})
	}
}

func TestParseRequest_KeepsParamsRaw(t *testing.T) {
	params := `[{"gas":"0x5208","value":"0xDE0B6B3A7640000"},{"mode":"cost"}]`
	requests, err := ParseRequest([]byte(`{"jsonrpc":"2.0","method":"insight_onTransaction","params":` + params + `,"id":1}`))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if string(requests[0].Params) != params {
		t.Errorf("Params changed: %s", requests[0].Params)
	}
	if requests[0].ID != float64(1) {
		t.Errorf("Expected id 1, got %v", requests[0].ID)
	}
}

func TestIsBatch(t *testing.T) {
	tests := map[string]bool{
		`[{}]`:      true,
		"\n\t [ ]":  true,
		`{"id":1}`:  false,
		``:          false,
		`   `:       false,
		`"[quoted"`: false,
	}
	for data, want := range tests {
		if got := IsBatch([]byte(data)); got != want {
			t.Errorf("IsBatch(%q) = %v, want %v", data, got, want)
		}
	}
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest(7, "eth_gasPrice", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if req.Params != nil {
		t.Errorf("Expected params to be omitted, got %s", string(req.Params))
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"jsonrpc":"2.0","method":"eth_gasPrice","id":7}` {
		t.Errorf("Unexpected encoding: %s", string(data))
	}

	req, err = NewRequest("a", "eth_getBalance", []string{"0x1", "latest"})
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if string(req.Params) != `["0x1","latest"]` {
		t.Errorf("Unexpected params: %s", string(req.Params))
	}

	if _, err := NewRequest(1, "eth_call", make(chan int)); err == nil {
		t.Error("Expected error for unencodable params")
	}
}

func TestResponses_Encoding(t *testing.T) {
	ok, err := NewResponse("x", map[string]string{"mode": "cost"})
	if err != nil {
		t.Fatalf("NewResponse failed: %v", err)
	}
	data, _ := json.Marshal(ok)
	if string(data) != `{"jsonrpc":"2.0","result":{"mode":"cost"},"id":"x"}` {
		t.Errorf("Unexpected success encoding: %s", data)
	}

	failed := NewErrorResponse(nil, Errorf(CodeInvalidParams, "Invalid params: %s", "gas"))
	data, _ = json.Marshal(failed)
	if string(data) != `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params: gas"},"id":null}` {
		t.Errorf("Unexpected error encoding: %s", data)
	}

	if _, err := NewResponse(1, func() {}); err == nil {
		t.Error("Expected error for unencodable result")
	}
}

func TestNewServerError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		wantCode int
	}{
		{"in range", CodeServerErrorStart - 3, CodeServerErrorStart - 3},
		{"range end", CodeServerErrorEnd, CodeServerErrorEnd},
		{"below range", CodeServerErrorEnd - 1, CodeInternalError},
		{"standard code", CodeInvalidParams, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewServerError(tt.code, "Quote unavailable", "timeout")
			if err.Code != tt.wantCode {
				t.Errorf("Expected code %d, got %d", tt.wantCode, err.Code)
			}
			if err.Data != "timeout" {
				t.Errorf("Expected data 'timeout', got %v", err.Data)
			}
		})
	}
}

func TestIsServerError(t *testing.T) {
	for code, want := range map[int]bool{
		-32000: true,
		-32050: true,
		-32099: true,
		-32100: false,
		-31999: false,
		-32603: false,
	} {
		if got := IsServerError(code); got != want {
			t.Errorf("IsServerError(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestError_Error(t *testing.T) {
	var err error = Errorf(CodeMethodNotFound, "Method not found")
	if err.Error() != "JSON-RPC error -32601: Method not found" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	withData := &Error{Code: CodeInvalidParams, Message: "Invalid params", Data: "gas"}
	if withData.Error() != "JSON-RPC error -32602: Invalid params (data: gas)" {
		t.Errorf("Unexpected message: %s", withData.Error())
	}

	var rpcErr *Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != CodeMethodNotFound {
		t.Errorf("errors.As failed for %v", err)
	}
}
