package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mowind/txinsight-go/internal/config"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transferTx = `{"to":"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd","gas":"0x5208","maxFeePerGas":"0x77359400","maxPriorityFeePerGas":"0x3b9aca00","value":"0xde0b6b3a7640000"}`

// mockNode 模拟下游以太坊节点
type mockNode struct {
	*httptest.Server
	calls   int32
	batches int32
}

func newMockNode(t *testing.T) *mockNode {
	t.Helper()
	node := &mockNode{}
	node.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&node.calls, 1)
		body, _ := io.ReadAll(r.Body)

		requests, err := jsonrpc.ParseRequest(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		responses := make([]*jsonrpc.Response, len(requests))
		for i, req := range requests {
			var result string
			switch req.Method {
			case "eth_gasPrice":
				result = "0x3b9aca00"
			case "web3_clientVersion":
				result = "mock/v1"
			default:
				result = "node:" + req.Method
			}
			responses[i], _ = jsonrpc.NewResponse(req.ID, result)
		}

		w.Header().Set("Content-Type", "application/json")
		if jsonrpc.IsBatch(body) {
			atomic.AddInt32(&node.batches, 1)
			_ = json.NewEncoder(w).Encode(responses)
			return
		}
		_ = json.NewEncoder(w).Encode(responses[0])
	}))
	t.Cleanup(node.Close)
	return node
}

func testConfig(nodeURL string) *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: 0},
		Downstream: config.DownstreamConfig{
			HTTPHost: nodeURL,
			HTTPPath: "/",
			Timeout:  2 * time.Second,
		},
		Insight: config.InsightConfig{
			DefaultMode:  config.InsightModeCost,
			QuoteTimeout: time.Second,
		},
		Log: config.LogConfig{Level: config.LogLevelError},
	}
}

func buildServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewBuilder(cfg).Build()
	require.NoError(t, err)
	return s
}

func post(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBuilder_setGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		expected string
	}{
		{config.LogLevelDebug, gin.DebugMode},
		{config.LogLevelInfo, gin.ReleaseMode},
		{config.LogLevelError, gin.ReleaseMode},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			NewBuilder(&config.Config{Log: config.LogConfig{Level: tt.logLevel}}).setGinMode()
			assert.Equal(t, tt.expected, gin.Mode())
		})
	}
}

func TestBuilder_createLogger(t *testing.T) {
	logger, err := NewBuilder(&config.Config{}).createLogger()
	require.NoError(t, err)
	assert.Equal(t, "info", logger.GetLevel().String())

	logger, err = NewBuilder(&config.Config{Log: config.LogConfig{Level: "debug", Format: "text"}}).createLogger()
	require.NoError(t, err)
	assert.Equal(t, "debug", logger.GetLevel().String())

	_, err = NewBuilder(&config.Config{Log: config.LogConfig{Level: "loud"}}).createLogger()
	assert.Error(t, err)
}

func TestBuilder_InvalidMode(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Insight.DefaultMode = "fiat"

	_, err := NewBuilder(cfg).Build()
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	s := buildServer(t, testConfig("http://127.0.0.1:1"))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, w.Header().Get(apperrors.RequestIDHeader))
}

func TestServer_Ready(t *testing.T) {
	t.Run("downstream reachable", func(t *testing.T) {
		node := newMockNode(t)
		s := buildServer(t, testConfig(node.URL))

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ready"`)
	})

	t.Run("downstream down", func(t *testing.T) {
		node := newMockNode(t)
		url := node.URL
		node.Close()

		s := buildServer(t, testConfig(url))

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestServer_InsightRequest(t *testing.T) {
	node := newMockNode(t)
	s := buildServer(t, testConfig(node.URL))

	body := fmt.Sprintf(`{"jsonrpc":"2.0","method":"insight_onTransaction","params":[%s],"id":1}`, transferTx)
	w := post(t, s.Handler(), body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result struct {
			Content struct {
				Children []struct {
					Type  string `json:"type"`
					Value string `json:"value"`
				} `json:"children"`
			} `json:"content"`
			Mode        string `json:"mode"`
			Fingerprint string `json:"fingerprint"`
		} `json:"result"`
		Error *jsonrpc.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)

	// min(2 gwei, 1 gwei + 1 gwei) * 21000
	require.Len(t, resp.Result.Content.Children, 2)
	assert.Equal(t, "Estimated gas fee for this transfer: **42000 gwei**.", resp.Result.Content.Children[1].Value)
	assert.Equal(t, "cost", resp.Result.Mode)
	assert.True(t, strings.HasPrefix(resp.Result.Fingerprint, "0x"))

	// 只有 eth_gasPrice 报价请求
	assert.Equal(t, int32(1), atomic.LoadInt32(&node.calls))
}

func TestServer_ForwardAndBatch(t *testing.T) {
	node := newMockNode(t)
	s := buildServer(t, testConfig(node.URL))

	w := post(t, s.Handler(), `{"jsonrpc":"2.0","method":"eth_blockNumber","id":"a"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":"node:eth_blockNumber","id":"a"}`, w.Body.String())

	batch := fmt.Sprintf(`[
		{"jsonrpc":"2.0","method":"eth_chainId","id":1},
		{"jsonrpc":"2.0","method":"insight_onTransaction","params":[%s,{"mode":"percent"}],"id":2},
		{"jsonrpc":"2.0","method":"eth_accounts","id":3}
	]`, transferTx)
	w = post(t, s.Handler(), batch, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var responses []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responses))
	require.Len(t, responses, 3)
	assert.Equal(t, float64(1), responses[0]["id"])
	assert.Equal(t, "node:eth_chainId", responses[0]["result"])
	assert.Equal(t, float64(2), responses[1]["id"])
	assert.Equal(t, "percent", responses[1]["result"].(map[string]interface{})["mode"])
	assert.Equal(t, float64(3), responses[2]["id"])
	assert.Equal(t, "node:eth_accounts", responses[2]["result"])

	assert.Equal(t, int32(1), atomic.LoadInt32(&node.batches))
}

func TestServer_Auth(t *testing.T) {
	node := newMockNode(t)
	cfg := testConfig(node.URL)
	cfg.Auth = config.AuthConfig{Enabled: true, Secret: "s3cret"}
	s := buildServer(t, cfg)

	body := `{"jsonrpc":"2.0","method":"eth_chainId","id":1}`
	assert.Equal(t, http.StatusUnauthorized, post(t, s.Handler(), body, nil).Code)
	assert.Equal(t, http.StatusOK, post(t, s.Handler(), body, map[string]string{"X-API-Key": "s3cret"}).Code)
	assert.Equal(t, http.StatusOK, post(t, s.Handler(), body, map[string]string{"Authorization": "Bearer s3cret"}).Code)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RequestTooLarge(t *testing.T) {
	node := newMockNode(t)
	cfg := testConfig(node.URL)
	cfg.HTTP.MaxRequestSizeMB = 1
	s := buildServer(t, cfg)

	padding := strings.Repeat("0", 2<<20)
	body := fmt.Sprintf(`{"jsonrpc":"2.0","method":"eth_call","params":["0x%s"],"id":1}`, padding)
	w := post(t, s.Handler(), body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&node.calls))
}

func TestServer_StartStop(t *testing.T) {
	node := newMockNode(t)
	s := buildServer(t, testConfig(node.URL))

	require.NoError(t, s.Start())
	addr := s.Addr()
	assert.NotEqual(t, "127.0.0.1:0", addr)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, err = http.Get("http://" + addr + "/health")
	assert.Error(t, err)
}
