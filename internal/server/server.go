package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/downstream"
	"github.com/mowind/txinsight-go/internal/router"
	"github.com/sirupsen/logrus"
)

const (
	// ShutdownTimeout 优雅关闭的最长等待时间
	ShutdownTimeout = 30 * time.Second

	readHeaderTimeout = 5 * time.Second
)

// Server 表示 HTTP 服务器
type Server struct {
	config        *config.Config
	router        *gin.Engine
	server        *http.Server
	logger        *logrus.Logger
	jsonRPCRouter *router.Router
	client        downstream.ClientInterface
	listener      net.Listener
}

// New 创建新的 HTTP 服务器
func New(cfg *config.Config) (*Server, error) {
	return NewBuilder(cfg).Build()
}

// Handler 返回服务器的 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 返回实际监听的地址，未启动时返回配置的地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.HTTP.Host, s.config.HTTP.Port)
}

// Start 启动 HTTP 服务器
//
// 监听失败时同步返回错误，之后的请求在后台处理。
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"addr":       s.Addr(),
		"downstream": s.client.GetEndpoint(),
	}).Info("Starting HTTP server")

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// Stop 优雅停止 HTTP 服务器并释放下游连接
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.server != nil {
		s.logger.Info("Shutting down HTTP server")
		err = s.server.Shutdown(ctx)
	}
	if s.client != nil {
		if closeErr := s.client.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
