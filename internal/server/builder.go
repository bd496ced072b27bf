package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/downstream"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/router"
	"github.com/sirupsen/logrus"
	ginlogrus "github.com/toorop/gin-logrus"
)

// readyCheckTimeout 就绪检查访问下游节点的超时
const readyCheckTimeout = 5 * time.Second

// 无需认证的路径
var authWhitelist = []string{"/health", "/ready"}

// Builder 服务器构建器
type Builder struct {
	cfg    *config.Config
	client downstream.ClientInterface
}

// NewBuilder 创建新的服务器构建器
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithClient 使用指定的下游客户端，而不是按配置创建
func (b *Builder) WithClient(client downstream.ClientInterface) *Builder {
	b.client = client
	return b
}

// Build 构建服务器
func (b *Builder) Build() (*Server, error) {
	b.setGinMode()

	logger, err := b.createLogger()
	if err != nil {
		return nil, err
	}

	mode, err := insight.ParseMode(b.cfg.Insight.DefaultMode, insight.DefaultMode)
	if err != nil {
		return nil, err
	}

	client := b.client
	if client == nil {
		client = downstream.NewClient(&b.cfg.Downstream, logger)
	}

	insightHandler := insight.NewHandler(client, logger, b.cfg.Insight.QuoteTimeout)
	jsonRPCRouter := router.NewRouterFactory(logger).CreateRouter(insightHandler, client, router.Options{
		DefaultMode:     mode,
		InspectOutgoing: b.cfg.Insight.InspectOutgoing,
		MaxRequestSize:  b.cfg.HTTP.MaxRequestBytes(),
	})

	s := &Server{
		config:        b.cfg,
		router:        b.createGinRouter(jsonRPCRouter, client, logger),
		logger:        logger,
		jsonRPCRouter: jsonRPCRouter,
		client:        client,
	}
	return s, nil
}

// setGinMode 设置 gin 模式
func (b *Builder) setGinMode() {
	if b.cfg.Log.Level == config.LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// createLogger 创建日志器
func (b *Builder) createLogger() (*logrus.Logger, error) {
	cfg := apperrors.DefaultLoggerConfig()
	if b.cfg.Log.Level != "" {
		cfg.Level = b.cfg.Log.Level
	}
	if b.cfg.Log.Format != "" {
		cfg.Format = b.cfg.Log.Format
	}

	logger, err := apperrors.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return logger.GetUnderlying(), nil
}

// createGinRouter 创建 gin 路由器并注册所有端点
func (b *Builder) createGinRouter(jsonRPCRouter *router.Router, client downstream.ClientInterface, logger *logrus.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(ginlogrus.Logger(logger, authWhitelist...))
	engine.Use(AuthMiddleware(b.cfg.Auth.Enabled, b.cfg.Auth.Secret, authWhitelist))

	engine.GET("/health", b.healthHandler())
	engine.GET("/ready", b.readyHandler(client, logger))
	engine.POST("/", b.jsonRPCHandler(jsonRPCRouter, logger))

	return engine
}

// healthHandler 存活检查
func (b *Builder) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readyHandler 就绪检查，确认下游节点可达
func (b *Builder) readyHandler(client downstream.ClientInterface, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
		defer cancel()

		if err := client.TestConnection(ctx); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": apperrors.GetRequestID(c.Request.Context()),
				"endpoint":   client.GetEndpoint(),
			}).Warn("Downstream not ready")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// jsonRPCHandler 把 JSON-RPC 请求交给路由器
func (b *Builder) jsonRPCHandler(jsonRPCRouter *router.Router, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		entry := logger.WithContext(ctx).WithField("request_id", apperrors.GetRequestID(ctx))
		jsonRPCRouter.HandleHTTPRequestWithContext(c.Writer, c.Request, entry)
	}
}
