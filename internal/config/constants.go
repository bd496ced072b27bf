package config

import "time"

const (
	// MaxPort 最大端口号
	MaxPort = 65535

	// LogLevelDebug 调试日志级别
	LogLevelDebug = "debug"
	// LogLevelInfo 信息日志级别
	LogLevelInfo = "info"
	// LogLevelWarn 警告日志级别
	LogLevelWarn = "warn"
	// LogLevelError 错误日志级别
	LogLevelError = "error"
	// LogLevelFatal 致命日志级别
	LogLevelFatal = "fatal"

	// LogFormatJSON JSON 日志格式
	LogFormatJSON = "json"
	// LogFormatText 文本日志格式
	LogFormatText = "text"

	// InsightModeCost 以 gwei 展示预计手续费
	InsightModeCost = "cost"
	// InsightModePercent 以转账总额百分比展示手续费
	InsightModePercent = "percent"

	// DefaultHTTPHost 默认 HTTP 主机
	DefaultHTTPHost = "localhost"
	// DefaultHTTPPort 默认 HTTP 端口
	DefaultHTTPPort = 9100
	// DefaultMaxRequestSizeMB 默认最大请求大小（MB）
	DefaultMaxRequestSizeMB int64 = 10

	// DefaultDownstreamHost 默认下游节点主机（完整URL）
	DefaultDownstreamHost = "http://localhost"
	// DefaultDownstreamPort 默认下游节点端口
	DefaultDownstreamPort = 8545
	// DefaultDownstreamPath 默认下游节点路径
	DefaultDownstreamPath = "/"
	// DefaultDownstreamTimeout 默认下游请求超时
	DefaultDownstreamTimeout = 30 * time.Second

	// DefaultInsightMode 默认洞察模式
	DefaultInsightMode = InsightModePercent
	// DefaultQuoteTimeout 默认报价超时
	DefaultQuoteTimeout = 3 * time.Second

	// DefaultLogLevel 默认日志级别
	DefaultLogLevel = LogLevelInfo
	// DefaultLogFormat 默认日志格式
	DefaultLogFormat = LogFormatJSON
)

// Validator 验证器接口
type Validator interface {
	Validate() error
}

// 有效的日志级别
var validLogLevels = map[string]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
	LogLevelFatal: true,
}

// 有效的日志格式
var validLogFormats = map[string]bool{
	LogFormatJSON: true,
	LogFormatText: true,
}

var validInsightModes = map[string]bool{
	InsightModeCost:    true,
	InsightModePercent: true,
}
