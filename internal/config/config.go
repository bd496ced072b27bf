package config

import (
	"fmt"
	"strings"
	"time"
)

// Config 表示应用程序的完整配置
type Config struct {
	// HTTP 服务器配置
	HTTP HTTPConfig `mapstructure:"http"`

	// 下游节点配置
	Downstream DownstreamConfig `mapstructure:"downstream"`

	// 手续费洞察配置
	Insight InsightConfig `mapstructure:"insight"`

	// 认证配置
	Auth AuthConfig `mapstructure:"auth"`

	// 日志配置
	Log LogConfig `mapstructure:"log"`
}

// HTTPConfig 定义 HTTP 服务器配置
type HTTPConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	MaxRequestSizeMB int64  `mapstructure:"max-request-size-mb"`
}

// Validate 验证 HTTP 配置
func (c *HTTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("http-host is required")
	}
	if c.Port <= 0 || c.Port > MaxPort {
		return fmt.Errorf("http-port must be between 1 and %d", MaxPort)
	}
	if c.MaxRequestSizeMB == 0 {
		c.MaxRequestSizeMB = DefaultMaxRequestSizeMB
	}
	if c.MaxRequestSizeMB < 0 {
		return fmt.Errorf("http-max-request-size-mb must be positive")
	}
	return nil
}

// MaxRequestBytes 返回请求体大小上限（字节）
func (c *HTTPConfig) MaxRequestBytes() int64 {
	if c.MaxRequestSizeMB <= 0 {
		return DefaultMaxRequestSizeMB << 20
	}
	return c.MaxRequestSizeMB << 20
}

// DownstreamConfig 定义下游节点配置
type DownstreamConfig struct {
	HTTPHost string        `mapstructure:"http-host"` // 完整的host，如 http://127.0.0.1 或 https://rpc.example.com
	HTTPPort int           `mapstructure:"http-port"` // 端口，host中已包含端口或不需要端口时为0
	HTTPPath string        `mapstructure:"http-path"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Validate 验证下游节点配置
func (c *DownstreamConfig) Validate() error {
	if c.HTTPHost == "" {
		return fmt.Errorf("downstream-http-host is required")
	}
	if !strings.HasPrefix(c.HTTPHost, "http://") && !strings.HasPrefix(c.HTTPHost, "https://") {
		return fmt.Errorf("downstream-http-host must start with http:// or https://")
	}
	if c.HTTPPort < 0 || c.HTTPPort > MaxPort {
		return fmt.Errorf("downstream-http-port must be between 0 and %d", MaxPort)
	}
	if c.HTTPPath == "" {
		c.HTTPPath = DefaultDownstreamPath
	}
	if !strings.HasPrefix(c.HTTPPath, "/") {
		c.HTTPPath = "/" + c.HTTPPath
	}
	if c.Timeout < 0 {
		return fmt.Errorf("downstream-timeout must not be negative")
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultDownstreamTimeout
	}
	return nil
}

// BuildURL 构建完整的下游节点URL
func (c *DownstreamConfig) BuildURL() string {
	baseURL := strings.TrimSuffix(c.HTTPHost, "/")
	if c.HTTPPort > 0 && !hasPort(baseURL) {
		baseURL = fmt.Sprintf("%s:%d", baseURL, c.HTTPPort)
	}
	return baseURL + c.HTTPPath
}

// hasPort 检查URL是否已经包含端口
func hasPort(url string) bool {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	if i := strings.Index(url, "/"); i >= 0 {
		url = url[:i]
	}

	lastColon := strings.LastIndex(url, ":")
	if lastColon == -1 || lastColon == len(url)-1 {
		return false
	}
	for _, ch := range url[lastColon+1:] {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// InsightConfig 定义手续费洞察配置
type InsightConfig struct {
	// DefaultMode 请求未指定模式时使用，cost 或 percent
	DefaultMode string `mapstructure:"default-mode"`
	// QuoteTimeout 单次 eth_gasPrice 报价的超时时间
	QuoteTimeout time.Duration `mapstructure:"quote-timeout"`
	// InspectOutgoing 为 true 时，eth_sendTransaction / eth_signTransaction 在转发前记录洞察
	InspectOutgoing bool `mapstructure:"inspect-outgoing"`
}

// Validate 验证洞察配置
func (c *InsightConfig) Validate() error {
	if c.DefaultMode == "" {
		c.DefaultMode = DefaultInsightMode
	}
	c.DefaultMode = strings.ToLower(strings.TrimSpace(c.DefaultMode))
	if !validInsightModes[c.DefaultMode] {
		return fmt.Errorf("insight-default-mode must be one of: cost, percent, got: %s", c.DefaultMode)
	}
	if c.QuoteTimeout < 0 {
		return fmt.Errorf("insight-quote-timeout must not be negative")
	}
	if c.QuoteTimeout == 0 {
		c.QuoteTimeout = DefaultQuoteTimeout
	}
	return nil
}

// AuthConfig 定义认证配置
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
}

// Validate 验证认证配置
func (c *AuthConfig) Validate() error {
	if c.Enabled && c.Secret == "" {
		return fmt.Errorf("auth-secret is required when auth is enabled")
	}
	return nil
}

// LogConfig 定义日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	if c.Level == "" {
		c.Level = DefaultLogLevel
	}
	if c.Format == "" {
		c.Format = DefaultLogFormat
	}
	if !validLogLevels[strings.ToLower(c.Level)] {
		return fmt.Errorf("log-level must be one of: debug, info, warn, error, fatal, got: %s", c.Level)
	}
	if !validLogFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("log-format must be one of: json, text, got: %s", c.Format)
	}
	return nil
}

// Validate 验证配置是否有效，并补齐默认值
func (c *Config) Validate() error {
	validators := []Validator{&c.HTTP, &c.Downstream, &c.Insight, &c.Auth, &c.Log}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String 返回配置的安全摘要（不包含敏感信息）
func (c *Config) String() string {
	secret := ""
	if c.Auth.Secret != "" {
		secret = "[REDACTED]"
	}
	return fmt.Sprintf(
		"HTTP: {Host: %s, Port: %d, MaxRequestSizeMB: %d}, "+
			"Downstream: {Host: %s, Port: %d, Path: %s, Timeout: %s}, "+
			"Insight: {DefaultMode: %s, QuoteTimeout: %s, InspectOutgoing: %t}, "+
			"Auth: {Enabled: %t, Secret: %s}, "+
			"Log: {Level: %s, Format: %s}",
		c.HTTP.Host, c.HTTP.Port, c.HTTP.MaxRequestSizeMB,
		c.Downstream.HTTPHost, c.Downstream.HTTPPort, c.Downstream.HTTPPath, c.Downstream.Timeout,
		c.Insight.DefaultMode, c.Insight.QuoteTimeout, c.Insight.InspectOutgoing,
		c.Auth.Enabled, secret,
		c.Log.Level, c.Log.Format,
	)
}
