package main

import (
	"fmt"
	"time"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag 定义命令行标志
type Flag struct {
	Name         string
	DefaultValue interface{}
	Description  string
	BindTo       string // viper 键名
}

// flags 定义所有命令行标志
var flags = []Flag{
	// HTTP 服务器配置
	{
		Name:         "http-host",
		DefaultValue: config.DefaultHTTPHost,
		Description:  "HTTP server host",
		BindTo:       "http.host",
	},
	{
		Name:         "http-port",
		DefaultValue: config.DefaultHTTPPort,
		Description:  "HTTP server port",
		BindTo:       "http.port",
	},
	{
		Name:         "http-max-request-size-mb",
		DefaultValue: config.DefaultMaxRequestSizeMB,
		Description:  "Maximum JSON-RPC request body size in MB",
		BindTo:       "http.max-request-size-mb",
	},

	// 下游节点配置
	{
		Name:         "downstream-http-host",
		DefaultValue: config.DefaultDownstreamHost,
		Description:  "Downstream node host, including scheme",
		BindTo:       "downstream.http-host",
	},
	{
		Name:         "downstream-http-port",
		DefaultValue: config.DefaultDownstreamPort,
		Description:  "Downstream node port (0 when the host already has one)",
		BindTo:       "downstream.http-port",
	},
	{
		Name:         "downstream-http-path",
		DefaultValue: config.DefaultDownstreamPath,
		Description:  "Downstream node path",
		BindTo:       "downstream.http-path",
	},
	{
		Name:         "downstream-timeout",
		DefaultValue: config.DefaultDownstreamTimeout,
		Description:  "Timeout for a single downstream request",
		BindTo:       "downstream.timeout",
	},

	// 洞察配置
	{
		Name:         "insight-default-mode",
		DefaultValue: config.DefaultInsightMode,
		Description:  "Insight mode when the request names none (cost, percent)",
		BindTo:       "insight.default-mode",
	},
	{
		Name:         "insight-quote-timeout",
		DefaultValue: config.DefaultQuoteTimeout,
		Description:  "Timeout for the eth_gasPrice quote",
		BindTo:       "insight.quote-timeout",
	},
	{
		Name:         "insight-inspect-outgoing",
		DefaultValue: false,
		Description:  "Log an insight for eth_sendTransaction/eth_signTransaction before forwarding",
		BindTo:       "insight.inspect-outgoing",
	},

	// 认证配置
	{
		Name:         "auth-enabled",
		DefaultValue: false,
		Description:  "Require a Bearer token or X-API-Key on JSON-RPC requests",
		BindTo:       "auth.enabled",
	},
	{
		Name:         "auth-secret",
		DefaultValue: "",
		Description:  "Shared secret for authentication",
		BindTo:       "auth.secret",
	},

	// 日志配置
	{
		Name:         "log-level",
		DefaultValue: config.DefaultLogLevel,
		Description:  "Log level (debug, info, warn, error, fatal)",
		BindTo:       "log.level",
	},
	{
		Name:         "log-format",
		DefaultValue: config.DefaultLogFormat,
		Description:  "Log format (json, text)",
		BindTo:       "log.format",
	},
}

// registerFlags 注册所有命令行标志并绑定到 viper
func registerFlags(cmd *cobra.Command, v *viper.Viper) error {
	for _, flag := range flags {
		switch value := flag.DefaultValue.(type) {
		case string:
			cmd.Flags().String(flag.Name, value, flag.Description)
		case int:
			cmd.Flags().Int(flag.Name, value, flag.Description)
		case int64:
			cmd.Flags().Int64(flag.Name, value, flag.Description)
		case bool:
			cmd.Flags().Bool(flag.Name, value, flag.Description)
		case time.Duration:
			cmd.Flags().Duration(flag.Name, value, flag.Description)
		default:
			return fmt.Errorf("unsupported flag type: %T for flag %s", value, flag.Name)
		}

		if err := v.BindPFlag(flag.BindTo, cmd.Flags().Lookup(flag.Name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	return nil
}
