package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".txinsight"
	envPrefix  = "TXINSIGHT"
)

// Execute 执行根命令
func Execute() {
	cmd, err := newRootCmd(viper.New())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register flags: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd 创建根命令，标志和配置绑定到 v
func newRootCmd(v *viper.Viper) (*cobra.Command, error) {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "txinsight",
		Short: "txinsight-go estimates the gas fee of outgoing wallet transfers",
		Long: `txinsight-go is a JSON-RPC side service for wallets.

It provides an HTTP JSON-RPC interface that:
1. Answers insight_onTransaction with the estimated gas fee of a transfer,
   in gwei or as a share of the amount sent
2. Optionally logs the same insight for eth_sendTransaction and eth_signTransaction
3. Forwards every other JSON-RPC method to a downstream node`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.txinsight.yaml)")
	if err := registerFlags(cmd, v); err != nil {
		return nil, err
	}
	return cmd, nil
}

// initConfig 初始化配置来源：配置文件、环境变量
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 显式指定的配置文件必须存在
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// loadConfig 解码并验证配置
func loadConfig(v *viper.Viper) (*config.Config, error) {
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return &cfg, nil
}

// run 启动服务器并等待中断信号
func run(ctx context.Context, cfg *config.Config) error {
	fmt.Printf("Starting txinsight-go with configuration: %s\n", cfg.String())

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}

	fmt.Println("Server shutdown complete")
	return nil
}
