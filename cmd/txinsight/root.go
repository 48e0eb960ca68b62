package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/server"
)

var cfgFile string

// rootCmd 表示基础命令
var rootCmd = &cobra.Command{
	Use:   "txinsight",
	Short: "txinsight-go explains what an outgoing transaction will call",
	Long: `txinsight-go inspects an outgoing transaction before it is signed.

It resolves the 4-byte selector of the call data against a public signature
directory, decodes the arguments and returns a human-readable insight:
1. POST /v1/insights with {"transaction": {...}}
2. JSON-RPC txinsight_onTransaction, txinsight_resolveSignature and txinsight_decodeCallData on POST /
3. txinsight inspect for one-off inspection from the command line`,
	Version: Version,
	Run:     run,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局标志
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.txinsight.yaml)")

	// 注册所有标志
	if err := registerFlags(rootCmd, viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(inspectCmd, versionCmd)
}

// initConfig 初始化配置
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".txinsight")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TXINSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig 从 viper 读取并验证配置
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

// run 是主命令的执行函数
func run(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 打印配置摘要
	fmt.Printf("Starting txinsight-go with configuration: %s\n", cfg.String())

	// 创建并启动服务器
	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}

	// 等待中断信号
	waitForInterrupt(srv)
}

// waitForInterrupt 等待中断信号并优雅关闭服务器
func waitForInterrupt(srv *server.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	fmt.Printf("\nReceived signal: %v. Shutting down...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		return
	}

	fmt.Println("Server shutdown complete")
}
