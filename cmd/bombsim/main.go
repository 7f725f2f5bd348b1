// bombsim 网格炸弹人模拟的命令行入口
//
// Usage:
//
//	bombsim run               - 自动驾驶无头跑完一整局
//	bombsim serve             - 启动快照宿主，观看端用 cmd/client 连接
//	bombsim scores            - 查看历史最高分
//	bombsim verify <token>    - 校验结算凭证
//
// Global flags:
//
//	--config <path>    - 配置文件路径
//	--log-level <lvl>  - 覆盖配置里的日志级别
//	--seed <value>     - 覆盖配置里的关卡种子
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bombsim/internal/config"
)

var (
	flagConfig   string
	flagLogLevel string
	flagSeed     int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bombsim",
	Short: "Grid bomb game simulation",
	Long: `bombsim drives a deterministic grid bomb game simulation.

Available commands:
  run      - Play a full session headless with the autopilot
  serve    - Host a session and stream snapshots to viewers
  scores   - View high scores
  verify   - Check a signed result receipt

Examples:
  bombsim run --seed 42
  bombsim serve --proto kcp
  bombsim scores
  bombsim verify eyJhbGciOi...`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: search ~/.bombsim, ./configs, embedded)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Level seed override (0 = use config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(verifyCmd)
}

// loadConfig 读取配置并应用全局覆盖参数
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagSeed != 0 {
		cfg.Level.Seed = flagSeed
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           cfg.Log.ParsedLevel(),
		Prefix:          "bombsim",
	})
}
