// Package config 读取 bombsim 的 YAML 配置
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"bombsim/pkg/ai"
	"bombsim/pkg/core"
)

// ErrInvalidConfig 配置值不可用
var ErrInvalidConfig = errors.New("invalid config")

// Config 顶层配置
type Config struct {
	Engine  core.Config   `yaml:"engine"`
	Level   LevelConfig   `yaml:"level"`
	AI      AIConfig      `yaml:"ai"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Receipt ReceiptConfig `yaml:"receipt"`
	Log     LogConfig     `yaml:"log"`
}

// LevelConfig 关卡生成参数
type LevelConfig struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`
}

// AIConfig AI 预设名（normal / hard）
type AIConfig struct {
	Enemy     string `yaml:"enemy"`
	Autopilot string `yaml:"autopilot"`
}

// EnemyPreset 敌人 AI 参数
func (c AIConfig) EnemyPreset() ai.AIConfig {
	return ai.ConfigByName(c.Enemy)
}

// AutopilotPreset 自动驾驶参数
func (c AIConfig) AutopilotPreset() ai.AIConfig {
	return ai.ConfigByName(c.Autopilot)
}

// ServerConfig 快照宿主
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	Proto        string        `yaml:"proto"` // tcp 或 kcp
	TPS          int           `yaml:"tps"`
	MaxViewers   int           `yaml:"max_viewers"`
	InputRate    float64       `yaml:"input_rate"` // 每秒允许的输入包数
	InputBurst   int           `yaml:"input_burst"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Heartbeat    time.Duration `yaml:"heartbeat"`
	RestartDelay time.Duration `yaml:"restart_delay"` // 终局后重开的等待时间
}

// StorageConfig 成绩库
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ReceiptConfig 结算凭证，密钥从 BOMBSIM_SECRET 读取
type ReceiptConfig struct {
	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

// LogConfig 日志
type LogConfig struct {
	Level string `yaml:"level"`
}

// ParsedLevel 解析日志级别，无法识别时为 Info
func (c LogConfig) ParsedLevel() log.Level {
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Default 代码内默认值，与 defaults/bombsim.yaml 保持一致
func Default() Config {
	return Config{
		Engine: core.DefaultConfig(),
		Level: LevelConfig{
			Width:  core.DefaultGridWidth,
			Height: core.DefaultGridHeight,
			Seed:   1,
		},
		AI: AIConfig{
			Enemy:     "normal",
			Autopilot: "hard",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			Proto:        "tcp",
			TPS:          60,
			MaxViewers:   8,
			InputRate:    120,
			InputBurst:   30,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: time.Second,
			Heartbeat:    5 * time.Second,
			RestartDelay: 5 * time.Second,
		},
		Storage: StorageConfig{
			Path: "~/.bombsim/scores.db",
		},
		Receipt: ReceiptConfig{
			Issuer: "bombsim",
			TTL:    30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate 检查会让模拟或宿主无法运行的取值
func (c Config) Validate() error {
	switch {
	case c.Engine.Bomb.Fuse <= 0:
		return fmt.Errorf("%w: engine.bomb.fuse must be positive", ErrInvalidConfig)
	case c.Engine.Player.Lives <= 0:
		return fmt.Errorf("%w: engine.player.lives must be positive", ErrInvalidConfig)
	case c.Engine.Player.BaseSpeed <= 0:
		return fmt.Errorf("%w: engine.player.base_speed must be positive", ErrInvalidConfig)
	case c.Engine.Bomb.EnemyBombRange < 0 || c.Engine.Player.StartFireRange < 0 || c.Engine.Player.MaxFireRange < 0:
		return fmt.Errorf("%w: fire ranges must not be negative", ErrInvalidConfig)
	case c.Engine.Player.StartFireRange > c.Engine.Player.MaxFireRange:
		return fmt.Errorf("%w: engine.player.start_fire_range above max_fire_range", ErrInvalidConfig)
	case c.Engine.MaxDelta <= 0:
		return fmt.Errorf("%w: engine.max_delta must be positive", ErrInvalidConfig)
	case c.Engine.FinalLevel < 1:
		return fmt.Errorf("%w: engine.final_level must be at least 1", ErrInvalidConfig)
	case c.Level.Width < core.MinGridSize || c.Level.Height < core.MinGridSize:
		return fmt.Errorf("%w: level grid %dx%d smaller than %d", ErrInvalidConfig, c.Level.Width, c.Level.Height, core.MinGridSize)
	case c.Server.TPS < 1 || c.Server.TPS > 240:
		return fmt.Errorf("%w: server.tps %d out of range", ErrInvalidConfig, c.Server.TPS)
	case c.Server.Proto != "tcp" && c.Server.Proto != "kcp":
		return fmt.Errorf("%w: server.proto %q", ErrInvalidConfig, c.Server.Proto)
	case c.Server.MaxViewers < 1:
		return fmt.Errorf("%w: server.max_viewers must be at least 1", ErrInvalidConfig)
	case c.Server.Heartbeat <= 0 || c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0:
		return fmt.Errorf("%w: server timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}
