package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/bombsim.yaml
var defaultYAML []byte

const fileName = "bombsim.yaml"

// Load 读取配置
// 查找顺序: customPath -> ~/.bombsim/bombsim.yaml -> ./configs/bombsim.yaml -> 内嵌默认值
// 文件只需写出要覆盖的字段
func Load(customPath string) (Config, error) {
	// 指定路径时读不到就是错误
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("读取配置 %s 失败: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("解析配置 %s 失败: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, p := range []string{userConfigPath(), filepath.Join("configs", fileName)} {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		cfg, err := parse(data)
		if err != nil {
			log.Warn("配置文件无效，已跳过", "path", p, "err", err)
			continue
		}
		return cfg, nil
	}

	cfg, err := parse(defaultYAML)
	if err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// parse 在默认值之上叠加 YAML
func parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bombsim", fileName)
}
