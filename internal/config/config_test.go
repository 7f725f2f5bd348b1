package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"bombsim/pkg/ai"
)

// isolate 屏蔽用户目录与工作目录下的配置文件
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestEmbeddedMatchesDefault(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded defaults drifted from Default()\n got: %+v\nwant: %+v", cfg, Default())
	}
}

func TestLoadCustomOverridesOnlyGivenFields(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("engine:\n  bomb:\n    fuse: 3.5\nserver:\n  proto: kcp\n  heartbeat: 2s\nai:\n  enemy: hard\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Engine.Bomb.Fuse != 3.5 {
		t.Errorf("fuse = %v, want 3.5", cfg.Engine.Bomb.Fuse)
	}
	if cfg.Engine.Bomb.SlideSpeed != Default().Engine.Bomb.SlideSpeed {
		t.Errorf("unset fields should keep defaults, got slide speed %v", cfg.Engine.Bomb.SlideSpeed)
	}
	if cfg.Server.Proto != "kcp" || cfg.Server.Heartbeat != 2*time.Second {
		t.Errorf("server section not applied: %+v", cfg.Server)
	}
	if cfg.AI.EnemyPreset() != ai.AIConfigHard {
		t.Errorf("enemy preset = %+v, want hard", cfg.AI.EnemyPreset())
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := isolate(t)

	if err := os.MkdirAll("configs", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("configs", fileName), []byte("server:\n  tps: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _ := Load("")
	if cfg.Server.TPS != 30 {
		t.Errorf("./configs should be used, got tps %d", cfg.Server.TPS)
	}

	userDir := filepath.Join(home, ".bombsim")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userDir, fileName), []byte("server:\n  tps: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _ = Load("")
	if cfg.Server.TPS != 20 {
		t.Errorf("user config should win over ./configs, got tps %d", cfg.Server.TPS)
	}
}

func TestLoadErrors(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom path should fail")
	}

	tests := []struct {
		name string
		yaml string
	}{
		{name: "zero fuse", yaml: "engine:\n  bomb:\n    fuse: 0\n"},
		{name: "tiny grid", yaml: "level:\n  width: 3\n"},
		{name: "bad proto", yaml: "server:\n  proto: udp\n"},
		{name: "tps too high", yaml: "server:\n  tps: 1000\n"},
		{name: "negative enemy range", yaml: "engine:\n  bomb:\n    enemy_bomb_range: -1\n"},
		{name: "negative start range", yaml: "engine:\n  player:\n    start_fire_range: -2\n"},
		{name: "start above max", yaml: "engine:\n  player:\n    start_fire_range: 9\n    max_fire_range: 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadSkipsBrokenFileWithWarning(t *testing.T) {
	isolate(t)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	if err := os.MkdirAll("configs", 0o755); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join("configs", fileName)
	if err := os.WriteFile(bad, []byte("server:\n  tps: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("a broken file should fall through to the defaults")
	}
	if !strings.Contains(buf.String(), bad) {
		t.Errorf("expected a warning naming %s, got %q", bad, buf.String())
	}
}

func TestParsedLevel(t *testing.T) {
	if lvl := (LogConfig{Level: "debug"}).ParsedLevel(); lvl != log.DebugLevel {
		t.Errorf("debug parsed as %v", lvl)
	}
	if lvl := (LogConfig{Level: "loud"}).ParsedLevel(); lvl != log.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %v", lvl)
	}
}
