package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bombsim/internal/receipt"
	"bombsim/internal/server"
	"bombsim/internal/sink"
	"bombsim/internal/storage"
	"bombsim/pkg/core"
	"bombsim/pkg/level"
)

var (
	flagServeAddr      string
	flagServeProto     string
	flagServeNoAuto    bool
	flagServeNoSave    bool
	flagServeTelemetry bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host a session and stream snapshots to viewers",
	Long: `Runs one simulation at the configured TPS and streams every snapshot,
event and result to connected viewers over tcp or kcp.

The first viewer that asks for the pilot seat controls the player. Without a
pilot the autopilot plays. After game over or victory the session restarts.

Examples:
  bombsim serve
  bombsim serve --addr :9000 --proto kcp
  bombsim serve --no-autopilot

Viewers connect with:
  client --addr localhost:8080 --pilot`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default: from config)")
	serveCmd.Flags().StringVar(&flagServeProto, "proto", "", "Transport: tcp or kcp (default: from config)")
	serveCmd.Flags().BoolVar(&flagServeNoAuto, "no-autopilot", false, "Leave the player idle while nobody pilots")
	serveCmd.Flags().BoolVar(&flagServeNoSave, "no-save", false, "Do not write results to the scores database")
	serveCmd.Flags().BoolVar(&flagServeTelemetry, "telemetry", false, "Log every simulation event")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagServeAddr != "" {
		cfg.Server.Addr = flagServeAddr
	}
	if flagServeProto != "" {
		cfg.Server.Proto = flagServeProto
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	sessionID := uuid.NewString()
	deps := server.RoomDeps{
		Logger:    logger,
		Generator: level.NewGenerator(cfg.Level.Width, cfg.Level.Height),
		Signer:    receipt.NewSigner(cfg.Receipt.Issuer, cfg.Receipt.TTL, receipt.SecretFromEnv()),
		Autopilot: !flagServeNoAuto,
		SessionID: sessionID,
	}
	if flagServeTelemetry {
		deps.Sinks = []core.EventSink{sink.NewTelemetry(logger)}
	}
	if !flagServeNoSave {
		store, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("打开成绩库失败: %w", err)
		}
		defer store.Close()
		store.SetSession(sessionID)
		deps.Results = store
	}

	srv := server.New(cfg, deps)
	if err := srv.Start(); err != nil {
		return err
	}
	logger.Info("快照宿主运行中", "addr", srv.Addr().String(), "proto", cfg.Server.Proto,
		"tps", cfg.Server.TPS, "max_viewers", cfg.Server.MaxViewers, "session", sessionID)
	logger.Info("按 Ctrl+C 停止")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("正在关闭...")
	srv.Shutdown()
	return nil
}
