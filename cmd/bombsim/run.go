package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bombsim/internal/receipt"
	"bombsim/internal/runner"
	"bombsim/internal/sink"
	"bombsim/internal/storage"
	"bombsim/pkg/core"
	"bombsim/pkg/level"
)

var (
	flagRunLimit  time.Duration
	flagRunNoSave bool
	flagRunEvents bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a full session headless with the autopilot",
	Long: `Runs the simulation at a fixed step without a display. The autopilot
controls the player from level 1 until game over, victory or the time limit.
Every round result is stored and printed together with its signed receipt.

Examples:
  bombsim run
  bombsim run --seed 7 --limit 10m
  bombsim run --events --no-save`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(&flagRunLimit, "limit", 30*time.Minute, "Simulated time limit (0 = until the session ends)")
	runCmd.Flags().BoolVar(&flagRunNoSave, "no-save", false, "Do not write results to the scores database")
	runCmd.Flags().BoolVar(&flagRunEvents, "events", false, "Log every simulation event")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	sessionID := uuid.NewString()
	counter := sink.NewCounter()
	deps := runner.Deps{
		Logger:    logger,
		Generator: level.NewGenerator(cfg.Level.Width, cfg.Level.Height),
		Signer:    receipt.NewSigner(cfg.Receipt.Issuer, cfg.Receipt.TTL, receipt.SecretFromEnv()),
		Sinks:     []core.EventSink{counter},
		SessionID: sessionID,
	}
	if flagRunEvents {
		deps.Sinks = append(deps.Sinks, sink.NewTelemetry(logger))
	}
	if !flagRunNoSave {
		store, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("打开成绩库失败: %w", err)
		}
		defer store.Close()
		store.SetSession(sessionID)
		deps.Results = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	sum, err := runner.New(cfg, deps).Run(ctx, flagRunLimit)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		logger.Warn("运行被中断")
	}

	fmt.Printf("Session %s  seed %d\n", sessionID, cfg.Level.Seed)
	fmt.Printf("  state   %s\n", sum.State)
	fmt.Printf("  level   %d\n", sum.Level)
	fmt.Printf("  score   %d\n", sum.Score)
	fmt.Printf("  frames  %d (%s simulated in %s)\n", sum.Frames, sum.SimTime.Round(time.Second), time.Since(start).Round(time.Millisecond))
	fmt.Println()

	if len(sum.Results) > 0 {
		fmt.Printf("  %-5s  %-14s  %-7s  %-6s  %s\n", "Level", "Outcome", "Score", "Stars", "Receipt")
		fmt.Printf("  %-5s  %-14s  %-7s  %-6s  %s\n", "-----", "-------", "-----", "-----", "-------")
		for _, r := range sum.Results {
			fmt.Printf("  %-5d  %-14s  %-7d  %-6d  %s\n", r.Level, r.Outcome, r.Score, r.Stars, r.Token)
		}
		fmt.Println()
	}

	fmt.Println("Events:")
	for _, e := range counter.Summary() {
		fmt.Printf("  %-16s %d\n", e.Name, e.Count)
	}
	return nil
}
