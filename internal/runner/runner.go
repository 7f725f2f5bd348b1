// Package runner 无头运行：由自动驾驶操控玩家，从第一关一路打到终局
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"bombsim/internal/config"
	"bombsim/internal/receipt"
	"bombsim/pkg/ai"
	"bombsim/pkg/core"
)

// ctxCheckEvery 每隔多少帧检查一次取消
const ctxCheckEvery = 256

// Deps 运行依赖
type Deps struct {
	Logger    *log.Logger
	Generator core.LevelGenerator
	Results   core.ResultSink  // 可为 nil
	Signer    *receipt.Signer  // 可为 nil，此时结算不带凭证
	Sinks     []core.EventSink // 额外的事件接收方
	SessionID string
}

// Receipt 一次结算与它的签名凭证
type Receipt struct {
	core.RoundResult
	Token string
}

// Summary 一次运行的结果
type Summary struct {
	Frames  int64
	SimTime time.Duration
	State   core.RoundState
	Level   int
	Score   int
	Results []Receipt
}

// Runner 以固定步长推进一局，不依赖真实时钟
type Runner struct {
	cfg    config.Config
	deps   Deps
	logger *log.Logger
	dt     float64

	game      *core.Game
	brain     *ai.Brain
	autopilot *ai.Autopilot
	pending   []core.RoundResult
	receipts  []Receipt
}

// New 创建运行器
func New(cfg config.Config, deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	r := &Runner{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.WithPrefix("run"),
		dt:     1.0 / float64(cfg.Server.TPS),
	}
	r.brain = ai.NewBrain(cfg.AI.EnemyPreset(), cfg.Engine.Bomb, cfg.Level.Seed)
	r.autopilot = ai.NewAutopilot(cfg.AI.AutopilotPreset(), cfg.Level.Seed)

	opts := []core.Option{
		core.WithLogger(deps.Logger.WithPrefix("core")),
		core.WithEnemyAI(r.brain),
		core.WithResultSink(collector{r}),
	}
	for _, s := range deps.Sinks {
		opts = append(opts, core.WithEventSink(s))
	}
	r.game = core.NewGame(cfg.Engine, opts...)
	return r
}

// Game 正在运行的模拟
func (r *Runner) Game() *core.Game {
	return r.game
}

// Run 运行到终局或 limit 用完（limit 为模拟时间，0 表示不限）
func (r *Runner) Run(ctx context.Context, limit time.Duration) (Summary, error) {
	if err := r.load(1); err != nil {
		return r.summary(), err
	}

	maxFrames := int64(limit.Seconds() * float64(r.cfg.Server.TPS))
	for maxFrames <= 0 || r.game.Frame() < maxFrames {
		if r.game.Frame()%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return r.summary(), err
			}
		}

		r.game.Update(r.dt, r.autopilot.Decide(r.game, r.dt))
		r.game.DrainEvents()
		r.flush()

		if r.game.State.Terminal() {
			r.logger.Info("终局", "state", r.game.State, "score", r.game.Score, "frames", r.game.Frame())
			break
		}
		if r.game.AwaitingAdvance() {
			if err := r.load(r.game.Level.Level + 1); err != nil {
				return r.summary(), err
			}
		}
	}
	return r.summary(), nil
}

func (r *Runner) load(level int) error {
	desc, err := r.deps.Generator.Generate(level, r.cfg.Level.Seed)
	if err != nil {
		return fmt.Errorf("生成第 %d 关失败: %w", level, err)
	}
	if err := r.game.LoadLevel(desc); err != nil {
		return fmt.Errorf("加载第 %d 关失败: %w", level, err)
	}
	r.brain.Reset()
	r.logger.Info("关卡已加载", "level", level, "layout", desc.Layout, "mechanic", desc.Mechanic, "enemies", len(desc.EnemySpawns))
	return nil
}

// flush 为本帧的结算签发凭证
func (r *Runner) flush() {
	for _, res := range r.pending {
		rc := Receipt{RoundResult: res}
		if r.deps.Signer != nil {
			token, err := r.deps.Signer.Sign(res, r.deps.SessionID)
			if err != nil {
				r.logger.Error("签发凭证失败", "err", err)
			}
			rc.Token = token
		}
		r.logger.Info("结算", "level", res.Level, "outcome", res.Outcome, "score", res.Score, "stars", res.Stars)
		r.receipts = append(r.receipts, rc)
	}
	r.pending = r.pending[:0]
}

func (r *Runner) summary() Summary {
	return Summary{
		Frames:  r.game.Frame(),
		SimTime: time.Duration(float64(r.game.Frame()) * r.dt * float64(time.Second)),
		State:   r.game.State,
		Level:   r.game.Level.Level,
		Score:   r.game.Score,
		Results: r.receipts,
	}
}

// collector 收下结算交给 flush，同时转给持久化方
type collector struct {
	r *Runner
}

func (c collector) RecordResult(res core.RoundResult) error {
	c.r.pending = append(c.r.pending, res)
	if c.r.deps.Results != nil {
		return c.r.deps.Results.RecordResult(res)
	}
	return nil
}
