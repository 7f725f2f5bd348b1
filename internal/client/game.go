package client

import (
	"fmt"
	"image/color"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"bombsim/pkg/core"
	"bombsim/pkg/protocol"
)

// ResultBannerDuration 结算横幅停留时间
const ResultBannerDuration = 4 * time.Second

// Feed 观看端依赖的数据来源，NetworkClient 是它的网络实现
type Feed interface {
	Done() <-chan struct{}
	Err() error
	Latest() (*core.Snapshot, uint64)
	PollEvents() []core.Event
	PollResult() (protocol.Result, bool)
	Welcome() protocol.Welcome
	SendInput(in core.Input) uint32
	RTT() int64
}

var _ Feed = (*NetworkClient)(nil)

// Viewer 快照观看端（Ebiten 游戏循环）
// 只渲染宿主推来的状态；获得操控权时把按键转成输入上报
type Viewer struct {
	net      Feed
	engine   core.Config
	scheme   ControlScheme
	pilot    bool
	logger   *log.Logger
	smoother *Smoother
	tracker  inputTracker
	keys     keyState
	feed     eventFeed

	snap        *core.Snapshot
	version     uint64
	welcome     protocol.Welcome
	result      *protocol.Result
	resultUntil time.Time

	started time.Time
	now     func() time.Time
}

// NewViewer 包装一个已完成握手的数据来源
// engine 用于换算炸弹引信与火焰的动画进度
func NewViewer(nc Feed, welcome protocol.Welcome, engine core.Config, scheme ControlScheme, logger *log.Logger) *Viewer {
	if logger == nil {
		logger = log.Default()
	}
	v := &Viewer{
		net:      nc,
		engine:   engine,
		scheme:   scheme,
		pilot:    welcome.Pilot,
		welcome:  welcome,
		logger:   logger.WithPrefix("viewer"),
		smoother: NewSmoother(),
		keys:     ebitenKeys,
		started:  time.Now(),
		now:      time.Now,
	}
	if welcome.TPS > 0 {
		// 约三个服务器节拍的缓冲
		v.smoother.SetInterpolationDelay(3 * 1000 / int64(welcome.TPS))
	}
	return v
}

// Update 拉取最新快照与事件，操控者上报输入
func (v *Viewer) Update() error {
	select {
	case <-v.net.Done():
		if err := v.net.Err(); err != nil {
			return err
		}
		return ebiten.Termination
	default:
	}

	now := v.now()
	v.sync(now)

	if v.pilot {
		if in, ok := v.tracker.next(v.scheme.readInput(v.keys)); ok {
			v.net.SendInput(in)
		}
	}
	return nil
}

// sync 合并网络层收到的所有新数据
func (v *Viewer) sync(now time.Time) {
	if snap, version := v.net.Latest(); snap != nil && version != v.version {
		if v.snap != nil && snap.Level != v.snap.Level {
			v.smoother.Reset()
		}
		v.snap, v.version = snap, version
		v.smoother.Observe(now.UnixMilli(), snap)
	}

	for _, ev := range v.net.PollEvents() {
		v.feed.push(ev)
	}

	if res, ok := v.net.PollResult(); ok {
		v.result = &res
		v.resultUntil = now.Add(ResultBannerDuration)
		v.logger.Info("结算", "level", res.Level, "outcome", res.Outcome, "score", res.Score, "stars", res.Stars)
	}

	if w := v.net.Welcome(); w != v.welcome {
		v.welcome = w
		v.pilot = w.Pilot
	}
}

// Draw 绘制当前画面
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{10, 10, 15, 255})

	if v.snap == nil || v.snap.Width == 0 {
		drawBanner(screen, "waiting for snapshot...")
		return
	}
	s := v.snap
	now := v.now()
	nowMs := now.UnixMilli()
	elapsed := now.Sub(v.started).Seconds()

	drawGrid(screen, s)
	drawPowerUps(screen, s.PowerUps, elapsed)
	drawExplosions(screen, s.Explosions, v.engine.Timing.ExplosionDuration)
	drawBombs(screen, s.Bombs, v.engine.Bomb.Fuse)
	drawWarnings(screen, s.Warnings, elapsed)

	for _, e := range s.Enemies {
		x, y, ok := v.smoother.Position(e.ID, nowMs)
		if !ok {
			x, y = e.X, e.Y
		}
		drawEnemy(screen, e, x, y, elapsed)
	}

	px, py, ok := v.smoother.Position(playerTrack, nowMs)
	if !ok {
		px, py = s.Player.X, s.Player.Y
	}
	drawPlayer(screen, s.Player, px, py, elapsed)

	if s.SlowMo {
		w := float32(screen.Bounds().Dx())
		vector.DrawFilledRect(screen, 0, 0, w, float32(s.Height*core.TileSize), color.RGBA{40, 60, 140, 60}, false)
	}

	drawHUD(screen, s, &v.feed, float64(s.Height*core.TileSize), v.net.RTT(), v.pilot)

	switch {
	case v.result != nil && now.Before(v.resultUntil):
		drawBanner(screen, resultLines(*v.result)...)
	case s.State == core.StateStarting:
		drawBanner(screen, fmt.Sprintf("LEVEL %d", s.Level))
	case s.State.Terminal():
		drawBanner(screen, s.State.String(), "restarting soon")
	}
}

// Layout 屏幕尺寸由地图决定，下方留出状态栏
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenSize(v.welcome.Width, v.welcome.Height)
}

// ScreenSize 给定网格尺寸的窗口大小
func ScreenSize(gridW, gridH int) (int, int) {
	if gridW <= 0 || gridH <= 0 {
		gridW, gridH = core.DefaultGridWidth, core.DefaultGridHeight
	}
	return gridW * core.TileSize, gridH*core.TileSize + HUDHeight
}
