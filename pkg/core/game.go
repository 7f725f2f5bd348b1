package core

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
)

// ErrInvalidDescriptor 关卡描述结构上不可用
var ErrInvalidDescriptor = errors.New("invalid level descriptor")

// Game 单人模拟核心（纯逻辑，不包含渲染）
// 所有状态只在 Update 内部修改，不加锁，调用方保证单线程
type Game struct {
	cfg     Config
	logger  *log.Logger
	ai      EnemyAI
	sinks   []EventSink
	results ResultSink

	Grid       *Grid
	Player     *Player
	Enemies    []*Enemy
	Explosions []*Explosion
	Warnings   []SpawnWarning

	bombs    arena[Bomb]
	powerUps arena[PowerUp]

	Level      LevelDescriptor
	State      RoundState
	stateTimer float64
	Clock      float64 // 剩余时间
	Score      int
	Stats      LevelStats
	Combo      Combo

	slowMoTimer     float64
	exitRejectTimer float64
	exitPos         GridPos
	spikeTimer      float64
	SpikesRaised    bool
	punitiveTimer   float64

	advanced   bool
	lastBonus  int
	lastStars  int
	lastResult *RoundResult

	nextEnemyID int
	rng         *rand.Rand
	frame       int64
	events      []Event
}

// Option 配置 Game
type Option func(*Game)

// WithLogger 设置日志，仅在外部协作方出错时使用
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithEnemyAI 设置敌人 AI，未设置时使用内置的随机游走
func WithEnemyAI(ai EnemyAI) Option {
	return func(g *Game) {
		if ai != nil {
			g.ai = ai
		}
	}
}

// WithEventSink 追加事件接收方
func WithEventSink(s EventSink) Option {
	return func(g *Game) {
		if s != nil {
			g.sinks = append(g.sinks, s)
		}
	}
}

// WithResultSink 设置成绩接收方
func WithResultSink(s ResultSink) Option {
	return func(g *Game) {
		g.results = s
	}
}

// NewGame 创建模拟核心，需调用 LoadLevel 后才能推进
func NewGame(cfg Config, opts ...Option) *Game {
	g := &Game{
		cfg:         cfg,
		logger:      log.Default(),
		State:       StateStarting,
		nextEnemyID: 1,
		rng:         rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.ai == nil {
		g.ai = newDriftAI(g.rng)
	}
	return g
}

// Config 当前模拟参数
func (g *Game) Config() Config {
	return g.cfg
}

// LoadLevel 按关卡描述重建地图和实体；生命与分数跨关保留
func (g *Game) LoadLevel(desc LevelDescriptor) error {
	if desc.Width < MinGridSize || desc.Height < MinGridSize {
		return fmt.Errorf("%w: grid %dx%d smaller than %d", ErrInvalidDescriptor, desc.Width, desc.Height, MinGridSize)
	}
	spawn := desc.PlayerSpawn
	if spawn.GridX <= 0 || spawn.GridY <= 0 || spawn.GridX >= desc.Width-1 || spawn.GridY >= desc.Height-1 {
		return fmt.Errorf("%w: player spawn (%d,%d) on border or outside", ErrInvalidDescriptor, spawn.GridX, spawn.GridY)
	}

	g.Level = desc
	g.rng = rand.New(rand.NewSource(desc.Seed))
	if d, ok := g.ai.(*driftAI); ok {
		d.rng = g.rng
	}
	g.bombs.clear()
	g.powerUps.clear()
	g.Explosions = nil
	g.Enemies = nil
	g.Warnings = nil
	g.nextEnemyID = 1

	g.Grid = NewGrid(desc.Width, desc.Height)
	g.Grid.Reserve(spawn.GridX, spawn.GridY)
	for _, d := range Directions {
		n := spawn.Add(d, 1)
		g.Grid.Reserve(n.GridX, n.GridY)
	}
	for _, es := range desc.EnemySpawns {
		g.Grid.Reserve(es.Pos.GridX, es.Pos.GridY)
	}
	g.Grid.BuildLayout(LayoutOptions{
		Pattern:  desc.Layout,
		Mechanic: desc.Mechanic,
		Seed:     desc.Seed,
		Density:  desc.BlockDensity,
	})

	if g.Player == nil {
		g.Player = NewPlayer(spawn, g.cfg.Player)
	} else {
		g.Player.Spawn = spawn
	}
	g.Player.respawn(g.cfg.Player.SpawnProtection)

	for _, es := range desc.EnemySpawns {
		pos := es.Pos
		if c := g.Grid.CellAt(pos.GridX, pos.GridY); c == nil || c.Type != CellEmpty {
			var ok bool
			if pos, ok = g.findSpawnCell(); !ok {
				g.logger.Warn("dropping enemy without spawn cell", "level", desc.Level, "type", es.Type.String())
				continue
			}
		}
		g.addEnemy(es.Type, pos)
	}

	g.hidePayloads(desc)

	g.Clock = desc.TimeLimit
	g.State = StateStarting
	g.stateTimer = g.cfg.Timing.StartDelay
	g.Stats = LevelStats{}
	g.Combo = Combo{}
	g.slowMoTimer = 0
	g.exitRejectTimer = 0
	g.SpikesRaised = false
	g.spikeTimer = g.cfg.Spikes.Down
	g.punitiveTimer = 0
	g.advanced = false
	g.lastBonus, g.lastStars = 0, 0
	return nil
}

// hidePayloads 把出口和道具藏在砖块下；指定格子不是砖块时随机挑一个砖块
// 地图上没有砖块时出口直接显露
func (g *Game) hidePayloads(desc LevelDescriptor) {
	var blocks []*Cell
	g.Grid.Each(func(c *Cell) {
		if c.Type == CellBlock {
			blocks = append(blocks, c)
		}
	})
	free := func(c *Cell) bool {
		return c != nil && c.Type == CellBlock && !c.HasHiddenExit && c.HiddenPowerUp == PowerUpNone
	}
	pick := func() *Cell {
		start := 0
		if len(blocks) > 0 {
			start = g.rng.Intn(len(blocks))
		}
		for i := range blocks {
			if c := blocks[(start+i)%len(blocks)]; free(c) {
				return c
			}
		}
		return nil
	}

	var exit *Cell
	if desc.Exit != nil {
		if c := g.Grid.CellAt(desc.Exit.GridX, desc.Exit.GridY); free(c) {
			exit = c
		}
	}
	if exit == nil {
		exit = pick()
	}
	if exit != nil {
		exit.HasHiddenExit = true
	} else if pos, ok := g.findSpawnCell(); ok {
		g.Grid.SetType(pos.GridX, pos.GridY, CellExit)
	}

	for _, pl := range desc.PowerUps {
		c := g.Grid.CellAt(pl.Pos.GridX, pl.Pos.GridY)
		if !free(c) {
			if c = pick(); c == nil {
				break
			}
		}
		c.HiddenPowerUp = pl.Type
	}
}

// Update 推进一帧
// dt 先截断到 MaxDelta；慢动作只缩放玩法时间，状态机、连杀窗口等使用真实时间
func (g *Game) Update(dt float64, in Input) {
	if g.Grid == nil || g.Player == nil || g.State.Terminal() {
		return
	}
	if dt < 0 {
		dt = 0
	}
	if dt > g.cfg.MaxDelta {
		dt = g.cfg.MaxDelta
	}
	g.frame++

	realDt := dt
	gameDt := dt
	if g.slowMoTimer > 0 {
		gameDt *= g.cfg.SlowMo.Scale
	}

	g.Grid.UpdateAfterglow(realDt)

	if g.State.simulates() {
		g.updatePlayer(gameDt, in)
		g.updateSpikes(gameDt)
		g.updateBombs(gameDt)
		g.updateEnemies(gameDt)
		g.processDetonations()
		g.updateExplosions(gameDt)
		g.updateDestruction(gameDt)
		g.resolveCollisions()
	}

	g.updateTimers(realDt)
	g.updateRound(realDt)
	g.purge()
}

// updateEnemies 推进敌人死亡动画，存活敌人按 AI 意图移动或放炸弹
func (g *Game) updateEnemies(dt float64) {
	g.precomputeAI()
	for _, e := range g.Enemies {
		e.update(dt)
		if !e.IsAlive() {
			continue
		}
		intent := g.enemyIntent(e, dt)
		if intent.PlaceBomb && e.Type == EnemyBomber {
			g.enemyPlaceBomb(e)
		}
		if intent.Dir == DirNone {
			continue
		}
		e.Direction = intent.Dir
		dx, dy := intent.Dir.Delta()
		step := e.Speed * dt
		e.move(g.Grid, float64(dx)*step, float64(dy)*step, g.enemyBlocker(e))
	}
}

// enemyBlocker 敌人视角的阻挡：墙、危险地形；砖块对穿砖类敌人不阻挡；
// 炸弹阻挡，但允许从自己当前重叠的炸弹格离开
func (g *Game) enemyBlocker(e *Enemy) blockFunc {
	return func(gx, gy int) bool {
		c := g.Grid.CellAt(gx, gy)
		if c == nil || c.Type == CellWall || c.Type.IsHazard() {
			return true
		}
		if (c.Type == CellBlock || c.Destroying) && !e.Type.PassesBlocks() {
			return true
		}
		if b := g.bombs.get(c.Bomb); b != nil && b.IsLive() && !e.overlapsCell(gx, gy) {
			return true
		}
		return false
	}
}

func (g *Game) precomputeAI() {
	bombs := g.Bombs()
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("enemy AI precompute panicked", "err", r)
		}
	}()
	g.ai.PrecomputeDangerZones(g.Grid, bombs, g.Explosions)
}

// enemyIntent AI 出错时退回内置随机游走
func (g *Game) enemyIntent(e *Enemy, dt float64) (in Intent) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("enemy AI panicked", "enemy", e.ID, "type", e.Type.String(), "err", r)
			fb := newDriftAI(g.rng)
			fb.grid = g.Grid
			in = fb.Update(e, g.Player, dt)
		}
	}()
	return g.ai.Update(e, g.Player, dt)
}

// purge 帧末统一回收被标记的实体，先清空格子引用再释放
func (g *Game) purge() {
	var deadBombs []Handle[Bomb]
	g.bombs.each(func(h Handle[Bomb], b *Bomb) bool {
		if b.HasExploded {
			if c := g.Grid.CellAt(b.GridX, b.GridY); c != nil && c.Bomb == h {
				c.Bomb = Handle[Bomb]{}
			}
			b.State = BombRemoved
			deadBombs = append(deadBombs, h)
		}
		return true
	})
	for _, h := range deadBombs {
		g.bombs.remove(h)
	}

	var deadPowerUps []Handle[PowerUp]
	g.powerUps.each(func(h Handle[PowerUp], pu *PowerUp) bool {
		if pu.MarkedForRemoval {
			if c := g.Grid.CellAt(pu.Pos.GridX, pu.Pos.GridY); c != nil && c.PowerUp == h {
				c.PowerUp = Handle[PowerUp]{}
			}
			deadPowerUps = append(deadPowerUps, h)
		}
		return true
	})
	for _, h := range deadPowerUps {
		g.powerUps.remove(h)
	}

	for i := len(g.Explosions) - 1; i >= 0; i-- {
		if ex := g.Explosions[i]; ex.MarkedForRemoval {
			g.releaseExplosion(ex)
			g.Explosions = append(g.Explosions[:i], g.Explosions[i+1:]...)
		}
	}

	for i := len(g.Enemies) - 1; i >= 0; i-- {
		if g.Enemies[i].MarkedForRemoval {
			g.Enemies = append(g.Enemies[:i], g.Enemies[i+1:]...)
		}
	}
}

// AliveEnemies 存活且未进入死亡动画的敌人数
func (g *Game) AliveEnemies() int {
	n := 0
	for _, e := range g.Enemies {
		if e.IsAlive() {
			n++
		}
	}
	return n
}

// Bombs 在场炸弹的副本
func (g *Game) Bombs() []Bomb {
	out := make([]Bomb, 0, g.bombs.len())
	g.bombs.each(func(_ Handle[Bomb], b *Bomb) bool {
		if b.IsLive() {
			out = append(out, *b)
		}
		return true
	})
	return out
}

// PowerUps 场上道具的副本
func (g *Game) PowerUps() []PowerUp {
	out := make([]PowerUp, 0, g.powerUps.len())
	g.powerUps.each(func(_ Handle[PowerUp], pu *PowerUp) bool {
		if pu.Active && !pu.MarkedForRemoval {
			out = append(out, *pu)
		}
		return true
	})
	return out
}

// BombAt 查询格子上的炸弹
func (g *Game) BombAt(x, y int) (Bomb, bool) {
	c := g.Grid.CellAt(x, y)
	if c == nil {
		return Bomb{}, false
	}
	if b := g.bombs.get(c.Bomb); b != nil {
		return *b, true
	}
	return Bomb{}, false
}

// PowerUpAt 查询格子上的道具
func (g *Game) PowerUpAt(x, y int) (PowerUp, bool) {
	c := g.Grid.CellAt(x, y)
	if c == nil {
		return PowerUp{}, false
	}
	if pu := g.powerUps.get(c.PowerUp); pu != nil {
		return *pu, true
	}
	return PowerUp{}, false
}

// SlowMo 是否处于慢动作窗口
func (g *Game) SlowMo() bool {
	return g.slowMoTimer > 0
}

// Frame 已推进的帧数
func (g *Game) Frame() int64 {
	return g.frame
}

// LastResult 最近一次结算结果
func (g *Game) LastResult() (RoundResult, bool) {
	if g.lastResult == nil {
		return RoundResult{}, false
	}
	return *g.lastResult, true
}

// AwaitingAdvance 过关结算结束，等待宿主加载下一关
func (g *Game) AwaitingAdvance() bool {
	return g.State == StateLevelComplete && g.advanced
}
