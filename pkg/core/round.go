package core

import "math"

// RoundState 关卡状态机
type RoundState int

const (
	StateStarting      RoundState = iota // 开局倒计时
	StatePlaying                         // 正常进行
	StateOvertime                        // 超时，持续刷出追猎者
	StatePlayerDied                      // 玩家死亡，棋盘继续运转
	StateLevelComplete                   // 过关结算
	StateGameOver                        // 终态
	StateVictory                         // 终态
)

func (s RoundState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StatePlaying:
		return "playing"
	case StateOvertime:
		return "overtime"
	case StatePlayerDied:
		return "player_died"
	case StateLevelComplete:
		return "level_complete"
	case StateGameOver:
		return "game_over"
	case StateVictory:
		return "victory"
	}
	return "unknown"
}

// acceptsInput 只有进行中（含超时）才处理玩家输入
func (s RoundState) acceptsInput() bool {
	return s == StatePlaying || s == StateOvertime
}

// simulates 是否推进完整模拟（玩家死亡期间棋盘继续运转）
func (s RoundState) simulates() bool {
	return s == StatePlaying || s == StateOvertime || s == StatePlayerDied
}

// Terminal 是否为终态
func (s RoundState) Terminal() bool {
	return s == StateGameOver || s == StateVictory
}

// Combo 连杀计数，Timer 为剩余窗口（真实时间）
type Combo struct {
	Count int
	Timer float64
}

// SpawnWarning 超时刷怪前的位置预警
type SpawnWarning struct {
	Pos       GridPos
	Remaining float64
}

// updateRound 推进状态机，使用未缩放的真实时间
func (g *Game) updateRound(dt float64) {
	switch g.State {
	case StateStarting:
		g.stateTimer -= dt
		if g.stateTimer <= timerEpsilon {
			g.stateTimer = 0
			g.State = StatePlaying
			g.emitValue(EventRoundStart, g.Player.Spawn, PlayerOwnerID, g.Level.Level)
		}

	case StatePlaying:
		g.Clock -= dt
		if g.Clock <= timerEpsilon {
			g.Clock = 0
			g.State = StateOvertime
			g.punitiveTimer = 0
			g.emitValue(EventTimeUp, g.Player.GridPos(), PlayerOwnerID, g.Level.Level)
		}

	case StateOvertime:
		g.updatePunitive(dt)

	case StatePlayerDied:
		g.stateTimer -= dt
		if g.stateTimer > timerEpsilon {
			return
		}
		g.stateTimer = 0
		g.Player.Lives--
		if g.Player.Lives > 0 {
			g.resetRound()
			g.emitValue(EventRespawn, g.Player.Spawn, PlayerOwnerID, g.Player.Lives)
			return
		}
		g.Player.Lives = 0
		g.State = StateGameOver
		g.record(OutcomeGameOver, 0, 0)
		g.emitValue(EventGameOver, g.Player.GridPos(), PlayerOwnerID, g.Score)

	case StateLevelComplete:
		if g.advanced {
			return
		}
		g.stateTimer -= dt
		if g.stateTimer > timerEpsilon {
			return
		}
		g.stateTimer = 0
		g.advanced = true
		if g.Level.Level >= g.cfg.FinalLevel {
			g.State = StateVictory
			g.record(OutcomeVictory, g.lastBonus, g.lastStars)
			g.emitValue(EventVictory, g.exitPos, PlayerOwnerID, g.Score)
			return
		}
		g.emitValue(EventRoundAdvance, g.exitPos, PlayerOwnerID, g.Level.Level+1)
	}
}

// resetRound 复活：清空炸弹、爆炸和预警，回到出生点，重置计时并重新倒计时
func (g *Game) resetRound() {
	g.clearBombs()
	for _, ex := range g.Explosions {
		g.releaseExplosion(ex)
	}
	g.Explosions = nil
	g.Warnings = nil
	for _, e := range g.Enemies {
		e.ActiveBombs = 0
	}
	g.Player.respawn(g.cfg.Player.SpawnProtection)
	g.Clock = g.Level.TimeLimit
	g.Combo = Combo{}
	g.slowMoTimer = 0
	g.punitiveTimer = 0
	g.State = StateStarting
	g.stateTimer = g.cfg.Timing.StartDelay
}

// clearBombs 清空所有炸弹及其格子登记
func (g *Game) clearBombs() {
	g.bombs.each(func(h Handle[Bomb], b *Bomb) bool {
		if c := g.Grid.CellAt(b.GridX, b.GridY); c != nil && c.Bomb == h {
			c.Bomb = Handle[Bomb]{}
		}
		return true
	})
	g.bombs.clear()
}

// completeLevel 进入过关结算，奖励只计算一次
func (g *Game) completeLevel() {
	if g.State == StateLevelComplete {
		return
	}
	g.State = StateLevelComplete
	g.stateTimer = g.cfg.Timing.CompleteDelay
	g.advanced = false
	g.exitPos = g.Player.GridPos()

	bonus, stars := g.levelBonus()
	g.Score += bonus
	g.lastBonus = bonus
	g.lastStars = stars
	g.record(OutcomeLevelComplete, bonus, stars)
	g.emitValue(EventLevelComplete, g.exitPos, PlayerOwnerID, bonus)
}

// levelBonus 剩余时间奖励 + 用弹效率奖励 + 无伤奖励，再乘以关卡倍率
func (g *Game) levelBonus() (bonus, stars int) {
	sc := g.cfg.Scoring
	timeBonus := int(math.Floor(g.Clock)) * sc.TimeBonusPerSecond

	efficiency := 0
	topBand := false
	for i, band := range sc.EfficiencyBands {
		if g.Stats.BombsUsed <= band.MaxBombs {
			efficiency = band.Bonus
			topBand = i == 0
			break
		}
	}

	noDamage := 0
	if !g.Stats.DamageTaken {
		noDamage = sc.NoDamageBonus
	}

	mult := g.Level.ScoreMultiplier
	if mult <= 0 {
		mult = 1
	}
	bonus = int(math.Round(float64(timeBonus+efficiency+noDamage) * mult))

	stars = 1
	if !g.Stats.DamageTaken {
		stars++
	}
	if topBand {
		stars++
	}
	return bonus, stars
}

// record 把汇总数据交给持久化接收方，失败只记录日志
func (g *Game) record(outcome Outcome, bonus, stars int) {
	r := RoundResult{
		Level:         g.Level.Level,
		Outcome:       outcome,
		Score:         g.Score,
		Bonus:         bonus,
		Stars:         stars,
		TimeRemaining: g.Clock,
		Lives:         g.Player.Lives,
		Stats:         g.Stats,
	}
	g.lastResult = &r
	if g.results == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("result sink panicked", "outcome", outcome.String(), "err", rec)
		}
	}()
	if err := g.results.RecordResult(r); err != nil {
		g.logger.Error("record result failed", "outcome", outcome.String(), "level", r.Level, "err", err)
	}
}

// updatePunitive 超时后每隔一段时间预警一个位置，预警结束后在该处刷出追猎者
func (g *Game) updatePunitive(dt float64) {
	for i := len(g.Warnings) - 1; i >= 0; i-- {
		w := &g.Warnings[i]
		w.Remaining -= dt
		if w.Remaining > timerEpsilon {
			continue
		}
		pos := w.Pos
		g.Warnings = append(g.Warnings[:i], g.Warnings[i+1:]...)
		g.spawnHunter(pos)
	}

	g.punitiveTimer -= dt
	if g.punitiveTimer > timerEpsilon {
		return
	}
	g.punitiveTimer = g.cfg.Punitive.Interval
	if g.aliveHunters()+len(g.Warnings) >= g.cfg.Punitive.MaxEnemies {
		return
	}
	pos, ok := g.findSpawnCell()
	if !ok {
		g.logger.Warn("no cell for punitive spawn", "level", g.Level.Level)
		return
	}
	g.Warnings = append(g.Warnings, SpawnWarning{Pos: pos, Remaining: g.cfg.Punitive.Warning})
	g.emit(EventSpawnWarning, pos, 0)
}

// spawnHunter 预警期间目标格失效时重新搜索
func (g *Game) spawnHunter(pos GridPos) {
	if !g.spawnCellUsable(pos) {
		var ok bool
		if pos, ok = g.findSpawnCell(); !ok {
			return
		}
	}
	e := g.addEnemy(EnemyHunter, pos)
	g.emit(EventEnemySpawn, pos, e.ID)
}

func (g *Game) addEnemy(t EnemyType, pos GridPos) *Enemy {
	e := NewEnemy(g.nextEnemyID, t, pos)
	g.nextEnemyID++
	g.Enemies = append(g.Enemies, e)
	return e
}

func (g *Game) aliveHunters() int {
	n := 0
	for _, e := range g.Enemies {
		if e.Type == EnemyHunter && e.IsAlive() {
			n++
		}
	}
	return n
}

// spawnCellUsable 空地、无炸弹、未燃烧且离玩家足够远
func (g *Game) spawnCellUsable(pos GridPos) bool {
	c := g.Grid.CellAt(pos.GridX, pos.GridY)
	if c == nil || c.Type != CellEmpty || c.Destroying || c.Burning > 0 {
		return false
	}
	if g.bombs.get(c.Bomb) != nil {
		return false
	}
	if g.Player != nil && pos.Manhattan(g.Player.GridPos()) < g.cfg.Punitive.MinDistance {
		return false
	}
	return true
}

// findSpawnCell 先有限次随机尝试，失败后顺序扫描取离玩家最远的可用格子
func (g *Game) findSpawnCell() (GridPos, bool) {
	for i := 0; i < spawnSearchAttempts; i++ {
		pos := GridPos{GridX: g.rng.Intn(g.Grid.Width), GridY: g.rng.Intn(g.Grid.Height)}
		if g.spawnCellUsable(pos) {
			return pos, true
		}
	}

	var best GridPos
	bestDist := -1
	g.Grid.Each(func(c *Cell) {
		pos := c.Pos()
		if !g.spawnCellUsable(pos) {
			return
		}
		d := 0
		if g.Player != nil {
			d = pos.Manhattan(g.Player.GridPos())
		}
		if d > bestDist {
			best, bestDist = pos, d
		}
	})
	return best, bestDist >= 0
}

// updateTimers 连杀窗口、慢动作窗口、出口提示冷却，均使用真实时间
func (g *Game) updateTimers(dt float64) {
	if g.Combo.Timer > 0 {
		g.Combo.Timer -= dt
		if g.Combo.Timer <= timerEpsilon {
			g.Combo = Combo{}
		}
	}
	if g.slowMoTimer > 0 {
		g.slowMoTimer -= dt
		if g.slowMoTimer < 0 {
			g.slowMoTimer = 0
		}
	}
	if g.exitRejectTimer > 0 {
		g.exitRejectTimer -= dt
		if g.exitRejectTimer < 0 {
			g.exitRejectTimer = 0
		}
	}
}

// updateSpikes 地刺按 落下→升起 周期切换
func (g *Game) updateSpikes(dt float64) {
	if g.Level.Mechanic != MechanicSpikes {
		return
	}
	g.spikeTimer -= dt
	if g.spikeTimer > timerEpsilon {
		return
	}
	g.SpikesRaised = !g.SpikesRaised
	if g.SpikesRaised {
		g.spikeTimer = g.cfg.Spikes.Up
	} else {
		g.spikeTimer = g.cfg.Spikes.Down
	}
}
