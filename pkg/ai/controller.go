package ai

import (
	"math/rand"

	"bombsim/pkg/ai/bt"
	"bombsim/pkg/core"
)

// Autopilot 玩家自动驾驶，用于无头运行与服务端托管
// 每帧都会执行行为树，ThinkInterval 只控制目标的重新选择
type Autopilot struct {
	rnd    *rand.Rand
	config AIConfig

	thinkTimer float64
	mistake    core.Direction

	blackboard Blackboard
	tree       bt.Node[*Blackboard]
	danger     DangerField

	lastInDanger bool
	lastBombs    int
}

// NewAutopilot 创建自动驾驶，相同 seed 与相同局面给出相同输入
func NewAutopilot(config AIConfig, seed int64) *Autopilot {
	a := &Autopilot{
		rnd:    rand.New(rand.NewSource(seed)),
		config: config,
	}
	a.blackboard = Blackboard{
		RNG:    a.rnd,
		Danger: &a.danger,
		Config: &a.config,
	}

	a.tree = bt.Sel(
		bt.Seq(
			bt.Cond(condInDanger),
			bt.Sel(
				bt.Seq(bt.Do(actFindSafe), bt.Do(actMoveToSafe)),
				bt.Do(actHoldStill),
			),
		),
		bt.Seq(bt.Cond(condExitOpen), bt.Do(actMoveToExit)),
		bt.Do(actSeekPowerUp),
		bt.Seq(
			bt.Cond(condCanBomb),
			bt.Do(actFindTarget),
			bt.Do(actPreCheckEscape),
			bt.Do(actMoveToTarget),
			bt.Do(actPlaceBomb),
		),
		bt.Do(actWander),
	)
	return a
}

// Config 当前配置
func (a *Autopilot) Config() AIConfig {
	return a.config
}

// Decide 根据当前局面给出玩家本帧输入
func (a *Autopilot) Decide(g *core.Game, dt float64) core.Input {
	p := g.Player
	if p == nil || p.IsDying || g.Grid == nil {
		return core.Input{}
	}
	cfg := g.Config()
	bombs := g.Bombs()
	a.danger.Update(g.Grid, bombs, g.Explosions, a.config.FullChainRecursion)

	bb := &a.blackboard
	bb.ResetFrame(dt)
	bb.Grid = g.Grid
	bb.Walk = playerWalkable(g.Grid, p.Mods)
	bb.Pos = p.GridPos()
	bb.X, bb.Y, bb.W, bb.H = p.Bounds()
	bb.Speed = p.Speed(cfg.Player)
	bb.BombRange = p.Mods.FireRange
	bb.Fuse = cfg.Bomb.Fuse
	bb.CanBomb = p.FreeSlots() > 0
	bb.Quarries = bb.Quarries[:0]
	for _, e := range g.Enemies {
		if e.IsAlive() {
			bb.Quarries = append(bb.Quarries, e.GridPos())
		}
	}
	bb.PowerUps = bb.PowerUps[:0]
	for _, pu := range g.PowerUps() {
		bb.PowerUps = append(bb.PowerUps, pu.Pos)
	}
	bb.Exit = nil
	if len(bb.Quarries) == 0 {
		bb.Exit = findExit(g.Grid)
	}

	// 危险状态或炸弹数量变化时立即重新思考
	inDanger := a.danger.InDanger(bb.Pos.GridX, bb.Pos.GridY)
	force := (inDanger && !a.lastInDanger) || len(bombs) != a.lastBombs
	a.lastInDanger = inDanger
	a.lastBombs = len(bombs)

	a.thinkTimer -= dt
	bb.Replan = force || a.thinkTimer <= 0
	if bb.Replan {
		a.thinkTimer = a.config.ThinkInterval
		a.mistake = core.DirNone
		// 应用随机失误：本次思考周期内朝随机方向走
		if !inDanger && a.config.MistakeRate > 0 && a.rnd.Float64() < a.config.MistakeRate {
			a.mistake = core.Directions[a.rnd.Intn(len(core.Directions))]
		}
	}

	_ = a.tree.Tick(bb)

	in := core.Input{Bomb: bb.PlaceBomb}
	dir := bb.NextDir
	if a.mistake != core.DirNone && !inDanger {
		dir = a.mistake
		in.Bomb = false
	}
	// 反向诅咒下提前反转，抵消核心里的反转
	if p.Mods.Curse == core.CurseReverse {
		dir = dir.Opposite()
	}
	setDirection(&in, dir)

	// 遥控炸弹：自己不在任何炸弹的范围内时引爆
	if p.Mods.Detonator && !inDanger && hasOwnBomb(bombs) {
		in.Detonate = true
	}
	return in
}

func setDirection(in *core.Input, d core.Direction) {
	switch d {
	case core.DirUp:
		in.Up = true
	case core.DirDown:
		in.Down = true
	case core.DirLeft:
		in.Left = true
	case core.DirRight:
		in.Right = true
	}
}

func hasOwnBomb(bombs []core.Bomb) bool {
	for i := range bombs {
		if bombs[i].Owner == core.PlayerOwnerID && bombs[i].Manual {
			return true
		}
	}
	return false
}

func findExit(grid *core.Grid) *core.GridPos {
	var exit *core.GridPos
	grid.Each(func(c *core.Cell) {
		if exit == nil && c.Type == core.CellExit {
			p := c.Pos()
			exit = &p
		}
	})
	return exit
}
