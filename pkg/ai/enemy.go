package ai

import (
	"math/rand"

	"bombsim/pkg/ai/bt"
	"bombsim/pkg/core"
)

// Brain 敌人 AI，实现 core.EnemyAI
// 危险场每帧只算一次，所有敌人共享；每个敌人有独立的黑板
type Brain struct {
	config    AIConfig
	fuse      float64
	bombRange int
	rnd       *rand.Rand

	grid   *core.Grid
	danger DangerField
	minds  map[int]*mind
	trees  map[core.EnemyType]bt.Node[*Blackboard]
}

type mind struct {
	blackboard   Blackboard
	thinkTimer   float64
	mistake      core.Direction
	lastInDanger bool
}

var _ core.EnemyAI = (*Brain)(nil)

// NewBrain 创建敌人 AI，bomb 提供敌人炸弹的引信与范围
func NewBrain(config AIConfig, bomb core.BombConfig, seed int64) *Brain {
	b := &Brain{
		config:    config,
		fuse:      bomb.Fuse,
		bombRange: bomb.EnemyBombRange,
		rnd:       rand.New(rand.NewSource(seed)),
		minds:     make(map[int]*mind),
	}

	escape := bt.Seq(
		bt.Cond(condInDanger),
		bt.Sel(
			bt.Seq(bt.Do(actFindSafe), bt.Do(actMoveToSafe)),
			bt.Do(actHoldStill),
		),
	)
	wander := bt.Do(actWander)
	chaseNear := bt.Seq(bt.Cond(condQuarryNear), bt.Do(actChase))

	b.trees = map[core.EnemyType]bt.Node[*Blackboard]{
		core.EnemyWanderer: bt.Sel(escape, wander),
		core.EnemyChaser:   bt.Sel(escape, chaseNear, wander),
		core.EnemyGhost:    bt.Sel(escape, chaseNear, wander),
		core.EnemyBomber: bt.Sel(
			escape,
			bt.Seq(
				bt.Cond(condCanBomb),
				bt.Do(actAimAtQuarry),
				bt.Do(actPreCheckEscape),
				bt.Do(actPlaceBomb),
			),
			chaseNear,
			wander,
		),
		core.EnemyHunter: bt.Sel(escape, bt.Do(actChase), wander),
	}
	return b
}

// PrecomputeDangerZones 每帧在所有敌人决策前调用一次
func (b *Brain) PrecomputeDangerZones(grid *core.Grid, bombs []core.Bomb, explosions []*core.Explosion) {
	b.grid = grid
	b.danger.Update(grid, bombs, explosions, b.config.FullChainRecursion)
}

// Update 给出单个敌人本帧的意图
func (b *Brain) Update(e *core.Enemy, p *core.Player, dt float64) core.Intent {
	if b.grid == nil || e == nil {
		return core.Intent{}
	}
	m := b.mindFor(e.ID)
	bb := &m.blackboard
	bb.ResetFrame(dt)
	bb.Grid = b.grid
	bb.Walk = enemyWalkable(b.grid, e.Type.PassesBlocks())
	bb.Pos = e.GridPos()
	bb.X, bb.Y, bb.W, bb.H = e.Bounds()
	bb.Speed = e.Speed
	bb.BombRange = b.bombRange
	bb.Fuse = b.fuse
	bb.CanBomb = e.Type == core.EnemyBomber && e.ActiveBombs == 0
	bb.Quarries = bb.Quarries[:0]
	if p != nil && !p.IsDying {
		bb.Quarries = append(bb.Quarries, p.GridPos())
	}

	inDanger := b.danger.InDanger(bb.Pos.GridX, bb.Pos.GridY)
	m.thinkTimer -= dt
	bb.Replan = m.thinkTimer <= 0 || inDanger != m.lastInDanger
	m.lastInDanger = inDanger
	if bb.Replan {
		m.thinkTimer = b.config.ThinkInterval
		m.mistake = core.DirNone
		if !inDanger && b.config.MistakeRate > 0 && b.rnd.Float64() < b.config.MistakeRate {
			m.mistake = core.Directions[b.rnd.Intn(len(core.Directions))]
		}
	}

	tree, ok := b.trees[e.Type]
	if !ok {
		tree = b.trees[core.EnemyWanderer]
	}
	_ = tree.Tick(bb)

	if m.mistake != core.DirNone {
		return core.Intent{Dir: m.mistake}
	}
	return core.Intent{Dir: bb.NextDir, PlaceBomb: bb.PlaceBomb}
}

// Reset 换关时清空所有敌人的黑板
func (b *Brain) Reset() {
	clear(b.minds)
}

func (b *Brain) mindFor(id int) *mind {
	m, ok := b.minds[id]
	if !ok {
		m = &mind{}
		m.blackboard = Blackboard{
			RNG:    b.rnd,
			Danger: &b.danger,
			Config: &b.config,
		}
		b.minds[id] = m
	}
	return m
}
