// Package level 默认关卡生成器：按关卡编号确定性地生成关卡描述
package level

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"bombsim/pkg/core"
)

// ErrInvalidLevel 关卡编号或地图尺寸不可用
var ErrInvalidLevel = errors.New("invalid level")

// 难度曲线
const (
	baseDensity      = 0.35
	densityStep      = 0.03
	maxDensity       = 0.7
	baseEnemies      = 2
	maxEnemies       = 10
	baseTimeLimit    = 200.0
	timeLimitStep    = 5.0
	minTimeLimit     = 120.0
	multiplierStep   = 0.1
	basePowerUps     = 2
	maxPowerUps      = 6
	enemyMinDistance = 6 // 敌人出生点与玩家的最小曼哈顿距离
	curseChance      = 0.15
)

// 布局按每三关轮换
var patterns = []core.LayoutPattern{core.LayoutClassic, core.LayoutCross, core.LayoutRings, core.LayoutOpen}

// Generator 默认关卡生成器，实现 core.LevelGenerator
type Generator struct {
	Width  int
	Height int
}

var _ core.LevelGenerator = (*Generator)(nil)

// NewGenerator 创建指定尺寸的生成器
func NewGenerator(width, height int) *Generator {
	return &Generator{Width: width, Height: height}
}

// Generate 相同 (level, seed) 总是得到相同的描述
func (g *Generator) Generate(level int, seed int64) (core.LevelDescriptor, error) {
	if level < 1 {
		return core.LevelDescriptor{}, fmt.Errorf("%w: level %d", ErrInvalidLevel, level)
	}
	if g.Width < core.MinGridSize || g.Height < core.MinGridSize {
		return core.LevelDescriptor{}, fmt.Errorf("%w: grid %dx%d", ErrInvalidLevel, g.Width, g.Height)
	}
	levelSeed := seed*1000003 + int64(level)
	r := rand.New(rand.NewSource(levelSeed))

	desc := core.LevelDescriptor{
		Level:           level,
		Seed:            levelSeed,
		Width:           g.Width,
		Height:          g.Height,
		Layout:          patterns[((level-1)/3)%len(patterns)],
		Mechanic:        mechanicFor(level),
		BlockDensity:    math.Min(baseDensity+densityStep*float64(level-1), maxDensity),
		PlayerSpawn:     core.GridPos{GridX: 1, GridY: 1},
		TimeLimit:       math.Max(baseTimeLimit-timeLimitStep*float64(level-1), minTimeLimit),
		ScoreMultiplier: 1 + multiplierStep*float64(level-1),
	}

	open := g.openCells(desc)
	r.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })

	enemies := min(baseEnemies+level/2, maxEnemies)
	roster := rosterFor(level)
	for _, p := range open {
		if len(desc.EnemySpawns) == enemies {
			break
		}
		if p.Manhattan(desc.PlayerSpawn) < enemyMinDistance {
			continue
		}
		desc.EnemySpawns = append(desc.EnemySpawns, core.EnemySpawn{
			Pos:  p,
			Type: roster[r.Intn(len(roster))],
		})
	}

	// 道具位置只是建议，LoadLevel 会把它们藏到砖块下
	pool := powerUpPool(level)
	count := min(basePowerUps+level/3, maxPowerUps)
	for i := 0; i < count && i < len(open); i++ {
		t := pool[r.Intn(len(pool))]
		if level > 1 && r.Float64() < curseChance {
			t = core.PowerUpSkull
		}
		desc.PowerUps = append(desc.PowerUps, core.PowerUpPlacement{
			Pos:  open[len(open)-1-i],
			Type: t,
		})
	}
	return desc, nil
}

// openCells 只套用布局模板（不放砖块），返回出生区以外的空地
func (g *Generator) openCells(desc core.LevelDescriptor) []core.GridPos {
	grid := core.NewGrid(desc.Width, desc.Height)
	grid.Reserve(desc.PlayerSpawn.GridX, desc.PlayerSpawn.GridY)
	for _, d := range core.Directions {
		p := desc.PlayerSpawn.Add(d, 1)
		grid.Reserve(p.GridX, p.GridY)
	}
	grid.BuildLayout(core.LayoutOptions{
		Pattern:  desc.Layout,
		Mechanic: desc.Mechanic,
		Seed:     desc.Seed,
	})

	var cells []core.GridPos
	grid.Each(func(c *core.Cell) {
		if c.Type == core.CellEmpty && !c.Reserved {
			cells = append(cells, c.Pos())
		}
	})
	return cells
}

// mechanicFor 前三关没有特殊机制，之后熔岩与地刺交替出现
func mechanicFor(level int) core.SpecialMechanic {
	switch {
	case level < 4:
		return core.MechanicNone
	case level%2 == 0:
		return core.MechanicSpikes
	default:
		return core.MechanicLava
	}
}

// rosterFor 随关卡解锁的敌人类型
func rosterFor(level int) []core.EnemyType {
	roster := []core.EnemyType{core.EnemyWanderer}
	if level >= 2 {
		roster = append(roster, core.EnemyChaser)
	}
	if level >= 4 {
		roster = append(roster, core.EnemyGhost)
	}
	if level >= 6 {
		roster = append(roster, core.EnemyBomber)
	}
	return roster
}

// powerUpPool 随关卡解锁的道具
func powerUpPool(level int) []core.PowerUpType {
	pool := []core.PowerUpType{core.PowerUpFire, core.PowerUpBomb, core.PowerUpSpeed}
	if level >= 2 {
		pool = append(pool, core.PowerUpKick, core.PowerUpShield)
	}
	if level >= 3 {
		pool = append(pool, core.PowerUpBombPass, core.PowerUpDetonator)
	}
	if level >= 5 {
		pool = append(pool, core.PowerUpWallPass, core.PowerUpFlamePass, core.PowerUpLineBomb)
	}
	if level >= 7 {
		pool = append(pool, core.PowerUpPowerBomb, core.PowerUpFullFire)
	}
	return pool
}
