package core

import "testing"

// idleAI 让敌人原地不动，便于构造确定的场景
type idleAI struct{}

func (idleAI) PrecomputeDangerZones(*Grid, []Bomb, []*Explosion) {}
func (idleAI) Update(*Enemy, *Player, float64) Intent            { return Intent{} }

type recordingSink struct {
	results []RoundResult
}

func (s *recordingSink) RecordResult(r RoundResult) error {
	s.results = append(s.results, r)
	return nil
}

// newTestGame 开阔地图（只有外墙、没有砖块和出口），玩家在 (1,1)，直接进入 Playing
func newTestGame(t *testing.T, cfg Config, opts ...Option) *Game {
	t.Helper()
	opts = append([]Option{WithEnemyAI(idleAI{})}, opts...)
	g := NewGame(cfg, opts...)
	desc := LevelDescriptor{
		Level:        1,
		Seed:         7,
		Width:        DefaultGridWidth,
		Height:       DefaultGridHeight,
		Layout:       LayoutOpen,
		BlockDensity: 0,
		PlayerSpawn:  GridPos{GridX: 1, GridY: 1},
		TimeLimit:    200,
	}
	if err := g.LoadLevel(desc); err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	g.Grid.Each(func(c *Cell) {
		if c.Type == CellExit {
			c.Type = CellEmpty
		}
	})
	g.State = StatePlaying
	g.Player.SpawnProtection = 0
	g.DrainEvents()
	return g
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func step(g *Game, n int, dt float64, in Input) {
	for i := 0; i < n; i++ {
		g.Update(dt, in)
	}
}
