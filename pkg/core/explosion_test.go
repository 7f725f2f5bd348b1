package core

import (
	"sort"
	"testing"
)

func openGrid(w, h int) *Grid {
	g := NewGrid(w, h)
	g.BuildLayout(LayoutOptions{Pattern: LayoutOpen})
	return g
}

func posSet(cells []AffectedCell) map[GridPos]Direction {
	m := make(map[GridPos]Direction, len(cells))
	for _, c := range cells {
		m[c.Pos] = c.Dir
	}
	return m
}

func sortedPositions(m map[GridPos]Direction) []GridPos {
	out := make([]GridPos, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GridY != out[j].GridY {
			return out[i].GridY < out[j].GridY
		}
		return out[i].GridX < out[j].GridX
	})
	return out
}

func TestPropagatePlusShape(t *testing.T) {
	grid := openGrid(13, 11)
	origin := GridPos{GridX: 6, GridY: 5}

	for r := 0; r <= 4; r++ {
		cells := Propagate(grid, origin, r)
		if len(cells) != 1+4*r {
			t.Fatalf("range %d: expected %d cells, got %d", r, 1+4*r, len(cells))
		}
		set := posSet(cells)
		if set[origin] != DirNone {
			t.Errorf("range %d: origin should be tagged DirNone", r)
		}
		for _, d := range Directions {
			for i := 1; i <= r; i++ {
				p := origin.Add(d, i)
				dir, ok := set[p]
				if !ok {
					t.Errorf("range %d: missing %v", r, p)
					continue
				}
				if dir != d {
					t.Errorf("range %d: %v tagged %v, want %v", r, p, dir, d)
				}
			}
		}
	}
}

func TestPropagateNegativeRange(t *testing.T) {
	grid := openGrid(13, 11)
	origin := GridPos{GridX: 6, GridY: 5}

	cells := Propagate(grid, origin, -1)
	if len(cells) != 1 || cells[0].Pos != origin || cells[0].Dir != DirNone {
		t.Errorf("negative range should only hit the origin, got %+v", cells)
	}
}

func TestPropagateExampleScenario(t *testing.T) {
	grid := openGrid(13, 11)
	grid.SetType(3, 1, CellWall)

	got := sortedPositions(posSet(Propagate(grid, GridPos{GridX: 1, GridY: 1}, 2)))
	want := []GridPos{{1, 1}, {2, 1}, {1, 2}, {1, 3}}
	sort.Slice(want, func(i, j int) bool {
		if want[i].GridY != want[j].GridY {
			return want[i].GridY < want[j].GridY
		}
		return want[i].GridX < want[j].GridX
	})
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPropagateTerrain(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(g *Grid)
		include []GridPos
		exclude []GridPos
	}{
		{
			name:    "wall stops and is excluded",
			setup:   func(g *Grid) { g.SetType(8, 5, CellWall) },
			include: []GridPos{{7, 5}},
			exclude: []GridPos{{8, 5}, {9, 5}},
		},
		{
			name:    "block included and stops",
			setup:   func(g *Grid) { g.SetType(8, 5, CellBlock) },
			include: []GridPos{{7, 5}, {8, 5}},
			exclude: []GridPos{{9, 5}},
		},
		{
			name: "destroying block still stops",
			setup: func(g *Grid) {
				g.SetType(8, 5, CellBlock)
				g.beginDestroy(g.CellAt(8, 5))
			},
			include: []GridPos{{8, 5}},
			exclude: []GridPos{{9, 5}},
		},
		{
			name: "exit and hazard pass through",
			setup: func(g *Grid) {
				g.SetType(7, 5, CellExit)
				g.SetType(8, 5, CellLava)
			},
			include: []GridPos{{7, 5}, {8, 5}, {9, 5}},
		},
		{
			name:    "only one block per arm",
			setup:   func(g *Grid) { g.SetType(7, 5, CellBlock); g.SetType(8, 5, CellBlock) },
			include: []GridPos{{7, 5}},
			exclude: []GridPos{{8, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := openGrid(13, 11)
			tt.setup(grid)
			set := posSet(Propagate(grid, GridPos{GridX: 6, GridY: 5}, 3))
			for _, p := range tt.include {
				if _, ok := set[p]; !ok {
					t.Errorf("expected %v to be affected", p)
				}
			}
			for _, p := range tt.exclude {
				if _, ok := set[p]; ok {
					t.Errorf("expected %v not to be affected", p)
				}
			}
		})
	}
}

func TestPropagateAtMapEdge(t *testing.T) {
	grid := NewGrid(5, 5)
	cells := Propagate(grid, GridPos{GridX: 0, GridY: 0}, 10)
	// 无外墙时在地图边缘截断
	if len(cells) != 1+4+4 {
		t.Fatalf("expected 9 cells, got %d", len(cells))
	}
}

func TestChainReactionSameTick(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Grid.SetType(7, 3, CellBlock)

	ha, ok := g.spawnBomb(GridPos{GridX: 3, GridY: 3}, PlayerOwnerID, 2, 1, false)
	if !ok {
		t.Fatal("spawn A failed")
	}
	if _, ok := g.spawnBomb(GridPos{GridX: 5, GridY: 3}, PlayerOwnerID, 2, 1, false); !ok {
		t.Fatal("spawn B failed")
	}
	g.bombs.get(ha).Fuse = 0.001

	g.Update(FixedDeltaTime, Input{})

	if n := len(g.Explosions); n != 2 {
		t.Fatalf("expected 2 explosions in the same tick, got %d", n)
	}
	if n := len(g.Bombs()); n != 0 {
		t.Errorf("expected no live bombs, got %d", n)
	}
	if !g.Grid.CellAt(7, 3).Destroying {
		t.Error("block reachable only by the chained bomb should be destroying")
	}
	if n := countEvents(g.DrainEvents(), EventExplosion); n != 2 {
		t.Errorf("expected 2 explosion events, got %d", n)
	}
}

func TestExplosionClearsBurningOnRemoval(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	h, _ := g.spawnBomb(GridPos{GridX: 6, GridY: 5}, PlayerOwnerID, 1, 1, false)
	g.bombs.get(h).Fuse = 0.001

	g.Update(FixedDeltaTime, Input{})
	if g.Grid.CellAt(6, 5).Burning != 1 {
		t.Fatalf("origin should be burning")
	}

	step(g, 60, FixedDeltaTime, Input{})
	if len(g.Explosions) != 0 {
		t.Fatalf("explosion should have expired")
	}
	c := g.Grid.CellAt(6, 5)
	if c.Burning != 0 {
		t.Errorf("burning should be cleared, got %d", c.Burning)
	}
}

func TestBlockDestructionRevealsPayload(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	pu := g.Grid.CellAt(5, 5)
	pu.Type = CellBlock
	pu.HiddenPowerUp = PowerUpFire
	ex := g.Grid.CellAt(7, 5)
	ex.Type = CellBlock
	ex.HasHiddenExit = true
	ex.HiddenPowerUp = PowerUpBomb

	g.Grid.beginDestroy(pu)
	g.Grid.beginDestroy(ex)
	if g.Grid.IsPassable(5, 5) {
		t.Error("destroying block must still block movement")
	}

	g.updateDestruction(g.cfg.Timing.BlockDestroyDuration)

	if got, ok := g.PowerUpAt(5, 5); !ok || got.Type != PowerUpFire {
		t.Errorf("expected fire power-up at (5,5), got %+v %v", got, ok)
	}
	if g.Grid.TypeAt(7, 5) != CellExit {
		t.Errorf("expected exit at (7,5), got %v", g.Grid.TypeAt(7, 5))
	}
	if _, ok := g.PowerUpAt(7, 5); ok {
		t.Error("exit takes priority over hidden power-up")
	}
	if g.Stats.BlocksDestroyed != 2 {
		t.Errorf("expected 2 blocks destroyed, got %d", g.Stats.BlocksDestroyed)
	}
}

func TestExplosionDestroysPowerUp(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.spawnPowerUp(GridPos{GridX: 7, GridY: 5}, PowerUpSpeed)
	h, _ := g.spawnBomb(GridPos{GridX: 6, GridY: 5}, PlayerOwnerID, 2, 1, false)
	g.bombs.get(h).Fuse = 0.001

	g.Update(FixedDeltaTime, Input{})

	if _, ok := g.PowerUpAt(7, 5); ok {
		t.Error("power-up in blast should be removed")
	}
	if g.Grid.CellAt(7, 5).PowerUp.Valid() {
		t.Error("grid handle should be cleared after purge")
	}
}
