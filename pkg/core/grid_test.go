package core

import "testing"

func TestArenaHandleGeneration(t *testing.T) {
	var a arena[Bomb]

	h1, b := a.insert(Bomb{Range: 1})
	b.Range = 2
	if got := a.get(h1); got == nil || got.Range != 2 {
		t.Fatalf("expected live bomb with range 2, got %+v", got)
	}
	if !a.remove(h1) {
		t.Fatal("remove failed")
	}
	if a.remove(h1) {
		t.Error("double remove must fail")
	}

	h2, _ := a.insert(Bomb{Range: 3})
	if h2.index != h1.index {
		t.Fatalf("expected slot reuse, got %d and %d", h1.index, h2.index)
	}
	if a.get(h1) != nil {
		t.Error("stale handle must not alias the reused slot")
	}
	if got := a.get(h2); got == nil || got.Range != 3 {
		t.Errorf("expected new bomb, got %+v", got)
	}
	if a.get(Handle[Bomb]{}) != nil {
		t.Error("zero handle must resolve to nothing")
	}

	a.clear()
	if a.len() != 0 || a.get(h2) != nil {
		t.Error("clear should invalidate every handle")
	}
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(5, 5)
	if g.CellAt(-1, 0) != nil || g.CellAt(5, 0) != nil || g.CellAt(0, 5) != nil {
		t.Error("off-grid lookups should return nil")
	}
	if g.TypeAt(99, 99) != CellWall {
		t.Error("off-grid type should read as wall")
	}
	c := g.CellAt(3, 2)
	if c.Pos() != (GridPos{GridX: 3, GridY: 2}) {
		t.Errorf("unexpected position %v", c.Pos())
	}

	c.Type = CellBlock
	c.Afterglow = 1
	g.Reset()
	g.Reset()
	if c.Type != CellEmpty || c.Afterglow != 0 || c.Pos() != (GridPos{GridX: 3, GridY: 2}) {
		t.Errorf("reset should clear state and keep coordinates, got %+v", *c)
	}
}

func TestBuildLayoutDeterministic(t *testing.T) {
	opts := LayoutOptions{Pattern: LayoutClassic, Mechanic: MechanicLava, Seed: 42, Density: 0.6}

	build := func() *Grid {
		g := NewGrid(DefaultGridWidth, DefaultGridHeight)
		g.Reserve(1, 1)
		g.Reserve(2, 1)
		g.Reserve(1, 2)
		g.BuildLayout(opts)
		return g
	}
	a, b := build(), build()

	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.TypeAt(x, y) != b.TypeAt(x, y) {
				t.Fatalf("layout differs at (%d,%d)", x, y)
			}
		}
	}

	for _, p := range []GridPos{{1, 1}, {2, 1}, {1, 2}} {
		if a.TypeAt(p.GridX, p.GridY) != CellEmpty {
			t.Errorf("reserved cell %v should stay empty, got %v", p, a.TypeAt(p.GridX, p.GridY))
		}
	}
	for y := 2; y < a.Height-1; y += 2 {
		for x := 2; x < a.Width-1; x += 2 {
			if a.TypeAt(x, y) != CellWall {
				t.Errorf("pillar expected at (%d,%d)", x, y)
			}
		}
	}
	if a.Count(CellLava) == 0 {
		t.Error("lava mechanic should place hazards")
	}
	if a.Count(CellBlock) == 0 {
		t.Error("expected blocks")
	}
}

func TestParseLayoutPattern(t *testing.T) {
	for _, p := range []LayoutPattern{LayoutClassic, LayoutOpen, LayoutCross, LayoutRings} {
		got, err := ParseLayoutPattern(p.String())
		if err != nil || got != p {
			t.Errorf("round trip %v: got %v %v", p, got, err)
		}
	}
	if _, err := ParseLayoutPattern("maze"); err == nil {
		t.Error("unknown pattern should fail")
	}
}

func TestCornerCorrection(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Grid.SetType(2, 2, CellWall)
	p := g.Player
	// 稍微偏右，向下时应被推回 x=1 的通道
	p.X += 5

	start := p.Y
	step(g, 20, FixedDeltaTime, Input{Down: true})

	if p.Y <= start {
		t.Fatalf("player should slide past the corner, y %v -> %v", start, p.Y)
	}
	if got := p.GridPos().GridX; got != 1 {
		t.Errorf("expected to stay in column 1, got %d", got)
	}
}

func TestWallPassAndBombPass(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Grid.SetType(2, 1, CellBlock)
	blocked := g.playerBlocker()
	if !blocked(2, 1) {
		t.Fatal("block should stop a normal player")
	}
	g.Player.Mods.WallPass = true
	if g.playerBlocker()(2, 1) {
		t.Error("wall pass should ignore blocks")
	}
	if !g.playerBlocker()(0, 1) {
		t.Error("walls always block")
	}

	g.spawnBomb(GridPos{GridX: 1, GridY: 2}, PlayerOwnerID, 1, 1, false)
	if !g.playerBlocker()(1, 2) {
		t.Error("bomb should block")
	}
	g.Player.Mods.BombPass = true
	if g.playerBlocker()(1, 2) {
		t.Error("bomb pass should ignore bombs")
	}
}
