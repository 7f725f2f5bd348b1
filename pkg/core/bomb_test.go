package core

import "testing"

func TestPlaceBombOccupancy(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Player.Mods.MaxBombs = 3

	if n := g.PlaceBomb(); n != 1 {
		t.Fatalf("expected 1 bomb placed, got %d", n)
	}
	g.Player.placementCooldown = 0
	if n := g.PlaceBomb(); n != 0 {
		t.Fatalf("second bomb on the same cell must be rejected, got %d", n)
	}
	if g.Player.ActiveBombs != 1 {
		t.Errorf("expected 1 active bomb, got %d", g.Player.ActiveBombs)
	}
	if _, ok := g.spawnBomb(GridPos{GridX: 0, GridY: 0}, PlayerOwnerID, 1, 1, false); ok {
		t.Error("bomb on a wall must be rejected")
	}
	if _, ok := g.spawnBomb(GridPos{GridX: -1, GridY: 3}, PlayerOwnerID, 1, 1, false); ok {
		t.Error("bomb off-grid must be rejected")
	}

	// 任意时刻每个格子最多登记一个存活炸弹
	for i := 0; i < 200; i++ {
		g.Update(FixedDeltaTime, Input{Bomb: true, Right: i%40 < 20, Down: i%40 >= 20})
		seen := make(map[GridPos]int)
		for _, b := range g.Bombs() {
			seen[b.Pos()]++
		}
		for p, n := range seen {
			if n > 1 {
				t.Fatalf("tick %d: %d bombs at %v", i, n, p)
			}
		}
		if g.State != StatePlaying {
			break
		}
	}
}

func TestBombSlotsReleasedOnExplosion(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Player.Invincibility = 10

	if g.PlaceBomb() != 1 {
		t.Fatal("place failed")
	}
	if g.Player.FreeSlots() != 0 {
		t.Fatalf("expected no free slots, got %d", g.Player.FreeSlots())
	}
	step(g, int(g.cfg.Bomb.Fuse/FixedDeltaTime)+2, FixedDeltaTime, Input{})
	if g.Player.ActiveBombs != 0 {
		t.Errorf("expected slot released, got %d active", g.Player.ActiveBombs)
	}
	if g.Stats.BombsUsed != 1 {
		t.Errorf("expected 1 bomb used, got %d", g.Stats.BombsUsed)
	}
}

func TestPowerBombConsumesAllSlots(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	p := g.Player
	p.Mods.PowerBomb = true
	p.Mods.MaxBombs = 3
	p.Mods.FireRange = 2

	if g.PlaceBomb() != 1 {
		t.Fatal("place failed")
	}
	b, ok := g.BombAt(1, 1)
	if !ok {
		t.Fatal("expected bomb at spawn")
	}
	if b.Range != 4 {
		t.Errorf("expected range 4, got %d", b.Range)
	}
	if p.ActiveBombs != 3 || p.FreeSlots() != 0 {
		t.Errorf("power bomb should take all slots, active=%d free=%d", p.ActiveBombs, p.FreeSlots())
	}
}

func TestLineBombCountsPlacedOnly(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	p := g.Player
	p.Mods.LineBomb = true
	p.Mods.MaxBombs = 4
	p.Direction = DirRight
	g.Grid.SetType(3, 1, CellBlock)

	if g.PlaceBomb() != 1 {
		t.Fatal("first bomb should be a normal placement")
	}
	p.placementCooldown = 0
	if n := g.PlaceBomb(); n != 1 {
		t.Fatalf("line should stop at the block after one bomb, got %d", n)
	}
	if _, ok := g.BombAt(2, 1); !ok {
		t.Error("expected line bomb at (2,1)")
	}
	if p.ActiveBombs != 2 {
		t.Errorf("expected 2 active bombs, got %d", p.ActiveBombs)
	}
	if g.Stats.BombsUsed != 2 {
		t.Errorf("expected 2 bombs used, got %d", g.Stats.BombsUsed)
	}
}

func TestDetonatorExplodesManualBombs(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Player.Mods.Detonator = true
	g.Player.Invincibility = 10

	if g.PlaceBomb() != 1 {
		t.Fatal("place failed")
	}
	b, _ := g.BombAt(1, 1)
	if !b.Manual {
		t.Fatal("bomb placed with detonator should be manual")
	}

	g.Update(FixedDeltaTime, Input{Detonate: true})

	if len(g.Explosions) != 1 {
		t.Fatalf("expected immediate explosion, got %d", len(g.Explosions))
	}
	if g.State != StatePlaying {
		t.Errorf("invincible player should survive, state %v", g.State)
	}
}

func TestKickSlidesUntilBlocked(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Player.Mods.Kick = true
	g.Grid.SetType(8, 1, CellBlock)
	if _, ok := g.spawnBomb(GridPos{GridX: 2, GridY: 1}, PlayerOwnerID, 1, 1, false); !ok {
		t.Fatal("spawn failed")
	}

	kicked := false
	for i := 0; i < 30 && !kicked; i++ {
		g.Update(FixedDeltaTime, Input{Right: true})
		kicked = countEvents(g.DrainEvents(), EventBombKicked) > 0
	}
	if !kicked {
		t.Fatal("bomb was never kicked")
	}

	step(g, 60, FixedDeltaTime, Input{})

	b, ok := g.BombAt(7, 1)
	if !ok {
		t.Fatalf("expected bomb to stop at (7,1), bombs: %+v", g.Bombs())
	}
	if b.State != BombArmed || b.SlideOffset != 0 {
		t.Errorf("stopped bomb should be armed at cell centre, got %v offset %v", b.State, b.SlideOffset)
	}
	if _, ok := g.BombAt(2, 1); ok {
		t.Error("old cell should no longer hold the bomb")
	}
}

func TestKickStopsAtEnemy(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.addEnemy(EnemyWanderer, GridPos{GridX: 5, GridY: 5})
	h, _ := g.spawnBomb(GridPos{GridX: 5, GridY: 2}, PlayerOwnerID, 1, 1, false)
	b := g.bombs.get(h)
	b.State = BombSliding
	b.SlideDir = DirDown

	step(g, 60, FixedDeltaTime, Input{})

	if _, ok := g.BombAt(5, 4); !ok {
		t.Fatalf("expected bomb to stop before the enemy, bombs: %+v", g.Bombs())
	}
}

func TestEnemyBomberSlot(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	e := g.addEnemy(EnemyBomber, GridPos{GridX: 9, GridY: 7})

	g.enemyPlaceBomb(e)
	g.enemyPlaceBomb(e)
	if e.ActiveBombs != 1 {
		t.Fatalf("bomber should hold at most one bomb, got %d", e.ActiveBombs)
	}
	b, ok := g.BombAt(9, 7)
	if !ok || b.Owner != e.ID || b.Range != g.cfg.Bomb.EnemyBombRange {
		t.Fatalf("unexpected bomb %+v %v", b, ok)
	}

	h := g.Grid.CellAt(9, 7).Bomb
	g.bombs.get(h).Fuse = 0.001
	g.Update(FixedDeltaTime, Input{})
	if e.ActiveBombs != 0 {
		t.Errorf("slot should be released, got %d", e.ActiveBombs)
	}
	if e.IsAlive() {
		t.Error("bomber standing on its own bomb should die")
	}
}

func TestNegativeEnemyRangeExplodesInPlace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bomb.EnemyBombRange = -1
	g := newTestGame(t, cfg)
	e := g.addEnemy(EnemyBomber, GridPos{GridX: 9, GridY: 7})

	g.enemyPlaceBomb(e)
	h := g.Grid.CellAt(9, 7).Bomb
	g.bombs.get(h).Fuse = 0.001
	g.Update(FixedDeltaTime, Input{})

	if _, ok := g.BombAt(9, 7); ok {
		t.Fatal("bomb should have exploded")
	}
	if e.IsAlive() {
		t.Error("the centre cell is still hit")
	}
	if g.Grid.CellAt(9, 7).Burning == 0 || g.Grid.CellAt(10, 7).Burning != 0 {
		t.Error("fire should cover the centre cell only")
	}
}

func TestUpdateClampsDelta(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	h, _ := g.spawnBomb(GridPos{GridX: 5, GridY: 5}, PlayerOwnerID, 1, 1, false)

	g.Update(10, Input{})

	b := g.bombs.get(h)
	if b == nil {
		t.Fatal("a stalled frame must not skip the fuse")
	}
	want := g.cfg.Bomb.Fuse - g.cfg.MaxDelta
	if diff := b.Fuse - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected fuse %v, got %v", want, b.Fuse)
	}
}
