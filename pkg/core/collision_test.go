package core

import "testing"

func TestPlayerKilledByExplosion(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(p *Player)
		dies    bool
	}{
		{name: "unprotected", prepare: func(p *Player) {}, dies: true},
		{name: "flame pass", prepare: func(p *Player) { p.Mods.FlamePass = true }},
		{name: "spawn protection", prepare: func(p *Player) { p.SpawnProtection = 1 }},
		{name: "invincibility", prepare: func(p *Player) { p.Invincibility = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, DefaultConfig())
			tt.prepare(g.Player)
			h, _ := g.spawnBomb(GridPos{GridX: 3, GridY: 1}, PlayerOwnerID, 2, 1, false)
			g.bombs.get(h).Fuse = 0.001

			g.Update(FixedDeltaTime, Input{})

			if got := g.State == StatePlayerDied; got != tt.dies {
				t.Errorf("expected dies=%v, state %v", tt.dies, g.State)
			}
			if tt.dies && !g.Stats.DamageTaken {
				t.Error("death should mark damage taken")
			}
		})
	}
}

func TestHazardCells(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Grid.SetType(1, 1, CellSpikes)

	g.SpikesRaised = false
	g.spikeTimer = 100
	g.resolveCollisions()
	if g.State != StatePlaying {
		t.Fatal("lowered spikes must not kill")
	}

	g.SpikesRaised = true
	g.resolveCollisions()
	if g.State != StatePlayerDied {
		t.Fatalf("raised spikes should kill, state %v", g.State)
	}

	g = newTestGame(t, DefaultConfig())
	g.Grid.SetType(1, 1, CellLava)
	g.Player.Mods.FlamePass = true
	g.resolveCollisions()
	if g.State != StatePlayerDied {
		t.Fatalf("lava kills regardless of flame pass, state %v", g.State)
	}
}

func TestShieldAbsorbsEnemyContact(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Player.Mods.Shield = true
	g.addEnemy(EnemyWanderer, GridPos{GridX: 1, GridY: 1})

	g.Update(FixedDeltaTime, Input{})

	if g.State != StatePlaying || g.Player.IsDying {
		t.Fatalf("shield should absorb contact, state %v", g.State)
	}
	if g.Player.Mods.Shield {
		t.Error("shield should be consumed")
	}
	if g.Player.Invincibility <= 0 {
		t.Error("expected invincibility after shield break")
	}
	if countEvents(g.DrainEvents(), EventShieldBreak) != 1 {
		t.Error("expected one shield_break event")
	}

	// 无敌窗口内的第二次接触不致命
	step(g, 30, FixedDeltaTime, Input{})
	if g.State != StatePlaying {
		t.Fatalf("second contact during invincibility must not kill, state %v", g.State)
	}

	step(g, int(g.cfg.Player.ShieldInvincibility/FixedDeltaTime), FixedDeltaTime, Input{})
	if g.State != StatePlayerDied {
		t.Fatalf("contact after invincibility expires should kill, state %v", g.State)
	}
}

func TestGhostContactByGrid(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	e := g.addEnemy(EnemyGhost, GridPos{GridX: 2, GridY: 1})
	// 碰撞盒有重叠但中心不在同一格
	e.X -= 10

	g.resolveCollisions()
	if g.State != StatePlaying {
		t.Fatalf("ghost in another cell must not kill, state %v", g.State)
	}

	e.X -= 10
	g.resolveCollisions()
	if g.State != StatePlayerDied {
		t.Fatalf("ghost in the player's cell should kill, state %v", g.State)
	}
}

func TestCollectPowerUp(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	before := g.Player.Mods.FireRange
	g.spawnPowerUp(GridPos{GridX: 1, GridY: 1}, PowerUpFire)

	g.Update(FixedDeltaTime, Input{})

	if g.Player.Mods.FireRange != before+1 {
		t.Errorf("expected fire range %d, got %d", before+1, g.Player.Mods.FireRange)
	}
	if _, ok := g.PowerUpAt(1, 1); ok {
		t.Error("collected power-up should be gone")
	}
	if g.Grid.CellAt(1, 1).PowerUp.Valid() {
		t.Error("grid handle should be cleared")
	}
	if g.Stats.PowerUpsCollected != 1 {
		t.Errorf("expected 1 collected, got %d", g.Stats.PowerUpsCollected)
	}
}

func TestDeferredEnemyRemoval(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	for x := 5; x <= 7; x++ {
		g.addEnemy(EnemyWanderer, GridPos{GridX: x, GridY: 5})
	}
	h, _ := g.spawnBomb(GridPos{GridX: 6, GridY: 5}, PlayerOwnerID, 2, 1, false)
	g.bombs.get(h).Fuse = 0.001

	g.Update(FixedDeltaTime, Input{})

	if g.Stats.EnemiesKilled != 3 {
		t.Fatalf("expected 3 kills, got %d", g.Stats.EnemiesKilled)
	}
	if len(g.Enemies) != 3 {
		t.Fatalf("dying enemies stay until their animation ends, got %d", len(g.Enemies))
	}
	// 三连杀：3×100 + 500
	if g.Score != 800 {
		t.Errorf("expected score 800, got %d", g.Score)
	}
	if !g.SlowMo() {
		t.Error("final kill should trigger slow motion")
	}

	step(g, 10, FixedDeltaTime, Input{})
	if g.Stats.EnemiesKilled != 3 {
		t.Errorf("dying enemies must not be killed twice, got %d", g.Stats.EnemiesKilled)
	}

	step(g, 240, FixedDeltaTime, Input{})
	if len(g.Enemies) != 0 {
		t.Errorf("expected enemies purged, got %d", len(g.Enemies))
	}
}

func TestComboResetsAfterWindow(t *testing.T) {
	cfg := DefaultConfig()
	g := newTestGame(t, cfg)
	a := g.addEnemy(EnemyWanderer, GridPos{GridX: 5, GridY: 5})
	b := g.addEnemy(EnemyWanderer, GridPos{GridX: 9, GridY: 9})

	g.killEnemy(a)
	if g.Combo.Count != 1 {
		t.Fatalf("expected combo 1, got %d", g.Combo.Count)
	}
	g.updateTimers(cfg.Combo.Window + 0.1)
	g.killEnemy(b)
	if g.Combo.Count != 1 {
		t.Errorf("combo should restart after the window, got %d", g.Combo.Count)
	}
}

func TestExitRequiresAllEnemiesDead(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Grid.SetType(1, 1, CellExit)
	g.addEnemy(EnemyWanderer, GridPos{GridX: 9, GridY: 9})

	g.Update(FixedDeltaTime, Input{})
	if g.State != StatePlaying {
		t.Fatalf("exit must be rejected while enemies live, state %v", g.State)
	}
	if n := countEvents(g.DrainEvents(), EventExitBlocked); n != 1 {
		t.Fatalf("expected 1 exit_blocked, got %d", n)
	}

	step(g, 60, FixedDeltaTime, Input{})
	if n := countEvents(g.DrainEvents(), EventExitBlocked); n != 0 {
		t.Errorf("rejection should be suppressed during cooldown, got %d", n)
	}

	step(g, 70, FixedDeltaTime, Input{})
	if n := countEvents(g.DrainEvents(), EventExitBlocked); n != 1 {
		t.Errorf("expected rejection again after cooldown, got %d", n)
	}
}

func TestExitSameTickAsLastKill(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Grid.SetType(1, 1, CellExit)
	g.Player.Invincibility = 10
	g.addEnemy(EnemyWanderer, GridPos{GridX: 3, GridY: 1})
	h, _ := g.spawnBomb(GridPos{GridX: 2, GridY: 1}, PlayerOwnerID, 1, 1, false)
	g.bombs.get(h).Fuse = 0.001

	g.Update(FixedDeltaTime, Input{})

	if g.State != StateLevelComplete {
		t.Fatalf("exit check should see the kill from the same pass, state %v", g.State)
	}
	if countEvents(g.DrainEvents(), EventExitBlocked) != 0 {
		t.Error("no rejection expected")
	}
}
