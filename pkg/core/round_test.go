package core

import (
	"errors"
	"math"
	"testing"
)

func TestRoundClockBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDelta = 0.125
	g := newTestGame(t, cfg)
	g.Player.Invincibility = 1000

	step(g, 1599, 0.125, Input{})
	if g.State != StatePlaying {
		t.Fatalf("expected still playing before the limit, got %v", g.State)
	}

	g.Update(0.125, Input{})
	if g.State != StateOvertime {
		t.Fatalf("expected overtime at the limit, got %v", g.State)
	}
	if g.Clock != 0 {
		t.Errorf("expected clock 0, got %v", g.Clock)
	}
	if countEvents(g.DrainEvents(), EventTimeUp) != 1 {
		t.Error("expected one time_up event")
	}

	step(g, 24, 0.125, Input{})
	events := g.DrainEvents()
	if countEvents(events, EventSpawnWarning) == 0 {
		t.Fatal("expected a spawn warning in overtime")
	}
	if countEvents(events, EventEnemySpawn) == 0 {
		t.Fatal("expected a hunter after the warning")
	}
	for _, e := range g.Enemies {
		if e.Type != EnemyHunter {
			t.Errorf("punitive spawn should be a hunter, got %v", e.Type)
		}
		if d := e.GridPos().Manhattan(g.Player.GridPos()); d < cfg.Punitive.MinDistance {
			t.Errorf("hunter spawned too close: %d", d)
		}
	}
	if g.State.Terminal() {
		t.Errorf("overtime is not a loss, got %v", g.State)
	}
}

func TestPunitiveSpawnCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Punitive.MaxEnemies = 2
	g := newTestGame(t, cfg)
	g.State = StateOvertime

	for i := 0; i < 10; i++ {
		g.updatePunitive(cfg.Punitive.Interval)
	}
	if n := g.aliveHunters() + len(g.Warnings); n > 2 {
		t.Errorf("expected at most 2 punitive enemies, got %d", n)
	}
}

func TestFindSpawnCellFallback(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	// 只留一个可用格子，随机尝试大概率落空，必须靠顺序扫描找到
	g.Grid.Each(func(c *Cell) {
		if c.Type == CellEmpty {
			c.Type = CellBlock
		}
	})
	g.Grid.SetType(10, 8, CellEmpty)

	pos, ok := g.findSpawnCell()
	if !ok || pos != (GridPos{GridX: 10, GridY: 8}) {
		t.Fatalf("expected (10,8), got %v %v", pos, ok)
	}

	g.Grid.SetType(10, 8, CellBlock)
	if _, ok := g.findSpawnCell(); ok {
		t.Error("no usable cell should report false")
	}
}

func TestLifeExhaustion(t *testing.T) {
	sink := &recordingSink{}
	g := newTestGame(t, DefaultConfig(), WithResultSink(sink))
	g.Player.Lives = 1
	g.killPlayer()

	step(g, 59, 0.05, Input{})
	if g.State != StatePlayerDied {
		t.Fatalf("expected player_died during the delay, got %v", g.State)
	}
	g.Update(0.05, Input{})
	if g.State != StateGameOver {
		t.Fatalf("expected game over, got %v", g.State)
	}
	if g.Player.Lives != 0 {
		t.Errorf("expected 0 lives, got %d", g.Player.Lives)
	}
	if len(sink.results) != 1 || sink.results[0].Outcome != OutcomeGameOver {
		t.Errorf("expected one game over result, got %+v", sink.results)
	}

	frame := g.Frame()
	g.Update(0.05, Input{})
	if g.Frame() != frame {
		t.Error("terminal state should not advance")
	}
}

func TestRespawnKeepsBoardAliveDuringDeath(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	h, _ := g.spawnBomb(GridPos{GridX: 9, GridY: 7}, PlayerOwnerID, 1, 1, false)
	g.bombs.get(h).Fuse = 0.5
	g.Player.X += 40
	g.killPlayer()

	step(g, 20, 0.05, Input{Right: true, Bomb: true})
	if g.bombs.get(h) != nil {
		t.Fatal("bombs should keep ticking while the player is dead")
	}
	if g.Player.ActiveBombs != 0 {
		t.Error("input must be ignored while dead")
	}

	step(g, 40, 0.05, Input{})
	if g.State != StateStarting {
		t.Fatalf("expected starting after respawn, got %v", g.State)
	}
	if g.Player.Lives != g.cfg.Player.Lives-1 {
		t.Errorf("expected %d lives, got %d", g.cfg.Player.Lives-1, g.Player.Lives)
	}
	if g.Player.GridPos() != g.Player.Spawn {
		t.Errorf("expected respawn at %v, got %v", g.Player.Spawn, g.Player.GridPos())
	}
	if g.Player.SpawnProtection <= 0 {
		t.Error("expected spawn protection")
	}
	if len(g.Bombs()) != 0 || len(g.Explosions) != 0 {
		t.Error("bombs and explosions should be cleared")
	}
	if g.Clock != g.Level.TimeLimit {
		t.Errorf("clock should reset to %v, got %v", g.Level.TimeLimit, g.Clock)
	}

	step(g, int(g.cfg.Timing.StartDelay/0.05)+1, 0.05, Input{})
	if g.State != StatePlaying {
		t.Errorf("expected playing after the start delay, got %v", g.State)
	}
}

func TestLevelCompleteBonusAndAdvance(t *testing.T) {
	sink := &recordingSink{}
	g := newTestGame(t, DefaultConfig(), WithResultSink(sink))
	g.Grid.SetType(1, 1, CellExit)

	g.Update(FixedDeltaTime, Input{})
	if g.State != StateLevelComplete {
		t.Fatalf("expected level complete, got %v", g.State)
	}
	// 时间 200×10 + 效率 2000 + 无伤 1000
	if g.Score != 5000 {
		t.Errorf("expected score 5000, got %d", g.Score)
	}
	r, ok := g.LastResult()
	if !ok || r.Stars != 3 || r.Outcome != OutcomeLevelComplete {
		t.Errorf("unexpected result %+v", r)
	}

	step(g, int(g.cfg.Timing.CompleteDelay/FixedDeltaTime)+2, FixedDeltaTime, Input{})
	if g.Score != 5000 {
		t.Errorf("bonus must be applied once, got %d", g.Score)
	}
	if countEvents(g.DrainEvents(), EventRoundAdvance) != 1 {
		t.Error("expected one round_advance event")
	}
	if !g.AwaitingAdvance() {
		t.Error("expected game to await the next level")
	}
	if len(sink.results) != 1 {
		t.Errorf("expected one recorded result, got %d", len(sink.results))
	}
}

func TestLevelBonusMultiplierAndBands(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Level.ScoreMultiplier = 1.5
	g.Clock = 12.9
	g.Stats.BombsUsed = 15
	g.Stats.DamageTaken = true

	bonus, stars := g.levelBonus()
	// (12×10 + 1000) × 1.5
	if bonus != 1680 {
		t.Errorf("expected bonus 1680, got %d", bonus)
	}
	if stars != 1 {
		t.Errorf("expected 1 star, got %d", stars)
	}
}

func TestVictoryAfterFinalLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FinalLevel = 1
	sink := &recordingSink{}
	g := newTestGame(t, cfg, WithResultSink(sink))
	g.Grid.SetType(1, 1, CellExit)

	step(g, int(cfg.Timing.CompleteDelay/FixedDeltaTime)+3, FixedDeltaTime, Input{})
	if g.State != StateVictory {
		t.Fatalf("expected victory, got %v", g.State)
	}
	if len(sink.results) != 2 || sink.results[1].Outcome != OutcomeVictory {
		t.Errorf("expected level_complete then victory results, got %+v", sink.results)
	}
}

func TestLoadLevelKeepsLivesAndScore(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Player.Lives = 2
	g.Score = 1234
	g.Player.Mods.FireRange = 5

	err := g.LoadLevel(LevelDescriptor{
		Level:        2,
		Seed:         9,
		Width:        15,
		Height:       13,
		Layout:       LayoutClassic,
		BlockDensity: 0.5,
		PlayerSpawn:  GridPos{GridX: 1, GridY: 1},
		EnemySpawns:  []EnemySpawn{{Pos: GridPos{GridX: 13, GridY: 11}, Type: EnemyChaser}},
		PowerUps:     []PowerUpPlacement{{Pos: GridPos{GridX: 3, GridY: 3}, Type: PowerUpKick}},
		TimeLimit:    180,
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Player.Lives != 2 || g.Score != 1234 || g.Player.Mods.FireRange != 5 {
		t.Errorf("lives/score/mods should persist, got %d %d %d", g.Player.Lives, g.Score, g.Player.Mods.FireRange)
	}
	if g.State != StateStarting || g.Clock != 180 {
		t.Errorf("expected fresh round, got %v clock %v", g.State, g.Clock)
	}
	if len(g.Enemies) != 1 || g.Enemies[0].ID != 1 {
		t.Errorf("expected one enemy with id 1, got %+v", g.Enemies)
	}
	for _, p := range []GridPos{{1, 1}, {2, 1}, {1, 2}} {
		if g.Grid.TypeAt(p.GridX, p.GridY) != CellEmpty {
			t.Errorf("spawn area %v should be empty", p)
		}
	}

	exits, hidden := 0, 0
	g.Grid.Each(func(c *Cell) {
		if c.HasHiddenExit {
			exits++
			if c.Type != CellBlock {
				t.Errorf("hidden exit at %v not under a block", c.Pos())
			}
		}
		if c.HiddenPowerUp != PowerUpNone {
			hidden++
		}
	})
	if exits != 1 || hidden != 1 {
		t.Errorf("expected 1 hidden exit and 1 hidden power-up, got %d %d", exits, hidden)
	}
}

func TestLoadLevelRejectsTinyGrid(t *testing.T) {
	g := NewGame(DefaultConfig())
	err := g.LoadLevel(LevelDescriptor{Width: 4, Height: 9, PlayerSpawn: GridPos{GridX: 1, GridY: 1}})
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestSinkPanicDoesNotBreakSimulation(t *testing.T) {
	g := newTestGame(t, DefaultConfig(), WithEventSink(EventSinkFunc(func(string, Event) {
		panic("boom")
	})))
	if g.PlaceBomb() != 1 {
		t.Fatal("placement should succeed despite sink panic")
	}
	if len(g.DrainEvents()) != 1 {
		t.Error("event should still be queued")
	}
}

type panickyAI struct{}

func (panickyAI) PrecomputeDangerZones(*Grid, []Bomb, []*Explosion) { panic("precompute") }
func (panickyAI) Update(*Enemy, *Player, float64) Intent            { panic("update") }

func TestEnemyAIPanicFallsBack(t *testing.T) {
	g := newTestGame(t, DefaultConfig(), WithEnemyAI(panickyAI{}))
	g.addEnemy(EnemyWanderer, GridPos{GridX: 9, GridY: 7})

	step(g, 30, FixedDeltaTime, Input{})
	if g.State != StatePlaying {
		t.Errorf("AI failure must not affect the round, got %v", g.State)
	}
}

func TestSlowMoScalesGameplayOnly(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	h, _ := g.spawnBomb(GridPos{GridX: 5, GridY: 5}, PlayerOwnerID, 1, 1, false)
	g.slowMoTimer = 10
	g.Combo = Combo{Count: 1, Timer: 1}

	fuse, clock := g.bombs.get(h).Fuse, g.Clock
	const dt = 0.05
	g.Update(dt, Input{})

	near := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
	if got := fuse - g.bombs.get(h).Fuse; !near(got, dt*g.cfg.SlowMo.Scale) {
		t.Errorf("fuse advanced %v, want %v", got, dt*g.cfg.SlowMo.Scale)
	}
	if got := clock - g.Clock; !near(got, dt) {
		t.Errorf("round clock advanced %v, want real time %v", got, dt)
	}
	if !near(g.Combo.Timer, 1-dt) {
		t.Errorf("combo window = %v, want %v", g.Combo.Timer, 1-dt)
	}
	if !near(g.slowMoTimer, 10-dt) || !g.SlowMo() {
		t.Errorf("slow-mo window = %v", g.slowMoTimer)
	}
}
