package ai

import (
	"testing"

	"bombsim/pkg/core"
)

// openGame 9×9 只有外墙的关卡，没有敌人、出口与道具
func openGame(t *testing.T) *core.Game {
	t.Helper()
	g := core.NewGame(core.DefaultConfig())
	err := g.LoadLevel(core.LevelDescriptor{
		Level:       1,
		Seed:        1,
		Width:       9,
		Height:      9,
		Layout:      core.LayoutOpen,
		PlayerSpawn: core.GridPos{GridX: 1, GridY: 1},
		TimeLimit:   100,
	})
	if err != nil {
		t.Fatal(err)
	}
	g.Grid.Each(func(c *core.Cell) {
		if c.Type != core.CellWall {
			c.Type = core.CellEmpty
		}
		c.HasHiddenExit = false
		c.HiddenPowerUp = core.PowerUpNone
	})
	return g
}

func TestAutopilotEscapesOwnBomb(t *testing.T) {
	g := openGame(t)
	if g.PlaceBomb() != 1 {
		t.Fatal("placement failed")
	}

	a := NewAutopilot(AIConfigHard, 1)
	in := a.Decide(g, core.FixedDeltaTime)

	if in.Up || in.Left {
		t.Errorf("walls are up and left, got %+v", in)
	}
	if !in.Right && !in.Down {
		t.Errorf("expected to move away from the bomb, got %+v", in)
	}
	if in.Bomb {
		t.Error("should not stack another bomb while fleeing")
	}
}

func TestAutopilotHeadsForOpenExit(t *testing.T) {
	g := openGame(t)
	g.Grid.SetType(5, 1, core.CellExit)

	a := NewAutopilot(AIConfigHard, 1)
	if in := a.Decide(g, core.FixedDeltaTime); !in.Right {
		t.Errorf("expected to walk right toward the exit, got %+v", in)
	}
}

func TestAutopilotBombsNextToBlock(t *testing.T) {
	g := openGame(t)
	g.Grid.SetType(2, 1, core.CellBlock)

	a := NewAutopilot(AIConfigHard, 1)
	if in := a.Decide(g, core.FixedDeltaTime); !in.Bomb {
		t.Errorf("standing next to a block with an escape route, got %+v", in)
	}
}

func TestAutopilotIgnoresDeadPlayer(t *testing.T) {
	g := openGame(t)
	g.Player.IsDying = true
	a := NewAutopilot(AIConfigHard, 1)
	if in := a.Decide(g, core.FixedDeltaTime); in != (core.Input{}) {
		t.Errorf("expected no input, got %+v", in)
	}
}

func TestAutopilotBreaksBlocks(t *testing.T) {
	cfg := core.DefaultConfig()
	g := core.NewGame(cfg)
	err := g.LoadLevel(core.LevelDescriptor{
		Level:        1,
		Seed:         5,
		Width:        11,
		Height:       9,
		Layout:       core.LayoutClassic,
		BlockDensity: 0.2,
		PlayerSpawn:  core.GridPos{GridX: 1, GridY: 1},
		TimeLimit:    300,
	})
	if err != nil {
		t.Fatal(err)
	}

	a := NewAutopilot(AIConfigHard, 5)
	for i := 0; i < 60*300 && !g.State.Terminal() && !g.AwaitingAdvance(); i++ {
		g.Update(core.FixedDeltaTime, a.Decide(g, core.FixedDeltaTime))
	}
	if g.Stats.BombsUsed == 0 || g.Stats.BlocksDestroyed == 0 {
		t.Errorf("autopilot should bomb its way through blocks, got %+v", g.Stats)
	}
}
