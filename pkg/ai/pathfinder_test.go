package ai

import (
	"testing"

	"bombsim/pkg/core"
)

func TestNextStepTowardAroundWall(t *testing.T) {
	grid := walledGrid(7, 5)
	// 在 (3,1)~(3,2) 竖一道墙，只能从下面绕
	grid.SetType(3, 1, core.CellWall)
	grid.SetType(3, 2, core.CellWall)
	walk := enemyWalkable(grid, false)

	step, ok := nextStepToward(walk, core.GridPos{GridX: 2, GridY: 1}, core.GridPos{GridX: 4, GridY: 1})
	if !ok {
		t.Fatal("target should be reachable")
	}
	if step != (core.GridPos{GridX: 2, GridY: 2}) {
		t.Errorf("expected first step (2,2), got %v", step)
	}

	grid.SetType(3, 3, core.CellBlock)
	if _, ok := nextStepToward(walk, core.GridPos{GridX: 2, GridY: 1}, core.GridPos{GridX: 4, GridY: 1}); ok {
		t.Error("block closes the only route")
	}
	if _, ok := nextStepToward(enemyWalkable(grid, true), core.GridPos{GridX: 2, GridY: 1}, core.GridPos{GridX: 4, GridY: 1}); !ok {
		t.Error("block-passing enemies go through blocks")
	}
}

func TestCanEscape(t *testing.T) {
	// 一格宽的死胡同
	grid := walledGrid(7, 3)
	walk := playerWalkable(grid, core.Modifiers{})
	start := core.GridPos{GridX: 1, GridY: 1}

	var df DangerField
	df.Update(grid, nil, nil, true)
	trapped := df.WithBomb(grid, start, 5, 2.5)
	if canEscape(walk, trapped, start, 0.25) {
		t.Error("blast covers the whole corridor, no escape expected")
	}

	short := df.WithBomb(grid, start, 2, 2.5)
	if !canEscape(walk, short, start, 0.25) {
		t.Error("three cells away is out of range")
	}
	if canEscape(walk, short, start, 1) {
		t.Error("too slow to get out before the fuse")
	}
}

func TestAlignedAndClear(t *testing.T) {
	grid := walledGrid(9, 9)
	grid.SetType(4, 2, core.CellBlock)
	from := core.GridPos{GridX: 4, GridY: 4}

	tests := []struct {
		to   core.GridPos
		rng  int
		want bool
	}{
		{core.GridPos{GridX: 6, GridY: 4}, 2, true},
		{core.GridPos{GridX: 7, GridY: 4}, 2, false},
		{core.GridPos{GridX: 4, GridY: 1}, 3, false},
		{core.GridPos{GridX: 5, GridY: 5}, 3, false},
		{from, 1, true},
	}
	for _, tt := range tests {
		if got := alignedAndClear(grid, from, tt.to, tt.rng); got != tt.want {
			t.Errorf("alignedAndClear(%v, %v, %d) = %v, want %v", from, tt.to, tt.rng, got, tt.want)
		}
	}
}

func TestSteerAlignsBeforeTurning(t *testing.T) {
	bb := &Blackboard{Pos: core.GridPos{GridX: 2, GridY: 2}, W: core.EnemyWidth, H: core.EnemyHeight}
	bb.X, bb.Y = core.CenteredXY(2, 2, bb.W, bb.H)
	bb.X += 10

	if got := bb.steer(core.GridPos{GridX: 2, GridY: 1}); got != core.DirLeft {
		t.Errorf("expected to re-center left first, got %v", got)
	}
	bb.X -= 10
	if got := bb.steer(core.GridPos{GridX: 2, GridY: 1}); got != core.DirUp {
		t.Errorf("expected up once aligned, got %v", got)
	}
	if got := bb.steer(bb.Pos); got != core.DirNone {
		t.Errorf("centered on the target cell, got %v", got)
	}
}
