package ai

import (
	"testing"

	"bombsim/pkg/core"
)

// walledGrid 四周是墙、内部全空的地图
func walledGrid(w, h int) *core.Grid {
	g := core.NewGrid(w, h)
	for x := 0; x < w; x++ {
		g.SetType(x, 0, core.CellWall)
		g.SetType(x, h-1, core.CellWall)
	}
	for y := 0; y < h; y++ {
		g.SetType(0, y, core.CellWall)
		g.SetType(w-1, y, core.CellWall)
	}
	return g
}

func TestDangerFieldChain(t *testing.T) {
	grid := core.NewGrid(9, 3)
	// 顺序故意倒置，单层传播追不到 C
	bombs := []core.Bomb{
		{GridX: 5, GridY: 1, Range: 1, Fuse: 3},
		{GridX: 3, GridY: 1, Range: 2, Fuse: 2},
		{GridX: 1, GridY: 1, Range: 2, Fuse: 0.5},
	}

	tests := []struct {
		name      string
		fullChain bool
		want      float64
	}{
		{name: "single pass", fullChain: false, want: 2},
		{name: "fixed point", fullChain: true, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var df DangerField
			df.Update(grid, bombs, nil, tt.fullChain)
			if got := df.At(6, 1); got != tt.want {
				t.Errorf("expected (6,1) at %v, got %v", tt.want, got)
			}
			if got := df.At(3, 1); got != 0.5 {
				t.Errorf("B should be triggered by A at 0.5, got %v", got)
			}
			if df.InDanger(8, 1) {
				t.Error("(8,1) is out of every blast")
			}
			if !df.InDanger(-1, 0) {
				t.Error("off-grid counts as danger")
			}
		})
	}
}

func TestDangerFieldExplosionsAndHypotheticalBomb(t *testing.T) {
	grid := walledGrid(9, 9)
	ex := &core.Explosion{Cells: core.Propagate(grid, core.GridPos{GridX: 2, GridY: 2}, 1)}

	var df DangerField
	df.Update(grid, []core.Bomb{{GridX: 6, GridY: 6, Range: 1, Fuse: 2}}, []*core.Explosion{ex}, true)

	if df.SafeAt(2, 3, 0) {
		t.Error("burning cell is never safe")
	}
	if !df.SafeAt(6, 5, 1.9) || df.SafeAt(6, 5, 2) {
		t.Error("cell should be safe until the fuse runs out")
	}

	tmp := df.WithBomb(grid, core.GridPos{GridX: 6, GridY: 4}, 2, 1)
	if got := tmp.At(6, 7); got != 1 {
		t.Errorf("hypothetical bomb should pull the chained bomb forward, got %v", got)
	}
	if got := df.At(6, 7); got != 2 {
		t.Errorf("original field must not change, got %v", got)
	}
	if got := tmp.At(6, 3); got != 1 {
		t.Errorf("expected new blast at 1s, got %v", got)
	}
}
