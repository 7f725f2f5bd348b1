package core

import (
	"math"
	"math/rand"
)

// driftAI 内置的兜底敌人 AI：沿当前方向走，被挡住或到达路口时随机转向
type driftAI struct {
	grid *Grid
	rng  *rand.Rand
	last map[int][2]float64 // 上一帧位置，用于判断是否被挡住
}

func newDriftAI(rng *rand.Rand) *driftAI {
	return &driftAI{rng: rng, last: make(map[int][2]float64)}
}

func (d *driftAI) PrecomputeDangerZones(grid *Grid, _ []Bomb, _ []*Explosion) {
	d.grid = grid
}

func (d *driftAI) Update(e *Enemy, _ *Player, _ float64) Intent {
	if d.grid == nil {
		return Intent{}
	}
	prev, seen := d.last[e.ID]
	d.last[e.ID] = [2]float64{e.X, e.Y}
	stuck := seen && prev[0] == e.X && prev[1] == e.Y

	pos := e.GridPos()
	if e.Direction != DirNone && !stuck {
		cx, cy := CenteredXY(pos.GridX, pos.GridY, e.W, e.H)
		atCenter := math.Abs(e.X-cx) < 1 && math.Abs(e.Y-cy) < 1
		if !atCenter || d.rng.Intn(4) != 0 {
			return Intent{Dir: e.Direction}
		}
	}

	start := d.rng.Intn(len(Directions))
	for i := range Directions {
		dir := Directions[(start+i)%len(Directions)]
		if stuck && dir == e.Direction {
			continue
		}
		if d.open(pos.Add(dir, 1), e) {
			return Intent{Dir: dir}
		}
	}
	return Intent{}
}

func (d *driftAI) open(p GridPos, e *Enemy) bool {
	c := d.grid.CellAt(p.GridX, p.GridY)
	if c == nil || c.Type == CellWall || c.Type.IsHazard() {
		return false
	}
	if c.Type == CellBlock || c.Destroying {
		return e.Type.PassesBlocks()
	}
	return !c.Bomb.Valid()
}
