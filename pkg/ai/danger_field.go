package ai

import (
	"math"

	"bombsim/pkg/core"
)

// DangerField 危险场：每个格子最早被火焰覆盖的剩余时间（秒）
// 正无穷表示当前没有任何炸弹或爆炸会波及该格
type DangerField struct {
	Width    int
	Height   int
	Earliest []float64

	// 记录每枚炸弹的覆盖范围与连锁后的实际引爆时间，供假设放置时复用
	bombPos []core.GridPos
	cells   [][]core.AffectedCell
	actual  []float64
}

var never = math.Inf(1)

func (df *DangerField) reset(w, h int) {
	df.Width, df.Height = w, h
	if cap(df.Earliest) < w*h {
		df.Earliest = make([]float64, w*h)
	}
	df.Earliest = df.Earliest[:w*h]
	for i := range df.Earliest {
		df.Earliest[i] = never
	}
	df.bombPos = df.bombPos[:0]
	df.cells = df.cells[:0]
	df.actual = df.actual[:0]
}

// Update 根据当前炸弹与爆炸重建危险场
// fullChain 为 true 时迭代到不动点，否则只传播一层连锁
func (df *DangerField) Update(grid *core.Grid, bombs []core.Bomb, explosions []*core.Explosion, fullChain bool) {
	df.reset(grid.Width, grid.Height)

	for i := range bombs {
		b := &bombs[i]
		if !b.IsLive() {
			continue
		}
		df.bombPos = append(df.bombPos, b.Pos())
		df.cells = append(df.cells, core.Propagate(grid, b.Pos(), b.Range))
		df.actual = append(df.actual, math.Max(b.Fuse, 0))
	}

	// 连锁：被波及的炸弹提前到引爆者的时间
	changed := true
	for pass := 0; changed; pass++ {
		if pass > 0 && !fullChain {
			break
		}
		changed = false
		for i, cells := range df.cells {
			for j, pos := range df.bombPos {
				if i == j || df.actual[j] <= df.actual[i] {
					continue
				}
				if containsPos(cells, pos) {
					df.actual[j] = df.actual[i]
					changed = true
				}
			}
		}
	}

	for i, cells := range df.cells {
		df.mark(cells, df.actual[i])
	}

	// 正在燃烧的格子是即时危险
	for _, ex := range explosions {
		if !ex.IsActive() {
			continue
		}
		df.mark(ex.Cells, 0)
	}
}

func (df *DangerField) mark(cells []core.AffectedCell, when float64) {
	for _, c := range cells {
		if !df.inBounds(c.Pos.GridX, c.Pos.GridY) {
			continue
		}
		i := c.Pos.GridY*df.Width + c.Pos.GridX
		if when < df.Earliest[i] {
			df.Earliest[i] = when
		}
	}
}

func (df *DangerField) inBounds(x, y int) bool {
	return x >= 0 && x < df.Width && y >= 0 && y < df.Height
}

// At 格子最早被波及的剩余时间，地图外视为立即危险
func (df *DangerField) At(x, y int) float64 {
	if !df.inBounds(x, y) {
		return 0
	}
	return df.Earliest[y*df.Width+x]
}

// InDanger 格子是否会被任何已知的炸弹或爆炸波及
func (df *DangerField) InDanger(x, y int) bool {
	return !math.IsInf(df.At(x, y), 1)
}

// SafeAt 在 t 秒后到达该格子时火焰是否还没到
func (df *DangerField) SafeAt(x, y int, t float64) bool {
	return t < df.At(x, y)
}

// WithBomb 假设在 pos 放一枚炸弹后的危险场，原危险场不变
// 新炸弹波及的已有炸弹会被提前到同一时间（只算一层）
func (df *DangerField) WithBomb(grid *core.Grid, pos core.GridPos, rangeVal int, fuse float64) *DangerField {
	tmp := &DangerField{
		Width:    df.Width,
		Height:   df.Height,
		Earliest: append([]float64(nil), df.Earliest...),
	}
	cells := core.Propagate(grid, pos, rangeVal)
	tmp.mark(cells, fuse)
	for i, bp := range df.bombPos {
		if df.actual[i] > fuse && containsPos(cells, bp) {
			tmp.mark(df.cells[i], fuse)
		}
	}
	return tmp
}

func containsPos(cells []core.AffectedCell, p core.GridPos) bool {
	for _, c := range cells {
		if c.Pos == p {
			return true
		}
	}
	return false
}
