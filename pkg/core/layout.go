package core

import (
	"fmt"
	"math/rand"
)

// LayoutPattern 地图布局模板
type LayoutPattern int

const (
	LayoutClassic LayoutPattern = iota // 外墙 + 偶数坐标柱子
	LayoutOpen                         // 仅外墙
	LayoutCross                        // 经典柱子，中心十字通道
	LayoutRings                        // 外墙 + 内环，四边中点留口
)

func (p LayoutPattern) String() string {
	switch p {
	case LayoutClassic:
		return "classic"
	case LayoutOpen:
		return "open"
	case LayoutCross:
		return "cross"
	case LayoutRings:
		return "rings"
	}
	return "unknown"
}

// ParseLayoutPattern 根据名称解析布局
func ParseLayoutPattern(name string) (LayoutPattern, error) {
	for _, p := range []LayoutPattern{LayoutClassic, LayoutOpen, LayoutCross, LayoutRings} {
		if p.String() == name {
			return p, nil
		}
	}
	return LayoutClassic, fmt.Errorf("未知布局: %q", name)
}

// SpecialMechanic 关卡特殊机制
type SpecialMechanic int

const (
	MechanicNone   SpecialMechanic = iota
	MechanicLava                   // 散布熔岩格
	MechanicSpikes                 // 散布周期升降的地刺
)

func (m SpecialMechanic) String() string {
	switch m {
	case MechanicNone:
		return "none"
	case MechanicLava:
		return "lava"
	case MechanicSpikes:
		return "spikes"
	}
	return "unknown"
}

// LayoutOptions 建图参数
type LayoutOptions struct {
	Pattern  LayoutPattern
	Mechanic SpecialMechanic
	Seed     int64
	Density  float64 // 砖块密度（占可用空地的比例）
}

// hazardRatio 危险地形占地图面积的比例
const hazardRatio = 1.0 / 30

// Reserve 预留格子，布局时不会在其上放置砖块、危险地形或柱子
func (g *Grid) Reserve(x, y int) {
	if c := g.CellAt(x, y); c != nil {
		c.Reserved = true
	}
}

// BuildLayout 按模板确定性地放置墙与危险地形，再用种子随机散布砖块
// 调用前应先 Reset 并预留出生点等格子
func (g *Grid) BuildLayout(opts LayoutOptions) {
	r := rand.New(rand.NewSource(opts.Seed))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.isPatternWall(opts.Pattern, x, y) {
				c := g.CellAt(x, y)
				border := x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1
				if border || !c.Reserved {
					c.Type = CellWall
				}
			}
		}
	}

	switch opts.Mechanic {
	case MechanicLava:
		g.scatterHazard(r, CellLava)
	case MechanicSpikes:
		g.scatterHazard(r, CellSpikes)
	}

	g.scatterBlocks(r, opts.Density)
}

func (g *Grid) isPatternWall(p LayoutPattern, x, y int) bool {
	if x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1 {
		return true
	}
	pillar := x%2 == 0 && y%2 == 0
	switch p {
	case LayoutOpen:
		return false
	case LayoutCross:
		if x == g.Width/2 || y == g.Height/2 {
			return false
		}
		return pillar
	case LayoutRings:
		left, top := 2, 2
		right, bottom := g.Width-3, g.Height-3
		if right-left < 2 || bottom-top < 2 {
			return pillar
		}
		onRing := ((x == left || x == right) && y >= top && y <= bottom) ||
			((y == top || y == bottom) && x >= left && x <= right)
		if !onRing {
			return false
		}
		// 四边中点留口
		return x != g.Width/2 && y != g.Height/2
	default:
		return pillar
	}
}

// eligibleCells 收集未预留的空地
func (g *Grid) eligibleCells() []*Cell {
	cells := make([]*Cell, 0, len(g.cells))
	for i := range g.cells {
		c := &g.cells[i]
		if c.Type == CellEmpty && !c.Reserved {
			cells = append(cells, c)
		}
	}
	return cells
}

// shuffleCells Fisher–Yates 洗牌
func shuffleCells(r *rand.Rand, cells []*Cell) {
	for i := len(cells) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		cells[i], cells[j] = cells[j], cells[i]
	}
}

func (g *Grid) scatterHazard(r *rand.Rand, t CellType) {
	cells := g.eligibleCells()
	shuffleCells(r, cells)
	n := int(float64(g.Width*g.Height) * hazardRatio)
	if n > len(cells) {
		n = len(cells)
	}
	for _, c := range cells[:n] {
		c.Type = t
		c.Reserved = true
	}
}

func (g *Grid) scatterBlocks(r *rand.Rand, density float64) {
	if density <= 0 {
		return
	}
	if density > 1 {
		density = 1
	}
	cells := g.eligibleCells()
	shuffleCells(r, cells)
	n := int(density * float64(len(cells)))
	for _, c := range cells[:n] {
		c.Type = CellBlock
	}
}
