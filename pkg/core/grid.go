package core

import "math"

// CellType 格子地形类型
type CellType int

const (
	CellEmpty  CellType = iota // 空地
	CellWall                   // 不可破坏的墙
	CellBlock                  // 可炸毁的砖块
	CellExit                   // 出口
	CellLava                   // 熔岩（危险地形，始终致命）
	CellSpikes                 // 地刺（危险地形，升起时致命）
)

// IsHazard 是否为危险地形
func (t CellType) IsHazard() bool {
	return t == CellLava || t == CellSpikes
}

// Direction 方向
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Delta 返回方向对应的格子偏移
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Opposite 反方向
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// Directions 四个轴向，顺序固定：上、下、左、右
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// GridPos 格子坐标（通用类型）
type GridPos struct {
	GridX, GridY int
}

// Add 沿方向偏移 n 格
func (p GridPos) Add(d Direction, n int) GridPos {
	dx, dy := d.Delta()
	return GridPos{GridX: p.GridX + dx*n, GridY: p.GridY + dy*n}
}

// Manhattan 曼哈顿距离
func (p GridPos) Manhattan(o GridPos) int {
	return abs(p.GridX-o.GridX) + abs(p.GridY-o.GridY)
}

// Cell 单个格子
// Bomb/PowerUp 是非拥有引用，只能由实体集合（Game）修改
type Cell struct {
	pos  GridPos
	Type CellType

	Bomb    Handle[Bomb]
	PowerUp Handle[PowerUp]

	Destroying      bool    // 砖块正在被摧毁
	DestroyProgress float64 // 摧毁进度 0~1
	Burning         int     // 覆盖该格的存活爆炸数量
	Afterglow       float64 // 爆炸结束后的余辉（秒，仅视觉）

	HiddenPowerUp PowerUpType // 砖块下隐藏的道具
	HasHiddenExit bool        // 砖块下隐藏的出口
	Reserved      bool        // 被特殊机制/出生点预留，不参与砖块随机
}

// Pos 格子坐标，建图后不可变
func (c *Cell) Pos() GridPos {
	return c.pos
}

// IsBlocking 是否阻挡移动（墙、砖块、摧毁中的砖块）
func (c *Cell) IsBlocking() bool {
	return c.Type == CellWall || c.Type == CellBlock || c.Destroying
}

// Grid 固定尺寸的地图
type Grid struct {
	Width  int
	Height int
	cells  []Cell
}

// NewGrid 创建全空地图
func NewGrid(width, height int) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x].pos = GridPos{GridX: x, GridY: y}
		}
	}
	return g
}

// Reset 清空所有格子为空地（幂等）
func (g *Grid) Reset() {
	for i := range g.cells {
		pos := g.cells[i].pos
		g.cells[i] = Cell{pos: pos}
	}
}

// InBounds 坐标是否在地图内
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// CellAt 获取指定格子，越界返回 nil
func (g *Grid) CellAt(x, y int) *Cell {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.cells[y*g.Width+x]
}

// TypeAt 获取格子类型，越界视为墙
func (g *Grid) TypeAt(x, y int) CellType {
	c := g.CellAt(x, y)
	if c == nil {
		return CellWall
	}
	return c.Type
}

// SetType 设置格子类型，越界忽略
func (g *Grid) SetType(x, y int, t CellType) {
	if c := g.CellAt(x, y); c != nil {
		c.Type = t
	}
}

// IsPassable 地形是否可通行（不考虑炸弹、实体）
func (g *Grid) IsPassable(x, y int) bool {
	c := g.CellAt(x, y)
	if c == nil {
		return false
	}
	return !c.IsBlocking()
}

// Each 遍历所有格子
func (g *Grid) Each(fn func(c *Cell)) {
	for i := range g.cells {
		fn(&g.cells[i])
	}
}

// Count 统计指定类型的格子数
func (g *Grid) Count(t CellType) int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Type == t {
			n++
		}
	}
	return n
}

// beginDestroy 砖块进入摧毁子状态，已在摧毁中的不重复计时
func (g *Grid) beginDestroy(c *Cell) bool {
	if c == nil || c.Type != CellBlock || c.Destroying {
		return false
	}
	c.Destroying = true
	c.DestroyProgress = 0
	return true
}

// UpdateDestruction 推进砖块摧毁进度，返回本帧完成摧毁的格子
// 完成时格子变为空地（或显露出口），隐藏道具由调用方生成
func (g *Grid) UpdateDestruction(dt, duration float64) []*Cell {
	var done []*Cell
	for i := range g.cells {
		c := &g.cells[i]
		if !c.Destroying {
			continue
		}
		if duration <= 0 {
			c.DestroyProgress = 1
		} else {
			c.DestroyProgress += dt / duration
		}
		if c.DestroyProgress < 1 {
			continue
		}
		c.Destroying = false
		c.DestroyProgress = 0
		c.Type = CellEmpty
		if c.HasHiddenExit {
			// 出口优先于道具
			c.Type = CellExit
			c.HasHiddenExit = false
		}
		done = append(done, c)
	}
	return done
}

// UpdateAfterglow 余辉衰减（纯视觉）
func (g *Grid) UpdateAfterglow(dt float64) {
	for i := range g.cells {
		c := &g.cells[i]
		if c.Afterglow > 0 {
			c.Afterglow -= dt
			if c.Afterglow < 0 {
				c.Afterglow = 0
			}
		}
	}
}

// GridToPixel 格子左上角的像素坐标
func GridToPixel(gridX, gridY int) (float64, float64) {
	return float64(gridX * TileSize), float64(gridY * TileSize)
}

// CenteredXY 将 w×h 的实体居中放置在格子中，返回左上角像素坐标
// 地图格子坐标x轴是横向，正方向向右，y轴纵向，正方向向下，0点在左上角
func CenteredXY(gridX, gridY, w, h int) (float64, float64) {
	return float64(gridX*TileSize + (TileSize-w)/2), float64(gridY*TileSize + (TileSize-h)/2)
}

// PixelToGrid 以实体中心换算所在格子
func PixelToGrid(x, y float64, w, h int) GridPos {
	cx := x + float64(w)/2
	cy := y + float64(h)/2
	return GridPos{GridX: floorDiv(cx), GridY: floorDiv(cy)}
}

func floorDiv(v float64) int {
	return int(math.Floor(v / TileSize))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
