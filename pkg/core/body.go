package core

import "math"

// body 轴对齐碰撞盒，坐标为左上角像素
// 玩家与敌人共用同一套移动、拐角修正和软对齐逻辑
type body struct {
	X, Y float64
	W, H int
}

// blockFunc 判断格子对当前实体是否阻挡
type blockFunc func(gx, gy int) bool

// GridPos 实体中心所在格子
func (b *body) GridPos() GridPos {
	return PixelToGrid(b.X, b.Y, b.W, b.H)
}

// placeAt 居中放置到格子
func (b *body) placeAt(p GridPos) {
	b.X, b.Y = CenteredXY(p.GridX, p.GridY, b.W, b.H)
}

// canMoveTo 检查碰撞盒在 (x, y) 时是否与阻挡格子重叠
func (b *body) canMoveTo(grid *Grid, x, y float64, blocked blockFunc) bool {
	// 碰撞盒稍微内缩以避免边缘穿模
	hx := x + BodyMargin
	hy := y + BodyMargin
	hw := float64(b.W - BodyMargin*2)
	hh := float64(b.H - BodyMargin*2)

	// 边界检查
	if hx < 0 || hy < 0 || hx+hw > float64(grid.Width*TileSize) || hy+hh > float64(grid.Height*TileSize) {
		return false
	}

	startX := floorDiv(hx)
	endX := floorDiv(hx + hw - 1e-6)
	startY := floorDiv(hy)
	endY := floorDiv(hy + hh - 1e-6)

	for gy := startY; gy <= endY; gy++ {
		for gx := startX; gx <= endX; gx++ {
			if blocked(gx, gy) {
				return false
			}
		}
	}
	return true
}

// move 单轴移动，失败时尝试拐角修正，成功后做软对齐
func (b *body) move(grid *Grid, dx, dy float64, blocked blockFunc) bool {
	if dx == 0 && dy == 0 {
		return false
	}
	newX := b.X + dx
	newY := b.Y + dy

	if !b.canMoveTo(grid, newX, newY, blocked) {
		cx, cy, ok := b.tryCornerCorrection(grid, dx, dy, blocked)
		if !ok {
			return false
		}
		newX, newY = cx, cy
	}

	b.X = newX
	b.Y = newY
	b.applySoftAlign(grid, dx, dy, blocked)
	return true
}

// overlapsCell 碰撞盒是否与指定格子重叠
func (b *body) overlapsCell(gridX, gridY int) bool {
	w := float64(b.W - BodyMargin*2)
	h := float64(b.H - BodyMargin*2)
	if w <= 0 || h <= 0 {
		return false
	}
	px := b.X + BodyMargin
	py := b.Y + BodyMargin
	tx := float64(gridX * TileSize)
	ty := float64(gridY * TileSize)
	return px < tx+TileSize && px+w > tx && py < ty+TileSize && py+h > ty
}

// overlaps 两个碰撞盒各自内缩 margin 后是否相交
func (b *body) overlaps(o *body, margin float64) bool {
	ax1, ay1 := b.X+margin, b.Y+margin
	ax2, ay2 := b.X+float64(b.W)-margin, b.Y+float64(b.H)-margin
	bx1, by1 := o.X+margin, o.Y+margin
	bx2, by2 := o.X+float64(o.W)-margin, o.Y+float64(o.H)-margin
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}

func (b *body) tryCornerCorrection(grid *Grid, dx, dy float64, blocked blockFunc) (float64, float64, bool) {
	if dx != 0 && dy != 0 {
		return 0, 0, false
	}

	if dx != 0 {
		offset := b.nearestAlignedY(grid) - b.Y
		if math.Abs(offset) > CornerCorrectionTolerance {
			return 0, 0, false
		}
		step := math.Min(math.Abs(offset), math.Abs(dx))
		if step == 0 {
			return 0, 0, false
		}
		if offset < 0 {
			step = -step
		}
		newX, newY := b.X+dx, b.Y+step
		if b.canMoveTo(grid, newX, newY, blocked) {
			return newX, newY, true
		}
		// 先只做侧向修正，下一帧再前进
		if b.canMoveTo(grid, b.X, newY, blocked) {
			return b.X, newY, true
		}
		return 0, 0, false
	}

	offset := b.nearestAlignedX(grid) - b.X
	if math.Abs(offset) > CornerCorrectionTolerance {
		return 0, 0, false
	}
	step := math.Min(math.Abs(offset), math.Abs(dy))
	if step == 0 {
		return 0, 0, false
	}
	if offset < 0 {
		step = -step
	}
	newX, newY := b.X+step, b.Y+dy
	if b.canMoveTo(grid, newX, newY, blocked) {
		return newX, newY, true
	}
	if b.canMoveTo(grid, newX, b.Y, blocked) {
		return newX, b.Y, true
	}
	return 0, 0, false
}

func (b *body) applySoftAlign(grid *Grid, dx, dy float64, blocked blockFunc) {
	if dx != 0 && dy != 0 {
		return
	}

	if dx != 0 {
		offset := b.nearestAlignedY(grid) - b.Y
		if math.Abs(offset) > CornerCorrectionTolerance {
			return
		}
		step := math.Min(math.Abs(offset), math.Abs(dx)*SoftAlignFactor)
		if step == 0 {
			return
		}
		if offset < 0 {
			step = -step
		}
		if b.canMoveTo(grid, b.X, b.Y+step, blocked) {
			b.Y += step
		}
		return
	}

	offset := b.nearestAlignedX(grid) - b.X
	if math.Abs(offset) > CornerCorrectionTolerance {
		return
	}
	step := math.Min(math.Abs(offset), math.Abs(dy)*SoftAlignFactor)
	if step == 0 {
		return
	}
	if offset < 0 {
		step = -step
	}
	if b.canMoveTo(grid, b.X+step, b.Y, blocked) {
		b.X += step
	}
}

func (b *body) nearestAlignedX(grid *Grid) float64 {
	center := b.X + float64(b.W)/2
	gx := floorDiv(center)
	if gx < 0 {
		gx = 0
	} else if gx >= grid.Width {
		gx = grid.Width - 1
	}
	return float64(gx*TileSize) + float64(TileSize-b.W)/2
}

func (b *body) nearestAlignedY(grid *Grid) float64 {
	center := b.Y + float64(b.H)/2
	gy := floorDiv(center)
	if gy < 0 {
		gy = 0
	} else if gy >= grid.Height {
		gy = grid.Height - 1
	}
	return float64(gy*TileSize) + float64(TileSize-b.H)/2
}
