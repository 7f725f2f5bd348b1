package client

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"bombsim/pkg/core"
)

// palette 角色配色
type palette struct {
	Body    color.RGBA
	Outline color.RGBA
	Hand    color.RGBA
	Shoe    color.RGBA
}

var playerPalette = palette{
	Body:    color.RGBA{255, 255, 255, 255},
	Outline: color.RGBA{0, 0, 0, 255},
	Hand:    color.RGBA{255, 150, 150, 255},
	Shoe:    color.RGBA{50, 50, 50, 255},
}

// enemyPalette 按敌人类别取配色
func enemyPalette(t core.EnemyType) palette {
	switch t {
	case core.EnemyChaser:
		return palette{
			Body:    color.RGBA{255, 80, 80, 255},
			Outline: color.RGBA{150, 0, 0, 255},
			Hand:    color.RGBA{255, 200, 100, 255},
			Shoe:    color.RGBA{100, 0, 0, 255},
		}
	case core.EnemyGhost:
		return palette{
			Body:    color.RGBA{200, 200, 255, 160},
			Outline: color.RGBA{120, 120, 200, 200},
			Hand:    color.RGBA{220, 220, 255, 160},
			Shoe:    color.RGBA{150, 150, 220, 160},
		}
	case core.EnemyBomber:
		return palette{
			Body:    color.RGBA{40, 40, 40, 255},
			Outline: color.RGBA{200, 200, 200, 255},
			Hand:    color.RGBA{80, 80, 120, 255},
			Shoe:    color.RGBA{180, 180, 180, 255},
		}
	case core.EnemyHunter:
		return palette{
			Body:    color.RGBA{160, 0, 200, 255},
			Outline: color.RGBA{60, 0, 80, 255},
			Hand:    color.RGBA{255, 80, 255, 255},
			Shoe:    color.RGBA{40, 0, 60, 255},
		}
	}
	return palette{
		Body:    color.RGBA{100, 180, 255, 255},
		Outline: color.RGBA{0, 50, 150, 255},
		Hand:    color.RGBA{150, 220, 255, 255},
		Shoe:    color.RGBA{0, 30, 100, 255},
	}
}

// figure 一个待绘制的角色
type figure struct {
	x, y      float64 // 碰撞盒左上角
	size      int
	dir       core.Direction
	moving    bool
	dying     bool
	pal       palette
	animFrame int
}

// animFrameAt 行走动画每 0.15 秒切换一帧
func animFrameAt(elapsed float64, moving bool) int {
	if !moving {
		return 0
	}
	return int(elapsed/0.15) % 2
}

// drawFigure 绘制玩家或敌人
func drawFigure(screen *ebiten.Image, f figure) {
	size := float32(f.size)
	px, py := float32(f.x), float32(f.y)

	bodyWidth := size * 0.7
	bodyHeight := size * 0.7
	if f.dying {
		// 死亡时缩小
		bodyWidth *= 0.6
		bodyHeight *= 0.6
	}
	drawX := px + (size-bodyWidth)/2
	drawY := py + (size-bodyHeight)/2

	vector.DrawFilledRect(screen, drawX, drawY, bodyWidth, bodyHeight, f.pal.Body, false)
	vector.StrokeRect(screen, drawX, drawY, bodyWidth, bodyHeight, 2, f.pal.Outline, false)

	offset := float32(0)
	if f.animFrame == 1 {
		offset = 2
	}

	handSize := bodyWidth * 0.25
	vector.DrawFilledCircle(screen, drawX-offset-2, drawY+bodyHeight*0.6, handSize, f.pal.Hand, false)
	vector.DrawFilledCircle(screen, drawX+bodyWidth+offset+2, drawY+bodyHeight*0.6, handSize, f.pal.Hand, false)

	footSize := bodyWidth * 0.3
	vector.DrawFilledRect(screen, drawX+bodyWidth*0.2-offset, drawY+bodyHeight, footSize, footSize*0.6, f.pal.Shoe, false)
	vector.DrawFilledRect(screen, drawX+bodyWidth*0.6+offset, drawY+bodyHeight, footSize, footSize*0.6, f.pal.Shoe, false)

	// 眼睛朝向移动方向
	eyeSize := bodyWidth * 0.15
	eyeY := drawY + bodyHeight*0.3
	spacing := bodyWidth * 0.2
	lx, ly := drawX+bodyWidth*0.3, eyeY
	rx, ry := drawX+bodyWidth*0.7, eyeY
	switch f.dir {
	case core.DirUp:
		ly, ry = eyeY-2, eyeY-2
	case core.DirDown:
		ly, ry = eyeY+2, eyeY+2
	case core.DirLeft:
		lx = drawX + bodyWidth*0.3 - spacing/2
		rx = drawX + bodyWidth*0.5 - spacing/2
	case core.DirRight:
		lx = drawX + bodyWidth*0.5 + spacing/2
		rx = drawX + bodyWidth*0.7 + spacing/2
	}
	vector.DrawFilledCircle(screen, lx, ly, eyeSize, color.RGBA{255, 255, 255, 255}, false)
	vector.DrawFilledCircle(screen, rx, ry, eyeSize, color.RGBA{255, 255, 255, 255}, false)
	vector.DrawFilledCircle(screen, lx, ly, eyeSize*0.5, color.RGBA{0, 0, 0, 255}, false)
	vector.DrawFilledCircle(screen, rx, ry, eyeSize*0.5, color.RGBA{0, 0, 0, 255}, false)
}

// drawPlayer 绘制玩家，受保护时闪烁，带护盾时外圈发光
func drawPlayer(screen *ebiten.Image, p core.PlayerView, x, y, elapsed float64) {
	if p.Protected && !p.IsDying && int(elapsed*10)%2 == 1 {
		return
	}

	pal := playerPalette
	if p.Mods.Curse != core.CurseNone {
		pal.Body = color.RGBA{180, 255, 180, 255}
	}
	drawFigure(screen, figure{
		x: x, y: y, size: core.PlayerWidth,
		dir: p.Direction, moving: p.IsMoving, dying: p.IsDying,
		pal: pal, animFrame: animFrameAt(elapsed, p.IsMoving),
	})

	if p.Mods.Shield {
		cx := float32(x) + core.PlayerWidth/2
		cy := float32(y) + core.PlayerHeight/2
		vector.StrokeCircle(screen, cx, cy, core.PlayerWidth*0.75, 2, color.RGBA{100, 200, 255, 200}, false)
	}
}

// drawEnemy 绘制敌人
func drawEnemy(screen *ebiten.Image, e core.EnemyView, x, y, elapsed float64) {
	drawFigure(screen, figure{
		x: x, y: y, size: core.EnemyWidth,
		dir: e.Direction, moving: !e.IsDying, dying: e.IsDying,
		pal: enemyPalette(e.Type), animFrame: animFrameAt(elapsed, !e.IsDying),
	})
}

// powerUpColor 道具底色
func powerUpColor(t core.PowerUpType) color.RGBA {
	switch t {
	case core.PowerUpFire, core.PowerUpFullFire:
		return color.RGBA{255, 100, 0, 255}
	case core.PowerUpBomb, core.PowerUpPowerBomb, core.PowerUpLineBomb:
		return color.RGBA{60, 60, 60, 255}
	case core.PowerUpSpeed:
		return color.RGBA{0, 200, 255, 255}
	case core.PowerUpWallPass, core.PowerUpBombPass, core.PowerUpFlamePass:
		return color.RGBA{180, 120, 255, 255}
	case core.PowerUpShield:
		return color.RGBA{100, 200, 255, 255}
	case core.PowerUpKick, core.PowerUpDetonator:
		return color.RGBA{255, 215, 0, 255}
	case core.PowerUpSkull:
		return color.RGBA{120, 255, 120, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

// drawPowerUps 绘制已露出的道具，上下浮动
func drawPowerUps(screen *ebiten.Image, powerUps []core.PowerUp, elapsed float64) {
	const ts = float32(core.TileSize)

	bob := float32(math.Sin(elapsed*4) * 2)
	for _, p := range powerUps {
		if !p.Active {
			continue
		}
		px := float32(p.Pos.GridX)*ts + 6
		py := float32(p.Pos.GridY)*ts + 6 + bob
		vector.DrawFilledRect(screen, px, py, ts-12, ts-12, powerUpColor(p.Type), false)
		vector.StrokeRect(screen, px, py, ts-12, ts-12, 2, color.RGBA{255, 255, 255, 220}, false)
		label := p.Type.String()
		if label != "" {
			drawLabel(screen, label[:1], float64(px)+6, float64(py)+2, color.White)
		}
	}
}
