package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"bombsim/pkg/core"
)

var (
	colorGrass     = color.RGBA{34, 139, 34, 255}
	colorWall      = color.RGBA{80, 80, 80, 255}
	colorWallLine  = color.RGBA{60, 60, 60, 255}
	colorBlock     = color.RGBA{205, 133, 63, 255}
	colorBlockLine = color.RGBA{180, 118, 53, 255}
	colorExit      = color.RGBA{40, 40, 90, 255}
	colorExitDoor  = color.RGBA{255, 215, 0, 255}
	colorLava      = color.RGBA{200, 60, 20, 255}
	colorLavaGlow  = color.RGBA{255, 160, 40, 255}
	colorSpikes    = color.RGBA{120, 120, 130, 255}
	colorGridLine  = color.RGBA{0, 0, 0, 100}
)

// drawGrid 绘制地形
func drawGrid(screen *ebiten.Image, snap *core.Snapshot) {
	const ts = float32(core.TileSize)

	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			cell, _ := snap.Cell(x, y)
			px := float32(x) * ts
			py := float32(y) * ts

			var c color.Color
			switch cell.Type {
			case core.CellWall:
				c = colorWall
			case core.CellBlock:
				c = colorBlock
			case core.CellExit:
				c = colorExit
			case core.CellLava:
				c = colorLava
			case core.CellSpikes:
				c = colorSpikes
			default:
				c = colorGrass
			}

			// 摧毁中的砖块先铺草地再缩小绘制
			if cell.Destroying {
				vector.DrawFilledRect(screen, px, py, ts, ts, colorGrass, false)
				scale := float32(1 - cell.DestroyProgress)
				inset := ts * (1 - scale) / 2
				vector.DrawFilledRect(screen, px+inset, py+inset, ts*scale, ts*scale, c, false)
			} else {
				vector.DrawFilledRect(screen, px, py, ts, ts, c, false)
			}
			vector.StrokeRect(screen, px, py, ts, ts, 1, colorGridLine, false)

			switch cell.Type {
			case core.CellBlock:
				if !cell.Destroying {
					for i := 0; i < 3; i++ {
						lineY := py + float32(i*10+5)
						vector.StrokeLine(screen, px+2, lineY, px+ts-2, lineY, 1, colorBlockLine, false)
					}
				}
			case core.CellWall:
				vector.StrokeLine(screen, px+ts/2, py+5, px+ts/2, py+ts-5, 2, colorWallLine, false)
				vector.StrokeLine(screen, px+5, py+ts/2, px+ts-5, py+ts/2, 2, colorWallLine, false)
			case core.CellExit:
				vector.DrawFilledRect(screen, px+ts*0.3, py+ts*0.2, ts*0.4, ts*0.7, colorExitDoor, false)
			case core.CellLava:
				vector.DrawFilledCircle(screen, px+ts*0.3, py+ts*0.4, 3, colorLavaGlow, false)
				vector.DrawFilledCircle(screen, px+ts*0.7, py+ts*0.65, 2, colorLavaGlow, false)
			case core.CellSpikes:
				drawSpikes(screen, px, py, snap.SpikesRaised)
			}

			// 火焰与余辉
			switch {
			case cell.Burning:
				vector.DrawFilledRect(screen, px, py, ts, ts, color.RGBA{255, 120, 0, 90}, false)
			case cell.Afterglow > 0:
				alpha := uint8(min(cell.Afterglow, 1) * 80)
				vector.DrawFilledRect(screen, px, py, ts, ts, color.RGBA{255, 80, 0, alpha}, false)
			}
		}
	}
}

// drawSpikes 地刺升起时画出尖刺，落下时只留孔洞
func drawSpikes(screen *ebiten.Image, px, py float32, raised bool) {
	const ts = float32(core.TileSize)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cx := px + ts*(0.2+0.3*float32(i))
			cy := py + ts*(0.2+0.3*float32(j))
			if raised {
				vector.StrokeLine(screen, cx-3, cy+3, cx, cy-4, 2, color.White, false)
				vector.StrokeLine(screen, cx, cy-4, cx+3, cy+3, 2, color.White, false)
			} else {
				vector.DrawFilledCircle(screen, cx, cy, 2, color.RGBA{50, 50, 55, 255}, false)
			}
		}
	}
}
