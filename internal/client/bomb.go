package client

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"bombsim/pkg/core"
)

// drawBombs 绘制炸弹，fuse 为完整引信时长
func drawBombs(screen *ebiten.Image, bombs []core.BombView, fuse float64) {
	for _, b := range bombs {
		if b.State != core.BombArmed && b.State != core.BombSliding {
			continue
		}
		drawBomb(screen, b, fuse)
	}
}

func drawBomb(screen *ebiten.Image, b core.BombView, fuse float64) {
	cx, cy := float32(b.X), float32(b.Y)

	// 遥控炸弹不计时
	ratio := 0.0
	if !b.Manual && fuse > 0 {
		ratio = math.Min(math.Max(1-b.Fuse/fuse, 0), 1)
	}

	radius := float32(12)

	// 越接近爆炸闪得越快
	blink := math.Sin((fuse - b.Fuse) * (8 + 24*ratio))
	alpha := uint8(200 + 55*blink)

	body := color.RGBA{0, 0, 0, alpha}
	if b.Owner != core.PlayerOwnerID {
		body = color.RGBA{90, 0, 60, alpha}
	}
	vector.DrawFilledCircle(screen, cx, cy, radius, body, false)
	vector.StrokeCircle(screen, cx, cy, radius, 2, color.RGBA{50, 50, 50, 255}, false)

	if b.Manual {
		// 遥控炸弹：顶部红灯
		vector.DrawFilledCircle(screen, cx, cy-radius, 3, color.RGBA{255, 0, 0, 255}, false)
		return
	}

	// 引线随时间变短
	fuseLength := float32(15 * (1 - ratio))
	if fuseLength > 0 {
		fuseX := cx - radius*0.5
		fuseY := cy - radius
		vector.StrokeLine(screen, fuseX, fuseY, fuseX-fuseLength*0.5, fuseY-fuseLength,
			2, color.RGBA{139, 69, 19, 255}, false)

		if blink > 0 {
			spark := color.RGBA{255, uint8(100 + 155*blink), 0, 255}
			vector.DrawFilledCircle(screen, fuseX-fuseLength*0.5, fuseY-fuseLength, 3, spark, false)
		}
	}

	// 即将爆炸时外圈告警
	if ratio > 0.7 {
		warningAlpha := uint8((ratio - 0.7) / 0.3 * 100)
		warningRadius := radius + float32(10*(ratio-0.7)/0.3)
		vector.StrokeCircle(screen, cx, cy, warningRadius, 2, color.RGBA{255, 0, 0, warningAlpha}, false)
	}
}

// drawExplosions 绘制火焰，duration 为火焰持续时长
func drawExplosions(screen *ebiten.Image, explosions []core.Explosion, duration float64) {
	const ts = float32(core.TileSize)

	for _, ex := range explosions {
		ratio := 0.0
		if duration > 0 {
			ratio = math.Min(math.Max(1-ex.Remaining/duration, 0), 1)
		}
		alpha := uint8(255 * (1 - ratio))

		var flame color.RGBA
		switch {
		case ratio < 0.3:
			flame = color.RGBA{255, 255, 0, alpha}
		case ratio < 0.6:
			flame = color.RGBA{255, 165, 0, alpha}
		default:
			flame = color.RGBA{255, 0, 0, alpha}
		}

		// 从中心扩散
		scale := float32(0.3 + 0.7*math.Min(ratio*2, 1.0))
		for _, c := range ex.Cells {
			px := float32(c.Pos.GridX) * ts
			py := float32(c.Pos.GridY) * ts

			// 火臂沿传播方向拉长
			w, h := ts*scale, ts*scale
			switch c.Dir {
			case core.DirLeft, core.DirRight:
				w = ts
			case core.DirUp, core.DirDown:
				h = ts
			}
			vector.DrawFilledRect(screen, px+(ts-w)/2, py+(ts-h)/2, w, h, flame, false)

			if ratio < 0.5 {
				inner := ts * scale * 0.4
				vector.DrawFilledRect(screen, px+(ts-inner)/2, py+(ts-inner)/2, inner, inner,
					color.RGBA{255, 255, 255, alpha}, false)
			}
		}
	}
}

// drawWarnings 超时刷怪前的预警格
func drawWarnings(screen *ebiten.Image, warnings []core.SpawnWarning, elapsed float64) {
	const ts = float32(core.TileSize)

	for _, w := range warnings {
		px := float32(w.Pos.GridX) * ts
		py := float32(w.Pos.GridY) * ts
		blink := math.Sin(elapsed * 12)
		alpha := uint8(120 + 100*blink)
		vector.StrokeRect(screen, px+2, py+2, ts-4, ts-4, 3, color.RGBA{255, 0, 0, alpha}, false)
		vector.StrokeLine(screen, px+ts/2, py+6, px+ts/2, py+ts-12, 3, color.RGBA{255, 0, 0, alpha}, false)
		vector.DrawFilledCircle(screen, px+ts/2, py+ts-7, 2, color.RGBA{255, 0, 0, alpha}, false)
	}
}
