package client

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"bombsim/pkg/core"
	"bombsim/pkg/protocol"
)

// HUDHeight 地图下方状态栏高度
const HUDHeight = 48

// feedSize 事件滚动栏保留的条数
const feedSize = 4

var hudFont = text.NewGoXFace(basicfont.Face7x13)

func drawLabel(screen *ebiten.Image, msg string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, msg, hudFont, op)
}

// describeEvent 事件滚动栏里的一行，不值得展示的事件返回空串
func describeEvent(ev core.Event) string {
	switch ev.Kind {
	case core.EventEnemyDeath:
		return fmt.Sprintf("enemy #%d down +%d", ev.Actor, ev.Value)
	case core.EventCombo:
		return fmt.Sprintf("combo x%d", ev.Value)
	case core.EventPowerUp:
		return "got " + core.PowerUpType(ev.Value).String()
	case core.EventPlayerDeath:
		return "player down"
	case core.EventRespawn:
		return fmt.Sprintf("respawn, %d lives", ev.Value)
	case core.EventShieldBreak:
		return "shield broken"
	case core.EventExitBlocked:
		return fmt.Sprintf("exit locked, %d enemies left", ev.Value)
	case core.EventTimeUp:
		return "time up! hunters incoming"
	case core.EventLevelComplete:
		return fmt.Sprintf("level clear +%d", ev.Value)
	case core.EventRoundStart:
		return fmt.Sprintf("level %d start", ev.Value)
	case core.EventGameOver:
		return fmt.Sprintf("game over, score %d", ev.Value)
	case core.EventVictory:
		return fmt.Sprintf("victory! score %d", ev.Value)
	case core.EventSlowMo:
		return "slow motion"
	}
	return ""
}

// eventFeed 最近几条事件
type eventFeed struct {
	lines []string
}

func (f *eventFeed) push(ev core.Event) {
	line := describeEvent(ev)
	if line == "" {
		return
	}
	f.lines = append(f.lines, line)
	if len(f.lines) > feedSize {
		f.lines = f.lines[len(f.lines)-feedSize:]
	}
}

// statusLine 状态栏第一行
func statusLine(s *core.Snapshot) string {
	return fmt.Sprintf("L%d  %s  time %3.0f  score %d  lives %d  bombs %d/%d  fire %d",
		s.Level, s.State, s.Clock, s.Score, s.Player.Lives,
		s.Player.ActiveBombs, s.Player.Mods.MaxBombs, s.Player.Mods.FireRange)
}

// abilityLine 状态栏第二行：当前持有的特殊能力
func abilityLine(m core.Modifiers) string {
	var parts []string
	add := func(on bool, name string) {
		if on {
			parts = append(parts, name)
		}
	}
	add(m.WallPass, "wallpass")
	add(m.BombPass, "bombpass")
	add(m.FlamePass, "flamepass")
	add(m.Shield, "shield")
	add(m.Kick, "kick")
	add(m.Detonator, "detonator")
	add(m.PowerBomb, "powerbomb")
	add(m.LineBomb, "linebomb")
	if m.Curse != core.CurseNone {
		parts = append(parts, fmt.Sprintf("curse:%s %.0fs", m.Curse, m.CurseTimer))
	}
	return strings.Join(parts, " ")
}

func drawHUD(screen *ebiten.Image, s *core.Snapshot, feed *eventFeed, top float64, rtt int64, pilot bool) {
	w := float32(screen.Bounds().Dx())
	vector.DrawFilledRect(screen, 0, float32(top), w, HUDHeight, color.RGBA{20, 20, 30, 255}, false)

	drawLabel(screen, statusLine(s), 6, top+4, color.White)
	if line := abilityLine(s.Player.Mods); line != "" {
		drawLabel(screen, line, 6, top+18, color.RGBA{255, 215, 0, 255})
	}

	role := "viewer"
	if pilot {
		role = "pilot"
	}
	meta := fmt.Sprintf("%s  rtt %dms", role, rtt)
	if s.Combo > 1 {
		meta += fmt.Sprintf("  combo x%d", s.Combo)
	}
	drawLabel(screen, meta, 6, top+32, color.RGBA{160, 160, 180, 255})

	// 事件栏靠右
	for i, line := range feed.lines {
		x := float64(w) - float64(len(line)*7) - 6
		drawLabel(screen, line, x, 4+float64(i)*14, color.RGBA{255, 255, 255, 200})
	}
}

// drawBanner 屏幕中央的大字提示
func drawBanner(screen *ebiten.Image, lines ...string) {
	b := screen.Bounds()
	overlay := color.RGBA{0, 0, 0, 128}
	vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), overlay, false)

	y := float64(b.Dy())/2 - float64(len(lines))*8
	for _, line := range lines {
		x := float64(b.Dx())/2 - float64(len(line)*7)/2
		drawLabel(screen, line, x, y, color.White)
		y += 16
	}
}

// resultLines 结算横幅内容
func resultLines(r protocol.Result) []string {
	lines := []string{
		strings.ToUpper(strings.ReplaceAll(r.Outcome.String(), "_", " ")),
		fmt.Sprintf("level %d  score %d  bonus %d", r.Level, r.Score, r.Bonus),
		strings.Repeat("*", r.Stars) + strings.Repeat(".", max(0, 3-r.Stars)),
	}
	if r.Receipt != "" {
		lines = append(lines, "receipt issued")
	}
	return lines
}
