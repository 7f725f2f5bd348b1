package client

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"bombsim/pkg/core"
)

// ControlScheme 按键方案
type ControlScheme int

const (
	ControlWASD  ControlScheme = iota // WASD + 空格放弹 + E 引爆
	ControlArrow                      // 方向键 + 回车放弹 + 右 Shift 引爆
)

func (c ControlScheme) String() string {
	switch c {
	case ControlWASD:
		return "WASD+空格"
	case ControlArrow:
		return "方向键+回车"
	}
	return "未知"
}

// ParseControlScheme 解析命令行里的按键方案名
func ParseControlScheme(name string) (ControlScheme, bool) {
	switch name {
	case "wasd":
		return ControlWASD, true
	case "arrow", "arrows":
		return ControlArrow, true
	}
	return ControlWASD, false
}

// keyBinding 一套方案对应的按键
type keyBinding struct {
	up, down, left, right ebiten.Key
	bomb, detonate        ebiten.Key
}

func (c ControlScheme) keys() keyBinding {
	if c == ControlArrow {
		return keyBinding{
			up: ebiten.KeyArrowUp, down: ebiten.KeyArrowDown,
			left: ebiten.KeyArrowLeft, right: ebiten.KeyArrowRight,
			bomb: ebiten.KeyEnter, detonate: ebiten.KeyShiftRight,
		}
	}
	return keyBinding{
		up: ebiten.KeyW, down: ebiten.KeyS,
		left: ebiten.KeyA, right: ebiten.KeyD,
		bomb: ebiten.KeySpace, detonate: ebiten.KeyE,
	}
}

// keyState 按键查询，held 为持续按下，pressed 为本帧刚按下
type keyState struct {
	held    func(ebiten.Key) bool
	pressed func(ebiten.Key) bool
}

var ebitenKeys = keyState{
	held:    ebiten.IsKeyPressed,
	pressed: inpututil.IsKeyJustPressed,
}

// readInput 方向键按住生效，放弹与引爆只在按下那一帧生效
func (c ControlScheme) readInput(ks keyState) core.Input {
	k := c.keys()
	return core.Input{
		Up:       ks.held(k.up),
		Down:     ks.held(k.down),
		Left:     ks.held(k.left),
		Right:    ks.held(k.right),
		Bomb:     ks.pressed(k.bomb),
		Detonate: ks.pressed(k.detonate),
	}
}

// inputTracker 只在输入变化时上报，宿主会保持上一条输入
type inputTracker struct {
	last core.Input
	sent bool
}

// next 返回需要发送的输入，无变化时返回 false
func (t *inputTracker) next(in core.Input) (core.Input, bool) {
	if t.sent && in == t.last {
		return in, false
	}
	t.last = in
	t.sent = true
	return in, true
}
