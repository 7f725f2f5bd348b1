package client

import (
	"slices"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"bombsim/pkg/core"
)

// fakeKeys 用集合模拟键盘
func fakeKeys(held []ebiten.Key, pressed ...ebiten.Key) keyState {
	return keyState{
		held:    func(k ebiten.Key) bool { return slices.Contains(held, k) },
		pressed: func(k ebiten.Key) bool { return slices.Contains(pressed, k) },
	}
}

func TestReadInput(t *testing.T) {
	tests := []struct {
		name   string
		scheme ControlScheme
		keys   keyState
		want   core.Input
	}{
		{
			name:   "wasd move",
			scheme: ControlWASD,
			keys:   fakeKeys([]ebiten.Key{ebiten.KeyW, ebiten.KeyD}),
			want:   core.Input{Up: true, Right: true},
		},
		{
			name:   "wasd ignores arrows",
			scheme: ControlWASD,
			keys:   fakeKeys([]ebiten.Key{ebiten.KeyArrowUp}),
			want:   core.Input{},
		},
		{
			name:   "held space does not bomb",
			scheme: ControlWASD,
			keys:   fakeKeys([]ebiten.Key{ebiten.KeySpace}),
			want:   core.Input{},
		},
		{
			name:   "arrow bomb and detonate on press",
			scheme: ControlArrow,
			keys:   fakeKeys([]ebiten.Key{ebiten.KeyArrowDown}, ebiten.KeyEnter, ebiten.KeyShiftRight),
			want:   core.Input{Down: true, Bomb: true, Detonate: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scheme.readInput(tt.keys); got != tt.want {
				t.Errorf("readInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInputTrackerSendsChanges(t *testing.T) {
	var tr inputTracker

	if _, ok := tr.next(core.Input{}); !ok {
		t.Error("the first input is always sent")
	}
	if _, ok := tr.next(core.Input{}); ok {
		t.Error("unchanged input should not be resent")
	}
	if _, ok := tr.next(core.Input{Left: true, Bomb: true}); !ok {
		t.Error("a bomb press should be sent")
	}
	if in, ok := tr.next(core.Input{Left: true}); !ok || in.Bomb {
		t.Errorf("releasing bomb is a change: %+v %v", in, ok)
	}
}

func TestParseControlScheme(t *testing.T) {
	if s, ok := ParseControlScheme("arrow"); !ok || s != ControlArrow {
		t.Errorf("arrow = %v %v", s, ok)
	}
	if s, ok := ParseControlScheme("joystick"); ok || s != ControlWASD {
		t.Errorf("unknown scheme should fall back to wasd, got %v %v", s, ok)
	}
}
