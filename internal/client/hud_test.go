package client

import (
	"strings"
	"testing"

	"bombsim/pkg/core"
	"bombsim/pkg/protocol"
)

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		ev   core.Event
		want string
	}{
		{core.Event{Kind: core.EventPowerUp, Value: int(core.PowerUpKick)}, "got kick"},
		{core.Event{Kind: core.EventCombo, Value: 3}, "combo x3"},
		{core.Event{Kind: core.EventExitBlocked, Value: 2}, "exit locked, 2 enemies left"},
		{core.Event{Kind: core.EventExplosion}, ""},
		{core.Event{Kind: core.EventBlockDestroyed}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.ev.Kind.String(), func(t *testing.T) {
			if got := describeEvent(tt.ev); got != tt.want {
				t.Errorf("describeEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventFeedKeepsRecent(t *testing.T) {
	var f eventFeed
	for i := 1; i <= feedSize+2; i++ {
		f.push(core.Event{Kind: core.EventCombo, Value: i})
		f.push(core.Event{Kind: core.EventExplosion})
	}
	if len(f.lines) != feedSize {
		t.Fatalf("feed holds %d lines, want %d", len(f.lines), feedSize)
	}
	if f.lines[0] != "combo x3" || f.lines[feedSize-1] != "combo x6" {
		t.Errorf("feed = %q", f.lines)
	}
}

func TestAbilityLine(t *testing.T) {
	if got := abilityLine(core.Modifiers{}); got != "" {
		t.Errorf("no abilities should render empty, got %q", got)
	}
	got := abilityLine(core.Modifiers{Kick: true, Detonator: true, Curse: core.CurseReverse, CurseTimer: 4.2})
	if got != "kick detonator curse:reverse 4s" {
		t.Errorf("abilityLine() = %q", got)
	}
}

func TestResultLines(t *testing.T) {
	lines := resultLines(protocol.Result{
		RoundResult: core.RoundResult{Level: 3, Outcome: core.OutcomeLevelComplete, Score: 1200, Bonus: 300, Stars: 2},
		Receipt:     "token",
	})
	if lines[0] != "LEVEL COMPLETE" || lines[2] != "**." {
		t.Errorf("resultLines() = %q", lines)
	}
	if !strings.Contains(lines[1], "score 1200") || lines[len(lines)-1] != "receipt issued" {
		t.Errorf("resultLines() = %q", lines)
	}
}
