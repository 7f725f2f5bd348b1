package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"bombsim/pkg/core"
	"bombsim/pkg/level"
)

func TestTelemetryLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	tel := NewTelemetry(logger)

	tel.Notify("bomb_place", core.Event{Kind: core.EventBombPlaced})
	if buf.Len() != 0 {
		t.Errorf("bomb placement is debug-only, got %q", buf.String())
	}

	tel.Notify("enemy_death", core.Event{Kind: core.EventEnemyDeath, Frame: 42, Actor: 7, Value: 100})
	out := buf.String()
	for _, want := range []string{"enemy_death", "frame=42", "actor=7", "value=100"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestCounterSummary(t *testing.T) {
	c := NewCounter()
	c.Notify("explosion", core.Event{})
	c.Notify("explosion", core.Event{})
	c.Notify("combo", core.Event{})
	c.Notify("bomb_place", core.Event{})

	got := c.Summary()
	want := []Entry{{"explosion", 2}, {"bomb_place", 1}, {"combo", 1}}
	if len(got) != len(want) {
		t.Fatalf("summary %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: %+v, want %+v", i, got[i], want[i])
		}
	}

	c.Reset()
	if c.Count("explosion") != 0 {
		t.Error("Reset should clear counts")
	}
}

func TestCounterAsGameSink(t *testing.T) {
	desc, err := level.NewGenerator(core.DefaultGridWidth, core.DefaultGridHeight).Generate(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCounter()
	g := core.NewGame(core.DefaultConfig(), core.WithEventSink(c))
	if err := g.LoadLevel(desc); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3*core.FPS; i++ {
		g.Update(core.FixedDeltaTime, core.Input{})
	}
	if c.Count("round_start") != 1 {
		t.Errorf("expected one round_start, got %+v", c.Summary())
	}
}
