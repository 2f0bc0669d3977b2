package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/c-bruce/rocketsim/internal/storage"
)

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Replay, keys ...string) Replay {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Replay)
	}
	return m
}

func TestReplayPlayback(t *testing.T) {
	m := NewReplay("EarthMoon", testFrames())
	if !m.Playing() || m.Cursor() != 0 {
		t.Fatal("replay should start playing at the first timestep")
	}
	if m.Focus() != "Earth" || m.Selected() != "Moon" {
		t.Errorf("focus %q selected %q", m.Focus(), m.Selected())
	}

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Replay)
	if m.Cursor() != 1 || cmd == nil {
		t.Errorf("tick advanced to %d", m.Cursor())
	}

	m = press(m, ">")
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Replay)
	if m.Cursor() != 3 || m.Playing() {
		t.Errorf("cursor %d playing %v at end of run", m.Cursor(), m.Playing())
	}

	m = press(m, " ")
	if !m.Playing() || m.Cursor() != 0 {
		t.Error("play at the end should restart")
	}

	m = press(m, "]", "]")
	if m.Playing() || m.Cursor() != 2 {
		t.Errorf("step forward: cursor %d playing %v", m.Cursor(), m.Playing())
	}
	m = press(m, "[", "[", "[", "[")
	if m.Cursor() != 0 {
		t.Errorf("step back clamps at 0, got %d", m.Cursor())
	}
	m = press(m, "G")
	if m.Cursor() != 3 {
		t.Errorf("end key: cursor %d", m.Cursor())
	}
}

func TestReplaySpeedAndFocus(t *testing.T) {
	m := NewReplay("run", testFrames())
	m = press(m, "<")
	if m.Speed() != 1 {
		t.Errorf("speed below 1: %d", m.Speed())
	}
	for i := 0; i < 10; i++ {
		m = press(m, ">")
	}
	if m.Speed() != maxSpeed {
		t.Errorf("speed = %d, want %d", m.Speed(), maxSpeed)
	}

	m = press(m, "f")
	if m.Focus() != "Moon" {
		t.Errorf("focus = %q", m.Focus())
	}
	m = press(m, "f")
	if m.Focus() != "" {
		t.Errorf("focus should wrap to the origin, got %q", m.Focus())
	}
	m = press(m, "tab")
	if m.Selected() != "Earth" {
		t.Errorf("selected = %q", m.Selected())
	}

	z := m.Camera().Zoom
	m = press(m, "+")
	if m.Camera().Zoom <= z {
		t.Error("zoom in had no effect")
	}

	m = press(m, "t")
	if m.theme.Name != Themes[1].Name {
		t.Errorf("theme = %q", m.theme.Name)
	}
}

func TestReplayView(t *testing.T) {
	m := press(NewReplay("EarthMoon", testFrames()), "G")
	out := m.View()
	for _, want := range []string{"EARTHMOON", "Moon", "4/4", "00:03:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, "?")
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay missing")
	}

	empty := NewReplay("empty", nil)
	if empty.View() == "" {
		t.Error("empty replay should still render")
	}
}

func TestReplayQuit(t *testing.T) {
	_, cmd := NewReplay("run", testFrames()).Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowser(t *testing.T) {
	runs := []storage.RunMetadata{{ID: "a-1", Name: "A"}, {ID: "b-2", Name: "B"}}
	var loaded []string
	load := func(id string) ([]Frame, error) {
		loaded = append(loaded, id)
		if id == "b-2" {
			return nil, errors.New("broken")
		}
		return testFrames(), nil
	}

	var m tea.Model = NewBrowser(runs, load)
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("enter"))
	if b := m.(Browser); b.replaying || b.err == nil {
		t.Fatal("failed load should stay on the list with an error")
	}
	if !strings.Contains(m.View(), "broken") {
		t.Error("load error not shown")
	}

	m, _ = m.Update(key("k"))
	m, cmd := m.Update(key("enter"))
	if !m.(Browser).replaying || cmd == nil {
		t.Fatal("enter should open the replay")
	}
	if !strings.Contains(m.View(), "A") {
		t.Error("replay view missing run name")
	}

	m, _ = m.Update(key("backspace"))
	if m.(Browser).replaying {
		t.Error("backspace should return to the run list")
	}
	if len(loaded) != 2 || loaded[0] != "b-2" || loaded[1] != "a-1" {
		t.Errorf("loaded %v", loaded)
	}
}
