package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/c-bruce/rocketsim/internal/storage"
)

// Loader returns the frames of a saved run.
type Loader func(runID string) ([]Frame, error)

// Browser lists saved runs and opens the selected one in a replay.
type Browser struct {
	runs      []storage.RunMetadata
	load      Loader
	cursor    int
	err       error
	replaying bool
	replay    Replay
	styles    styles
}

func NewBrowser(runs []storage.RunMetadata, load Loader) Browser {
	return Browser{runs: runs, load: load, styles: newStyles(Themes[0])}
}

func (m Browser) Init() tea.Cmd { return nil }

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.replaying {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "backspace" {
			m.replaying = false
			return m, nil
		}
		next, cmd := m.replay.Update(msg)
		m.replay = next.(Replay)
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.runs)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.runs) == 0 {
			return m, nil
		}
		run := m.runs[m.cursor]
		frames, err := m.load(run.ID)
		if err != nil {
			m.err = fmt.Errorf("load %s: %w", run.ID, err)
			return m, nil
		}
		m.err = nil
		m.replay = NewReplay(run.Name, frames)
		m.replaying = true
		return m, m.replay.Init()
	}
	return m, nil
}

func (m Browser) View() string {
	if m.replaying {
		return m.replay.View() + "\n" + m.styles.hints("backspace", "back to runs")
	}

	st := m.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("ROCKETSIM") + "\n    " + st.muted.Render("saved runs") + "\n\n")
	if len(m.runs) == 0 {
		b.WriteString("    " + st.muted.Render("no runs found") + "\n")
	}
	for i, r := range m.runs {
		desc := fmt.Sprintf("%-28s %-10s %6d saved  %s", r.ID, r.Scheme, r.Saved, FormatElapsed(r.EndTime))
		if i == m.cursor {
			b.WriteString("    " + st.key.Render("▸ ") + st.active.Render(desc) + "\n")
		} else {
			b.WriteString("      " + st.muted.Render(desc) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.active.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.hints("j/k", "navigate", "enter", "open", "q", "quit") + "\n")
	return b.String()
}

func RunBrowser(runs []storage.RunMetadata, load Loader) error {
	_, err := tea.NewProgram(NewBrowser(runs, load), tea.WithAltScreen()).Run()
	return err
}
