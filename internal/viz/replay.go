package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	tickRate     = time.Second / 30
	maxSpeed     = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Replay plays back the saved timesteps of a run. The view is centred on
// the focused body, or on the inertial origin when focus is -1.
type Replay struct {
	title    string
	frames   []Frame
	names    []string
	cursor   int
	playing  bool
	speed    int
	focus    int
	selected int
	camera   *Camera
	canvas   *Canvas
	theme    Theme
	styles   styles
	showHelp bool
}

func NewReplay(title string, frames []Frame) Replay {
	m := Replay{
		title:   title,
		frames:  frames,
		names:   Names(frames),
		playing: true,
		speed:   1,
		focus:   -1,
		camera:  NewCamera(),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   Themes[0],
	}
	m.styles = newStyles(m.theme)
	if len(m.names) > 1 {
		m.focus = 0
		m.selected = 1
	}
	m.fit()
	return m
}

func (m Replay) Cursor() int     { return m.cursor }
func (m Replay) Playing() bool   { return m.playing }
func (m Replay) Speed() int      { return m.speed }
func (m Replay) Camera() *Camera { return m.camera }

// Focus returns the name of the body the view is centred on, or "".
func (m Replay) Focus() string {
	if m.focus < 0 || m.focus >= len(m.names) {
		return ""
	}
	return m.names[m.focus]
}

// Selected returns the body shown in the chart.
func (m Replay) Selected() string {
	if len(m.names) == 0 {
		return ""
	}
	return m.names[m.selected]
}

func (m Replay) Init() tea.Cmd { return tick() }

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
			if m.playing && m.cursor >= len(m.frames)-1 {
				m.cursor = 0
			}
		case "[":
			m.playing = false
			m.seek(m.cursor - 1)
		case "]":
			m.playing = false
			m.seek(m.cursor + 1)
		case "home", "g":
			m.seek(0)
		case "end", "G":
			m.seek(len(m.frames) - 1)
		case "<", ",":
			m.speed = max(1, m.speed/2)
		case ">", ".":
			m.speed = min(maxSpeed, m.speed*2)
		case "f":
			if len(m.names) > 0 {
				m.focus++
				if m.focus >= len(m.names) {
					m.focus = -1
				}
				m.fit()
			}
		case "tab":
			if len(m.names) > 0 {
				m.selected = (m.selected + 1) % len(m.names)
			}
		case "x":
			m.camera.Rotate(0.1, 0)
		case "X":
			m.camera.Rotate(-0.1, 0)
		case "y":
			m.camera.Rotate(0, 0.1)
		case "Y":
			m.camera.Rotate(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.playing {
			m.seek(m.cursor + m.speed)
			if m.cursor >= len(m.frames)-1 {
				m.playing = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Replay) seek(i int) {
	m.cursor = max(0, min(len(m.frames)-1, i))
}

// relative returns p relative to the focused body in f.
func (m Replay) relative(f Frame, p mgl64.Vec3) mgl64.Vec3 {
	if name := m.Focus(); name != "" {
		if o, ok := f.Find(name); ok {
			return p.Sub(o.Position)
		}
	}
	return p
}

// fit scales the camera to every position of the run.
func (m *Replay) fit() {
	var pts []mgl64.Vec3
	for _, f := range m.frames {
		for _, b := range f.Bodies {
			pts = append(pts, m.relative(f, b.Position))
		}
	}
	m.camera.Center = mgl64.Vec3{}
	m.camera.Fit(pts)
}

func (m *Replay) draw() {
	m.canvas.Clear()
	if len(m.frames) == 0 {
		return
	}
	for _, name := range m.names {
		if name == m.Focus() {
			continue
		}
		trail := make([]mgl64.Vec3, 0, m.cursor+1)
		for _, f := range m.frames[:m.cursor+1] {
			if b, ok := f.Find(name); ok {
				trail = append(trail, m.relative(f, b.Position))
			}
		}
		DrawPath(m.canvas, m.camera, trail)
	}

	f := m.frames[m.cursor]
	bodies := make([]BodyFrame, len(f.Bodies))
	for i, b := range f.Bodies {
		b.Position = m.relative(f, b.Position)
		bodies[i] = b
	}
	DrawBodies(m.canvas, m.camera, bodies)
}

func (m Replay) View() string {
	m.draw()
	st := m.styles

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := "PLAYING"
	if !m.playing {
		status = "PAUSED"
	}
	s.WriteString(fmt.Sprintf("%s x%d\n\n", st.active.Render(status), m.speed))

	if len(m.frames) > 0 {
		f := m.frames[m.cursor]
		s.WriteString(st.label.Render("Time") + st.value.Render(FormatElapsed(f.Time)) + "\n")
		s.WriteString(st.label.Render("Timestep") + st.value.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.frames))) + "\n")
		s.WriteString(st.muted.Render(ProgressBar(float64(m.cursor)/float64(max(1, len(m.frames)-1)), 30)) + "\n\n")

		focus := m.Focus()
		if focus == "" {
			focus = "origin"
		}
		s.WriteString(st.label.Render("Centre") + st.value.Render(focus) + "\n\n")
		for _, b := range f.Bodies {
			line := fmt.Sprintf("%-10s %10s %9.1f m/s", b.Name, FormatDistance(m.relative(f, b.Position).Len()), b.Velocity.Len())
			if m.names[m.selected] == b.Name {
				s.WriteString(st.active.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + st.value.Render(line) + "\n")
			}
		}

		var dist []float64
		for _, f := range m.frames[:m.cursor+1] {
			if b, ok := f.Find(m.Selected()); ok {
				dist = append(dist, m.relative(f, b.Position).Len()/1e3)
			}
		}
		if len(dist) > 1 {
			s.WriteString(st.graph.Render(Chart(m.Selected()+" distance (km)", 5, 30, dist)) + "\n")
		}
	}

	s.WriteString("\n" + st.hints("spc", "play", "[ ]", "step", "< >", "speed") + "\n")
	s.WriteString(st.hints("f", "centre", "tab", "body", "?", "help", "q", "quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [ ]      - Step back/forward        ║
║  g G      - First/last timestep      ║
║  < >      - Slower/faster            ║
║  F        - Cycle centre body        ║
║  Tab      - Cycle charted body       ║
║  x X y Y  - Rotate view              ║
║  + -      - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// RunReplay opens the replay in the terminal and blocks until it exits.
func RunReplay(title string, frames []Frame) error {
	_, err := tea.NewProgram(NewReplay(title, frames), tea.WithAltScreen()).Run()
	return err
}
