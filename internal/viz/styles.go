package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	key    lipgloss.Style
	active lipgloss.Style
	canvas lipgloss.Style
	panel  lipgloss.Style
	graph  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		key:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		active: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		canvas: lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		graph: lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
	}
}

// hints renders "key action" pairs.
func (s styles) hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.key.Render(pairs[i]) + s.muted.Render(" "+pairs[i+1]))
	}
	return b.String()
}

// ProgressBar renders a bar of width cells filled to fraction.
func ProgressBar(fraction float64, width int) string {
	filled := int(math.Round(fraction * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatElapsed renders seconds as days and clock time.
func FormatElapsed(seconds float64) string {
	sign := ""
	if seconds < 0 {
		sign, seconds = "-", -seconds
	}
	total := int64(math.Floor(seconds))
	days := total / 86400
	h, m, s := (total%86400)/3600, (total%3600)/60, total%60
	if days > 0 {
		return fmt.Sprintf("%s%dd %02d:%02d:%02d", sign, days, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

// FormatDistance renders metres with a readable unit.
func FormatDistance(m float64) string {
	switch a := math.Abs(m); {
	case a >= 1e9:
		return fmt.Sprintf("%.3g Gm", m/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.4g Mm", m/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.4g km", m/1e3)
	}
	return fmt.Sprintf("%.4g m", m)
}
