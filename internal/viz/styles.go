package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas  lipgloss.Style
	stats   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	active  lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	beat    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	failed  lipgloss.Style
}

func newStyles(th Theme) styles {
	return styles{
		canvas:  lipgloss.NewStyle().Padding(1, 2),
		stats:   lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(th.Muted).Padding(1, 2).Width(42),
		header:  lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(th.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(th.Text),
		active:  lipgloss.NewStyle().Foreground(th.Secondary).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(th.Secondary).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1),
		beat:    lipgloss.NewStyle().Foreground(th.Background).Background(th.Accent).Bold(true),
		running: lipgloss.NewStyle().Foreground(th.Success).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(th.Warning).Bold(true),
		failed:  lipgloss.NewStyle().Foreground(th.Error).Bold(true),
	}
}

// meters are the bass/mid/treble bars.
type meters struct {
	bass, mid, treble progress.Model
}

func newMeters(th Theme, width int) meters {
	bar := func(from, to lipgloss.Color) progress.Model {
		return progress.New(
			progress.WithGradient(string(from), string(to)),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		)
	}
	return meters{
		bass:   bar(th.Primary, th.Secondary),
		mid:    bar(th.Secondary, th.Accent),
		treble: bar(th.Accent, th.Primary),
	}
}

// levelOf compresses a band magnitude into [0,1] for display.
func levelOf(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Sqrt(v))
}

// GradientText colours each rune of text along a gradient.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, b := parseColor(from), parseColor(to)
	var out strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLuv(b, t).Clamped()
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return out.String()
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values as block characters scaled to
// their own range.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		span = 1
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := int((v - lo) / span * float64(len(sparkChars)-1))
		out[i] = sparkChars[max(0, min(idx, len(sparkChars)-1))]
	}
	return string(out)
}

// Spinner returns one frame of the Braille spinner.
func Spinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	if frame < 0 {
		frame = -frame
	}
	return frames[frame%len(frames)]
}
