package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
)

const (
	stateMenu = iota
	stateLive
)

// App is the catalogue menu in front of the live preview.
type App struct {
	sched  *scheduler.Scheduler
	graph  *scene.Memory
	opts   Options
	state  int
	cursor int
	ids    []string
	desc   map[string]string
	live   Model
	err    string
	width  int
	height int
}

func NewApp(s *scheduler.Scheduler, graph *scene.Memory, opts Options) App {
	reg := s.Registry()
	ids := reg.List()
	desc := make(map[string]string, len(ids))
	for _, id := range ids {
		if m, ok := reg.Lookup(id); ok {
			desc[id] = m.Description()
		}
	}
	return App{sched: s, graph: graph, opts: opts, ids: ids, desc: desc}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = ws.Width, ws.Height
	}
	if a.state == stateLive {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			if err := a.sched.Registry().DeactivateCurrent(); err != nil {
				a.err = err.Error()
			}
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.ids)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start()
	}
	return a, nil
}

func (a App) start() (tea.Model, tea.Cmd) {
	if len(a.ids) == 0 {
		return a, nil
	}
	opts := a.opts
	opts.Visualizer = a.ids[a.cursor]
	live, err := NewModel(a.sched, a.graph, opts)
	if err != nil {
		a.err = err.Error()
		return a, nil
	}
	if a.width > 0 {
		live.resize(a.width, a.height)
	}
	a.live, a.state, a.err = live, stateLive, ""
	return a, live.Init()
}

func (a App) View() string {
	if a.state == stateLive {
		return a.live.View()
	}
	th := GetTheme(a.opts.Theme)
	head := lipgloss.NewStyle().Foreground(th.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(th.Muted)
	sel := lipgloss.NewStyle().Foreground(th.Text).Bold(true)
	pick := lipgloss.NewStyle().Foreground(th.Secondary)
	key := lipgloss.NewStyle().Foreground(th.Primary).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + head.Render("SONOFORM") + "\n    " + sub.Render("audio-reactive scenes") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, id := range a.ids {
		d := a.desc[id]
		if len(d) > 40 {
			d = d[:37] + "..."
		}
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", head.Render("▸"), sel.Render(fmt.Sprintf("%-16s", id)), pick.Render(d)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-16s", id)), sub.Render(d)))
		}
	}
	if a.err != "" {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(th.Error).Render(a.err) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" start  ") + key.Render("esc") + sub.Render(" back  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive shows the menu and then the live preview.
func RunInteractive(a App) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}
