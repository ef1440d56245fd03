package viz

import (
	"fmt"
	"image"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 240
	statsWidth      = 46
	meterWidth      = 24
	gifPath         = "sonoform.gif"
	maxGIFFrames    = 600
)

// Options configures a live Model.
type Options struct {
	Visualizer    string
	Params        vizcore.Params
	Theme         string
	FPS           int
	Width, Height int
}

type TickMsg time.Time

// Model drives a scheduler from bubbletea ticks and draws the Memory graph
// the active visualizer writes into.
type Model struct {
	sched  *scheduler.Scheduler
	graph  *scene.Memory
	ids    []string
	index  int
	params vizcore.Params

	fps           int
	frame         int
	width, height int
	canvas        *Canvas
	camera        *Camera
	zoom          harmonica.Spring
	zoomVel       float64
	autoRotate    bool
	autoFit       bool
	theme         Theme
	st            styles
	meters        meters

	running  bool
	last     scheduler.FrameStats
	energy   []float64
	message  string
	showHelp bool

	recording bool
	frames    []*image.Paletted
}

// NewModel activates opts.Visualizer on the scheduler's registry. The
// registry must draw into graph.
func NewModel(s *scheduler.Scheduler, graph *scene.Memory, opts Options) (Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	reg := s.Registry()
	a, err := reg.Activate(opts.Visualizer, opts.Params)
	if err != nil {
		return Model{}, err
	}
	ids := reg.List()
	index := 0
	for i, id := range ids {
		if id == opts.Visualizer {
			index = i
		}
	}
	th := GetTheme(opts.Theme)
	return Model{
		sched:      s,
		graph:      graph,
		ids:        ids,
		index:      index,
		params:     a.Params(),
		fps:        opts.FPS,
		width:      opts.Width,
		height:     opts.Height,
		canvas:     NewCanvas(opts.Width, opts.Height),
		camera:     NewCamera(),
		zoom:       harmonica.NewSpring(harmonica.FPS(opts.FPS), 4.0, 1.0),
		autoRotate: true,
		autoFit:    true,
		theme:      th,
		st:         newStyles(th),
		meters:     newMeters(th, meterWidth),
		running:    true,
		energy:     make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Elapsed is the render clock in seconds.
func (m Model) Elapsed() float64 { return float64(m.frame) / float64(m.fps) }

func (m Model) Visualizer() string         { return m.ids[m.index] }
func (m Model) Params() vizcore.Params     { return m.params }
func (m Model) Theme() Theme               { return m.theme }
func (m Model) Running() bool              { return m.running }
func (m Model) Last() scheduler.FrameStats { return m.last }
func (m Model) Canvas() *Canvas            { return m.canvas }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "n", "tab":
			m.switchTo(m.index + 1)
		case "p", "shift+tab":
			m.switchTo(m.index - 1)
		case "up", "k":
			m.adjustIntensity(1.1)
		case "down", "j":
			m.adjustIntensity(1 / 1.1)
		case "]":
			m.adjustComplexity(0.5)
		case "[":
			m.adjustComplexity(-0.5)
		case "t":
			m.setTheme(m.theme.Next())
		case "a":
			m.autoRotate = !m.autoRotate
		case "f":
			m.autoFit = !m.autoFit
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.autoFit = false
			m.camera.ZoomIn()
		case "-", "_":
			m.autoFit = false
			m.camera.ZoomOut()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the render clock by one frame.
func (m *Model) step() {
	stats, ok := m.sched.OnFrame(m.Elapsed())
	m.frame++
	m.last = stats
	if !ok {
		return
	}
	m.energy = append(m.energy, stats.Energy)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
	if m.autoRotate {
		m.camera.RotateY(0.4 / float64(m.fps))
	}
	if m.autoFit && stats.Extent > 0 {
		target := 1.2 / stats.Extent
		m.camera.Zoom, m.zoomVel = m.zoom.Update(m.camera.Zoom, m.zoomVel, target)
		if m.camera.Zoom <= 0 || math.IsNaN(m.camera.Zoom) {
			m.camera.Zoom, m.zoomVel = target, 0
		}
	}
}

func (m *Model) draw() {
	RenderScene(m.canvas, m.graph, m.camera, m.theme)
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-statsWidth-6)
	ch := max(8, h-4)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	m.frames = nil
	m.recording = false
}

func (m *Model) switchTo(i int) {
	n := len(m.ids)
	i = ((i % n) + n) % n
	a, err := m.sched.Registry().Activate(m.ids[i], m.params)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.index = i
	m.params = a.Params()
	m.energy = m.energy[:0]
	m.message = ""
}

func (m *Model) restart() {
	m.frame = 0
	m.switchTo(m.index)
	m.camera = NewCamera()
	m.zoomVel = 0
}

func (m *Model) adjustIntensity(factor float64) {
	v := m.params.Intensity * factor
	if v < 0.05 {
		v = 0.05
	}
	m.apply(vizcore.ParamPatch{Intensity: &v})
}

func (m *Model) adjustComplexity(delta float64) {
	v := math.Max(0, m.params.Complexity+delta)
	m.apply(vizcore.ParamPatch{Complexity: &v})
}

func (m *Model) apply(patch vizcore.ParamPatch) {
	a, err := m.sched.Registry().Update(patch)
	if err != nil {
		// a failed rebuild leaves nothing active; bring back the old scene
		if m.sched.Registry().Current() == nil {
			m.switchTo(m.index)
		}
		m.message = err.Error()
		return
	}
	m.params = a.Params()
	m.message = ""
}

func (m *Model) setTheme(th Theme) {
	m.theme = th
	m.st = newStyles(th)
	m.meters = newMeters(th, meterWidth)
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0, 64)
		m.message = "recording"
		return
	}
	m.recording = false
	if err := saveGIF(gifPath, m.frames, m.fps); err != nil {
		m.message = err.Error()
	} else {
		m.message = fmt.Sprintf("saved %s (%d frames)", gifPath, len(m.frames))
	}
	m.frames = nil
}

func (m *Model) captureFrame() {
	if len(m.frames) >= maxGIFFrames {
		return
	}
	m.frames = append(m.frames, m.canvas.Image(8, 16))
}

func saveGIF(path string, frames []*image.Paletted, fps int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	delay := max(2, 100/max(1, fps))
	anim := gif.GIF{LoopCount: 0}
	for _, f := range frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

func (m Model) View() string {
	canvasView := m.st.canvas.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(m.st.header.Render(GradientText(strings.ToUpper(m.Visualizer()), m.theme.Primary, m.theme.Secondary)) + "\n")

	status := m.st.running.Render(Spinner(m.frame) + " LIVE")
	if !m.running {
		status = m.st.paused.Render("PAUSED")
	}
	if m.last.Failed {
		status = m.st.failed.Render("FRAME SKIPPED")
	}
	if m.last.Beat {
		status += "  " + m.st.beat.Render(" BEAT ")
	}
	if m.recording {
		status += "  " + m.st.failed.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.Elapsed()))
	row("Frame", fmt.Sprintf("%d", m.last.Frame))
	row("Objects", fmt.Sprintf("%d", m.last.Objects))
	row("Extent", fmt.Sprintf("%.2f", m.last.Extent))
	row("Failures", fmt.Sprintf("%d", m.sched.Failures()))
	row("Theme", m.theme.Name)

	s.WriteString("\n")
	s.WriteString(m.st.label.Render("Bass") + m.meters.bass.ViewAs(levelOf(m.last.Bass)) + "\n")
	s.WriteString(m.st.label.Render("Mid") + m.meters.mid.ViewAs(levelOf(m.last.Mid)) + "\n")
	s.WriteString(m.st.label.Render("Treble") + m.meters.treble.ViewAs(levelOf(m.last.Treble)) + "\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	row("complexity", fmt.Sprintf("%.2f", m.params.Complexity))
	row("density", fmt.Sprintf("%.2f", m.params.PatternDensity))
	row("particles", fmt.Sprintf("%d", m.params.ParticleCount))
	s.WriteString(m.st.active.Render(fmt.Sprintf("%-12s%.2f", "intensity", m.params.Intensity)) + "\n")

	if m.message != "" {
		s.WriteString("\n" + m.st.paused.Render(m.message) + "\n")
	}
	s.WriteString(m.st.help.Render("N/P:Switch ↑↓:Intensity [ ]:Complexity\nSP:Pause T:Theme G:Record ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart visualizer       ║
║  N/Tab    - Next visualizer          ║
║  P        - Previous visualizer      ║
║  Up/K     - Intensity +10% (live)    ║
║  Down/J   - Intensity -10% (live)    ║
║  ] / [    - Complexity +/- (rebuild) ║
║  X Y Z    - Rotate camera            ║
║  + / -    - Zoom                     ║
║  A        - Toggle auto-rotate       ║
║  F        - Toggle auto-fit          ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live preview full screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
