package viz

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/sonoform/internal/audio"
	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
)

func TestCanvasSetAndUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	if w != 8 || h != 8 {
		t.Fatalf("dots = %dx%d, want 8x8", w, h)
	}
	c.Set(3, 5)
	if !c.Lit(3, 5) {
		t.Fatal("dot not set")
	}
	if c.Grid[1][1] == brailleBase {
		t.Fatal("cell unchanged")
	}
	c.Unset(3, 5)
	if c.Lit(3, 5) || c.Grid[1][1] != brailleBase {
		t.Fatal("dot not cleared")
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(100, 100)
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBase {
				t.Fatal("out of range write landed")
			}
		}
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := 0; i < 20; i++ {
		if !c.Lit(i, i) {
			t.Fatalf("diagonal dot %d missing", i)
		}
	}
	// endpoints far off screen terminate
	c.DrawLine(-1_000_000, 0, 1_000_000, 0)
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 || len([]rune(lines[0])) != 3 {
		t.Fatalf("unexpected layout %q", c.String())
	}
}

func TestProjectCentre(t *testing.T) {
	cam := NewCamera()
	cam.RotX = 0
	x, y, _, ok := cam.Project(scene.Vec3{}, 100, 80)
	if !ok || x != 50 || y != 40 {
		t.Fatalf("origin -> (%d,%d,%v), want (50,40,true)", x, y, ok)
	}
	_, _, _, ok = cam.Project(scene.V(math.NaN(), 0, 0), 100, 80)
	if ok {
		t.Fatal("NaN point reported visible")
	}
	_, _, _, ok = cam.Project(scene.V(0, 0, 1000), 100, 80)
	if ok {
		t.Fatal("point behind camera reported visible")
	}
}

func TestProjectUpIsUp(t *testing.T) {
	cam := NewCamera()
	cam.RotX = 0
	_, y, _, _ := cam.Project(scene.V(0, 1, 0), 100, 100)
	if y >= 50 {
		t.Fatalf("positive Y projected to row %d, want above centre", y)
	}
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera()
	cam.Fit(10)
	if math.Abs(cam.Zoom-0.12) > 1e-9 {
		t.Fatalf("zoom = %v", cam.Zoom)
	}
	cam.Fit(math.Inf(1))
	cam.Fit(0)
	if math.Abs(cam.Zoom-0.12) > 1e-9 {
		t.Fatal("degenerate extent changed zoom")
	}
}

func TestWireframeFromNodes(t *testing.T) {
	visible := scene.Appearance{Color: scene.RGB{R: 1}, Opacity: 1}
	nodes := []scene.Node{
		{Primitive: scene.Primitive{Kind: scene.Line, Points: []scene.Vec3{{}, {X: 1}, {X: 2}}}, Transform: scene.Identity(), Appearance: visible},
		{Primitive: scene.Primitive{Kind: scene.Box, Size: scene.One}, Transform: scene.Identity(), Appearance: visible},
		{Primitive: scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.5, 0, 0)}, Transform: scene.Identity(), Appearance: visible},
		{Primitive: scene.Primitive{Kind: scene.Points, Points: []scene.Vec3{{}, {Y: 1}}}, Transform: scene.Identity(), Appearance: visible},
		{Primitive: scene.Primitive{Kind: scene.Sphere, Size: scene.One}, Transform: scene.Identity()},
		{Primitive: scene.Primitive{Kind: scene.Group}, Transform: scene.Identity(), Appearance: visible},
		{Primitive: scene.Primitive{Kind: scene.Cylinder, Size: scene.V(0.1, 1, 0.1)}, Transform: scene.Identity(), Appearance: visible},
	}
	w := NewWireframe()
	w.AddNodes(nodes)
	// 2 line segments + 12 cube edges + 3 cross arms + 2 points + 1 axis
	if len(w.Edges) != 20 {
		t.Fatalf("edges = %d, want 20", len(w.Edges))
	}
}

func TestPlacePoint(t *testing.T) {
	tr := scene.Transform{Position: scene.V(1, 2, 3), Rotation: scene.V(0, math.Pi/2, 0), Scale: scene.V(2, 2, 2)}
	got := placePoint(scene.V(1, 0, 0), tr)
	want := scene.V(1, 2, 1)
	if got.Sub(want).Length() > 1e-9 {
		t.Fatalf("placePoint = %+v, want %+v", got, want)
	}
}

func TestRenderSceneDrawsMemory(t *testing.T) {
	g := scene.NewMemory()
	h, err := g.AddObject(scene.Primitive{Kind: scene.Sphere, Size: scene.One})
	if err != nil {
		t.Fatal(err)
	}
	g.SetTransform(h, scene.Identity())
	g.SetAppearance(h, scene.Appearance{Color: scene.RGB{G: 1}, Opacity: 1})

	c := NewCanvas(40, 20)
	cam := NewCamera()
	cam.Fit(1)
	if n := RenderScene(c, g, cam, ThemeDefault); n == 0 {
		t.Fatal("nothing rendered")
	}
	if !c.Lit(40, 40) {
		t.Fatal("centre dot not lit")
	}
	if !strings.Contains(c.Render(), "⠀") {
		t.Fatal("blank cells missing from render")
	}
	img := c.Image(4, 8)
	if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 160 {
		t.Fatalf("image bounds %v", img.Bounds())
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "default" {
		t.Fatal("unknown theme should fall back to default")
	}
	names := ThemeNames()
	if len(names) != 5 {
		t.Fatalf("themes = %v", names)
	}
	th := ThemeDefault
	for range names {
		th = th.Next()
	}
	if th.Name != "default" {
		t.Fatalf("Next did not wrap, got %s", th.Name)
	}

	red := scene.RGB{R: 1}
	if ThemeDefault.Tint(red) != red {
		t.Fatal("default theme must not tint")
	}
	got := ThemeMatrix.Tint(red)
	if got.G <= red.G {
		t.Fatalf("matrix tint did not pull towards green: %+v", got)
	}
}

func TestSparkline(t *testing.T) {
	if s := Sparkline(nil, 4); s != "────" {
		t.Fatalf("empty sparkline %q", s)
	}
	s := []rune(Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 5))
	if len(s) != 5 || s[0] != '▁' || s[4] != '█' {
		t.Fatalf("sparkline %q", string(s))
	}
}

func TestLevelOf(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{-1, 0}, {math.NaN(), 0}, {0.25, 0.5}, {4, 1},
	} {
		if got := levelOf(tc.in); got != tc.want {
			t.Errorf("levelOf(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := scene.NewMemory()
	reg := registry.Default(g, log)
	s := scheduler.New(reg, audio.NewSynth(120, 32), log)
	m, err := NewModel(s, g, Options{Visualizer: "ringPulse", Params: vizcore.DefaultParams(), FPS: 30, Width: 40, Height: 16})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// pickyModule builds a single box and refuses complexities above one.
type pickyModule struct{}

func (pickyModule) Name() string        { return "picky" }
func (pickyModule) Description() string { return "one box, fails above complexity 1" }

func (pickyModule) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	if p.Complexity > 1 {
		return nil, errors.New("too complex")
	}
	if _, err := b.Add(scene.Primitive{Kind: scene.Box, Size: scene.One}); err != nil {
		return nil, err
	}
	return pickyInstance{}, nil
}

type pickyInstance struct{}

func (pickyInstance) Animate(vizcore.AudioFrame, float64, vizcore.Params) {}
func (pickyInstance) Len() int                                            { return 1 }

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(m Model) Model {
	next, _ := m.Update(TickMsg{})
	return next.(Model)
}

func TestModelTicksScheduler(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 10; i++ {
		m = tick(m)
	}
	if m.Last().Frame != 10 {
		t.Fatalf("frame = %d, want 10", m.Last().Frame)
	}
	if m.Elapsed() != 10.0/30 {
		t.Fatalf("elapsed = %v", m.Elapsed())
	}
	if m.Last().Objects == 0 {
		t.Fatal("no objects reported")
	}
	if !strings.Contains(m.View(), "RINGPULSE") && !strings.Contains(m.View(), "Objects") {
		t.Fatal("view missing stats")
	}

	m = press(m, " ")
	frame := m.Last().Frame
	m = tick(m)
	if m.Running() || m.Last().Frame != frame {
		t.Fatal("paused model advanced")
	}
}

func TestModelSwitchesVisualizer(t *testing.T) {
	m := newTestModel(t)
	before := m.Visualizer()
	m = press(m, "n")
	if m.Visualizer() == before {
		t.Fatal("visualizer unchanged")
	}
	if m.sched.Registry().Current().ID() != m.Visualizer() {
		t.Fatal("registry out of sync with model")
	}
	m = press(m, "p")
	if m.Visualizer() != before {
		t.Fatalf("back to %s, want %s", m.Visualizer(), before)
	}
}

func TestModelIntensityIsLive(t *testing.T) {
	m := newTestModel(t)
	a := m.sched.Registry().Current()
	m = press(m, "k")
	if m.Params().Intensity <= 1 {
		t.Fatalf("intensity = %v", m.Params().Intensity)
	}
	if m.sched.Registry().Current() != a {
		t.Fatal("intensity change rebuilt the scene")
	}
	m = press(m, "]")
	if m.sched.Registry().Current() == a {
		t.Fatal("complexity change did not rebuild")
	}
	if m.Params().Complexity != 1.5 {
		t.Fatalf("complexity = %v", m.Params().Complexity)
	}
}

func TestModelThemeCycle(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "t")
	if m.Theme().Name != "ocean" {
		t.Fatalf("theme = %s", m.Theme().Name)
	}
}

func TestAppStartsLive(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := scene.NewMemory()
	s := scheduler.New(registry.Default(g, log), audio.NewSynth(120, 32), log)
	a := NewApp(s, g, Options{Params: vizcore.DefaultParams(), FPS: 30})
	if !strings.Contains(a.View(), "crystalLattice") {
		t.Fatal("menu missing catalogue")
	}
	next, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = next.(App)
	if a.state != stateLive {
		t.Fatalf("state = %d, err %q", a.state, a.err)
	}
	if s.Registry().Current() == nil || s.Registry().Current().ID() != a.ids[1] {
		t.Fatal("selected visualizer not active")
	}
	next, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = next.(App)
	if a.state != stateMenu || s.Registry().Current() != nil || g.Len() != 0 {
		t.Fatal("esc did not tear down the live scene")
	}
}

func TestModelRecoversFromFailedRebuild(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := scene.NewMemory()
	reg := registry.New(g, log)
	if err := reg.Register("picky", pickyModule{}); err != nil {
		t.Fatal(err)
	}
	s := scheduler.New(reg, audio.NewSynth(120, 32), log)
	m, err := NewModel(s, g, Options{Visualizer: "picky", Params: vizcore.DefaultParams(), FPS: 30, Width: 40, Height: 16})
	if err != nil {
		t.Fatal(err)
	}

	m = press(m, "]")
	cur := reg.Current()
	if cur == nil {
		t.Fatal("nothing active after a failed rebuild")
	}
	if cur.Params().Complexity != 1 || m.Params().Complexity != 1 {
		t.Fatalf("complexity = %v (model %v), want 1", cur.Params().Complexity, m.Params().Complexity)
	}
	if g.Len() != 1 {
		t.Fatalf("scene holds %d objects, want 1", g.Len())
	}
	if !strings.Contains(m.message, "too complex") {
		t.Fatalf("message = %q", m.message)
	}
}
