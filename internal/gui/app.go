package gui

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/charmbracelet/harmonica"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColBeat    = rl.NewColor(255, 200, 60, 255)

	bandColors = [3]rl.Color{
		rl.NewColor(255, 90, 90, 255),
		rl.NewColor(90, 255, 140, 255),
		rl.NewColor(90, 160, 255, 255),
	}
)

const (
	screenW  = 1280
	screenH  = 720
	fontPath = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

// Options configures a window session.
type Options struct {
	Visualizer string
	Params     vizcore.Params
	FPS        int
	Wires      bool
}

// App hosts the active visualizer in a raylib window. The registry behind
// the scheduler must draw into Graph.
type App struct {
	Sched  *scheduler.Scheduler
	Graph  *scene.Memory
	Log    *slog.Logger
	Camera rl.Camera3D
	Font   rl.Font

	ids     []string
	index   int
	params  vizcore.Params
	fps     int
	frame   int
	running bool
	wires   bool
	orbit   float64
	dist    float64
	distVel float64
	spring  harmonica.Spring
	last    scheduler.FrameStats
	message string
}

func initWindow(fps int) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(screenW, screenH, "sonoform")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	if !rl.FileExists(fontPath) {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp activates opts.Visualizer. It must run after the window exists.
func NewApp(s *scheduler.Scheduler, g *scene.Memory, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	reg := s.Registry()
	act, err := reg.Activate(opts.Visualizer, opts.Params)
	if err != nil {
		return nil, err
	}
	a := &App{
		Sched: s,
		Graph: g,
		Log:   log,
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 8, 30),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		Font:    loadFont(),
		ids:     reg.List(),
		params:  act.Params(),
		fps:     opts.FPS,
		running: true,
		wires:   opts.Wires,
		dist:    30,
		spring:  harmonica.NewSpring(harmonica.FPS(opts.FPS), 3.0, 1.0),
	}
	for i, id := range a.ids {
		if id == opts.Visualizer {
			a.index = i
		}
	}
	return a, nil
}

// Run opens the window and blocks until it is closed.
func Run(s *scheduler.Scheduler, g *scene.Memory, log *slog.Logger, opts Options) error {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	initWindow(fps)
	defer rl.CloseWindow()
	app, err := NewApp(s, g, log, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Registry().DeactivateCurrent(); err != nil {
			app.Log.Warn("deactivate on close", "err", err)
		}
	}()
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) elapsed() float64 { return float64(a.frame) / float64(a.fps) }

func (a *App) Update() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.running = !a.running
	case rl.IsKeyPressed(rl.KeyN), rl.IsKeyPressed(rl.KeyTab):
		a.switchTo(a.index + 1)
	case rl.IsKeyPressed(rl.KeyP):
		a.switchTo(a.index - 1)
	case rl.IsKeyPressed(rl.KeyUp):
		v := a.params.Intensity * 1.1
		a.apply(vizcore.ParamPatch{Intensity: &v})
	case rl.IsKeyPressed(rl.KeyDown):
		v := math.Max(0.05, a.params.Intensity/1.1)
		a.apply(vizcore.ParamPatch{Intensity: &v})
	case rl.IsKeyPressed(rl.KeyRightBracket):
		v := a.params.Complexity + 0.5
		a.apply(vizcore.ParamPatch{Complexity: &v})
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		v := math.Max(0, a.params.Complexity-0.5)
		a.apply(vizcore.ParamPatch{Complexity: &v})
	case rl.IsKeyPressed(rl.KeyW):
		a.wires = !a.wires
	case rl.IsKeyPressed(rl.KeyR):
		a.frame = 0
		a.switchTo(a.index)
	}

	if a.running {
		a.last, _ = a.Sched.OnFrame(a.elapsed())
		a.frame++
		a.orbit += 0.2 / float64(a.fps)
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		a.orbit -= float64(rl.GetMouseDelta().X) * 0.005
	}
	target := math.Max(8, a.last.Extent*2.4)
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		target = math.Max(2, a.dist-float64(wheel)*3)
	}
	a.dist, a.distVel = a.spring.Update(a.dist, a.distVel, target)
	a.Camera.Position = rl.NewVector3(
		float32(math.Sin(a.orbit)*a.dist),
		float32(a.dist*0.3),
		float32(math.Cos(a.orbit)*a.dist),
	)
}

func (a *App) switchTo(i int) {
	n := len(a.ids)
	i = ((i % n) + n) % n
	act, err := a.Sched.Registry().Activate(a.ids[i], a.params)
	if err != nil {
		a.message = err.Error()
		a.Log.Warn("switch visualizer", "visualizer", a.ids[i], "err", err)
		return
	}
	a.index, a.params, a.message = i, act.Params(), ""
}

func (a *App) apply(p vizcore.ParamPatch) {
	act, err := a.Sched.Registry().Update(p)
	if err != nil {
		a.Log.Warn("update parameters", "err", err)
		if a.Sched.Registry().Current() == nil {
			a.switchTo(a.index)
		}
		a.message = err.Error()
		return
	}
	a.params, a.message = act.Params(), ""
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	a.drawGrid(20, 2)
	drawScene(a.Graph, a.wires)
	rl.EndMode3D()

	a.DrawHUD()
}

func (a *App) DrawHUD() {
	a.drawText("sonoform", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.ids[a.index]), 170, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.running {
		status, col = "PAUSED", ColTextDim
	}
	if a.last.Beat {
		status, col = "BEAT", ColBeat
	}
	a.drawText(status, screenW-130, 30, 16, col)

	a.drawText(fmt.Sprintf("objects %d  extent %.1f  failures %d", a.last.Objects, a.last.Extent, a.Sched.Failures()), 30, 64, 14, ColText)
	a.drawText(fmt.Sprintf("complexity %.2f  density %.2f  particles %d  intensity %.2f",
		a.params.Complexity, a.params.PatternDensity, a.params.ParticleCount, a.params.Intensity), 30, 84, 14, ColAccent)
	if a.message != "" {
		a.drawText(a.message, 30, 104, 14, rl.Red)
	}

	drawBands(30, screenH-140, [3]float64{a.last.Bass, a.last.Mid, a.last.Treble}, bandColors)
	a.drawText("[SPACE] PAUSE  [N/P] SWITCH  [UP/DN] INTENSITY  [ ] COMPLEXITY  [W] WIRES  [Q] QUIT", 360, screenH-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, screenH-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawGrid(slices int, spacing float32) {
	half := float32(slices) * spacing / 2
	y := float32(-0.01)
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, y, -half), rl.NewVector3(pos, y, half), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-half, y, pos), rl.NewVector3(half, y, pos), ColGrid)
	}
}
