// clipview - terminal viewer for the clip-and-interpolate pipeline.
// Renders a glTF model (or a cube) through a screen outline, either live in
// the terminal or into a PNG snapshot.
//
// Controls:
//
//	Mouse drag  - Orbit
//	Scroll      - Zoom in/out
//	W/S/A/D     - Orbit pitch and yaw
//	Space       - Random spin
//	R           - Reset view
//	T           - Toggle texture
//	X           - Toggle polygon edges
//	B           - Toggle bounding box
//	O           - Toggle outline
//	M           - Toggle mirror
//	?           - Toggle status line
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/softclip/pkg/models"
	"github.com/taigrr/softclip/pkg/render"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML scene file")
	texturePath  = flag.String("texture", "", "Path to texture image (PNG/JPG)")
	targetFPS    = flag.Int("fps", 60, "Target FPS")
	snapshotPath = flag.String("snapshot", "", "Render to this PNG instead of the terminal")
	frames       = flag.Int("frames", 1, "Frames to advance before the snapshot")
	snapWidth    = flag.Int("width", 320, "Snapshot width in pixels")
	snapHeight   = flag.Int("height", 180, "Snapshot height in pixels")
	verbose      = flag.Bool("v", false, "Log draw setup to stderr")
)

const (
	minDistance = 1.5
	maxDistance = 20.0
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "clipview - render a model through a screen outline\n\n")
		fmt.Fprintf(os.Stderr, "Usage: clipview [options] [model.glb|model.gltf]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit\n")
		fmt.Fprintf(os.Stderr, "  Scroll, +/- - Zoom\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  T/X/O/M     - Toggle texture, edges, outline, mirror\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle bounding box\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle status line\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if *verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadModel loads a glTF model, or builds a cube when path is empty.
func loadModel(path string) (*models.Mesh, error) {
	if path == "" {
		return models.NewCube(2), nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		mesh, err := models.LoadGLB(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return mesh, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}
}

func run(modelPath string) error {
	scene := DefaultScene()
	if *configPath != "" {
		var err error
		if scene, err = LoadScene(*configPath); err != nil {
			return err
		}
	}

	mesh, err := loadModel(modelPath)
	if err != nil {
		return err
	}
	normalizeMesh(mesh)

	var texture *render.Texture
	if *texturePath != "" {
		texture, err = render.LoadTexture(*texturePath)
		if err != nil {
			return err
		}
	} else {
		texture = render.NewCheckerTexture(64, 64, 8, render.RGB(220, 220, 220), render.RGB(90, 110, 160))
	}

	if *snapshotPath != "" {
		return snapshot(scene, mesh, texture)
	}
	return interactive(scene, mesh, texture)
}

// snapshot renders frames frames offscreen and saves the last one.
func snapshot(scene Scene, mesh *models.Mesh, texture *render.Texture) error {
	fb := render.NewFramebuffer(*snapWidth, *snapHeight)
	v, err := newViewer(scene, mesh, texture, fb, *targetFPS)
	if err != nil {
		return err
	}
	for range max(*frames, 1) {
		if err := v.frame(); err != nil {
			return err
		}
	}
	if err := fb.SavePNG(*snapshotPath); err != nil {
		return err
	}
	fmt.Printf("Saved %s:%s\n", *snapshotPath, v.status(0))
	return nil
}

// drawStatus writes text on one terminal row, cut at width.
func drawStatus(scr uv.Screen, row, width int, text string) {
	col := 0
	for _, r := range text {
		if col >= width {
			return
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: render.ColorWhite, Bg: render.ColorBlack},
		})
		col++
	}
}

func interactive(scene Scene, mesh *models.Mesh, texture *render.Texture) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	fb := render.NewFramebuffer(width, height*2)
	v, err := newViewer(scene, mesh, texture, fb, *targetFPS)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		mouseDown              bool
		lastMouseX, lastMouseY int
		showStatus             = true
		fps                    float64
		fpsFrames              int
		fpsTime                = time.Now()
	)

	events := term.Events()
	ticker := time.NewTicker(time.Second / time.Duration(max(*targetFPS, 1)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb = render.NewFramebuffer(width, height*2)
				if err := v.resize(fb); err != nil {
					return err
				}

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					return nil
				case ev.MatchString("w", "up"):
					v.orbit.ApplyImpulse(0, 0.05)
				case ev.MatchString("s", "down"):
					v.orbit.ApplyImpulse(0, -0.05)
				case ev.MatchString("a", "left"):
					v.orbit.ApplyImpulse(-0.05, 0)
				case ev.MatchString("d", "right"):
					v.orbit.ApplyImpulse(0.05, 0)
				case ev.MatchString("space"):
					v.orbit.ApplyImpulse((rand.Float64()-0.5)*0.6, (rand.Float64()-0.5)*0.3)
				case ev.MatchString("r"):
					v.orbit.Reset(scene.Camera.Distance)
				case ev.MatchString("+", "="):
					v.orbit.Zoom(-0.5, minDistance, maxDistance)
				case ev.MatchString("-", "_"):
					v.orbit.Zoom(0.5, minDistance, maxDistance)
				case ev.MatchString("t"):
					v.toggleTexture()
				case ev.MatchString("x"):
					v.toggleEdges()
				case ev.MatchString("b"):
					v.toggleBounds()
				case ev.MatchString("o"):
					v.toggleOutline()
				case ev.MatchString("m"):
					v.toggleMirror()
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					showStatus = !showStatus
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					v.orbit.ApplyImpulse(float64(dx)*0.01, float64(dy)*0.01)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					v.orbit.Zoom(-0.5, minDistance, maxDistance)
				case uv.MouseWheelDown:
					v.orbit.Zoom(0.5, minDistance, maxDistance)
				}
			}

		case <-ticker.C:
			if err := v.frame(); err != nil {
				return err
			}
			area := uv.Rect(0, 0, width, height)
			fb.Draw(term, area)
			if showStatus {
				drawStatus(term, 0, width, v.status(fps))
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}

			fpsFrames++
			if elapsed := time.Since(fpsTime); elapsed >= time.Second {
				fps = float64(fpsFrames) / elapsed.Seconds()
				fpsFrames = 0
				fpsTime = time.Now()
			}
		}
	}
}
