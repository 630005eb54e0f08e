// Package ebitenbackend draws an evergreen scene with Ebitengine and feeds
// it mouse and keyboard input.
//
// The mouse stands in for a hand-pose classifier: hold the left button for
// a fist, the right button for an open palm, and click the middle button to
// pinch. Keys: Space toggles the tree, Enter starts, stops and restarts the
// lottery, F flips the winner, Esc exits the lottery, G toggles gesture
// control, H the HUD, D debug logging, F12 saves a screenshot and Q quits.
package ebitenbackend

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/evergreen"
	"github.com/phanxgames/evergreen/internal/log"
)

// RunConfig holds window and backend options.
type RunConfig struct {
	Title         string
	Width, Height int
	// Background is the clear color.
	Background evergreen.Color
	// MouseProxy feeds mouse-driven gesture samples into the scene. Turn it
	// off when a real classifier writes the gesture slot.
	MouseProxy    bool
	ShowHUD       bool
	ScreenshotDir string
}

// DefaultRunConfig returns a 1280×800 window with the mouse proxy and HUD on.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:         "Evergreen",
		Width:         1280,
		Height:        800,
		Background:    evergreen.Color{R: 0.004, G: 0.04, B: 0.02, A: 1},
		MouseProxy:    true,
		ShowHUD:       true,
		ScreenshotDir: "screenshots",
	}
}

// Game adapts a Scene to ebiten.Game.
type Game struct {
	scene    *evergreen.Scene
	renderer *Renderer
	hud      *hud
	cfg      RunConfig
	bg       color.Color

	showHUD bool
	debug   bool
	keys    []keyAction
	quit    bool
}

// NewGame creates a game around scene.
func NewGame(scene *evergreen.Scene, cfg RunConfig) (*Game, error) {
	h, err := newHUD(14)
	if err != nil {
		return nil, err
	}
	bg := cfg.Background
	return &Game{
		scene:    scene,
		renderer: NewRenderer(),
		hud:      h,
		cfg:      cfg,
		bg: color.NRGBA{
			R: uint8(bg.R * 255), G: uint8(bg.G * 255), B: uint8(bg.B * 255), A: uint8(bg.A * 255),
		},
		showHUD: cfg.ShowHUD,
		debug:   scene.Config().Debug,
	}, nil
}

// Update handles input and advances the scene one tick.
func (g *Game) Update() error {
	g.keys = readKeys(g.keys)
	for _, k := range g.keys {
		if g.applyKey(k) {
			g.quit = true
		}
	}
	if g.quit {
		return ebiten.Termination
	}

	if g.cfg.MouseProxy {
		x, y := ebiten.CursorPosition()
		w, h := ebiten.WindowSize()
		g.scene.GestureSlot().Store(mouseSample(x, y, w, h, readMouse()))
	}

	dt := 1.0 / float64(ebiten.TPS())
	g.scene.Update(dt)
	if g.showHUD {
		g.hud.update(dt, g.scene)
	}
	return nil
}

// Draw renders the scene, the HUD and any queued screenshots.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.bg)
	g.renderer.SetTarget(screen)
	g.scene.Render(g.renderer)
	if g.showHUD {
		g.hud.draw(screen)
	}
	flushScreenshots(screen, g.cfg.ScreenshotDir, g.scene.TakeScreenshots())
}

// Layout uses the window size as the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens a window and runs scene until the window closes or Q is pressed.
func Run(scene *evergreen.Scene, cfg RunConfig) error {
	g, err := NewGame(scene, cfg)
	if err != nil {
		return err
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	log.Info("window open", "width", cfg.Width, "height", cfg.Height, "mouse_proxy", cfg.MouseProxy)
	return ebiten.RunGame(g)
}
