package ebitenbackend

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/evergreen"
)

const hudRefresh = 0.25

// hud draws frame rate and scene state in the top-left corner. The text is
// rebuilt a few times per second, not every frame.
type hud struct {
	face       *text.GoTextFace
	lineHeight float64
	lines      string
	lastUpdate float64
}

func newHUD(size float64) (*hud, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("hud font: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &hud{face: face, lineHeight: m.HAscent + m.HDescent + m.HLineGap}, nil
}

func (h *hud) update(dt float64, s *evergreen.Scene) {
	h.lastUpdate += dt
	if h.lines != "" && h.lastUpdate < hudRefresh {
		return
	}
	h.lastUpdate = 0
	h.lines = hudText(s, ebiten.ActualFPS(), ebiten.ActualTPS())
}

func hudText(s *evergreen.Scene, fps, tps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS %.1f  TPS %.1f\n", fps, tps)
	fmt.Fprintf(&b, "blend %.2f -> %.0f\n", s.Blend(), s.BlendTarget())
	fmt.Fprintf(&b, "lottery %s", s.LotteryStatus())
	if w := s.WinnerIndex(); w >= 0 {
		fmt.Fprintf(&b, "  winner #%d", w+1)
	}
	b.WriteByte('\n')
	gesture := "off"
	if s.GestureEnabled() {
		gesture = "searching"
		if s.HandDetected() {
			gesture = "tracking"
		}
	}
	fmt.Fprintf(&b, "gesture %s", gesture)
	return b.String()
}

func (h *hud) draw(screen *ebiten.Image) {
	if h.lines == "" {
		return
	}
	w, th := text.Measure(h.lines, h.face, h.lineHeight)
	vector.DrawFilledRect(screen, 4, 4, float32(w+12), float32(th+8), color.RGBA{0, 0, 0, 128}, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(10, 8)
	op.ColorScale.Scale(1, 0.97, 0.85, 1)
	op.LineSpacing = h.lineHeight
	text.Draw(screen, h.lines, h.face, op)
}
