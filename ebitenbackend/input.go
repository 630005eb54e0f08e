package ebitenbackend

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/evergreen"
)

// mouseButtons is the mouse state the gesture proxy reads each tick.
type mouseButtons struct {
	left, right bool
	// pinch is true only on the tick the middle button went down.
	pinch bool
}

// mouseSample turns a cursor position on a w×h window into a gesture
// sample: left held is a fist, right held an open palm, a middle click a
// pinch. A cursor outside the window is a lost hand.
func mouseSample(x, y, w, h int, b mouseButtons) evergreen.GestureSample {
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x >= w || y >= h {
		return evergreen.GestureSample{}
	}
	return evergreen.GestureSample{
		IsFist:  b.left,
		IsOpen:  b.right && !b.left,
		IsPinch: b.pinch,
		Position: evergreen.Vec2{
			X: float64(x)/float64(w)*2 - 1,
			Y: -(float64(y)/float64(h)*2 - 1),
		},
		IsDetected: true,
	}
}

func readMouse() mouseButtons {
	return mouseButtons{
		left:  ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		right: ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		pinch: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle),
	}
}

// keyAction is a keyboard shortcut.
type keyAction uint8

const (
	keyNone keyAction = iota
	keyToggleExplode
	keyLottery
	keyFlip
	keyExit
	keyToggleGesture
	keyToggleHUD
	keyToggleDebug
	keyScreenshot
	keyQuit
)

var keyBindings = []struct {
	key    ebiten.Key
	action keyAction
}{
	{ebiten.KeySpace, keyToggleExplode},
	{ebiten.KeyEnter, keyLottery},
	{ebiten.KeyF, keyFlip},
	{ebiten.KeyEscape, keyExit},
	{ebiten.KeyG, keyToggleGesture},
	{ebiten.KeyH, keyToggleHUD},
	{ebiten.KeyD, keyToggleDebug},
	{ebiten.KeyF12, keyScreenshot},
	{ebiten.KeyQ, keyQuit},
}

func readKeys(buf []keyAction) []keyAction {
	buf = buf[:0]
	for _, kb := range keyBindings {
		if inpututil.IsKeyJustPressed(kb.key) {
			buf = append(buf, kb.action)
		}
	}
	return buf
}

// applyKey runs one shortcut against the scene. Enter drives the whole
// lottery: start, stop, then next round. It reports whether the game
// should quit.
func (g *Game) applyKey(a keyAction) bool {
	s := g.scene
	switch a {
	case keyToggleExplode:
		s.ToggleExplode()
	case keyLottery:
		if s.LotteryStatus() == evergreen.LotteryRunning {
			s.StopLotteryRound()
		} else {
			s.StartLotteryRound()
		}
	case keyFlip:
		s.FlipWinnerCard()
	case keyExit:
		s.ExitLottery()
	case keyToggleGesture:
		s.SetGestureEnabled(!s.GestureEnabled())
	case keyToggleHUD:
		g.showHUD = !g.showHUD
	case keyToggleDebug:
		g.debug = !g.debug
		s.SetDebugMode(g.debug)
	case keyScreenshot:
		s.Screenshot("manual")
	case keyQuit:
		return true
	}
	return false
}
