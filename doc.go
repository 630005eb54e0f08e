// Package evergreen is a particle choreography engine for an interactive
// 3D Christmas tree.
//
// Thousands of ornaments (foliage points, baubles, a spiral garland, photo
// cards and a topper star) morph between a dispersed "chaos" cloud and the
// assembled tree under a single blend factor. A lottery mini-game shuffles a
// highlight over the photo cards, flies the winner to the camera and lets it
// be flipped to reveal a prize image. Hand gestures, or anything that can
// produce a [GestureSample], drive the blend and the flip.
//
// The package is headless: it computes transforms and materials and hands
// them to a [Backend]. The ebitenbackend package draws with [Ebitengine];
// tests use fakes.
//
// # Quick start
//
//	cfg := evergreen.DefaultConfig()
//	scene, err := evergreen.NewScene(cfg)
//	if err != nil {
//		return err
//	}
//	scene.AddPortraits("photos/a.jpg", "photos/b.jpg")
//
//	// once per frame:
//	scene.Update(1.0 / 60)
//	scene.Render(backend)
//
// # Controls
//
// [Scene.SetBlendTarget] and [Scene.ToggleExplode] move the tree between
// chaos (0) and formed (1). The lottery runs IDLE → RUNNING → WINNER ⇄
// FLIPPED and back to IDLE through [Scene.StartLotteryRound],
// [Scene.StopLotteryRound], [Scene.FlipWinnerCard] and [Scene.ExitLottery].
// Invalid calls are no-ops.
//
// Gesture samples are applied with [Scene.OnGestureSample] on the frame
// goroutine, or stored from any goroutine into [Scene.GestureSlot], which
// Update drains once per frame. While IDLE a fist forms the tree and an open
// palm disperses it; during a showcase a pinch flips the winner card,
// debounced.
//
// # Timing
//
// All state lives on the frame goroutine. The lottery shuffle runs on a
// [FrameScheduler] advanced by Update, so a cancelled shuffle can never fire
// after a transition.
//
// [Ebitengine]: https://ebitengine.org
package evergreen
