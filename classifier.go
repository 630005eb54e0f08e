package evergreen

import "math"

// Hand landmark indices, following the 21-point hand model.
const (
	LandmarkWrist     = 0
	LandmarkThumbIP   = 3
	LandmarkThumbTip  = 4
	LandmarkIndexTip  = 8
	LandmarkMiddleMCP = 9
	LandmarkMiddleTip = 12
	LandmarkRingTip   = 16
	LandmarkPinkyTip  = 20
	NumLandmarks      = 21
)

// Classifier thresholds, in multiples of the wrist to middle-knuckle span.
const (
	pinchThumbIndex = 0.45
	pinchMiddleOpen = 1.8
	fistReach       = 1.4
	openReach       = 2.2
	thumbUpReach    = 1.6
)

// HandLandmarks are pixel coordinates of one detected hand, y down.
type HandLandmarks [NumLandmarks]Vec2

// ClassifyLandmarks turns raw landmarks from a frameW×frameH camera image
// into a detected GestureSample. The position is the wrist, mirrored
// horizontally so the cursor moves with the user.
func ClassifyLandmarks(lm HandLandmarks, frameW, frameH float64) GestureSample {
	wrist := lm[LandmarkWrist]
	palm := dist2(wrist, lm[LandmarkMiddleMCP])

	pinch := dist2(lm[LandmarkThumbTip], lm[LandmarkIndexTip]) < palm*pinchThumbIndex &&
		dist2(lm[LandmarkMiddleTip], wrist) > palm*pinchMiddleOpen

	reach := (dist2(lm[LandmarkIndexTip], wrist) +
		dist2(lm[LandmarkMiddleTip], wrist) +
		dist2(lm[LandmarkRingTip], wrist) +
		dist2(lm[LandmarkPinkyTip], wrist)) / 4

	s := GestureSample{
		IsPinch:    pinch,
		IsFist:     reach < palm*fistReach && !pinch,
		IsOpen:     reach > palm*openReach,
		IsThumbUp:  lm[LandmarkThumbTip].Y < lm[LandmarkThumbIP].Y && reach < palm*thumbUpReach,
		IsDetected: true,
	}
	if frameW > 0 && frameH > 0 {
		s.Position = Vec2{
			X: -(wrist.X/frameW*2 - 1),
			Y: -(wrist.Y/frameH*2 - 1),
		}
	}
	return s
}

func dist2(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
