package evergreen

// InjectGesture queues a synthetic classifier sample. Queued samples are
// consumed one per Update, ahead of the live gesture slot.
func (s *Scene) InjectGesture(g GestureSample) {
	s.injectQueue = append(s.injectQueue, g)
}

// InjectPose queues a sample of the named pose at cursor position (x, y).
// Poses are "open", "fist", "pinch" and "thumbup"; "lost" queues a sample
// with no hand, and any other name a detected hand in no particular pose.
func (s *Scene) InjectPose(pose string, x, y float64) {
	g := GestureSample{Position: Vec2{X: x, Y: y}, IsDetected: true}
	switch pose {
	case "open":
		g.IsOpen = true
	case "fist":
		g.IsFist = true
	case "pinch":
		g.IsPinch = true
	case "thumbup":
		g.IsThumbUp = true
	case "lost":
		g = GestureSample{}
	}
	s.InjectGesture(g)
}

// InjectHold queues the same pose for the given number of frames, the way
// a classifier keeps reporting a held hand.
func (s *Scene) InjectHold(pose string, x, y float64, frames int) {
	for range max(frames, 1) {
		s.InjectPose(pose, x, y)
	}
}

// InjectSweep queues an open hand moving linearly from (fromX, fromY) to
// (toX, toY) over frames samples. Minimum frames is 2.
func (s *Scene) InjectSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := range frames {
		t := float64(i) / float64(frames-1)
		s.InjectPose("none", lerp(fromX, toX, t), lerp(fromY, toY, t))
	}
}

// processInjectedGesture pops one queued sample and applies it. Returns true
// if a sample was consumed, in which case the live slot is left for the
// next frame.
func (s *Scene) processInjectedGesture() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	g := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
	s.OnGestureSample(g)
	return true
}
