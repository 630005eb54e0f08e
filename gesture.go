package evergreen

import (
	"math"
	"sync"
	"time"
)

// DefaultFlipDebounce is the minimum interval between gesture flips.
const DefaultFlipDebounce = 800 * time.Millisecond

// neverFlipped is the sinceLastFlip value before the first flip.
const neverFlipped = time.Duration(math.MaxInt64)

// GestureSample is one classifier reading. Position is in normalized
// device coordinates, x right and y up, both in [-1, 1].
type GestureSample struct {
	IsOpen     bool `json:"isOpen"`
	IsFist     bool `json:"isFist"`
	IsPinch    bool `json:"isPinch"`
	IsThumbUp  bool `json:"isThumbUp"`
	Position   Vec2 `json:"position"`
	IsDetected bool `json:"isDetected"`
}

// Intent is what a gesture asks the scene to do.
type Intent struct {
	SetBlend bool
	Blend    float64
	Flip     bool
}

// None reports whether the intent does nothing.
func (i Intent) None() bool {
	return !i.SetBlend && !i.Flip
}

// MapGesture maps a sample to an intent given the current lottery status,
// the current blend target and the time since the last gesture flip.
func MapGesture(s GestureSample, status LotteryStatus, blendTarget float64, sinceLastFlip, debounce time.Duration) Intent {
	if !s.IsDetected {
		return Intent{}
	}
	switch {
	case status == LotteryIdle:
		if s.IsFist && blendTarget != BlendFormed {
			return Intent{SetBlend: true, Blend: BlendFormed}
		}
		if s.IsOpen && blendTarget != BlendDispersed {
			return Intent{SetBlend: true, Blend: BlendDispersed}
		}
	case status.Showcase():
		if s.IsPinch && sinceLastFlip >= debounce {
			return Intent{Flip: true}
		}
	}
	return Intent{}
}

// GestureMapper holds the debounce and cursor state around MapGesture.
type GestureMapper struct {
	cfg      GestureConfig
	enabled  bool
	lastFlip time.Duration
	flipped  bool

	detected bool
	raw      Vec2
	cursor   Vec2
}

// NewGestureMapper creates a mapper from cfg.
func NewGestureMapper(cfg GestureConfig) *GestureMapper {
	if cfg.CursorScaleX == 0 {
		cfg.CursorScaleX = 1
	}
	return &GestureMapper{cfg: cfg, enabled: cfg.Enabled}
}

// SetEnabled turns gesture control on or off. A disabled mapper ignores
// samples entirely.
func (m *GestureMapper) SetEnabled(on bool) {
	m.enabled = on
	if !on {
		m.detected = false
	}
}

// Enabled reports whether gesture control is on.
func (m *GestureMapper) Enabled() bool {
	return m.enabled
}

// Detected reports whether the last sample saw a hand.
func (m *GestureMapper) Detected() bool {
	return m.detected
}

// Handle consumes a sample taken at scene time now.
func (m *GestureMapper) Handle(s GestureSample, now time.Duration, status LotteryStatus, blendTarget float64) Intent {
	if !m.enabled {
		return Intent{}
	}
	m.detected = s.IsDetected
	if !s.IsDetected {
		return Intent{}
	}
	m.raw = Vec2{X: s.Position.X * m.cfg.CursorScaleX, Y: s.Position.Y}

	since := neverFlipped
	if m.flipped {
		since = now - m.lastFlip
	}
	in := MapGesture(s, status, blendTarget, since, m.cfg.FlipDebounce)
	if in.Flip {
		m.flipped = true
		m.lastFlip = now
	}
	return in
}

// Step smooths the cursor toward the last detected position. The cursor
// holds still while no hand is detected.
func (m *GestureMapper) Step(dt float64) Vec2 {
	if m.detected && dt > 0 {
		k := min(1, m.cfg.CursorSmoothing*dt)
		m.cursor.X += (m.raw.X - m.cursor.X) * k
		m.cursor.Y += (m.raw.Y - m.cursor.Y) * k
	}
	return m.cursor
}

// Cursor returns the smoothed cursor.
func (m *GestureMapper) Cursor() Vec2 {
	return m.cursor
}

// GestureSlot is the single latest-sample slot between a classifier running
// on its own goroutine and the frame loop. Writes overwrite; there is no
// queue.
type GestureSlot struct {
	mu     sync.Mutex
	sample GestureSample
	full   bool
}

// Store replaces the pending sample.
func (s *GestureSlot) Store(g GestureSample) {
	s.mu.Lock()
	s.sample = g
	s.full = true
	s.mu.Unlock()
}

// Take returns and clears the pending sample.
func (s *GestureSlot) Take() (GestureSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return GestureSample{}, false
	}
	s.full = false
	return s.sample, true
}
