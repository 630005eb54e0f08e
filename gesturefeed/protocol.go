package gesturefeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phanxgames/evergreen"
)

// Message types
const (
	TypeHello     = "hello"
	TypeSample    = "sample"
	TypeLandmarks = "landmarks"
	TypeLost      = "lost"
	TypePing      = "ping"
	TypePong      = "pong"
)

var (
	ErrUnknownType   = errors.New("unknown message type")
	ErrBadLandmarks  = errors.New("landmarks: want 21 points")
	ErrMissingSample = errors.New("sample: missing body")
)

// Message is the JSON envelope exchanged over the feed.
type Message struct {
	Type string `json:"type"`
	// Session is set by the server in hello.
	Session string `json:"session,omitempty"`
	// Sample carries an already classified reading.
	Sample *evergreen.GestureSample `json:"sample,omitempty"`
	// Landmarks carries raw hand points in pixels with the frame size, for
	// classifiers that leave pose classification to the scene side.
	Landmarks [][2]float64 `json:"landmarks,omitempty"`
	Width     float64      `json:"width,omitempty"`
	Height    float64      `json:"height,omitempty"`
	// Timestamp is Unix milliseconds.
	Timestamp int64 `json:"ts,omitempty"`
}

// ParseMessage decodes and validates one message.
func ParseMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	switch m.Type {
	case TypeHello, TypeLost, TypePing, TypePong:
	case TypeSample:
		if m.Sample == nil {
			return nil, ErrMissingSample
		}
	case TypeLandmarks:
		if len(m.Landmarks) != evergreen.NumLandmarks {
			return nil, fmt.Errorf("%w, got %d", ErrBadLandmarks, len(m.Landmarks))
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, m.Type)
	}
	return &m, nil
}

// GestureSample converts a sample, landmarks or lost message into a
// scene gesture sample. ok is false for other message types.
func (m *Message) GestureSample() (s evergreen.GestureSample, ok bool) {
	switch m.Type {
	case TypeSample:
		return *m.Sample, true
	case TypeLandmarks:
		var lm evergreen.HandLandmarks
		for i, p := range m.Landmarks {
			lm[i] = evergreen.Vec2{X: p[0], Y: p[1]}
		}
		return evergreen.ClassifyLandmarks(lm, m.Width, m.Height), true
	case TypeLost:
		return evergreen.GestureSample{}, true
	}
	return evergreen.GestureSample{}, false
}

// Bytes encodes the message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// NewSampleMessage wraps a classified sample.
func NewSampleMessage(s evergreen.GestureSample) *Message {
	return &Message{Type: TypeSample, Sample: &s, Timestamp: time.Now().UnixMilli()}
}

// NewLandmarksMessage wraps raw landmarks from a w×h frame.
func NewLandmarksMessage(lm evergreen.HandLandmarks, w, h float64) *Message {
	pts := make([][2]float64, len(lm))
	for i, p := range lm {
		pts[i] = [2]float64{p.X, p.Y}
	}
	return &Message{Type: TypeLandmarks, Landmarks: pts, Width: w, Height: h, Timestamp: time.Now().UnixMilli()}
}
