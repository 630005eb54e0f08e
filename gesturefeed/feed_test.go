package gesturefeed

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/evergreen"
)

func TestParseMessage(t *testing.T) {
	m, err := ParseMessage([]byte(`{"type":"sample","sample":{"isFist":true,"isDetected":true,"position":{"X":0.5,"Y":-0.25}}}`))
	if err != nil {
		t.Fatal(err)
	}
	g, ok := m.GestureSample()
	if !ok || !g.IsFist || !g.IsDetected || g.Position != (evergreen.Vec2{X: 0.5, Y: -0.25}) {
		t.Errorf("sample = %+v, %v", g, ok)
	}

	m, err = ParseMessage([]byte(`{"type":"lost"}`))
	if err != nil {
		t.Fatal(err)
	}
	if g, ok := m.GestureSample(); !ok || g.IsDetected {
		t.Errorf("lost = %+v, %v; want an undetected sample", g, ok)
	}

	m, err = ParseMessage([]byte(`{"type":"ping","ts":42}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.GestureSample(); ok || m.Timestamp != 42 {
		t.Errorf("ping converted to a sample or lost its timestamp: %+v", m)
	}
}

func TestParseMessageErrors(t *testing.T) {
	cases := []struct {
		data string
		want error
	}{
		{`{"type":"dance"}`, ErrUnknownType},
		{`{"type":"sample"}`, ErrMissingSample},
		{`{"type":"landmarks","landmarks":[[1,2],[3,4]]}`, ErrBadLandmarks},
	}
	for _, tc := range cases {
		if _, err := ParseMessage([]byte(tc.data)); !errors.Is(err, tc.want) {
			t.Errorf("ParseMessage(%s) err = %v, want %v", tc.data, err, tc.want)
		}
	}
	if _, err := ParseMessage([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

// openHand is an open palm with its wrist at the center of a 640x480 frame.
func openHand() evergreen.HandLandmarks {
	var lm evergreen.HandLandmarks
	lm[evergreen.LandmarkWrist] = evergreen.Vec2{X: 320, Y: 240}
	lm[evergreen.LandmarkMiddleMCP] = evergreen.Vec2{X: 320, Y: 180}
	for _, i := range []int{evergreen.LandmarkIndexTip, evergreen.LandmarkMiddleTip, evergreen.LandmarkRingTip, evergreen.LandmarkPinkyTip} {
		lm[i] = evergreen.Vec2{X: 320 + float64(i), Y: 60}
	}
	lm[evergreen.LandmarkThumbIP] = evergreen.Vec2{X: 260, Y: 200}
	lm[evergreen.LandmarkThumbTip] = evergreen.Vec2{X: 230, Y: 190}
	return lm
}

func TestLandmarksMessage(t *testing.T) {
	data, err := NewLandmarksMessage(openHand(), 640, 480).Bytes()
	if err != nil {
		t.Fatal(err)
	}
	m, err := ParseMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := m.GestureSample()
	if !ok || !g.IsOpen || g.IsFist || !g.IsDetected {
		t.Errorf("landmarks = %+v, %v; want an open hand", g, ok)
	}
	if g.Position != (evergreen.Vec2{}) {
		t.Errorf("position = %+v, want the center", g.Position)
	}
}

// chanSink forwards stored samples to a channel.
type chanSink chan evergreen.GestureSample

func (c chanSink) Store(g evergreen.GestureSample) {
	c <- g
}

func startServer(t *testing.T, sink Sink) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(sink)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return srv, "ws://" + ln.Addr().String() + Path
}

func receive(t *testing.T, c chanSink) evergreen.GestureSample {
	t.Helper()
	select {
	case g := <-c:
		return g
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a sample")
	}
	return evergreen.GestureSample{}
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestServerStoresSamples(t *testing.T) {
	sink := make(chanSink, 8)
	srv, url := startServer(t, sink)

	c := dial(t, url)
	if c.Session() == "" {
		t.Error("no session id in hello")
	}

	if err := c.SendSample(evergreen.GestureSample{IsPinch: true, IsDetected: true}); err != nil {
		t.Fatal(err)
	}
	if g := receive(t, sink); !g.IsPinch || !g.IsDetected {
		t.Errorf("stored %+v, want a pinch", g)
	}

	if err := c.SendLandmarks(openHand(), 640, 480); err != nil {
		t.Fatal(err)
	}
	if g := receive(t, sink); !g.IsOpen {
		t.Errorf("stored %+v, want an open hand", g)
	}

	if err := c.SendLost(); err != nil {
		t.Fatal(err)
	}
	if g := receive(t, sink); g.IsDetected {
		t.Errorf("stored %+v, want no hand", g)
	}

	if got := srv.Stats(); got.Sessions != 1 || got.Received != 3 || got.Rejected != 0 {
		t.Errorf("stats = %+v", got)
	}

	// Closing the classifier clears the hand.
	c.Close()
	if g := receive(t, sink); g.IsDetected {
		t.Errorf("stored %+v on disconnect, want no hand", g)
	}
}

func TestServerPingAndRejects(t *testing.T) {
	sink := make(chanSink, 8)
	srv, url := startServer(t, sink)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if m, err := ParseMessage(data); err != nil || m.Type != TypeHello {
		t.Fatalf("first message = %s, want hello", data)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","ts":7}`))
	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	m, err := ParseMessage(data)
	if err != nil || m.Type != TypePong || m.Timestamp != 7 {
		t.Fatalf("reply = %s, want pong 7", data)
	}

	// Messages on one connection are handled in order, so the reject is counted.
	if got := srv.Stats(); got.Rejected != 1 || got.Received != 1 {
		t.Errorf("stats = %+v, want 1 received and 1 rejected", got)
	}
	select {
	case g := <-sink:
		t.Errorf("ping stored a sample: %+v", g)
	default:
	}
}

func TestServerStoresIntoScene(t *testing.T) {
	cfg := evergreen.DefaultConfig()
	cfg.Seed = 3
	cfg.Foliage.Count = 10
	scene, err := evergreen.NewScene(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, url := startServer(t, scene.GestureSlot())

	c := dial(t, url)
	defer c.Close()
	if err := c.SendSample(evergreen.GestureSample{IsOpen: true, IsDetected: true}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for scene.BlendTarget() != evergreen.BlendDispersed {
		if time.Now().After(deadline) {
			t.Fatal("open palm from the feed never dispersed the tree")
		}
		time.Sleep(10 * time.Millisecond)
		scene.Update(1.0 / 60)
	}
}
