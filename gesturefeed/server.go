// Package gesturefeed accepts hand-pose readings from out-of-process
// classifiers over WebSocket and stores them into a scene's gesture slot.
package gesturefeed

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/phanxgames/evergreen"
	"github.com/phanxgames/evergreen/internal/log"
)

// Path is the WebSocket endpoint classifiers connect to.
const Path = "/ws/gesture"

// Sink receives decoded samples. *evergreen.GestureSlot satisfies it.
type Sink interface {
	Store(evergreen.GestureSample)
}

// session is one connected classifier.
type session struct {
	id        string
	conn      *websocket.Conn
	connected time.Time

	mu sync.Mutex
}

func (s *session) send(m *Message) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Server is the classifier feed. Every connection writes into the same
// sink, so with several classifiers the latest reading wins.
type Server struct {
	sink Sink

	mu       sync.RWMutex
	sessions map[string]*session

	received atomic.Uint64
	rejected atomic.Uint64
}

// NewServer creates a feed that stores samples into sink.
func NewServer(sink Sink) *Server {
	return &Server{sink: sink, sessions: make(map[string]*session)}
}

// RegisterRoutes registers the WebSocket route on a Fiber app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Use(Path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(Path, websocket.New(s.handle))
}

// Serve runs a Fiber app for the feed on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	s.RegisterRoutes(app)

	errc := make(chan error, 1)
	go func() { errc <- app.Listener(ln) }()
	log.Info("gesture feed listening", "addr", ln.Addr().String(), "path", Path)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handle(c *websocket.Conn) {
	sess := &session{id: uuid.NewString(), conn: c, connected: time.Now()}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	log.Info("classifier connected", "session", sess.id, "total", n)

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		n := len(s.sessions)
		s.mu.Unlock()
		// A vanished classifier means no hand.
		s.sink.Store(evergreen.GestureSample{})
		log.Info("classifier disconnected", "session", sess.id, "total", n,
			"duration", time.Since(sess.connected).Round(time.Second))
	}()

	if err := sess.send(&Message{Type: TypeHello, Session: sess.id, Timestamp: time.Now().UnixMilli()}); err != nil {
		log.Warn("classifier hello failed", "session", sess.id, "err", err)
		return
	}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("classifier read ended", "session", sess.id, "err", err)
			return
		}
		s.handleMessage(sess, data)
	}
}

func (s *Server) handleMessage(sess *session, data []byte) {
	m, err := ParseMessage(data)
	if err != nil {
		s.rejected.Add(1)
		log.Warn("classifier message rejected", "session", sess.id, "err", err)
		return
	}
	s.received.Add(1)

	if m.Type == TypePing {
		if err := sess.send(&Message{Type: TypePong, Timestamp: m.Timestamp}); err != nil {
			log.Warn("classifier pong failed", "session", sess.id, "err", err)
		}
		return
	}
	if g, ok := m.GestureSample(); ok {
		s.sink.Store(g)
	}
}

// SessionCount returns the number of connected classifiers.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats contains feed counters.
type Stats struct {
	Sessions int    `json:"sessions"`
	Received uint64 `json:"received"`
	Rejected uint64 `json:"rejected"`
}

// Stats returns current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Sessions: s.SessionCount(),
		Received: s.received.Load(),
		Rejected: s.rejected.Load(),
	}
}
