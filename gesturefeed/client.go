package gesturefeed

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/evergreen"
)

// Client is the classifier side of the feed.
type Client struct {
	conn    *websocket.Conn
	session string

	mu sync.Mutex
}

// Dial connects to a feed at url (for example "ws://host:8765/ws/gesture")
// and waits for the server's hello.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gesture feed: %w", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read hello: %w", err)
	}
	m, err := ParseMessage(data)
	if err != nil || m.Type != TypeHello {
		conn.Close()
		return nil, fmt.Errorf("read hello: unexpected message %q", data)
	}
	return &Client{conn: conn, session: m.Session}, nil
}

// Session returns the id the server assigned.
func (c *Client) Session() string {
	return c.session
}

// Send writes one message.
func (c *Client) Send(m *Message) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendSample sends a classified sample.
func (c *Client) SendSample(s evergreen.GestureSample) error {
	return c.Send(NewSampleMessage(s))
}

// SendLandmarks sends raw landmarks from a w×h frame.
func (c *Client) SendLandmarks(lm evergreen.HandLandmarks, w, h float64) error {
	return c.Send(NewLandmarksMessage(lm, w, h))
}

// SendLost reports that no hand is visible.
func (c *Client) SendLost() error {
	return c.Send(&Message{Type: TypeLost})
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}
