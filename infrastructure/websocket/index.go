package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Event is the wire envelope for every message in both directions.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Socket wraps a WebSocket connection carrying JSON events. Writes are
// serialised; reads happen from a single loop per connection.
type Socket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Upgrade upgrades the HTTP request to a WebSocket connection. The read
// limit is sized for a base64 encoded camera frame.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Socket, error) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(4 << 20)
	return &Socket{conn: conn}, nil
}

func (s *Socket) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Socket) CloseWithReason(reason string) error {
	return s.conn.Close(websocket.StatusPolicyViolation, reason)
}

// ReadEvent blocks until the next event arrives or the connection drops.
func (s *Socket) ReadEvent(ctx context.Context) (*Event, error) {
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if event.Name == "" {
		return nil, fmt.Errorf("event name missing")
	}
	return &event, nil
}

// WriteEvent sends one named event with an optional payload.
func (s *Socket) WriteEvent(ctx context.Context, name string, payload any) error {
	event := Event{Name: name}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		event.Data = data
	}
	frame, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.conn.Write(ctx, websocket.MessageText, frame)
}
