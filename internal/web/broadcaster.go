package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBuffer is the number of messages a slow client may lag behind.
const subscriberBuffer = 64

// StatusEvent represents a single console message.
type StatusEvent struct {
	Time  string `json:"t"`
	Level string `json:"l,omitempty"`
	Msg   string `json:"msg"`
}

// Hub distributes payloads to multiple live clients (SSE or websocket)
// and remembers the last one for late joiners.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan string
	latest  string
	hasLast bool
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]chan string),
	}
}

// Subscribe returns the subscriber id, a channel that receives broadcast
// payloads and a cleanup function. The caller must call the returned cleanup
// when done (e.g. on client disconnect); calling it twice is safe.
func (h *Hub) Subscribe() (string, <-chan string, func()) {
	id := uuid.NewString()
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, unsub
}

// Broadcast sends payload to all subscribed clients.
// Slow clients may miss messages (non-blocking, buffered).
func (h *Hub) Broadcast(payload string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest, h.hasLast = payload, true
	for _, ch := range h.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// BroadcastJSON marshals v and broadcasts it.
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(string(data))
	return nil
}

// Latest returns the last broadcast payload, if any.
func (h *Hub) Latest() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasLast
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastStatus sends a console message as {"t":"...","l":"info","msg":"..."}.
func (h *Hub) BroadcastStatus(level, msg string) {
	_ = h.BroadcastJSON(StatusEvent{
		Time:  time.Now().Format(time.RFC3339),
		Level: level,
		Msg:   msg,
	})
}

// BroadcastWriter implements io.Writer; each Write becomes one console message.
func BroadcastWriter(h *Hub) *broadcastWriter {
	return &broadcastWriter{h: h}
}

// broadcastWriter wraps a Hub as io.Writer for use with debug.SetOutput.
type broadcastWriter struct {
	h *Hub
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.h.BroadcastStatus("info", msg)
	}
	return len(p), nil
}
