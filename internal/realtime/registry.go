package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dumumtergo/server/pkg/logger"
	"github.com/dumumtergo/server/pkg/metrics"
)

const writeWait = 10 * time.Second

// Conn is the subset of *websocket.Conn the registry needs. Tests substitute
// a fake implementation.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Message is the payload pushed to a connected client. Timestamp is assigned
// by the registry at send time.
type Message struct {
	Type           string `json:"type"`
	Data           any    `json:"data"`
	NotificationID string `json:"notification_id,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

type entry struct {
	conn Conn
	// writeMu serializes writes to a single socket; websocket connections do
	// not support concurrent writers.
	writeMu sync.Mutex
}

// Registry maintains the live user-to-socket mapping and provides the single
// delivery primitive used by the rest of the application. It holds at most
// one socket per user: a newer connection for the same user silently
// supersedes the older one. State is process-local and rebuilt from scratch
// on restart; a deployment running several processes has several independent
// registries with no cross-process delivery.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	now func() time.Time
	log *zap.Logger
}

// Option customises the Registry.
type Option func(*Registry)

// WithClock overrides the timestamp clock, primarily for testing.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry constructs an empty connection registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		now:     time.Now,
		log:     logger.WithModule("realtime"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register records conn as the live socket for userID. An existing entry for
// the same user is replaced without being closed; its own close event will
// arrive through Unregister and be ignored there.
func (r *Registry) Register(userID string, conn Conn) {
	if userID == "" || conn == nil {
		return
	}

	r.mu.Lock()
	_, replaced := r.entries[userID]
	r.entries[userID] = &entry{conn: conn}
	size := len(r.entries)
	r.mu.Unlock()

	metrics.RealtimeConnections.Set(float64(size))
	r.log.Info("client connected",
		zap.String("user_id", userID),
		zap.Bool("superseded", replaced),
		zap.Int("connections", size),
	)
}

// Unregister removes the mapping for userID, but only when conn is still the
// registered socket. A close event from a connection that has already been
// superseded by a reconnect must not evict the newer socket. Calling it for
// an absent mapping is a no-op.
func (r *Registry) Unregister(userID string, conn Conn) {
	if userID == "" {
		return
	}

	r.mu.Lock()
	e, ok := r.entries[userID]
	if ok && e.conn == conn {
		delete(r.entries, userID)
	} else {
		ok = false
	}
	size := len(r.entries)
	r.mu.Unlock()

	if ok {
		metrics.RealtimeConnections.Set(float64(size))
		r.log.Info("client disconnected", zap.String("user_id", userID), zap.Int("connections", size))
	}
}

// Notify delivers msg to userID's live socket if one is registered. It
// returns true only when the write was attempted without error; false means
// the recipient was offline or the write failed, and the caller is expected
// to rely on the persisted notification record instead. Write errors never
// propagate.
func (r *Registry) Notify(userID string, msg Message) bool {
	r.mu.RLock()
	e, ok := r.entries[userID]
	r.mu.RUnlock()

	if !ok {
		metrics.NotificationDeliveries.WithLabelValues("offline").Inc()
		return false
	}

	msg.Timestamp = r.now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(msg)
	if err != nil {
		metrics.NotificationDeliveries.WithLabelValues("error").Inc()
		r.log.Error("marshal notification", zap.String("user_id", userID), zap.Error(err))
		return false
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	_ = e.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := e.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		metrics.NotificationDeliveries.WithLabelValues("error").Inc()
		r.log.Warn("notification write failed",
			zap.String("user_id", userID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		return false
	}

	metrics.NotificationDeliveries.WithLabelValues("delivered").Inc()
	return true
}

// Connected reports whether a live socket is registered for userID.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[userID]
	return ok
}

// Size returns the number of registered connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
