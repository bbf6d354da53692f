package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("broken pipe")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received(t *testing.T) []Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Message, 0, len(f.frames))
	for _, frame := range f.frames {
		var msg Message
		require.NoError(t, json.Unmarshal(frame, &msg))
		out = append(out, msg)
	}
	return out
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return at }
}

func TestNotifyDeliversToRegisteredConnection(t *testing.T) {
	registry := NewRegistry(WithClock(fixedClock()))
	conn := &fakeConn{}

	registry.Register("u1", conn)
	delivered := registry.Notify("u1", Message{
		Type: "new_reservation",
		Data: map[string]any{"reservation_id": "r1"},
	})

	require.True(t, delivered)

	msgs := conn.received(t)
	require.Len(t, msgs, 1)
	require.Equal(t, "new_reservation", msgs[0].Type)
	require.Equal(t, "2025-03-14T09:26:53Z", msgs[0].Timestamp)

	data, ok := msgs[0].Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "r1", data["reservation_id"])
}

func TestNotifyUnknownUserReturnsFalse(t *testing.T) {
	registry := NewRegistry()

	require.False(t, registry.Notify("nobody", Message{Type: "new_order"}))
}

func TestRegisterIsLastWriterWins(t *testing.T) {
	registry := NewRegistry()
	old := &fakeConn{}
	replacement := &fakeConn{}

	registry.Register("u1", old)
	registry.Register("u1", replacement)

	require.True(t, registry.Notify("u1", Message{Type: "ping"}))
	require.Empty(t, old.received(t))
	require.Len(t, replacement.received(t), 1)
	require.Equal(t, 1, registry.Size())
}

func TestUnregisterRemovesMapping(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}

	registry.Register("u1", conn)
	registry.Unregister("u1", conn)

	require.False(t, registry.Connected("u1"))
	require.False(t, registry.Notify("u1", Message{Type: "ping"}))
}

func TestStaleUnregisterKeepsNewerConnection(t *testing.T) {
	registry := NewRegistry()
	old := &fakeConn{}
	replacement := &fakeConn{}

	registry.Register("u1", old)
	registry.Register("u1", replacement)

	// The old socket's close event arrives after the reconnect.
	registry.Unregister("u1", old)

	require.True(t, registry.Connected("u1"))
	require.True(t, registry.Notify("u1", Message{Type: "ping"}))
	require.Len(t, replacement.received(t), 1)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}

	registry.Register("u1", conn)
	registry.Unregister("u1", conn)
	registry.Unregister("u1", conn)

	require.Equal(t, 0, registry.Size())
}

func TestNotifyWriteErrorReturnsFalse(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{fail: true}

	registry.Register("u1", conn)

	require.False(t, registry.Notify("u1", Message{Type: "new_order"}))
	// The failing socket stays registered until its close event arrives.
	require.True(t, registry.Connected("u1"))
}

func TestNotifyOrderingForSingleRecipient(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}
	registry.Register("u1", conn)

	for _, typ := range []string{"first", "second", "third"} {
		require.True(t, registry.Notify("u1", Message{Type: typ}))
	}

	msgs := conn.received(t)
	require.Len(t, msgs, 3)
	require.Equal(t, "first", msgs[0].Type)
	require.Equal(t, "second", msgs[1].Type)
	require.Equal(t, "third", msgs[2].Type)
}

func TestConcurrentRegisterAndNotify(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := string(rune('a' + n%4))
			conn := &fakeConn{}
			registry.Register(user, conn)
			registry.Notify(user, Message{Type: "ping"})
			registry.Unregister(user, conn)
		}(i)
	}
	wg.Wait()
}
