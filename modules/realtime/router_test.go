package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// fakeConn records every frame written to it.
type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) last(t *testing.T) map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.frames, "no frames written")
	var out map[string]any
	require.NoError(t, json.Unmarshal(c.frames[len(c.frames)-1], &out))
	return out
}

func identity(id string) user.Identity {
	return user.Identity{UserID: id, Name: id, Email: id + "@example.com"}
}

func sampleEvent(recipient string) events.TaskEvent {
	return events.TaskEvent{
		Type:        events.TypeTaskCreated,
		RecipientID: recipient,
		ActorID:     "alice",
		TaskID:      "task-1",
		Task:        &task.View{ID: "task-1", Title: "Write report"},
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRouter_JoinAndNotify(t *testing.T) {
	r := NewRouter(&mockLogger{})
	conn := &fakeConn{}
	ch := NewChannel(identity("bob"), conn)

	r.Join(ch)
	assert.True(t, r.IsConnected("bob"))
	assert.Equal(t, 1, r.Connected())

	delivered := r.NotifyOne("bob", toEventFrame(sampleEvent("bob")))
	assert.True(t, delivered)

	frame := conn.last(t)
	assert.Equal(t, events.TypeTaskCreated, frame["type"])
	assert.Equal(t, "task-1", frame["task_id"])
	assert.Equal(t, "alice", frame["actor_id"])
	assert.Contains(t, frame, "task")
	assert.NotContains(t, frame, "recipient_id")
}

func TestRouter_NotifyAbsentUserIsDropped(t *testing.T) {
	r := NewRouter(&mockLogger{})
	conn := &fakeConn{}
	r.Join(NewChannel(identity("alice"), conn))

	assert.False(t, r.NotifyOne("carol", toEventFrame(sampleEvent("carol"))))
	assert.Equal(t, 0, conn.count())
}

func TestRouter_JoinReplacesEarlierChannel(t *testing.T) {
	r := NewRouter(&mockLogger{})
	first := &fakeConn{}
	second := &fakeConn{}

	r.Join(NewChannel(identity("bob"), first))
	r.Join(NewChannel(identity("bob"), second))
	assert.Equal(t, 1, r.Connected())

	require.True(t, r.NotifyOne("bob", toEventFrame(sampleEvent("bob"))))
	assert.Equal(t, 0, first.count())
	assert.Equal(t, 1, second.count())
}

func TestRouter_StaleDisconnectKeepsNewerChannel(t *testing.T) {
	r := NewRouter(&mockLogger{})
	oldCh := NewChannel(identity("bob"), &fakeConn{})
	newConn := &fakeConn{}
	newCh := NewChannel(identity("bob"), newConn)

	r.Join(oldCh)
	r.Join(newCh)
	r.disconnect(oldCh)

	assert.True(t, r.IsConnected("bob"))
	assert.True(t, r.NotifyOne("bob", toEventFrame(sampleEvent("bob"))))
	assert.Equal(t, 1, newConn.count())

	r.disconnect(newCh)
	assert.False(t, r.IsConnected("bob"))
}

func TestRouter_WriteFailureDropsEvent(t *testing.T) {
	r := NewRouter(&mockLogger{})
	r.Join(NewChannel(identity("bob"), &fakeConn{writeErr: errors.New("broken pipe")}))

	assert.False(t, r.NotifyOne("bob", toEventFrame(sampleEvent("bob"))))
	assert.True(t, r.IsConnected("bob"))
}

func TestRouter_ConcurrentNotify(t *testing.T) {
	r := NewRouter(&mockLogger{})
	conn := &fakeConn{}
	r.Join(NewChannel(identity("bob"), conn))

	const senders = 50
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.NotifyOne("bob", toEventFrame(sampleEvent("bob")))
		}()
	}
	wg.Wait()

	assert.Equal(t, senders, conn.count())
	for _, data := range conn.frames {
		assert.True(t, json.Valid(data), "interleaved frame: %s", data)
	}
}

func TestHandleFrame(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  string
		wantError string
		joined    bool
	}{
		{name: "join own identity", input: `{"type":"join","user_id":"bob"}`, wantType: frameJoined, joined: true},
		{name: "join without user id", input: `{"type":"join"}`, wantType: frameJoined, joined: true},
		{name: "join as another user", input: `{"type":"join","user_id":"alice"}`, wantType: frameError, wantError: "cannot join as another user"},
		{name: "ping", input: `{"type":"ping"}`, wantType: framePong},
		{name: "unknown type", input: `{"type":"shout"}`, wantType: frameError, wantError: "unknown message type: shout"},
		{name: "invalid json", input: `not json`, wantType: frameError, wantError: "invalid message format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(&mockLogger{})
			conn := &fakeConn{}
			ch := NewChannel(identity("bob"), conn)

			r.handleFrame(ch, []byte(tt.input))

			frame := conn.last(t)
			assert.Equal(t, tt.wantType, frame["type"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, frame["error"])
			}
			if tt.joined {
				assert.Equal(t, "bob", frame["user_id"])
			}
			assert.Equal(t, tt.joined, r.IsConnected("bob"))
			assert.False(t, r.IsConnected("alice"))
		})
	}
}

func TestServe_StopsOnReadError(t *testing.T) {
	r := NewRouter(&mockLogger{})
	conn := &fakeConn{}
	ch := NewChannel(identity("bob"), conn)

	inputs := [][]byte{[]byte(`{"type":"join"}`), []byte(`{"type":"ping"}`)}
	r.serve(ch, func() ([]byte, error) {
		if len(inputs) == 0 {
			return nil, errors.New("connection closed")
		}
		next := inputs[0]
		inputs = inputs[1:]
		return next, nil
	})

	assert.Equal(t, 2, conn.count())
	assert.Equal(t, framePong, conn.last(t)["type"])
}
