package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHubDropsSlowClientWithoutPanic(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 1)}
	h.register <- client
	waitFor(t, func() bool { return h.HasLocalClient(userID) })

	// First frame fills the buffer; the second overflows it and must drop
	// the connection through the unregister path without a double close.
	h.sendRaw(userID, []byte(`{"n":1}`))
	h.sendRaw(userID, []byte(`{"n":2}`))

	waitFor(t, func() bool { return !h.HasLocalClient(userID) })

	// Drain: one buffered frame, then a clean channel close.
	if _, ok := <-client.Send; !ok {
		t.Fatal("expected the buffered frame before close")
	}
	if _, ok := <-client.Send; ok {
		t.Fatal("expected Send to be closed after unregister")
	}

	// A late disconnect-driven unregister for the same client is a no-op.
	h.unregister <- client
	h.sendRaw(userID, []byte(`{"n":3}`))
}

func TestHubDeliversToRegisteredClient(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 8)}
	h.register <- client
	waitFor(t, func() bool { return h.HasLocalClient(userID) })

	h.SendFrame(userID, FrameChatDelta, map[string]string{"content": "hi"})

	select {
	case frame := <-client.Send:
		if len(frame) == 0 {
			t.Fatal("empty frame delivered")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}
}
