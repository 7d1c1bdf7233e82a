package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testClient(h *Hub, buffer int) *Client {
	return &Client{hub: h, send: make(chan []byte, buffer)}
}

func TestHubBroadcast(t *testing.T) {
	h := testHub()
	a := testClient(h, sendBufferSize)
	b := testClient(h, sendBufferSize)
	h.Register(a)
	h.Register(b)

	if h.ClientCount() != 2 {
		t.Fatalf("client count = %d, want 2", h.ClientCount())
	}

	h.Broadcast(RecordMessage("plants", "created", "p1"))

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case raw := <-c.send:
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("client %s: %v", name, err)
			}
			if msg.Type != "record_created" || msg.Collection != "plants" || msg.ID != "p1" {
				t.Errorf("client %s got %+v", name, msg)
			}
		default:
			t.Errorf("client %s received nothing", name)
		}
	}
}

func TestHubSkipsSlowClients(t *testing.T) {
	h := testHub()
	slow := testClient(h, 1)
	h.Register(slow)

	// Fill the buffer; further broadcasts must not block.
	h.Broadcast(RecordMessage("plants", "created", "p1"))
	h.Broadcast(RecordMessage("plants", "created", "p2"))

	if got := len(slow.send); got != 1 {
		t.Errorf("buffered messages = %d, want 1", got)
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := testHub()
	c := testClient(h, 1)
	h.Register(c)
	h.Unregister(c)

	if h.ClientCount() != 0 {
		t.Errorf("client count = %d after unregister", h.ClientCount())
	}
	if _, open := <-c.send; open {
		t.Error("send channel still open after unregister")
	}

	// Double unregister is a no-op, not a double close.
	h.Unregister(c)
}
