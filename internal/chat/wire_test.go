// ABOUTME: In-memory wire fake and frame helpers for chat tests
// ABOUTME: Lets handler sessions run without a real websocket

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
)

// fakeWire is an in-memory wire. Tests push client frames into in and read
// server frames from out.
type fakeWire struct {
	in  chan []byte
	out chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeWire() *fakeWire {
	return &fakeWire{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 128),
		closed: make(chan struct{}),
	}
}

func (f *fakeWire) ReadJSON(ctx context.Context, v any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.closed:
		return errors.New("wire closed")
	case b := <-f.in:
		return json.Unmarshal(b, v)
	}
}

func (f *fakeWire) WriteJSON(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case f.out <- b:
		return nil
	}
}

func (f *fakeWire) Close(code websocket.StatusCode, reason string) error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// sendFrame marshals a request and hands it to the server side of the wire.
func sendFrame(t *testing.T, w *fakeWire, id, reqType string, data any) {
	t.Helper()

	req := Request{ID: id, Type: reqType}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		req.Data = raw
	}

	b, err := json.Marshal(req)
	require.NoError(t, err)

	select {
	case w.in <- b:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out sending frame")
	}
}

// wireFrame is the decoded shape of any server frame: responses carry an id
// and status, push events only a type and data.
type wireFrame struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// readFrame pops the next server frame, failing the test on timeout.
func readFrame(t *testing.T, w *fakeWire) wireFrame {
	t.Helper()

	select {
	case b := <-w.out:
		var frame wireFrame
		require.NoError(t, json.Unmarshal(b, &frame))
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return wireFrame{}
	}
}

// expectNoFrame asserts nothing arrives within a short window.
func expectNoFrame(t *testing.T, w *fakeWire) {
	t.Helper()

	select {
	case b := <-w.out:
		t.Fatalf("unexpected frame: %s", b)
	case <-time.After(100 * time.Millisecond):
	}
}
