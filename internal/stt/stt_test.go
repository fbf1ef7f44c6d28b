package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func recognizer(t *testing.T, reply captureResult) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var req captureRequest
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("read request: %v", err)
			return
		}
		if req.Action != "capture" {
			t.Errorf("action = %q, want capture", req.Action)
		}
		conn.WriteJSON(reply)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestCapture(t *testing.T) {
	srv := recognizer(t, captureResult{Text: "  Hey Harken OPEN Notepad "})
	defer srv.Close()

	c := NewClient(wsURL(srv), "en-US")
	got, err := c.Capture(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got != "hey harken open notepad" {
		t.Errorf("got %q, want lowercased trimmed text", got)
	}
}

func TestCaptureUnrecognized(t *testing.T) {
	srv := recognizer(t, captureResult{Text: ""})
	defer srv.Close()

	c := NewClient(wsURL(srv), "en-US")
	if _, err := c.Capture(context.Background(), time.Second); !errors.Is(err, ErrUnrecognized) {
		t.Errorf("got %v, want ErrUnrecognized", err)
	}
}

func TestCaptureRecognizerError(t *testing.T) {
	srv := recognizer(t, captureResult{Error: "no speech"})
	defer srv.Close()

	c := NewClient(wsURL(srv), "en-US")
	if _, err := c.Capture(context.Background(), time.Second); !errors.Is(err, ErrUnrecognized) {
		t.Errorf("got %v, want ErrUnrecognized", err)
	}
}

func TestCaptureTransportError(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1", "en-US")
	if _, err := c.Capture(context.Background(), 100*time.Millisecond); !errors.Is(err, ErrTransport) {
		t.Errorf("got %v, want ErrTransport", err)
	}
}

// A recognizer that never answers must not pin the capture until the read
// deadline; cancelling the context has to unblock it right away.
func TestCaptureCancelUnblocksRead(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req captureRequest
		conn.ReadJSON(&req)
		// Hold the connection open without replying.
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(wsURL(srv), "en-US")

	errs := make(chan error, 1)
	go func() {
		_, err := c.Capture(ctx, time.Second)
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("capture still blocked after context cancellation")
	}
}

// An abrupt mid-capture disconnect is a transport failure, not a quiet room.
func TestCaptureAbruptCloseIsTransport(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var req captureRequest
		conn.ReadJSON(&req)
		// Kill the underlying conn without a close frame or a result.
		conn.UnderlyingConn().Close()
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), "en-US")
	_, err := c.Capture(context.Background(), time.Second)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("got %v, want ErrTransport", err)
	}
}
