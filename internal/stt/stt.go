// Package stt captures speech as text from a recognizer server over a
// websocket, one utterance per request. The daemon treats the recognizer as
// an external collaborator; audio never enters this process.
package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	log "log/slog"

	"github.com/gorilla/websocket"
)

var (
	// ErrTimeout means nothing was said within the window. Benign.
	ErrTimeout = errors.New("capture timed out")
	// ErrUnrecognized means audio arrived but produced no text. Benign.
	ErrUnrecognized = errors.New("speech not recognized")
	// ErrTransport covers dial and protocol failures talking to the
	// recognizer. Callers log it and treat the capture as empty.
	ErrTransport = errors.New("recognizer transport error")
)

// Client talks to a recognizer exposing a websocket endpoint that answers a
// capture request with one JSON result frame.
type Client struct {
	url      string
	language string
	dialer   *websocket.Dialer
}

type captureRequest struct {
	Action   string `json:"action"`
	Language string `json:"language"`
	Timeout  int    `json:"timeout_ms"`
}

type captureResult struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func NewClient(url, language string) *Client {
	return &Client{
		url:      url,
		language: language,
		dialer:   &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}
}

// Capture asks the recognizer for one utterance, waiting at most timeout.
// The returned text is lowercased and trimmed.
func (c *Client) Capture(ctx context.Context, timeout time.Duration) (string, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: dial %s: %v", ErrTransport, c.url, err)
	}
	defer conn.Close()

	req := captureRequest{
		Action:   "capture",
		Language: c.language,
		Timeout:  int(timeout / time.Millisecond),
	}
	if err := conn.WriteJSON(req); err != nil {
		return "", fmt.Errorf("%w: write request: %v", ErrTransport, err)
	}

	// Closing the conn is the only way to unblock a pending ReadMessage
	// when the context is cancelled mid-capture.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	// The read deadline covers the capture window plus recognition slack.
	conn.SetReadDeadline(time.Now().Add(timeout + 10*time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: read result: %v", ErrTransport, err)
	}

	var res captureResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("%w: bad result frame: %v", ErrTransport, err)
	}
	if res.Error != "" {
		log.Debug("Recognizer reported error", "err", res.Error)
		return "", ErrUnrecognized
	}

	text := strings.ToLower(strings.TrimSpace(res.Text))
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}
