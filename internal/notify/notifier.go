// Package notify delivers update notifications through a Gotify push
// gateway and formats update batches into human-readable messages.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds each delivery attempt.
const DefaultHTTPTimeout = 10 * time.Second

// Notifier defines the interface for delivering one message. Delivery
// failures are logged by the caller, never retried within a cycle.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// GotifyNotifier sends messages to a Gotify server's /message endpoint.
type GotifyNotifier struct {
	url        string
	token      string
	priority   int
	httpClient *http.Client
}

// NewGotifyNotifier creates a notifier against the given Gotify server URL.
func NewGotifyNotifier(url, token string, priority int) *GotifyNotifier {
	return &GotifyNotifier{
		url:      strings.TrimSuffix(url, "/"),
		token:    token,
		priority: priority,
		httpClient: &http.Client{
			Timeout: DefaultHTTPTimeout,
		},
	}
}

// gotifyMessage is the Gotify create-message payload.
type gotifyMessage struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Send delivers one message. A non-2xx response is an error.
func (n *GotifyNotifier) Send(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(gotifyMessage{
		Title:    title,
		Message:  body,
		Priority: n.priority,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url+"/message", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("X-Gotify-Key", n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gotify returned %d", resp.StatusCode)
	}

	return nil
}
