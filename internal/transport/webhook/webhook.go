// Package webhook posts report messages as JSON to incoming-webhook endpoints
// (Slack, Mattermost, Discord and compatible services).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"diffreport/internal/transport"
	logx "diffreport/pkg/logx"
)

// DefaultField is the payload key most webhook services read the message from.
const DefaultField = "text"

type Config struct {
	URL string
	// Field is the JSON key carrying the message; Discord uses "content".
	Field   string
	Timeout time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

type Sender struct {
	url    string
	field  string
	client *http.Client
	log    logx.Logger
}

var _ transport.Sender = (*Sender)(nil)

func New(cfg Config, log logx.Logger) (*Sender, error) {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		return nil, transport.Unavailable("webhook", "webhook_url is empty")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, fmt.Errorf("webhook: unsupported url scheme in %q", u)
	}
	field := strings.TrimSpace(cfg.Field)
	if field == "" {
		field = DefaultField
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Sender{url: u, field: field, client: client, log: log.With(logx.String("channel", "webhook"))}, nil
}

// Send posts {"<field>": text}. Any non-2xx response is an error carrying the
// status and the start of the response body.
func (s *Sender) Send(ctx context.Context, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(map[string]string{s.field: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.log.Debug("webhook rejected message", logx.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
