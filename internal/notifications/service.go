package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rowsweep/internal/config"
)

const userAgent = "rowsweep/0.1"

// Sender delivers a consolidated report. Delivery is fire-and-forget: a
// failed send is logged by the caller, never retried.
type Sender interface {
	Send(ctx context.Context, subject, htmlBody string) error
}

// NewSender builds a sender posting to the configured endpoint. When no
// endpoint is configured, a noop implementation is returned.
func NewSender(cfg *config.Config) Sender {
	endpoint := strings.TrimSpace(cfg.Notify.Endpoint)
	if endpoint == "" {
		return noopSender{}
	}

	return &httpSender{
		endpoint:   endpoint,
		recipients: strings.Join(cfg.Notify.Recipients, ","),
		client:     &http.Client{Timeout: cfg.NotifyTimeout()},
	}
}

type httpSender struct {
	endpoint   string
	recipients string
	client     *http.Client
}

func (s *httpSender) Send(ctx context.Context, subject, htmlBody string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(htmlBody))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	if subject != "" {
		req.Header.Set("Title", subject)
	}
	if s.recipients != "" {
		req.Header.Set("X-Recipients", s.recipients)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopSender struct{}

func (noopSender) Send(context.Context, string, string) error { return nil }
