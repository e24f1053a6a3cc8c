package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talentd/internal/config"
)

const userAgent = "talentd/0.1.0"

// Sender delivers a single outbound message. Implementations are expected to
// honor context cancellation so a hung recipient cannot stall the worker.
type Sender interface {
	Send(ctx context.Context, job *Job) error
}

// NewSender builds a sender backed by the configured mail gateway. When no
// gateway URL is configured, a noop implementation is returned so the
// pipeline can run without outbound delivery.
func NewSender(cfg *config.Config) Sender {
	endpoint := strings.TrimSpace(cfg.Notifications.GatewayURL)
	if endpoint == "" {
		return noopSender{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &gatewaySender{
		endpoint: endpoint,
		token:    strings.TrimSpace(cfg.Notifications.AuthToken),
		from:     strings.TrimSpace(cfg.Notifications.FromAddress),
		client:   &http.Client{Timeout: timeout},
	}
}

// gatewaySender posts messages to an HTTP mail gateway.
type gatewaySender struct {
	endpoint string
	token    string
	from     string
	client   *http.Client
}

type gatewayMessage struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (g *gatewaySender) Send(ctx context.Context, job *Job) error {
	if job == nil {
		return nil
	}
	payload, err := json.Marshal(gatewayMessage{
		From:    g.from,
		To:      job.Recipient,
		Subject: job.Subject,
		Body:    job.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal gateway message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mail gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopSender struct{}

func (noopSender) Send(context.Context, *Job) error { return nil }
