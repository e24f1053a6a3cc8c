package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"talentd/internal/config"
	"talentd/internal/notify"
)

func gatewayConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.GatewayURL = url
	cfg.Notifications.AuthToken = "gateway-secret"
	cfg.Notifications.FromAddress = "no-reply@example.com"
	return &cfg
}

func TestGatewaySenderPostsMessage(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := notify.NewSender(gatewayConfig(srv.URL))
	job := notify.NewJob("candidate@example.com", "Application status updated", "Your application moved from APPLIED to SCREENING")
	if err := sender.Send(context.Background(), job); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotAuth != "Bearer gateway-secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotBody["from"] != "no-reply@example.com" || gotBody["to"] != "candidate@example.com" {
		t.Errorf("unexpected addressing %v", gotBody)
	}
	if gotBody["subject"] != job.Subject || gotBody["body"] != job.Body {
		t.Errorf("unexpected content %v", gotBody)
	}
}

func TestGatewaySenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mailbox unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := notify.NewSender(gatewayConfig(srv.URL))
	err := sender.Send(context.Background(), notify.NewJob("a@example.com", "s", "b"))
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "mailbox unavailable") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGatewaySenderHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	sender := notify.NewSender(gatewayConfig(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.Send(ctx, notify.NewJob("a@example.com", "s", "b")); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestNoopSenderWhenGatewayUnset(t *testing.T) {
	cfg := config.Default()
	sender := notify.NewSender(&cfg)
	if err := sender.Send(context.Background(), notify.NewJob("a@example.com", "s", "b")); err != nil {
		t.Fatalf("noop sender errored: %v", err)
	}
}
