package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"doorbird/internal/events"
)

func TestServer_HandleEvent(t *testing.T) {
	server := events.NewServer(":0", "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/events/doorbell", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, err := server.Next(ctx)
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if ev.Type != "doorbell" {
		t.Errorf("event type: got %s, want doorbell", ev.Type)
	}
	if ev.Time.IsZero() {
		t.Error("event time is zero")
	}
}

func TestServer_TokenAuth(t *testing.T) {
	authToken := "test-secret-token"
	server := events.NewServer(":0", authToken, zerolog.Nop())

	tests := []struct {
		name       string
		token      string
		viaQuery   bool
		wantStatus int
	}{
		{"valid token in header", authToken, false, http.StatusOK},
		{"valid token in query", authToken, true, http.StatusOK},
		{"invalid token", "wrong-token", false, http.StatusUnauthorized},
		{"missing token", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/events/motionsensor"
			if tt.viaQuery {
				target += "?token=" + tt.token
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if !tt.viaQuery && tt.token != "" {
				req.Header.Set("X-Auth-Token", tt.token)
			}

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := events.NewServer(":0", "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	// Not started yet, so the listener reports not ready.
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServer_CallbackURL(t *testing.T) {
	plain := events.NewServer(":0", "", zerolog.Nop())
	if got := plain.CallbackURL("http://10.0.0.5:8080/", "doorbell"); got != "http://10.0.0.5:8080/events/doorbell" {
		t.Errorf("callback url: got %s", got)
	}

	withToken := events.NewServer(":0", "s3cret", zerolog.Nop())
	if got := withToken.CallbackURL("http://10.0.0.5:8080", "doorbell"); got != "http://10.0.0.5:8080/events/doorbell?token=s3cret" {
		t.Errorf("callback url with token: got %s", got)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := events.NewRateLimiter(2, time.Minute)

	if !limiter.Allow("10.0.0.7:51000") {
		t.Error("first request should pass")
	}
	if !limiter.Allow("10.0.0.7:51001") {
		t.Error("second request should pass")
	}
	if limiter.Allow("10.0.0.7:51002") {
		t.Error("third request within the window should be limited")
	}
	if !limiter.Allow("10.0.0.8:51000") {
		t.Error("another host must not be affected")
	}
}
