package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-monitor/internal/version"
)

// TestWebhookSend verifies the request shape and success handling.
func TestWebhookSend(t *testing.T) {
	t.Parallel()

	var (
		gotAuth    string
		gotType    string
		gotMessage string
		gotAgent   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotAgent = r.Header.Get("User-Agent")

		var body webhookRequest

		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		gotMessage = body.Message

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	hook := NewWebhook(srv.URL, "secret", time.Second)
	require.NoError(t, hook.Send(context.Background(), "hello"))
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "application/json", gotType)
	require.Equal(t, "hello", gotMessage)
	require.Equal(t, version.UserAgent(), gotAgent)
}

// TestWebhookSendFailures covers statuses and bodies treated as failures.
func TestWebhookSendFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`},
		{name: "not json", status: http.StatusOK, body: "<html>ok</html>"},
		{name: "empty body", status: http.StatusOK, body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			err := NewWebhook(srv.URL, "t", time.Second).Send(context.Background(), "x")
			require.ErrorIs(t, err, ErrDelivery)
		})
	}
}

// TestWebhookSendTimeout ensures a slow endpoint fails within the timeout.
func TestWebhookSendTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	err := NewWebhook(srv.URL, "t", 50*time.Millisecond).Send(context.Background(), "x")
	require.ErrorIs(t, err, ErrDelivery)
}

// TestWebhookSendUnreachable reports transport errors as delivery failures.
func TestWebhookSendUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewWebhook(url, "t", time.Second).Send(context.Background(), "x")
	require.ErrorIs(t, err, ErrDelivery)
}
