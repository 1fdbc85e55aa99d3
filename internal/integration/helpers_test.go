package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-monitor/internal/config"
)

// webhook is a fake notification endpoint recording every message.
type webhook struct {
	mu       sync.Mutex
	messages []string
	tokens   []string
	server   *httptest.Server
}

// startWebhook serves a webhook that accepts bearer-authenticated JSON posts.
func startWebhook(t *testing.T) *webhook {
	t.Helper()

	w := new(webhook)
	w.server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
		}

		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(rw, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}

		w.mu.Lock()
		w.messages = append(w.messages, body.Message)
		w.tokens = append(w.tokens, r.Header.Get("Authorization"))
		w.mu.Unlock()

		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(w.server.Close)

	return w
}

func (w *webhook) received() ([]string, []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.messages...), append([]string(nil), w.tokens...)
}

// writeSettings saves a webhook configuration with every file in dir.
func writeSettings(t *testing.T, dir, endpoint string, tweak func(cfg *config.Config)) string {
	t.Helper()

	cfg := config.Default()
	cfg.Sink = config.SinkWebhook
	cfg.Endpoint = endpoint
	cfg.Token = "integration-token"
	cfg.DeviceName = "test-host"
	cfg.StateFile = filepath.Join(dir, "state.json")
	cfg.QueueFile = filepath.Join(dir, "queue.json")
	cfg.ErrorLog = filepath.Join(dir, "errors.log")
	cfg.TickInterval = 20 * time.Millisecond
	cfg.Timeout = 2 * time.Second

	if tweak != nil {
		tweak(cfg)
	}

	path := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return path
}
