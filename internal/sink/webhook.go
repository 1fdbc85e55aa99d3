package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/activity-monitor/internal/version"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Webhook posts payloads as JSON with a bearer credential.
type Webhook struct {
	endpoint string
	token    string
	timeout  time.Duration
	client   *http.Client
}

// webhookRequest is the JSON body of a webhook call.
type webhookRequest struct {
	Message string `json:"message"`
}

// NewWebhook creates a webhook sink; timeout bounds every call.
func NewWebhook(endpoint, token string, timeout time.Duration) *Webhook {
	return &Webhook{
		endpoint: endpoint,
		token:    token,
		timeout:  timeout,
		client:   new(http.Client),
	}
}

// Send posts message. Any transport error, non-2xx status or response body
// that is not JSON is a delivery failure.
func (w *Webhook) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(webhookRequest{Message: message})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	callCtx, cancel := callContext(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrDelivery, err)
	}

	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	contents, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrDelivery, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: unexpected status %s", ErrDelivery, resp.Status)
	}

	if !json.Valid(contents) {
		return fmt.Errorf("%w: response is not JSON", ErrDelivery)
	}

	return nil
}
