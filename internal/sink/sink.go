package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/activity-monitor/internal/config"
	"github.com/oshokin/activity-monitor/internal/logger"
)

// Sink delivers one text payload.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// ErrDelivery wraps every transport or response failure.
var ErrDelivery = errors.New("delivery failed")

// New builds the sink selected by the settings.
//
//nolint:ireturn // The concrete transport is a setting.
func New(cfg *config.Config) (Sink, error) {
	switch cfg.Sink {
	case config.SinkWebhook:
		return NewWebhook(cfg.Endpoint, cfg.Token, cfg.Timeout), nil
	case config.SinkDiscord:
		return NewDiscord(cfg.Endpoint, cfg.Timeout)
	case config.SinkLog, "":
		return Log{}, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}

// Log writes payloads to the logger instead of sending them.
type Log struct{}

// Send logs the payload.
func (Log) Send(ctx context.Context, message string) error {
	logger.InfoKV(ctx, "Notification (not sent)", "message", message)
	return nil
}

// callContext bounds a call with timeout when positive.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
