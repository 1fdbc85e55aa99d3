package sink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// discordMessageLimit is the maximum content length of one Discord message.
const discordMessageLimit = 2000

// errBadDiscordWebhook is returned when the webhook URL has no id/token pair.
var errBadDiscordWebhook = errors.New("discord webhook URL must end with /webhooks/<id>/<token>")

// Discord posts payloads to a Discord channel webhook, split into messages
// that fit the Discord content limit.
type Discord struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

// NewDiscord creates a Discord sink from a webhook URL.
func NewDiscord(webhookURL string, timeout time.Duration) (*Discord, error) {
	id, token, err := ParseDiscordWebhook(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution needs no bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Client = &http.Client{Timeout: timeout}

	return &Discord{
		session:   session,
		webhookID: id,
		token:     token,
	}, nil
}

// Send posts message, chunked on line boundaries.
func (d *Discord) Send(ctx context.Context, message string) error {
	for _, chunk := range SplitMessage(message, discordMessageLimit) {
		params := &discordgo.WebhookParams{Content: chunk}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}

		if _, err := d.session.WebhookExecute(d.webhookID, d.token, true, params); err != nil {
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}
	}

	return nil
}

// ParseDiscordWebhook extracts the webhook id and token from its URL.
func ParseDiscordWebhook(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse discord webhook: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}

	return "", "", errBadDiscordWebhook
}

// SplitMessage cuts message into chunks of at most limit bytes, preferring
// line boundaries and never splitting a UTF-8 sequence.
func SplitMessage(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for line := range strings.Lines(message) {
		for len(line) > limit {
			flush()

			cut := limit
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}

			if cut == 0 {
				cut = limit
			}

			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}

		if current.Len()+len(line) > limit {
			flush()
		}

		current.WriteString(line)
	}

	flush()

	for i, chunk := range chunks {
		chunks[i] = strings.TrimRight(chunk, "\n")
	}

	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
