package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const telegramBaseURL = "https://api.telegram.org"

// Notifier delivers run reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier drops every message; used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) SendWithRetry(context.Context, string, int) error { return nil }

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Client   *resty.Client
	// Backoff returns the wait before retry attempt i (0-based).
	Backoff func(i int) time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	client := resty.New().
		SetBaseURL(telegramBaseURL).
		SetTimeout(30 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Client:   client,
		Backoff: func(i int) time.Duration {
			return time.Duration(1<<uint(i)) * time.Second
		},
	}
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	resp, err := t.Client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    t.ChatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.BotToken))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := t.Backoff(i)
		log.Warn().Err(err).Int("attempt", i+1).Int("of", maxRetries+1).Dur("backoff", backoff).Msg("telegram send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
