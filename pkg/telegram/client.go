package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-watchlist/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxRetryAfter caps how long a flood-control response may stall a send.
const maxRetryAfter = 30 * time.Second

// Notifier posts run summaries to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type client struct {
	bot    sender
	chatID int64
	log    *logger.Logger
}

// NewClient logs in with botToken and posts to chatID.
func NewClient(botToken string, chatID int64, log *logger.Logger) (Notifier, error) {
	if chatID == 0 {
		return nil, errors.New("telegram chat id is not configured")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Info("Telegram notifier ready", logger.StringField("bot", bot.Self.UserName))
	return &client{bot: bot, chatID: chatID, log: log}, nil
}

// SendMessage posts a Markdown message without link previews. A flood-control
// reply is retried once after the advertised delay.
func (c *client) SendMessage(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	err := c.send(ctx, msg)
	wait, ok := retryAfter(err)
	if !ok {
		return err
	}

	c.log.WarnContext(ctx, "Telegram rate limited, retrying", logger.DurationField("retry_after", wait))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}
	return c.send(ctx, msg)
}

func (c *client) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func retryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 {
		return 0, false
	}
	wait := time.Duration(apiErr.RetryAfter) * time.Second
	if wait > maxRetryAfter {
		wait = maxRetryAfter
	}
	return wait, true
}
