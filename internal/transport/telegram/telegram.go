// Package telegram delivers report messages through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"diffreport/internal/transport"
	logx "diffreport/pkg/logx"
)

// MaxMessageLength is the Bot API ceiling for one text message.
const MaxMessageLength = 4096

type Config struct {
	Token   string
	ChatIDs []int64
	Silent  bool
	// URL overrides the Bot API endpoint. Empty uses api.telegram.org.
	URL     string
	Timeout time.Duration
}

// Sender posts MarkdownV2 messages to a fixed list of chats.
type Sender struct {
	bot   *tele.Bot
	chats []*tele.Chat
	opts  *tele.SendOptions
	log   logx.Logger
}

var _ transport.Sender = (*Sender)(nil)

// New builds an offline bot; no request is made until the first Send.
func New(cfg Config, log logx.Logger) (*Sender, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, transport.Unavailable("telegram", "bot token is empty")
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, transport.Unavailable("telegram", "no chat id configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		URL:     strings.TrimRight(cfg.URL, "/"),
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	chats := make([]*tele.Chat, 0, len(cfg.ChatIDs))
	for _, id := range cfg.ChatIDs {
		chats = append(chats, &tele.Chat{ID: id})
	}
	return &Sender{
		bot:   b,
		chats: chats,
		opts: &tele.SendOptions{
			ParseMode:             tele.ModeMarkdownV2,
			DisableWebPagePreview: true,
			DisableNotification:   cfg.Silent,
		},
		log: log.With(logx.String("channel", "telegram")),
	}, nil
}

// Send posts text to every configured chat, in order.
func (s *Sender) Send(ctx context.Context, text string) error {
	for _, chat := range s.chats {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := s.bot.Send(chat, text, s.opts); err != nil {
			s.log.Debug("telegram send failed", logx.Int64("chat_id", chat.ID), logx.Err(err))
			return fmt.Errorf("telegram chat %d: %w", chat.ID, err)
		}
	}
	return nil
}
