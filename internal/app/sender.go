package app

import (
	"context"
	"io"
	"strings"

	"diffreport/internal/channel"
	"diffreport/internal/config"
	"diffreport/internal/render"
	"diffreport/internal/transport"
	"diffreport/internal/transport/telegram"
	"diffreport/internal/transport/webhook"
	logx "diffreport/pkg/logx"
)

// newSender maps a channel to its transport. Channels without a client in
// this build return a wrapped transport.ErrUnavailable.
func newSender(k channel.Kind, cfg *config.Config, console *render.Console, out io.Writer, log logx.Logger) (transport.Sender, error) {
	r := cfg.Report
	switch k {
	case channel.Stdout:
		lineLength := r.Text.LineLength
		return transport.SenderFunc(func(ctx context.Context, text string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var b strings.Builder
			for line := range console.Lines(text, lineLength, false) {
				b.WriteString(line)
				b.WriteByte('\n')
			}
			_, err := io.WriteString(out, b.String())
			return err
		}), nil
	case channel.Telegram:
		s, err := telegram.New(telegram.Config{
			Token:   r.Telegram.BotToken,
			ChatIDs: r.Telegram.ChatID,
			Silent:  r.Telegram.Silent,
			URL:     r.Telegram.APIURL,
		}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case channel.Webhook, channel.WebhookMarkdown:
		wc := r.Webhook
		if k == channel.WebhookMarkdown {
			wc = r.WebhookMarkdown
		}
		field := webhook.DefaultField
		if channel.IsDiscord(wc.WebhookURL) {
			field = "content"
		}
		s, err := webhook.New(webhook.Config{URL: wc.WebhookURL, Field: field}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, transport.Unavailable(k.String(), "no client in this build")
	}
}
