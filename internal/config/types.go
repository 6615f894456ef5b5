package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"diffreport/internal/report"
)

type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Report   ReportConfig   `json:"report"`
	Delivery DeliveryConfig `json:"delivery"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ReportConfig holds the shared report settings (display, html, text,
// markdown) plus one block per delivery channel.
type ReportConfig struct {
	report.Settings

	Stdout          StdoutConfig   `json:"stdout"`
	Telegram        TelegramConfig `json:"telegram"`
	Webhook         WebhookConfig  `json:"webhook"`
	WebhookMarkdown WebhookConfig  `json:"webhook_markdown"`

	// Channels without a sender in this build only carry a ceiling override.
	Matrix     ChannelConfig `json:"matrix"`
	XMPP       ChannelConfig `json:"xmpp"`
	Pushover   ChannelConfig `json:"pushover"`
	Pushbullet ChannelConfig `json:"pushbullet"`
	Prowl      ChannelConfig `json:"prowl"`
	Mailgun    ChannelConfig `json:"mailgun"`
	IFTTT      ChannelConfig `json:"ifttt"`
}

type StdoutConfig struct {
	// Color is "auto", "always" or "never".
	Color string `json:"color"`
}

type TelegramConfig struct {
	BotToken         string  `json:"bot_token"`
	ChatID           ChatIDs `json:"chat_id"`
	Silent           bool    `json:"silent"`
	MaxMessageLength int     `json:"max_message_length,omitempty"`
	// APIURL overrides the Bot API endpoint (self-hosted bot API servers).
	APIURL string `json:"api_url,omitempty"`
}

type WebhookConfig struct {
	WebhookURL       string `json:"webhook_url"`
	MaxMessageLength int    `json:"max_message_length,omitempty"`
}

type ChannelConfig struct {
	MaxMessageLength int `json:"max_message_length,omitempty"`
}

// DeliveryConfig controls pacing and retry of channel sends.
//
// All durations are Go duration strings (e.g. "500ms", "10s").
type DeliveryConfig struct {
	RatePerSec    int    `json:"rate_per_sec"`
	RetryMax      int    `json:"retry_max"`
	RetryBase     string `json:"retry_base"`
	RetryMaxDelay string `json:"retry_max_delay"`
	SendTimeout   string `json:"send_timeout,omitempty"`
}

// ChatIDs accepts a single chat id or a list, each either a number or a
// numeric string.
type ChatIDs []int64

func (c *ChatIDs) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = nil
		return nil
	}
	var raw []json.RawMessage
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	} else {
		raw = []json.RawMessage{b}
	}
	out := make(ChatIDs, 0, len(raw))
	for _, r := range raw {
		id, err := parseChatID(r)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*c = out
	return nil
}

func parseChatID(r json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(r, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(r, &s); err != nil {
		return 0, fmt.Errorf("chat_id: want number or string, got %s", r)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat_id: invalid id %q", s)
	}
	return n, nil
}
