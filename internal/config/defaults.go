package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"diffreport/internal/channel"
	"diffreport/internal/notifier"
	"diffreport/internal/report"
	logx "diffreport/pkg/logx"
)

var ErrInvalid = errors.New("invalid config")

// Default returns the configuration used for keys a file omits.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Console: true},
		Report: ReportConfig{
			Settings: report.DefaultSettings(),
			Stdout:   StdoutConfig{Color: "auto"},
		},
		Delivery: DeliveryConfig{
			RatePerSec:    3,
			RetryMax:      2,
			RetryBase:     "500ms",
			RetryMaxDelay: "10s",
			SendTimeout:   "10s",
		},
	}
}

// Validate reports every problem found, joined into one error wrapping ErrInvalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level: unknown level %q", cfg.Logging.Level)
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add("logging.file.path: required when file logging is enabled")
	}

	r := cfg.Report
	switch r.HTML.Diff {
	case "", report.DiffUnified, report.DiffTable:
	default:
		add("report.html.diff: %v %q", report.ErrUnsupportedDiffStyle, r.HTML.Diff)
	}
	if r.Text.LineLength < 0 {
		add("report.text.line_length: must be >= 0")
	}
	switch r.Stdout.Color {
	case "", "auto", "always", "never":
	default:
		add("report.stdout.color: want auto, always or never, got %q", r.Stdout.Color)
	}
	for name, n := range map[string]int{
		"telegram":         r.Telegram.MaxMessageLength,
		"webhook":          r.Webhook.MaxMessageLength,
		"webhook_markdown": r.WebhookMarkdown.MaxMessageLength,
		"matrix":           r.Matrix.MaxMessageLength,
		"xmpp":             r.XMPP.MaxMessageLength,
		"pushover":         r.Pushover.MaxMessageLength,
		"pushbullet":       r.Pushbullet.MaxMessageLength,
		"prowl":            r.Prowl.MaxMessageLength,
		"mailgun":          r.Mailgun.MaxMessageLength,
		"ifttt":            r.IFTTT.MaxMessageLength,
	} {
		if n < 0 {
			add("report.%s.max_message_length: must be >= 0", name)
		}
	}

	if cfg.Delivery.RetryMax < 0 {
		add("delivery.retry_max: must be >= 0")
	}
	if _, err := cfg.Delivery.Notifier(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

func (l LoggingConfig) Logx() logx.Config {
	return logx.Config{
		Level:   l.Level,
		Console: l.Console,
		File:    logx.FileConfig{Enabled: l.File.Enabled, Path: l.File.Path},
	}
}

// Notifier converts the delivery block, applying defaults for empty durations.
func (d DeliveryConfig) Notifier() (notifier.Config, error) {
	base, err := ParseDurationOrDefault("delivery.retry_base", d.RetryBase, 500*time.Millisecond)
	if err != nil {
		return notifier.Config{}, err
	}
	maxDelay, err := ParseDurationOrDefault("delivery.retry_max_delay", d.RetryMaxDelay, 10*time.Second)
	if err != nil {
		return notifier.Config{}, err
	}
	timeout, err := ParseDurationOrDefault("delivery.send_timeout", d.SendTimeout, 10*time.Second)
	if err != nil {
		return notifier.Config{}, err
	}
	return notifier.Config{
		RatePerSec:    d.RatePerSec,
		RetryMax:      d.RetryMax,
		RetryBase:     base,
		RetryMaxDelay: maxDelay,
		SendTimeout:   timeout,
	}, nil
}

// ChannelSettings returns the ceiling override and endpoint configured for k.
func (r ReportConfig) ChannelSettings(k channel.Kind) channel.Settings {
	switch k {
	case channel.Telegram:
		return channel.Settings{MaxLength: r.Telegram.MaxMessageLength}
	case channel.Webhook:
		return channel.Settings{MaxLength: r.Webhook.MaxMessageLength, WebhookURL: r.Webhook.WebhookURL}
	case channel.WebhookMarkdown:
		return channel.Settings{MaxLength: r.WebhookMarkdown.MaxMessageLength, WebhookURL: r.WebhookMarkdown.WebhookURL}
	case channel.Matrix:
		return channel.Settings{MaxLength: r.Matrix.MaxMessageLength}
	case channel.XMPP:
		return channel.Settings{MaxLength: r.XMPP.MaxMessageLength}
	case channel.Pushover:
		return channel.Settings{MaxLength: r.Pushover.MaxMessageLength}
	case channel.Pushbullet:
		return channel.Settings{MaxLength: r.Pushbullet.MaxMessageLength}
	case channel.Prowl:
		return channel.Settings{MaxLength: r.Prowl.MaxMessageLength}
	case channel.Mailgun:
		return channel.Settings{MaxLength: r.Mailgun.MaxMessageLength}
	case channel.IFTTT:
		return channel.Settings{MaxLength: r.IFTTT.MaxMessageLength}
	default:
		return channel.Settings{}
	}
}
