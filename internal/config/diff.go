package config

import (
	"slices"
	"strings"

	logx "diffreport/pkg/logx"
)

// SummarizeChange lists the config sections that differ between oldCfg and
// newCfg, plus log fields describing the new values. Secrets such as the bot
// token and webhook URLs are only reported as set or unset.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	var changed []string
	var attrs []logx.Field

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file", newCfg.Logging.File.Enabled),
		)
	}

	o, n := oldCfg.Report, newCfg.Report
	if o.Settings != n.Settings {
		changed = append(changed, "report")
		attrs = append(attrs,
			logx.String("report.html.diff", n.HTML.Diff),
			logx.Int("report.text.line_length", n.Text.LineLength),
			logx.Bool("report.display.unchanged", n.Display.Unchanged),
		)
	}
	if o.Stdout != n.Stdout {
		changed = append(changed, "report.stdout")
		attrs = append(attrs, logx.String("report.stdout.color", n.Stdout.Color))
	}
	if !sameTelegram(o.Telegram, n.Telegram) {
		changed = append(changed, "report.telegram")
		attrs = append(attrs,
			logx.Bool("report.telegram.token_set", strings.TrimSpace(n.Telegram.BotToken) != ""),
			logx.Int("report.telegram.chats", len(n.Telegram.ChatID)),
			logx.Bool("report.telegram.silent", n.Telegram.Silent),
		)
	}
	for _, wh := range []struct {
		name     string
		old, new WebhookConfig
	}{
		{"report.webhook", o.Webhook, n.Webhook},
		{"report.webhook_markdown", o.WebhookMarkdown, n.WebhookMarkdown},
	} {
		if wh.old != wh.new {
			changed = append(changed, wh.name)
			attrs = append(attrs, logx.Bool(wh.name+".url_set", strings.TrimSpace(wh.new.WebhookURL) != ""))
		}
	}
	if o.Matrix != n.Matrix || o.XMPP != n.XMPP || o.Pushover != n.Pushover || o.Pushbullet != n.Pushbullet ||
		o.Prowl != n.Prowl || o.Mailgun != n.Mailgun || o.IFTTT != n.IFTTT {
		changed = append(changed, "report.ceilings")
	}

	if oldCfg.Delivery != newCfg.Delivery {
		changed = append(changed, "delivery")
		attrs = append(attrs,
			logx.Int("delivery.rate_per_sec", newCfg.Delivery.RatePerSec),
			logx.Int("delivery.retry_max", newCfg.Delivery.RetryMax),
		)
	}
	return changed, attrs
}

func sameTelegram(a, b TelegramConfig) bool {
	if a.BotToken != b.BotToken || a.Silent != b.Silent || a.MaxMessageLength != b.MaxMessageLength || a.APIURL != b.APIURL {
		return false
	}
	return slices.Equal(a.ChatID, b.ChatID)
}
