// Package channel describes the delivery channels a report can be rendered
// for and turns a report into the messages of one channel.
package channel

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownChannel = errors.New("channel: unknown channel")

// Kind is a delivery channel.
type Kind int

const (
	Stdout Kind = iota
	Email
	Browser
	Telegram
	Webhook
	WebhookMarkdown
	Matrix
	XMPP
	Pushover
	Pushbullet
	Prowl
	Mailgun
	IFTTT
)

// Format is the report flavour a channel consumes.
type Format int

const (
	FormatText Format = iota
	FormatMarkdown
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	default:
		return "text"
	}
}

// Strategy is how a rendered report is fitted to the channel ceiling.
type Strategy int

const (
	// Whole sends the report as a single message.
	Whole Strategy = iota
	// EscapeChunk escapes for MarkdownV2 and splits on lines.
	EscapeChunk
	// NumberedChunk splits on lines and prefixes "(i/N) ".
	NumberedChunk
	// BudgetOnly fits the Markdown report itself to the ceiling.
	BudgetOnly
	// Truncate cuts the text at the ceiling.
	Truncate
	// PerJob sends one short message per visible job.
	PerJob
)

func (s Strategy) String() string {
	switch s {
	case EscapeChunk:
		return "escape+chunk"
	case NumberedChunk:
		return "numbered chunk"
	case BudgetOnly:
		return "budget"
	case Truncate:
		return "truncate"
	case PerJob:
		return "per job"
	default:
		return "whole"
	}
}

// Spec is the static description of a channel. A zero Ceiling means the
// channel has no length limit.
type Spec struct {
	Kind     Kind
	Name     string
	Format   Format
	Ceiling  int
	Strategy Strategy
	Doc      string
}

const (
	discordCeiling = 2000
	webhookCeiling = 40000
)

var specs = [...]Spec{
	Stdout:          {Stdout, "stdout", FormatText, 0, Whole, "Print summary on stdout (the console)"},
	Email:           {Email, "email", FormatText, 0, Whole, "Send summary via e-mail"},
	Browser:         {Browser, "browser", FormatHTML, 0, Whole, "Display HTML summary using the default web browser"},
	Telegram:        {Telegram, "telegram", FormatMarkdown, 4096, EscapeChunk, "Send a Markdown message using Telegram"},
	Webhook:         {Webhook, "webhook", FormatText, webhookCeiling, NumberedChunk, "Send a text message to a webhook such as Slack or Discord"},
	WebhookMarkdown: {WebhookMarkdown, "webhook_markdown", FormatMarkdown, webhookCeiling, NumberedChunk, "Send a Markdown message to a webhook such as Mattermost"},
	Matrix:          {Matrix, "matrix", FormatMarkdown, 16384, BudgetOnly, "Send a message to a room using the Matrix protocol"},
	XMPP:            {XMPP, "xmpp", FormatText, 262144, NumberedChunk, "Send a message using the XMPP protocol"},
	Pushover:        {Pushover, "pushover", FormatText, 1024, Truncate, "Send summary via pushover.net"},
	Pushbullet:      {Pushbullet, "pushbullet", FormatText, 1024, Truncate, "Send summary via pushbullet.com"},
	Prowl:           {Prowl, "prowl", FormatText, 10000, Truncate, "Send a detailed notification via prowlapp.com"},
	Mailgun:         {Mailgun, "mailgun", FormatText, 0, Whole, "Send e-mail via the Mailgun service"},
	IFTTT:           {IFTTT, "ifttt", FormatText, 0, PerJob, "Send summary via IFTTT"},
}

// All returns the channel table in declaration order.
func All() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs[:])
	return out
}

// Spec returns the table entry of k.
func (k Kind) Spec() (Spec, bool) {
	if k < 0 || int(k) >= len(specs) {
		return Spec{}, false
	}
	return specs[k], true
}

func (k Kind) String() string {
	if s, ok := k.Spec(); ok {
		return s.Name
	}
	return fmt.Sprintf("channel(%d)", int(k))
}

// ParseKind looks a channel up by name. "slack" is accepted as an alias of
// "webhook".
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "slack" {
		return Webhook, nil
	}
	for _, s := range specs {
		if s.Name == n {
			return s.Kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// Settings are the per-channel options that affect rendering.
type Settings struct {
	// MaxLength overrides the table ceiling when positive.
	MaxLength  int
	WebhookURL string
}

// CeilingFor returns the effective ceiling of s under set. Webhooks pointing
// at Discord default to Discord's smaller limit.
func (s Spec) CeilingFor(set Settings) int {
	if set.MaxLength > 0 {
		return set.MaxLength
	}
	if s.Kind == Webhook || s.Kind == WebhookMarkdown {
		if IsDiscord(set.WebhookURL) {
			return discordCeiling
		}
	}
	return s.Ceiling
}

// IsDiscord reports whether url is a Discord webhook endpoint.
func IsDiscord(url string) bool {
	return strings.HasPrefix(url, "https://discordapp.com/") || strings.HasPrefix(url, "https://discord.com/")
}
