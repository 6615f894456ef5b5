package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"diffreport/internal/channel"
	logx "diffreport/pkg/logx"
)

func TestDecodeYAMLOverDefaults(t *testing.T) {
	t.Parallel()

	src := `
logging:
  level: debug
report:
  display:
    unchanged: true
  html:
    diff: table
  text:
    line_length: 60
  telegram:
    bot_token: "123:abc"
    chat_id: [100, "-200"]
    silent: true
  webhook:
    webhook_url: https://hooks.slack.com/services/x
delivery:
  retry_max: 5
`
	cfg, err := Decode("urlwatch.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging=%+v want debug with console default kept", cfg.Logging)
	}
	d := cfg.Report.Display
	if !d.New || !d.Changed || !d.Unchanged || !d.Error {
		t.Fatalf("display=%+v want defaults plus unchanged", d)
	}
	if cfg.Report.HTML.Diff != "table" || cfg.Report.Text.LineLength != 60 || !cfg.Report.Text.Footer {
		t.Fatalf("report=%+v", cfg.Report.Settings)
	}
	if !slices.Equal(cfg.Report.Telegram.ChatID, ChatIDs{100, -200}) || !cfg.Report.Telegram.Silent {
		t.Fatalf("telegram=%+v", cfg.Report.Telegram)
	}
	if cfg.Delivery.RetryMax != 5 || cfg.Delivery.RetryBase != "500ms" {
		t.Fatalf("delivery=%+v", cfg.Delivery)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	cfg, err := Decode("c.json", []byte(`{"report":{"telegram":{"chat_id":42}}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !slices.Equal(cfg.Report.Telegram.ChatID, ChatIDs{42}) {
		t.Fatalf("chat ids=%v want [42]", cfg.Report.Telegram.ChatID)
	}
}

func TestDecodeEmptyIsDefault(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.yaml", "a.json"} {
		cfg, err := Decode(name, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !reflect.DeepEqual(*cfg, Default()) {
			t.Fatalf("%s: got %+v want defaults", name, cfg)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, path, src string
	}{
		{"unknown key", "c.yaml", "report:\n  colour: red\n"},
		{"unknown top level", "c.json", `{"plugins":{}}`},
		{"trailing data", "c.json", `{} {}`},
		{"bad yaml", "c.yml", "report: [\n"},
		{"bad chat id", "c.json", `{"report":{"telegram":{"chat_id":"abc"}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode(tc.path, []byte(tc.src)); err == nil {
				t.Fatalf("expected error for %q", tc.src)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"diff style", func(c *Config) { c.Report.HTML.Diff = "side-by-side" }, "report.html.diff"},
		{"line length", func(c *Config) { c.Report.Text.LineLength = -1 }, "line_length"},
		{"color", func(c *Config) { c.Report.Stdout.Color = "rainbow" }, "report.stdout.color"},
		{"ceiling", func(c *Config) { c.Report.Matrix.MaxMessageLength = -5 }, "report.matrix.max_message_length"},
		{"duration", func(c *Config) { c.Delivery.RetryBase = "soon" }, "delivery.retry_base"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log file", func(c *Config) { c.Logging.File.Enabled = true }, "logging.file.path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)
			err := Validate(&cfg)
			if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want ErrInvalid mentioning %q", err, tc.want)
			}
		})
	}
}

func TestDeliveryNotifier(t *testing.T) {
	t.Parallel()

	nc, err := DeliveryConfig{RatePerSec: 7, RetryMax: 1, RetryBase: "50ms"}.Notifier()
	if err != nil {
		t.Fatalf("Notifier: %v", err)
	}
	if nc.RatePerSec != 7 || nc.RetryMax != 1 || nc.RetryBase != 50*time.Millisecond || nc.RetryMaxDelay != 10*time.Second {
		t.Fatalf("notifier config=%+v", nc)
	}
}

func TestChannelSettings(t *testing.T) {
	t.Parallel()

	r := Default().Report
	r.Telegram.MaxMessageLength = 1000
	r.Webhook.WebhookURL = "https://discord.com/api/webhooks/1"
	r.XMPP.MaxMessageLength = 300

	if got := r.ChannelSettings(channel.Telegram); got.MaxLength != 1000 {
		t.Fatalf("telegram=%+v", got)
	}
	webhook, _ := channel.Webhook.Spec()
	if got := r.ChannelSettings(channel.Webhook); got.WebhookURL == "" || webhook.CeilingFor(got) != 2000 {
		t.Fatalf("webhook=%+v", got)
	}
	if got := r.ChannelSettings(channel.XMPP); got.MaxLength != 300 {
		t.Fatalf("xmpp=%+v", got)
	}
	if got := r.ChannelSettings(channel.Stdout); got != (channel.Settings{}) {
		t.Fatalf("stdout=%+v", got)
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", time.Second, false},
		{"0s", time.Second, false},
		{" 250ms ", 250 * time.Millisecond, false},
		{"-1s", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseDurationOrDefault("x", tc.raw, time.Second)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("raw=%q got=(%v,%v) want=(%v,err=%v)", tc.raw, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestSummarizeChangeHidesSecrets(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	b.Report.Telegram.BotToken = "123:secret"
	b.Delivery.RetryMax = 9

	changed, attrs := SummarizeChange(&a, &b)
	if !slices.Equal(changed, []string{"report.telegram", "delivery"}) {
		t.Fatalf("changed=%v", changed)
	}
	if len(attrs) == 0 {
		t.Fatalf("expected log fields")
	}
	if c, _ := SummarizeChange(&a, &a); len(c) != 0 {
		t.Fatalf("identical configs reported changes: %v", c)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestManagerLoadAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "report:\n  text:\n    line_length: 40\n")

	m := NewManager(path, logx.Logger{})
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Report.Text.LineLength != 40 || m.Get() != cfg {
		t.Fatalf("loaded=%+v", cfg.Report.Text)
	}

	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	if ok, err := m.Reload(context.Background()); ok || err != nil {
		t.Fatalf("unchanged reload ok=%v err=%v", ok, err)
	}

	writeFile(t, path, "report:\n  html:\n    diff: nope\n")
	if ok, err := m.Reload(context.Background()); ok || err == nil {
		t.Fatalf("invalid reload ok=%v err=%v want rejection", ok, err)
	}
	if m.Get() != cfg {
		t.Fatalf("rejected config was committed")
	}

	writeFile(t, path, "report:\n  text:\n    line_length: 90\n")
	ok, err := m.Reload(context.Background())
	if !ok || err != nil {
		t.Fatalf("reload ok=%v err=%v", ok, err)
	}
	select {
	case got := <-sub:
		if got.Report.Text.LineLength != 90 {
			t.Fatalf("published=%+v", got.Report.Text)
		}
	default:
		t.Fatalf("nothing published")
	}
}

func TestManagerLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"delivery":{"retry_max":-1}}`)
	if _, err := NewManager(path, logx.Logger{}).Load(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err=%v want ErrInvalid", err)
	}
}

func TestPublishKeepsLatest(t *testing.T) {
	t.Parallel()

	m := NewManager("unused.json", logx.Logger{})
	sub := m.Subscribe(1)
	first, second := &Config{}, &Config{}
	m.publish(first)
	m.publish(second)
	if got := <-sub; got != second {
		t.Fatalf("subscriber should see the latest config")
	}
	m.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatalf("unsubscribed channel should be closed")
	}
}

func TestWatchPublishesOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{}`)

	m := NewManager(path, logx.Logger{})
	m.debounce = 10 * time.Millisecond
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	sub := m.Subscribe(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-sub:
			if got.Delivery.RetryMax != 4 {
				t.Fatalf("published=%+v", got.Delivery)
			}
			return
		case <-tick.C:
			// rewrite until the watcher is up and sees it
			writeFile(t, path, `{"delivery":{"retry_max":4}}`)
		case <-deadline:
			t.Fatalf("no config published after file change")
		}
	}
}
