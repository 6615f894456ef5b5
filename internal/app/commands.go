package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"diffreport/internal/channel"
	"diffreport/internal/config"
	"diffreport/internal/eventbus"
	"diffreport/internal/notifier"
	"diffreport/internal/report"
	"diffreport/internal/runtime/supervisor"
	"diffreport/pkg/budget"
	"diffreport/pkg/chunk"
	logx "diffreport/pkg/logx"
	"diffreport/pkg/mdconv"
)

var ErrUnknownFormat = errors.New("unknown report format")

const (
	formatHTML     = "html"
	formatText     = "text"
	formatMarkdown = "markdown"
)

func (a *App) renderCommand() *cobra.Command {
	var (
		input     string
		format    string
		maxLength int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report as HTML, text or Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.loadReport(input)
			if err != nil {
				return err
			}
			return a.writeReport(r, format, maxLength)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "report document (JSON or YAML, - for stdin)")
	f.StringVarP(&format, "format", "f", formatText, "output format: html, text or markdown")
	f.IntVar(&maxLength, "max-length", 0, "Markdown length ceiling in characters (0 for none)")
	return cmd
}

// formatReport renders r in the named format.
func formatReport(r report.Report, format string, maxLength int) (string, error) {
	switch strings.ToLower(format) {
	case formatHTML:
		parts, err := report.HTMLDocument(r)
		if err != nil {
			return "", err
		}
		return joinLines(parts), nil
	case formatText, "":
		return joinLines(report.Text(r)), nil
	case formatMarkdown, "md":
		limit := budget.Unlimited()
		if maxLength > 0 {
			limit = budget.MaxLength(maxLength)
		}
		return joinLines(report.Markdown(r, limit)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (a *App) writeReport(r report.Report, format string, maxLength int) error {
	out, err := formatReport(r, format, maxLength)
	if err != nil {
		return err
	}
	if out == "" {
		a.log.Info("nothing to report", logx.Int("states", len(r.States)))
		return nil
	}
	if strings.EqualFold(format, formatText) {
		wordDiff := false
		for s := range r.Visible() {
			wordDiff = wordDiff || s.Job.WordDiff()
		}
		var b strings.Builder
		for line := range a.console().Lines(out, r.Settings.Text.LineLength, wordDiff) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		_, err = io.WriteString(a.stdout, b.String())
		return err
	}
	_, err = io.WriteString(a.stdout, out+"\n")
	return err
}

func joinLines(seq iter.Seq[string]) string {
	return strings.Join(slices.Collect(seq), "\n")
}

func (a *App) chunkCommand() *cobra.Command {
	var (
		input     string
		maxLength int
		numbered  bool
		escape    bool
	)
	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Split text into messages that fit a length ceiling",
		Long: `chunk splits text on line boundaries into messages of at most
--max-length characters, keeping fenced code blocks balanced in every
message. Messages are separated by a form feed line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, _, err := readInput(input, a.stdin)
			if err != nil {
				return err
			}
			msgs, err := chunkText(string(data), maxLength, numbered, escape)
			if err != nil {
				return err
			}
			a.log.Debug("chunked", logx.Int("messages", len(msgs)), logx.Int("max_length", maxLength))
			return writeMessages(a.stdout, msgs)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "text file (- for stdin)")
	f.IntVar(&maxLength, "max-length", 0, "message ceiling in characters")
	f.BoolVar(&numbered, "numbered", false, `prefix messages with "(i/N) "`)
	f.BoolVar(&escape, "escape", false, "escape for Telegram MarkdownV2 before splitting")
	_ = cmd.MarkFlagRequired("max-length")
	return cmd
}

func chunkText(text string, maxLength int, numbered, escape bool) ([]string, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("--max-length must be positive, got %d", maxLength)
	}
	if escape {
		var err error
		if text, err = mdconv.Escape(text, mdconv.V2, mdconv.Text); err != nil {
			return nil, err
		}
	}
	if !numbered {
		return slices.Collect(chunk.Split(text, maxLength)), nil
	}
	var out []string
	for _, c := range chunk.Numbered(text, maxLength) {
		out = append(out, c.Text)
	}
	return out, nil
}

func (a *App) channelCommand() *cobra.Command {
	var (
		input string
		send  bool
	)
	cmd := &cobra.Command{
		Use:   "channel CHANNEL",
		Short: "Render the messages a channel would receive, optionally sending them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := channel.ParseKind(args[0])
			if err != nil {
				return err
			}
			r, err := a.loadReport(input)
			if err != nil {
				return err
			}
			msgs, err := channel.Render(k, r, a.cfg.Report.ChannelSettings(k))
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				a.log.Info("nothing to report", logx.String("channel", k.String()))
				return nil
			}
			if !send {
				return writeMessages(a.stdout, msgs)
			}
			return a.deliver(cmd.Context(), k, msgs)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "report document (JSON or YAML, - for stdin)")
	f.BoolVar(&send, "send", false, "deliver the messages through the channel")
	return cmd
}

func (a *App) deliver(ctx context.Context, k channel.Kind, msgs []string) error {
	log := a.log.With(logx.String("channel", k.String()))
	s, err := newSender(k, a.cfg, a.console(), a.stdout, log)
	if err != nil {
		return err
	}
	nc, err := a.cfg.Delivery.Notifier()
	if err != nil {
		return err
	}

	events, unsub := a.bus.Subscribe(len(msgs) + 1)
	defer unsub()

	d := notifier.New(nc, log.With(logx.String("comp", "notifier")), a.bus)
	res, err := d.Deliver(ctx, k.String(), s, msgs)
	logEvents(log, events)
	if err != nil {
		return err
	}
	log.Info("report delivered", logx.Int("sent", res.Sent), logx.Int("skipped", res.Skipped))
	return nil
}

// logEvents drains what the dispatcher published during one delivery.
func logEvents(log logx.Logger, events <-chan eventbus.Event) {
	for {
		select {
		case e := <-events:
			ev, ok := e.Data.(notifier.NotificationEvent)
			if !ok {
				continue
			}
			log.Debug(e.Type,
				logx.Int("chunk", ev.Chunk),
				logx.Int("total", ev.Total),
				logx.Int("attempts", ev.Attempts),
				logx.String("error", ev.Error),
			)
		default:
			return
		}
	}
}

func (a *App) watchCommand() *cobra.Command {
	var (
		input     string
		format    string
		maxLength int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render a report whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfgm == nil {
				return errors.New("watch needs --config")
			}
			if input == "-" || input == "" {
				return errors.New("watch needs --input FILE")
			}
			return a.watch(cmd.Context(), input, format, maxLength)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "report document (JSON or YAML)")
	f.StringVarP(&format, "format", "f", formatText, "output format: html, text or markdown")
	f.IntVar(&maxLength, "max-length", 0, "Markdown length ceiling in characters (0 for none)")
	return cmd
}

func (a *App) watch(ctx context.Context, input, format string, maxLength int) error {
	rerender := func() error {
		r, err := a.loadReport(input)
		if err != nil {
			return err
		}
		return a.writeReport(r, format, maxLength)
	}
	if err := rerender(); err != nil {
		return err
	}

	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	sup := supervisor.New(ctx, supervisor.WithCancelOnError(true), supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))
	sup.Go("config-watch", a.cfgm.Watch)
	sup.Go("rerender", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case cfg, ok := <-sub:
				if !ok {
					return nil
				}
				changed, attrs := config.SummarizeChange(a.cfg, cfg)
				a.applyConfig(cfg)
				a.log.Info("config reloaded", append(attrs, logx.String("sections", strings.Join(changed, ",")))...)
				if _, err := io.WriteString(a.stdout, messageSeparator+"\n"); err != nil {
					return err
				}
				if err := rerender(); err != nil {
					a.log.Warn("render failed", logx.Err(err))
				}
			}
		}
	})
	return sup.Wait(context.WithoutCancel(ctx))
}

func (a *App) channelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the delivery channels and their message limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(a.stdout, channelTable(a.cfg)+"\n")
			return err
		},
	}
}

func channelTable(cfg *config.Config) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CHANNEL", "FORMAT", "LIMIT", "FITTING", "DESCRIPTION")
	for _, s := range channel.All() {
		limit := "-"
		if n := s.CeilingFor(cfg.Report.ChannelSettings(s.Kind)); n > 0 {
			limit = strconv.Itoa(n)
		}
		t.Row(s.Name, s.Format.String(), limit, s.Strategy.String(), s.Doc)
	}
	return t.String()
}
