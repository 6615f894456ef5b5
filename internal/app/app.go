// Package app wires configuration, logging, report rendering and delivery
// into the diffreport command line.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"diffreport/internal/config"
	"diffreport/internal/eventbus"
	"diffreport/internal/render"
	"diffreport/internal/report"
	logx "diffreport/pkg/logx"
)

// Version is stamped at build time with -ldflags "-X diffreport/internal/app.Version=...".
var Version = "dev"

type App struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	cfgPath  string
	logLevel string

	cfgm *config.Manager
	cfg  *config.Config
	logs *logx.Service
	log  logx.Logger
	bus  eventbus.Bus
}

func New(stdin io.Reader, stdout, stderr io.Writer) *App {
	return &App{stdin: stdin, stdout: stdout, stderr: stderr, bus: eventbus.New()}
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "diffreport",
		Short: "Render change reports and deliver them to notification channels",
		Long: `diffreport turns the results of a change-detection run into HTML, text
and Markdown reports, and fits them to the message limits of chat and
notification services.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "", "config file (JSON or YAML)")
	pf.StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		a.renderCommand(),
		a.chunkCommand(),
		a.channelCommand(),
		a.watchCommand(),
		a.channelsCommand(),
	)
	return root
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := New(stdin, stdout, stderr)
	root := a.Command()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "diffreport:", err)
		return 1
	}
	return 0
}

func (a *App) setup() error {
	cfg := config.Default()
	if a.cfgPath != "" {
		a.cfgm = config.NewManager(a.cfgPath, logx.Logger{})
		loaded, err := a.cfgm.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = *loaded
	}
	a.cfg = &cfg

	logCfg := cfg.Logging.Logx()
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	a.logs, a.log = logx.NewService(logCfg)
	a.log = a.log.With(logx.String("comp", "app"))
	if a.cfgm != nil {
		a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	}
	a.log.Debug("config ready", logx.String("path", a.cfgPath))
	return nil
}

func (a *App) close() {
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

// applyConfig swaps in a reloaded config and its logging settings.
func (a *App) applyConfig(cfg *config.Config) {
	a.cfg = cfg
	logCfg := cfg.Logging.Logx()
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	if a.logs != nil {
		a.logs.Apply(logCfg)
	}
}

func (a *App) project() report.Project {
	return report.Project{Name: "diffreport", Version: Version}
}

// loadReport reads a report document and attaches the current settings.
func (a *App) loadReport(path string) (report.Report, error) {
	data, name, err := readInput(path, a.stdin)
	if err != nil {
		return report.Report{}, err
	}
	r, err := decodeReport(name, data, a.cfg.Report.Settings)
	if err != nil {
		return report.Report{}, err
	}
	r.Project = a.project()
	r.Log = a.log.With(logx.String("comp", "report"))
	return r, nil
}

// console colours text for stdout according to report.stdout.color.
func (a *App) console() *render.Console {
	return render.NewConsole(a.stdout, colorEnabled(a.cfg.Report.Stdout.Color, a.stdout))
}

func colorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
