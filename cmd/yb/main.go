// Command yb is a terminal dashboard for a yak task store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/yakboard/pkg/config"
	"github.com/vanderheijden86/yakboard/pkg/loader"
	"github.com/vanderheijden86/yakboard/pkg/logging"
	"github.com/vanderheijden86/yakboard/pkg/tmux"
	"github.com/vanderheijden86/yakboard/pkg/ui"
	"github.com/vanderheijden86/yakboard/pkg/version"
	"github.com/vanderheijden86/yakboard/pkg/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, NewRoot(), fang.WithVersion(version.String())); err != nil {
		os.Exit(1)
	}
}

// runTUI runs the dashboard program. Tests replace it.
var runTUI = func(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	dir        string
	configPath string
	logLevel   string
	getenv     func(string) string
	getwd      func() (string, error)
}

// loadConfig reads the config file, then applies the environment and flags.
func (o *globalOptions) loadConfig() (config.Config, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			log.Debug("no user config dir", "err", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(o.getenv)
	if o.dir != "" {
		cfg.StoreDir = o.dir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// openStore resolves the store root for cfg from the working directory.
func (o *globalOptions) openStore(cfg config.Config) (*loader.Store, error) {
	cwd, err := o.getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return loader.NewStore(cfg.ResolveStoreDir(cwd)), nil
}

// NewRoot builds the yb command tree.
func NewRoot() *cobra.Command {
	opts := &globalOptions{getenv: os.Getenv, getwd: os.Getwd}

	root := &cobra.Command{
		Use:   "yb",
		Short: "Live tree dashboard for a .yaks task store",
		Long: strings.TrimSpace(`
yb shows the tasks in a .yaks directory as a tree, refreshed every couple of
seconds and whenever the store changes on disk.

Keys: j/k or arrows move, e edits the task's context.md, enter pages it,
y copies the task id, r refreshes, ? shows all keys, q quits.`),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := opts.logLevel
			if level == "" {
				level = opts.getenv("YB_LOG_LEVEL")
			}
			if _, err := logging.Setup(logging.Options{Level: level, Stderr: cmd.ErrOrStderr()}); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "d", "", "task store directory (default: nearest .yaks)")
	flags.StringVar(&opts.configPath, "config", "", "config file (default: ~/.config/yakboard/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		TreeCmd(opts),
		ShowCmd(opts),
		ExportMarkdownCmd(opts),
		InitCmd(opts),
		StoresCmd(opts),
		ConfigCmd(opts),
		VersionCmd(),
	)
	return root
}

// runDashboard wires config, logging, store, watcher and host into the TUI.
func runDashboard(ctx context.Context, opts *globalOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = logging.DefaultFile()
	}
	closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: logFile})
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := opts.openStore(cfg)
	if err != nil {
		return err
	}
	log.Info("starting dashboard", "store", store.Root(), "interval", cfg.RefreshInterval, "watch", cfg.Watch)

	host := ui.NewTerminalHost(ui.HostOptions{
		Editor:  cfg.EditorCommand(),
		UseTmux: tmux.InSession(),
	})
	widget := ui.NewWidget(store, host, ui.WidgetOptions{
		RefreshInterval: cfg.RefreshInterval,
		Pager:           cfg.PagerCommand(),
		HighlightColor:  cfg.HighlightColor,
	})
	widget.Load()

	var changes <-chan struct{}
	if cfg.Watch && store.Exists() {
		if sw := startWatcher(ctx, store.Root()); sw != nil {
			defer sw.Stop()
			changes = sw.Changed()
		}
	}

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())
	return runTUI(ctx, ui.NewModel(widget, host, theme, changes))
}

// startWatcher returns nil when the store cannot be watched; the periodic
// refresh still picks up changes.
func startWatcher(ctx context.Context, root string) *watcher.StoreWatcher {
	sw, err := watcher.New(root, watcher.DefaultDebounceDuration)
	if err != nil {
		log.Warn("file watching disabled", "err", err)
		return nil
	}
	if err := sw.Start(ctx); err != nil {
		log.Warn("file watching disabled", "root", root, "err", err)
		sw.Stop()
		return nil
	}
	log.Debug("watching store", "dirs", len(sw.WatchedDirs()))
	return sw
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
