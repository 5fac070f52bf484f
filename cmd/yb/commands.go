package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/yakboard/pkg/config"
	"github.com/vanderheijden86/yakboard/pkg/export"
	"github.com/vanderheijden86/yakboard/pkg/loader"
	"github.com/vanderheijden86/yakboard/pkg/model"
	"github.com/vanderheijden86/yakboard/pkg/ui"
	"github.com/vanderheijden86/yakboard/pkg/version"
)

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
var terminalWidth = func() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// confirm asks a yes/no question on the terminal.
var confirm = func(title string) (bool, error) {
	ok := true
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Create").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

// loadTree reads and lays out every task in an existing store.
func loadTree(opts *globalOptions) (*loader.Store, []model.Task, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := opts.openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Check(); err != nil {
		return nil, nil, err
	}
	return store, ui.BuildLayout(store.LoadAll()), nil
}

func TreeCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the task tree once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, tasks, err := loadTree(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return export.WriteTreeJSON(out, store.Root(), tasks)
			}
			if len(tasks) == 0 {
				printf(out, "No tasks in %s\n", store.Root())
				return nil
			}
			if width == 0 {
				width = terminalWidth()
			}
			clip := lipgloss.NewStyle().MaxWidth(width)
			for _, task := range tasks {
				line := ui.RenderTask(task)
				if width > 0 {
					line = clip.Render(line)
				}
				printf(out, "%s\n", line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the laid-out tree as JSON")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "clip lines to this many cells (default: terminal width)")
	return cmd
}

func ShowCmd(opts *globalOptions) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "show <task-path>",
		Short: "Render a task's context.md",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := loadTree(opts)
			if err != nil {
				return err
			}
			path := filepath.ToSlash(filepath.Clean(args[0]))
			if filepath.IsAbs(path) || path == ".." || strings.HasPrefix(path, "../") {
				return fmt.Errorf("task path %q must be relative to the store", args[0])
			}
			if info, err := os.Stat(store.TaskDir(path)); err != nil || !info.IsDir() {
				return fmt.Errorf("task %q not found in %s", path, store.Root())
			}
			data, err := os.ReadFile(store.ContextPath(path))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("task %q has no %s (press e in the dashboard to create it)", path, model.ContextFile)
				}
				return fmt.Errorf("read context: %w", err)
			}

			if width == 0 {
				width = terminalWidth()
			}
			if width <= 0 {
				width = 80
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("create markdown renderer: %w", err)
			}
			rendered, err := r.Render(string(data))
			if err != nil {
				log.Debug("markdown render failed, printing raw", "err", err)
				rendered = string(data)
			}
			printf(cmd.OutOrStdout(), "%s", rendered)
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 0, "wrap width (default: terminal width)")
	return cmd
}

func ExportMarkdownCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export-md <file>",
		Short: "Write the task tree as a Markdown outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tasks, err := loadTree(opts)
			if err != nil {
				return err
			}
			if err := export.SaveMarkdownToFile(tasks, args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), args[0])
			return nil
		},
	}
}

func InitCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the task store directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			store, err := opts.openStore(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store.Exists() {
				printf(out, "Task store already exists at %s\n", store.Root())
				return nil
			}
			if !yes {
				ok, err := confirm(fmt.Sprintf("Create task store at %s?", store.Root()))
				if err != nil {
					return err
				}
				if !ok {
					printf(out, "Cancelled\n")
					return nil
				}
			}
			if err := store.Init(); err != nil {
				return err
			}
			printf(out, "Created %s\n", store.Root())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func StoresCmd(opts *globalOptions) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "stores [dir...]",
		Short: "Find projects with a .yaks store",
		Long:  "Scans the given directories and discovery.scan_paths from the config for projects holding a .yaks store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if depth > 0 {
				cfg.Discovery.MaxDepth = depth
			}
			if len(args) == 0 && len(cfg.Discovery.ScanPaths) == 0 {
				cwd, err := opts.getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				args = []string{cwd}
			}
			out := cmd.OutOrStdout()
			found := config.DiscoverStores(cfg, args...)
			if len(found) == 0 {
				printf(out, "No task stores found\n")
				return nil
			}
			for _, dir := range found {
				printf(out, "%s\n", dir)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum directory depth to scan (default: discovery.max_depth)")
	return cmd
}

func ConfigCmd(opts *globalOptions) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if write {
				path := opts.configPath
				if path == "" {
					p, err := config.DefaultPath()
					if err != nil {
						return err
					}
					path = p
				}
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file %s already exists", path)
				}
				if err := config.Save(path, config.Default()); err != nil {
					return err
				}
				printf(out, "Wrote %s\n", path)
				return nil
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			store, err := opts.openStore(cfg)
			if err != nil {
				return err
			}
			cfg.StoreDir = store.Root()
			cfg.Pager = cfg.PagerCommand()
			cfg.Editor = cfg.EditorCommand()
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			printf(out, "%s", data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write a default config file if none exists")
	return cmd
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the yb version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printf(cmd.OutOrStdout(), "yb %s\n", version.String())
		},
	}
}
