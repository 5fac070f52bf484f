// Package config loads yakboard settings and locates the task store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreDirName is the directory that holds a task store.
const StoreDirName = ".yaks"

// Defaults.
const (
	DefaultRefreshInterval = 2 * time.Second
	DefaultHighlightColor  = 237
	DefaultPager           = "less"
	DefaultEditor          = "vi"
	DefaultLogLevel        = "info"
)

// Config is the on-disk configuration, typically
// ~/.config/yakboard/config.yaml. Every key is optional.
type Config struct {
	StoreDir        string        `yaml:"store_dir,omitempty"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Pager           string        `yaml:"pager,omitempty"`
	Editor          string        `yaml:"editor,omitempty"`
	HighlightColor  int           `yaml:"highlight_color"`
	Watch           bool          `yaml:"watch"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file,omitempty"`
	Discovery       Discovery     `yaml:"discovery"`
}

// Discovery controls `yb stores`, which scans for task stores.
type Discovery struct {
	ScanPaths []string `yaml:"scan_paths,omitempty"`
	MaxDepth  int      `yaml:"max_depth"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RefreshInterval: DefaultRefreshInterval,
		HighlightColor:  DefaultHighlightColor,
		Watch:           true,
		LogLevel:        DefaultLogLevel,
		Discovery:       Discovery{MaxDepth: 3},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "yakboard", "config.yaml"), nil
}

// Load reads path on top of Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the dashboard cannot run with.
func (c Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.HighlightColor < 0 || c.HighlightColor > 255 {
		return fmt.Errorf("highlight_color must be a 256-colour index, got %d", c.HighlightColor)
	}
	return nil
}

// ApplyEnv overlays environment variables: YAKS_DIR, PAGER, EDITOR (then
// VISUAL) and YB_LOG_LEVEL. Values already set in the file win over PAGER
// and EDITOR; YAKS_DIR and YB_LOG_LEVEL always win.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("YAKS_DIR")); v != "" {
		c.StoreDir = v
	}
	if v := strings.TrimSpace(getenv("YB_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if c.Pager == "" {
		c.Pager = strings.TrimSpace(getenv("PAGER"))
	}
	if c.Editor == "" {
		c.Editor = strings.TrimSpace(getenv("EDITOR"))
	}
	if c.Editor == "" {
		c.Editor = strings.TrimSpace(getenv("VISUAL"))
	}
}

// PagerCommand returns the configured pager or less.
func (c Config) PagerCommand() string {
	if c.Pager != "" {
		return c.Pager
	}
	return DefaultPager
}

// EditorCommand returns the configured editor or vi.
func (c Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	return DefaultEditor
}

// ResolveStoreDir picks the store root: the configured directory if set,
// else the nearest .yaks found walking up from cwd, else cwd/.yaks.
func (c Config) ResolveStoreDir(cwd string) string {
	if c.StoreDir != "" {
		dir := expandHome(c.StoreDir)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
		return filepath.Clean(dir)
	}
	if root, ok := findYaksRoot(cwd); ok {
		return filepath.Join(root, StoreDirName)
	}
	return filepath.Join(cwd, StoreDirName)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
