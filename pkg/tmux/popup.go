// Package tmux opens floating panes through tmux popups.
package tmux

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a command and returns stdout/stderr.
type Runner interface {
	Run(name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Popup describes one floating pane.
type Popup struct {
	Title  string
	Width  string // e.g. "80%"
	Height string
	// Command is a shell fragment (an editor or pager setting, possibly with
	// flags). It is not quoted.
	Command string
	// Args are appended to Command, each single-quoted.
	Args []string
}

// InSession reports whether the process runs inside a tmux client.
func InSession() bool {
	return os.Getenv("TMUX") != ""
}

// Open shows p with display-popup and blocks until the popup closes.
func Open(r Runner, p Popup) error {
	args := []string{"display-popup", "-E"}
	if p.Width != "" {
		args = append(args, "-w", p.Width)
	}
	if p.Height != "" {
		args = append(args, "-h", p.Height)
	}
	if p.Title != "" {
		args = append(args, "-T", p.Title)
	}
	args = append(args, p.ShellCommand())

	if _, stderr, err := r.Run("tmux", args...); err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("tmux display-popup: %w: %s", err, msg)
		}
		return fmt.Errorf("tmux display-popup: %w", err)
	}
	return nil
}

// ShellCommand returns the command line the popup's shell runs.
func (p Popup) ShellCommand() string {
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, p.Command)
	for _, arg := range p.Args {
		parts = append(parts, EscapeSingleQuoted(arg))
	}
	return strings.Join(parts, " ")
}

// EscapeSingleQuoted wraps s in single quotes for a POSIX shell. Embedded
// quotes are closed, escaped and reopened.
func EscapeSingleQuoted(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
