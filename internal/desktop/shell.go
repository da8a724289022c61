package desktop

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// DownloadsDir returns the platform downloads folder.
//
// XDG_DOWNLOAD_DIR wins when set; otherwise it is ~/Downloads. If the home
// directory is unknown the working directory is used.
func DownloadsDir() string {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// RevealCommand returns the command that shows path in the file manager
// of goos.
//
// Example:
//
//	RevealCommand("darwin", "/Users/me/Downloads/a.pdf")
//	// ["open", "-R", "/Users/me/Downloads/a.pdf"]
func RevealCommand(goos, path string) []string {
	switch goos {
	case "darwin":
		return []string{"open", "-R", path}
	case "windows":
		return []string{"explorer", "/select," + path}
	default:
		// Most Linux file managers cannot select a file; open its folder.
		return []string{"xdg-open", filepath.Dir(path)}
	}
}

// Shell implements the desktop affordances for terminal front ends.
//
// Error boxes are printed in red to Output, the dock signal is logged and
// reveal-in-folder runs the platform file manager.
type Shell struct {
	// Output receives error boxes.
	// Default: color.Error (stderr)
	Output io.Writer

	// Logger records dock signals and reveal failures.
	// Default: slog.Default()
	Logger *slog.Logger

	// Platform selects the reveal command.
	// Default: runtime.GOOS
	Platform string

	// Run starts a command without waiting for it.
	// Default: exec.Command(...).Start()
	Run func(name string, args ...string) error

	mu sync.Mutex
}

// NewShell creates a Shell for the current platform.
func NewShell(logger *slog.Logger) *Shell {
	return &Shell{Logger: logger}
}

// ShowErrorBox prints a framed error to Output.
func (s *Shell) ShowErrorBox(title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	red := color.New(color.FgRed, color.Bold)
	line := strings.Repeat("─", max(len(title), len(message))+2)

	out := s.output()
	red.Fprintf(out, "┌%s┐\n", line)
	red.Fprintf(out, "│ %-*s │\n", len(line)-2, title)
	fmt.Fprintf(out, "│ %-*s │\n", len(line)-2, message)
	red.Fprintf(out, "└%s┘\n", line)
}

// DownloadFinished records the dock signal. Terminals have no dock, so
// this is informational only.
func (s *Shell) DownloadFinished(path string) {
	s.logger().Info("download finished", "path", path)
}

// ShowItemInFolder opens the file manager at path.
func (s *Shell) ShowItemInFolder(path string) {
	cmd := RevealCommand(s.platform(), path)
	if err := s.run(cmd[0], cmd[1:]...); err != nil {
		s.logger().Warn("reveal in folder failed", "path", path, "err", err)
	}
}

func (s *Shell) run(name string, args ...string) error {
	if s.Run != nil {
		return s.Run(name, args...)
	}
	return exec.Command(name, args...).Start()
}

func (s *Shell) output() io.Writer {
	if s.Output == nil {
		return color.Error
	}
	return s.Output
}

func (s *Shell) platform() string {
	if s.Platform == "" {
		return runtime.GOOS
	}
	return s.Platform
}

func (s *Shell) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
