package tui

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/webdl/internal/tracker"
)

// Messages posted by the bridge from transfer goroutines.
type (
	// BadgeMsg carries the active download count.
	BadgeMsg struct {
		Count int
	}

	// ProgressBarMsg carries the window progress ratio or tracker.Idle.
	ProgressBarMsg struct {
		Ratio float64
	}

	// ErrorBoxMsg asks the UI to show an error box.
	ErrorBoxMsg struct {
		Title   string
		Message string
	}

	// StartedMsg is sent when the tracked transfer begins.
	StartedMsg struct {
		Item tracker.Item
	}

	// PromptMsg asks the user for a save path. The answer goes to Reply.
	PromptMsg struct {
		Default string
		Reply   chan<- PathReply
	}

	// PathReply answers a PromptMsg.
	PathReply struct {
		Path string
		OK   bool
	}
)

// Revealer opens a file manager at a path.
type Revealer interface {
	ShowItemInFolder(path string)
}

// Bridge turns host and tracker callbacks into Bubble Tea messages.
//
// It implements tracker.Indicator, tracker.Desktop and
// download.SaveDialog. Until Attach is called every message is dropped.
type Bridge struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	reveal Revealer
	logger *slog.Logger

	// noAsk makes ShowSaveDialog accept the default without prompting.
	noAsk atomic.Bool
}

// NewBridge creates a Bridge. reveal may be nil.
func NewBridge(reveal Revealer, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{reveal: reveal, logger: logger}
}

// Attach routes messages to send, usually (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) post(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// SetBadgeCount implements tracker.Indicator.
func (b *Bridge) SetBadgeCount(n int) {
	b.post(BadgeMsg{Count: n})
}

// SetProgressBar forwards a window progress ratio.
func (b *Bridge) SetProgressBar(ratio float64) {
	b.post(ProgressBarMsg{Ratio: ratio})
}

// ShowErrorBox implements tracker.Desktop.
func (b *Bridge) ShowErrorBox(title, message string) {
	b.post(ErrorBoxMsg{Title: title, Message: message})
}

// DownloadFinished implements tracker.Desktop.
func (b *Bridge) DownloadFinished(path string) {
	b.logger.Info("download finished", "path", path)
}

// ShowItemInFolder implements tracker.Desktop.
func (b *Bridge) ShowItemInFolder(path string) {
	if b.reveal != nil {
		b.reveal.ShowItemInFolder(path)
	}
}

// Started forwards the start of a transfer.
func (b *Bridge) Started(item tracker.Item) {
	b.post(StartedMsg{Item: item})
}

// SetAsk controls whether ShowSaveDialog prompts. It prompts by default.
func (b *Bridge) SetAsk(ask bool) {
	b.noAsk.Store(!ask)
}

// ShowSaveDialog prompts inside the UI and waits for the answer.
// It reports false when the UI is detached or ctx ends first.
func (b *Bridge) ShowSaveDialog(ctx context.Context, _ tracker.Surface, defaultPath string) (string, bool) {
	if b.noAsk.Load() {
		return defaultPath, true
	}

	reply := make(chan PathReply, 1)
	if !b.post(PromptMsg{Default: defaultPath, Reply: reply}) {
		return "", false
	}

	select {
	case r := <-reply:
		return r.Path, r.OK
	case <-ctx.Done():
		return "", false
	}
}
