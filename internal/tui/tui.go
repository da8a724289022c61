// Package tui provides a Bubble Tea terminal user interface for webdl.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/webdl/internal/config"
	"github.com/handiism/webdl/internal/desktop"
	"github.com/handiism/webdl/internal/download"
	"github.com/handiism/webdl/internal/host"
	"github.com/handiism/webdl/internal/tracker"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 2)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StatePrompt
	StateDownloading
	StateComplete
	StateError
)

const maxLogs = 10

var (
	errCancelled = errors.New("cancelled")
	errAborted   = errors.New("nothing was saved")
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   slog.Level
}

// DoneMsg is sent when the dispatched request resolves.
type DoneMsg struct {
	Result download.Result
	Err    error
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	urlInput  textinput.Model
	pathInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error
	errorBox  *ErrorBoxMsg

	// Host side
	bridge     *Bridge
	window     *host.Window
	dispatcher *download.Dispatcher
	logger     *slog.Logger
	level      *slog.LevelVar

	ctx    context.Context
	cancel context.CancelFunc

	// Current request
	item   tracker.Item
	reply  chan<- PathReply
	result download.Result
	ratio  float64
	badge  int

	width  int
	height int
}

// NewModel creates a new TUI model downloading in win.
func NewModel(settings *config.Settings, win *host.Window, bridge *Bridge, level *slog.LevelVar, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/file.zip, data:... or /path/to/file"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	pi := textinput.New()
	pi.CharLimit = 1000
	pi.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	if level == nil {
		level = new(slog.LevelVar)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := download.NewDispatcher(bridge, bridge, bridge, logger)
	d.Tracking = settings.ToTrackerOptions()
	d.Tracking.Logger = logger

	return Model{
		state:      StateInput,
		urlInput:   ti,
		pathInput:  pi,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		logs:       make([]LogEntry, 0),
		bridge:     bridge,
		window:     win,
		dispatcher: d,
		logger:     logger,
		level:      level,
		ctx:        ctx,
		cancel:     cancel,
		ratio:      tracker.Idle,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelTransfer()
			m.answer(PathReply{})
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StatePrompt:
				m.answer(PathReply{})
				m.state = StateDownloading
				return m, nil
			case StateDownloading:
				m.cancelTransfer()
			}

		case "enter":
			switch m.state {
			case StateInput:
				if ref := strings.TrimSpace(m.urlInput.Value()); ref != "" {
					m.state = StateDownloading
					m.errorBox = nil
					return m, tea.Batch(m.startDownload(ref), m.spinner.Tick)
				}
			case StatePrompt:
				m.answer(PathReply{Path: strings.TrimSpace(m.pathInput.Value()), OK: true})
				m.state = StateDownloading
				return m, nil
			}

		case "alt+a":
			if m.state == StateInput {
				m.settings.AskSavePath = !m.settings.AskSavePath
			}
			return m, nil

		case "alt+o":
			if m.state == StateInput {
				m.settings.OpenFolderWhenDone = !m.settings.OpenFolderWhenDone
			}
			return m, nil

		case "alt+v":
			if m.state == StateInput {
				if m.level.Level() == slog.LevelDebug {
					m.level.Set(slog.LevelInfo)
				} else {
					m.level.Set(slog.LevelDebug)
				}
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case PromptMsg:
		m.reply = msg.Reply
		m.state = StatePrompt
		m.pathInput.SetValue(msg.Default)
		m.pathInput.CursorEnd()
		cmds = append(cmds, m.pathInput.Focus())

	case StartedMsg:
		m.item = msg.Item

	case BadgeMsg:
		m.badge = msg.Count

	case ProgressBarMsg:
		m.ratio = msg.Ratio
		if msg.Ratio >= 0 {
			cmds = append(cmds, m.progress.SetPercent(msg.Ratio))
		}

	case ErrorBoxMsg:
		m.errorBox = &msg

	case LogMsg:
		m.logs = append(m.logs, LogEntry{Message: msg.Message, Level: msg.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case DoneMsg:
		m.result = msg.Result
		m.finish(msg)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	switch m.state {
	case StateInput:
		var cmd tea.Cmd
		m.urlInput, cmd = m.urlInput.Update(msg)
		cmds = append(cmds, cmd)
	case StatePrompt:
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) finish(msg DoneMsg) {
	m.err = nil
	switch {
	case msg.Err != nil:
		m.state = StateError
		m.err = msg.Err
	case msg.Result.Status == download.StatusCompleted || msg.Result.Status == download.StatusCopied:
		m.state = StateComplete
	case msg.Result.Status == download.StatusCancelled:
		m.state = StateError
		m.err = errCancelled
	case msg.Result.Status == download.StatusCopyFailed:
		m.state = StateError
		m.err = fmt.Errorf("copy failed: %w", msg.Result.Err)
	default:
		m.state = StateError
		m.err = errAborted
	}
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.errorBox = nil
	m.item = nil
	m.result = download.Result{}
	m.ratio = tracker.Idle
	m.urlInput.SetValue("")
	m.urlInput.Focus()
}

// answer replies to a pending save prompt, if any.
func (m *Model) answer(r PathReply) {
	if m.reply == nil {
		return
	}
	m.reply <- r
	m.reply = nil
	m.pathInput.Blur()
}

func (m *Model) cancelTransfer() {
	if m.item != nil && m.window != nil {
		m.window.HostSession().Cancel(m.item.ID())
	}
}

// startDownload dispatches ref in the background.
func (m Model) startDownload(ref string) tea.Cmd {
	opts := download.Options{Options: m.settings.ToTrackerOptions()}
	opts.OnStarted = m.bridge.Started

	m.bridge.SetAsk(m.settings.AskSavePath)
	d, ctx, win := m.dispatcher, m.ctx, m.window

	return func() tea.Msg {
		res, err := d.Download(ctx, win, ref, opts)
		return DoneMsg{Result: res, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("webdl"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Save files from the web, data: URIs or disk"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StatePrompt:
		b.WriteString(m.viewPrompt())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a URL or file path:"))
	b.WriteString("\n\n")
	b.WriteString(m.urlInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Ask where to save (alt+a)\n", check(m.settings.AskSavePath)))
	b.WriteString(fmt.Sprintf("  %s Open folder when done (alt+o)\n", check(m.settings.OpenFolderWhenDone)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (alt+v)\n", check(m.level.Level() == slog.LevelDebug)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPrompt() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Save as:"))
	b.WriteString("\n\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.item != nil {
		b.WriteString(fileStyle.Render(m.item.Filename()))
	} else {
		b.WriteString(subtitleStyle.Render("Starting..."))
	}
	b.WriteString("\n\n")

	if m.ratio >= 0 {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
	}
	if m.item != nil {
		b.WriteString(infoStyle.Render(m.sizeLine()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) sizeLine() string {
	received := humanize.Bytes(uint64(m.item.ReceivedBytes()))
	line := fmt.Sprintf("Downloaded: %s", received)
	if total := m.item.TotalBytes(); total > 0 {
		line += " of " + humanize.Bytes(uint64(total))
	}
	return fmt.Sprintf("%s | Active: %d", line, m.badge)
}

func (m Model) viewComplete() string {
	size := m.result.Bytes
	if m.result.Item != nil {
		size = m.result.Item.ReceivedBytes()
	}
	return boxStyle.Render(fmt.Sprintf(
		"Download complete\n\n"+
			"Saved to: %s\n"+
			"Size: %s",
		m.result.Path,
		humanize.Bytes(uint64(size)),
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	if m.errorBox != nil {
		b.WriteString(errorBoxStyle.Render(
			errorStyle.Bold(true).Render(m.errorBox.Title) + "\n\n" + m.errorBox.Message,
		))
		b.WriteString("\n\n")
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("Download failed:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %s\n", m.err.Error()))
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch {
		case log.Level >= slog.LevelError:
			style = errorStyle
			prefix = "✗"
		case log.Level >= slog.LevelWarn:
			style = warningStyle
			prefix = "!"
		case log.Level >= slog.LevelInfo:
			style = successStyle
			prefix = "✓"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • alt+a: ask • alt+o: open folder • alt+v: verbose • esc: quit"
	case StatePrompt:
		return "enter: save • esc: cancel"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	level := new(slog.LevelVar)
	bridge := NewBridge(nil, nil)
	logger := slog.New(NewLogHandler(bridge, level))
	bridge.logger = logger
	bridge.reveal = desktop.NewShell(logger)

	hopts := settings.ToHostOptions()
	hopts.Logger = logger
	rt := host.NewRuntime(hopts)
	defer rt.Shutdown()

	win := rt.NewWindow("tui")
	win.OnProgressBar = bridge.SetProgressBar

	p := tea.NewProgram(NewModel(settings, win, bridge, level, logger), tea.WithAltScreen())
	bridge.Attach(p.Send)
	defer bridge.Attach(nil)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.dispatcher.Close()
	}
	return err
}
