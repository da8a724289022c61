package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/webdl/internal/config"
	"github.com/handiism/webdl/internal/desktop"
	"github.com/handiism/webdl/internal/download"
	"github.com/handiism/webdl/internal/host"
)

func main() {
	app := &cli.App{
		Name:      "webdl",
		Usage:     "Download files over HTTP, data: URIs or from disk",
		ArgsUsage: "REF...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a JSON or YAML config file"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"o"}, Usage: "output directory (overrides config)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "file name to save a single reference as"},
			&cli.BoolFlag{Name: "open", Usage: "reveal completed files in the file manager"},
			&cli.BoolFlag{Name: "no-badge", Usage: "do not show the active count in the terminal title"},
			&cli.BoolFlag{Name: "ask", Usage: "ask where to save each file"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "maximum concurrent downloads (overrides config)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "show debug output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if path := c.String("config"); path != "" {
		var err error
		settings, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if err := settings.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// Apply flags
	if dir := c.String("dir"); dir != "" {
		settings.DownloadsPath = dir
	}
	if c.Bool("open") {
		settings.OpenFolderWhenDone = true
	}
	if c.Bool("no-badge") {
		settings.ShowBadge = false
	}
	if c.Bool("ask") {
		settings.AskSavePath = true
	}
	if c.IsSet("jobs") {
		settings.MaxConcurrentDownloads = c.Int("jobs")
	}
	return settings, nil
}

func run(c *cli.Context) error {
	refs := c.Args().Slice()
	if len(refs) == 0 {
		cli.ShowAppHelpAndExit(c, 1)
	}

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}

	p := mpb.NewWithContext(c.Context, mpb.WithOutput(color.Output), mpb.WithAutoRefresh(), mpb.WithWidth(40))
	logger := slog.New(slog.NewTextHandler(p, &slog.HandlerOptions{Level: level}))

	shell := desktop.NewShell(logger)
	shell.Output = p
	badge := &desktop.TitleBadge{Output: os.Stderr, Title: "webdl"}

	hopts := settings.ToHostOptions()
	hopts.Logger = logger
	rt := host.NewRuntime(hopts)
	win := rt.NewWindow("cli")

	var dialog download.SaveDialog
	if settings.AskSavePath {
		dialog = newPromptDialog(os.Stdin, color.Error)
	}
	d := download.NewDispatcher(dialog, badge, shell, logger)
	d.Tracking = settings.ToTrackerOptions()
	d.Tracking.Logger = logger

	name := c.String("name")
	if name != "" && len(refs) > 1 {
		logger.Warn("--name ignored for multiple references")
		name = ""
	}

	results := make([]fetchResult, len(refs))
	var g errgroup.Group
	g.SetLimit(settings.Concurrency())
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			results[i] = fetch(c.Context, d, win, p, settings, ref, name)
			return nil
		})
	}
	g.Wait()

	d.Close()
	rt.Shutdown()
	p.Wait()

	interrupted := summarize(color.Output, results)
	switch {
	case c.Context.Err() != nil:
		return cli.Exit("cancelled", 130)
	case interrupted:
		return cli.Exit("one or more downloads were interrupted", 1)
	}
	return nil
}

type fetchResult struct {
	Ref    string
	Result download.Result
	Err    error
}

func fetch(ctx context.Context, d *download.Dispatcher, win *host.Window, p *mpb.Progress, settings *config.Settings, ref, name string) fetchResult {
	bar := newItemBar(p)

	opts := download.Options{Options: settings.ToTrackerOptions(), Filename: name}
	opts.OnStarted = bar.start
	opts.OnProgress = func(float64) { bar.update() }

	res, err := d.Download(ctx, win, ref, opts)
	bar.finish(err == nil && res.Status == download.StatusCompleted)

	return fetchResult{Ref: ref, Result: res, Err: err}
}

// summarize prints one line per request and reports whether any transfer
// was interrupted.
func summarize(w io.Writer, results []fetchResult) bool {
	var (
		ok          = color.New(color.FgGreen)
		warn        = color.New(color.FgYellow)
		fail        = color.New(color.FgRed)
		saved       int
		bytes       int64
		interrupted bool
	)

	fmt.Fprintln(w)
	for _, r := range results {
		res := r.Result
		size := res.Bytes
		if res.Item != nil {
			size = res.Item.ReceivedBytes()
		}

		var ierr *download.InterruptedError
		switch {
		case errors.As(r.Err, &ierr):
			interrupted = true
			fail.Fprintf(w, "✗ %s: %s\n", r.Ref, ierr.Message)
		case r.Err != nil:
			fail.Fprintf(w, "✗ %s: %v\n", r.Ref, r.Err)
		case res.Status == download.StatusCompleted || res.Status == download.StatusCopied:
			saved++
			bytes += size
			ok.Fprintf(w, "✓ %s (%s)\n", res.Path, humanize.Bytes(uint64(size)))
		case res.Status == download.StatusCopyFailed:
			fail.Fprintf(w, "✗ %s: copy failed: %v\n", r.Ref, res.Err)
		default:
			warn.Fprintf(w, "! %s: %s\n", r.Ref, res.Status)
		}
	}
	fmt.Fprintf(w, "\nSaved %d/%d files (%s)\n", saved, len(results), humanize.Bytes(uint64(bytes)))

	return interrupted
}
