package main

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/vbauerster/mpb/v8"

	"github.com/handiism/webdl/internal/download"
	"github.com/handiism/webdl/internal/model"
)

func TestSummarize(t *testing.T) {
	color.NoColor = true

	item := model.NewItem("https://example.com/a.pdf", "", 2048)
	item.AddReceivedBytes(2048)

	results := []fetchResult{
		{Ref: "https://example.com/a.pdf", Result: download.Result{Status: download.StatusCompleted, Item: item, Path: "/d/a.pdf"}},
		{Ref: "/src/b.txt", Result: download.Result{Status: download.StatusCopied, Path: "/d/b.txt", Bytes: 1000}},
		{Ref: "https://example.com/c.zip", Result: download.Result{Status: download.StatusInterrupted},
			Err: &download.InterruptedError{Message: "The download of c.zip was interrupted"}},
		{Ref: "/src/d.txt", Result: download.Result{Status: download.StatusAborted}},
		{Ref: "/src/e.txt", Result: download.Result{Status: download.StatusCopyFailed, Err: errors.New("disk full")}},
	}

	var out strings.Builder
	if !summarize(&out, results) {
		t.Error("summarize() should report the interrupted download")
	}

	for _, want := range []string{
		"✓ /d/a.pdf (2.0 kB)",
		"✓ /d/b.txt (1.0 kB)",
		"✗ https://example.com/c.zip: The download of c.zip was interrupted",
		"! /src/d.txt: aborted",
		"✗ /src/e.txt: copy failed: disk full",
		"Saved 2/5 files (3.0 kB)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestSummarize_NoInterruption(t *testing.T) {
	results := []fetchResult{{Ref: "x", Result: download.Result{Status: download.StatusCancelled}}}
	if summarize(io.Discard, results) {
		t.Error("a cancelled download is not an interruption")
	}
}

func waitProgress(t *testing.T, p *mpb.Progress) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("progress container did not finish")
	}
}

func TestItemBar(t *testing.T) {
	tests := []struct {
		name      string
		completed bool
	}{
		{"completed", true},
		{"aborted", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mpb.New(mpb.WithOutput(io.Discard))
			item := model.NewItem("https://example.com/a.bin", "", 100)

			b := newItemBar(p)
			b.start(item)
			item.AddReceivedBytes(40)
			b.update()
			b.finish(tt.completed)

			waitProgress(t, p)
		})
	}
}

func TestItemBar_StartAfterFinish(t *testing.T) {
	p := mpb.New(mpb.WithOutput(io.Discard))
	b := newItemBar(p)
	b.finish(false)
	b.start(model.NewItem("https://example.com/a.bin", "", 100))

	if b.bar != nil {
		t.Error("a finished request should not create a bar")
	}
	waitProgress(t, p)
}
