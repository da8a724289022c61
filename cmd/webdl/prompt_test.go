package main

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestPromptDialog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
		wantOK   bool
	}{
		{"default", "\n", "/d/a.pdf", true},
		{"custom", "  /tmp/b.pdf \n", "/tmp/b.pdf", true},
		{"dash cancels", "-\n", "", false},
		{"eof cancels", "", "", false},
		{"last line without newline", "/tmp/c.pdf", "/tmp/c.pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			d := newPromptDialog(strings.NewReader(tt.input), &out)

			got, ok := d.ShowSaveDialog(context.Background(), nil, "/d/a.pdf")
			if got != tt.wantPath || ok != tt.wantOK {
				t.Errorf("ShowSaveDialog() = %q, %v, want %q, %v", got, ok, tt.wantPath, tt.wantOK)
			}
			if !strings.Contains(out.String(), "[/d/a.pdf]") {
				t.Errorf("prompt %q should show the default", out.String())
			}
		})
	}
}

func TestPromptDialog_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newPromptDialog(strings.NewReader("/x\n"), io.Discard)
	if _, ok := d.ShowSaveDialog(ctx, nil, "/d"); ok {
		t.Error("ShowSaveDialog() should not prompt after ctx ended")
	}
}
