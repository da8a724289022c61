package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/handiism/webdl/internal/tracker"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !s.ShowBadge || s.ErrorMessage != tracker.DefaultErrorMessage || s.MaxConcurrentDownloads != 4 {
		t.Errorf("Load() = %+v, want defaults", s)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "config.json", `{"downloads_path": "/srv/in", "show_badge": false, "http_timeout": 5}`},
		{"yaml", "config.yaml", "downloads_path: /srv/in\nshow_badge: false\nhttp_timeout: 5\n"},
		{"yml", "config.yml", "downloads_path: /srv/in\nshow_badge: false\nhttp_timeout: 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if s.DownloadsPath != "/srv/in" || s.ShowBadge || s.HTTPTimeout != 5 {
				t.Errorf("Load() = %+v", s)
			}
			// Keys absent from the file keep their defaults.
			if s.ErrorTitle != tracker.DefaultErrorTitle {
				t.Errorf("ErrorTitle = %q, want default", s.ErrorTitle)
			}
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Load() of malformed JSON should fail")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, file := range []string{"nested/config.json", "nested/config.yaml"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)
			want := DefaultSettings()
			want.DownloadsPath = "/data"
			want.AskSavePath = true
			want.ProgressInterval = 0.5

			if err := want.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if *got != *want {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WEBDL_DOWNLOADS_PATH", "/env/dir")
	t.Setenv("WEBDL_SHOW_BADGE", "false")
	t.Setenv("WEBDL_MAX_CONCURRENT_DOWNLOADS", "9")

	s := DefaultSettings()
	s.UserAgent = "from-file"
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if s.DownloadsPath != "/env/dir" || s.ShowBadge || s.MaxConcurrentDownloads != 9 {
		t.Errorf("ApplyEnv() = %+v", s)
	}
	if s.UserAgent != "from-file" {
		t.Errorf("UserAgent = %q, unset variables should not override", s.UserAgent)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("WEBDL_HTTP_TIMEOUT", "soon")
	if err := DefaultSettings().ApplyEnv(); err == nil {
		t.Error("ApplyEnv() should reject a non-numeric timeout")
	}
}

func TestToTrackerOptions(t *testing.T) {
	s := DefaultSettings()
	s.DownloadsPath = "/d"
	s.ShowBadge = false
	s.OpenFolderWhenDone = true
	s.ErrorMessage = ""

	opts := s.ToTrackerOptions()
	if opts.Directory != "/d" || !opts.HideBadge || !opts.OpenFolderWhenDone {
		t.Errorf("ToTrackerOptions() = %+v", opts)
	}
	if DefaultSettings().ToTrackerOptions().HideBadge {
		t.Error("default settings should show the badge")
	}
	if opts.ErrorMessage != tracker.DefaultErrorMessage {
		t.Errorf("ErrorMessage = %q, empty setting should keep the default", opts.ErrorMessage)
	}
}

func TestToHostOptions(t *testing.T) {
	s := DefaultSettings()
	s.HTTPTimeout = 1.5
	s.ProgressInterval = 0

	opts := s.ToHostOptions()
	if opts.HTTP.Timeout != 1500*time.Millisecond {
		t.Errorf("Timeout = %v, want 1.5s", opts.HTTP.Timeout)
	}
	if opts.ProgressInterval != 0 {
		t.Errorf("ProgressInterval = %v, want 0", opts.ProgressInterval)
	}
	if opts.DownloadsDir != s.DownloadsPath || opts.HTTP.UserAgent != "webdl" {
		t.Errorf("ToHostOptions() = %+v", opts)
	}
}

func TestConcurrency(t *testing.T) {
	s := &Settings{MaxConcurrentDownloads: 0}
	if s.Concurrency() != 1 {
		t.Errorf("Concurrency() = %d, want 1", s.Concurrency())
	}
}
