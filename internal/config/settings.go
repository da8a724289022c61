package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/handiism/webdl/internal/desktop"
	"github.com/handiism/webdl/internal/host"
	"github.com/handiism/webdl/internal/http"
	"github.com/handiism/webdl/internal/tracker"
)

// EnvPrefix is the prefix of environment overrides, e.g. WEBDL_SHOW_BADGE.
const EnvPrefix = "WEBDL"

// Settings holds all configuration options.
type Settings struct {
	// Destination
	DownloadsPath      string `json:"downloads_path" yaml:"downloads_path" envconfig:"DOWNLOADS_PATH"`
	AskSavePath        bool   `json:"ask_save_path" yaml:"ask_save_path" envconfig:"ASK_SAVE_PATH"`
	OpenFolderWhenDone bool   `json:"open_folder_when_done" yaml:"open_folder_when_done" envconfig:"OPEN_FOLDER_WHEN_DONE"`

	// Feedback
	ShowBadge    bool   `json:"show_badge" yaml:"show_badge" envconfig:"SHOW_BADGE"`
	ErrorMessage string `json:"error_message" yaml:"error_message" envconfig:"ERROR_MESSAGE"`
	ErrorTitle   string `json:"error_title" yaml:"error_title" envconfig:"ERROR_TITLE"`

	// Transfers
	UserAgent              string  `json:"user_agent" yaml:"user_agent" envconfig:"USER_AGENT"`
	HTTPTimeout            float64 `json:"http_timeout" yaml:"http_timeout" envconfig:"HTTP_TIMEOUT"`                // seconds
	ProgressInterval       float64 `json:"progress_interval" yaml:"progress_interval" envconfig:"PROGRESS_INTERVAL"` // seconds
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads" envconfig:"MAX_CONCURRENT_DOWNLOADS"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath:      desktop.DownloadsDir(),
		AskSavePath:        false,
		OpenFolderWhenDone: false,

		ShowBadge:    true,
		ErrorMessage: tracker.DefaultErrorMessage,
		ErrorTitle:   tracker.DefaultErrorTitle,

		UserAgent:              "webdl",
		HTTPTimeout:            60,
		ProgressInterval:       0.1,
		MaxConcurrentDownloads: 4,
	}
}

// Load reads settings from a JSON or YAML file. The format is picked by
// extension: .yaml and .yml are YAML, anything else is JSON.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, depending on extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from WEBDL_* environment variables. Unset
// variables leave the current value alone.
func (s *Settings) ApplyEnv() error {
	return envconfig.Process(EnvPrefix, s)
}

// ToTrackerOptions converts settings to tracker options.
func (s *Settings) ToTrackerOptions() tracker.Options {
	opts := tracker.DefaultOptions()
	opts.Directory = s.DownloadsPath
	opts.HideBadge = !s.ShowBadge
	opts.OpenFolderWhenDone = s.OpenFolderWhenDone
	if s.ErrorMessage != "" {
		opts.ErrorMessage = s.ErrorMessage
	}
	if s.ErrorTitle != "" {
		opts.ErrorTitle = s.ErrorTitle
	}
	return opts
}

// ToHostOptions converts settings to host runtime options.
func (s *Settings) ToHostOptions() host.Options {
	return host.Options{
		HTTP: http.Options{
			UserAgent: s.UserAgent,
			Timeout:   seconds(s.HTTPTimeout),
		},
		ProgressInterval: seconds(s.ProgressInterval),
		DownloadsDir:     s.DownloadsPath,
	}
}

// Concurrency returns MaxConcurrentDownloads, at least 1.
func (s *Settings) Concurrency() int {
	if s.MaxConcurrentDownloads < 1 {
		return 1
	}
	return s.MaxConcurrentDownloads
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
