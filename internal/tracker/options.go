package tracker

import (
	"log/slog"
	"runtime"
)

const (
	// DefaultErrorMessage is the interruption message template.
	DefaultErrorMessage = "The download of {filename} was interrupted"

	// DefaultErrorTitle is the title of the interruption error box.
	DefaultErrorTitle = "Download Error"
)

// Options configures a Tracker.
type Options struct {
	// Directory is the destination folder. When SavePath is empty, items
	// are saved as Directory/Filename.
	Directory string

	// SavePath is the exact destination applied to started items.
	SavePath string

	// HideBadge stops mirroring the active item count to the application
	// badge. The badge is only written on darwin and linux.
	HideBadge bool

	// OpenFolderWhenDone reveals completed files in their folder.
	OpenFolderWhenDone bool

	// UnregisterWhenDone detaches the tracker from its session after the
	// first terminal signal.
	UnregisterWhenDone bool

	// ErrorMessage is the interruption message template. {filename} is
	// replaced by the item's filename.
	ErrorMessage string

	// ErrorTitle is the title of the interruption error box.
	ErrorTitle string

	// Tag restricts the tracker to items started with this request tag.
	// Empty observes every item of the session.
	Tag string

	// Platform is the GOOS used for platform-gated behaviour.
	// Default: runtime.GOOS
	Platform string

	// OnStarted is called once, synchronously, when a transfer begins.
	OnStarted func(item Item)

	// OnProgress is called on every tick with the aggregate ratio.
	OnProgress func(ratio float64)

	// OnCancel is called once when a transfer is cancelled.
	OnCancel func(item Item)

	// Logger receives debug and warning records.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns options with the default error message and
// title for the current platform.
func DefaultOptions() Options {
	return Options{
		ErrorMessage: DefaultErrorMessage,
		ErrorTitle:   DefaultErrorTitle,
		Platform:     runtime.GOOS,
	}
}

func (o Options) withDefaults() Options {
	if o.ErrorMessage == "" {
		o.ErrorMessage = DefaultErrorMessage
	}
	if o.ErrorTitle == "" {
		o.ErrorTitle = DefaultErrorTitle
	}
	if o.Platform == "" {
		o.Platform = runtime.GOOS
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
