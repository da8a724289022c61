// Package host is an in-process host runtime for the session tracker.
//
// It plays the part a browser shell plays for an embedded web view:
// windows belong to sessions, sessions perform transfers, and every
// transfer reports started, updated and done signals to the listeners
// registered with OnWillDownload.
//
// # Basic Usage
//
//	rt := host.NewRuntime(host.Options{ProgressInterval: 100 * time.Millisecond})
//	defer rt.Shutdown()
//
//	win := rt.NewWindow("persist:main")
//	tracker.Register(win.Session(), badge, shell, opts, cb)
//	win.DownloadURL("https://example.com/report.pdf", "")
//
// # Ordering
//
// For a single item, started precedes zero or more updated signals which
// precede exactly one done signal. Signals of one session never overlap.
// A listener removed from inside a handler stops seeing new transfers but
// keeps receiving signals for items it already accepted.
//
// # Cancellation
//
// Session.Cancel ends a transfer with the cancelled outcome, as does
// Runtime.Shutdown for every running transfer. Network and disk errors end
// it as interrupted. Partial files are removed in both cases.
package host
