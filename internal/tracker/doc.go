// Package tracker implements the download session tracker.
//
// A Tracker observes one host Session and multiplexes every transfer
// started in it into a single aggregate progress ratio and a badge count.
//
// # Basic Usage
//
//	opts := tracker.DefaultOptions()
//	opts.OnProgress = func(ratio float64) {
//	    fmt.Printf("%.0f%%\n", ratio*100)
//	}
//
//	t := tracker.Register(session, badge, shell, opts, func(item tracker.Item, outcome model.Outcome, err error) {
//	    fmt.Println(item.Filename(), outcome)
//	})
//	defer t.Unregister()
//
// # Counters
//
// The ratio is received/total where:
//
//	received  = completed + sum(ReceivedBytes of active items)
//	completed = sum(TotalBytes of finished items)
//	total     = sum(TotalBytes of every item started while busy)
//
// A finished item therefore keeps counting at its full size until the
// session goes idle. When the last active item finishes the counters reset
// and the owning surface's progress bar is set to Idle (-1). A ratio is
// never computed against a zero total; Idle is reported instead.
//
// # Terminal Signals
//
// Each item is added once and removed once. The Callback fires exactly
// once per item with its outcome; a second terminal signal for the same
// item is ignored. Interruptions format Options.ErrorMessage, show it in
// an error box and pass an *InterruptedError to the callback.
//
// # Collaborators
//
// The badge (Indicator) is a process-wide sink shared by all trackers and
// is only written on darwin and linux unless Options.HideBadge is set. The
// progress bar belongs to the owning Surface and is skipped once that
// surface is destroyed.
//
// # Per-request routing
//
// A single Tracker per session keeps the badge and progress bar
// consistent across overlapping requests. Tracker.Expect binds the item
// started with a given tag to its own options and callback, so each
// request still learns about its own transfer.
package tracker
