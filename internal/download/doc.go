// Package download routes download requests made from a host window.
//
// # Dispatcher
//
// The Dispatcher decides how a reference is fetched:
//
//  1. http, https and data: references go to the host runtime. The
//     destination is confirmed through the SaveDialog, the request is
//     expected on the session's shared tracker under a fresh tag and the
//     window is asked to download the reference. Call Close when done.
//  2. Anything else is a local file. file:/// prefixes are stripped, the
//     source must be readable, and the file is copied to the confirmed
//     destination.
//
// The two branches are exclusive.
//
// # Basic Usage
//
//	d := download.NewDispatcher(dialog, badge, shell, logger)
//
//	opts := download.Options{Options: tracker.DefaultOptions(), Filename: "invoice"}
//	res, err := d.Download(ctx, win, "https://example.com/invoice.pdf", opts)
//	if err != nil {
//	    // only interruptions (and ctx) end up here
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Status, res.Path)
//
// # Results
//
// Start returns a Future that resolves exactly once:
//
//	StatusCompleted   remote transfer finished, Item set
//	StatusCancelled   host cancelled the transfer, no error
//	StatusInterrupted transfer failed, error is *InterruptedError
//	StatusAborted     dialog cancelled or local source unreadable
//	StatusCopied      local copy written to Path
//	StatusCopyFailed  local copy failed, cause in Err, logged only
package download
