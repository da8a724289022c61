// Package http opens the remote references handled by the host runtime.
//
// The Client in this package handles:
//   - http and https downloads with a User-Agent header
//   - data: URIs, decoded in memory
//   - streaming to disk with progress tracking
//   - a header timeout that leaves long bodies alone
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{UserAgent: "webdl"})
//
//	t, err := client.Open(ctx, "https://example.com/report.pdf")
//	if err != nil {
//	    return err
//	}
//	err = client.Save(ctx, t, "/tmp/report.pdf", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
