// Package model defines the data shared between the host runtime,
// the session tracker and the front ends.
//
// # Item
//
// Item is one transfer. It is created and owned by the host runtime:
//
//	item := model.NewItem("https://example.com/report.pdf", tag, size)
//	item.SetSavePath("/home/me/Downloads/report.pdf")
//	item.AddReceivedBytes(n)  // on every chunk
//	item.Finish(model.OutcomeCompleted)
//
// ReceivedBytes never decreases and the outcome is assigned exactly once.
//
// # Outcome
//
// Outcome is the terminal state of an item: OutcomeCompleted,
// OutcomeCancelled or OutcomeInterrupted.
//
// # Filenames
//
// FilenameFromURL derives the display name of a reference from its
// trailing path segment; data: URIs get "download" plus an extension
// matching their media type.
package model
