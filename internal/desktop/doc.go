// Package desktop provides the platform affordances used by the session
// tracker when it runs in a terminal.
//
//   - Shell implements error boxes, the dock "download finished" signal
//     and reveal-in-folder (open -R, explorer /select, xdg-open).
//   - TitleBadge mirrors the active download count into the terminal
//     title.
//   - DownloadsDir resolves the default destination folder.
package desktop
