package model

// Outcome is the terminal state of a download item.
//
// An item reaches exactly one outcome, and never leaves it:
//
//	started -> progressing* -> completed | cancelled | interrupted
type Outcome int

const (
	// OutcomeCompleted means every byte was received and written to SavePath.
	OutcomeCompleted Outcome = iota

	// OutcomeCancelled means the host or the user cancelled the transfer.
	// It is not an error.
	OutcomeCancelled

	// OutcomeInterrupted means the transfer failed (network or disk error).
	OutcomeInterrupted
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}
