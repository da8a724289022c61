package tracker

import (
	"regexp"
)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// FormatMessage replaces {key} placeholders in tmpl with values from vars.
// Placeholders without a value are left as they are.
//
// Example:
//
//	FormatMessage("The download of {filename} was interrupted",
//	    map[string]string{"filename": "report.pdf"})
//	// "The download of report.pdf was interrupted"
func FormatMessage(tmpl string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// InterruptedError is reported when the host runtime interrupts a transfer.
// Its message is the formatted ErrorMessage of the tracker.
type InterruptedError struct {
	Item    Item
	Message string
}

func (e *InterruptedError) Error() string {
	return e.Message
}
