package utils

import (
	"fmt"
	"strings"
	"time"
)

// TruncateString shortens s to maxLen runes, ending in an ellipsis when cut.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	return string(runes[:maxLen-3]) + "..."
}

// PadString pads a string to a specific width
func PadString(s string, width int, padChar rune) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}

	return s + strings.Repeat(string(padChar), width-n)
}

// Column truncates and pads s to exactly width runes.
func Column(s string, width int) string {
	return PadString(TruncateString(s, width), width, ' ')
}

// Detail is one labelled line of a confirmation prompt.
type Detail struct {
	Key   string
	Value string
}

// FormatConfirmationText formats confirmation prompts
func FormatConfirmationText(action string, details []Detail) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Confirm %s:\n\n", action))

	for _, d := range details {
		result.WriteString(fmt.Sprintf("  %s: %s\n", d.Key, d.Value))
	}

	result.WriteString("\nProceed? (y/N)")
	return result.String()
}

// FormatContactID renders a millisecond id as the time the contact was added.
func FormatContactID(id int64) string {
	return time.UnixMilli(id).UTC().Format("2006-01-02 15:04")
}
