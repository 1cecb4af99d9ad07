package transform

import "strings"

// TrimTrailingNewlines strips every trailing line terminator.
func TrimTrailingNewlines(text string) string {
	return strings.TrimRight(text, "\r\n")
}
