// Package transform implements the text transformations applied to included content.
package transform

import "strings"

// SliceResult reports which requested delimiters were not found.
type SliceResult struct {
	StartMissing bool
	EndMissing   bool
}

// Slice keeps the text after the first occurrence of start and before the
// first following occurrence of end. An empty delimiter is not applied.
// A missing start yields empty text; a missing end keeps the text to its end.
func Slice(text, start, end string) (string, SliceResult) {
	var res SliceResult

	if start != "" {
		_, after, found := strings.Cut(text, start)
		if !found {
			res.StartMissing = true
			res.EndMissing = end != "" && !strings.Contains(text, end)
			return "", res
		}
		text = after
	}

	if end != "" {
		before, _, found := strings.Cut(text, end)
		if !found {
			res.EndMissing = true
			return text, res
		}
		text = before
	}

	return text, res
}
