package dataset

import (
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	mentionPattern = regexp.MustCompile(`@\w+|#`)
	spacesPattern  = regexp.MustCompile(`\s+`)
)

// CleanText removes URLs, @mentions and '#' markers and collapses whitespace.
// It is total: the empty string maps to the empty string.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = spacesPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
