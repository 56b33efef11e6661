package extract

import (
	"regexp"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`(\r\n|\n|\r){3,}`)

// Normalize cleans raw extracted text into the form the model sees:
// form feeds removed, runs of three or more line breaks collapsed to one
// blank line, leading and trailing whitespace trimmed. Running it twice
// gives the same result.
func Normalize(raw string) string {
	cleaned := strings.ReplaceAll(raw, "\f", "")
	cleaned = blankRunPattern.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
