// Package phrase provides utterance normalization and number-word conversion
// for spoken radio requests.
package phrase

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	fillerArticle = "a "
	fillerStation = " station"
)

// Normalize lower-cases an utterance, strips diacritics and collapses
// whitespace. Punctuation is kept: station names frequently carry dashes and
// dots that the directory matches on.
func Normalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = strings.Join(strings.Fields(text), " ")
	text = strings.ToLower(text)

	return text
}

// StripGenreFiller removes the filler words from a genre request, turning
// "play a jazz station" into "play jazz". The match is substring-based and
// removes the first occurrence only, article before suffix.
func StripGenreFiller(text string) string {
	text = strings.ToLower(text)
	text = strings.Replace(text, fillerArticle, "", 1)
	text = strings.Replace(text, fillerStation, "", 1)
	return text
}
