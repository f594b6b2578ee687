package srx

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// SentenceIterator is a BreakIterator following the Unicode sentence
// boundary rules of UAX #29. It does not depend on the language.
type SentenceIterator struct{}

// NewSentenceIterator is the default BreakIteratorFactory.
func NewSentenceIterator(lang string) BreakIterator {
	return SentenceIterator{}
}

// Boundaries returns the start offset of every sentence after the first.
// Trailing whitespace belongs to the sentence it follows.
func (SentenceIterator) Boundaries(text []rune) []int {
	var boundaries []int
	rest := string(text)
	state := -1
	pos := 0
	var sentence string
	for len(rest) > 0 {
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		pos += utf8.RuneCountInString(sentence)
		if len(rest) > 0 {
			boundaries = append(boundaries, pos)
		}
	}
	return boundaries
}
