package srx

// BreakIterator finds sentence boundaries independently of any rule set.
//
// Boundaries returns rune offsets into text, each one denoting the start of
// a new sentence. Offsets 0 and the text length need not be reported.
type BreakIterator interface {
	Boundaries(text []rune) []int
}

// BreakIteratorFactory creates a break iterator for a language tag.
type BreakIteratorFactory func(lang string) BreakIterator
