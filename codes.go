package srx

import (
	"fmt"
	"strings"
)

// Inline codes are encoded as two runes: a marker rune telling the kind of
// the code, followed by an index rune (IndexBase + index).
const (
	MarkerOpening  rune = '\uE101'
	MarkerClosing  rune = '\uE102'
	MarkerIsolated rune = '\uE103'
	IndexBase      rune = '\uE110'
)

// CodeKind is the kind of an inline code.
type CodeKind uint8

// Kinds of inline codes.
const (
	NoCode CodeKind = iota
	OpeningCode
	ClosingCode
	IsolatedCode
)

func (k CodeKind) String() string {
	switch k {
	case OpeningCode:
		return "opening"
	case ClosingCode:
		return "closing"
	case IsolatedCode:
		return "isolated"
	}
	return "none"
}

// markerKind returns the code kind a rune announces, or NoCode.
func markerKind(r rune) CodeKind {
	switch r {
	case MarkerOpening:
		return OpeningCode
	case MarkerClosing:
		return ClosingCode
	case MarkerIsolated:
		return IsolatedCode
	}
	return NoCode
}

// Code returns the coded-text representation of an inline code.
//
// Example:
//
//	"Hello" + Code(OpeningCode, 0) + "World" + Code(ClosingCode, 0)
func Code(kind CodeKind, index int) string {
	var m rune
	switch kind {
	case OpeningCode:
		m = MarkerOpening
	case ClosingCode:
		m = MarkerClosing
	case IsolatedCode:
		m = MarkerIsolated
	default:
		panic(fmt.Sprintf("not a code kind: %d", kind))
	}
	return string([]rune{m, IndexBase + rune(index)})
}

// StripCodes returns text with all inline codes removed.
func StripCodes(text string) string {
	runes := []rune(text)
	inv := takeInventory(runes, false)
	return string(inv.strip(runes))
}

// CodesRemovedPattern replaces the any-code token in rules matched against
// text with codes removed. Codes are invisible there, so the token matches
// the empty string.
const CodesRemovedPattern = "(?:)"

// CodesPresentPattern replaces the any-code token in rules matched against
// raw coded text.
const CodesPresentPattern = `(?:[\uE101\uE102\uE103].)`

// AnyCode is the token rules use to refer to an arbitrary inline code.
const AnyCode = `\Y`

// substituteAnyCode replaces every unescaped AnyCode token in pattern.
func substituteAnyCode(pattern string, codePattern string) string {
	if !strings.Contains(pattern, AnyCode) {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\\' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		if pattern[i+1] == 'Y' {
			b.WriteString(codePattern)
		} else {
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
		}
		i++ // escape sequences are consumed as a pair
	}
	return b.String()
}
