package srx

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Range is a segment of a coded text, given as byte offsets: text[Start:End].
type Range struct {
	Start, End int
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Segmenter breaks coded text into segments, using the rules a RuleSet
// selects for the current language.
//
// A Segmenter keeps the results of the last call to ComputeSegments and is
// therefore not safe for concurrent use. Create one segmenter per goroutine;
// they may share a RuleSet.
type Segmenter struct {
	rules    *RuleSet
	options  Options
	language string
	compiled []CompiledRule
	splits   []int
	ranges   []Range
}

// NewSegmenter creates a segmenter for a rule set, starting with the rule
// set's options. A language has to be set before segmenting text.
func NewSegmenter(rules *RuleSet) *Segmenter {
	seg := &Segmenter{rules: rules, options: DefaultOptions()}
	if rules != nil {
		seg.options = rules.Options()
	}
	return seg
}

// SetLanguage selects the rules for language lang.
func (seg *Segmenter) SetLanguage(lang string) error {
	compiled, err := seg.rules.CompiledRules(lang)
	if err != nil {
		return err
	}
	seg.language = NormalizeLanguage(lang)
	seg.compiled = compiled
	return nil
}

// Language returns the normalized tag of the current language, or "".
func (seg *Segmenter) Language() string {
	return seg.language
}

// SetOptions replaces the options of the segmenter.
func (seg *Segmenter) SetOptions(opts Options) {
	seg.options = opts
}

// Options returns the options of the segmenter.
func (seg *Segmenter) Options() Options {
	return seg.options
}

// Ranges returns the segments found by the last call to ComputeSegments.
func (seg *Segmenter) Ranges() []Range {
	return append([]Range(nil), seg.ranges...)
}

// SplitPositions returns the break positions used by the last call to
// ComputeSegments, as byte offsets in increasing order.
func (seg *Segmenter) SplitPositions() []int {
	return append([]int(nil), seg.splits...)
}

// Split segments text and returns the segments' texts.
func (seg *Segmenter) Split(text string) ([]string, error) {
	if _, err := seg.ComputeSegments(text); err != nil {
		return nil, err
	}
	parts := make([]string, len(seg.ranges))
	for i, r := range seg.ranges {
		parts[i] = text[r.Start:r.End]
	}
	return parts, nil
}

// ComputeSegments breaks text into segments and returns the number of
// segments found. Results are available from Ranges and SplitPositions.
//
// Inline codes are removed before any rule is applied, so rules never see
// them. Break positions are then mapped back onto the coded text and adjusted
// according to the options. If an error is returned, results of an earlier
// call are left untouched.
func (seg *Segmenter) ComputeSegments(text string) (int, error) {
	if seg.rules == nil {
		return 0, ErrNoRuleSet
	}
	if seg.language == "" {
		return 0, ErrNoLanguage
	}
	runes := []rune(text)
	inv := takeInventory(runes, seg.options.TreatIsolatedCodesAsWhitespace)
	plain := inv.strip(runes)
	candidates := newSplitStore(len(plain) / 16)
	for _, rule := range seg.compiled {
		err := rule.breakPositions(plain, func(pos int) {
			candidates.Put(pos, rule.Break)
		})
		if err != nil {
			return 0, fmt.Errorf("applying rule %s: %w", rule.Source, err)
		}
	}
	if seg.options.UseExternalBreakIterator {
		// boundaries move before trailing whitespace, where rules break
		for _, pos := range seg.rules.BreakIterator(seg.language).Boundaries(plain) {
			for pos > 0 && pos <= len(plain) && unicode.IsSpace(plain[pos-1]) {
				pos--
			}
			if pos > 0 && pos <= len(plain) {
				candidates.Put(pos, true)
			}
		}
	}
	splits := remapCandidates(candidates, inv, len(runes))
	if mask := seg.rules.maskRule(); mask != nil {
		if err := applyMask(mask, plain, inv, splits); err != nil {
			return 0, fmt.Errorf("applying mask rule: %w", err)
		}
	}
	breaks := seg.adjustBreaks(runes, inv, splits.Breaks())
	ranges := seg.buildRanges(runes, inv, breaks)
	tracer().Debugf("segmenter: %d codes, %d candidates, %d breaks, %d segments",
		inv.count(), candidates.Len(), len(breaks), len(ranges))
	offsets := runeByteOffsets(text)
	seg.splits = make([]int, len(breaks))
	for i, pos := range breaks {
		seg.splits[i] = offsets[pos]
	}
	seg.ranges = make([]Range, len(ranges))
	for i, r := range ranges {
		seg.ranges[i] = Range{Start: offsets[r.Start], End: offsets[r.End]}
	}
	return len(seg.ranges), nil
}

// remapCandidates moves candidates from the codes-removed text onto a coded
// text of n runes. Candidates falling outside of it are skipped.
func remapCandidates(candidates *splitStore, inv *codeInventory, n int) *splitStore {
	return candidates.Remap(func(pos int) int {
		p := inv.toOriginal(pos)
		if p > n {
			tracer().Errorf("split position %d maps to %d, outside of text, skipping", pos, p)
			return -1
		}
		return p
	})
}

// applyMask keeps spans matched by the mask rule in one piece: splits
// strictly inside a span are dropped, and the span's bounds become breaks.
func applyMask(mask *regexp2.Regexp, plain []rune, inv *codeInventory, splits *splitStore) error {
	m, err := mask.FindRunesMatch(plain)
	for m != nil && err == nil {
		if m.Length > 0 {
			start := inv.toOriginal(m.Index)
			end := inv.toOriginal(m.Index + m.Length)
			splits.RemoveInside(start, end)
			if start > 0 {
				splits.Force(start)
			}
			splits.Force(end)
		}
		m, err = mask.FindNextMatch(m)
	}
	return err
}

// adjustBreaks moves every break past the whitespace and the included codes
// following it. Breaks at the start or end of the text vanish.
func (seg *Segmenter) adjustBreaks(runes []rune, inv *codeInventory, breaks []int) []int {
	final := make([]int, 0, len(breaks))
	for _, pos := range breaks {
		if pos <= 0 {
			continue
		}
		for pos < len(runes) {
			if k := inv.markerAt(runes, pos); k != NoCode {
				if !seg.options.includes(k) {
					break
				}
				pos += 2
			} else if inv.cover[pos] == 0 && unicode.IsSpace(runes[pos]) {
				pos++
			} else {
				break
			}
		}
		if pos >= len(runes) {
			break
		}
		if len(final) > 0 && final[len(final)-1] >= pos {
			continue
		}
		final = append(final, pos)
	}
	return final
}

// buildRanges cuts runes at breaks and trims the pieces. Pieces consisting of
// whitespace only are dropped.
func (seg *Segmenter) buildRanges(runes []rune, inv *codeInventory, breaks []int) []Range {
	ranges := make([]Range, 0, len(breaks)+1)
	start := 0
	for i := 0; i <= len(breaks); i++ {
		end := len(runes)
		if i < len(breaks) {
			end = breaks[i]
		}
		if r, ok := seg.trim(runes, inv, start, end); ok {
			ranges = append(ranges, r)
		}
		start = end
	}
	if seg.options.OneSegmentIncludesAll && len(ranges) == 1 {
		ranges[0] = Range{Start: 0, End: len(runes)}
	}
	return ranges
}

// trim shrinks [start, end) as the trimming options demand. It reports false
// for a piece without any content.
func (seg *Segmenter) trim(runes []rune, inv *codeInventory, start, end int) (Range, bool) {
	asSpace := seg.options.TreatIsolatedCodesAsWhitespace
	lead, trail := start, end
	for lead < trail {
		if inv.cover[lead] == 0 && unicode.IsSpace(runes[lead]) {
			lead++
		} else if asSpace && inv.markerAt(runes, lead) == IsolatedCode {
			lead += 2
		} else {
			break
		}
	}
	if lead >= trail {
		return Range{}, false
	}
	for trail > lead {
		if inv.cover[trail-1] == 0 && unicode.IsSpace(runes[trail-1]) {
			trail--
		} else if asSpace && inv.markerEndingAt(runes, trail) == IsolatedCode {
			trail -= 2
		} else {
			break
		}
	}
	r := Range{Start: start, End: end}
	if seg.options.TrimLeadingWhitespace {
		r.Start = lead
	}
	if seg.options.TrimTrailingWhitespace {
		r.End = trail
	}
	assert(r.Start < r.End, "trimmed segment must not be empty")
	return r, true
}

// runeByteOffsets returns the byte offset of every rune of s, plus len(s).
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return offsets
}
