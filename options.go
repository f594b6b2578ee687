package srx

// Options control how break positions are turned into segments.
type Options struct {
	// SegmentSubFlows tells callers whether sub-flows of a text unit should be
	// segmented as well. Coded text as seen by a Segmenter has no sub-flows.
	SegmentSubFlows bool

	// Include...Codes decide whether inline codes immediately following a break
	// stay with the preceding segment. Codes not included start the next one.
	IncludeStartCodes    bool
	IncludeEndCodes      bool
	IncludeIsolatedCodes bool

	// OneSegmentIncludesAll extends a single resulting segment to the
	// complete text, ignoring trimming.
	OneSegmentIncludesAll bool

	TrimLeadingWhitespace  bool
	TrimTrailingWhitespace bool

	// TreatIsolatedCodesAsWhitespace lets isolated codes appear as a single
	// space to the rules instead of vanishing.
	TreatIsolatedCodesAsWhitespace bool

	// UseExternalBreakIterator adds the boundaries of a Unicode sentence break
	// iterator after all explicit rules.
	UseExternalBreakIterator bool
}

// DefaultOptions returns the SRX defaults.
func DefaultOptions() Options {
	return Options{
		SegmentSubFlows:        true,
		IncludeEndCodes:        true,
		TrimLeadingWhitespace:  true,
		TrimTrailingWhitespace: true,
	}
}

// includes reports whether codes of kind k move to the segment before a break.
func (o Options) includes(k CodeKind) bool {
	switch k {
	case OpeningCode:
		return o.IncludeStartCodes
	case ClosingCode:
		return o.IncludeEndCodes
	case IsolatedCode:
		return o.IncludeIsolatedCodes || o.TreatIsolatedCodesAsWhitespace
	}
	return false
}
