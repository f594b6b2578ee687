/*
Package yamlrules reads segmentation rule sets written in YAML.

A rule set document looks like this:

	cascade: true
	mask: '\d+\.\d+'
	options:
	  includeEndCodes: true
	  trimLeadingWhitespace: true
	groups:
	  - name: English
	    rules:
	      - before: '\bMr\.'
	        after: '\s'
	        break: false
	  - name: Default
	    rules:
	      - before: '[.?!]+'
	        after: '\s'
	maps:
	  - pattern: 'en.*'
	    rules: English
	  - pattern: '.*'
	    rules: Default

Rules break unless told otherwise and are active by default. Options missing
from the document keep their SRX defaults. Unknown keys are an error.
*/
package yamlrules

import (
	"errors"
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/srx"
	"gopkg.in/yaml.v3"
)

func tracer() tracing.Trace {
	return tracing.Select("srx.yaml")
}

// Reader streams segmentation rules from a YAML document.
type Reader struct {
	doc   *document
	group int
	index int
}

// LoadRuleSet parses a YAML rule set document and returns a ready-to-use
// rule set.
func LoadRuleSet(name string, reader io.Reader) (*srx.RuleSet, error) {
	r, err := NewReader(reader)
	if err != nil {
		return nil, err
	}
	rs, err := srx.LoadRules(name, r)
	if err != nil {
		return nil, err
	}
	if err = rs.LoadLanguageMaps(r.LanguageMaps()); err != nil {
		return nil, err
	}
	rs.SetOptions(r.Options())
	rs.SetCascade(r.Cascade())
	if err = rs.SetMaskRule(r.MaskRule()); err != nil {
		return nil, err
	}
	return rs, nil
}

// NewReader decodes a YAML rule set document. An empty document is a rule
// set without rules.
func NewReader(reader io.Reader) (*Reader, error) {
	doc := &document{}
	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot decode YAML rule set: %w", err)
	}
	tracer().Debugf("decoded %d rule groups and %d language maps", len(doc.Groups), len(doc.Maps))
	return &Reader{doc: doc}, nil
}

// Next returns the next rule together with the name of its group.
// It returns io.EOF when exhausted.
func (r *Reader) Next() (string, srx.Rule, error) {
	for r.group < len(r.doc.Groups) {
		g := r.doc.Groups[r.group]
		if g.Name == "" {
			r.group++
			return "", srx.Rule{}, fmt.Errorf("rule group #%d has no name", r.group)
		}
		if r.index < len(g.Rules) {
			x := g.Rules[r.index]
			r.index++
			return g.Name, srx.Rule{
				Before:  x.Before,
				After:   x.After,
				Break:   or(x.Break, true),
				Active:  or(x.Active, true),
				Comment: x.Comment,
			}, nil
		}
		r.group++
		r.index = 0
	}
	return "", srx.Rule{}, io.EOF
}

// LanguageMaps returns a reader for the document's language maps.
func (r *Reader) LanguageMaps() *MapReader {
	return &MapReader{maps: r.doc.Maps}
}

// Cascade reports whether the document asks for cascading selection.
func (r *Reader) Cascade() bool {
	return r.doc.Cascade
}

// MaskRule returns the expression of the mask rule, if any.
func (r *Reader) MaskRule() string {
	return r.doc.Mask
}

// Options returns the segmenter options of the document.
func (r *Reader) Options() srx.Options {
	o := r.doc.Options
	def := srx.DefaultOptions()
	return srx.Options{
		SegmentSubFlows:                or(o.SegmentSubFlows, def.SegmentSubFlows),
		IncludeStartCodes:              or(o.IncludeStartCodes, def.IncludeStartCodes),
		IncludeEndCodes:                or(o.IncludeEndCodes, def.IncludeEndCodes),
		IncludeIsolatedCodes:           or(o.IncludeIsolatedCodes, def.IncludeIsolatedCodes),
		OneSegmentIncludesAll:          or(o.OneSegmentIncludesAll, def.OneSegmentIncludesAll),
		TrimLeadingWhitespace:          or(o.TrimLeadingWhitespace, def.TrimLeadingWhitespace),
		TrimTrailingWhitespace:         or(o.TrimTrailingWhitespace, def.TrimTrailingWhitespace),
		TreatIsolatedCodesAsWhitespace: or(o.TreatIsolatedCodesAsWhitespace, def.TreatIsolatedCodesAsWhitespace),
		UseExternalBreakIterator:       or(o.UseExternalBreakIterator, def.UseExternalBreakIterator),
	}
}

// MapReader streams the language maps of a YAML document.
type MapReader struct {
	maps  []languageMap
	index int
}

// Next returns the next language map. It returns io.EOF when exhausted.
func (m *MapReader) Next() (srx.LanguageMap, error) {
	if m.index >= len(m.maps) {
		return srx.LanguageMap{}, io.EOF
	}
	lm := m.maps[m.index]
	m.index++
	if lm.Rules == "" {
		return srx.LanguageMap{}, fmt.Errorf("language map %q names no rule group", lm.Pattern)
	}
	return srx.LanguageMap{Pattern: lm.Pattern, RuleName: lm.Rules}, nil
}

type document struct {
	Cascade bool          `yaml:"cascade"`
	Mask    string        `yaml:"mask"`
	Options options       `yaml:"options"`
	Groups  []group       `yaml:"groups"`
	Maps    []languageMap `yaml:"maps"`
}

type options struct {
	SegmentSubFlows                *bool `yaml:"segmentSubFlows"`
	IncludeStartCodes              *bool `yaml:"includeStartCodes"`
	IncludeEndCodes                *bool `yaml:"includeEndCodes"`
	IncludeIsolatedCodes           *bool `yaml:"includeIsolatedCodes"`
	OneSegmentIncludesAll          *bool `yaml:"oneSegmentIncludesAll"`
	TrimLeadingWhitespace          *bool `yaml:"trimLeadingWhitespace"`
	TrimTrailingWhitespace         *bool `yaml:"trimTrailingWhitespace"`
	TreatIsolatedCodesAsWhitespace *bool `yaml:"treatIsolatedCodesAsWhitespace"`
	UseExternalBreakIterator       *bool `yaml:"useExternalBreakIterator"`
}

type group struct {
	Name  string `yaml:"name"`
	Rules []rule `yaml:"rules"`
}

type rule struct {
	Before  string `yaml:"before"`
	After   string `yaml:"after"`
	Break   *bool  `yaml:"break"`
	Active  *bool  `yaml:"active"`
	Comment string `yaml:"comment"`
}

type languageMap struct {
	Pattern string `yaml:"pattern"`
	Rules   string `yaml:"rules"`
}

func or(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
