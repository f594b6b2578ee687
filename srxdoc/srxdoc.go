package srxdoc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/srx"
)

// Reader streams segmentation rules from an SRX 2.0 document.
//
// The document is decoded as a whole when the reader is created; rules and
// language maps are then handed out one by one.
type Reader struct {
	doc   *document
	group int
	index int
}

// LoadRuleSet parses an SRX document and returns a ready-to-use rule set.
//
// An SRX document looks like this:
//
//	<srx xmlns="http://www.lisa.org/srx20" version="2.0">
//	 <header segmentsubflows="yes" cascade="no">
//	  <formathandle type="start" include="no"/>
//	  <formathandle type="end" include="yes"/>
//	  <formathandle type="isolated" include="no"/>
//	 </header>
//	 <body>
//	  <languagerules>
//	   <languagerule languagerulename="Default">
//	    <rule break="no">
//	     <beforebreak>\bMr\.</beforebreak><afterbreak>\s</afterbreak>
//	    </rule>
//	    ...
//	   </languagerule>
//	  </languagerules>
//	  <maprules>
//	   <languagemap languagepattern=".*" languagerulename="Default"/>
//	  </maprules>
//	 </body>
//	</srx>
//
// The header may carry Okapi extensions: an options element with attributes
// oneSegmentIncludesAll, trimLeadingWhitespaces, trimTrailingWhitespaces,
// treatIsolatedCodesAsWhitespace and useIcu4JBreakRules, and a maskRule
// element.
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
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}
	rs.SetOptions(opts)
	cascade, err := r.Cascade()
	if err != nil {
		return nil, err
	}
	rs.SetCascade(cascade)
	if err = rs.SetMaskRule(r.MaskRule()); err != nil {
		return nil, err
	}
	return rs, nil
}

// NewReader decodes an SRX document.
func NewReader(reader io.Reader) (*Reader, error) {
	doc := &document{}
	if err := xml.NewDecoder(reader).Decode(doc); err != nil {
		return nil, fmt.Errorf("cannot decode SRX document: %w", err)
	}
	if doc.Version != "" && !strings.HasPrefix(doc.Version, "2") {
		return nil, fmt.Errorf("unsupported SRX version %q", doc.Version)
	}
	return &Reader{doc: doc}, nil
}

// Version returns the SRX version the document declares.
func (r *Reader) Version() string {
	return r.doc.Version
}

// Next returns the next rule together with the name of its group.
// It returns io.EOF when exhausted.
func (r *Reader) Next() (string, srx.Rule, error) {
	groups := r.doc.Body.LanguageRules
	for r.group < len(groups) {
		g := groups[r.group]
		if r.index < len(g.Rules) {
			rule, err := g.Rules[r.index].toRule()
			r.index++
			if err != nil {
				return "", srx.Rule{}, fmt.Errorf("language rule %q: %w", g.Name, err)
			}
			return g.Name, rule, nil
		}
		r.group++
		r.index = 0
	}
	return "", srx.Rule{}, io.EOF
}

// LanguageMaps returns a reader for the document's language maps.
func (r *Reader) LanguageMaps() *MapReader {
	return &MapReader{maps: r.doc.Body.MapRules}
}

// Cascade reads the cascade flag from the header.
func (r *Reader) Cascade() (bool, error) {
	return flag("cascade", r.doc.Header.Cascade, false)
}

// MaskRule returns the expression of the mask rule, if any.
func (r *Reader) MaskRule() string {
	return r.doc.Header.MaskRule
}

// setting binds a yes/no attribute to the option it controls.
type setting struct {
	name  string
	value string
	dest  *bool
}

// Options reads the segmenter options from the header. Values missing in the
// document keep their SRX defaults.
func (r *Reader) Options() (srx.Options, error) {
	opts := srx.DefaultOptions()
	h := r.doc.Header
	settings := []setting{{"segmentsubflows", h.SegmentSubFlows, &opts.SegmentSubFlows}}
	for _, fh := range h.FormatHandles {
		name := "formathandle " + fh.Type
		switch fh.Type {
		case "start":
			settings = append(settings, setting{name, fh.Include, &opts.IncludeStartCodes})
		case "end":
			settings = append(settings, setting{name, fh.Include, &opts.IncludeEndCodes})
		case "isolated":
			settings = append(settings, setting{name, fh.Include, &opts.IncludeIsolatedCodes})
		default:
			return opts, fmt.Errorf("unknown formathandle type %q", fh.Type)
		}
	}
	if o := h.Options; o != nil {
		settings = append(settings,
			setting{"oneSegmentIncludesAll", o.OneSegmentIncludesAll, &opts.OneSegmentIncludesAll},
			setting{"trimLeadingWhitespaces", o.TrimLeadingWhitespaces, &opts.TrimLeadingWhitespace},
			setting{"trimTrailingWhitespaces", o.TrimTrailingWhitespaces, &opts.TrimTrailingWhitespace},
			setting{"treatIsolatedCodesAsWhitespace", o.TreatIsolatedCodesAsWhitespace, &opts.TreatIsolatedCodesAsWhitespace},
			setting{"useIcu4JBreakRules", o.UseIcu4JBreakRules, &opts.UseExternalBreakIterator},
		)
	}
	for _, s := range settings {
		v, err := flag(s.name, s.value, *s.dest)
		if err != nil {
			return opts, err
		}
		*s.dest = v
	}
	return opts, nil
}

// MapReader streams the language maps of an SRX document.
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
	if lm.RuleName == "" {
		return srx.LanguageMap{}, fmt.Errorf("language map %q names no language rule", lm.Pattern)
	}
	return srx.LanguageMap{Pattern: lm.Pattern, RuleName: lm.RuleName}, nil
}

// --- XML structure ---------------------------------------------------------

type document struct {
	XMLName xml.Name `xml:"srx"`
	Version string   `xml:"version,attr"`
	Header  header   `xml:"header"`
	Body    body     `xml:"body"`
}

type header struct {
	SegmentSubFlows string         `xml:"segmentsubflows,attr"`
	Cascade         string         `xml:"cascade,attr"`
	FormatHandles   []formatHandle `xml:"formathandle"`
	Options         *okapiOptions  `xml:"options"`
	MaskRule        string         `xml:"maskRule"`
}

type formatHandle struct {
	Type    string `xml:"type,attr"`
	Include string `xml:"include,attr"`
}

type okapiOptions struct {
	OneSegmentIncludesAll          string `xml:"oneSegmentIncludesAll,attr"`
	TrimLeadingWhitespaces         string `xml:"trimLeadingWhitespaces,attr"`
	TrimTrailingWhitespaces        string `xml:"trimTrailingWhitespaces,attr"`
	TreatIsolatedCodesAsWhitespace string `xml:"treatIsolatedCodesAsWhitespace,attr"`
	UseIcu4JBreakRules             string `xml:"useIcu4JBreakRules,attr"`
}

type body struct {
	LanguageRules []languageRule `xml:"languagerules>languagerule"`
	MapRules      []languageMap  `xml:"maprules>languagemap"`
}

type languageRule struct {
	Name  string    `xml:"languagerulename,attr"`
	Rules []xmlRule `xml:"rule"`
}

type xmlRule struct {
	Break   string `xml:"break,attr"`
	Active  string `xml:"active,attr"`
	Before  string `xml:"beforebreak"`
	After   string `xml:"afterbreak"`
	Comment string `xml:",comment"`
}

type languageMap struct {
	Pattern  string `xml:"languagepattern,attr"`
	RuleName string `xml:"languagerulename,attr"`
}

func (x xmlRule) toRule() (srx.Rule, error) {
	isBreak, err := flag("break", x.Break, true)
	if err != nil {
		return srx.Rule{}, err
	}
	active, err := flag("active", x.Active, true)
	if err != nil {
		return srx.Rule{}, err
	}
	return srx.Rule{
		Before:  x.Before,
		After:   x.After,
		Break:   isBreak,
		Active:  active,
		Comment: strings.TrimSpace(x.Comment),
	}, nil
}

// flag interprets an SRX yes/no attribute.
func flag(name, value string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return def, nil
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	}
	return def, fmt.Errorf("attribute %s: expected yes or no, found %q", name, value)
}
