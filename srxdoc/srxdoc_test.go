package srxdoc

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/npillmayer/srx"
)

func mustLoadFixture(t *testing.T, file string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "testdata", file))
	if err != nil {
		t.Fatalf("cannot read fixture %s: %v", file, err)
	}
	return data
}

func wrap(header, rules, maps string) string {
	return `<srx xmlns="http://www.lisa.org/srx20" version="2.0">
 <header ` + header + `</header>
 <body><languagerules>` + rules + `</languagerules><maprules>` + maps + `</maprules></body>
</srx>`
}

func TestReader(t *testing.T) {
	r, err := NewReader(bytes.NewReader(mustLoadFixture(t, "default.srx")))
	if err != nil {
		t.Fatal(err)
	}
	if r.Version() != "2.0" {
		t.Fatalf("version: got %q, want 2.0", r.Version())
	}
	group, rule, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if group != "English" || rule.Before != `\bMr\.` || rule.After != `\s` || rule.Break {
		t.Fatalf("unexpected first rule %s in group %q", rule, group)
	}
	if rule.Comment != "abbreviations" {
		t.Fatalf("comment: got %q", rule.Comment)
	}
	var groups []string
	var inactive int
	for {
		group, rule, err = r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		groups = append(groups, group)
		if !rule.Active {
			inactive++
		}
	}
	if !reflect.DeepEqual(groups, []string{"English", "English", "Default"}) {
		t.Fatalf("groups of remaining rules: got %v", groups)
	}
	if inactive != 1 {
		t.Fatalf("expected 1 inactive rule, got %d", inactive)
	}
	maps := r.LanguageMaps()
	var got []srx.LanguageMap
	for {
		lm, err := maps.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, lm)
	}
	want := []srx.LanguageMap{{Pattern: "en.*", RuleName: "English"}, {Pattern: ".*", RuleName: "Default"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("language maps: got %v, want %v", got, want)
	}
}

func TestHeaderOptions(t *testing.T) {
	doc := wrap(`segmentsubflows="no" cascade="yes">
  <formathandle type="start" include="yes"/>
  <formathandle type="end" include="no"/>
  <formathandle type="isolated" include="yes"/>
  <options oneSegmentIncludesAll="yes" trimTrailingWhitespaces="no"
   treatIsolatedCodesAsWhitespace="yes" useIcu4JBreakRules="yes"/>
  <maskRule>https?://\S+</maskRule>
 `, "", "")
	r, err := NewReader(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	opts, err := r.Options()
	if err != nil {
		t.Fatal(err)
	}
	want := srx.Options{
		IncludeStartCodes:              true,
		IncludeIsolatedCodes:           true,
		OneSegmentIncludesAll:          true,
		TrimLeadingWhitespace:          true, // default
		TreatIsolatedCodesAsWhitespace: true,
		UseExternalBreakIterator:       true,
	}
	if opts != want {
		t.Fatalf("options: got %+v, want %+v", opts, want)
	}
	if cascade, err := r.Cascade(); err != nil || !cascade {
		t.Fatalf("cascade: got %v, %v", cascade, err)
	}
	if r.MaskRule() != `https?://\S+` {
		t.Fatalf("mask rule: got %q", r.MaskRule())
	}
}

func TestMissingHeaderValuesKeepDefaults(t *testing.T) {
	r, err := NewReader(strings.NewReader(wrap(">", "", "")))
	if err != nil {
		t.Fatal(err)
	}
	opts, err := r.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts != srx.DefaultOptions() {
		t.Fatalf("expected default options, got %+v", opts)
	}
	if cascade, _ := r.Cascade(); cascade {
		t.Fatalf("cascade should default to no")
	}
}

func TestMalformedDocuments(t *testing.T) {
	rule := `<languagerule languagerulename="Default"><rule break="yes"><beforebreak>\.</beforebreak><afterbreak>\s</afterbreak></rule></languagerule>`
	defaultMap := `<languagemap languagepattern=".*" languagerulename="Default"/>`
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not xml", doc: "segment everything"},
		{name: "old version", doc: strings.Replace(wrap(">", rule, defaultMap), `version="2.0"`, `version="1.0"`, 1)},
		{name: "bad flag", doc: wrap(`cascade="maybe">`, rule, defaultMap)},
		{name: "bad break flag", doc: wrap(">", strings.Replace(rule, `break="yes"`, `break="often"`, 1), defaultMap)},
		{name: "unknown format handle", doc: wrap(`><formathandle type="inline" include="yes"/>`, rule, defaultMap)},
		{name: "bad rule", doc: wrap(">", strings.Replace(rule, `\.`, `([.`, 1), defaultMap)},
		{name: "map without rule name", doc: wrap(">", rule, `<languagemap languagepattern=".*"/>`)},
		{name: "bad mask", doc: wrap(`><maskRule>\d+(</maskRule>`, rule, defaultMap)},
	}
	for _, tt := range tests {
		if _, err := LoadRuleSet(tt.name, strings.NewReader(tt.doc)); err == nil {
			t.Fatalf("%s: expected loading to fail", tt.name)
		}
	}
}

func TestLoadRuleSetFixture(t *testing.T) {
	rs, err := LoadRuleSet("default.srx", bytes.NewReader(mustLoadFixture(t, "default.srx")))
	if err != nil {
		t.Fatal(err)
	}
	if !rs.Cascade() || rs.MaskRule() != `\d+\.\d+` {
		t.Fatalf("header not applied: cascade=%v, mask=%q", rs.Cascade(), rs.MaskRule())
	}
	if w := rs.Warnings(); len(w) != 0 {
		t.Fatalf("fixture should load without warnings, got %v", w)
	}
	tests := []struct {
		lang string
		text string
		want []string
	}{
		{
			lang: "en-US",
			text: "Mr. Smith arrived. Dr. Who left.",
			want: []string{"Mr. Smith arrived.", "Dr. Who left."},
		},
		{
			lang: "de",
			text: "Mr. Smith arrived. Dr. Who left.",
			want: []string{"Mr.", "Smith arrived.", "Dr.", "Who left."},
		},
		{
			lang: "en",
			text: "Pi is 3.14 today. Yes.",
			want: []string{"Pi is", "3.14", "today.", "Yes."},
		},
	}
	for _, tt := range tests {
		seg := srx.NewSegmenter(rs)
		if err := seg.SetLanguage(tt.lang); err != nil {
			t.Fatal(err)
		}
		got, err := seg.Split(tt.text)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("segments for %s: got %q, want %q", tt.lang, got, tt.want)
		}
	}
}
