package yamlrules

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

func TestReader(t *testing.T) {
	src := strings.NewReader(`
groups:
  - name: Default
    rules:
      - before: '\.'
        after: '\s'
      - before: '\bvs\.'
        after: '\s'
        break: false
        active: false
        comment: versus
maps:
  - pattern: '.*'
    rules: Default
`)
	r, err := NewReader(src)
	if err != nil {
		t.Fatal(err)
	}
	group, rule, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if want := srx.NewRule(`\.`, `\s`, true); group != "Default" || rule != want {
		t.Fatalf("first rule: got %v in %q, want %v", rule, group, want)
	}
	_, rule, err = r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if rule.Break || rule.Active || rule.Comment != "versus" {
		t.Fatalf("second rule: got %+v", rule)
	}
	if _, _, err = r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	lm, err := r.LanguageMaps().Next()
	if err != nil {
		t.Fatal(err)
	}
	if lm != (srx.LanguageMap{Pattern: ".*", RuleName: "Default"}) {
		t.Fatalf("language map: got %v", lm)
	}
	if r.Options() != srx.DefaultOptions() || r.Cascade() {
		t.Fatalf("missing header values should keep defaults")
	}
}

func TestEmptyDocument(t *testing.T) {
	rs, err := LoadRuleSet("empty", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.GroupNames()) != 0 {
		t.Fatalf("expected no rule groups, got %v", rs.GroupNames())
	}
}

func TestMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown key", doc: "cascade: true\nsegmentation: all\n"},
		{name: "wrong type", doc: "cascade: sometimes\n"},
		{name: "group without name", doc: "groups:\n  - rules:\n      - before: '\\.'\n"},
		{name: "bad rule", doc: "groups:\n  - name: x\n    rules:\n      - before: '(['\n"},
		{name: "map without rules", doc: "maps:\n  - pattern: '.*'\n"},
		{name: "bad mask", doc: "mask: '\\d+('\n"},
	}
	for _, tt := range tests {
		if _, err := LoadRuleSet(tt.name, strings.NewReader(tt.doc)); err == nil {
			t.Fatalf("%s: expected loading to fail", tt.name)
		}
	}
}

func TestLoadRuleSetFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "testdata", "default.yaml"))
	if err != nil {
		t.Fatalf("cannot read fixture: %v", err)
	}
	rs, err := LoadRuleSet("default.yaml", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rs.GroupNames(), []string{"English", "Default"}) {
		t.Fatalf("group names: got %v", rs.GroupNames())
	}
	seg := srx.NewSegmenter(rs)
	if err = seg.SetLanguage("en_GB"); err != nil {
		t.Fatal(err)
	}
	got, err := seg.Split("Dr. Jones measured 2.5 cm. Then she left.")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Dr. Jones measured", "2.5", "cm.", "Then she left."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments: got %q, want %q", got, want)
	}
}
