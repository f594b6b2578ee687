/*
Package rulesets loads segmentation rule sets without knowing their format in
advance.

Example usage:

	f, _ := os.Open("path/to/rules.srx")
	defer f.Close()

	rules, err := rulesets.Load("en", f)
	...
	seg := srx.NewSegmenter(rules)
	seg.SetLanguage("en-US")
	segments, err := seg.Split(text)

Documents starting with '<' are read as SRX 2.0, all others as YAML.
*/
package rulesets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/srx"
	"github.com/npillmayer/srx/srxdoc"
	"github.com/npillmayer/srx/yamlrules"
)

func tracer() tracing.Trace {
	return tracing.Select("srx.load")
}

// Format is the document format of a rule set.
type Format int

const (
	YAML Format = iota
	SRX
)

func (f Format) String() string {
	if f == SRX {
		return "SRX"
	}
	return "YAML"
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Sniff guesses the format of a rule set document.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(bytes.TrimPrefix(data, bom), " \t\r\n")
	if len(data) > 0 && data[0] == '<' {
		return SRX
	}
	return YAML
}

// Load reads a rule set document and hands it to the adapter for its format.
// The document is held in memory while loading.
func Load(name string, reader io.Reader) (*srx.RuleSet, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	format := Sniff(data)
	tracer().Debugf("loading rule set %s as %s", name, format)
	var rs *srx.RuleSet
	switch format {
	case SRX:
		rs, err = srxdoc.LoadRuleSet(name, bytes.NewReader(data))
	default:
		rs, err = yamlrules.LoadRuleSet(name, bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("rule set %s: %w", name, err)
	}
	for _, w := range rs.Warnings() {
		tracer().Infof("rule set %s: %s", name, w)
	}
	return rs, nil
}

// LoadFile loads the rule set document at path. The rule set is named after
// the file.
func LoadFile(path string) (*srx.RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(filepath.Base(path), f)
}
