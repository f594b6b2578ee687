package srx

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/dlclark/regexp2"
	"golang.org/x/text/language"
)

// ErrNoLanguage is returned when segmentation is requested without a language.
var ErrNoLanguage = errors.New("no language set for segmentation")

// ErrNoRuleSet is returned when a segmenter has no rule set to draw rules from.
var ErrNoRuleSet = errors.New("no segmentation rule set")

// LanguageMap associates a pattern for language tags with a rule group.
// Pattern is a case-insensitive regular expression which has to match the
// complete language tag.
type LanguageMap struct {
	Pattern  string
	RuleName string
}

// RuleReader yields rules one-by-one, together with the name of the rule
// group they belong to. It should return io.EOF when the stream is exhausted.
type RuleReader interface {
	Next() (group string, rule Rule, err error)
}

// MapReader yields language maps one-by-one.
// It should return io.EOF when the stream is exhausted.
type MapReader interface {
	Next() (LanguageMap, error)
}

type ruleGroup struct {
	name  string
	rules []CompiledRule
}

type compiledMap struct {
	LanguageMap
	matcher *regexp2.Regexp
}

// RuleSet is a loaded set of segmentation rules.
//
// A rule set contains:
//   - named groups of compiled rules, in document order
//   - language maps, in document order, selecting groups for a language
//   - an optional mask rule and default options for segmenters.
//
// After loading, a RuleSet may be shared between goroutines.
type RuleSet struct {
	Identifier string // Identifies the rule set

	mu        sync.RWMutex
	groups    []*ruleGroup
	maps      []compiledMap
	cascade   bool
	mask      *regexp2.Regexp
	maskExpr  string
	options   Options
	warnings  []string
	selected  *trie.Trie // language => []CompiledRule
	factory   BreakIteratorFactory
	iterators map[string]BreakIterator
}

// NewRuleSet creates an empty rule set with default options.
func NewRuleSet(name string) *RuleSet {
	return &RuleSet{
		Identifier: fmt.Sprintf("rules: %s", name),
		options:    DefaultOptions(),
		selected:   trie.New(),
		factory:    NewSentenceIterator,
		iterators:  make(map[string]BreakIterator),
	}
}

// LoadRules compiles rules from a streaming, format-agnostic source.
//
// File formats are parsed by adapters like packages srxdoc and yamlrules,
// which feed this API.
// A rule failing to compile makes the whole load fail.
func LoadRules(name string, reader RuleReader) (rs *RuleSet, err error) {
	rs = NewRuleSet(name)
	var group string
	var rule Rule
	count := 0
	for {
		group, rule, err = reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err = rs.AddRule(group, rule); err != nil {
			return nil, err
		}
		count++
	}
	tracer().Infof("loaded %d rules in %d groups for %s", count, len(rs.groups), rs.Identifier)
	return rs, nil
}

// LoadLanguageMaps loads language maps from a streaming source.
func (rs *RuleSet) LoadLanguageMaps(reader MapReader) (err error) {
	for {
		var lm LanguageMap
		lm, err = reader.Next()
		if err == io.EOF {
			rs.checkGroups()
			return nil
		} else if err != nil {
			break
		}
		if err = rs.AddLanguageMap(lm); err != nil {
			break
		}
	}
	return err
}

// AddRule compiles rule and appends it to the named group, creating the group
// if necessary. Inactive rules, including Rule literals lacking Active: true,
// are skipped and traced at Debug level.
func (rs *RuleSet) AddRule(group string, rule Rule) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	g := rs.group(group)
	if g == nil {
		g = &ruleGroup{name: group}
		rs.groups = append(rs.groups, g)
	}
	if !rule.Active {
		tracer().Debugf("skipping inactive rule %s in group %q", rule, group)
		return nil
	}
	c, err := CompileRule(rule, CodesRemovedPattern)
	if err != nil {
		return fmt.Errorf("rule group %q: %w", group, err)
	}
	g.rules = append(g.rules, c)
	rs.clearCache()
	return nil
}

// AddLanguageMap appends a language map. Its pattern is compiled immediately.
func (rs *RuleSet) AddLanguageMap(lm LanguageMap) error {
	re, err := regexp2.Compile("^(?:"+lm.Pattern+")$", regexp2.IgnoreCase)
	if err != nil {
		return fmt.Errorf("cannot compile language pattern %q: %w", lm.Pattern, err)
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.maps = append(rs.maps, compiledMap{LanguageMap: lm, matcher: re})
	rs.clearCache()
	return nil
}

// SetMaskRule sets the expression for spans which must never be broken
// internally. An empty expression removes the mask rule.
func (rs *RuleSet) SetMaskRule(expr string) error {
	var re *regexp2.Regexp
	if expr != "" {
		var err error
		if re, err = regexp2.Compile(substituteAnyCode(expr, CodesRemovedPattern), regexp2.None); err != nil {
			return fmt.Errorf("cannot compile mask rule %q: %w", expr, err)
		}
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.mask, rs.maskExpr = re, expr
	return nil
}

// MaskRule returns the expression of the mask rule, if any.
func (rs *RuleSet) MaskRule() string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.maskExpr
}

// SetCascade switches between applying the groups of all matching language
// maps (true) and of the first matching map only (false).
func (rs *RuleSet) SetCascade(cascade bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.cascade = cascade
	rs.clearCache()
}

// Cascade reports whether language maps cascade.
func (rs *RuleSet) Cascade() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.cascade
}

// SetOptions sets the options new segmenters start with.
func (rs *RuleSet) SetOptions(opts Options) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.options = opts
}

// Options returns the options new segmenters start with.
func (rs *RuleSet) Options() Options {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.options
}

// Warn records a non-fatal problem found while loading.
func (rs *RuleSet) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	tracer().Infof("%s: %s", rs.Identifier, msg)
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.warnings = append(rs.warnings, msg)
}

// Warnings returns the non-fatal problems found while loading.
func (rs *RuleSet) Warnings() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return append([]string(nil), rs.warnings...)
}

// GroupNames returns the names of all rule groups in document order.
func (rs *RuleSet) GroupNames() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	names := make([]string, len(rs.groups))
	for i, g := range rs.groups {
		names[i] = g.name
	}
	return names
}

// checkGroups warns about maps referring to unknown groups and about groups
// no map refers to.
func (rs *RuleSet) checkGroups() {
	rs.mu.RLock()
	var unknown, unmapped []string
	referenced := make(map[string]bool, len(rs.maps))
	for _, m := range rs.maps {
		referenced[m.RuleName] = true
		if rs.group(m.RuleName) == nil {
			unknown = append(unknown, m.RuleName)
		}
	}
	for _, g := range rs.groups {
		if !referenced[g.name] {
			unmapped = append(unmapped, g.name)
		}
	}
	rs.mu.RUnlock()
	for _, name := range unknown {
		rs.Warn("language map refers to undefined rule group %q", name)
	}
	for _, name := range unmapped {
		rs.Warn("rule group %q is not used by any language map", name)
	}
}

// group finds a rule group by name. Callers hold the lock.
func (rs *RuleSet) group(name string) *ruleGroup {
	for _, g := range rs.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// NormalizeLanguage brings a language tag into BCP 47 form, e.g.
// "en_us" => "en-US". Only the spelling changes: deprecated subtags like
// "iw" are kept, so language patterns see the language the caller named.
// Tags which do not parse are returned trimmed.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Raw.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return lang
	}
	return tag.String()
}

// Select returns the rules applicable for a language, in the order they
// are to be applied.
//
// Language maps are examined in document order. Without cascading only the
// group of the first matching map is used, otherwise the groups of all
// matching maps are concatenated.
func (rs *RuleSet) Select(lang string) []Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	compiled := rs.selectCompiled(NormalizeLanguage(lang))
	rules := make([]Rule, len(compiled))
	for i, c := range compiled {
		rules[i] = c.Source
	}
	return rules
}

// CompiledRules returns the compiled rules applicable for a language.
// Selections are cached per language.
func (rs *RuleSet) CompiledRules(lang string) ([]CompiledRule, error) {
	if rs == nil {
		return nil, ErrNoRuleSet
	}
	lang = NormalizeLanguage(lang)
	if lang == "" {
		return nil, ErrNoLanguage
	}
	rs.mu.RLock()
	if node, found := rs.selected.Find(lang); found {
		rules := node.Meta().([]CompiledRule)
		rs.mu.RUnlock()
		return rules, nil
	}
	rs.mu.RUnlock()
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if node, found := rs.selected.Find(lang); found { // selected concurrently
		return node.Meta().([]CompiledRule), nil
	}
	rules := rs.selectCompiled(lang)
	rs.selected.Add(lang, rules)
	tracer().Debugf("selected %d rules for language %s", len(rules), lang)
	return rules, nil
}

// CachedLanguages lists the languages with a cached rule selection which
// start with prefix.
func (rs *RuleSet) CachedLanguages(prefix string) []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.selected.PrefixSearch(prefix)
}

// selectCompiled does the work for Select. Callers hold the lock.
func (rs *RuleSet) selectCompiled(lang string) []CompiledRule {
	var rules []CompiledRule
	for _, m := range rs.maps {
		if ok, _ := m.matcher.MatchString(lang); !ok {
			continue
		}
		if g := rs.group(m.RuleName); g != nil {
			rules = append(rules, g.rules...)
		}
		if !rs.cascade {
			break
		}
	}
	return rules
}

// clearCache drops all cached selections. Callers hold the write lock.
func (rs *RuleSet) clearCache() {
	rs.selected = trie.New()
}

// SetBreakIteratorFactory replaces the factory for break iterators used
// with UseExternalBreakIterator. Iterators already created are dropped.
func (rs *RuleSet) SetBreakIteratorFactory(factory BreakIteratorFactory) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.factory = factory
	rs.iterators = make(map[string]BreakIterator)
}

// BreakIterator returns the break iterator for a language, creating it on
// first use.
func (rs *RuleSet) BreakIterator(lang string) BreakIterator {
	lang = NormalizeLanguage(lang)
	rs.mu.RLock()
	it, found := rs.iterators[lang]
	rs.mu.RUnlock()
	if found {
		return it
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if it, found = rs.iterators[lang]; !found {
		it = rs.factory(lang)
		rs.iterators[lang] = it
	}
	return it
}

// maskRule returns the compiled mask rule, if any.
func (rs *RuleSet) maskRule() *regexp2.Regexp {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.mask
}
