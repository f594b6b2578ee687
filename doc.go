/*
Package srx segments text into sentences (or other units) following rule sets
in the style of SRX, the Segmentation Rules eXchange format.

A rule set holds named groups of rules. Each rule consists of a regular
expression for the text before a potential break and one for the text after
it, plus a flag telling whether the position is a break or an exception to a
break. Language maps associate language tags with rule groups. For a given
language the applicable rules are applied in order, and the first rule matching
at a position decides whether the text is broken there.

Input text may contain inline codes in a compact marker encoding (see Code).
Codes are invisible to the rules, but the resulting segment ranges refer to
the text including the codes.

Parsing of concrete rule-set formats is kept out of this package. Adapters
like packages srxdoc (SRX 2.0 XML) and yamlrules feed the streaming
RuleReader and MapReader interfaces.

Further Reading

	https://www.gala-global.org/srx-20
	https://www.unicode.org/reports/tr29/#Sentence_Boundaries

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package srx

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'srx'
func tracer() tracing.Trace {
	return tracing.Select("srx")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
