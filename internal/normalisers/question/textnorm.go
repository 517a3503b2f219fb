package question

import (
	"regexp"
	"strings"
)

// clauseSep marks clause boundaries during text cleanup. It never appears in
// the final output.
const clauseSep = "|"

// Rule is one literal rewrite applied during text cleanup.
type Rule struct {
	Pattern     string
	Replacement string
}

// rules reattach a government-office name to the clause-splitting separator.
// Many office names themselves contain commas and would otherwise be
// mis-split; each known variant gets its own entry, and new variants need
// new entries. Order matters: longer office names must precede any prefix
// of themselves.
var rules = []Rule{
	{"her majesty's government, ", "her majesty's government,|"},
	{"his majesty's government, ", "his majesty's government,|"},
	{"the secretary of state for environment, food and rural affairs, ", "the secretary of state for environment, food and rural affairs,|"},
	{"the secretary of state for digital, culture, media and sport, ", "the secretary of state for digital, culture, media and sport,|"},
	{"the secretary of state for culture, media and sport, ", "the secretary of state for culture, media and sport,|"},
	{"the secretary of state for housing, communities and local government, ", "the secretary of state for housing, communities and local government,|"},
	{"the secretary of state for levelling up, housing and communities, ", "the secretary of state for levelling up, housing and communities,|"},
	{"the secretary of state for foreign, commonwealth and development affairs, ", "the secretary of state for foreign, commonwealth and development affairs,|"},
	{"the secretary of state for business, energy and industrial strategy, ", "the secretary of state for business, energy and industrial strategy,|"},
	{"the secretary of state for energy security and net zero, ", "the secretary of state for energy security and net zero,|"},
	{"the secretary of state for health and social care, ", "the secretary of state for health and social care,|"},
	{"the secretary of state for work and pensions, ", "the secretary of state for work and pensions,|"},
	{"the secretary of state for the home department, ", "the secretary of state for the home department,|"},
	{"the secretary of state for transport, ", "the secretary of state for transport,|"},
	{"the secretary of state for education, ", "the secretary of state for education,|"},
	{"the secretary of state for defence, ", "the secretary of state for defence,|"},
	{"the chancellor of the exchequer, ", "the chancellor of the exchequer,|"},
	{"the minister for the cabinet office, ", "the minister for the cabinet office,|"},
	{"the minister for women and equalities, ", "the minister for women and equalities,|"},
	{"the attorney general, ", "the attorney general,|"},
	{"the prime minister, ", "the prime minister,|"},
}

// Rules returns the rewrite table, so tests can enumerate entries
// independently of the pipeline.
func Rules() []Rule {
	return rules
}

// commaNoSpace matches a comma jammed against the next word.
var commaNoSpace = regexp.MustCompile(`,(\S)`)

// CleanText produces the comparable form of a question's free text:
//
//  1. lower-case the whole text
//  2. insert a separator after commas not already followed by a space, and
//     after colons, to regularise clause boundaries
//  3. apply the office-name rewrite table
//  4. drop the first clause (the "to ask <office>" preamble) and restore
//     the remaining separators to spaces
//
// This is a best-effort heuristic over irregular inputs; a preamble that
// matches no rule stays in place until its office gains a table entry.
func CleanText(text string) string {
	s := strings.ToLower(text)

	s = commaNoSpace.ReplaceAllString(s, ","+clauseSep+"$1")
	s = strings.ReplaceAll(s, ":", ":"+clauseSep)

	for _, rule := range rules {
		s = strings.ReplaceAll(s, rule.Pattern, rule.Replacement)
	}

	// Only a leading "to ask" clause is boilerplate; a separator inserted
	// mid-question must not cost the question its opening words.
	if strings.HasPrefix(s, "to ask ") {
		if i := strings.Index(s, clauseSep); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.ReplaceAll(s, clauseSep, " ")

	return strings.TrimSpace(s)
}
