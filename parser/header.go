package parser

import (
	"regexp"
	"strings"

	"github.com/ha1tch/trigpiler/ir"
)

// triggerHeaderPattern matches a CREATE TRIGGER wrapper up to the DECLARE or
// BEGIN keyword that starts the body. Comments before CREATE are skipped;
// schema qualifiers and quoted identifiers are accepted and stripped.
var triggerHeaderPattern = regexp.MustCompile(
	`(?is)^\s*(?:--[^\n]*\n\s*|/\*.*?\*/\s*)*` +
		`CREATE\s+(?:OR\s+REPLACE\s+)?TRIGGER\s+` +
		`(?:"?[\w$#]+"?\s*\.\s*)?"?([\w$#]+)"?\s+` +
		`(BEFORE|AFTER|INSTEAD\s+OF)\s+(.+?)\s+ON\s+` +
		`(?:"?[\w$#]+"?\s*\.\s*)?"?([\w$#]+)"?(.*?)\b(DECLARE|BEGIN)\b`)

var (
	forEachRowPattern = regexp.MustCompile(`(?i)\bFOR\s+EACH\s+ROW\b`)
	whenClausePattern = regexp.MustCompile(`(?is)\bWHEN\s*\((.+)\)`)
)

// ExtractHeader pulls trigger metadata from a CREATE TRIGGER wrapper when
// one is present and returns the body that follows, DECLARE or BEGIN
// included. Input that is already a bare body comes back untouched with zero
// metadata.
func ExtractHeader(source string) (ir.Metadata, string) {
	m := triggerHeaderPattern.FindStringSubmatchIndex(source)
	if m == nil {
		return ir.Metadata{}, source
	}

	group := func(i int) string {
		lo, hi := m[2*i], m[2*i+1]
		if lo < 0 {
			return ""
		}
		return source[lo:hi]
	}

	meta := ir.Metadata{
		Name:   group(1),
		Timing: strings.ToUpper(collapseSpaces(group(2))),
		Events: parseEvents(group(3)),
		Table:  group(4),
	}

	tail := group(5)
	meta.ForEachRow = forEachRowPattern.MatchString(tail)
	if wm := whenClausePattern.FindStringSubmatch(tail); wm != nil {
		meta.When = strings.TrimSpace(wm[1])
	}

	return meta, source[m[12]:]
}

// parseEvents splits the event clause on OR and normalizes spacing, keeping
// UPDATE OF column lists intact.
func parseEvents(clause string) []string {
	var events []string
	for _, part := range splitOnOr(clause) {
		ev := strings.ToUpper(collapseSpaces(part))
		if ev != "" {
			events = append(events, ev)
		}
	}
	return events
}
