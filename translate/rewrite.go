package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ha1tch/trigpiler/ir"
	"github.com/ha1tch/trigpiler/mappings"
)

// rewriter turns Oracle expression and statement text into the target
// dialect, consulting the mapping tables token by token. String literals are
// copied verbatim, and anything without a mapping passes through with a
// warning so a translation never aborts on content.
type rewriter struct {
	tables  mappings.Tables
	decls   ir.Declarations
	dialect Dialect
	warn    func(code ir.WarningCode, line int, subject, message string)
}

var eventPredicates = map[string]string{
	"INSERTING": "INSERT",
	"UPDATING":  "UPDATE",
	"DELETING":  "DELETE",
}

// zeroArgBuiltins appear without parentheses and still need a lookup.
var zeroArgBuiltins = map[string]bool{
	"SYSDATE":      true,
	"SYSTIMESTAMP": true,
	"USER":         true,
	"UID":          true,
}

func (r *rewriter) expression(text string, line int) string {
	var out strings.Builder
	i := 0
	for i < len(text) {
		ch := text[i]
		switch {
		case ch == '\'':
			end := stringEnd(text, i)
			out.WriteString(text[i:end])
			i = end

		case ch == ':' && i+1 < len(text) && isIdentStart(text[i+1]):
			word := text[i+1 : identEnd(text, i+1)]
			switch {
			case strings.EqualFold(word, "NEW"):
				out.WriteString(r.dialect.NewRow)
				i += 1 + len(word)
			case strings.EqualFold(word, "OLD"):
				out.WriteString(r.dialect.OldRow)
				i += 1 + len(word)
			default:
				out.WriteByte(ch)
				i++
			}

		case ch == '!' && i+1 < len(text) && text[i+1] == '=':
			out.WriteString(r.dialect.NotEqual)
			i += 2

		case ch == '^' && i+1 < len(text) && text[i+1] == '=':
			out.WriteString(r.dialect.NotEqual)
			i += 2

		case isIdentStart(ch):
			j := identEnd(text, i)
			word := text[i:j]
			upper := strings.ToUpper(word)

			if _, isEvent := eventPredicates[upper]; isEvent {
				repl, next := r.eventPredicate(text, i, line)
				out.WriteString(repl)
				i = next
				continue
			}

			if k := skipSpaces(text, j); k < len(text) && text[k] == '(' {
				if repl, next, handled := r.functionCall(text, i, j, k, line); handled {
					out.WriteString(repl)
					i = next
					continue
				}
				out.WriteString(word)
				i = j
				continue
			}

			if zeroArgBuiltins[upper] {
				if mapped, ok := r.tables.Function(word); ok {
					out.WriteString(mapped)
					i = j
					continue
				}
				if mappings.IsOracleSpecific(word) {
					r.unmappedFunction(word, line)
				}
			}
			out.WriteString(word)
			i = j

		default:
			out.WriteByte(ch)
			i++
		}
	}
	return out.String()
}

// functionCall maps one call site. A plain rename replaces the name and
// leaves the argument list to the main scan; a $n template consumes the
// whole call and substitutes rewritten arguments.
func (r *rewriter) functionCall(text string, nameStart, nameEnd, open, line int) (string, int, bool) {
	name := text[nameStart:nameEnd]
	mapped, ok := r.tables.Function(name)
	if !ok {
		if mappings.IsOracleSpecific(name) {
			r.unmappedFunction(name, line)
		}
		return "", 0, false
	}
	if !strings.ContainsRune(mapped, '$') {
		return mapped, nameEnd, true
	}

	args, end, balanced := splitCallArgs(text, open)
	if !balanced {
		return "", 0, false
	}
	for idx := range args {
		args[idx] = r.expression(strings.TrimSpace(args[idx]), line)
	}
	if n := maxPlaceholder(mapped); n != len(args) {
		r.warn(ir.WarnAmbiguousFallthrough, line, name,
			fmt.Sprintf("%s maps to a %d-argument template but the call has %d", name, n, len(args)))
	}
	return expandTemplate(mapped, args), end, true
}

// eventPredicate consumes one INSERTING/UPDATING/DELETING predicate plus any
// OR-joined predicates that follow it, folding the run into a single test on
// the operation variable.
func (r *rewriter) eventPredicate(text string, start, line int) (string, int) {
	var events []string
	pos := start
	for {
		end := identEnd(text, pos)
		word := strings.ToUpper(text[pos:end])
		events = append(events, eventPredicates[word])
		pos = end

		// UPDATING('col') narrows to one column, which the operation
		// variable cannot express
		if k := skipSpaces(text, pos); k < len(text) && text[k] == '(' {
			if _, closeEnd, balanced := splitCallArgs(text, k); balanced {
				r.warn(ir.WarnAmbiguousFallthrough, line, word,
					word+" names a column, the translation tests the operation only")
				pos = closeEnd
			}
		}

		save := pos
		k := skipSpaces(text, pos)
		orEnd := identEnd(text, k)
		if orEnd == k || !strings.EqualFold(text[k:orEnd], "OR") {
			pos = save
			break
		}
		k2 := skipSpaces(text, orEnd)
		nextEnd := identEnd(text, k2)
		if _, isEvent := eventPredicates[strings.ToUpper(text[k2:nextEnd])]; !isEvent {
			pos = save
			break
		}
		pos = k2
	}

	if len(events) == 1 {
		return fmt.Sprintf("%s = '%s'", r.dialect.OperationVar, events[0]), pos
	}
	quoted := make([]string, len(events))
	for i, ev := range events {
		quoted[i] = "'" + ev + "'"
	}
	return fmt.Sprintf("%s IN (%s)", r.dialect.OperationVar, strings.Join(quoted, ", ")), pos
}

// raiseTargets are RAISE levels already in target form; they pass through.
var raiseTargets = map[string]bool{
	"EXCEPTION": true,
	"NOTICE":    true,
	"WARNING":   true,
	"INFO":      true,
	"LOG":       true,
	"DEBUG":     true,
}

// raise rewrites one RAISE or RAISE_APPLICATION_ERROR statement, terminator
// included.
func (r *rewriter) raise(text string, line int) string {
	trimmed := strings.TrimSpace(text)
	head := identEnd(trimmed, 0)
	if strings.EqualFold(trimmed[:head], "RAISE_APPLICATION_ERROR") {
		return r.applicationError(trimmed, head, line)
	}

	rest := strings.TrimSpace(trimmed[head:])
	if rest == "" {
		return "RAISE;"
	}
	if identEnd(rest, 0) != len(rest) {
		// multi-token RAISE, assume target syntax and rewrite expressions only
		return r.expression(trimmed, line) + ";"
	}
	if raiseTargets[strings.ToUpper(rest)] {
		return trimmed + ";"
	}
	if mapped, ok := r.tables.Exception(rest); ok {
		return "RAISE " + mapped + ";"
	}
	if r.decls.IsException(rest) {
		return "RAISE EXCEPTION '" + rest + "';"
	}
	r.unmappedException(rest, line)
	return "RAISE " + rest + ";"
}

func (r *rewriter) applicationError(text string, head, line int) string {
	const subject = "RAISE_APPLICATION_ERROR"

	open := skipSpaces(text, head)
	if open >= len(text) || text[open] != '(' {
		r.warn(ir.WarnAmbiguousFallthrough, line, subject,
			"malformed call passes through unchanged")
		return text + ";"
	}
	args, _, balanced := splitCallArgs(text, open)
	if !balanced || len(args) < 2 {
		r.warn(ir.WarnAmbiguousFallthrough, line, subject,
			"malformed call passes through unchanged")
		return text + ";"
	}
	if len(args) > 2 {
		r.warn(ir.WarnAmbiguousFallthrough, line, subject,
			"arguments past the error code and message are dropped")
	}

	code := strings.TrimSpace(args[0])
	if n, ok := normalizeNumber(code); ok {
		code = n
	} else {
		code = r.expression(code, line)
	}
	message := r.expression(strings.TrimSpace(args[1]), line)
	return fmt.Sprintf("RAISE EXCEPTION '%%: %%', %s, %s;", code, message)
}

// exceptionName maps one handler condition name. OTHERS is shared between
// the dialects and never warns.
func (r *rewriter) exceptionName(name string, line int) string {
	if strings.EqualFold(name, "OTHERS") {
		return "OTHERS"
	}
	if mapped, ok := r.tables.Exception(name); ok {
		return mapped
	}
	if r.decls.IsException(name) {
		r.warn(ir.WarnUnmappedException, line, name,
			name+" is declared locally and keeps its name, the raising side must match")
		return name
	}
	r.unmappedException(name, line)
	return name
}

// sharedTypes are spelled the same on both sides and never need a mapping.
var sharedTypes = map[string]bool{
	"INTEGER":   true,
	"INT":       true,
	"SMALLINT":  true,
	"BIGINT":    true,
	"NUMERIC":   true,
	"DECIMAL":   true,
	"REAL":      true,
	"FLOAT":     true,
	"CHAR":      true,
	"CHARACTER": true,
	"VARCHAR":   true,
	"TEXT":      true,
	"BOOLEAN":   true,
	"TIMESTAMP": true,
	"TIME":      true,
	"INTERVAL":  true,
}

// typeName maps one declared data type, keeping precision suffixes. %TYPE
// and %ROWTYPE references anchor to live schema and are carried verbatim.
func (r *rewriter) typeName(dataType string, line int) string {
	t := strings.TrimSpace(dataType)
	if strings.ContainsRune(t, '%') {
		return t
	}
	base, suffix := t, ""
	if p := strings.IndexByte(t, '('); p >= 0 {
		base, suffix = strings.TrimSpace(t[:p]), t[p:]
	}
	if mapped, ok := r.tables.Type(base); ok {
		return mapped + suffix
	}
	if sharedTypes[strings.ToUpper(firstWordOf(base))] {
		return t
	}
	r.unmappedType(base, line)
	return t
}

// value rewrites a declaration default or constant value, canonicalizing
// plain numeric literals.
func (r *rewriter) value(text string, line int) string {
	if n, ok := normalizeNumber(strings.TrimSpace(text)); ok {
		return n
	}
	return r.expression(text, line)
}

func (r *rewriter) unmappedFunction(name string, line int) {
	if r.tables.NumFunctions() == 0 {
		r.warn(ir.WarnEmptyMappingTable, line, "functions",
			"no function mappings are loaded, "+name+" passes through unchanged")
		return
	}
	r.warn(ir.WarnUnmappedFunction, line, name,
		name+" has no mapping, passing through unchanged")
}

func (r *rewriter) unmappedType(name string, line int) {
	if r.tables.NumTypes() == 0 {
		r.warn(ir.WarnEmptyMappingTable, line, "types",
			"no type mappings are loaded, "+name+" passes through unchanged")
		return
	}
	r.warn(ir.WarnUnmappedType, line, name,
		name+" has no mapping, passing through unchanged")
}

func (r *rewriter) unmappedException(name string, line int) {
	if r.tables.NumExceptions() == 0 {
		r.warn(ir.WarnEmptyMappingTable, line, "exceptions",
			"no exception mappings are loaded, "+name+" passes through unchanged")
		return
	}
	r.warn(ir.WarnUnmappedException, line, name,
		name+" has no mapping, passing through unchanged")
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$' || ch == '#'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// identEnd returns the index just past the identifier starting at i, or i
// when no identifier starts there.
func identEnd(s string, i int) int {
	if i >= len(s) || !isIdentStart(s[i]) {
		return i
	}
	j := i + 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	return j
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// stringEnd returns the index just past the literal opening at s[i],
// honoring '' escapes.
func stringEnd(s string, i int) int {
	j := i + 1
	for j < len(s) {
		if s[j] == '\'' {
			if j+1 < len(s) && s[j+1] == '\'' {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(s)
}

// splitCallArgs splits the argument list opening at text[open] on top-level
// commas. It returns the raw argument texts, the index just past the closing
// parenthesis, and whether the parentheses balanced.
func splitCallArgs(text string, open int) ([]string, int, bool) {
	depth := 0
	argStart := open + 1
	var args []string
	i := open
	for i < len(text) {
		switch text[i] {
		case '\'':
			i = stringEnd(text, i)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if tail := text[argStart:i]; strings.TrimSpace(tail) != "" || len(args) > 0 {
					args = append(args, tail)
				}
				return args, i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, text[argStart:i])
				argStart = i + 1
			}
		}
		i++
	}
	return nil, 0, false
}

func expandTemplate(tmpl string, args []string) string {
	out := tmpl
	for n := len(args); n >= 1; n-- {
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(n), args[n-1])
	}
	return out
}

func maxPlaceholder(tmpl string) int {
	highest := 0
	for i := 0; i+1 < len(tmpl); i++ {
		if tmpl[i] != '$' || !isDigit(tmpl[i+1]) {
			continue
		}
		j := i + 1
		for j < len(tmpl) && isDigit(tmpl[j]) {
			j++
		}
		if n, err := strconv.Atoi(tmpl[i+1 : j]); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

func firstWordOf(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
