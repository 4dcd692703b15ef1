package parser

import "strings"

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '$' || ch == '#'
}

// isInsideString reports whether s ends inside a single quoted literal,
// counting unescaped quotes and skipping '' escapes.
func isInsideString(s string) bool {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				i++
			} else {
				count++
			}
		}
	}
	return count%2 == 1
}

// firstToken returns the upper-cased first word of text, or "" when the line
// is blank or starts with something other than an identifier.
func firstToken(text string) string {
	s := strings.TrimLeft(text, " \t")
	if s == "" || !isIdentStart(s[0]) {
		return ""
	}
	i := 1
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return strings.ToUpper(s[:i])
}

// secondToken returns the upper-cased word following the first one, or "".
func secondToken(text string) string {
	s := strings.TrimLeft(text, " \t")
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	s = strings.TrimLeft(s[i:], " \t")
	if s == "" || !isIdentStart(s[0]) {
		return ""
	}
	j := 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	return strings.ToUpper(s[:j])
}

// headWord returns the first word of text in its original casing plus the
// remainder, or "" when text does not start with an identifier.
func headWord(text string) (string, string) {
	s := strings.TrimSpace(text)
	if s == "" || !isIdentStart(s[0]) {
		return "", s
	}
	i := 1
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// wordIndex returns the byte index of the first whole-word, case-insensitive
// occurrence of word outside string literals, or -1.
func wordIndex(text, word string) int {
	idx, _ := wordIndexAtDepth(text, word, 0)
	return idx
}

// wordIndexAtDepth scans for word outside string literals at parenthesis
// depth zero, starting from the carried depth parens. It returns the match
// index (or -1) and the net depth after the scan, so a multi-line search can
// carry its state across lines.
func wordIndexAtDepth(text, word string, parens int) (int, int) {
	n := len(word)
	inString := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			if ch == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					i++
				} else {
					inString = false
				}
			}
			continue
		}
		switch ch {
		case '\'':
			inString = true
			continue
		case '(':
			parens++
			continue
		case ')':
			parens--
			continue
		}
		if parens != 0 || i+n > len(text) {
			continue
		}
		if !strings.EqualFold(text[i:i+n], word) {
			continue
		}
		if i > 0 && isIdentChar(text[i-1]) {
			continue
		}
		if i+n < len(text) && isIdentChar(text[i+n]) {
			continue
		}
		return i, parens
	}
	return -1, parens
}

// semicolonIndex returns the index of the first statement terminator outside
// string literals, or -1.
func semicolonIndex(text string) int {
	inString := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			if ch == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					i++
				} else {
					inString = false
				}
			}
			continue
		}
		switch ch {
		case '\'':
			inString = true
		case ';':
			return i
		}
	}
	return -1
}

func endsWithSemicolon(text string) bool {
	t := strings.TrimRight(text, " \t")
	if t == "" || t[len(t)-1] != ';' {
		return false
	}
	return !isInsideString(t[:len(t)-1])
}

// assignIndex returns the index of the := operator outside string literals
// and parentheses, or -1. The colon of a :NEW/:OLD reference never matches.
func assignIndex(text string) int {
	inString := false
	parens := 0
	for i := 0; i+1 < len(text); i++ {
		ch := text[i]
		if inString {
			if ch == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					i++
				} else {
					inString = false
				}
			}
			continue
		}
		switch ch {
		case '\'':
			inString = true
		case '(':
			parens++
		case ')':
			parens--
		case ':':
			if parens == 0 && text[i+1] == '=' {
				return i
			}
		}
	}
	return -1
}

// splitOnOr splits s on whole-word OR separators outside string literals.
func splitOnOr(s string) []string {
	var parts []string
	rest := s
	for {
		idx := wordIndex(rest, "OR")
		if idx < 0 {
			parts = append(parts, strings.TrimSpace(rest))
			return parts
		}
		parts = append(parts, strings.TrimSpace(rest[:idx]))
		rest = rest[idx+2:]
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Continuation kinds track what still has to appear before the logical unit
// that started on an earlier physical line is complete.
type contKind int

const (
	contNone contKind = iota
	contSemi          // a statement, runs until ;
	contThen          // an IF/ELSIF/WHEN header, runs until THEN
	contLoop          // a FOR/WHILE header, runs until LOOP at paren depth 0
)

type contState struct {
	kind   contKind
	parens int
}

// normalize splits every physical line holding more than one logical unit
// into separate records sharing the original line number: text following a
// branch-opening THEN or ELSE, a loop-opening LOOP, a BEGIN, DECLARE or
// EXCEPTION keyword, and anything after a mid-line statement terminator each
// get a line of their own. After this pass a construct keyword can only
// appear as the first token of its line, which is the invariant the
// structural parser dispatches on.
func normalize(lines []SourceLine) []SourceLine {
	out := make([]SourceLine, 0, len(lines))
	var state contState

	for _, ln := range lines {
		if strings.TrimSpace(ln.Text) == "" {
			out = append(out, ln)
			continue
		}
		text := ln.Text
		for strings.TrimSpace(text) != "" {
			var head string
			head, text, state = splitUnit(text, state)
			out = append(out, SourceLine{
				Number: ln.Number,
				Indent: ln.Indent,
				Text:   strings.TrimRight(head, " \t"),
			})
		}
	}
	return out
}

// splitUnit cuts the first logical unit (or unit fragment) off text and
// returns it with the remainder and the continuation state going forward.
func splitUnit(text string, state contState) (string, string, contState) {
	if state.kind != contNone {
		return continueUnit(text, state)
	}

	switch firstToken(text) {
	case "IF", "ELSIF", "WHEN":
		idx, parens := wordIndexAtDepth(text, "THEN", 0)
		if idx >= 0 {
			return text[:idx+4], text[idx+4:], contState{}
		}
		return text, "", contState{kind: contThen, parens: parens}

	case "FOR", "WHILE":
		idx, parens := wordIndexAtDepth(text, "LOOP", 0)
		if idx >= 0 {
			return text[:idx+4], text[idx+4:], contState{}
		}
		return text, "", contState{kind: contLoop, parens: parens}

	case "CASE":
		if idx, _ := wordIndexAtDepth(text, "WHEN", 0); idx >= 0 {
			return text[:idx], text[idx:], contState{}
		}
		return text, "", contState{}

	case "ELSE", "BEGIN", "EXCEPTION", "LOOP", "DECLARE":
		head, rest := splitAfterFirstToken(text)
		return head, rest, contState{}

	default:
		if idx := semicolonIndex(text); idx >= 0 {
			return text[:idx+1], text[idx+1:], contState{}
		}
		return text, "", contState{kind: contSemi}
	}
}

func continueUnit(text string, state contState) (string, string, contState) {
	switch state.kind {
	case contSemi:
		if idx := semicolonIndex(text); idx >= 0 {
			return text[:idx+1], text[idx+1:], contState{}
		}
		return text, "", state

	case contThen:
		idx, parens := wordIndexAtDepth(text, "THEN", state.parens)
		if idx >= 0 {
			return text[:idx+4], text[idx+4:], contState{}
		}
		return text, "", contState{kind: contThen, parens: parens}

	case contLoop:
		idx, parens := wordIndexAtDepth(text, "LOOP", state.parens)
		if idx >= 0 {
			return text[:idx+4], text[idx+4:], contState{}
		}
		return text, "", contState{kind: contLoop, parens: parens}
	}
	return text, "", contState{}
}

func splitAfterFirstToken(text string) (string, string) {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	j := i
	for j < len(text) && isIdentChar(text[j]) {
		j++
	}
	return text[:j], text[j:]
}

// startContState reports what, if anything, a normalized statement-start
// line still waits for.
func startContState(text string) contState {
	_, _, state := splitUnit(text, contState{})
	return state
}

// advanceContState feeds one more normalized line into an open continuation.
func advanceContState(state contState, text string) contState {
	_, _, next := continueUnit(text, state)
	return next
}
