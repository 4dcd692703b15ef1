package parser

import (
	"strings"

	"github.com/ha1tch/trigpiler/ir"
)

// SourceLine is one physical line of the body after comment stripping.
// Number is 1-indexed. Indent counts the leading whitespace characters.
// Lines that held only comments keep their Number with empty Text, so later
// stages never renumber anything.
type SourceLine struct {
	Number int
	Indent int
	Text   string
}

// Preprocess strips block comments (/* ... */, possibly spanning lines) and
// line comments (-- ...) outside string literals, collecting their text into
// a side list, and returns the body as line records.
func Preprocess(source string) ([]SourceLine, []ir.Comment) {
	pp := &preprocessor{raw: strings.Split(source, "\n")}
	pp.run()
	return pp.lines, pp.comments
}

type preprocessor struct {
	raw      []string
	lines    []SourceLine
	comments []ir.Comment

	inBlock    bool
	blockStart int
	blockText  strings.Builder
}

func (pp *preprocessor) run() {
	pp.lines = make([]SourceLine, 0, len(pp.raw))
	for i, raw := range pp.raw {
		pp.stripLine(raw, i+1)
	}
	if pp.inBlock {
		// Unterminated block comment: keep what was collected rather than
		// losing it.
		pp.flushBlock()
	}
}

func (pp *preprocessor) stripLine(raw string, num int) {
	var kept strings.Builder
	inString := false

	i := 0
	for i < len(raw) {
		ch := raw[i]
		switch {
		case pp.inBlock:
			if ch == '*' && i+1 < len(raw) && raw[i+1] == '/' {
				pp.flushBlock()
				i += 2
				continue
			}
			pp.blockText.WriteByte(ch)
			i++

		case inString:
			kept.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(raw) && raw[i+1] == '\'' {
					kept.WriteByte('\'')
					i++
				} else {
					inString = false
				}
			}
			i++

		case ch == '\'':
			inString = true
			kept.WriteByte(ch)
			i++

		case ch == '-' && i+1 < len(raw) && raw[i+1] == '-':
			pp.comments = append(pp.comments, ir.Comment{
				Line: num,
				Text: strings.TrimSpace(raw[i+2:]),
			})
			i = len(raw)

		case ch == '/' && i+1 < len(raw) && raw[i+1] == '*':
			pp.inBlock = true
			pp.blockStart = num
			i += 2

		default:
			kept.WriteByte(ch)
			i++
		}
	}

	if pp.inBlock {
		pp.blockText.WriteByte('\n')
	}

	text := strings.TrimRight(kept.String(), " \t\r")
	pp.lines = append(pp.lines, SourceLine{
		Number: num,
		Indent: indentOf(text),
		Text:   text,
	})
}

func (pp *preprocessor) flushBlock() {
	pp.inBlock = false
	pp.comments = append(pp.comments, ir.Comment{
		Line: pp.blockStart,
		Text: strings.TrimSpace(pp.blockText.String()),
	})
	pp.blockText.Reset()
}

func indentOf(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			break
		}
		n++
	}
	return n
}
