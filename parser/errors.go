package parser

import "fmt"

// StructuralParseError reports an unmatched block opener or closer, or a
// statement that never reached its terminator. It is fatal for the trigger
// being parsed; a batch moves on to its next input.
type StructuralParseError struct {
	Line  int
	Depth int
	Text  string
	Msg   string
}

func (e *StructuralParseError) Error() string {
	return fmt.Sprintf("line %d: %s (nesting depth %d)\nOffending text: %s",
		e.Line, e.Msg, e.Depth, e.Text)
}

// SectionBoundaryError reports a body whose outermost DECLARE/BEGIN/END
// boundaries cannot be located: a DECLARE with no following BEGIN, or a
// BEGIN whose nesting counter never returns to zero.
type SectionBoundaryError struct {
	Line int
	Msg  string
}

func (e *SectionBoundaryError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// InputSizeError rejects input that exceeds the configured limits. The line
// guard fires before parsing starts; the depth guard fires as soon as the
// parser would descend past the ceiling.
type InputSizeError struct {
	Lines    int
	MaxLines int
	Depth    int
	MaxDepth int
}

func (e *InputSizeError) Error() string {
	if e.MaxLines > 0 && e.Lines > e.MaxLines {
		return fmt.Sprintf("input is %d lines long, the limit is %d", e.Lines, e.MaxLines)
	}
	return fmt.Sprintf("input nests more than %d levels deep", e.MaxDepth)
}
