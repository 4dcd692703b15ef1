package parser

import "strings"

// Sections holds the indices of the outermost block boundaries inside a
// normalized line slice. Indices of absent sections are -1.
type Sections struct {
	DeclareIdx   int
	BeginIdx     int
	ExceptionIdx int
	EndIdx       int
}

// SplitSections locates the DECLARE region, the first top-level BEGIN, the
// outer block's own EXCEPTION line and its closing END. It counts only
// BEGIN/END pairs, so an EXCEPTION belonging to a nested block is never
// mistaken for the outer one.
func SplitSections(lines []SourceLine) (Sections, error) {
	secs := Sections{DeclareIdx: -1, BeginIdx: -1, ExceptionIdx: -1, EndIdx: -1}

	i := nextContentIdx(lines, 0, len(lines))
	if i < 0 {
		return secs, &SectionBoundaryError{Line: 1, Msg: "trigger body is empty"}
	}

	switch firstToken(lines[i].Text) {
	case "DECLARE":
		secs.DeclareIdx = i
	case "BEGIN":
		secs.BeginIdx = i
	default:
		return secs, &SectionBoundaryError{
			Line: lines[i].Number,
			Msg:  "trigger body must start with DECLARE or BEGIN",
		}
	}

	if secs.BeginIdx < 0 {
		var state contState
		for j := i + 1; j < len(lines); j++ {
			text := lines[j].Text
			if strings.TrimSpace(text) == "" {
				continue
			}
			if state.kind != contNone {
				state = advanceContState(state, text)
				continue
			}
			if firstToken(text) == "BEGIN" {
				secs.BeginIdx = j
				break
			}
			state = startContState(text)
		}
		if secs.BeginIdx < 0 {
			return secs, &SectionBoundaryError{
				Line: lines[secs.DeclareIdx].Number,
				Msg:  "DECLARE section has no following BEGIN",
			}
		}
	}

	excIdx, endIdx, err := scanBlockBounds(lines, secs.BeginIdx, len(lines))
	if err != nil {
		return secs, err
	}
	secs.ExceptionIdx = excIdx
	secs.EndIdx = endIdx
	return secs, nil
}

// scanBlockBounds runs the lookahead pass for the block opening at index
// begin: it returns the index of the block's own EXCEPTION line (-1 when the
// block has none) and of its closing END. Nested BEGIN/END pairs are counted
// through, and anything inside a string literal or an open logical
// continuation is ignored.
func scanBlockBounds(lines []SourceLine, begin, end int) (int, int, error) {
	depth := 1
	excIdx := -1
	var state contState

	for i := begin + 1; i < end; i++ {
		text := lines[i].Text
		if strings.TrimSpace(text) == "" {
			continue
		}
		if state.kind != contNone {
			state = advanceContState(state, text)
			continue
		}
		switch firstToken(text) {
		case "BEGIN":
			depth++
		case "END":
			if isBlockEnd(text) {
				depth--
				if depth == 0 {
					return excIdx, i, nil
				}
			}
			state = startContState(text)
		case "EXCEPTION":
			if depth == 1 && excIdx < 0 {
				excIdx = i
			}
		default:
			state = startContState(text)
		}
	}
	return -1, -1, &SectionBoundaryError{
		Line: lines[begin].Number,
		Msg:  "BEGIN is never closed by a matching END",
	}
}

// isBlockEnd reports whether an END line closes a block rather than an IF,
// CASE or LOOP construct. A trailing label (END trg_audit;) still closes a
// block.
func isBlockEnd(text string) bool {
	switch secondToken(text) {
	case "IF", "CASE", "LOOP":
		return false
	}
	return true
}

// nextContentIdx returns the first index in [from, to) whose line carries
// content, skipping blanks and stray terminators, or -1.
func nextContentIdx(lines []SourceLine, from, to int) int {
	for i := from; i < to; i++ {
		t := strings.TrimSpace(lines[i].Text)
		if t != "" && t != ";" {
			return i
		}
	}
	return -1
}
