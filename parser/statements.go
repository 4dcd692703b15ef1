package parser

import (
	"fmt"
	"strings"

	"github.com/ha1tch/trigpiler/ir"
)

// stmtParser walks normalized lines by recursive descent. Each construct
// parser receives the index of its opening line plus an exclusive upper
// bound and returns the node along with the index of the first line after
// the construct.
type stmtParser struct {
	lines    []SourceLine
	depth    int
	maxDepth int
}

func (p *stmtParser) descend(ln SourceLine) error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return &InputSizeError{Depth: p.depth, MaxDepth: p.maxDepth}
	}
	return nil
}

func (p *stmtParser) ascend() { p.depth-- }

func (p *stmtParser) unclosed(start int, what string) error {
	return &StructuralParseError{
		Line:  p.lines[start].Number,
		Depth: p.depth,
		Text:  p.lines[start].Text,
		Msg:   what + " is never closed at its own nesting depth",
	}
}

// stopKey reduces a line to the dispatch key parseBody switches on. END
// lines carry their construct keyword so END IF, END CASE and END LOOP stay
// distinct from a block END.
func stopKey(text string) string {
	tok := firstToken(text)
	if tok != "END" {
		return tok
	}
	switch sec := secondToken(text); sec {
	case "IF", "CASE", "LOOP":
		return "END " + sec
	}
	return "END"
}

// parseBody collects statements from start up to end or until it hits one of
// the caller's stop keys, whichever comes first. It returns the statements,
// the index of the stop line (or end), and the stop key that fired ("" when
// the range ran out). A closer or branch keyword that is not in the stop set
// has no matching construct and is a structural error.
func (p *stmtParser) parseBody(start, end int, stops map[string]bool) ([]ir.Statement, int, string, error) {
	stmts := []ir.Statement{}
	i := start
	for i < end {
		line := p.lines[i]
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" || trimmed == ";" {
			i++
			continue
		}

		key := stopKey(line.Text)
		if stops[key] {
			return stmts, i, key, nil
		}

		var (
			node ir.Statement
			next int
			err  error
		)
		switch key {
		case "BEGIN":
			node, next, err = p.parseBlock(i, end)
		case "IF":
			node, next, err = p.parseIf(i, end)
		case "CASE":
			node, next, err = p.parseCase(i, end)
		case "FOR":
			node, next, err = p.parseFor(i, end)
		case "WHILE":
			node, next, err = p.parseWhile(i, end)
		case "LOOP":
			node, next, err = p.parseBasicLoop(i, end)
		case "ELSIF", "ELSE", "WHEN", "EXCEPTION", "END", "END IF", "END CASE", "END LOOP":
			return nil, 0, "", &StructuralParseError{
				Line:  line.Number,
				Depth: p.depth,
				Text:  line.Text,
				Msg:   fmt.Sprintf("%s has no matching open construct", key),
			}
		default:
			node, next, err = p.parseLeaf(i, end)
		}
		if err != nil {
			return nil, 0, "", err
		}
		stmts = append(stmts, node)
		i = next
	}
	return stmts, end, "", nil
}

// parseBlock parses the block opening at index begin in three passes: a
// lookahead pass that records the block's own EXCEPTION line and closing END
// without building content, a statement pass over the main range, and a
// handler pass over the EXCEPTION range when one exists.
func (p *stmtParser) parseBlock(begin, end int) (*ir.Block, int, error) {
	if err := p.descend(p.lines[begin]); err != nil {
		return nil, 0, err
	}
	defer p.ascend()

	excIdx, endIdx, err := scanBlockBounds(p.lines, begin, end)
	if err != nil {
		return nil, 0, err
	}

	blk := &ir.Block{
		BeginLine: p.lines[begin].Number,
		EndLine:   p.lines[endIdx].Number,
	}

	mainEnd := endIdx
	if excIdx >= 0 {
		blk.ExceptionLine = p.lines[excIdx].Number
		mainEnd = excIdx
	}

	stmts, _, _, err := p.parseBody(begin+1, mainEnd, nil)
	if err != nil {
		return nil, 0, err
	}
	blk.Statements = stmts

	if excIdx >= 0 {
		handlers, err := p.parseHandlers(excIdx, endIdx)
		if err != nil {
			return nil, 0, err
		}
		blk.Handlers = handlers
	}

	return blk, endIdx + 1, nil
}

// parseHandlers parses the WHEN arms between an EXCEPTION line at index exc
// and the owning block's END. Handler bodies run until the next WHEN or the
// range ends, so a handler's statements can never leak into a sibling.
func (p *stmtParser) parseHandlers(exc, end int) ([]ir.Handler, error) {
	handlers := []ir.Handler{}

	idx := nextContentIdx(p.lines, exc+1, end)
	if idx < 0 {
		return nil, &StructuralParseError{
			Line:  p.lines[exc].Number,
			Depth: p.depth,
			Text:  p.lines[exc].Text,
			Msg:   "EXCEPTION section has no WHEN handler",
		}
	}
	if stopKey(p.lines[idx].Text) != "WHEN" {
		return nil, &StructuralParseError{
			Line:  p.lines[idx].Number,
			Depth: p.depth,
			Text:  p.lines[idx].Text,
			Msg:   "EXCEPTION section must start with a WHEN handler",
		}
	}

	stop := "WHEN"
	for stop == "WHEN" {
		hline := p.lines[idx].Number
		names, bodyStart, err := p.parseHandlerNames(idx, end)
		if err != nil {
			return nil, err
		}
		body, next, nstop, err := p.parseBody(bodyStart, end, map[string]bool{"WHEN": true})
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, ir.Handler{Exceptions: names, Line: hline, Body: body})
		idx, stop = next, nstop
	}
	return handlers, nil
}

// parseHandlerNames reads a WHEN header and splits its exception list on OR.
func (p *stmtParser) parseHandlerNames(start, end int) ([]string, int, error) {
	header, bodyStart, err := p.parseHeader(start, end, "WHEN", "THEN")
	if err != nil {
		return nil, 0, err
	}
	names := splitOnOr(header)
	for _, name := range names {
		if !identPattern.MatchString(name) {
			return nil, 0, &StructuralParseError{
				Line:  p.lines[start].Number,
				Depth: p.depth,
				Text:  p.lines[start].Text,
				Msg:   "WHEN handler names a malformed exception",
			}
		}
	}
	return names, bodyStart, nil
}

func (p *stmtParser) parseIf(start, end int) (*ir.IfStatement, int, error) {
	if err := p.descend(p.lines[start]); err != nil {
		return nil, 0, err
	}
	defer p.ascend()

	cond, bodyStart, err := p.parseHeader(start, end, "IF", "THEN")
	if err != nil {
		return nil, 0, err
	}

	node := &ir.IfStatement{Condition: cond, Line: p.lines[start].Number}
	stops := map[string]bool{"ELSIF": true, "ELSE": true, "END IF": true}

	stmts, idx, stop, err := p.parseBody(bodyStart, end, stops)
	if err != nil {
		return nil, 0, err
	}
	if stop == "" {
		return nil, 0, p.unclosed(start, "IF")
	}
	node.Then = stmts

	for stop == "ELSIF" {
		branchLine := p.lines[idx].Number
		cond, bodyStart, err = p.parseHeader(idx, end, "ELSIF", "THEN")
		if err != nil {
			return nil, 0, err
		}
		stmts, idx, stop, err = p.parseBody(bodyStart, end, stops)
		if err != nil {
			return nil, 0, err
		}
		if stop == "" {
			return nil, 0, p.unclosed(start, "IF")
		}
		node.Elifs = append(node.Elifs, ir.Branch{Condition: cond, Line: branchLine, Body: stmts})
	}

	if stop == "ELSE" {
		stmts, idx, stop, err = p.parseBody(idx+1, end, map[string]bool{"END IF": true})
		if err != nil {
			return nil, 0, err
		}
		if stop == "" {
			return nil, 0, p.unclosed(start, "IF")
		}
		node.Else = stmts
	}

	node.EndLine = p.lines[idx].Number
	return node, idx + 1, nil
}

func (p *stmtParser) parseCase(start, end int) (*ir.CaseStatement, int, error) {
	if err := p.descend(p.lines[start]); err != nil {
		return nil, 0, err
	}
	defer p.ascend()

	first := p.lines[start]
	_, rest := headWord(first.Text)
	node := &ir.CaseStatement{Selector: strings.TrimSpace(rest), Line: first.Number}

	idx := nextContentIdx(p.lines, start+1, end)
	if idx < 0 || stopKey(p.lines[idx].Text) != "WHEN" {
		return nil, 0, &StructuralParseError{
			Line:  first.Number,
			Depth: p.depth,
			Text:  first.Text,
			Msg:   "CASE has no WHEN arm",
		}
	}

	stops := map[string]bool{"WHEN": true, "ELSE": true, "END CASE": true}
	stop := "WHEN"
	for stop == "WHEN" {
		whenLine := p.lines[idx].Number
		match, bodyStart, err := p.parseHeader(idx, end, "WHEN", "THEN")
		if err != nil {
			return nil, 0, err
		}
		body, next, nstop, err := p.parseBody(bodyStart, end, stops)
		if err != nil {
			return nil, 0, err
		}
		if nstop == "" {
			return nil, 0, p.unclosed(start, "CASE")
		}
		node.Whens = append(node.Whens, ir.WhenClause{Match: match, Line: whenLine, Body: body})
		idx, stop = next, nstop
	}

	if stop == "ELSE" {
		body, next, nstop, err := p.parseBody(idx+1, end, map[string]bool{"END CASE": true})
		if err != nil {
			return nil, 0, err
		}
		if nstop == "" {
			return nil, 0, p.unclosed(start, "CASE")
		}
		node.Else = body
		idx = next
	}

	node.EndLine = p.lines[idx].Number
	return node, idx + 1, nil
}

func (p *stmtParser) parseFor(start, end int) (*ir.ForLoop, int, error) {
	if err := p.descend(p.lines[start]); err != nil {
		return nil, 0, err
	}
	defer p.ascend()

	header, bodyStart, err := p.parseHeader(start, end, "FOR", "LOOP")
	if err != nil {
		return nil, 0, err
	}
	variable, rest := headWord(header)
	if variable == "" || firstToken(rest) != "IN" {
		return nil, 0, &StructuralParseError{
			Line:  p.lines[start].Number,
			Depth: p.depth,
			Text:  p.lines[start].Text,
			Msg:   "FOR header must name a loop variable followed by IN",
		}
	}
	rest = strings.TrimSpace(rest)

	node := &ir.ForLoop{
		Variable: variable,
		Iterable: strings.TrimSpace(rest[len("IN"):]),
		Line:     p.lines[start].Number,
	}

	body, idx, stop, err := p.parseBody(bodyStart, end, map[string]bool{"END LOOP": true})
	if err != nil {
		return nil, 0, err
	}
	if stop == "" {
		return nil, 0, p.unclosed(start, "FOR loop")
	}
	node.Body = body
	node.EndLine = p.lines[idx].Number
	return node, idx + 1, nil
}

func (p *stmtParser) parseWhile(start, end int) (*ir.WhileLoop, int, error) {
	if err := p.descend(p.lines[start]); err != nil {
		return nil, 0, err
	}
	defer p.ascend()

	cond, bodyStart, err := p.parseHeader(start, end, "WHILE", "LOOP")
	if err != nil {
		return nil, 0, err
	}

	node := &ir.WhileLoop{Condition: cond, Line: p.lines[start].Number}
	body, idx, stop, err := p.parseBody(bodyStart, end, map[string]bool{"END LOOP": true})
	if err != nil {
		return nil, 0, err
	}
	if stop == "" {
		return nil, 0, p.unclosed(start, "WHILE loop")
	}
	node.Body = body
	node.EndLine = p.lines[idx].Number
	return node, idx + 1, nil
}

// parseBasicLoop handles a bare LOOP, represented as a WhileLoop with an
// empty condition.
func (p *stmtParser) parseBasicLoop(start, end int) (*ir.WhileLoop, int, error) {
	if err := p.descend(p.lines[start]); err != nil {
		return nil, 0, err
	}
	defer p.ascend()

	node := &ir.WhileLoop{Line: p.lines[start].Number}
	body, idx, stop, err := p.parseBody(start+1, end, map[string]bool{"END LOOP": true})
	if err != nil {
		return nil, 0, err
	}
	if stop == "" {
		return nil, 0, p.unclosed(start, "LOOP")
	}
	node.Body = body
	node.EndLine = p.lines[idx].Number
	return node, idx + 1, nil
}

// parseHeader joins the lines of a construct header that opens with keyword
// kw and runs until its closer keyword (THEN or LOOP), returning the text
// between the two and the index of the first body line.
func (p *stmtParser) parseHeader(start, end int, kw, closer string) (string, int, error) {
	first := p.lines[start]
	parts := []string{strings.TrimSpace(first.Text)}
	state := startContState(first.Text)
	i := start
	for state.kind != contNone {
		i++
		if i >= end {
			return "", 0, &StructuralParseError{
				Line:  first.Number,
				Depth: p.depth,
				Text:  first.Text,
				Msg:   fmt.Sprintf("%s header never reaches its %s keyword", kw, closer),
			}
		}
		t := strings.TrimSpace(p.lines[i].Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
		state = advanceContState(state, p.lines[i].Text)
	}
	joined := strings.Join(parts, " ")
	inner := strings.TrimSpace(joined[len(kw) : len(joined)-len(closer)])
	return inner, i + 1, nil
}

// parseLeaf accumulates one terminated statement, strips the terminator and
// classifies it by its leading token.
func (p *stmtParser) parseLeaf(start, end int) (*ir.SQLStatement, int, error) {
	first := p.lines[start]
	parts := []string{strings.TrimSpace(first.Text)}
	state := startContState(first.Text)
	i := start
	for state.kind != contNone {
		i++
		if i >= end {
			return nil, 0, &StructuralParseError{
				Line:  first.Number,
				Depth: p.depth,
				Text:  first.Text,
				Msg:   "statement never reaches its terminator",
			}
		}
		t := strings.TrimSpace(p.lines[i].Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
		state = advanceContState(state, p.lines[i].Text)
	}
	text := strings.TrimSpace(strings.TrimSuffix(strings.Join(parts, " "), ";"))
	leaf := &ir.SQLStatement{Kind: classifyLeaf(text), Text: text, Line: first.Number}
	return leaf, i + 1, nil
}

func classifyLeaf(text string) ir.SQLKind {
	switch firstToken(text) {
	case "SELECT":
		return ir.KindSelect
	case "INSERT":
		return ir.KindInsert
	case "UPDATE":
		return ir.KindUpdate
	case "DELETE":
		return ir.KindDelete
	case "RAISE", "RAISE_APPLICATION_ERROR":
		return ir.KindRaise
	case "RETURN":
		return ir.KindReturn
	case "NULL":
		return ir.KindNull
	}
	if assignIndex(text) >= 0 {
		return ir.KindAssignment
	}
	return ir.KindProcedureCall
}
