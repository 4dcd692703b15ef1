// Package parser turns raw trigger source into the line-annotated
// intermediate representation in ir. The parse is purely structural: it
// recognizes section boundaries, declarations, control-flow nesting and
// statement extents, while embedded SQL and expression text is located and
// carried verbatim rather than parsed.
package parser

import "github.com/ha1tch/trigpiler/ir"

// Limits bounds the input accepted by Parse. Zero values take the defaults;
// a negative value disables that limit.
type Limits struct {
	MaxLines        int
	MaxNestingDepth int
}

const (
	DefaultMaxLines        = 10000
	DefaultMaxNestingDepth = 64
)

func (l Limits) withDefaults() Limits {
	if l.MaxLines == 0 {
		l.MaxLines = DefaultMaxLines
	}
	if l.MaxNestingDepth == 0 {
		l.MaxNestingDepth = DefaultMaxNestingDepth
	}
	return l
}

// Parse parses one trigger: either a bare DECLARE/BEGIN/EXCEPTION/END body
// or a complete CREATE TRIGGER statement whose header is extracted first.
// Non-fatal findings come back as warnings next to the parsed tree; a
// malformed structure returns an error and no tree.
func Parse(source string) (*ir.Trigger, []ir.Warning, error) {
	return ParseWithLimits(source, Limits{})
}

// ParseWithLimits is Parse with explicit input guards.
func ParseWithLimits(source string, limits Limits) (*ir.Trigger, []ir.Warning, error) {
	meta, body := ExtractHeader(source)
	return parseTrigger(body, meta, limits.withDefaults())
}

// ParseBody parses a bare trigger body using metadata the caller already
// has, skipping header extraction.
func ParseBody(body string, meta ir.Metadata, limits Limits) (*ir.Trigger, []ir.Warning, error) {
	return parseTrigger(body, meta, limits.withDefaults())
}

func parseTrigger(body string, meta ir.Metadata, limits Limits) (*ir.Trigger, []ir.Warning, error) {
	raw, comments := Preprocess(body)
	if limits.MaxLines > 0 && len(raw) > limits.MaxLines {
		return nil, nil, &InputSizeError{
			Lines:    len(raw),
			MaxLines: limits.MaxLines,
			MaxDepth: limits.MaxNestingDepth,
		}
	}

	lines := normalize(raw)
	secs, err := SplitSections(lines)
	if err != nil {
		return nil, nil, err
	}

	trig := &ir.Trigger{
		Metadata:   meta,
		Comments:   comments,
		HasDeclare: secs.DeclareIdx >= 0,
	}

	var warnings []ir.Warning
	if secs.DeclareIdx >= 0 {
		decls, w := parseDeclarations(lines, secs.DeclareIdx+1, secs.BeginIdx)
		trig.Declarations = decls
		warnings = append(warnings, w...)
	}

	p := &stmtParser{lines: lines, maxDepth: limits.MaxNestingDepth}
	blk, _, err := p.parseBlock(secs.BeginIdx, len(lines))
	if err != nil {
		return nil, nil, err
	}
	trig.Main = blk

	return trig, warnings, nil
}
