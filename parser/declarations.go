package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ha1tch/trigpiler/ir"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]*$`)

// parseDeclarations classifies the logical lines between DECLARE and BEGIN
// into variables, constants and exceptions. Every line ends up in exactly
// one bucket; anything unrecognized lands in the raw bucket with a warning
// instead of being dropped.
func parseDeclarations(lines []SourceLine, start, end int) (ir.Declarations, []ir.Warning) {
	var decls ir.Declarations
	var warnings []ir.Warning
	seen := map[string]int{}

	i := start
	for i < end {
		line := lines[i]
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" || trimmed == ";" {
			i++
			continue
		}

		text, next, terminated := accumulateDeclaration(lines, i, end)
		i = next
		if !terminated {
			decls.Raw = append(decls.Raw, ir.RawDeclaration{Text: text, Line: line.Number})
			warnings = append(warnings, ir.Warning{
				Code:    ir.WarnMalformedDeclaration,
				Line:    line.Number,
				Subject: text,
				Message: "declaration never reaches its terminator",
			})
			continue
		}

		decl, ok := classifyDeclaration(text, line.Number)
		if !ok {
			decls.Raw = append(decls.Raw, ir.RawDeclaration{Text: text, Line: line.Number})
			warnings = append(warnings, ir.Warning{
				Code:    ir.WarnMalformedDeclaration,
				Line:    line.Number,
				Subject: text,
				Message: "declaration matches no recognized shape",
			})
			continue
		}

		key := strings.ToLower(decl.Name())
		if first, dup := seen[key]; dup {
			warnings = append(warnings, ir.Warning{
				Code:    ir.WarnDuplicateDeclaration,
				Line:    line.Number,
				Subject: decl.Name(),
				Message: fmt.Sprintf("%s already declared on line %d, first declaration wins", decl.Name(), first),
			})
			continue
		}
		seen[key] = line.Number

		switch d := decl.(type) {
		case *ir.Variable:
			decls.Variables = append(decls.Variables, *d)
		case *ir.Constant:
			decls.Constants = append(decls.Constants, *d)
		case *ir.Exception:
			decls.Exceptions = append(decls.Exceptions, *d)
		}
	}
	return decls, warnings
}

// accumulateDeclaration joins the physical lines of one declaration up to
// its terminator and reports whether the terminator was ever reached.
func accumulateDeclaration(lines []SourceLine, start, end int) (string, int, bool) {
	parts := []string{strings.TrimSpace(lines[start].Text)}
	terminated := endsWithSemicolon(lines[start].Text)
	i := start + 1
	for !terminated && i < end {
		t := strings.TrimSpace(lines[i].Text)
		i++
		if t == "" {
			continue
		}
		parts = append(parts, t)
		terminated = endsWithSemicolon(t)
	}
	text := strings.TrimSuffix(strings.Join(parts, " "), ";")
	return strings.TrimSpace(text), i, terminated
}

// classifyDeclaration recognizes the three declaration shapes:
//
//	name type [:= expr | DEFAULT expr];
//	name CONSTANT type := expr;
//	name EXCEPTION;
//
// The type text is carried verbatim, %TYPE references included.
func classifyDeclaration(text string, line int) (ir.Declaration, bool) {
	name, rest := headWord(text)
	if name == "" || !identPattern.MatchString(name) {
		return nil, false
	}
	switch strings.ToUpper(name) {
	case "CURSOR", "TYPE", "SUBTYPE", "PRAGMA", "PROCEDURE", "FUNCTION":
		return nil, false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, false
	}

	if strings.EqualFold(rest, "EXCEPTION") {
		return &ir.Exception{Ident: name, Line: line}, true
	}

	if firstToken(rest) == "CONSTANT" {
		rest = strings.TrimSpace(rest[len("CONSTANT"):])
		idx := assignIndex(rest)
		if idx < 0 {
			return nil, false
		}
		dataType := strings.TrimSpace(rest[:idx])
		value := strings.TrimSpace(rest[idx+2:])
		if dataType == "" || value == "" {
			return nil, false
		}
		return &ir.Constant{Ident: name, DataType: dataType, Value: value, Line: line}, true
	}

	dataType := rest
	deflt := ""
	if idx := assignIndex(rest); idx >= 0 {
		dataType = strings.TrimSpace(rest[:idx])
		deflt = strings.TrimSpace(rest[idx+2:])
		if deflt == "" {
			return nil, false
		}
	} else if idx := wordIndex(rest, "DEFAULT"); idx >= 0 {
		dataType = strings.TrimSpace(rest[:idx])
		deflt = strings.TrimSpace(rest[idx+len("DEFAULT"):])
		if deflt == "" {
			return nil, false
		}
	}
	if dataType == "" {
		return nil, false
	}
	return &ir.Variable{Ident: name, DataType: dataType, Default: deflt, Line: line}, true
}
