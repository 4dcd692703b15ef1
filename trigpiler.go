// Package trigpiler converts Oracle PL/SQL trigger bodies into PostgreSQL
// PL/pgSQL. The parser builds a line-annotated tree of declarations, nested
// control blocks, SQL statements and exception handlers; the translator
// re-emits that tree in the target dialect, rewriting names through
// data-driven mapping tables. The parser, mappings and translate packages
// hold the pieces; this package ties them together for the one-call paths.
package trigpiler

import (
	"github.com/ha1tch/trigpiler/ir"
	"github.com/ha1tch/trigpiler/mappings"
	"github.com/ha1tch/trigpiler/parser"
	"github.com/ha1tch/trigpiler/translate"
)

// Aliases so one-shot callers import a single package.
type (
	Trigger    = ir.Trigger
	Statement  = ir.Statement
	Warning    = ir.Warning
	Tables     = mappings.Tables
	Result     = translate.Result
	Deployment = translate.Deployment
	Limits     = parser.Limits
)

// Builtin returns the seed Oracle to PostgreSQL mapping tables.
func Builtin() Tables { return mappings.Builtin() }

// Inspect traverses a statement tree depth-first, calling f for every
// statement. f returning false skips the current statement's children.
func Inspect(s Statement, f func(Statement) bool) { ir.Inspect(s, f) }

// Parse builds the tree for one trigger. A CREATE TRIGGER wrapper is
// optional; a bare body parses with zero-value metadata.
func Parse(source string) (*Trigger, []Warning, error) {
	return parser.Parse(source)
}

// Translate parses source and renders the translated body. Parse warnings
// come first on the result, translation warnings after.
func Translate(source string, tables Tables) (*Result, error) {
	trig, parseWarnings, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	res, err := translate.New(tables).Translate(trig)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(parseWarnings, res.Warnings...)
	return res, nil
}

// Generate parses a full CREATE TRIGGER source and renders the deployment
// pair: the trigger function and the CREATE TRIGGER statement binding it.
func Generate(source string, tables Tables) (*Deployment, error) {
	trig, parseWarnings, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	dep, err := translate.New(tables).Generate(trig)
	if err != nil {
		return nil, err
	}
	dep.Warnings = append(parseWarnings, dep.Warnings...)
	return dep, nil
}

// Input is one named trigger source for a batch run.
type Input struct {
	Name   string
	Source string
}

// Outcome is the per-input result of a batch run. Err is set when the input
// failed structurally and Result is nil in that case.
type Outcome struct {
	Name   string
	Result *Result
	Err    error
}

// TranslateBatch translates each input independently against one set of
// tables. A failing input reports its error in place; it never stops the
// batch. Outcomes come back in input order.
func TranslateBatch(inputs []Input, tables Tables) []Outcome {
	outcomes := make([]Outcome, len(inputs))
	for i, in := range inputs {
		res, err := Translate(in.Source, tables)
		outcomes[i] = Outcome{Name: in.Name, Result: res, Err: err}
	}
	return outcomes
}
