// Package translate renders a parsed trigger tree as PL/pgSQL. Statement
// text is rewritten token by token against the loaded mapping tables;
// structure is re-emitted from the tree, so output indentation is uniform
// regardless of how the source was formatted.
package translate

import (
	"fmt"
	"strings"

	"github.com/ha1tch/trigpiler/ir"
	"github.com/ha1tch/trigpiler/mappings"
)

// Translator converts parsed triggers using one set of mapping tables. It is
// stateless between calls and safe for concurrent use.
type Translator struct {
	tables  mappings.Tables
	dialect Dialect
}

// Option configures a Translator.
type Option func(*Translator)

// WithDialect selects the target dialect. The default is Postgres.
func WithDialect(d Dialect) Option {
	return func(t *Translator) { t.dialect = d }
}

// New builds a Translator over the given mapping tables.
func New(tables mappings.Tables, opts ...Option) *Translator {
	t := &Translator{tables: tables, dialect: Postgres}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate renders the trigger body alone, without the function wrapper and
// without injected RETURN statements.
func (t *Translator) Translate(trig *ir.Trigger) (*Result, error) {
	if trig == nil || trig.Main == nil {
		return nil, fmt.Errorf("translate: trigger has no body")
	}
	e := t.newEmitter(trig, false)
	e.emitDeclarations()
	e.emitBlock(trig.Main, true)
	return &Result{Body: e.sb.String(), Warnings: e.warnings}, nil
}

// Generate renders a full deployment: the trigger function and the CREATE
// TRIGGER statement binding it. The metadata must carry a trigger name.
func (t *Translator) Generate(trig *ir.Trigger) (*Deployment, error) {
	if trig == nil || trig.Main == nil {
		return nil, fmt.Errorf("generate: trigger has no body")
	}
	meta := trig.Metadata
	if meta.Name == "" {
		return nil, fmt.Errorf("generate: trigger has no name, parse a full CREATE TRIGGER statement or set Metadata.Name")
	}

	e := t.newEmitter(trig, true)
	e.emitDeclarations()
	e.emitBlock(trig.Main, true)

	fnName := strings.ToLower(meta.Name) + "_fn"
	var fn strings.Builder
	fmt.Fprintf(&fn, "CREATE OR REPLACE FUNCTION %s()\nRETURNS trigger AS $$\n", fnName)
	fn.WriteString(e.sb.String())
	fn.WriteString("$$ LANGUAGE plpgsql;\n")

	var trg strings.Builder
	fmt.Fprintf(&trg, "CREATE TRIGGER %s\n", strings.ToLower(meta.Name))
	fmt.Fprintf(&trg, "%s %s ON %s\n", meta.Timing, strings.Join(meta.Events, " OR "), strings.ToLower(meta.Table))
	if meta.ForEachRow {
		trg.WriteString("FOR EACH ROW\n")
	}
	if meta.When != "" {
		fmt.Fprintf(&trg, "WHEN (%s)\n", e.rw.expression(meta.When, 0))
	}
	fmt.Fprintf(&trg, "EXECUTE FUNCTION %s();\n", fnName)

	return &Deployment{
		FunctionName: fnName,
		FunctionSQL:  fn.String(),
		TriggerSQL:   trg.String(),
		Warnings:     e.warnings,
	}, nil
}

func (t *Translator) newEmitter(trig *ir.Trigger, withReturn bool) *emitter {
	e := &emitter{
		dialect:    t.dialect,
		trig:       trig,
		warned:     make(map[string]bool),
		withReturn: withReturn,
	}
	e.rw = &rewriter{tables: t.tables, decls: trig.Declarations, dialect: t.dialect, warn: e.warn}
	return e
}

// emitter walks the tree once, appending rendered lines. withReturn injects
// RETURN statements on every path out of the outermost block, which trigger
// functions require and plain bodies must not carry.
type emitter struct {
	sb         strings.Builder
	indent     int
	rw         *rewriter
	dialect    Dialect
	trig       *ir.Trigger
	warnings   []ir.Warning
	warned     map[string]bool
	withReturn bool
}

// warn collects a finding. Lookup misses dedupe per subject so a builtin
// used on every other line reports once; site-specific findings repeat.
func (e *emitter) warn(code ir.WarningCode, line int, subject, message string) {
	switch code {
	case ir.WarnUnmappedFunction, ir.WarnUnmappedType, ir.WarnUnmappedException, ir.WarnEmptyMappingTable:
		key := string(code) + "|" + strings.ToUpper(subject)
		if e.warned[key] {
			return
		}
		e.warned[key] = true
	}
	e.warnings = append(e.warnings, ir.Warning{Code: code, Line: line, Subject: subject, Message: message})
}

func (e *emitter) line(text string) {
	e.sb.WriteString(strings.Repeat("\t", e.indent))
	e.sb.WriteString(text)
	e.sb.WriteByte('\n')
}

func (e *emitter) emitDeclarations() {
	d := e.trig.Declarations
	if len(d.Constants) == 0 && len(d.Variables) == 0 && len(d.Raw) == 0 {
		return
	}
	e.line("DECLARE")
	e.indent++
	// constants before variables so initializers can reference them
	for _, c := range d.Constants {
		e.line(fmt.Sprintf("%s CONSTANT %s := %s;",
			c.Ident, e.rw.typeName(c.DataType, c.Line), e.rw.value(c.Value, c.Line)))
	}
	for _, v := range d.Variables {
		if v.Default != "" {
			e.line(fmt.Sprintf("%s %s := %s;",
				v.Ident, e.rw.typeName(v.DataType, v.Line), e.rw.value(v.Default, v.Line)))
		} else {
			e.line(fmt.Sprintf("%s %s;", v.Ident, e.rw.typeName(v.DataType, v.Line)))
		}
	}
	for _, raw := range d.Raw {
		e.line("-- not translated: " + raw.Text)
	}
	e.indent--
}

func (e *emitter) emitBlock(b *ir.Block, top bool) {
	e.line("BEGIN")
	e.indent++
	e.emitStatements(b.Statements)
	if top && e.withReturn && !exitsBlock(b.Statements) {
		e.line("RETURN " + e.returnRow() + ";")
	}
	e.indent--
	if b.ExceptionLine > 0 {
		e.line("EXCEPTION")
		e.indent++
		for _, h := range b.Handlers {
			names := make([]string, len(h.Exceptions))
			for i, name := range h.Exceptions {
				names[i] = e.rw.exceptionName(name, h.Line)
			}
			e.line("WHEN " + strings.Join(names, " OR ") + " THEN")
			e.indent++
			e.emitStatements(h.Body)
			if top && e.withReturn && !exitsBlock(h.Body) {
				e.line("RETURN " + e.returnRow() + ";")
			}
			e.indent--
		}
		e.indent--
	}
	e.line("END;")
}

func (e *emitter) emitStatements(stmts []ir.Statement) {
	if len(stmts) == 0 {
		e.line(e.dialect.EmptyBody)
		return
	}
	for _, s := range stmts {
		e.emitStatement(s)
	}
}

func (e *emitter) emitStatement(s ir.Statement) {
	switch n := s.(type) {
	case *ir.SQLStatement:
		e.emitLeaf(n)
	case *ir.IfStatement:
		e.emitIf(n)
	case *ir.CaseStatement:
		e.emitCase(n)
	case *ir.ForLoop:
		e.emitFor(n)
	case *ir.WhileLoop:
		e.emitWhile(n)
	case *ir.Block:
		e.emitBlock(n, false)
	}
}

func (e *emitter) emitLeaf(n *ir.SQLStatement) {
	switch n.Kind {
	case ir.KindRaise:
		e.line(e.rw.raise(n.Text, n.Line))
	case ir.KindReturn:
		if strings.EqualFold(strings.TrimSpace(n.Text), "RETURN") {
			if e.withReturn {
				e.line("RETURN " + e.returnRow() + ";")
			} else {
				e.line("RETURN;")
			}
			return
		}
		e.line(e.rw.expression(n.Text, n.Line) + ";")
	case ir.KindNull:
		e.line("NULL;")
	default:
		e.line(e.rw.expression(n.Text, n.Line) + ";")
	}
}

func (e *emitter) emitIf(n *ir.IfStatement) {
	e.line("IF " + e.rw.expression(n.Condition, n.Line) + " THEN")
	e.indent++
	e.emitStatements(n.Then)
	e.indent--
	for _, br := range n.Elifs {
		e.line("ELSIF " + e.rw.expression(br.Condition, br.Line) + " THEN")
		e.indent++
		e.emitStatements(br.Body)
		e.indent--
	}
	if n.Else != nil {
		e.line("ELSE")
		e.indent++
		e.emitStatements(n.Else)
		e.indent--
	}
	e.line("END IF;")
}

func (e *emitter) emitCase(n *ir.CaseStatement) {
	if n.Selector != "" {
		e.line("CASE " + e.rw.expression(n.Selector, n.Line))
	} else {
		e.line("CASE")
	}
	e.indent++
	for _, w := range n.Whens {
		e.line("WHEN " + e.rw.expression(w.Match, w.Line) + " THEN")
		e.indent++
		e.emitStatements(w.Body)
		e.indent--
	}
	if n.Else != nil {
		e.line("ELSE")
		e.indent++
		e.emitStatements(n.Else)
		e.indent--
	}
	e.indent--
	e.line("END CASE;")
}

func (e *emitter) emitFor(n *ir.ForLoop) {
	e.line("FOR " + n.Variable + " IN " + e.forIterable(n) + " LOOP")
	e.indent++
	e.emitStatements(n.Body)
	e.indent--
	e.line("END LOOP;")
}

// forIterable drops the parentheses Oracle requires around a cursor query
// when they wrap the whole iterable, since the target form takes the query
// bare. Range iterables keep their text.
func (e *emitter) forIterable(n *ir.ForLoop) string {
	it := strings.TrimSpace(n.Iterable)
	if strings.HasPrefix(it, "(") {
		if _, end, ok := splitCallArgs(it, 0); ok && end == len(it) {
			inner := strings.TrimSpace(it[1 : len(it)-1])
			if strings.EqualFold(firstWordOf(inner), "SELECT") {
				return e.rw.expression(inner, n.Line)
			}
		}
	}
	return e.rw.expression(it, n.Line)
}

func (e *emitter) emitWhile(n *ir.WhileLoop) {
	if strings.TrimSpace(n.Condition) == "" {
		e.line("LOOP")
	} else {
		e.line("WHILE " + e.rw.expression(n.Condition, n.Line) + " LOOP")
	}
	e.indent++
	e.emitStatements(n.Body)
	e.indent--
	e.line("END LOOP;")
}

// returnRow picks the row a trigger function hands back: NULL for statement
// triggers, OLD when the trigger fires on DELETE alone, NEW otherwise.
func (e *emitter) returnRow() string {
	meta := e.trig.Metadata
	if !meta.ForEachRow {
		return e.dialect.NullRow
	}
	deleteOnly := len(meta.Events) > 0
	for _, ev := range meta.Events {
		if !strings.EqualFold(ev, "DELETE") {
			deleteOnly = false
			break
		}
	}
	if deleteOnly {
		return e.dialect.OldRow
	}
	return e.dialect.NewRow
}

// exitsBlock reports whether the last statement already leaves the function,
// by returning or by raising. RAISE NOTICE and the other log levels resume
// execution, so they do not count.
func exitsBlock(stmts []ir.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	leaf, ok := stmts[len(stmts)-1].(*ir.SQLStatement)
	if !ok {
		return false
	}
	switch leaf.Kind {
	case ir.KindReturn:
		return true
	case ir.KindRaise:
		fields := strings.Fields(leaf.Text)
		if len(fields) < 2 {
			return true
		}
		level := strings.ToUpper(fields[1])
		return level == "EXCEPTION" || !raiseTargets[level]
	}
	return false
}
