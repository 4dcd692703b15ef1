package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The types below mirror the serialization contract consumed by downstream
// diffing and reporting tools. Field names and nesting are stable; renaming
// one breaks those consumers.

type document struct {
	Metadata documentMetadata  `json:"trigger_metadata"`
	Decls    documentDecls     `json:"declarations"`
	Main     any               `json:"data_operations"`
	Handlers []documentHandler `json:"exception_handlers"`
}

type documentMetadata struct {
	TriggerName  string   `json:"trigger_name"`
	Timing       string   `json:"timing"`
	Events       []string `json:"events"`
	TableName    string   `json:"table_name"`
	HasDeclare   bool     `json:"has_declare_section"`
	HasBegin     bool     `json:"has_begin_section"`
	HasException bool     `json:"has_exception_section"`
}

type documentDecls struct {
	Variables  []documentVariable `json:"variables"`
	Constants  []documentConstant `json:"constants"`
	Exceptions []string           `json:"exceptions"`
}

type documentVariable struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	DefaultValue any    `json:"default_value"`
}

type documentConstant struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Value    string `json:"value"`
}

type documentHandler struct {
	ExceptionName string `json:"exception_name"`
	HandlerCode   string `json:"handler_code"`
}

type sqlNode struct {
	Type string  `json:"type"`
	Kind SQLKind `json:"kind"`
	ID   string  `json:"id"`
	Text string  `json:"text"`
	Line int     `json:"line"`
}

type branchNode struct {
	Condition  string `json:"condition"`
	Line       int    `json:"line"`
	Statements []any  `json:"statements"`
}

type ifNode struct {
	Type      string       `json:"type"`
	Condition string       `json:"condition"`
	Line      int          `json:"line"`
	Then      []any        `json:"then"`
	Elifs     []branchNode `json:"elif_branches"`
	Else      []any        `json:"else_branch"`
	EndLine   int          `json:"end_line"`
}

type whenNode struct {
	Match      string `json:"match"`
	Line       int    `json:"line"`
	Statements []any  `json:"statements"`
}

type caseNode struct {
	Type     string     `json:"type"`
	Selector string     `json:"selector"`
	Line     int        `json:"line"`
	Whens    []whenNode `json:"when_clauses"`
	Else     []any      `json:"else_branch"`
	EndLine  int        `json:"end_line"`
}

type forNode struct {
	Type     string `json:"type"`
	Variable string `json:"variable"`
	Iterable string `json:"iterable"`
	Line     int    `json:"line"`
	Body     []any  `json:"body"`
	EndLine  int    `json:"end_line"`
}

type whileNode struct {
	Type      string `json:"type"`
	Condition string `json:"condition"`
	Line      int    `json:"line"`
	Body      []any  `json:"body"`
	EndLine   int    `json:"end_line"`
}

type handlerNode struct {
	Exceptions []string `json:"exceptions"`
	Line       int      `json:"line"`
	Statements []any    `json:"statements"`
}

type blockNode struct {
	Type          string        `json:"type"`
	BeginLine     int           `json:"begin_line"`
	EndLine       int           `json:"end_line"`
	ExceptionLine any           `json:"exception_line"`
	Statements    []any         `json:"statements"`
	Handlers      []handlerNode `json:"handlers"`
}

// MarshalJSON emits the stable document shape for a parsed trigger.
func (t *Trigger) MarshalJSON() ([]byte, error) {
	events := t.Metadata.Events
	if events == nil {
		events = []string{}
	}

	doc := document{
		Metadata: documentMetadata{
			TriggerName:  t.Metadata.Name,
			Timing:       t.Metadata.Timing,
			Events:       events,
			TableName:    t.Metadata.Table,
			HasDeclare:   t.HasDeclare,
			HasBegin:     t.Main != nil,
			HasException: t.HasException(),
		},
		Decls:    declsJSON(t.Declarations),
		Handlers: []documentHandler{},
	}

	g := &idGen{}
	if t.Main != nil {
		doc.Main = nodeJSON(t.Main, g)
		for _, h := range t.Main.Handlers {
			doc.Handlers = append(doc.Handlers, documentHandler{
				ExceptionName: strings.Join(h.Exceptions, " OR "),
				HandlerCode:   handlerCode(h),
			})
		}
	}

	return json.Marshal(doc)
}

func declsJSON(d Declarations) documentDecls {
	out := documentDecls{
		Variables:  []documentVariable{},
		Constants:  []documentConstant{},
		Exceptions: []string{},
	}
	for _, v := range d.Variables {
		dv := documentVariable{Name: v.Ident, DataType: v.DataType}
		if v.Default != "" {
			dv.DefaultValue = v.Default
		}
		out.Variables = append(out.Variables, dv)
	}
	for _, c := range d.Constants {
		out.Constants = append(out.Constants, documentConstant{
			Name:     c.Ident,
			DataType: c.DataType,
			Value:    c.Value,
		})
	}
	for _, e := range d.Exceptions {
		out.Exceptions = append(out.Exceptions, e.Ident)
	}
	return out
}

// idGen numbers SQL leaves in document order so that downstream diffs can
// address one statement stably across runs.
type idGen struct {
	n int
}

func (g *idGen) next() string {
	g.n++
	return fmt.Sprintf("stmt_%d", g.n)
}

func nodeJSON(s Statement, g *idGen) any {
	switch n := s.(type) {
	case *SQLStatement:
		return sqlNode{Type: "sql", Kind: n.Kind, ID: g.next(), Text: n.Text, Line: n.Line}

	case *IfStatement:
		node := ifNode{
			Type:      "if",
			Condition: n.Condition,
			Line:      n.Line,
			Then:      listJSON(n.Then, g),
			Elifs:     []branchNode{},
			Else:      optListJSON(n.Else, g),
			EndLine:   n.EndLine,
		}
		for _, b := range n.Elifs {
			node.Elifs = append(node.Elifs, branchNode{
				Condition:  b.Condition,
				Line:       b.Line,
				Statements: listJSON(b.Body, g),
			})
		}
		return node

	case *CaseStatement:
		node := caseNode{
			Type:     "case",
			Selector: n.Selector,
			Line:     n.Line,
			Whens:    []whenNode{},
			Else:     optListJSON(n.Else, g),
			EndLine:  n.EndLine,
		}
		for _, w := range n.Whens {
			node.Whens = append(node.Whens, whenNode{
				Match:      w.Match,
				Line:       w.Line,
				Statements: listJSON(w.Body, g),
			})
		}
		return node

	case *ForLoop:
		return forNode{
			Type:     "for_loop",
			Variable: n.Variable,
			Iterable: n.Iterable,
			Line:     n.Line,
			Body:     listJSON(n.Body, g),
			EndLine:  n.EndLine,
		}

	case *WhileLoop:
		return whileNode{
			Type:      "while_loop",
			Condition: n.Condition,
			Line:      n.Line,
			Body:      listJSON(n.Body, g),
			EndLine:   n.EndLine,
		}

	case *Block:
		node := blockNode{
			Type:       "block",
			BeginLine:  n.BeginLine,
			EndLine:    n.EndLine,
			Statements: listJSON(n.Statements, g),
			Handlers:   []handlerNode{},
		}
		if n.ExceptionLine > 0 {
			node.ExceptionLine = n.ExceptionLine
		}
		for _, h := range n.Handlers {
			node.Handlers = append(node.Handlers, handlerNode{
				Exceptions: h.Exceptions,
				Line:       h.Line,
				Statements: listJSON(h.Body, g),
			})
		}
		return node
	}
	return nil
}

func listJSON(list []Statement, g *idGen) []any {
	out := make([]any, 0, len(list))
	for _, s := range list {
		out = append(out, nodeJSON(s, g))
	}
	return out
}

// optListJSON keeps the absent/empty distinction: a missing ELSE arm
// serializes as null, a present but empty one as [].
func optListJSON(list []Statement, g *idGen) []any {
	if list == nil {
		return nil
	}
	return listJSON(list, g)
}

func handlerCode(h Handler) string {
	var lines []string
	for _, s := range h.Body {
		for _, leaf := range Leaves(s) {
			lines = append(lines, leaf.Text+";")
		}
	}
	return strings.Join(lines, "\n")
}
