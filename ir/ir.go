// Package ir defines the line-annotated intermediate representation of a
// parsed trigger body. The tree is built bottom-up in a single parse pass and
// never mutated afterwards; translating with different mapping tables
// re-walks the same tree.
package ir

// SQLKind classifies a leaf statement by its leading keyword.
type SQLKind string

const (
	KindSelect        SQLKind = "select"
	KindInsert        SQLKind = "insert"
	KindUpdate        SQLKind = "update"
	KindDelete        SQLKind = "delete"
	KindAssignment    SQLKind = "assignment"
	KindRaise         SQLKind = "raise"
	KindReturn        SQLKind = "return"
	KindNull          SQLKind = "null"
	KindProcedureCall SQLKind = "procedure_call"
)

// Statement is one node of a parsed trigger body.
type Statement interface {
	// Pos returns the 1-based source line the statement starts on.
	Pos() int
	stmtNode()
}

// SQLStatement is a leaf node: one logical statement reassembled from its
// physical lines and carried as opaque text, without the trailing semicolon.
type SQLStatement struct {
	Kind SQLKind
	Text string
	Line int
}

// Branch is one condition/body arm of an IfStatement.
type Branch struct {
	Condition string
	Line      int
	Body      []Statement
}

// IfStatement is an IF/ELSIF/ELSE chain. Else is nil when the source has no
// ELSE arm, as opposed to an empty one.
type IfStatement struct {
	Condition string
	Line      int
	Then      []Statement
	Elifs     []Branch
	Else      []Statement
	EndLine   int
}

// WhenClause is one WHEN arm of a CaseStatement.
type WhenClause struct {
	Match string
	Line  int
	Body  []Statement
}

// CaseStatement covers both CASE forms: Selector holds the expression after
// the CASE keyword in the selector form and is empty in the searched form.
type CaseStatement struct {
	Selector string
	Line     int
	Whens    []WhenClause
	Else     []Statement
	EndLine  int
}

// ForLoop is a FOR..IN..LOOP. Iterable is carried verbatim and may itself
// contain a nested query.
type ForLoop struct {
	Variable string
	Iterable string
	Line     int
	Body     []Statement
	EndLine  int
}

// WhileLoop is a WHILE..LOOP with its condition carried verbatim.
type WhileLoop struct {
	Condition string
	Line      int
	Body      []Statement
	EndLine   int
}

// Handler is one WHEN clause of an EXCEPTION section. Exceptions holds every
// name of a multi-name clause (WHEN A OR B THEN) in source order.
type Handler struct {
	Exceptions []string
	Line       int
	Body       []Statement
}

// Block is a BEGIN..END block with an optional EXCEPTION section.
// BeginLine < ExceptionLine < EndLine holds whenever ExceptionLine is set;
// ExceptionLine is 0 when the block has no EXCEPTION section. The boundary
// lines always belong to this block itself, never to a nested one.
type Block struct {
	Statements    []Statement
	Handlers      []Handler
	BeginLine     int
	EndLine       int
	ExceptionLine int
}

func (s *SQLStatement) Pos() int  { return s.Line }
func (s *IfStatement) Pos() int   { return s.Line }
func (s *CaseStatement) Pos() int { return s.Line }
func (s *ForLoop) Pos() int       { return s.Line }
func (s *WhileLoop) Pos() int     { return s.Line }
func (s *Block) Pos() int         { return s.BeginLine }

func (*SQLStatement) stmtNode()  {}
func (*IfStatement) stmtNode()   {}
func (*CaseStatement) stmtNode() {}
func (*ForLoop) stmtNode()       {}
func (*WhileLoop) stmtNode()     {}
func (*Block) stmtNode()         {}
