package ir

import "fmt"

// Metadata identifies the trigger a body belongs to. It is either extracted
// from a CREATE TRIGGER header or supplied by the caller; a bare body parses
// with zero-value metadata.
type Metadata struct {
	Name       string
	Timing     string   // BEFORE, AFTER or INSTEAD OF
	Events     []string // INSERT, UPDATE, UPDATE OF col[, col], DELETE
	Table      string
	ForEachRow bool
	When       string // raw WHEN clause condition, without parentheses
}

// Comment is a source comment captured by the preprocessor. Line is the
// physical line the comment started on.
type Comment struct {
	Line int
	Text string
}

// Trigger is the root of the parsed representation.
type Trigger struct {
	Metadata     Metadata
	Declarations Declarations
	Main         *Block
	Comments     []Comment

	// HasDeclare records whether a DECLARE keyword was present, which an
	// empty Declarations value alone cannot tell apart from no section.
	HasDeclare bool
}

// HasException reports whether the outermost block carries an EXCEPTION
// section.
func (t *Trigger) HasException() bool {
	return t.Main != nil && t.Main.ExceptionLine > 0
}

// WarningCode discriminates the non-fatal findings raised while parsing or
// translating. Warnings accumulate and are returned alongside output; they
// never abort a run.
type WarningCode string

const (
	WarnMalformedDeclaration WarningCode = "malformed_declaration"
	WarnDuplicateDeclaration WarningCode = "duplicate_declaration"
	WarnUnmappedFunction     WarningCode = "unmapped_function"
	WarnUnmappedType         WarningCode = "unmapped_type"
	WarnUnmappedException    WarningCode = "unmapped_exception"
	WarnEmptyMappingTable    WarningCode = "empty_mapping_table"
	WarnAmbiguousFallthrough WarningCode = "ambiguous_fallthrough"
)

// Warning is one non-fatal finding with enough context to fix the input or
// the mapping tables without re-running under a debugger.
type Warning struct {
	Code    WarningCode
	Line    int
	Subject string // the identifier or raw text the warning is about
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", w.Line, w.Code, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
