package ir

import "strings"

// Declaration is one classified DECLARE-section entry.
type Declaration interface {
	// Name returns the declared identifier, or "" for raw unparsed entries.
	Name() string
	declNode()
}

// Variable is a scalar variable declaration. DataType is carried verbatim,
// including attribute references such as accounts.balance%TYPE, which are
// never rewritten before generation.
type Variable struct {
	Ident    string
	DataType string
	Default  string
	Line     int
}

// Constant is a CONSTANT declaration with its mandatory value expression.
type Constant struct {
	Ident    string
	DataType string
	Value    string
	Line     int
}

// Exception is a user-declared exception name.
type Exception struct {
	Ident string
	Line  int
}

// RawDeclaration preserves a declaration line matching no recognized shape.
// It is reported as a warning but never dropped.
type RawDeclaration struct {
	Text string
	Line int
}

func (d *Variable) Name() string       { return d.Ident }
func (d *Constant) Name() string       { return d.Ident }
func (d *Exception) Name() string      { return d.Ident }
func (d *RawDeclaration) Name() string { return "" }

func (*Variable) declNode()       {}
func (*Constant) declNode()       {}
func (*Exception) declNode()      {}
func (*RawDeclaration) declNode() {}

// Declarations groups the classified DECLARE-section entries, each slice in
// source order.
type Declarations struct {
	Variables  []Variable
	Constants  []Constant
	Exceptions []Exception
	Raw        []RawDeclaration
}

// Empty reports whether no declaration of any shape was found.
func (d Declarations) Empty() bool {
	return len(d.Variables) == 0 && len(d.Constants) == 0 &&
		len(d.Exceptions) == 0 && len(d.Raw) == 0
}

// IsException reports whether name was declared as an exception, matching
// case-insensitively the way the source dialect resolves identifiers.
func (d Declarations) IsException(name string) bool {
	for _, e := range d.Exceptions {
		if strings.EqualFold(e.Ident, name) {
			return true
		}
	}
	return false
}
