package ir

// A Visitor's Visit method is invoked for each statement encountered by
// Walk. If the result visitor w is not nil, Walk visits each of the children
// of the statement with visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(s Statement) (w Visitor)
}

// Walk traverses a statement tree in depth-first order: it starts by calling
// v.Visit(s); s must not be nil. If the visitor w returned by v.Visit(s) is
// not nil, Walk is invoked recursively with visitor w for each non-nil child
// of s, followed by a call of w.Visit(nil). Children are visited in source
// order; a block's exception handlers follow its main statements.
func Walk(v Visitor, s Statement) {
	if v = v.Visit(s); v == nil {
		return
	}

	switch n := s.(type) {
	case *SQLStatement:
		// leaf, nothing to descend into
	case *IfStatement:
		walkList(v, n.Then)
		for _, b := range n.Elifs {
			walkList(v, b.Body)
		}
		walkList(v, n.Else)
	case *CaseStatement:
		for _, w := range n.Whens {
			walkList(v, w.Body)
		}
		walkList(v, n.Else)
	case *ForLoop:
		walkList(v, n.Body)
	case *WhileLoop:
		walkList(v, n.Body)
	case *Block:
		walkList(v, n.Statements)
		for _, h := range n.Handlers {
			walkList(v, h.Body)
		}
	}

	v.Visit(nil)
}

func walkList(v Visitor, list []Statement) {
	for _, s := range list {
		Walk(v, s)
	}
}

type inspector func(Statement) bool

func (f inspector) Visit(s Statement) Visitor {
	if f(s) {
		return f
	}
	return nil
}

// Inspect traverses the tree depth-first: it calls f for every statement,
// then with nil after a statement's children have been visited. If f returns
// false, the children of the current statement are skipped.
func Inspect(s Statement, f func(Statement) bool) {
	Walk(inspector(f), s)
}

// Flatten returns every statement of the subtree in source order, s itself
// included. For a parsed trigger this reproduces the source order of its
// statements, which is how tests verify nothing was dropped or reordered.
func Flatten(s Statement) []Statement {
	var out []Statement
	Inspect(s, func(n Statement) bool {
		if n == nil {
			return false
		}
		out = append(out, n)
		return true
	})
	return out
}

// Leaves returns the SQL leaf statements of the subtree in source order.
func Leaves(s Statement) []*SQLStatement {
	var out []*SQLStatement
	Inspect(s, func(n Statement) bool {
		if leaf, ok := n.(*SQLStatement); ok {
			out = append(out, leaf)
		}
		return n != nil
	})
	return out
}
