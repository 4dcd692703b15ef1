// Package mappings holds the dialect translation tables: Oracle function,
// type and exception names and their PostgreSQL replacements. Lookups are
// case-insensitive. Tables can be seeded from the builtin set, loaded from a
// YAML document, or both, with loaded entries overriding builtin ones.
package mappings

import "strings"

// Tables is one immutable set of translation tables. The zero value is
// empty and usable.
type Tables struct {
	functions  map[string]string
	types      map[string]string
	exceptions map[string]string
}

// New builds Tables from raw maps, normalizing keys for case-insensitive
// lookup. Values are kept verbatim; a function value may be a bare
// replacement name or a template with $1..$n argument placeholders.
func New(functions, types, exceptions map[string]string) Tables {
	return Tables{
		functions:  fold(functions),
		types:      fold(types),
		exceptions: fold(exceptions),
	}
}

func fold(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

// Function looks up the replacement for an Oracle function name.
func (t Tables) Function(name string) (string, bool) {
	v, ok := t.functions[strings.ToUpper(name)]
	return v, ok
}

// Type looks up the replacement for an Oracle data type keyword.
func (t Tables) Type(name string) (string, bool) {
	v, ok := t.types[strings.ToUpper(name)]
	return v, ok
}

// Exception looks up the replacement for an Oracle exception name.
func (t Tables) Exception(name string) (string, bool) {
	v, ok := t.exceptions[strings.ToUpper(name)]
	return v, ok
}

func (t Tables) NumFunctions() int  { return len(t.functions) }
func (t Tables) NumTypes() int      { return len(t.types) }
func (t Tables) NumExceptions() int { return len(t.exceptions) }

// Merge lays the entries of over on top of t and returns the combined
// tables. Neither input is modified.
func (t Tables) Merge(over Tables) Tables {
	return Tables{
		functions:  overlay(t.functions, over.functions),
		types:      overlay(t.types, over.types),
		exceptions: overlay(t.exceptions, over.exceptions),
	}
}

func overlay(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
