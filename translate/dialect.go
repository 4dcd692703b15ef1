package translate

import "strings"

// Dialect carries the target-side syntax the emitter cannot get from the
// mapping tables: row variable names, the operation discriminator and the
// canonical operator spellings.
type Dialect struct {
	Name         string
	NotEqual     string
	OperationVar string
	NewRow       string
	OldRow       string
	NullRow      string
	EmptyBody    string
}

// Postgres is the PL/pgSQL target.
var Postgres = Dialect{
	Name:         "postgres",
	NotEqual:     "<>",
	OperationVar: "TG_OP",
	NewRow:       "NEW",
	OldRow:       "OLD",
	NullRow:      "NULL",
	EmptyBody:    "NULL;",
}

var dialects = map[string]Dialect{
	Postgres.Name: Postgres,
}

// ByName resolves a dialect by its registered name.
func ByName(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Names lists the registered dialect names.
func Names() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	return names
}
