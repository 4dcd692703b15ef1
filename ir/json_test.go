package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalDoc(t *testing.T, trig *Trigger) map[string]any {
	t.Helper()
	raw, err := json.Marshal(trig)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestMarshalMetadataAndDeclarations(t *testing.T) {
	t.Parallel()

	trig := &Trigger{
		Metadata: Metadata{
			Name:   "trg_orders_audit",
			Timing: "BEFORE",
			Events: []string{"INSERT", "UPDATE"},
			Table:  "orders",
		},
		HasDeclare: true,
		Declarations: Declarations{
			Variables:  []Variable{{Ident: "V_COUNT", DataType: "PLS_INTEGER", Line: 2}},
			Constants:  []Constant{{Ident: "C_MAX", DataType: "NUMBER", Value: "100", Line: 3}},
			Exceptions: []Exception{{Ident: "E_TOO_MANY", Line: 4}},
		},
		Main: &Block{BeginLine: 5, EndLine: 7, Statements: []Statement{
			&SQLStatement{Kind: KindInsert, Text: "INSERT INTO t VALUES (1)", Line: 6},
		}},
	}

	doc := marshalDoc(t, trig)

	meta, ok := doc["trigger_metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "trg_orders_audit", meta["trigger_name"])
	assert.Equal(t, "BEFORE", meta["timing"])
	assert.Equal(t, []any{"INSERT", "UPDATE"}, meta["events"])
	assert.Equal(t, "orders", meta["table_name"])
	assert.Equal(t, true, meta["has_declare_section"])
	assert.Equal(t, true, meta["has_begin_section"])
	assert.Equal(t, false, meta["has_exception_section"])

	decls, ok := doc["declarations"].(map[string]any)
	require.True(t, ok)
	vars := decls["variables"].([]any)
	require.Len(t, vars, 1)
	v := vars[0].(map[string]any)
	assert.Equal(t, "V_COUNT", v["name"])
	assert.Equal(t, "PLS_INTEGER", v["data_type"])
	assert.Nil(t, v["default_value"])

	consts := decls["constants"].([]any)
	require.Len(t, consts, 1)
	c := consts[0].(map[string]any)
	assert.Equal(t, "C_MAX", c["name"])
	assert.Equal(t, "100", c["value"])

	assert.Equal(t, []any{"E_TOO_MANY"}, decls["exceptions"])
}

func TestMarshalBlockBoundariesAndLeafIDs(t *testing.T) {
	t.Parallel()

	trig := &Trigger{Main: sampleBlock()}
	doc := marshalDoc(t, trig)

	main, ok := doc["data_operations"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "block", main["type"])
	assert.Equal(t, float64(1), main["begin_line"])
	assert.Equal(t, float64(12), main["end_line"])
	assert.Equal(t, float64(9), main["exception_line"])

	stmts := main["statements"].([]any)
	require.Len(t, stmts, 2)
	first := stmts[0].(map[string]any)
	assert.Equal(t, "sql", first["type"])
	assert.Equal(t, "insert", first["kind"])
	assert.Equal(t, "stmt_1", first["id"])
	assert.Equal(t, float64(2), first["line"])

	handlers := doc["exception_handlers"].([]any)
	require.Len(t, handlers, 1)
	h := handlers[0].(map[string]any)
	assert.Equal(t, "NO_DATA_FOUND", h["exception_name"])
	assert.Equal(t, "NULL;", h["handler_code"])
}

func TestMarshalDistinguishesMissingFromEmptyElse(t *testing.T) {
	t.Parallel()

	noElse := &Trigger{Main: &Block{BeginLine: 1, EndLine: 5, Statements: []Statement{
		&IfStatement{Condition: "x > 0", Line: 2, Then: []Statement{
			&SQLStatement{Kind: KindNull, Text: "NULL", Line: 3},
		}, EndLine: 4},
	}}}

	doc := marshalDoc(t, noElse)
	main := doc["data_operations"].(map[string]any)
	cond := main["statements"].([]any)[0].(map[string]any)
	val, present := cond["else_branch"]
	require.True(t, present)
	assert.Nil(t, val)

	assert.Nil(t, main["exception_line"])
}

func TestMarshalMultiNameHandler(t *testing.T) {
	t.Parallel()

	trig := &Trigger{Main: &Block{
		BeginLine:     1,
		EndLine:       6,
		ExceptionLine: 2,
		Handlers: []Handler{{
			Exceptions: []string{"TOO_MANY_ROWS", "OTHERS"},
			Line:       3,
			Body: []Statement{
				&SQLStatement{Kind: KindRaise, Text: "RAISE", Line: 4},
			},
		}},
	}}

	doc := marshalDoc(t, trig)
	handlers := doc["exception_handlers"].([]any)
	require.Len(t, handlers, 1)
	h := handlers[0].(map[string]any)
	assert.Equal(t, "TOO_MANY_ROWS OR OTHERS", h["exception_name"])
	assert.Equal(t, "RAISE;", h["handler_code"])
}
