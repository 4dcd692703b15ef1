package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/trigpiler/ir"
)

func TestParseDeclarations(t *testing.T) {
	t.Parallel()

	trig, warns, err := Parse(joinLines(
		"DECLARE",
		"  V_COUNT PLS_INTEGER;",
		"  v_name employees.last_name%TYPE;",
		"  v_rate NUMBER(5,2) := 0.05;",
		"  v_created DATE DEFAULT SYSDATE;",
		"  C_MAX CONSTANT NUMBER := 100;",
		"  e_too_many EXCEPTION;",
		"BEGIN",
		"  NULL;",
		"END;",
	))
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.True(t, trig.HasDeclare)

	vars := trig.Declarations.Variables
	require.Len(t, vars, 4)
	assert.Equal(t, ir.Variable{Ident: "V_COUNT", DataType: "PLS_INTEGER", Line: 2}, vars[0])
	assert.Equal(t, "employees.last_name%TYPE", vars[1].DataType)
	assert.Equal(t, "0.05", vars[2].Default)
	assert.Equal(t, "NUMBER(5,2)", vars[2].DataType)
	assert.Equal(t, "SYSDATE", vars[3].Default)

	require.Len(t, trig.Declarations.Constants, 1)
	want := ir.Constant{Ident: "C_MAX", DataType: "NUMBER", Value: "100", Line: 6}
	assert.Equal(t, want, trig.Declarations.Constants[0])

	require.Len(t, trig.Declarations.Exceptions, 1)
	assert.Equal(t, "e_too_many", trig.Declarations.Exceptions[0].Ident)
	assert.True(t, trig.Declarations.IsException("E_TOO_MANY"))
	assert.False(t, trig.Declarations.IsException("v_name"))
}

func TestParseDeclarationsDuplicateKeepsFirst(t *testing.T) {
	t.Parallel()

	trig, warns, err := Parse(joinLines(
		"DECLARE",
		"  v_n NUMBER := 1;",
		"  V_N NUMBER := 2;",
		"BEGIN",
		"  NULL;",
		"END;",
	))
	require.NoError(t, err)

	require.Len(t, trig.Declarations.Variables, 1)
	assert.Equal(t, "1", trig.Declarations.Variables[0].Default)

	require.Len(t, warns, 1)
	assert.Equal(t, ir.WarnDuplicateDeclaration, warns[0].Code)
	assert.Equal(t, 3, warns[0].Line)
	assert.Equal(t, "V_N", warns[0].Subject)
}

func TestParseDeclarationsUnrecognizedGoesRaw(t *testing.T) {
	t.Parallel()

	trig, warns, err := Parse(joinLines(
		"DECLARE",
		"  CURSOR c_emp IS SELECT id FROM employees;",
		"  v_n NUMBER;",
		"BEGIN",
		"  NULL;",
		"END;",
	))
	require.NoError(t, err)

	require.Len(t, trig.Declarations.Raw, 1)
	assert.Equal(t, 2, trig.Declarations.Raw[0].Line)
	assert.Contains(t, trig.Declarations.Raw[0].Text, "CURSOR c_emp")

	require.Len(t, warns, 1)
	assert.Equal(t, ir.WarnMalformedDeclaration, warns[0].Code)

	require.Len(t, trig.Declarations.Variables, 1)
	assert.Equal(t, "v_n", trig.Declarations.Variables[0].Ident)
}

func TestParseDeclarationSpansLines(t *testing.T) {
	t.Parallel()

	trig, warns, err := Parse(joinLines(
		"DECLARE",
		"  v_msg VARCHAR2(200) :=",
		"    'pending; review';",
		"BEGIN",
		"  NULL;",
		"END;",
	))
	require.NoError(t, err)
	assert.Empty(t, warns)

	vars := trig.Declarations.Variables
	require.Len(t, vars, 1)
	assert.Equal(t, "v_msg", vars[0].Ident)
	assert.Equal(t, "VARCHAR2(200)", vars[0].DataType)
	assert.Equal(t, "'pending; review'", vars[0].Default)
	assert.Equal(t, 2, vars[0].Line)
}

func TestClassifyDeclarationShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{"plain variable", "v_n NUMBER", true},
		{"exception", "e_bad EXCEPTION", true},
		{"constant", "c_lim CONSTANT PLS_INTEGER := 10", true},
		{"constant without value", "c_lim CONSTANT PLS_INTEGER", false},
		{"assignment without value", "v_n NUMBER :=", false},
		{"bare name", "v_n", false},
		{"pragma", "PRAGMA AUTONOMOUS_TRANSACTION", false},
		{"type definition", "TYPE t_ids IS TABLE OF NUMBER", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := classifyDeclaration(tc.text, 1)
			assert.Equal(t, tc.ok, ok)
		})
	}
}
