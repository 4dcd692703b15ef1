package trigpiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/trigpiler/ir"
	"github.com/ha1tch/trigpiler/mappings"
	"github.com/ha1tch/trigpiler/parser"
)

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParseMinimalBlock(t *testing.T) {
	t.Parallel()

	trig, warnings, err := Parse(joinLines(
		"BEGIN",
		"	INSERT INTO audit_log (id) VALUES (1);",
		"END;",
	))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.NotNil(t, trig.Main)
	assert.Equal(t, 1, trig.Main.BeginLine)
	assert.Equal(t, 3, trig.Main.EndLine)
	assert.Equal(t, 0, trig.Main.ExceptionLine)

	require.Len(t, trig.Main.Statements, 1)
	leaf, ok := trig.Main.Statements[0].(*ir.SQLStatement)
	require.True(t, ok)
	assert.Equal(t, ir.KindInsert, leaf.Kind)
	assert.Equal(t, 2, leaf.Line)
}

func TestParseHandlersAndDeclarations(t *testing.T) {
	t.Parallel()

	trig, warnings, err := Parse(joinLines(
		"DECLARE",
		"	v_count PLS_INTEGER;",
		"	c_max CONSTANT NUMBER := 100;",
		"BEGIN",
		"	SELECT COUNT(*) INTO v_count FROM orders;",
		"EXCEPTION",
		"	WHEN NO_DATA_FOUND THEN",
		"		v_count := 0;",
		"	WHEN OTHERS THEN",
		"		RAISE;",
		"END;",
	))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, trig.Declarations.Variables, 1)
	assert.Equal(t, "v_count", trig.Declarations.Variables[0].Ident)
	assert.Equal(t, "PLS_INTEGER", trig.Declarations.Variables[0].DataType)

	require.Len(t, trig.Declarations.Constants, 1)
	assert.Equal(t, "c_max", trig.Declarations.Constants[0].Ident)
	assert.Equal(t, "100", trig.Declarations.Constants[0].Value)

	require.Len(t, trig.Main.Handlers, 2)
	assert.Equal(t, []string{"NO_DATA_FOUND"}, trig.Main.Handlers[0].Exceptions)
	assert.Equal(t, []string{"OTHERS"}, trig.Main.Handlers[1].Exceptions)
}

func TestTranslateEventPredicate(t *testing.T) {
	t.Parallel()

	res, err := Translate(joinLines(
		"BEGIN",
		"	IF INSERTING OR UPDATING THEN",
		"		:NEW.updated_at := SYSDATE;",
		"	END IF;",
		"END;",
	), Builtin())
	require.NoError(t, err)

	assert.Contains(t, res.Body, "IF TG_OP IN ('INSERT', 'UPDATE') THEN")
	assert.Contains(t, res.Body, "NEW.updated_at := CURRENT_TIMESTAMP;")
	assert.Empty(t, res.Warnings)
}

func TestTranslateMappedAndUnmappedFunctions(t *testing.T) {
	t.Parallel()

	source := joinLines(
		"BEGIN",
		"	:NEW.total := NVL(:NEW.qty, 0);",
		"END;",
	)

	res, err := Translate(source, Builtin())
	require.NoError(t, err)
	assert.Contains(t, res.Body, "COALESCE(NEW.qty, 0)")
	assert.Empty(t, res.Warnings)

	res, err = Translate(source, mappings.New(nil, nil, nil))
	require.NoError(t, err)
	assert.Contains(t, res.Body, "NVL(NEW.qty, 0)")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, ir.WarnEmptyMappingTable, res.Warnings[0].Code)
}

func TestTranslateCombinesParseWarnings(t *testing.T) {
	t.Parallel()

	res, err := Translate(joinLines(
		"DECLARE",
		"	CURSOR c_rows IS SELECT 1 FROM dual;",
		"	v_n NUMBER;",
		"BEGIN",
		"	v_n := NVL(v_n, 0);",
		"END;",
	), mappings.New(nil, map[string]string{"NUMBER": "NUMERIC"}, nil))
	require.NoError(t, err)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, ir.WarnMalformedDeclaration, res.Warnings[0].Code)
	assert.Equal(t, ir.WarnEmptyMappingTable, res.Warnings[1].Code)
}

func TestGenerateDeploymentPair(t *testing.T) {
	t.Parallel()

	dep, err := Generate(joinLines(
		"CREATE OR REPLACE TRIGGER trg_orders_total",
		"BEFORE INSERT OR UPDATE ON orders",
		"FOR EACH ROW",
		"BEGIN",
		"	:NEW.total := NVL(:NEW.qty, 0) * :NEW.price;",
		"END;",
	), Builtin())
	require.NoError(t, err)

	assert.Equal(t, "trg_orders_total_fn", dep.FunctionName)
	assert.Contains(t, dep.FunctionSQL, "RETURNS trigger")
	assert.Contains(t, dep.FunctionSQL, "NEW.total := COALESCE(NEW.qty, 0) * NEW.price;")
	assert.Contains(t, dep.FunctionSQL, "RETURN NEW;")
	assert.Contains(t, dep.TriggerSQL, "CREATE TRIGGER trg_orders_total")
	assert.Contains(t, dep.TriggerSQL, "EXECUTE FUNCTION trg_orders_total_fn();")
}

func TestTranslateBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	inputs := []Input{
		{Name: "good.sql", Source: "BEGIN\n	NULL;\nEND;"},
		{Name: "bad.sql", Source: "BEGIN\n	END IF;\nEND;"},
		{Name: "also_good.sql", Source: "BEGIN\n	:NEW.n := 1;\nEND;"},
	}

	outcomes := TranslateBatch(inputs, Builtin())
	require.Len(t, outcomes, 3)

	assert.Equal(t, "good.sql", outcomes[0].Name)
	require.NoError(t, outcomes[0].Err)
	assert.Contains(t, outcomes[0].Result.Body, "NULL;")

	assert.Equal(t, "bad.sql", outcomes[1].Name)
	require.Error(t, outcomes[1].Err)
	assert.Nil(t, outcomes[1].Result)
	var structural *parser.StructuralParseError
	assert.ErrorAs(t, outcomes[1].Err, &structural)

	require.NoError(t, outcomes[2].Err)
	assert.Contains(t, outcomes[2].Result.Body, "NEW.n := 1;")
}
