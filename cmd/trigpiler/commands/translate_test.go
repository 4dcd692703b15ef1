package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditBody = `BEGIN
	IF :NEW.total != :OLD.total THEN
		INSERT INTO audit_log VALUES (:NEW.id, SYSDATE);
	END IF;
END;`

const auditTrigger = `CREATE OR REPLACE TRIGGER trg_orders_audit
AFTER INSERT OR UPDATE ON orders
FOR EACH ROW
BEGIN
	INSERT INTO audit_log VALUES (:NEW.id);
END;`

// runTranslate executes the translate command with a fresh flag set and
// captured streams. Command tests stay serial because the color package
// keeps its enable switch in a package variable.
func runTranslate(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewTranslateCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append(args, "--config", writeTempFile(t, "cfg.yaml", ""), "--no-color"))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTranslateCommandFileMode(t *testing.T) {
	input := writeTempFile(t, "audit.sql", auditBody)

	stdout, _, err := runTranslate(t, nil, input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "IF NEW.total <> OLD.total THEN")
	assert.Contains(t, stdout, "INSERT INTO audit_log VALUES (NEW.id, CURRENT_TIMESTAMP);")
}

func TestTranslateCommandStdinMode(t *testing.T) {
	stdout, _, err := runTranslate(t, strings.NewReader(auditBody), "--stdin")
	require.NoError(t, err)

	assert.Contains(t, stdout, "IF NEW.total <> OLD.total THEN")
}

func TestTranslateCommandWritesOutputFile(t *testing.T) {
	input := writeTempFile(t, "audit.sql", auditBody)
	outPath := filepath.Join(t.TempDir(), "audit.out.sql")

	stdout, _, err := runTranslate(t, nil, input, "--output", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "NEW.total <> OLD.total")
}

func TestTranslateCommandRefusesOverwrite(t *testing.T) {
	input := writeTempFile(t, "audit.sql", auditBody)
	outPath := writeTempFile(t, "audit.out.sql", "existing content")

	_, _, err := runTranslate(t, nil, input, "--output", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists (use --force to overwrite)")

	content, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)
	assert.Equal(t, "existing content", string(content), "refused write leaves the file alone")

	_, _, err = runTranslate(t, nil, input, "--output", outPath, "--force")
	require.NoError(t, err)

	content, readErr = os.ReadFile(outPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "NEW.total <> OLD.total")
}

func TestTranslateCommandModeConflicts(t *testing.T) {
	input := writeTempFile(t, "audit.sql", auditBody)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "file argument with stdin",
			args:    []string{input, "--stdin"},
			wantErr: "cannot combine multiple input modes",
		},
		{
			name:    "outdir without dir",
			args:    []string{input, "--outdir", t.TempDir()},
			wantErr: "--outdir requires --dir",
		},
		{
			name:    "output with outdir",
			args:    []string{"--dir", filepath.Dir(input), "--output", "a.sql", "--outdir", t.TempDir()},
			wantErr: "cannot specify both --output and --outdir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runTranslate(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTranslateCommandDirectoryMode(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "good.sql"), []byte(auditBody), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "bad.sql"), []byte("BEGIN\n\tEND IF;\nEND;"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("not sql"), 0o600))

	_, stderr, err := runTranslate(t, nil, "--dir", inDir, "--outdir", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")

	content, readErr := os.ReadFile(filepath.Join(outDir, "good.sql"))
	require.NoError(t, readErr, "the good file is translated despite the bad neighbor")
	assert.Contains(t, string(content), "NEW.total <> OLD.total")

	_, statErr := os.Stat(filepath.Join(outDir, "bad.sql"))
	assert.True(t, os.IsNotExist(statErr))

	assert.Contains(t, stderr, "error: ")
	assert.Contains(t, stderr, "1 failed")
}

func TestTranslateCommandFullDeployment(t *testing.T) {
	input := writeTempFile(t, "trigger.sql", auditTrigger)

	stdout, _, err := runTranslate(t, nil, input, "--full")
	require.NoError(t, err)

	assert.Contains(t, stdout, "CREATE OR REPLACE FUNCTION trg_orders_audit_fn()")
	assert.Contains(t, stdout, "RETURNS trigger")
	assert.Contains(t, stdout, "CREATE TRIGGER trg_orders_audit")
	assert.Contains(t, stdout, "AFTER INSERT OR UPDATE ON orders")
	assert.Contains(t, stdout, "EXECUTE FUNCTION trg_orders_audit_fn();")
}

func TestTranslateCommandFullNeedsHeader(t *testing.T) {
	input := writeTempFile(t, "audit.sql", auditBody)

	_, _, err := runTranslate(t, nil, input, "--full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger has no name")
}

func TestTranslateCommandMappingsOverlay(t *testing.T) {
	input := writeTempFile(t, "calc.sql", "BEGIN\n\t:NEW.total := NVL(:OLD.total, 0);\nEND;")
	doc := writeTempFile(t, "maps.yaml", "functions:\n  NVL: IFNULL\n")

	stdout, _, err := runTranslate(t, nil, input, "--mappings", doc)
	require.NoError(t, err)
	assert.Contains(t, stdout, "NEW.total := IFNULL(OLD.total, 0);")
}

func TestTranslateCommandNoBuiltin(t *testing.T) {
	input := writeTempFile(t, "calc.sql", "BEGIN\n\t:NEW.total := NVL(:OLD.total, 0);\nEND;")

	stdout, stderr, err := runTranslate(t, nil, input, "--no-builtin")
	require.NoError(t, err)

	assert.Contains(t, stdout, "NVL(OLD.total, 0)")
	assert.Contains(t, stderr, "no function mappings are loaded")
}

func TestTranslateCommandWarningsOnStderr(t *testing.T) {
	input := writeTempFile(t, "audit.sql", "BEGIN\n\tIF UPDATING('status') THEN\n\t\tNULL;\n\tEND IF;\nEND;")

	stdout, stderr, err := runTranslate(t, nil, input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "TG_OP = 'UPDATE'")
	assert.Contains(t, stderr, "warning: "+input)
	assert.Contains(t, stderr, "column")
}

func TestTranslateCommandShowDiff(t *testing.T) {
	input := writeTempFile(t, "audit.sql", auditBody)

	_, stderr, err := runTranslate(t, nil, input, "--show-diff")
	require.NoError(t, err)
	assert.Contains(t, stderr, "--- review diff ---")
}

func TestTranslateCommandParseErrorNamesTheFile(t *testing.T) {
	input := writeTempFile(t, "broken.sql", "BEGIN\n\tEND IF;\nEND;")

	_, _, err := runTranslate(t, nil, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.sql")
}
