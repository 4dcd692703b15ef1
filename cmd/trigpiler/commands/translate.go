package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/ha1tch/trigpiler/ir"
	"github.com/ha1tch/trigpiler/parser"
	"github.com/ha1tch/trigpiler/translate"
)

var (
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	okColor   = color.New(color.FgGreen)
)

// TranslateCommand holds configuration and flags for the translate command.
type TranslateCommand struct {
	configPath string
	stdin      bool
	inputDir   string
	output     string
	outDir     string
	force      bool
	full       bool
	mappings   string
	noBuiltin  bool
	showDiff   bool
	noColor    bool
	verbose    bool
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	tc := &TranslateCommand{}

	cmd := &cobra.Command{
		Use:   "translate [input.sql]",
		Short: "Translate PL/SQL trigger sources to PL/pgSQL",
		Long: `Translate Oracle PL/SQL trigger sources to PostgreSQL PL/pgSQL.

Input comes from a file argument, --stdin, or --dir (every .sql file in a
directory). In directory mode one failing trigger never stops the batch.
With --full each input must carry a CREATE TRIGGER wrapper and the output is
a complete function + trigger deployment pair.`,
		Args: cobra.MaximumNArgs(1),
		RunE: tc.run,
	}

	cmd.Flags().BoolVarP(&tc.stdin, "stdin", "s", false, "read from stdin")
	cmd.Flags().StringVarP(&tc.inputDir, "dir", "d", "", "read all .sql files from directory")
	cmd.Flags().StringVarP(&tc.output, "output", "o", "", "write to single output file")
	cmd.Flags().StringVarP(&tc.outDir, "outdir", "O", "", "write to output directory (creates if needed)")
	cmd.Flags().BoolVarP(&tc.force, "force", "f", false, "allow overwriting existing files")
	cmd.Flags().BoolVar(&tc.full, "full", false, "emit a complete CREATE FUNCTION + CREATE TRIGGER pair")
	cmd.Flags().StringVarP(&tc.mappings, "mappings", "m", "", "mapping document (YAML) overlaid on the builtin tables")
	cmd.Flags().BoolVar(&tc.noBuiltin, "no-builtin", false, "start from empty mapping tables instead of the builtin seed")
	cmd.Flags().BoolVar(&tc.showDiff, "show-diff", false, "print a source/output diff for review")
	cmd.Flags().StringVar(&tc.configPath, "config", "", "config file (default: .trigpiler.yaml in . or $HOME)")
	cmd.Flags().BoolVar(&tc.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&tc.verbose, "verbose", "v", false, "verbose diagnostics")

	return cmd
}

func (tc *TranslateCommand) run(cmd *cobra.Command, args []string) error {
	color.NoColor = color.NoColor || tc.noColor

	cfg, err := LoadConfig(tc.configPath)
	if err != nil {
		return err
	}
	if tc.mappings == "" {
		tc.mappings = cfg.Mappings
	}

	tables, err := loadTables(tc.mappings, cfg.Builtin && !tc.noBuiltin)
	if err != nil {
		return err
	}
	dialect, _ := translate.ByName(cfg.Dialect)

	inputFile := ""
	if len(args) == 1 {
		inputFile = args[0]
	}
	if err := validateModes(inputFile, tc.inputDir, tc.stdin, tc.output, tc.outDir); err != nil {
		return err
	}

	p := &pipeline{
		cfg:    cfg,
		tc:     tc,
		tr:     translate.New(tables, translate.WithDialect(dialect)),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		log:    newLogger(cmd.ErrOrStderr(), tc.verbose),
	}

	switch {
	case tc.inputDir != "":
		return p.runDirectory()
	case inputFile != "":
		return p.runFile(inputFile)
	case tc.stdin:
		return p.runStdin(cmd.InOrStdin())
	default:
		return cmd.Help()
	}
}

func validateModes(inputFile, inputDir string, readStdin bool, output, outDir string) error {
	inputModes := 0
	if inputFile != "" {
		inputModes++
	}
	if inputDir != "" {
		inputModes++
	}
	if readStdin {
		inputModes++
	}
	if inputModes > 1 {
		return fmt.Errorf("cannot combine multiple input modes (file, --dir, --stdin)")
	}
	if outDir != "" && inputDir == "" {
		return fmt.Errorf("--outdir requires --dir (directory-to-directory mode)")
	}
	if output != "" && outDir != "" {
		return fmt.Errorf("cannot specify both --output and --outdir")
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// pipeline carries one translate invocation's wiring.
type pipeline struct {
	cfg    *Config
	tc     *TranslateCommand
	tr     *translate.Translator
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

// translateOne runs the parse/translate pair for one source, combining parse
// and translation warnings.
func (p *pipeline) translateOne(source string) (string, []ir.Warning, error) {
	trig, parseWarnings, err := parser.ParseWithLimits(source, p.cfg.ParserLimits())
	if err != nil {
		return "", nil, err
	}

	if p.tc.full {
		dep, err := p.tr.Generate(trig)
		if err != nil {
			return "", nil, err
		}
		return dep.FunctionSQL + "\n" + dep.TriggerSQL, append(parseWarnings, dep.Warnings...), nil
	}

	res, err := p.tr.Translate(trig)
	if err != nil {
		return "", nil, err
	}
	return res.Body, append(parseWarnings, res.Warnings...), nil
}

func (p *pipeline) runStdin(stdin io.Reader) error {
	source, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	output, warnings, err := p.translateOne(string(source))
	if err != nil {
		return err
	}
	p.reportWarnings("stdin", warnings)
	if p.tc.showDiff {
		p.printDiff(string(source), output)
	}
	return p.writeOutput(output)
}

func (p *pipeline) runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	output, warnings, err := p.translateOne(string(source))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p.reportWarnings(path, warnings)
	if p.tc.showDiff {
		p.printDiff(string(source), output)
	}
	return p.writeOutput(output)
}

func (p *pipeline) runDirectory() error {
	entries, err := os.ReadDir(p.tc.inputDir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", p.tc.inputDir, err)
	}

	if p.tc.outDir != "" {
		if err := os.MkdirAll(p.tc.outDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(p.stderr)
	summary.SetStyle(table.StyleLight)
	summary.AppendHeader(table.Row{"FILE", "STATUS", "WARNINGS"})

	var total, failed, totalWarnings int
	var totalBytes uint64

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".sql") {
			continue
		}
		total++

		inputPath := filepath.Join(p.tc.inputDir, entry.Name())
		source, err := os.ReadFile(inputPath)
		if err != nil {
			failed++
			failColor.Fprintf(p.stderr, "error: %s: %v\n", inputPath, err)
			summary.AppendRow(table.Row{entry.Name(), "read error", 0})
			continue
		}

		// one bad trigger never stops the batch
		output, warnings, err := p.translateOne(string(source))
		if err != nil {
			failed++
			failColor.Fprintf(p.stderr, "error: %s: %v\n", inputPath, err)
			summary.AppendRow(table.Row{entry.Name(), "failed", 0})
			continue
		}

		p.reportWarnings(inputPath, warnings)
		if p.tc.showDiff {
			p.printDiff(string(source), output)
		}
		totalWarnings += len(warnings)
		totalBytes += uint64(len(output))

		if p.tc.outDir != "" {
			outPath := filepath.Join(p.tc.outDir, entry.Name())
			if err := p.writeFile(outPath, output); err != nil {
				return err
			}
			p.log.Debug("translated", "input", inputPath, "output", outPath)
		} else {
			fmt.Fprintln(p.stdout, output)
		}
		summary.AppendRow(table.Row{entry.Name(), "ok", len(warnings)})
	}

	summary.AppendFooter(table.Row{
		fmt.Sprintf("%s files", humanize.Comma(int64(total))),
		fmt.Sprintf("%d failed", failed),
		humanize.Comma(int64(totalWarnings)),
	})
	summary.Render()

	p.log.Info("batch complete",
		"files", total, "failed", failed, "output", humanize.Bytes(totalBytes))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, total)
	}
	return nil
}

func (p *pipeline) writeOutput(content string) error {
	if p.tc.output != "" {
		return p.writeFile(p.tc.output, content)
	}
	fmt.Fprint(p.stdout, content)
	return nil
}

func (p *pipeline) writeFile(path, content string) error {
	if !p.tc.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("output file %s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (p *pipeline) reportWarnings(name string, warnings []ir.Warning) {
	for _, w := range warnings {
		warnColor.Fprintf(p.stderr, "warning: %s: %s\n", name, w)
	}
}

func (p *pipeline) printDiff(source, output string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(source, output, false)
	okColor.Fprintln(p.stderr, "--- review diff ---")
	fmt.Fprintln(p.stderr, dmp.DiffPrettyText(diffs))
}
