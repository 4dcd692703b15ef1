package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ha1tch/trigpiler/parser"
)

// InspectCommand holds configuration and flags for the inspect command.
type InspectCommand struct {
	configPath string
	stdin      bool
	compact    bool
	noColor    bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	ic := &InspectCommand{}

	cmd := &cobra.Command{
		Use:   "inspect [input.sql]",
		Short: "Parse a trigger and dump its tree as JSON",
		Long: `Parse one trigger source and print the tree in the stable JSON
document shape, for downstream diffing and reporting tools. Warnings go to
stderr; the JSON document goes to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: ic.run,
	}

	cmd.Flags().BoolVarP(&ic.stdin, "stdin", "s", false, "read from stdin")
	cmd.Flags().BoolVar(&ic.compact, "compact", false, "single-line JSON output")
	cmd.Flags().StringVar(&ic.configPath, "config", "", "config file (default: .trigpiler.yaml in . or $HOME)")
	cmd.Flags().BoolVar(&ic.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (ic *InspectCommand) run(cmd *cobra.Command, args []string) error {
	color.NoColor = color.NoColor || ic.noColor

	cfg, err := LoadConfig(ic.configPath)
	if err != nil {
		return err
	}

	var source []byte
	name := "stdin"
	switch {
	case len(args) == 1 && ic.stdin:
		return fmt.Errorf("cannot combine a file argument with --stdin")
	case len(args) == 1:
		name = args[0]
		source, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
	case ic.stdin:
		source, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	default:
		return cmd.Help()
	}

	trig, warnings, err := parser.ParseWithLimits(string(source), cfg.ParserLimits())
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, w := range warnings {
		warnColor.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", name, w)
	}

	var doc []byte
	if ic.compact {
		doc, err = json.Marshal(trig)
	} else {
		doc, err = json.MarshalIndent(trig, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding tree: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(doc))
	return nil
}
