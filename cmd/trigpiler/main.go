// Package main provides the entry point for the trigpiler CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/trigpiler/cmd/trigpiler/commands"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "trigpiler",
		Short: "Oracle PL/SQL to PostgreSQL PL/pgSQL trigger translator",
		Long: `trigpiler converts Oracle PL/SQL trigger bodies into PostgreSQL PL/pgSQL.

Commands:
  translate   Translate trigger sources (file, stdin or directory)
  inspect     Dump the parsed tree as JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewTranslateCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "trigpiler version %s\n", version)
		},
	}
}
