// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pipenv2uv/internal/pipfile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [Pipfile]",
	Short: "Print the parsed Pipfile as YAML or JSON",
	Long: `Inspect parses a Pipfile (default ./Pipfile) and prints the document
model the converter works from: settings, sources and packages in file
order. --schema prints the JSON Schema of that model instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	if schema, _ := cmd.Flags().GetBool("schema"); schema {
		data, err := pipfile.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}

	input := defaultInput
	if len(args) == 1 {
		input = args[0]
	}
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input, err)
	}
	defer f.Close()

	doc, err := pipfile.Parse(f, logger)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", input, err)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		return pipfile.WriteYAML(os.Stdout, doc)
	case "json":
		return pipfile.WriteJSON(os.Stdout, doc)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	inspectCmd.Flags().String("format", "yaml", "output format: yaml or json")
	inspectCmd.Flags().Bool("schema", false, "print the JSON Schema of the document model")

	rootCmd.AddCommand(inspectCmd)
}
