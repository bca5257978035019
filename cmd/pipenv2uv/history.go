// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pipenv2uv/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions",
	Long: `History lists conversions recorded in the local SQLite database, newest
first. --json prints the records as JSON and --yaml as YAML.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return store.ExportJSON(ctx, os.Stdout, limit)
	}
	if yamlOutput, _ := cmd.Flags().GetBool("yaml"); yamlOutput {
		return store.ExportYAML(ctx, os.Stdout, limit)
	}

	records, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	return formatHistory(records)
}

func formatHistory(records []history.Record) error {
	if len(records) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-30s  %-6s  %-4s  %-4s  %s\n",
		"When", "Input", "Output", "Python", "Deps", "Dev", "Warnings")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-30s  %-6s  %-4d  %-4d  %d\n",
			r.ConvertedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.InputPath, 30), truncate(r.OutputPath, 30),
			r.PythonVersion, r.Packages, r.DevPackages, len(r.Warnings))
	}

	fmt.Fprintf(os.Stdout, "\n%d conversions\n", len(records))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-(n-3):]
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum records to list (0 = history.max_results)")
	historyCmd.Flags().Bool("json", false, "output records as JSON")
	historyCmd.Flags().Bool("yaml", false, "output records as YAML")

	rootCmd.AddCommand(historyCmd)
}
