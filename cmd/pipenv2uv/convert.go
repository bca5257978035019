// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pipenv2uv/internal/convert"
	"github.com/pdiddy/pipenv2uv/internal/history"
	"github.com/pdiddy/pipenv2uv/internal/target"
	"github.com/pdiddy/pipenv2uv/internal/watch"
	"github.com/pdiddy/pipenv2uv/pkg/types"
)

const defaultInput = "Pipfile"

var convertCmd = &cobra.Command{
	Use:   "convert [Pipfile...]",
	Short: "Convert Pipfiles to uv pyproject.toml files",
	Long: `Convert reads each Pipfile (default ./Pipfile) and writes a pyproject.toml.
An existing pyproject.toml is never overwritten: the next free name
pyproject-new-1.toml, pyproject-new-2.toml, ... is used instead. With
--docker the files go to output/.

Any parse error aborts that file and no output is written for it. With
--strict, dangling index references, duplicate sources and output that is
not valid TOML are errors too.

--watch keeps running and rewrites the same output file every time the
Pipfile changes.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputs := args
	if len(inputs) == 0 {
		inputs = []string{defaultInput}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	watchMode, _ := cmd.Flags().GetBool("watch")
	if cfg.Output.Path != "" && len(inputs) > 1 {
		return fmt.Errorf("--output takes a single Pipfile, got %d", len(inputs))
	}
	if watchMode && len(inputs) != 1 {
		return fmt.Errorf("--watch takes a single Pipfile, got %d", len(inputs))
	}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	var rec convert.Recorder
	if cfg.History.Enabled && !noHistory {
		store, err := history.Open(cfg.History)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer store.Close()
			rec = store
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := convert.New(cfg, logger, rec)

	if watchMode {
		return watchConvert(ctx, c, cfg.Output, inputs[0])
	}

	result := c.ConvertBatch(ctx, inputs, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d Pipfile(s) failed conversion", result.Failed)
	}
	return nil
}

// watchConvert resolves the output name once so every rerun replaces the
// same file instead of creating pyproject-new-N.toml each time.
func watchConvert(ctx context.Context, c *convert.Converter, out types.OutputConfig, input string) error {
	outputPath := out.Path
	if outputPath == "" {
		p, err := target.Resolve(out, os.Stdout)
		if err != nil {
			return err
		}
		outputPath = p
		// Drops the claimed name if no conversion ever succeeded.
		defer target.Release(outputPath)
	}

	fmt.Fprintf(os.Stdout, "watching %s (Ctrl-C to stop)\n", input)
	w := &watch.Watcher{Path: input, Logger: logger}
	return w.Run(ctx, func(ctx context.Context) error {
		return c.ConvertTo(ctx, input, outputPath, os.Stdout)
	})
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "write to this file, replacing it if it exists")
	convertCmd.Flags().String("output-dir", ".", "directory for generated files")
	convertCmd.Flags().Bool("docker", false, "write generated files under output/")
	convertCmd.Flags().Bool("strict", false, "treat reference problems and invalid output as errors")
	convertCmd.Flags().Bool("watch", false, "reconvert whenever the Pipfile changes")
	convertCmd.Flags().Bool("no-history", false, "do not record this run in the history database")

	_ = viper.BindPFlag("output.path", convertCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.dir", convertCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("output.docker", convertCmd.Flags().Lookup("docker"))
	_ = viper.BindPFlag("strict", convertCmd.Flags().Lookup("strict"))

	rootCmd.AddCommand(convertCmd)
}
