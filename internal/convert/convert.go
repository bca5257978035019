// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the Pipfile to pyproject.toml pipeline: read the
// input, parse it, check references, render, verify the TOML and write the
// result under a collision-free name.
//
// A fatal condition at any step means no output file is written.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pdiddy/pipenv2uv/internal/history"
	"github.com/pdiddy/pipenv2uv/internal/pipfile"
	"github.com/pdiddy/pipenv2uv/internal/pyproject"
	"github.com/pdiddy/pipenv2uv/internal/target"
	"github.com/pdiddy/pipenv2uv/pkg/types"
)

// Recorder stores completed conversions. *history.Store implements it.
type Recorder interface {
	Add(ctx context.Context, rec history.Record) (history.Record, error)
}

// Converter holds the settings shared by every conversion in a run.
type Converter struct {
	Config  types.Config
	Logger  *slog.Logger
	History Recorder
}

// New returns a Converter. logger and rec may be nil.
func New(cfg types.Config, logger *slog.Logger, rec Recorder) *Converter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{Config: cfg, Logger: logger, History: rec}
}

// Output is the result of converting one Pipfile in memory.
type Output struct {
	Document types.Document
	Text     string
	Warnings []pyproject.Warning
}

// WarningStrings renders the warnings for display and storage.
func (o Output) WarningStrings() []string {
	if len(o.Warnings) == 0 {
		return nil
	}
	out := make([]string, len(o.Warnings))
	for i, w := range o.Warnings {
		out[i] = w.String()
	}
	return out
}

// Convert parses r and renders the pyproject.toml text. It touches no files.
func (c *Converter) Convert(r io.Reader) (Output, error) {
	doc, err := pipfile.Parse(r, c.Logger)
	if err != nil {
		return Output{}, err
	}

	refs := pyproject.Validate(doc)
	if c.Config.Strict {
		if err := pyproject.ReferenceError(refs); err != nil {
			return Output{}, err
		}
	}
	for _, w := range refs {
		c.Logger.Warn(w.Message, "kind", string(w.Kind), "subject", w.Subject)
	}

	res := pyproject.NewEncoder(c.Config.Project, c.Logger).Encode(doc)
	warnings := append(refs, res.Warnings...)

	if _, err := pyproject.Check(res.Text); err != nil {
		if c.Config.Strict {
			return Output{}, err
		}
		c.Logger.Warn("generated file is not valid TOML", "error", err)
		warnings = append(warnings, pyproject.Warning{
			Kind:    pyproject.WarnInvalidOutput,
			Subject: "pyproject.toml",
			Message: err.Error(),
		})
	}

	return Output{Document: doc, Text: res.Text, Warnings: warnings}, nil
}

// ConvertFile converts inputPath and writes the result to the path chosen by
// the output configuration. It returns the written path.
func (c *Converter) ConvertFile(ctx context.Context, inputPath string, w io.Writer) (string, error) {
	out, err := c.convertInput(inputPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", inputPath, err)
		return "", err
	}

	outputPath, err := target.Resolve(c.Config.Output, w)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", inputPath, err)
		return "", err
	}
	if err := c.write(ctx, inputPath, outputPath, out, w); err != nil {
		if c.Config.Output.Path == "" {
			target.Release(outputPath)
		}
		return "", err
	}
	return outputPath, nil
}

// ConvertTo converts inputPath and writes the result to outputPath,
// replacing any existing file. Watch mode uses it to keep one output file.
func (c *Converter) ConvertTo(ctx context.Context, inputPath, outputPath string, w io.Writer) error {
	out, err := c.convertInput(inputPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", inputPath, err)
		return err
	}
	return c.write(ctx, inputPath, outputPath, out, w)
}

func (c *Converter) convertInput(inputPath string) (Output, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return Output{}, fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer f.Close()

	out, err := c.Convert(f)
	if err != nil {
		return Output{}, fmt.Errorf("converting %s: %w", inputPath, err)
	}
	return out, nil
}

func (c *Converter) write(ctx context.Context, inputPath, outputPath string, out Output, w io.Writer) error {
	if err := target.Write(outputPath, out.Text); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", inputPath, err)
		return err
	}
	fmt.Fprintf(w, "converted: %s -> %s\n", inputPath, outputPath)
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}

	if c.History != nil {
		rec := history.NewRecord(inputPath, outputPath, out.Document, out.WarningStrings())
		if _, err := c.History.Add(ctx, rec); err != nil {
			c.Logger.Warn("could not record conversion", "error", err)
		}
	}
	return nil
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int
	Outputs   []string
}

// Total returns the number of Pipfiles processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any Pipfile failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts each input in turn, printing per-file status to w
// and returning a summary. One failure does not stop the batch.
func (c *Converter) ConvertBatch(ctx context.Context, inputs []string, w io.Writer) BatchResult {
	var result BatchResult
	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		out, err := c.ConvertFile(ctx, in, w)
		if err != nil {
			result.Failed++
			continue
		}
		result.Converted++
		result.Outputs = append(result.Outputs, out)
	}
	if len(inputs) > 1 {
		fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
			result.Converted, result.Failed, result.Total())
	}
	return result
}
