// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pyproject renders a parsed Pipfile document as a uv pyproject.toml.
//
// The output layout is fixed: a [project] table with the dependencies array,
// an optional [dependency-groups] table for dev packages, then one
// [[tool.uv.index]] table per source and a [tool.uv.sources] table mapping
// indexed packages to their index. Settings uv cannot express (SSL
// verification, pre-releases, credentials in URLs) are reported as warnings
// and never change the output.
package pyproject

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

// WarningKind classifies a Warning.
type WarningKind string

const (
	// WarnCredentialURL marks a source URL that starts with a ${VAR} placeholder.
	WarnCredentialURL WarningKind = "credential-url"
	// WarnVerifySSL marks a source with verify_ssl = true, which is not translated.
	WarnVerifySSL WarningKind = "verify-ssl"
	// WarnPrereleases marks an allow_prereleases setting, which is not translated.
	WarnPrereleases WarningKind = "allow-prereleases"
	// WarnDevIndex marks a dev package whose index is left out of [tool.uv.sources].
	WarnDevIndex WarningKind = "dev-index"
	// WarnDanglingIndex marks a package naming an index no source declares.
	WarnDanglingIndex WarningKind = "dangling-index"
	// WarnDuplicateSource marks a source name declared more than once.
	WarnDuplicateSource WarningKind = "duplicate-source"
	// WarnInvalidOutput marks rendered text that does not decode as TOML.
	WarnInvalidOutput WarningKind = "invalid-output"
)

// Warning is a human-readable note about something that was not translated.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Subject string      `json:"subject" yaml:"subject"`
	Message string      `json:"message" yaml:"message"`
}

// String renders the warning as "subject: message".
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Subject, w.Message)
}

// Result is the rendered file plus the warnings raised while rendering.
type Result struct {
	Text     string
	Warnings []Warning
}

// Encoder renders Documents. The zero value uses the placeholder project
// preamble and discards log output.
type Encoder struct {
	Project types.ProjectMeta
	Logger  *slog.Logger
}

// NewEncoder returns an Encoder writing the given preamble and logging
// warnings to logger.
func NewEncoder(project types.ProjectMeta, logger *slog.Logger) *Encoder {
	return &Encoder{Project: project, Logger: logger}
}

// Render encodes doc with the placeholder preamble and no logging.
func Render(doc types.Document) string {
	return (&Encoder{}).Encode(doc).Text
}

// Encode renders doc. It reads doc only and is deterministic.
func (e *Encoder) Encode(doc types.Document) Result {
	var (
		b        strings.Builder
		warnings []Warning
	)

	project, dev, indexed := e.projectPart(doc)
	b.WriteString(project)
	b.WriteByte('\n')

	if len(dev) > 0 {
		b.WriteString(devDependencies(dev))
		b.WriteByte('\n')
	}

	if len(doc.Sources) > 0 {
		b.WriteString(sources(doc.Sources, indexed))
		b.WriteByte('\n')
	}

	for _, s := range doc.Sources {
		warnings = append(warnings, sourceWarnings(s)...)
	}
	for _, p := range dev {
		if p.Index != "" {
			warnings = append(warnings, Warning{
				Kind:    WarnDevIndex,
				Subject: p.Name,
				Message: fmt.Sprintf("dev package index %q is not mapped in [tool.uv.sources]", p.Index),
			})
		}
	}
	if ap := doc.Settings.AllowPrereleases; ap != "" {
		warnings = append(warnings, Warning{
			Kind:    WarnPrereleases,
			Subject: "allow_prereleases",
			Message: fmt.Sprintf("pre-release handling is not implemented yet (current: %s)", ap),
		})
	}

	e.log(warnings)
	return Result{Text: b.String(), Warnings: warnings}
}

func (e *Encoder) log(warnings []Warning) {
	if e.Logger == nil {
		return
	}
	for _, w := range warnings {
		e.Logger.Warn(w.Message, "kind", string(w.Kind), "subject", w.Subject)
	}
}

// projectPart writes the [project] table and splits out the dev packages and
// the non-dev packages that carry an index.
func (e *Encoder) projectPart(doc types.Document) (string, []types.Package, []types.Package) {
	meta := e.Project.WithDefaults()

	var b strings.Builder
	b.WriteString("[project]\n")
	fmt.Fprintf(&b, "name = \"%s\"\n", meta.Name)
	fmt.Fprintf(&b, "version = \"%s\"\n", meta.Version)
	fmt.Fprintf(&b, "description = \"%s\"\n", meta.Description)
	fmt.Fprintf(&b, "readme = \"%s\"\n", meta.Readme)
	fmt.Fprintf(&b, "requires-python = \"%s\"\n", doc.Settings.PythonVersion)

	var dev, indexed []types.Package

	b.WriteString("dependencies = [\n")
	for _, p := range doc.Packages {
		if p.Dev {
			dev = append(dev, p)
			continue
		}
		writeEntry(&b, p)
		if p.Index != "" {
			indexed = append(indexed, p)
		}
	}
	b.WriteString("]\n")

	return b.String(), dev, indexed
}

func devDependencies(dev []types.Package) string {
	var b strings.Builder
	b.WriteString("[dependency-groups]\n")
	b.WriteString("dev = [\n")
	for _, p := range dev {
		writeEntry(&b, p)
	}
	b.WriteString("]\n")
	return b.String()
}

func sources(srcs []types.Source, indexed []types.Package) string {
	var b strings.Builder
	for _, s := range srcs {
		b.WriteString("[[tool.uv.index]]\n")
		fmt.Fprintf(&b, "name = \"%s\"\n", s.Name)
		fmt.Fprintf(&b, "url = \"%s\"\n", s.URL)
		b.WriteString("explicit = true\n\n")
	}

	if len(indexed) > 0 {
		b.WriteString("[tool.uv.sources]\n")
		for _, p := range indexed {
			b.WriteString(SourceEntry(p))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeEntry(b *strings.Builder, p types.Package) {
	b.WriteString("\t\"")
	b.WriteString(Requirement(p))
	b.WriteString("\",\n")
}

// Requirement formats p as a PEP 508 style requirement: the name, extras in
// brackets when present, then the version unless it is the wildcard.
func Requirement(p types.Package) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.HasExtras() {
		b.WriteByte('[')
		b.WriteString(strings.Join(p.Extras, ","))
		b.WriteByte(']')
	}
	if p.Version != types.AnyVersion {
		b.WriteString(p.Version)
	}
	return b.String()
}

// SourceEntry formats the [tool.uv.sources] line pinning p to its index.
func SourceEntry(p types.Package) string {
	return fmt.Sprintf("%s = {index=\"%s\"}", p.Name, p.Index)
}

func sourceWarnings(s types.Source) []Warning {
	var ws []Warning
	if strings.HasPrefix(s.URL, "${") {
		ws = append(ws, Warning{
			Kind:    WarnCredentialURL,
			Subject: s.Name,
			Message: "uv does not read .env values in pyproject.toml; use a URL without credentials " +
				"and supply login and password through UV_INDEX_* environment variables",
		})
	}
	if s.VerifySSL == "true" {
		ws = append(ws, Warning{
			Kind:    WarnVerifySSL,
			Subject: s.Name,
			Message: "SSL verification is not implemented yet",
		})
	}
	return ws
}
