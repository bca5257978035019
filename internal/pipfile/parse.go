// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipfile parses Pipfiles into the types.Document model.
//
// Input is split into blocks at header lines (`[name]`). Each block is parsed
// by the record parser for its kind and the result is folded into the
// document. A missing required field or a malformed line aborts the parse;
// unknown blocks are logged and skipped.
package pipfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

// BlockKind is the closed set of block types the parser dispatches on.
type BlockKind int

const (
	// BlockPreamble holds lines before the first header.
	BlockPreamble BlockKind = iota
	BlockSource
	BlockPipenv
	BlockRequires
	BlockPackages
	BlockDevPackages
	BlockUnknown
)

var blockNames = map[string]BlockKind{
	"source":       BlockSource,
	"pipenv":       BlockPipenv,
	"requires":     BlockRequires,
	"packages":     BlockPackages,
	"dev-packages": BlockDevPackages,
}

// KindOf maps a header name (brackets stripped) to its BlockKind.
func KindOf(name string) BlockKind {
	if k, ok := blockNames[name]; ok {
		return k
	}
	return BlockUnknown
}

func (k BlockKind) String() string {
	switch k {
	case BlockPreamble:
		return "preamble"
	case BlockSource:
		return "source"
	case BlockPipenv:
		return "pipenv"
	case BlockRequires:
		return "requires"
	case BlockPackages:
		return "packages"
	case BlockDevPackages:
		return "dev-packages"
	}
	return "unknown"
}

// block is the buffered body of one header.
type block struct {
	name   string
	kind   BlockKind
	header int
	lines  []line
}

// fragment is what one block contributes to the document.
type fragment struct {
	sources  []types.Source
	packages []types.Package

	// settings replaces the document settings wholesale ([pipenv]).
	settings *types.Settings

	// pythonVersion and allowPrereleases update single fields (standalone
	// setters in the preamble or [requires]).
	pythonVersion    *string
	allowPrereleases *string
}

func (f fragment) foldInto(doc types.Document) types.Document {
	doc.Sources = append(doc.Sources, f.sources...)
	doc.Packages = append(doc.Packages, f.packages...)
	if f.settings != nil {
		doc.Settings = *f.settings
	}
	if f.pythonVersion != nil {
		doc.Settings.PythonVersion = *f.pythonVersion
	}
	if f.allowPrereleases != nil {
		doc.Settings.AllowPrereleases = *f.allowPrereleases
	}
	return doc
}

// Parser turns Pipfile lines into a Document. A Parser holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a Parser that reports skipped content to logger.
// A nil logger discards messages.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{logger: logger}
}

// Parse reads r to completion and parses its lines.
func Parse(r io.Reader, logger *slog.Logger) (types.Document, error) {
	return NewParser(logger).Parse(r)
}

// Parse reads r to completion and parses its lines.
func (p *Parser) Parse(r io.Reader) (types.Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return types.Document{}, fmt.Errorf("reading pipfile: %w", err)
	}
	return p.ParseLines(lines)
}

// ParseLines parses an ordered sequence of lines (without line terminators).
func (p *Parser) ParseLines(lines []string) (types.Document, error) {
	var doc types.Document
	cur := block{kind: BlockPreamble}

	flush := func() error {
		if len(cur.lines) == 0 {
			return nil
		}
		frag, err := p.dispatch(cur)
		if err != nil {
			return err
		}
		doc = frag.foldInto(doc)
		return nil
	}

	for i, text := range lines {
		if isHeader(text) {
			if err := flush(); err != nil {
				return types.Document{}, err
			}
			name := headerName(text)
			cur = block{name: name, kind: KindOf(name), header: i + 1}
			continue
		}
		cur.lines = append(cur.lines, line{n: i + 1, text: text})
	}
	if err := flush(); err != nil {
		return types.Document{}, err
	}

	p.logger.Debug("parsed pipfile",
		"sources", len(doc.Sources), "packages", len(doc.Packages),
		"python_version", doc.Settings.PythonVersion)
	return doc, nil
}

// isHeader reports whether text is a block header. The first and last bytes
// are checked as-is; surrounding whitespace makes the line a body line.
func isHeader(text string) bool {
	return len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']'
}

// headerName strips all leading '[' and trailing ']', so "[[source]]"
// names the same block as "[source]".
func headerName(text string) string {
	return strings.TrimRight(strings.TrimLeft(text, "["), "]")
}

func (p *Parser) dispatch(b block) (fragment, error) {
	switch b.kind {
	case BlockPreamble, BlockRequires:
		return p.settingsLines(b)

	case BlockSource:
		src, err := parseSourceBlock(b)
		if err != nil {
			return fragment{}, err
		}
		return fragment{sources: []types.Source{src}}, nil

	case BlockPipenv:
		s, err := parseSettingsBlock(b)
		if err != nil {
			return fragment{}, err
		}
		return fragment{settings: &s}, nil

	case BlockPackages, BlockDevPackages:
		pkgs, err := parsePackagesBlock(b, b.kind == BlockDevPackages, p.logger)
		if err != nil {
			return fragment{}, err
		}
		return fragment{packages: pkgs}, nil

	case BlockUnknown:
		p.logger.Warn("skipping unknown block", "block", b.name, "line", b.header, "lines", len(b.lines))
		return fragment{}, nil
	}
	return fragment{}, fmt.Errorf("pipfile: unhandled block kind %d", int(b.kind))
}

// settingsLines applies the standalone setters to lines outside a [pipenv]
// block. Lines that are not settings are ignored.
func (p *Parser) settingsLines(b block) (fragment, error) {
	var (
		frag fragment
		s    types.Settings
	)
	for _, l := range b.lines {
		if l.skippable() {
			continue
		}
		trimmed := strings.TrimSpace(l.text)
		switch {
		case strings.HasPrefix(trimmed, keyPythonVersion):
			if err := SetPythonVersion(&s, l.text); err != nil {
				return fragment{}, malformedLine(b, l)
			}
			v := s.PythonVersion
			frag.pythonVersion = &v
		case strings.HasPrefix(trimmed, keyAllowPrereleases):
			if err := SetAllowPrereleases(&s, l.text); err != nil {
				return fragment{}, malformedLine(b, l)
			}
			v := s.AllowPrereleases
			frag.allowPrereleases = &v
		default:
			p.logger.Debug("ignoring line", "block", b.kind.String(), "line", l.n, "text", trimmed)
		}
	}
	return frag, nil
}
