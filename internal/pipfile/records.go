// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipfile

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

const (
	keyName             = "name"
	keyURL              = "url"
	keyVerifySSL        = "verify_ssl"
	keyPythonVersion    = "python_version"
	keyAllowPrereleases = "allow_prereleases"
)

// line is one raw input line with its 1-based position.
type line struct {
	n    int
	text string
}

func (l line) skippable() bool {
	t := strings.TrimSpace(l.text)
	return t == "" || strings.HasPrefix(t, "#")
}

// stripComment drops a trailing # comment. A '#' inside a quoted string,
// such as a URL fragment, is kept.
func stripComment(text string) string {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return text[:i]
		}
	}
	return text
}

// splitKeyValue drops any trailing comment, splits on the first '=' and trims
// whitespace, then double quotes, from both sides.
func splitKeyValue(text string) (key, value string, ok bool) {
	k, v, ok := strings.Cut(stripComment(text), "=")
	if !ok {
		return "", "", false
	}
	return unquote(k), unquote(v), true
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// keyValues turns a block's lines into a map. Blank and comment lines are
// skipped; any other line without '=' is malformed.
func keyValues(b block) (map[string]string, error) {
	m := make(map[string]string, len(b.lines))
	for _, l := range b.lines {
		if l.skippable() {
			continue
		}
		k, v, ok := splitKeyValue(l.text)
		if !ok {
			return nil, malformedLine(b, l)
		}
		m[k] = v
	}
	return m, nil
}

// parseSourceBlock reads one [[source]] block into a Source.
func parseSourceBlock(b block) (types.Source, error) {
	kv, err := keyValues(b)
	if err != nil {
		return types.Source{}, err
	}
	name, ok := kv[keyName]
	if !ok {
		return types.Source{}, missingField(b, keyName)
	}
	url, ok := kv[keyURL]
	if !ok {
		return types.Source{}, missingField(b, keyURL)
	}
	return types.Source{
		Name:      name,
		URL:       url,
		VerifySSL: kv[keyVerifySSL],
	}, nil
}

// parseSettingsBlock reads a [pipenv] block. The result replaces any
// settings parsed earlier.
func parseSettingsBlock(b block) (types.Settings, error) {
	kv, err := keyValues(b)
	if err != nil {
		return types.Settings{}, err
	}
	pv, ok := kv[keyPythonVersion]
	if !ok {
		return types.Settings{}, missingField(b, keyPythonVersion)
	}
	return types.Settings{
		PythonVersion:    pv,
		AllowPrereleases: kv[keyAllowPrereleases],
	}, nil
}

// SetPythonVersion parses a standalone `python_version = "3.11"` line into s.
func SetPythonVersion(s *types.Settings, text string) error {
	_, v, ok := splitKeyValue(text)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedLine, text)
	}
	s.PythonVersion = v
	return nil
}

// SetAllowPrereleases parses a standalone `allow_prereleases = true` line into s.
func SetAllowPrereleases(s *types.Settings, text string) error {
	_, v, ok := splitKeyValue(text)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedLine, text)
	}
	s.AllowPrereleases = v
	return nil
}

// parsePackagesBlock parses every package line of a [packages] or
// [dev-packages] block, tagging each with dev.
func parsePackagesBlock(b block, dev bool, logger *slog.Logger) ([]types.Package, error) {
	var pkgs []types.Package
	for _, l := range b.lines {
		if l.skippable() {
			continue
		}
		pkg, err := parsePackageLine(l.text, dev)
		if err != nil {
			var soft *inlineMapError
			if !errors.As(err, &soft) {
				return nil, malformedLine(b, l)
			}
			logger.Warn("inline attributes not understood, keeping them as version text",
				"block", b.name, "line", l.n, "package", pkg.Name, "error", soft.err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// inlineMapError marks a soft failure: the package is still usable.
type inlineMapError struct {
	err error
}

func (e *inlineMapError) Error() string {
	return e.err.Error()
}

// parsePackageLine turns one package line into a Package. Lines without '='
// are bare names. A trailing # comment is dropped first. A returned
// *inlineMapError comes with a usable Package.
func parsePackageLine(text string, dev bool) (types.Package, error) {
	text = stripComment(text)
	left, right, ok := strings.Cut(text, "=")
	if !ok {
		return types.Package{Name: strings.TrimSpace(text), Dev: dev}, nil
	}

	name := unquote(left)
	if name == "" {
		return types.Package{}, fmt.Errorf("%w: empty package name", ErrMalformedLine)
	}
	token := strings.TrimSpace(right)

	if !strings.HasPrefix(token, "{") {
		return types.Package{Name: name, Version: unquote(token), Dev: dev}, nil
	}

	attrs, err := extractPackageAttrs(token)
	pkg := types.Package{
		Name:    name,
		Version: attrs.version,
		Index:   attrs.index,
		Extras:  attrs.extras,
		Dev:     dev,
	}
	if err != nil {
		return pkg, &inlineMapError{err: err}
	}
	return pkg, nil
}
