// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pyproject

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// ErrInvalidOutput is returned by Check when rendered text is not valid TOML,
// for example when an inline attribute map fell back to raw version text
// containing quotes.
var ErrInvalidOutput = errors.New("rendered pyproject.toml is not valid TOML")

// Manifest is the subset of pyproject.toml this tool writes, as read back by
// a TOML decoder.
type Manifest struct {
	Project          ProjectTable        `toml:"project"`
	DependencyGroups map[string][]string `toml:"dependency-groups"`
	Tool             ToolTable           `toml:"tool"`
}

// ProjectTable is the [project] table.
type ProjectTable struct {
	Name           string   `toml:"name"`
	Version        string   `toml:"version"`
	Description    string   `toml:"description"`
	Readme         string   `toml:"readme"`
	RequiresPython string   `toml:"requires-python"`
	Dependencies   []string `toml:"dependencies"`
}

// ToolTable is the [tool] table; only uv is read.
type ToolTable struct {
	UV UVTable `toml:"uv"`
}

// UVTable holds [[tool.uv.index]] and [tool.uv.sources].
type UVTable struct {
	Index   []IndexTable         `toml:"index"`
	Sources map[string]SourceRef `toml:"sources"`
}

// IndexTable is one [[tool.uv.index]] entry.
type IndexTable struct {
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	Explicit bool   `toml:"explicit"`
}

// SourceRef pins a package to an index in [tool.uv.sources].
type SourceRef struct {
	Index string `toml:"index"`
}

// Check decodes rendered text. A decode failure wraps ErrInvalidOutput.
func Check(text string) (Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(text, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return m, nil
}
