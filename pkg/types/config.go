// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProjectMeta holds the fixed [project] preamble values written at the top of
// every generated pyproject.toml. Pipfiles carry none of these, so the
// defaults are placeholders the user is expected to edit.
type ProjectMeta struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Version     string `json:"version" yaml:"version" mapstructure:"version"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	Readme      string `json:"readme" yaml:"readme" mapstructure:"readme"`
}

// DefaultProjectMeta returns the placeholder preamble.
func DefaultProjectMeta() ProjectMeta {
	return ProjectMeta{
		Name:        "type-your-project-name-here",
		Version:     "0.1.0",
		Description: "Add your description here",
		Readme:      "README.md",
	}
}

// WithDefaults fills empty fields from DefaultProjectMeta.
func (m ProjectMeta) WithDefaults() ProjectMeta {
	d := DefaultProjectMeta()
	if m.Name == "" {
		m.Name = d.Name
	}
	if m.Version == "" {
		m.Version = d.Version
	}
	if m.Description == "" {
		m.Description = d.Description
	}
	if m.Readme == "" {
		m.Readme = d.Readme
	}
	return m
}

// OutputConfig controls where converted files are written.
type OutputConfig struct {
	// Path is an explicit output file. When set, naming and collision
	// avoidance are skipped and the file is overwritten.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	// Dir is the directory for generated files in local mode (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Docker selects the container layout: files go to output/ under Dir.
	Docker bool `json:"docker" yaml:"docker" mapstructure:"docker"`
}

// HistoryConfig holds settings for the conversion history database.
type HistoryConfig struct {
	// Enabled turns recording of successful conversions on or off.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file (default ~/.config/pipenv2uv/history.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default number of rows listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups all settings for a conversion run.
type Config struct {
	Project ProjectMeta   `json:"project" yaml:"project" mapstructure:"project"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`

	// Strict turns reference problems (dangling index, duplicate source) and
	// malformed TOML output into fatal errors.
	Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}
