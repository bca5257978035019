// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AnyVersion is the Pipfile version token meaning "no constraint".
// It is suppressed when a package is written to pyproject.toml.
const AnyVersion = "*"

// Package is one dependency entry from a [packages] or [dev-packages] block.
type Package struct {
	// Name is the distribution name as written in the Pipfile (e.g. "requests").
	Name string `json:"name" yaml:"name"`

	// Version is the constraint text (e.g. ">=2.25.1", "==24.0"). AnyVersion
	// means unconstrained; empty means the line carried a bare name.
	Version string `json:"version" yaml:"version"`

	// Index names the Source this package must be installed from. Empty when
	// the package uses the default index.
	Index string `json:"index,omitempty" yaml:"index,omitempty"`

	// Extras lists the requested optional features in first-seen order
	// without duplicates (e.g. ["socks"]).
	Extras []string `json:"extras,omitempty" yaml:"extras,omitempty"`

	// Dev marks packages declared under [dev-packages].
	Dev bool `json:"dev" yaml:"dev"`
}

// HasExtras reports whether the package requests any optional features.
func (p Package) HasExtras() bool {
	return len(p.Extras) > 0
}

// Source is a package index declared in a [[source]] block.
type Source struct {
	// Name identifies the index; packages reference it through Package.Index.
	Name string `json:"name" yaml:"name"`

	// URL is the index URL, possibly containing ${VAR} placeholders.
	URL string `json:"url" yaml:"url"`

	// VerifySSL is the raw verify_ssl token ("true" or "false"), empty when
	// the block does not set it. It is recorded but not translated.
	VerifySSL string `json:"verify_ssl,omitempty" yaml:"verify_ssl,omitempty"`
}

// Settings holds interpreter metadata from the [pipenv] block or from
// standalone python_version / allow_prereleases lines.
type Settings struct {
	PythonVersion    string `json:"python_version" yaml:"python_version"`
	AllowPrereleases string `json:"allow_prereleases,omitempty" yaml:"allow_prereleases,omitempty"`
}

// Document is everything parsed from one Pipfile. Sources and Packages keep
// first-seen input order; dev and non-dev packages stay interleaved.
type Document struct {
	Settings Settings  `json:"settings" yaml:"settings"`
	Sources  []Source  `json:"sources" yaml:"sources"`
	Packages []Package `json:"packages" yaml:"packages"`
}

// Dependencies returns the non-dev packages in document order.
func (d Document) Dependencies() []Package {
	return d.filter(false)
}

// DevDependencies returns the dev packages in document order.
func (d Document) DevDependencies() []Package {
	return d.filter(true)
}

func (d Document) filter(dev bool) []Package {
	var out []Package
	for _, p := range d.Packages {
		if p.Dev == dev {
			out = append(out, p)
		}
	}
	return out
}

// Source returns the source with the given name and whether it exists.
// With duplicate names the first declaration wins.
func (d Document) Source(name string) (Source, bool) {
	for _, s := range d.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}
