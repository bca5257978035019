// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pyproject

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

func lines(ls ...string) string {
	return strings.Join(ls, "\n")
}

const preamble = `[project]
name = "type-your-project-name-here"
version = "0.1.0"
description = "Add your description here"
readme = "README.md"
`

func TestRequirement(t *testing.T) {
	tests := []struct {
		name string
		pkg  types.Package
		want string
	}{
		{name: "pinned", pkg: types.Package{Name: "requests", Version: "==2.25.1"}, want: "requests==2.25.1"},
		{name: "wildcard suppressed", pkg: types.Package{Name: "flask", Version: "*"}, want: "flask"},
		{name: "bare name", pkg: types.Package{Name: "django"}, want: "django"},
		{
			name: "extras keep order",
			pkg:  types.Package{Name: "requests", Version: ">=2.25.1", Extras: []string{"socks", "security"}},
			want: "requests[socks,security]>=2.25.1",
		},
		{
			name: "extras with wildcard",
			pkg:  types.Package{Name: "uvicorn", Version: "*", Extras: []string{"standard"}},
			want: "uvicorn[standard]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Requirement(tt.pkg))
		})
	}
}

func TestSourceEntry(t *testing.T) {
	p := types.Package{Name: "requests", Version: "2.25.1", Index: "pypi"}
	assert.Equal(t, `requests = {index="pypi"}`, SourceEntry(p))
}

func TestEncodeDependenciesAndDevGroup(t *testing.T) {
	doc := types.Document{
		Settings: types.Settings{PythonVersion: "3.11"},
		Packages: []types.Package{
			{Name: "requests", Version: ">=2.25.1", Extras: []string{"socks"}},
			{Name: "black", Version: "==24.0", Dev: true},
			{Name: "flask", Version: "*"},
		},
	}

	want := preamble + lines(
		`requires-python = "3.11"`,
		`dependencies = [`,
		"\t\"requests[socks]>=2.25.1\",",
		"\t\"flask\",",
		`]`,
		``,
		`[dependency-groups]`,
		`dev = [`,
		"\t\"black==24.0\",",
		`]`,
		``,
		``,
	)

	res := (&Encoder{}).Encode(doc)
	assert.Equal(t, want, res.Text)
	assert.Empty(t, res.Warnings)
}

func TestEncodeWithoutDevPackages(t *testing.T) {
	doc := types.Document{
		Settings: types.Settings{PythonVersion: "3.8"},
		Packages: []types.Package{{Name: "requests", Version: "==2.25.1"}},
	}
	out := Render(doc)
	assert.NotContains(t, out, "[dependency-groups]")
	assert.True(t, strings.HasSuffix(out, "\t\"requests==2.25.1\",\n]\n\n"))
}

func TestEncodeSources(t *testing.T) {
	doc := types.Document{
		Settings: types.Settings{PythonVersion: "3.11"},
		Sources: []types.Source{
			{Name: "pypi", URL: "https://pypi.org/simple", VerifySSL: "true"},
			{Name: "nexus", URL: "https://nexus.example.com/simple"},
		},
		Packages: []types.Package{
			{Name: "internal-lib", Version: "==1.4.0", Index: "nexus"},
			{Name: "pytest-internal", Version: "*", Index: "nexus", Dev: true},
		},
	}

	want := preamble + lines(
		`requires-python = "3.11"`,
		`dependencies = [`,
		"\t\"internal-lib==1.4.0\",",
		`]`,
		``,
		`[dependency-groups]`,
		`dev = [`,
		"\t\"pytest-internal\",",
		`]`,
		``,
		`[[tool.uv.index]]`,
		`name = "pypi"`,
		`url = "https://pypi.org/simple"`,
		`explicit = true`,
		``,
		`[[tool.uv.index]]`,
		`name = "nexus"`,
		`url = "https://nexus.example.com/simple"`,
		`explicit = true`,
		``,
		`[tool.uv.sources]`,
		`internal-lib = {index="nexus"}`,
		``,
		``,
	)

	res := (&Encoder{}).Encode(doc)
	assert.Equal(t, want, res.Text)

	kinds := warningKinds(res.Warnings)
	assert.Equal(t, []WarningKind{WarnVerifySSL, WarnDevIndex}, kinds)
}

func TestEncodeSourcesWithoutIndexedPackages(t *testing.T) {
	doc := types.Document{
		Sources: []types.Source{{Name: "pypi", URL: "https://pypi.org/simple"}},
	}
	out := Render(doc)
	assert.NotContains(t, out, "[tool.uv.sources]")
	assert.True(t, strings.HasSuffix(out, "explicit = true\n\n\n"))
}

func TestEncodeIndexedDevPackageNotMapped(t *testing.T) {
	doc := types.Document{
		Sources: []types.Source{{Name: "internal", URL: "https://example.com/simple"}},
		Packages: []types.Package{
			{Name: "lib", Version: "*", Index: "internal"},
			{Name: "devtool", Version: "*", Index: "internal", Dev: true},
		},
	}
	out := Render(doc)
	assert.Contains(t, out, `lib = {index="internal"}`)
	assert.NotContains(t, out, `devtool = {index=`)
}

func TestEncodeWarningsDoNotChangeOutput(t *testing.T) {
	base := types.Document{
		Settings: types.Settings{PythonVersion: "3.11"},
		Sources:  []types.Source{{Name: "corp", URL: "https://corp.example.com/simple"}},
	}
	flagged := base
	flagged.Settings.AllowPrereleases = "true"
	flagged.Sources = []types.Source{{Name: "corp", URL: "https://corp.example.com/simple", VerifySSL: "true"}}

	assert.Equal(t, Render(base), Render(flagged))
}

func TestEncodeCredentialURLWarning(t *testing.T) {
	var logs bytes.Buffer
	enc := NewEncoder(types.ProjectMeta{}, slog.New(slog.NewTextHandler(&logs, nil)))

	res := enc.Encode(types.Document{
		Settings: types.Settings{AllowPrereleases: "false"},
		Sources:  []types.Source{{Name: "private", URL: "${PRIVATE_INDEX_URL}", VerifySSL: "false"}},
	})

	assert.Equal(t, []WarningKind{WarnCredentialURL, WarnPrereleases}, warningKinds(res.Warnings))
	assert.Contains(t, res.Text, `url = "${PRIVATE_INDEX_URL}"`)
	assert.Contains(t, logs.String(), "kind=credential-url")
	assert.Contains(t, logs.String(), "subject=private")
}

func TestEncodeProjectMeta(t *testing.T) {
	enc := NewEncoder(types.ProjectMeta{Name: "billing-api", Description: "Billing service"}, nil)
	out := enc.Encode(types.Document{}).Text

	assert.True(t, strings.HasPrefix(out, lines(
		`[project]`,
		`name = "billing-api"`,
		`version = "0.1.0"`,
		`description = "Billing service"`,
		`readme = "README.md"`,
		`requires-python = ""`,
		`dependencies = [`,
		`]`,
	)))
}

func TestEncodePartitionCounts(t *testing.T) {
	doc := types.Document{}
	for i := 0; i < 7; i++ {
		doc.Packages = append(doc.Packages, types.Package{
			Name:    "pkg" + string(rune('a'+i)),
			Version: "*",
			Dev:     i%3 == 0,
		})
	}

	m, err := Check(Render(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"pkgb", "pkgc", "pkge", "pkgf"}, m.Project.Dependencies)
	assert.Equal(t, []string{"pkga", "pkgd", "pkgg"}, m.DependencyGroups["dev"])
}

func warningKinds(ws []Warning) []WarningKind {
	var kinds []WarningKind
	for _, w := range ws {
		kinds = append(kinds, w.Kind)
	}
	return kinds
}
