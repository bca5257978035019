// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pyproject

import (
	"errors"
	"fmt"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

// ErrInvalidReference is returned in strict mode when the document declares
// a source twice or a package names an index that no source declares.
var ErrInvalidReference = errors.New("invalid index reference")

// Validate reports duplicate source names and packages whose index names no
// declared source. Neither problem stops rendering: the output then holds
// duplicate [[tool.uv.index]] tables or a dangling {index=...} entry.
func Validate(doc types.Document) []Warning {
	var ws []Warning

	seen := make(map[string]bool, len(doc.Sources))
	for _, s := range doc.Sources {
		if seen[s.Name] {
			ws = append(ws, Warning{
				Kind:    WarnDuplicateSource,
				Subject: s.Name,
				Message: fmt.Sprintf("source %q is declared more than once", s.Name),
			})
			continue
		}
		seen[s.Name] = true
	}

	for _, p := range doc.Packages {
		if p.Index == "" || seen[p.Index] {
			continue
		}
		ws = append(ws, Warning{
			Kind:    WarnDanglingIndex,
			Subject: p.Name,
			Message: fmt.Sprintf("package %q references undeclared index %q", p.Name, p.Index),
		})
	}
	return ws
}

// ReferenceError folds Validate's warnings into one error wrapping
// ErrInvalidReference, or returns nil when there are none.
func ReferenceError(ws []Warning) error {
	if len(ws) == 0 {
		return nil
	}
	errs := make([]error, len(ws))
	for i, w := range ws {
		errs[i] = fmt.Errorf("%w: %s", ErrInvalidReference, w.Message)
	}
	return errors.Join(errs...)
}
