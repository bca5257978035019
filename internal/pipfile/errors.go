// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipfile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField reports a required key absent from a block
	// (a source without name or url, a [pipenv] block without python_version).
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedLine reports a non-blank, non-comment line that has no
	// key = value shape where one is required.
	ErrMalformedLine = errors.New("malformed line")
)

// ParseError locates a fatal parse failure. Err wraps ErrMissingField or
// ErrMalformedLine. Line is the 1-based input line; for missing fields it is
// the line of the block header (0 for the preamble).
type ParseError struct {
	Block string
	Line  int
	Err   error
}

func (e *ParseError) Error() string {
	block := e.Block
	if block == "" {
		block = "preamble"
	}
	if e.Line > 0 {
		return fmt.Sprintf("pipfile: [%s] line %d: %v", block, e.Line, e.Err)
	}
	return fmt.Sprintf("pipfile: [%s]: %v", block, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func missingField(b block, field string) error {
	return &ParseError{
		Block: b.name,
		Line:  b.header,
		Err:   fmt.Errorf("%w %q", ErrMissingField, field),
	}
}

func malformedLine(b block, l line) error {
	return &ParseError{
		Block: b.name,
		Line:  l.n,
		Err:   fmt.Errorf("%w: %q", ErrMalformedLine, l.text),
	}
}
