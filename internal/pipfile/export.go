// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

// WriteYAML writes the parsed document as YAML.
func WriteYAML(w io.Writer, doc types.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes the parsed document as indented JSON.
func WriteJSON(w io.Writer, doc types.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// Schema returns the JSON Schema describing the document model, as emitted
// by WriteJSON.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&types.Document{})
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}
