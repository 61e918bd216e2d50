package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/codebook/internal/ir"
)

// marshalSpec converts an element spec to canonical JSON TEXT for storage.
func marshalSpec(s ir.ElementSpec) (string, error) {
	data, err := ir.MarshalElement(s)
	if err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	return string(data), nil
}

// unmarshalSpec parses a stored payload. Unknown fields are an error so a
// journal written by a newer tool is not silently misread.
func unmarshalSpec(data string) (ir.ElementSpec, error) {
	if _, err := ir.UnmarshalIRValue([]byte(data)); err != nil {
		return ir.ElementSpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	var s ir.ElementSpec
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return ir.ElementSpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	return s, nil
}
