package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Dependency is one entry of a dependencies object.
type Dependency struct {
	Name  string
	Range string
}

// Dependencies keeps the entries of a package.json dependencies object in
// document order.
type Dependencies []Dependency

func (d *Dependencies) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dependencies: expected object, got %v", tok)
	}

	var out Dependencies
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("dependencies: unexpected key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("dependencies: %s: %w", name, err)
		}
		var rng string
		if err := json.Unmarshal(value, &rng); err != nil {
			// Non-string ranges show up in hand-written manifests.
			rng = strings.TrimSpace(string(value))
			if rng == "null" {
				rng = ""
			}
		}
		out = append(out, Dependency{Name: name, Range: rng})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}
