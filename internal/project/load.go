package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a project JSON document. Unknown fields are rejected so typos
// in hand-edited files surface early.
func Decode(r io.Reader) (*Project, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var p Project
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// Load reads a project document from disk.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
