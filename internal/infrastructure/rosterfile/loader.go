// Package rosterfile reads a registrar roster from a YAML document.
//
// A roster file looks like:
//
//	lecturers:
//	  - id: L1
//	    name: Dr. Sato
//	    email: sato@uni.edu
//	    department: Computer Science
//	courses:
//	  - code: CS101
//	    title: Intro to Programming
//	    credit_hours: 4
//	    lecturer: L1
//	students:
//	  - id: S1
//	    name: Aigerim
//	    email: aigerim@uni.edu
//	    courses: [CS101]
//	    grades: {CS101: A}
//	    attendance:
//	      CS101: [true, true, false]
package rosterfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
)

// Loader implements university.RosterSource for a file on disk.
type Loader struct {
	path string
}

var _ university.RosterSource = (*Loader)(nil)

// NewLoader creates a loader for path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Name implements university.RosterSource.
func (l *Loader) Name() string { return "file:" + l.path }

// Load implements university.RosterSource.
func (l *Loader) Load(ctx context.Context) (*university.RosterData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRosterUnavailable, err)
	}

	data, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return data, nil
}

// Parse decodes one roster document. Unknown keys are rejected.
func Parse(r io.Reader) (*university.RosterData, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc rosterDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &university.RosterData{}, nil
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrRosterMalformed, err)
	}

	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRosterMalformed, err)
	}
	return doc.toRoster(), nil
}
