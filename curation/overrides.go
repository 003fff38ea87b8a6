// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package curation

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/FIRSTMap/scraper/spatial"
)

// Override is one curated entry of the override file: the composite
// place string a resolver run reported, pinned to coordinates.
type Override struct {
	Place string        `json:"place"`
	Point spatial.Point `json:"point"`
}

// OverrideFile reads and appends the pipe-separated override file the
// resolver loads its manual tier from. Appends never rewrite existing
// lines, so a bad entry can be corrected by hand without losing history.
type OverrideFile struct {
	path string
	mu   sync.Mutex
}

func NewOverrideFile(path string) *OverrideFile {
	return &OverrideFile{path: path}
}

// List returns the current entries. A missing file is an empty table.
func (f *OverrideFile) List() ([]Override, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(filepath.Clean(f.path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("opening %s: %w", f.path, err)
	}
	defer file.Close()

	var overrides []Override

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) < 3 {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			continue
		}

		overrides = append(overrides, Override{
			Place: fields[0],
			Point: spatial.Point{Lat: lat, Lng: lng},
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	return overrides, nil
}

// Contains reports whether place already has an override.
func (f *OverrideFile) Contains(place string) (bool, error) {
	overrides, err := f.List()
	if err != nil {
		return false, err
	}

	for _, o := range overrides {
		if o.Place == place {
			return true, nil
		}
	}

	return false, nil
}

// Append validates the entry and adds it at the end of the file,
// creating the file if needed.
func (f *OverrideFile) Append(o Override) error {
	if err := validateOverride(o); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(filepath.Clean(f.path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.path, err)
	}

	if _, err := fmt.Fprintf(file, "%s|%v|%v\n", o.Place, o.Point.Lat, o.Point.Lng); err != nil {
		file.Close()

		return fmt.Errorf("appending to %s: %w", f.path, err)
	}

	return file.Close()
}

func validateOverride(o Override) error {
	if strings.TrimSpace(o.Place) == "" {
		return fmt.Errorf("place must not be empty")
	}

	// the field separator and the line break cannot appear in a place
	if strings.ContainsAny(o.Place, "|\n") {
		return fmt.Errorf("place %q contains a reserved character", o.Place)
	}

	if !o.Point.Valid() {
		return fmt.Errorf("coordinates %v out of range", o.Point)
	}

	return nil
}
