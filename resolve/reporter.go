// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Reporter receives the places the resolver could not resolve. Reports
// may arrive from concurrent workers; implementations serialize them.
type Reporter interface {
	Report(key, place string)
}

// Entry is one unresolved location: the team key and the composite place
// string an operator needs in order to curate an override for it.
type Entry struct {
	Key   string
	Place string
}

// FileReporter persists unresolved locations to a tab-separated file,
// one entry per line. The file reflects only the current run: opening it
// discards the previous run's report.
type FileReporter struct {
	mu sync.Mutex
	f  *os.File
	n  int
}

// NewFileReporter creates (or truncates) the report file at path.
func NewFileReporter(path string) (*FileReporter, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("creating report file: %w", err)
	}

	return &FileReporter{f: f}, nil
}

// Report appends one unresolved location and logs it so the operator
// sees the gap without opening the report file.
func (r *FileReporter) Report(key, place string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Printf("Did not find team %s @ place %s", key, place)

	if _, err := fmt.Fprintf(r.f, "%s\t%s\n", key, place); err != nil {
		log.Printf("Writing report entry for %s: %v", key, err)
	}

	r.n++
}

// Count returns the number of entries reported so far.
func (r *FileReporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.n
}

// Close flushes and closes the report file.
func (r *FileReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.f.Close(); err != nil {
		return fmt.Errorf("closing report file: %w", err)
	}

	return nil
}

// MemoryReporter collects entries in memory. Used by tests and dry runs,
// where nothing should be persisted.
type MemoryReporter struct {
	mu      sync.Mutex
	entries []Entry
}

// Report records one unresolved location.
func (r *MemoryReporter) Report(key, place string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Key: key, Place: place})
}

// Entries returns a copy of everything reported so far.
func (r *MemoryReporter) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)

	return out
}

// ReadReport parses a report file written by FileReporter.
func ReadReport(path string) ([]Entry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading report file: %w", err)
	}

	var entries []Entry

	var malformed []error

	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}

		key, place, ok := strings.Cut(line, "\t")
		if !ok {
			malformed = append(malformed, fmt.Errorf("malformed report line %q", line))

			continue
		}

		entries = append(entries, Entry{Key: key, Place: place})
	}

	return entries, errors.Join(malformed...)
}
