// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package geonames

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// eachRow reads the flat-table format GeoNames distributes: one record per
// line, columns separated by sep. Blank lines and comment lines (leading
// '#') are skipped. The callback receives the raw columns of each row.
func eachRow(r io.Reader, sep string, fn func(row []string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			continue
		}

		fn(strings.Split(line, sep))
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading rows: %w", err)
	}

	return nil
}
