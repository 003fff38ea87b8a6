// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package textutils normalizes free-text place names so they can be
// compared against gazetteer keys.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UpperASCIIFolding normalizes a string by uppercasing, trimming spaces,
// and folding accented characters to their base letter (e.g. São Paulo
// becomes SAO PAULO). Any code point that has no ASCII base is dropped.
// The gazetteer indices are built with this same folding; record fields
// must go through it too or lookups silently miss.
func UpperASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.Predicate(func(r rune) bool {
				return r > unicode.MaxASCII
			})),
		),
		strings.TrimSpace(strings.ToUpper(s)),
	)

	return s
}
