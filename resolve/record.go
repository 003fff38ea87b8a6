// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package resolve turns a team's free-text location fields into
// approximate coordinates by querying the gazetteer tier by tier.
package resolve

import (
	"strings"

	"github.com/FIRSTMap/scraper/utils/textutils"
)

// CountryCoder maps a country display name to its two-letter code.
type CountryCoder interface {
	CountryCode(name string) (string, bool)
}

// Record is the unit of work for one resolution: the normalized location
// fields of a team plus its stable identifier. Correction rules mutate it
// in place before lookup; it is discarded once coordinates are attached.
type Record struct {
	Key      string // team key, e.g. "frc1339"
	Country  string // two-letter country code, empty when unknown
	Division string // state/province/administrative division
	City     string
	Postal   string
}

// NewRecord builds a record from the raw team fields. City and division
// are folded to the uppercase ASCII form the gazetteer indices use;
// postal codes are upper-cased because they carry letters in some
// countries. A country name the coder does not know yields an empty
// country code, which the correction rules may later infer from the
// postal code shape.
func NewRecord(key, country, division, city, postal string, codes CountryCoder) *Record {
	code, _ := codes.CountryCode(country)

	return &Record{
		Key:      key,
		Country:  code,
		Division: textutils.UpperASCIIFolding(division),
		City:     textutils.UpperASCIIFolding(city),
		Postal:   strings.ToUpper(postal),
	}
}

// Place returns the composite place string used both as the manual
// override key and in unresolved-location reports. The exact layout
// matters: curated override entries are keyed against it.
func (r *Record) Place() string {
	return r.City + ", " + r.Division + " " + r.Postal + ", " + r.Country
}
