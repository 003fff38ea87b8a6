// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"regexp"
	"strings"
)

// Rule is one conditional rewrite applied to a record before lookup.
// The rules repair known, systematic mismatches between how TBA spells
// locations and how the gazetteer indexes them.
type Rule struct {
	Name string
	When func(*Record) bool
	Then func(*Record)
}

// Options tune optional rule behavior.
type Options struct {
	// FormatJapanPostal rewrites 7-digit Japanese postal codes into the
	// dashed 123-4567 form. The scraper has never stored the dashed form,
	// and the postal index is keyed on the undashed one, so the rewrite
	// is opt-in and off by default.
	FormatJapanPostal bool
}

// Postal code shapes used to infer a country when TBA supplied none.
var (
	rePostalAU = regexp.MustCompile(`^[0-9]{4}$`)
	rePostalUS = regexp.MustCompile(`^[0-9]{5}$`)
	rePostalU9 = regexp.MustCompile(`^[0-9]{5}-[0-9]{4}$`)
	rePostalBR = regexp.MustCompile(`^[0-9]{5}-[0-9]{3}$`)
	rePostalCA = regexp.MustCompile(`^[A-Z][0-9][A-Z] [0-9][A-Z][0-9]$`)
	rePostalIL = regexp.MustCompile(`^[0-9]{7}$`)

	rePostalSE = regexp.MustCompile(`^[0-9]{5}`)
)

// Postal codes that defeat shape inference: data-entry anomalies mapped
// to the country they are known to belong to.
var postalLiterals = map[string]string{
	"11073": "TW",
	"34912": "TR",
	"34469": "TR",
	"93810": "IL",
}

// Rules returns the correction table in evaluation order. Order matters:
// the country inferred by the first rule feeds every later guard, and
// within a rule the stated else-chains keep rewrites mutually exclusive.
func Rules(opts Options) []Rule {
	return []Rule{
		{
			Name: "infer country from postal code shape",
			When: func(r *Record) bool { return r.Country == "" && r.Postal != "" },
			Then: func(r *Record) {
				if code, ok := postalLiterals[r.Postal]; ok {
					r.Country = code

					return
				}

				switch {
				case rePostalAU.MatchString(r.Postal):
					r.Country = "AU"
				case rePostalUS.MatchString(r.Postal) || rePostalU9.MatchString(r.Postal):
					r.Country = "US"
				case rePostalBR.MatchString(r.Postal):
					r.Country = "BR"
				case rePostalCA.MatchString(r.Postal):
					r.Country = "CA"
				case rePostalIL.MatchString(r.Postal):
					r.Country = "IL"
				}
			},
		},
		{
			// Swedish postal codes are indexed as "123 45".
			Name: "sweden postal code spacing",
			When: func(r *Record) bool { return r.Country == "SE" && rePostalSE.MatchString(r.Postal) },
			Then: func(r *Record) { r.Postal = r.Postal[0:3] + " " + r.Postal[3:5] },
		},
		{
			Name: "united states refinements",
			When: func(r *Record) bool { return r.Country == "US" },
			Then: func(r *Record) {
				// Mutually exclusive: at most one rewrite fires per record.
				switch {
				case r.Division == "GUAM":
					r.Country = "GU"
				case r.Division == "PUERTO RICO":
					r.Country = "PR"
				case r.City == "NEW YORK":
					r.City = "NEW YORK CITY"
				case r.Division == "PA" && r.City == "WARMINSTER":
					r.City = "WARMINSTER HEIGHTS"
				case r.Division == "MO" && r.City == "LEES SUMMIT":
					r.City = "LEE'S SUMMIT"
				}
			},
		},
		{
			Name: "chile santiago region naming",
			When: func(r *Record) bool {
				return r.Country == "CL" && r.Division == "REGION METROPOLITANA DE SANTIAGO"
			},
			Then: func(r *Record) { r.Division = "SANTIAGO METROPOLITAN" },
		},
		{
			Name: "greece thessaly naming",
			When: func(r *Record) bool { return r.Country == "GR" && r.Division == "THESSALIA" },
			Then: func(r *Record) { r.Division = "THESSALY" },
		},
		{
			Name: "mexico fixes",
			When: func(r *Record) bool { return r.Country == "MX" },
			Then: func(r *Record) {
				// Both checks are independent; a record can hit either or both.
				if r.City == "SAN LUIS POTOTOSI" { // source data typo
					r.City = "SAN LUIS POTOSI"
				}

				if r.Division == "DISTRITO FEDERAL" {
					r.Division = "MEXICO CITY"
				}
			},
		},
		{
			Name: "turkey cekmekoy transliteration",
			When: func(r *Record) bool { return r.Country == "TR" && r.City == "CEKMEKOY" },
			Then: func(r *Record) { r.City = "CEKMEKOEY" },
		},
		{
			Name: "netherlands north brabant naming",
			When: func(r *Record) bool { return r.Country == "NL" && r.Division == "NOORD-BRABANT" },
			Then: func(r *Record) { r.Division = "NORTH BRABANT" },
		},
		{
			Name: "dominican republic nacional district",
			When: func(r *Record) bool {
				return r.Country == "DO" && r.Division == "SANTO DOMINGO" && r.City == r.Division
			},
			Then: func(r *Record) { r.Division = "NACIONAL" },
		},
		{
			// Israeli district names in the source are unreliable, so the
			// gazetteer indexes Israeli cities under the country code and
			// the record is forced to match.
			Name: "israel division pinning",
			When: func(r *Record) bool { return r.Country == "IL" },
			Then: func(r *Record) { r.Division = "IL" },
		},
		{
			Name: "japan postal code dash",
			When: func(r *Record) bool {
				return opts.FormatJapanPostal && r.Country == "JP" && len(r.Postal) == 7
			},
			Then: func(r *Record) { r.Postal = r.Postal[0:3] + "-" + r.Postal[3:7] },
		},
		{
			// The postal index only carries Canadian codes at forward
			// sortation area granularity (first three characters).
			Name: "canada postal code truncation",
			When: func(r *Record) bool { return r.Country == "CA" },
			Then: func(r *Record) {
				if len(r.Postal) > 3 {
					r.Postal = r.Postal[0:3]
				}
			},
		},
		{
			Name: "taiwan municipality suffix",
			When: func(r *Record) bool { return r.Country == "TW" },
			Then: func(r *Record) {
				if s, ok := strings.CutSuffix(r.Division, " SPECIAL MUNICIPALITY"); ok {
					r.Division = s
				} else if s, ok := strings.CutSuffix(r.Division, " MUNICIPALITY"); ok {
					r.Division = s
				}
			},
		},
	}
}

// ApplyCorrections runs every rule whose guard matches, in order.
func ApplyCorrections(r *Record, rules []Rule) {
	for _, rule := range rules {
		if rule.When(r) {
			rule.Then(r)
		}
	}
}
