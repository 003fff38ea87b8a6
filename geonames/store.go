// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package geonames builds in-memory gazetteer indices from the GeoNames
// export files and answers coordinate lookups against them.
package geonames

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FIRSTMap/scraper/spatial"
)

// ExtraCountryCodes supplements the countryInfo table with the country
// names FIRST/TBA uses where they differ from the GeoNames spelling.
// Entries here take precedence over gazetteer-derived ones.
var ExtraCountryCodes = map[string]string{
	"Chinese Taipei": "TW",
	"Czech Republic": "CZ",
	"USA":            "US",
}

// CityKey addresses one city entry in the gazetteer. Division and City
// are uppercase ASCII-folded names; a single flat key keeps "missing at
// any level" down to one absence check.
type CityKey struct {
	Country  string
	Division string
	City     string
}

// Store holds the read-only gazetteer indices. Build it once with
// LoadStore (or the individual readers) before resolving records; it is
// never mutated afterwards and is safe for concurrent lookups.
type Store struct {
	countryCodes map[string]string
	postal       map[string]map[string]spatial.Point
	adminNames   map[string]string
	cities       map[CityKey]spatial.Point
	manual       map[string]spatial.Point
}

// CountryCode maps a country display name to its two-letter code.
func (s *Store) CountryCode(name string) (string, bool) {
	code, ok := s.countryCodes[name]

	return code, ok
}

// Postal looks up the coordinates for a postal code within a country.
// A country that never appears in the postal dump is simply a miss.
func (s *Store) Postal(country, code string) (spatial.Point, bool) {
	pt, ok := s.postal[country][code]

	return pt, ok
}

// City looks up the coordinates for a city within an administrative
// division of a country.
func (s *Store) City(country, division, city string) (spatial.Point, bool) {
	pt, ok := s.cities[CityKey{Country: country, Division: division, City: city}]

	return pt, ok
}

// Manual looks up a manually curated coordinate by its composite place
// string ("CITY, DIVISION POSTAL, CC").
func (s *Store) Manual(place string) (spatial.Point, bool) {
	pt, ok := s.manual[place]

	return pt, ok
}

// Counts returns the sizes of the four lookup indices, for logging.
func (s *Store) Counts() (countries, postal, cities, manual int) {
	for _, byCode := range s.postal {
		postal += len(byCode)
	}

	return len(s.countryCodes), postal, len(s.cities), len(s.manual)
}

// readCountryCodes parses countryInfo.txt. Column 4 is the country name,
// column 0 the ISO code. ExtraCountryCodes wins over parsed rows, and an
// empty-name key never survives.
func readCountryCodes(r io.Reader) (map[string]string, error) {
	codes := make(map[string]string)

	err := eachRow(r, "\t", func(row []string) {
		if len(row) < 5 {
			return
		}

		codes[row[4]] = row[0]
	})
	if err != nil {
		return nil, fmt.Errorf("country codes: %w", err)
	}

	for name, code := range ExtraCountryCodes {
		codes[name] = code
	}

	delete(codes, "")

	return codes, nil
}

// readPostal parses the GeoNames postal dump (allCountries.txt from the
// zip export). Column 0 is the country code, 1 the postal code, 9 and 10
// latitude and longitude. Country and postal keys are upper-cased since
// postal codes in some countries carry letters.
func readPostal(r io.Reader) (map[string]map[string]spatial.Point, error) {
	postal := make(map[string]map[string]spatial.Point)

	err := eachRow(r, "\t", func(row []string) {
		if len(row) < 11 {
			return
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[9]), 64)
		if err != nil {
			return
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(row[10]), 64)
		if err != nil {
			return
		}

		country := strings.ToUpper(row[0])
		code := strings.ToUpper(row[1])

		if _, ok := postal[country]; !ok {
			postal[country] = make(map[string]spatial.Point)
		}

		postal[country][code] = spatial.Point{Lat: lat, Lng: lng}
	})
	if err != nil {
		return nil, fmt.Errorf("postal codes: %w", err)
	}

	return postal, nil
}

// readAdminNames parses admin1CodesASCII.txt into a map from division
// code ("US.AK") to the uppercase ASCII division name ("ALASKA").
func readAdminNames(r io.Reader) (map[string]string, error) {
	names := make(map[string]string)

	err := eachRow(r, "\t", func(row []string) {
		if len(row) < 3 {
			return
		}

		names[row[0]] = strings.ToUpper(row[2])
	})
	if err != nil {
		return nil, fmt.Errorf("administrative division names: %w", err)
	}

	return names, nil
}

// readCities parses cities1000.txt. Column 2 is the ASCII city name, 3
// the comma-separated alternate names, 4 and 5 latitude and longitude, 8
// the country code and 10 the first-level division code. Rows whose
// division code has no name in adminNames are dropped: the gazetteer is
// known to contain such incomplete rows and they cannot be keyed.
//
// Two countries get synthetic keys on top of the regular entry. Taiwan
// mirrors the city name into the division slot, because that is how team
// records spell Taiwanese locations. Israel has unreliable district
// names, so the country code is used as the division and every alternate
// city name is indexed as well.
func readCities(r io.Reader, adminNames map[string]string) (map[CityKey]spatial.Point, error) {
	cities := make(map[CityKey]spatial.Point)

	err := eachRow(r, "\t", func(row []string) {
		if len(row) < 11 {
			return
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			return
		}

		city := strings.ToUpper(row[2])
		country := row[8]

		division, ok := adminNames[country+"."+row[10]]
		if !ok {
			return
		}

		pt := spatial.Point{Lat: lat, Lng: lng}
		cities[CityKey{Country: country, Division: division, City: city}] = pt

		switch country {
		case "TW":
			cities[CityKey{Country: country, Division: city, City: city}] = pt
		case "IL":
			for _, alt := range strings.Split(strings.ToUpper(row[3]), ",") {
				cities[CityKey{Country: country, Division: country, City: alt}] = pt
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cities: %w", err)
	}

	return cities, nil
}

// readManual parses the curated override file. Each line is
// "place|latitude|longitude", where place is the composite place string
// the resolver reports for locations it could not place.
func readManual(r io.Reader) (map[string]spatial.Point, error) {
	manual := make(map[string]spatial.Point)

	err := eachRow(r, "|", func(row []string) {
		if len(row) < 3 {
			return
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return
		}

		manual[row[0]] = spatial.Point{Lat: lat, Lng: lng}
	})
	if err != nil {
		return nil, fmt.Errorf("manual overrides: %w", err)
	}

	return manual, nil
}

// NewStore assembles a Store from already-opened tabular sources. The
// manual reader may be nil when no override file exists yet.
func NewStore(countryInfo, postalDump, adminCodes, cities1000, manual io.Reader) (*Store, error) {
	store := &Store{}

	var err error

	if store.countryCodes, err = readCountryCodes(countryInfo); err != nil {
		return nil, err
	}

	if store.postal, err = readPostal(postalDump); err != nil {
		return nil, err
	}

	if store.adminNames, err = readAdminNames(adminCodes); err != nil {
		return nil, err
	}

	if store.cities, err = readCities(cities1000, store.adminNames); err != nil {
		return nil, err
	}

	if manual == nil {
		store.manual = make(map[string]spatial.Point)

		return store, nil
	}

	if store.manual, err = readManual(manual); err != nil {
		return nil, err
	}

	return store, nil
}

// LoadStore builds the gazetteer indices from the files in cacheDir (as
// laid down by Downloader.FetchAll) plus the curated override file at
// geoCachePath. A missing override file yields an empty override table;
// every other file is required.
func LoadStore(cacheDir, geoCachePath string) (*Store, error) {
	log.Println("Loading GeoNames data...")

	open := func(name string) (*os.File, error) {
		f, err := os.Open(filepath.Clean(filepath.Join(cacheDir, name)))
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}

		return f, nil
	}

	countryInfo, err := open("countryInfo.txt")
	if err != nil {
		return nil, err
	}
	defer countryInfo.Close()

	postalDump, err := open("allCountries.txt")
	if err != nil {
		return nil, err
	}
	defer postalDump.Close()

	adminCodes, err := open("admin1CodesASCII.txt")
	if err != nil {
		return nil, err
	}
	defer adminCodes.Close()

	cities, err := open("cities1000.txt")
	if err != nil {
		return nil, err
	}
	defer cities.Close()

	var manual io.Reader

	if geoCachePath == "" {
		geoCachePath = "geo_cache"
	}

	geoCache, err := os.Open(filepath.Clean(geoCachePath))
	if err == nil {
		defer geoCache.Close()
		manual = geoCache
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening %s: %w", geoCachePath, err)
	} else {
		log.Printf("No override file at %s, continuing without manual locations", geoCachePath)
	}

	store, err := NewStore(countryInfo, postalDump, adminCodes, cities, manual)
	if err != nil {
		return nil, err
	}

	countries, postal, cityCount, manualCount := store.Counts()
	log.Printf(
		"Loaded %d countries, %d postal codes, %d cities, %d manual locations",
		countries, postal, cityCount, manualCount,
	)

	return store, nil
}
