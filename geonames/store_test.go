// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package geonames

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIRSTMap/scraper/spatial"
)

// row builds a tab separated row with the value at the given column and
// enough empty columns to satisfy the parsers.
func row(width int, values map[int]string) string {
	cols := make([]string, width)
	for i, v := range values {
		cols[i] = v
	}

	return strings.Join(cols, "\t")
}

func TestReadCountryCodes(t *testing.T) {
	input := strings.Join([]string{
		"# ISO\tISO3\tISO-Numeric\tfips\tCountry",
		row(6, map[int]string{0: "US", 4: "United States"}),
		row(6, map[int]string{0: "CZ", 4: "Czechia"}),
		row(6, map[int]string{0: "XX", 4: ""}),
	}, "\n")

	codes, err := readCountryCodes(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "US", codes["United States"])
	assert.Equal(t, "CZ", codes["Czechia"])

	// The static additions win and cover the names TBA uses.
	assert.Equal(t, "US", codes["USA"])
	assert.Equal(t, "CZ", codes["Czech Republic"])
	assert.Equal(t, "TW", codes["Chinese Taipei"])

	// No empty-string key survives the build.
	_, ok := codes[""]
	assert.False(t, ok)
}

func TestReadPostal(t *testing.T) {
	input := strings.Join([]string{
		row(12, map[int]string{0: "us", 1: "18974", 9: "40.2095", 10: "-75.0982"}),
		row(12, map[int]string{0: "CA", 1: "k1a", 9: "45.4208", 10: "-75.69"}),
		row(12, map[int]string{0: "US", 1: "99999", 9: "not-a-number", 10: "0"}),
		"short\trow",
	}, "\n")

	postal, err := readPostal(strings.NewReader(input))
	require.NoError(t, err)

	// Country and postal keys are upper-cased.
	pt, ok := postal["US"]["18974"]
	require.True(t, ok)
	assert.InDelta(t, 40.2095, pt.Lat, 1e-9)

	_, ok = postal["CA"]["K1A"]
	assert.True(t, ok)

	// Malformed rows are skipped, not fatal.
	_, ok = postal["US"]["99999"]
	assert.False(t, ok)
}

func TestReadAdminNames(t *testing.T) {
	input := strings.Join([]string{
		"US.AK\tAlaska\tAlaska\t5879092",
		"BR.27\tSão Paulo\tSao Paulo\t3448433",
		"broken",
	}, "\n")

	names, err := readAdminNames(strings.NewReader(input))
	require.NoError(t, err)

	want := map[string]string{
		"US.AK": "ALASKA",
		"BR.27": "SAO PAULO",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("admin names mismatch (-want +got):\n%s", diff)
	}
}

// cityRow builds a cities1000.txt row with just the columns readCities uses.
func cityRow(name, alternates, lat, lng, country, admin1 string) string {
	return row(12, map[int]string{
		2:  name,
		3:  alternates,
		4:  lat,
		5:  lng,
		8:  country,
		10: admin1,
	})
}

func TestReadCities(t *testing.T) {
	adminNames := map[string]string{
		"US.NH": "NEW HAMPSHIRE",
		"TW.04": "KAOHSIUNG",
		"IL.05": "TEL AVIV",
	}

	input := strings.Join([]string{
		cityRow("Manchester", "", "42.99564", "-71.45479", "US", "NH"),
		cityRow("Kaohsiung", "", "22.61626", "120.31333", "TW", "04"),
		cityRow("Tel Aviv", "Tel Aviv-Yafo,Tel-Aviv", "32.08088", "34.78057", "IL", "05"),
		cityRow("Nowhere", "", "1.0", "2.0", "US", "ZZ"), // unknown division: dropped
	}, "\n")

	cities, err := readCities(strings.NewReader(input), adminNames)
	require.NoError(t, err)

	_, ok := cities[CityKey{Country: "US", Division: "NEW HAMPSHIRE", City: "MANCHESTER"}]
	assert.True(t, ok)

	// Taiwan mirrors the city name into the division slot.
	_, ok = cities[CityKey{Country: "TW", Division: "KAOHSIUNG", City: "KAOHSIUNG"}]
	assert.True(t, ok)

	// Israel indexes alternate names under the country code division, in
	// addition to the regular entry.
	_, ok = cities[CityKey{Country: "IL", Division: "TEL AVIV", City: "TEL AVIV"}]
	assert.True(t, ok)
	_, ok = cities[CityKey{Country: "IL", Division: "IL", City: "TEL AVIV-YAFO"}]
	assert.True(t, ok)
	_, ok = cities[CityKey{Country: "IL", Division: "IL", City: "TEL-AVIV"}]
	assert.True(t, ok)

	// Rows with no division name never make it into the index.
	_, ok = cities[CityKey{Country: "US", Division: "", City: "NOWHERE"}]
	assert.False(t, ok)
}

func TestReadManual(t *testing.T) {
	input := strings.Join([]string{
		"SOMEWHERE, XX 00000, ZZ|12.345678|-23.456789",
		"corrupt line without separators",
		"BAD, XX 00000, ZZ|not-a-number|0",
	}, "\n")

	manual, err := readManual(strings.NewReader(input))
	require.NoError(t, err)

	pt, ok := manual["SOMEWHERE, XX 00000, ZZ"]
	require.True(t, ok)
	assert.Equal(t, spatial.Point{Lat: 12.345678, Lng: -23.456789}, pt)

	assert.Len(t, manual, 1)
}

func TestNewStoreLookups(t *testing.T) {
	countryInfo := row(6, map[int]string{0: "US", 4: "United States"})
	postal := row(12, map[int]string{0: "US", 1: "03101", 9: "42.9956", 10: "-71.4548"})
	admin := "US.NH\tNew Hampshire\tNew Hampshire\t5090174"
	cities := cityRow("Manchester", "", "42.99564", "-71.45479", "US", "NH")
	manual := "LOST, NH 00000, US|1.5|-2.5"

	store, err := NewStore(
		strings.NewReader(countryInfo),
		strings.NewReader(postal),
		strings.NewReader(admin),
		strings.NewReader(cities),
		strings.NewReader(manual),
	)
	require.NoError(t, err)

	code, ok := store.CountryCode("USA")
	require.True(t, ok)
	assert.Equal(t, "US", code)

	_, ok = store.Postal("US", "03101")
	assert.True(t, ok)
	_, ok = store.Postal("ZZ", "03101")
	assert.False(t, ok)
	_, ok = store.Postal("", "")
	assert.False(t, ok)

	_, ok = store.City("US", "NEW HAMPSHIRE", "MANCHESTER")
	assert.True(t, ok)
	_, ok = store.City("US", "VERMONT", "MANCHESTER")
	assert.False(t, ok)

	_, ok = store.Manual("LOST, NH 00000, US")
	assert.True(t, ok)
}

func TestNewStoreNilManual(t *testing.T) {
	store, err := NewStore(
		strings.NewReader(""),
		strings.NewReader(""),
		strings.NewReader(""),
		strings.NewReader(""),
		nil,
	)
	require.NoError(t, err)

	_, ok := store.Manual("ANYWHERE, XX 00000, ZZ")
	assert.False(t, ok)
}
