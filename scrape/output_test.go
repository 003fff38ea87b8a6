// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package scrape

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIRSTMap/scraper/tba"
)

func TestWriteTeams(t *testing.T) {
	teams := []*tba.Team{
		{TeamNumber: 404, Lat: 1.234, Lng: 5.678},
		{TeamNumber: 503, Lat: 42.677, Lng: -83.249},
		{TeamNumber: 9999, Lat: 0, Lng: 0},
	}

	var sb strings.Builder
	require.NoError(t, WriteTeams(&sb, teams))

	expected := "[\n" +
		"\t{\"team_number\": 404, \"lat\": 1.234, \"lng\": 5.678},\n" +
		"\t{\"team_number\": 503, \"lat\": 42.677, \"lng\": -83.249},\n" +
		"\t{\"team_number\": 9999, \"lat\": 0, \"lng\": 0}\n" +
		"]"
	assert.Equal(t, expected, sb.String())

	// the hand-rolled layout must still be valid JSON
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &parsed))
	assert.Len(t, parsed, 3)
}

func TestWriteTeamsEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteTeams(&sb, nil))
	assert.Equal(t, "[]", sb.String())
}

func TestWriteFullTeams(t *testing.T) {
	teams := []*tba.Team{
		{
			Key:              "frc254",
			TeamNumber:       254,
			Nickname:         "The Cheesy Poofs",
			City:             "San Jose",
			Country:          "USA",
			Lat:              37.339,
			Lng:              -121.895,
			HomeChampionship: map[string]string{"2025": "Houston", "2026": "Houston"},
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteFullTeams(&sb, teams, "2026"))

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &parsed))
	require.Len(t, parsed, 1)

	assert.Equal(t, "The Cheesy Poofs", parsed[0]["nickname"])
	assert.Equal(t, "Houston", parsed[0]["home_championship"])
	assert.InDelta(t, 37.339, parsed[0]["lat"], 1e-9)

	// indent=4 layout
	assert.True(t, strings.HasPrefix(sb.String(), "[\n    {"))
}
