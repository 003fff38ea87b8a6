// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package scrape

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/FIRSTMap/scraper/tba"
)

// WriteTeams writes the compact location list the map frontend loads.
// One team per line keeps diffs between published runs readable:
//
//	[
//		{"team_number": 404, "lat": 1.234, "lng": 5.678},
//		{"team_number": 503, "lat": 42.677, "lng": -83.249}
//	]
//
// The layout matches the previously published files, so the formatting
// is done by hand instead of through encoding/json.
func WriteTeams(w io.Writer, teams []*tba.Team) error {
	bw := bufio.NewWriter(w)

	if len(teams) == 0 {
		if _, err := bw.WriteString("[]"); err != nil {
			return err
		}

		return bw.Flush()
	}

	if _, err := bw.WriteString("[\n"); err != nil {
		return err
	}

	for i, team := range teams {
		sep := ","
		if i == len(teams)-1 {
			sep = ""
		}

		_, err := fmt.Fprintf(bw, "\t{\"team_number\": %d, \"lat\": %s, \"lng\": %s}%s\n",
			team.TeamNumber,
			strconv.FormatFloat(team.Lat, 'f', -1, 64),
			strconv.FormatFloat(team.Lng, 'f', -1, 64),
			sep,
		)
		if err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("]"); err != nil {
		return err
	}

	return bw.Flush()
}

// WriteFullTeams writes the complete attribute set per team.
func WriteFullTeams(w io.Writer, teams []*tba.Team, year string) error {
	full := make([]map[string]any, len(teams))
	for i, team := range teams {
		full[i] = team.FullInfo(year)
	}

	b, err := json.MarshalIndent(full, "", "    ")
	if err != nil {
		return err
	}

	_, err = w.Write(b)

	return err
}
