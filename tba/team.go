// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package tba

// Team is one team record as returned by The Blue Alliance API. Lat and
// Lng are not part of the API response; the resolver fills them in.
type Team struct {
	Address          string            `json:"address"`
	City             string            `json:"city"`
	Country          string            `json:"country"`
	GmapsPlaceID     string            `json:"gmaps_place_id"`
	GmapsURL         string            `json:"gmaps_url"`
	HomeChampionship map[string]string `json:"home_championship"`
	Key              string            `json:"key"`
	Lat              float64           `json:"lat"`
	Lng              float64           `json:"lng"`
	LocationName     string            `json:"location_name"`
	Motto            string            `json:"motto"`
	Name             string            `json:"name"`
	Nickname         string            `json:"nickname"`
	PostalCode       string            `json:"postal_code"`
	RookieYear       int               `json:"rookie_year"`
	StateProv        string            `json:"state_prov"`
	TeamNumber       int               `json:"team_number"`
	Website          string            `json:"website"`
}

// FullInfo returns the published per-team attribute set. The API reports
// home championships for every season as a year-to-venue map; the
// published record keeps only the venue for the scraped year.
func (t *Team) FullInfo(year string) map[string]any {
	var homeChampionship any
	if venue, ok := t.HomeChampionship[year]; ok {
		homeChampionship = venue
	}

	return map[string]any{
		"address":           t.Address,
		"city":              t.City,
		"country":           t.Country,
		"gmaps_place_id":    t.GmapsPlaceID,
		"gmaps_url":         t.GmapsURL,
		"home_championship": homeChampionship,
		"key":               t.Key,
		"lat":               t.Lat,
		"lng":               t.Lng,
		"location_name":     t.LocationName,
		"motto":             t.Motto,
		"name":              t.Name,
		"nickname":          t.Nickname,
		"postal_code":       t.PostalCode,
		"rookie_year":       t.RookieYear,
		"state_prov":        t.StateProv,
		"team_number":       t.TeamNumber,
		"website":           t.Website,
	}
}
