// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package curation serves the manual review workflow for teams the
// resolver could not place: it lists the broken places of the last run,
// asks a geocoding provider for candidate coordinates and appends the
// accepted ones to the override file the resolver reads.
package curation

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Latitude    float64
	Longitude   float64
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(place string) (*GeocodingResult, error)
}
