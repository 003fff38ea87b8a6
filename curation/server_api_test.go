// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package curation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIRSTMap/scraper/spatial"
)

// MockGeocoder is a mock implementation of Geocoder for testing.
type MockGeocoder struct {
	results map[string]*GeocodingResult
}

func (m *MockGeocoder) Geocode(place string) (*GeocodingResult, error) {
	if result, ok := m.results[place]; ok {
		return result, nil
	}

	return nil, fmt.Errorf("no results found for place: %s", place)
}

// setupServerTest initializes a Gin router and a curation.Server
// backed by files in a temp dir.
func setupServerTest(t *testing.T) (*gin.Engine, *Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmp := t.TempDir()
	options := &ServerOptions{
		BrokenPlacesPath: filepath.Join(tmp, "broken_places"),
		GeoCachePath:     filepath.Join(tmp, "geo_cache"),
	}

	server := &Server{
		options:   options,
		overrides: NewOverrideFile(options.GeoCachePath),
		geocoder: &MockGeocoder{results: map[string]*GeocodingResult{
			"LOST, OC 00000, ZZ": {
				Latitude:    -12.5,
				Longitude:   130.25,
				Confidence:  "medium",
				Provider:    "google_maps",
				DisplayName: "Lost, Oceania",
			},
		}},
	}

	router := gin.Default()
	server.registerRoutes(router)

	return router, server, tmp
}

func writeBrokenPlaces(t *testing.T, tmp string, lines string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "broken_places"), []byte(lines), 0o600))
}

func TestListBrokenPlacesAPI(t *testing.T) {
	router, _, tmp := setupServerTest(t)
	writeBrokenPlaces(t, tmp, "frc1\tLOST, OC 00000, ZZ\nfrc2\tATLANTIS, OC 00001, ZZ\n")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/broken-places", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var pending []BrokenPlace
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 2)
	assert.Equal(t, BrokenPlace{Key: "frc1", Place: "LOST, OC 00000, ZZ"}, pending[0])
}

func TestListBrokenPlacesAPIHidesCurated(t *testing.T) {
	router, server, tmp := setupServerTest(t)
	writeBrokenPlaces(t, tmp, "frc1\tLOST, OC 00000, ZZ\nfrc2\tATLANTIS, OC 00001, ZZ\n")

	require.NoError(t, server.overrides.Append(Override{
		Place: "LOST, OC 00000, ZZ",
		Point: spatial.Point{Lat: -12.5, Lng: 130.25},
	}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/broken-places", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var pending []BrokenPlace
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "frc2", pending[0].Key)
}

func TestListBrokenPlacesAPINoReport(t *testing.T) {
	router, _, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/broken-places", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestSuggestCoordinatesAPI(t *testing.T) {
	router, _, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/suggest?place=LOST%2C+OC+00000%2C+ZZ", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var suggestion SuggestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestion))
	assert.InDelta(t, -12.5, suggestion.Latitude, 1e-9)
	assert.InDelta(t, 130.25, suggestion.Longitude, 1e-9)
	assert.Equal(t, "google_maps", suggestion.GeocodingMethod)
	assert.Equal(t, "medium", suggestion.Confidence)
}

func TestSuggestCoordinatesAPIMissingPlace(t *testing.T) {
	router, _, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/suggest", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestCoordinatesAPIUnknownPlace(t *testing.T) {
	router, _, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/suggest?place=NOWHERE", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcceptOverrideAPI(t *testing.T) {
	router, server, _ := setupServerTest(t)

	body, _ := json.Marshal(AcceptOverrideRequest{
		Place:     "LOST, OC 00000, ZZ",
		Latitude:  -12.5,
		Longitude: 130.25,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/overrides", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	overrides, err := server.overrides.List()
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "LOST, OC 00000, ZZ", overrides[0].Place)

	// a second accept for the same place is rejected
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/overrides", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAcceptOverrideAPIRejectsInvalid(t *testing.T) {
	router, _, _ := setupServerTest(t)

	for name, req := range map[string]AcceptOverrideRequest{
		"empty place":        {Latitude: 1, Longitude: 1},
		"reserved character": {Place: "A|B", Latitude: 1, Longitude: 1},
		"latitude range":     {Place: "SOMEWHERE", Latitude: 95, Longitude: 1},
	} {
		t.Run(name, func(t *testing.T) {
			body, _ := json.Marshal(req)

			w := httptest.NewRecorder()
			httpReq, _ := http.NewRequest(http.MethodPost, "/api/overrides", bytes.NewReader(body))
			router.ServeHTTP(w, httpReq)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListOverridesAPI(t *testing.T) {
	router, server, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/overrides", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	require.NoError(t, server.overrides.Append(Override{
		Place: "LOST, OC 00000, ZZ",
		Point: spatial.Point{Lat: -12.5, Lng: 130.25},
	}))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/overrides", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var overrides []Override
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overrides))
	require.Len(t, overrides, 1)
}
