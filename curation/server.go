// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package curation

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/FIRSTMap/scraper/resolve"
	"github.com/FIRSTMap/scraper/spatial"
)

// ServerOptions configuration for the curation server.
type ServerOptions struct {
	// BrokenPlacesPath is the report of the last resolver run
	BrokenPlacesPath string

	// GeoCachePath is the override file accepted entries are appended to
	GeoCachePath string

	// Addr is the listen address
	Addr string
}

type Server struct {
	options   *ServerOptions
	overrides *OverrideFile
	geocoder  Geocoder
}

func NewServer(options *ServerOptions) *Server {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Println("GOOGLE_MAPS_API_KEY is not set, coordinate suggestions will fail")
	}

	return &Server{
		options:   options,
		overrides: NewOverrideFile(options.GeoCachePath),
		geocoder:  NewGoogleMapsGeocoder(apiKey),
	}
}

func (s *Server) Run() error {
	r := gin.Default()

	s.registerRoutes(r)

	addr := s.options.Addr
	if addr == "" {
		addr = "localhost:8080"
	}

	return r.Run(addr)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/api/broken-places", s.listBrokenPlaces)
	r.GET("/api/suggest", s.suggestCoordinates)
	r.GET("/api/overrides", s.listOverrides)
	r.POST("/api/overrides", s.acceptOverride)
}

// BrokenPlace is one unresolved team pending curation.
type BrokenPlace struct {
	Key   string `json:"key"`
	Place string `json:"place"`
}

// listBrokenPlaces returns the unresolved teams of the last run that
// still have no override, so the queue shrinks as entries are accepted.
func (s *Server) listBrokenPlaces(ctx *gin.Context) {
	entries, err := resolve.ReadReport(s.options.BrokenPlacesPath)
	// a missing report just means no run has failed anything yet
	if err != nil && len(entries) == 0 && !errors.Is(err, os.ErrNotExist) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	overrides, err := s.overrides.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	curated := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		curated[o.Place] = true
	}

	pending := make([]BrokenPlace, 0, len(entries))

	for _, entry := range entries {
		if curated[entry.Place] {
			continue
		}

		pending = append(pending, BrokenPlace{Key: entry.Key, Place: entry.Place})
	}

	ctx.JSON(http.StatusOK, pending)
}

// SuggestionResponse is a candidate coordinate for a broken place.
type SuggestionResponse struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	GeocodingMethod string  `json:"geocoding_method"`
	Confidence      string  `json:"confidence"`
	Notes           string  `json:"notes"`
}

func (s *Server) suggestCoordinates(ctx *gin.Context) {
	place := ctx.Query("place")
	if place == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "place query parameter is required"})

		return
	}

	result, err := s.geocoder.Geocode(place)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no suggestion available", "details": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, SuggestionResponse{
		Latitude:        result.Latitude,
		Longitude:       result.Longitude,
		GeocodingMethod: result.Provider,
		Confidence:      result.Confidence,
		Notes:           result.DisplayName,
	})
}

func (s *Server) listOverrides(ctx *gin.Context) {
	overrides, err := s.overrides.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if overrides == nil {
		overrides = []Override{}
	}

	ctx.JSON(http.StatusOK, overrides)
}

// AcceptOverrideRequest pins a place to coordinates.
type AcceptOverrideRequest struct {
	Place     string  `json:"place"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) acceptOverride(ctx *gin.Context) {
	var req AcceptOverrideRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	override := Override{
		Place: req.Place,
		Point: spatial.Point{Lat: req.Latitude, Lng: req.Longitude},
	}

	if exists, err := s.overrides.Contains(req.Place); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	} else if exists {
		ctx.JSON(http.StatusConflict, gin.H{"error": "place already has an override"})

		return
	}

	if err := s.overrides.Append(override); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
