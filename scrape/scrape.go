// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package scrape orchestrates a full run: mirror the GeoNames exports,
// fetch the season's team list, resolve every team to coordinates and
// publish the map data files.
package scrape

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/FIRSTMap/scraper/geonames"
	"github.com/FIRSTMap/scraper/resolve"
	"github.com/FIRSTMap/scraper/storage"
	"github.com/FIRSTMap/scraper/tba"
)

// Well-known files a run reads from the working directory.
const (
	AuthKeyFile = "tba_token.txt"
	YearFile    = "YEAR"
)

// Options configuration for a scrape run.
type Options struct {
	// Year is the season to fetch teams for
	Year string

	// AuthKey is The Blue Alliance Read API key
	AuthKey string

	// TBABaseURL overrides the API endpoint (tests)
	TBABaseURL string

	// CacheDir is where the GeoNames exports are mirrored
	CacheDir string

	// GeoCachePath is the manual override table, empty entries allowed
	GeoCachePath string

	// BrokenPlacesPath collects the teams no tier resolved.
	// Defaults to <CacheDir>/broken_places.
	BrokenPlacesPath string

	// OutDir is where teams.json and teamFullInfo.json are written
	OutDir string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// UseCache keeps already-downloaded GeoNames files
	UseCache bool

	// SkipDownload skips the mirror phase entirely
	SkipDownload bool

	// DryRun resolves everything but persists no file or row
	DryRun bool

	// MaxProcs caps resolution concurrency, 0 means NumCPU
	MaxProcs int

	// FormatJapanPostal enables dash insertion in Japanese postal codes
	FormatJapanPostal bool

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

func (o *Options) brokenPlacesPath() string {
	if o.BrokenPlacesPath != "" {
		return o.BrokenPlacesPath
	}

	return filepath.Join(o.CacheDir, "broken_places")
}

// Metrics tracks the phases of a run.
type Metrics struct {
	Fetch   tba.Metrics
	Resolve resolve.Metrics
}

// Merge combines the metrics from another run into this one.
func (m *Metrics) Merge(other *Metrics) *Metrics {
	if other == nil {
		return m
	}

	m.Fetch.Merge(&other.Fetch)
	m.Resolve.Merge(&other.Resolve)

	return m
}

// Client runs the scrape pipeline.
type Client struct {
	options *Options
	repo    storage.TeamRepository
	Metrics Metrics
}

// NewClient creates a run client. repo may be nil, in which case the
// run skips database persistence.
func NewClient(options *Options, repo storage.TeamRepository) *Client {
	if options == nil {
		options = &Options{}
	}

	return &Client{options: options, repo: repo}
}

// Update executes the full pipeline.
func (c *Client) Update(ctx context.Context) error {
	if c.options.Year == "" {
		return fmt.Errorf("no season year configured")
	}

	if err := c.mirrorGeoNames(ctx); err != nil {
		return err
	}

	store, err := geonames.LoadStore(c.options.CacheDir, c.options.GeoCachePath)
	if err != nil {
		return fmt.Errorf("loading gazetteer: %w", err)
	}

	teams, err := c.fetchTeams(ctx)
	if err != nil {
		return err
	}

	results, err := c.resolveTeams(store, teams)
	if err != nil {
		return err
	}

	for i, result := range results {
		teams[i].Lat = result.Point.Lat
		teams[i].Lng = result.Point.Lng
	}

	if c.options.DryRun {
		log.Println("Dry run, skipping output and persistence")

		return nil
	}

	if err := c.writeOutputs(teams); err != nil {
		return err
	}

	return c.persist(teams, results)
}

func (c *Client) mirrorGeoNames(ctx context.Context) error {
	downloader := geonames.NewDownloader(&geonames.DownloadOptions{
		CacheDir:            c.options.CacheDir,
		UseCache:            c.options.UseCache,
		UserAgent:           c.options.UserAgent,
		EnableHTTPTrace:     c.options.EnableHTTPTrace,
		EnableHTTPBodyTrace: c.options.EnableHTTPBodyTrace,
	})

	if err := downloader.EnsureCacheDir(); err != nil {
		return err
	}

	if c.options.SkipDownload {
		log.Println("Skipping GeoNames download, using cached files")

		return nil
	}

	if err := downloader.FetchAll(ctx, geonames.DataFiles); err != nil {
		return fmt.Errorf("mirroring GeoNames exports: %w", err)
	}

	return nil
}

func (c *Client) fetchTeams(ctx context.Context) ([]*tba.Team, error) {
	client, err := tba.NewClient(&tba.ClientOptions{
		AuthKey:             c.options.AuthKey,
		BaseURL:             c.options.TBABaseURL,
		UserAgent:           c.options.UserAgent,
		EnableHTTPTrace:     c.options.EnableHTTPTrace,
		EnableHTTPBodyTrace: c.options.EnableHTTPBodyTrace,
	})
	if err != nil {
		return nil, err
	}

	teams, err := client.Teams(ctx, c.options.Year)
	c.Metrics.Fetch.Merge(&client.Metrics)

	if err != nil {
		return nil, fmt.Errorf("fetching teams for %s: %w", c.options.Year, err)
	}

	return teams, nil
}

func (c *Client) resolveTeams(store *geonames.Store, teams []*tba.Team) ([]resolve.Result, error) {
	records := make([]*resolve.Record, len(teams))
	for i, team := range teams {
		records[i] = resolve.NewRecord(team.Key, team.Country, team.StateProv, team.City, team.PostalCode, store)
	}

	var reporter resolve.Reporter
	if c.options.DryRun {
		reporter = &resolve.MemoryReporter{}
	} else {
		fileReporter, err := resolve.NewFileReporter(c.options.brokenPlacesPath())
		if err != nil {
			return nil, fmt.Errorf("opening broken places report: %w", err)
		}
		defer fileReporter.Close()

		reporter = fileReporter
	}

	resolver := resolve.NewResolver(store, reporter, resolve.Options{
		FormatJapanPostal: c.options.FormatJapanPostal,
	})

	results, metrics := resolver.ResolveAll(records, c.options.MaxProcs)
	c.Metrics.Resolve.Merge(metrics)

	return results, nil
}

func (c *Client) writeOutputs(teams []*tba.Team) error {
	if err := writeFile(filepath.Join(c.options.OutDir, "teams.json"), func(f *os.File) error {
		return WriteTeams(f, teams)
	}); err != nil {
		return err
	}

	return writeFile(filepath.Join(c.options.OutDir, "teamFullInfo.json"), func(f *os.File) error {
		return WriteFullTeams(f, teams, c.options.Year)
	})
}

func (c *Client) persist(teams []*tba.Team, results []resolve.Result) error {
	if c.repo == nil {
		return nil
	}

	resolved := make([]*storage.ResolvedTeam, len(teams))
	for i, team := range teams {
		resolved[i] = &storage.ResolvedTeam{
			Key:        team.Key,
			TeamNumber: team.TeamNumber,
			Name:       team.Nickname,
			Country:    results[i].Record.Country,
			Division:   results[i].Record.Division,
			City:       results[i].Record.City,
			Postal:     results[i].Record.Postal,
			Point:      results[i].Point,
			Tier:       string(results[i].Tier),
		}
	}

	if err := c.repo.SaveTeams(resolved); err != nil {
		return fmt.Errorf("persisting teams: %w", err)
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()

		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	return nil
}

// ReadAuthKey reads The Blue Alliance Read API key from path. The file
// holds nothing but the key, surrounding whitespace allowed.
func ReadAuthKey(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf(
				"%s does not exist: generate a Read API Key on "+
					"https://www.thebluealliance.com/account and store it there", path)
		}

		return "", err
	}

	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", fmt.Errorf("%s is empty", path)
	}

	return key, nil
}

// ReadYear reads the season year from path.
func ReadYear(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading season year: %w", err)
	}

	year := strings.TrimSpace(string(b))
	if year == "" {
		return "", fmt.Errorf("%s holds no season year", path)
	}

	return year, nil
}
