// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package tba fetches team records from The Blue Alliance Read API.
package tba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/FIRSTMap/scraper/utils/httputils"
)

// DefaultBaseURL is the production Read API endpoint.
const DefaultBaseURL = "https://www.thebluealliance.com/api/v3"

// ErrMissingAuthKey is returned when no Read API key was configured.
// Keys are generated at https://www.thebluealliance.com/account.
var ErrMissingAuthKey = errors.New("tba: missing Read API authorization key")

// ClientOptions configuration for the TBA client.
type ClientOptions struct {
	// AuthKey is the Read API key sent as X-TBA-Auth-Key
	AuthKey string

	// BaseURL overrides the API endpoint (tests)
	BaseURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// Metrics tracks statistics about the fetch phase.
type Metrics struct {
	Pages int // pages requested, including the final empty one
	Teams int // team records received
}

// Merge combines two Metrics.
func (m *Metrics) Merge(o *Metrics) *Metrics {
	m.Pages += o.Pages
	m.Teams += o.Teams

	return m
}

// Client pages through the team list endpoints of the Read API.
type Client struct {
	client  *http.Client
	options *ClientOptions
	Metrics Metrics
}

// NewClient creates a client with the provided options.
func NewClient(options *ClientOptions) (*Client, error) {
	if options == nil {
		options = &ClientOptions{}
	}

	if options.AuthKey == "" {
		return nil, ErrMissingAuthKey
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: transport,
	}

	userAgent := "firstmap-scraper/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent":     userAgent,
			"Accept":         "application/json",
			"X-TBA-Auth-Key": options.AuthKey,
		},
		Transport: loggingTransport,
	}

	return &Client{
		client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: headerTransport,
		},
		options: options,
	}, nil
}

func (c *Client) baseURL() string {
	if c.options.BaseURL != "" {
		return c.options.BaseURL
	}

	return DefaultBaseURL
}

// Teams downloads every team registered for the given year, paging
// through /teams/<year>/<page> until the API returns an empty page.
func (c *Client) Teams(ctx context.Context, year string) ([]*Team, error) {
	log.Println("Downloading team data from The Blue Alliance...")

	var teams []*Team

	for page := 0; ; page++ {
		batch, err := c.teamsPage(ctx, year, page)
		if err != nil {
			return nil, fmt.Errorf("fetching teams page %d: %w", page, err)
		}

		c.Metrics.Pages++

		if len(batch) == 0 {
			break
		}

		c.Metrics.Teams += len(batch)
		teams = append(teams, batch...)
	}

	log.Printf("Fetched %d teams across %d pages", c.Metrics.Teams, c.Metrics.Pages)

	return teams, nil
}

func (c *Client) teamsPage(ctx context.Context, year string, page int) (teams []*Team, err error) {
	url := fmt.Sprintf("%s/teams/%s/%d", c.baseURL(), year, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing response: %w", cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&teams); err != nil {
		return nil, fmt.Errorf("decoding teams: %w", err)
	}

	return teams, nil
}
