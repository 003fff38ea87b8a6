// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package geonames

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/FIRSTMap/scraper/utils/httputils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// DataFile describes one GeoNames export: where to download it from, the
// name to store it under inside the cache directory, and whether the
// archive has to be extracted after download.
type DataFile struct {
	URL   string
	Name  string
	Unzip bool
}

// DataFiles lists the exports the gazetteer is built from. The postal
// dump and the cities dump ship zipped; their readmes document the column
// layout and are kept alongside for reference.
var DataFiles = []DataFile{
	{URL: "https://download.geonames.org/export/zip/allCountries.zip", Name: "allCountries.zip", Unzip: true},
	{URL: "https://download.geonames.org/export/dump/readme.txt", Name: "allCountries.readme", Unzip: false},
	{URL: "https://download.geonames.org/export/dump/cities1000.zip", Name: "cities1000.zip", Unzip: true},
	{URL: "https://download.geonames.org/export/dump/readme.txt", Name: "cities1000.readme", Unzip: false},
	{URL: "https://download.geonames.org/export/dump/admin1CodesASCII.txt", Name: "admin1CodesASCII.txt", Unzip: false},
	{URL: "https://download.geonames.org/export/dump/countryInfo.txt", Name: "countryInfo.txt", Unzip: false},
}

// DownloadOptions configures a Downloader.
type DownloadOptions struct {
	// CacheDir is the directory the exports are mirrored into
	CacheDir string

	// UseCache keeps already-downloaded files instead of refetching them
	UseCache bool

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// Downloader mirrors the GeoNames exports into a local cache directory.
type Downloader struct {
	client  *http.Client
	options *DownloadOptions
}

// NewDownloader creates a downloader with the provided options.
func NewDownloader(options *DownloadOptions) *Downloader {
	if options == nil {
		options = &DownloadOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		MaxConnsPerHost:       2,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
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
			"User-Agent": userAgent,
			"Accept":     "*/*",
		},
		Transport: loggingTransport,
	}

	return &Downloader{
		// The postal dump is several hundred MB; no overall client timeout.
		client:  &http.Client{Transport: headerTransport},
		options: options,
	}
}

// EnsureCacheDir creates the cache directory, failing when a regular file
// already occupies its path.
func (d *Downloader) EnsureCacheDir() error {
	info, err := os.Stat(d.options.CacheDir)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("%q exists and is not a directory, delete it first", d.options.CacheDir)
	}

	if err := os.MkdirAll(d.options.CacheDir, 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	return nil
}

// FetchAll downloads every file in files into the cache directory and
// extracts the zipped ones. With UseCache set, files already present are
// left untouched; archives are still extracted so the extracted copies
// stay consistent with the archives.
func (d *Downloader) FetchAll(ctx context.Context, files []DataFile) error {
	if err := d.EnsureCacheDir(); err != nil {
		return err
	}

	log.Println("Downloading GeoNames data...")

	for _, file := range files {
		if err := d.fetch(ctx, file); err != nil {
			return fmt.Errorf("downloading %s: %w", file.URL, err)
		}

		if file.Unzip {
			if err := d.extract(file.Name); err != nil {
				return fmt.Errorf("extracting %s: %w", file.Name, err)
			}
		}
	}

	return nil
}

func (d *Downloader) fetch(ctx context.Context, file DataFile) (err error) {
	path := filepath.Join(d.options.CacheDir, file.Name)

	if d.options.UseCache {
		if _, statErr := os.Stat(path); statErr == nil {
			log.Printf("Using cached %s", file.Name)

			return nil
		}
	}

	log.Printf("Downloading %s...", file.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing response: %w", cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing file: %w", cerr))
		}
	}()

	var w io.Writer = f

	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription(file.Name),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		w = io.MultiWriter(f, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// extract unpacks a downloaded zip archive into the cache directory.
// Entry names are flattened to their base name, which both matches the
// flat layout of the GeoNames archives and keeps traversal names out.
func (d *Downloader) extract(name string) error {
	rz, err := zip.OpenReader(filepath.Join(d.options.CacheDir, name))
	if err != nil {
		return fmt.Errorf("opening zip file: %w", err)
	}
	defer rz.Close()

	for _, entry := range rz.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		if err := d.extractEntry(entry); err != nil {
			return err
		}
	}

	return nil
}

func (d *Downloader) extractEntry(entry *zip.File) (err error) {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", entry.Name, err)
	}

	defer func() {
		if cerr := src.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing entry: %w", cerr))
		}
	}()

	path := filepath.Join(d.options.CacheDir, filepath.Base(entry.Name))

	dst, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	defer func() {
		if cerr := dst.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing file: %w", cerr))
		}
	}()

	if _, err := io.Copy(dst, src); err != nil { // #nosec G110 - trusted archive source
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
