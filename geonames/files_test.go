// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package geonames

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipWith(t *testing.T, name, content string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestFetchAllDownloadsAndExtracts(t *testing.T) {
	archive := zipWith(t, "cities1000.txt", "city data\n")

	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		switch r.URL.Path {
		case "/cities1000.zip":
			_, _ = w.Write(archive)
		case "/countryInfo.txt":
			_, _ = w.Write([]byte("US\t\t\t\tUnited States\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	d := NewDownloader(&DownloadOptions{CacheDir: cacheDir})

	files := []DataFile{
		{URL: srv.URL + "/cities1000.zip", Name: "cities1000.zip", Unzip: true},
		{URL: srv.URL + "/countryInfo.txt", Name: "countryInfo.txt", Unzip: false},
	}

	require.NoError(t, d.FetchAll(context.Background(), files))

	extracted, err := os.ReadFile(filepath.Join(cacheDir, "cities1000.txt"))
	require.NoError(t, err)
	assert.Equal(t, "city data\n", string(extracted))

	plain, err := os.ReadFile(filepath.Join(cacheDir, "countryInfo.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(plain), "United States")
}

func TestFetchAllUsesCache(t *testing.T) {
	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++

		_, _ = w.Write([]byte("fresh\n"))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "countryInfo.txt"), []byte("stale\n"), 0o600))

	d := NewDownloader(&DownloadOptions{CacheDir: cacheDir, UseCache: true})
	files := []DataFile{{URL: srv.URL + "/countryInfo.txt", Name: "countryInfo.txt"}}

	require.NoError(t, d.FetchAll(context.Background(), files))

	assert.Zero(t, requests)

	content, err := os.ReadFile(filepath.Join(cacheDir, "countryInfo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "stale\n", string(content))
}

func TestFetchAllErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewDownloader(&DownloadOptions{CacheDir: t.TempDir()})
	files := []DataFile{{URL: srv.URL + "/missing.txt", Name: "missing.txt"}}

	err := d.FetchAll(context.Background(), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestEnsureCacheDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache")
	require.NoError(t, os.WriteFile(path, []byte("in the way"), 0o600))

	d := NewDownloader(&DownloadOptions{CacheDir: path})
	assert.Error(t, d.EnsureCacheDir())
}
