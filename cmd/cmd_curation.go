// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FIRSTMap/scraper/curation"
)

var curationOptions = &curation.ServerOptions{}

var curationCmd = &cobra.Command{
	Use:   "curation",
	Short: "Manage the manual override workflow",
}

var curationServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive geocoding web server (local only)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if curationOptions.BrokenPlacesPath == "" {
			curationOptions.BrokenPlacesPath = filepath.Join(scrapeOptions.CacheDir, "broken_places")
		}

		server := curation.NewServer(curationOptions)

		return server.Run()
	},
}

func init() {
	rootCmd.AddCommand(curationCmd)
	curationCmd.AddCommand(curationServeCmd)
	curationServeCmd.Flags().StringVar(
		&curationOptions.BrokenPlacesPath,
		"broken-places",
		"",
		"Report of the last run (defaults to <cache-dir>/broken_places)",
	)
	curationServeCmd.Flags().StringVar(
		&curationOptions.GeoCachePath,
		"geo-cache",
		"geo_cache",
		"Override file accepted entries are appended to",
	)
	curationServeCmd.Flags().StringVar(
		&curationOptions.Addr,
		"addr",
		"localhost:8080",
		"Listen address",
	)
}
