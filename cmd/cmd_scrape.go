// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/FIRSTMap/scraper/scrape"
	"github.com/FIRSTMap/scraper/storage"
)

var scrapeOptions = &scrape.Options{}

var dbPath string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a full scrape: fetch teams, resolve locations, publish the map data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if scrapeOptions.Year == "" {
			year, err := scrape.ReadYear(scrape.YearFile)
			if err != nil {
				return err
			}

			scrapeOptions.Year = year
		}

		if scrapeOptions.AuthKey == "" {
			key, err := scrape.ReadAuthKey(scrape.AuthKeyFile)
			if err != nil {
				return err
			}

			scrapeOptions.AuthKey = key
		}

		scrapeOptions.UserAgent = fmt.Sprintf("firstmap-scraper/%s (+https://github.com/FIRSTMap)", Version)

		var repo storage.TeamRepository

		if dbPath != "" && !scrapeOptions.DryRun {
			db, err := sql.Open("duckdb", dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			repo, err = storage.NewSQLTeamRepository(db)
			if err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}

			if err := repo.CreateSchema(); err != nil {
				return fmt.Errorf("creating table: %w", err)
			}
		}

		client := scrape.NewClient(scrapeOptions, repo)
		err := client.Update(cmd.Context())

		log.Printf(
			"Fetch phase metrics - %d teams across %d pages",
			client.Metrics.Fetch.Teams,
			client.Metrics.Fetch.Pages,
		)
		log.Printf(
			"Resolution phase metrics - %d postal, %d city, %d manual, %d unresolved",
			client.Metrics.Resolve.Postal,
			client.Metrics.Resolve.City,
			client.Metrics.Resolve.Manual,
			client.Metrics.Resolve.Broken,
		)

		return err
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.PersistentFlags().StringVar(
		&scrapeOptions.Year,
		"year",
		"",
		"Season to fetch teams for (defaults to the YEAR file)",
	)
	scrapeCmd.PersistentFlags().StringVar(
		&scrapeOptions.CacheDir,
		"cache-dir",
		"cache",
		"Directory the GeoNames exports are mirrored into",
	)
	scrapeCmd.PersistentFlags().StringVar(
		&scrapeOptions.GeoCachePath,
		"geo-cache",
		"geo_cache",
		"Curated override file for locations the gazetteer cannot place",
	)
	scrapeCmd.PersistentFlags().StringVar(
		&scrapeOptions.OutDir,
		"out-dir",
		".",
		"Directory teams.json and teamFullInfo.json are written to",
	)
	scrapeCmd.PersistentFlags().StringVar(
		&dbPath,
		"db-path",
		"",
		"DuckDB file to persist resolved teams into (empty disables persistence)",
	)
	scrapeCmd.PersistentFlags().BoolVar(
		&scrapeOptions.UseCache,
		"use-cache",
		false,
		"Keep already-downloaded GeoNames files instead of refetching them",
	)
	scrapeCmd.PersistentFlags().BoolVar(
		&scrapeOptions.SkipDownload,
		"skip-download",
		false,
		"Skip the GeoNames mirror phase entirely",
	)
	scrapeCmd.PersistentFlags().BoolVar(
		&scrapeOptions.DryRun,
		"dry-run",
		false,
		"Resolve everything but persist no file or row",
	)
	scrapeCmd.PersistentFlags().BoolVar(
		&scrapeOptions.FormatJapanPostal,
		"format-japan-postal",
		false,
		"Insert the dash in 7-digit Japanese postal codes before lookup",
	)
	scrapeCmd.PersistentFlags().IntVar(
		&scrapeOptions.MaxProcs,
		"max-procs",
		0,
		"Resolution concurrency (0 uses all CPUs)",
	)
	scrapeCmd.PersistentFlags().BoolVar(
		&scrapeOptions.EnableHTTPTrace,
		"http-trace",
		false,
		"Trace HTTP requests and responses",
	)
	scrapeCmd.PersistentFlags().BoolVar(
		&scrapeOptions.EnableHTTPBodyTrace,
		"http-body-trace",
		false,
		"Trace the full body of HTTP requests and responses",
	)
}
