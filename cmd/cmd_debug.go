// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FIRSTMap/scraper/geonames"
	"github.com/FIRSTMap/scraper/resolve"
)

// we say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve raw locations against the gazetteer",
	Long: `Reads one location per line as "country;division;city;postal" and prints
the corrected place string, the lookup tier that matched and the coordinates.

$ echo 'USA;Pennsylvania;Warminster;18974' | scraper debug resolve
WARMINSTER HEIGHTS, PENNSYLVANIA 18974, US	postal	40.206,-75.098
	`,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := geonames.LoadStore(scrapeOptions.CacheDir, scrapeOptions.GeoCachePath)
		if err != nil {
			return err
		}

		reporter := &resolve.MemoryReporter{}
		resolver := resolve.NewResolver(store, reporter, resolve.Options{
			FormatJapanPostal: scrapeOptions.FormatJapanPostal,
		})

		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter locations to resolve, one per line as country;division;city;postal…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			var country, division, city, postal string

			fields := strings.SplitN(scanner.Text(), ";", 4)
			for i, dst := range []*string{&country, &division, &city, &postal} {
				if i < len(fields) {
					*dst = fields[i]
				}
			}

			record := resolve.NewRecord("debug", country, division, city, postal, store)
			point, tier := resolver.Resolve(record)
			fmt.Printf("%s\t%s\t%v,%v\n", record.Place(), tier, point.Lat, point.Lng)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugResolveCmd)
	debugResolveCmd.Flags().StringVar(
		&scrapeOptions.CacheDir,
		"cache-dir",
		"cache",
		"Directory holding the mirrored GeoNames exports",
	)
	debugResolveCmd.Flags().StringVar(
		&scrapeOptions.GeoCachePath,
		"geo-cache",
		"geo_cache",
		"Curated override file",
	)
	debugResolveCmd.Flags().BoolVar(
		&scrapeOptions.FormatJapanPostal,
		"format-japan-postal",
		false,
		"Insert the dash in 7-digit Japanese postal codes before lookup",
	)
}
