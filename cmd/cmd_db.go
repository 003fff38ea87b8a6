// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/FIRSTMap/scraper/storage"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the persisted team database",
}

var dbStatsTopCells int

var dbStatsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Show resolution and density statistics for a scrape database",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, err := sql.Open("duckdb", args[0])
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo, err := storage.NewSQLTeamRepository(db)
		if err != nil {
			return fmt.Errorf("initializing repository: %w", err)
		}

		total, err := repo.CountTeams()
		if err != nil {
			return err
		}

		fmt.Printf("%d teams stored\n\n", total)

		tiers, err := repo.TierCounts()
		if err != nil {
			return err
		}

		a, b := strings.Repeat("─", 10), strings.Repeat("─", 8)
		fmt.Println("Resolution tiers:")
		fmt.Printf("╭─%-10s─┬─%8s─╮\n", a, b)
		fmt.Printf("│ %-10s │ %8s │\n", "Tier", "Teams")
		fmt.Printf("├─%-10s─┼─%8s─┤\n", a, b)

		for _, tier := range tiers {
			fmt.Printf("│ %-10s │ %8d │\n", tier.Tier, tier.Teams)
		}

		fmt.Printf("╰─%-10s─┴─%8s─╯\n\n", a, b)

		countries, err := repo.CountryCounts()
		if err != nil {
			return err
		}

		fmt.Println("Teams per country:")
		fmt.Printf("╭─%-10s─┬─%8s─╮\n", a, b)
		fmt.Printf("│ %-10s │ %8s │\n", "Country", "Teams")
		fmt.Printf("├─%-10s─┼─%8s─┤\n", a, b)

		for _, country := range countries {
			fmt.Printf("│ %-10s │ %8d │\n", country.Country, country.Teams)
		}

		fmt.Printf("╰─%-10s─┴─%8s─╯\n\n", a, b)

		cells, err := repo.DensestCells(dbStatsTopCells)
		if err != nil {
			return err
		}

		c := strings.Repeat("─", 16)
		fmt.Println("Densest H3 res-7 cells:")
		fmt.Printf("╭─%-16s─┬─%8s─╮\n", c, b)
		fmt.Printf("│ %-16s │ %8s │\n", "Cell", "Teams")
		fmt.Printf("├─%-16s─┼─%8s─┤\n", c, b)

		for _, cell := range cells {
			fmt.Printf("│ %-16s │ %8d │\n", cell.Cell.String(), cell.Teams)
		}

		fmt.Printf("╰─%-16s─┴─%8s─╯\n", c, b)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbStatsCmd.Flags().IntVar(
		&dbStatsTopCells,
		"top-cells",
		10,
		"Number of densest cells to list",
	)
}
