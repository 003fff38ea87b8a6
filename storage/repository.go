// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

// Package storage persists resolved team locations to DuckDB for
// offline analysis of the map data between scrape runs.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/uber/h3-go/v4"

	"github.com/FIRSTMap/scraper/spatial"
)

// ResolvedTeam is a team together with the outcome of its location
// resolution, in the shape the teams table stores it.
type ResolvedTeam struct {
	Key        string
	TeamNumber int
	Name       string
	Country    string
	Division   string
	City       string
	Postal     string
	Point      spatial.Point
	Tier       string
	H3Res7     int64
	UpdatedAt  time.Time
}

func (t *ResolvedTeam) computeH3() error {
	if t.Point.IsZero() {
		t.H3Res7 = 0

		return nil
	}

	latLng := h3.NewLatLng(t.Point.Lat, t.Point.Lng)

	cell, err := h3.LatLngToCell(latLng, 7)
	if err != nil {
		return fmt.Errorf("error converting to h3 cell at res 7: %w", err)
	}

	t.H3Res7 = int64(cell)

	return nil
}

// CountryCount is the number of teams registered under one country code.
type CountryCount struct {
	Country string
	Teams   int
}

// TierCount is the number of teams resolved at one lookup tier.
type TierCount struct {
	Tier  string
	Teams int
}

// CellCount is the number of teams falling inside one H3 res-7 cell.
type CellCount struct {
	Cell  h3.Cell
	Teams int
}

// TeamRepository defines the interface for database operations.
type TeamRepository interface {
	// CreateSchema creates the database schema.
	CreateSchema() error
	// SaveTeams replaces the stored teams with the given run's results.
	SaveTeams(teams []*ResolvedTeam) error
	// CountTeams returns the number of stored teams.
	CountTeams() (int, error)
	// CountryCounts returns team counts per country, largest first.
	CountryCounts() ([]CountryCount, error)
	// TierCounts returns team counts per resolution tier.
	TierCounts() ([]TierCount, error)
	// DensestCells returns the H3 res-7 cells holding the most teams.
	DensestCells(limit int) ([]CellCount, error)
}

type sqlTeamRepository struct {
	db *sql.DB
}

func NewSQLTeamRepository(db *sql.DB) (TeamRepository, error) {
	// DuckDB needs to load the spatial extension
	_, err := db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return nil, err
	}

	return &sqlTeamRepository{db: db}, nil
}

func (r *sqlTeamRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS teams (
			key VARCHAR NOT NULL,
			team_number INTEGER NOT NULL,
			name VARCHAR,
			country CHAR(2),
			division VARCHAR,
			city VARCHAR,
			postal VARCHAR,
			point POINT_2D,
			tier VARCHAR NOT NULL,
			h3_res7 UBIGINT,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)

	return err
}

func (r *sqlTeamRepository) SaveTeams(teams []*ResolvedTeam) error {
	if len(teams) == 0 {
		return nil
	}

	for _, team := range teams {
		if err := team.computeH3(); err != nil {
			return fmt.Errorf("indexing team %s: %w", team.Key, err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback teams transaction: %v", err)
		}
	}()

	if _, err := tx.Exec("DELETE FROM teams"); err != nil {
		return fmt.Errorf("clearing previous run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO teams (
			key, team_number, name, country, division, city, postal,
			point, tier, h3_res7, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ST_Point(?, ?), ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()

	for _, team := range teams {
		updatedAt := team.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}

		_, err := stmt.Exec(
			team.Key,
			team.TeamNumber,
			nve(team.Name),
			nve(team.Country),
			nve(team.Division),
			nve(team.City),
			nve(team.Postal),
			team.Point.Lng,
			team.Point.Lat,
			team.Tier,
			nz(uint64(team.H3Res7)),
			updatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting team %s: %w", team.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing teams: %w", err)
	}

	return nil
}

func (r *sqlTeamRepository) CountTeams() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count)

	return count, err
}

func (r *sqlTeamRepository) CountryCounts() ([]CountryCount, error) {
	rows, err := r.db.Query(`
		SELECT COALESCE(country, '??') AS country, COUNT(*) AS teams
		FROM teams
		GROUP BY country
		ORDER BY teams DESC, country
	`)
	if err != nil {
		return nil, fmt.Errorf("querying country counts: %w", err)
	}
	defer rows.Close()

	var counts []CountryCount

	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.Country, &c.Teams); err != nil {
			return nil, err
		}

		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (r *sqlTeamRepository) TierCounts() ([]TierCount, error) {
	rows, err := r.db.Query(`
		SELECT tier, COUNT(*) AS teams
		FROM teams
		GROUP BY tier
		ORDER BY teams DESC, tier
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tier counts: %w", err)
	}
	defer rows.Close()

	var counts []TierCount

	for rows.Next() {
		var c TierCount
		if err := rows.Scan(&c.Tier, &c.Teams); err != nil {
			return nil, err
		}

		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (r *sqlTeamRepository) DensestCells(limit int) ([]CellCount, error) {
	rows, err := r.db.Query(`
		SELECT h3_res7, COUNT(*) AS teams
		FROM teams
		WHERE h3_res7 IS NOT NULL
		GROUP BY h3_res7
		ORDER BY teams DESC, h3_res7
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying densest cells: %w", err)
	}
	defer rows.Close()

	var counts []CellCount

	for rows.Next() {
		var (
			cell  uint64
			teams int
		)

		if err := rows.Scan(&cell, &teams); err != nil {
			return nil, err
		}

		counts = append(counts, CellCount{Cell: h3.Cell(cell), Teams: teams})
	}

	return counts, rows.Err()
}

func nve(v string) any {
	if len(v) == 0 {
		return nil
	}

	return v
}

func nz(v uint64) any {
	if v == 0 {
		return nil
	}

	return v
}
