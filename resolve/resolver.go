// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/FIRSTMap/scraper/spatial"
)

// Tier identifies which lookup strategy produced a coordinate.
type Tier string

// Lookup tiers in priority order. Postal codes are the most granular and
// least ambiguous signal when present; city/division/country is the best
// fallback when postal data is absent or unindexed; the manual table
// covers the residue neither automated tier reaches and can be grown
// without code changes.
const (
	TierPostal Tier = "postal"
	TierCity   Tier = "city"
	TierManual Tier = "manual"
	TierNone   Tier = "none"
)

// Gazetteer is the read-only lookup surface the resolver queries.
type Gazetteer interface {
	Postal(country, code string) (spatial.Point, bool)
	City(country, division, city string) (spatial.Point, bool)
	Manual(place string) (spatial.Point, bool)
}

// Resolver resolves corrected records against a gazetteer. It holds no
// per-record state and is safe for concurrent use.
type Resolver struct {
	gazetteer Gazetteer
	reporter  Reporter
	rules     []Rule
}

// NewResolver creates a resolver over the given gazetteer. Unresolvable
// records are handed to reporter.
func NewResolver(gazetteer Gazetteer, reporter Reporter, opts Options) *Resolver {
	return &Resolver{
		gazetteer: gazetteer,
		reporter:  reporter,
		rules:     Rules(opts),
	}
}

// Resolve applies the correction rules and tries the lookup tiers in
// priority order. It always produces a coordinate: a record no tier can
// place gets the (0, 0) placeholder and a reporter entry, never an
// error. The returned point is rounded to three decimals here and only
// here, whatever tier it came from.
func (rv *Resolver) Resolve(r *Record) (spatial.Point, Tier) {
	ApplyCorrections(r, rv.rules)

	if pt, ok := rv.gazetteer.Postal(r.Country, r.Postal); ok {
		return pt.Round(), TierPostal
	}

	if pt, ok := rv.gazetteer.City(r.Country, r.Division, r.City); ok {
		return pt.Round(), TierCity
	}

	place := r.Place()
	if pt, ok := rv.gazetteer.Manual(place); ok {
		return pt.Round(), TierManual
	}

	rv.reporter.Report(r.Key, place)

	return spatial.Point{}, TierNone
}

// Result pairs a record with its resolved coordinates.
type Result struct {
	Record *Record
	Point  spatial.Point
	Tier   Tier
}

// Metrics tracks per-tier outcomes of a resolution run.
type Metrics struct {
	Postal int
	City   int
	Manual int
	Broken int
}

// Merge combines two Metrics.
func (m *Metrics) Merge(o *Metrics) *Metrics {
	m.Postal += o.Postal
	m.City += o.City
	m.Manual += o.Manual
	m.Broken += o.Broken

	return m
}

func (m *Metrics) count(tier Tier) {
	switch tier {
	case TierPostal:
		m.Postal++
	case TierCity:
		m.City++
	case TierManual:
		m.Manual++
	case TierNone:
		m.Broken++
	}
}

// ResolveAll resolves every record using up to maxProcs workers
// (defaulting to the number of CPUs). Records are independent of each
// other, so order of execution does not matter; results keep the input
// order. Reporter implementations serialize their own writes.
func (rv *Resolver) ResolveAll(records []*Record, maxProcs int) ([]Result, *Metrics) {
	if maxProcs <= 0 {
		maxProcs = runtime.NumCPU()
	}

	n := len(records)

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Resolving team locations"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]Result, n)
	metricsChan := make(chan *Metrics, n)
	semaphore := make(chan struct{}, maxProcs)

	var wg sync.WaitGroup

	for i, record := range records {
		wg.Add(1)

		go func(i int, record *Record) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			pt, tier := rv.Resolve(record)
			results[i] = Result{Record: record, Point: pt, Tier: tier}

			var m Metrics

			m.count(tier)
			metricsChan <- &m

			if bar != nil {
				if err := bar.Add(1); err != nil {
					log.Printf("Updating progress bar: %v", err)
				}
			}
		}(i, record)
	}

	wg.Wait()
	close(metricsChan)

	var metrics Metrics
	for m := range metricsChan {
		metrics.Merge(m)
	}

	log.Printf(
		"Resolution complete - %d by postal code, %d by city, %d by manual override, %d unresolved",
		metrics.Postal, metrics.City, metrics.Manual, metrics.Broken,
	)

	return results, &metrics
}
