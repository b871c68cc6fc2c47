// Package correlate joins hulls, reference axes and computed diameters that
// describe the same slice.
package correlate

import (
	"nodulevis/internal/models"
	"nodulevis/pkg/hull"
)

// SliceHull is the hull of one contour slice.
type SliceHull struct {
	Nodule int
	Slice  models.SliceID
	Hull   hull.Hull
}

// Match is one combined record for a slice present in all three sources.
type Match struct {
	Slice    models.SliceID
	Hull     SliceHull
	Diameter models.DiameterRecord
	Axis     models.AxisRecord
}

// Stats counts what the correlation kept and dropped.
type Stats struct {
	// Diameters is the number of diameter records considered
	Diameters int

	// Matched counts diameters that produced at least one match
	Matched int

	// UnmatchedDiameters counts diameters without a hull or an axis record
	UnmatchedDiameters int

	// Matches is the number of emitted matches
	Matches int
}

// Correlate emits one Match per (hull, axis) pair that shares a diameter's
// slice id. Output follows diameter input order; within one diameter, hulls
// and axes keep their input order. Diameters missing a hull or an axis are
// dropped and counted.
func Correlate(hulls []SliceHull, axes []models.AxisRecord, diameters []models.DiameterRecord) ([]Match, Stats) {
	hullIndex := make(map[models.SliceID][]SliceHull)
	for _, h := range hulls {
		hullIndex[h.Slice] = append(hullIndex[h.Slice], h)
	}
	axisIndex := make(map[models.SliceID][]models.AxisRecord)
	for _, a := range axes {
		axisIndex[a.Slice] = append(axisIndex[a.Slice], a)
	}

	var (
		matches []Match
		stats   = Stats{Diameters: len(diameters)}
	)
	for _, d := range diameters {
		hs, as := hullIndex[d.Slice], axisIndex[d.Slice]
		if len(hs) == 0 || len(as) == 0 {
			stats.UnmatchedDiameters++
			continue
		}
		stats.Matched++
		for _, h := range hs {
			for _, a := range as {
				matches = append(matches, Match{
					Slice:    d.Slice,
					Hull:     h,
					Diameter: d,
					Axis:     a,
				})
			}
		}
	}
	stats.Matches = len(matches)

	return matches, stats
}
