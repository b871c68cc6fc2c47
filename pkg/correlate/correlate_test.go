package correlate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nodulevis/internal/models"
	"nodulevis/pkg/hull"
)

func square(offset float64) hull.Hull {
	return hull.Reduce(models.PointSet{{X: offset, Y: 0}, {X: offset + 1, Y: 0}, {X: offset + 1, Y: 1}, {X: offset, Y: 1}})
}

// TestCorrelateRequiresAllThree checks that only slices with a hull, an axis
// and a diameter are matched
func TestCorrelateRequiresAllThree(t *testing.T) {
	hulls := []SliceHull{
		{Slice: 1, Hull: square(0)},
		{Slice: 2, Hull: square(1)},
		{Slice: 3, Hull: square(2)},
	}
	axes := []models.AxisRecord{{Slice: 2}, {Slice: 3}}
	diameters := []models.DiameterRecord{{Slice: 1}, {Slice: 2}, {Slice: 4}}

	matches, stats := Correlate(hulls, axes, diameters)
	require.Len(t, matches, 1)
	require.Equal(t, models.SliceID(2), matches[0].Slice)
	require.Equal(t, hulls[1], matches[0].Hull)
	require.Equal(t, Stats{Diameters: 3, Matched: 1, UnmatchedDiameters: 2, Matches: 1}, stats)
}

// TestCorrelateCrossProduct verifies colliding keys yield every combination
func TestCorrelateCrossProduct(t *testing.T) {
	hulls := []SliceHull{
		{Nodule: 0, Slice: 5, Hull: square(0)},
		{Nodule: 1, Slice: 5, Hull: square(3)},
	}
	axes := []models.AxisRecord{{Nodule: 0, Slice: 5}, {Nodule: 1, Slice: 5}}
	diameters := []models.DiameterRecord{{Slice: 5}}

	matches, stats := Correlate(hulls, axes, diameters)
	require.Len(t, matches, 4)
	require.Equal(t, 1, stats.Matched)
	require.Equal(t, 4, stats.Matches)

	var pairs [][2]int
	for _, m := range matches {
		pairs = append(pairs, [2]int{m.Hull.Nodule, m.Axis.Nodule})
	}
	require.Equal(t, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, pairs)
}

// TestCorrelateFollowsDiameterOrder checks output order is diameter order
func TestCorrelateFollowsDiameterOrder(t *testing.T) {
	hulls := []SliceHull{{Slice: 1, Hull: square(0)}, {Slice: 2, Hull: square(0)}, {Slice: 3, Hull: square(0)}}
	axes := []models.AxisRecord{{Slice: 1}, {Slice: 2}, {Slice: 3}}
	diameters := []models.DiameterRecord{{Slice: 3}, {Slice: 1}, {Slice: 2}, {Slice: 1}}

	matches, _ := Correlate(hulls, axes, diameters)

	var got []models.SliceID
	for _, m := range matches {
		got = append(got, m.Slice)
	}
	require.Equal(t, []models.SliceID{3, 1, 2, 1}, got)
}

func TestCorrelateEmpty(t *testing.T) {
	matches, stats := Correlate(nil, nil, []models.DiameterRecord{{Slice: 1}})
	require.Empty(t, matches)
	require.Equal(t, 1, stats.UnmatchedDiameters)
}
