package diameter

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"nodulevis/internal/models"
	"nodulevis/pkg/hull"
)

var (
	// ErrDegenerateHull is returned when diameters are requested for a hull
	// that is not a polygon
	ErrDegenerateHull = errors.New("hull is not a polygon")

	// ErrNoShortDiameter is returned when no perpendicular chord exists
	ErrNoShortDiameter = errors.New("no chord perpendicular to the long diameter")
)

// Compute derives long and short diameters from a polygon hull.
//
// The long diameter joins the two vertices farthest apart. The short
// diameter is the longest chord perpendicular to the long diameter that
// starts at a hull vertex and ends on a hull edge across the long diameter.
func Compute(h hull.Hull) (long, short models.Segment, err error) {
	if !h.Renderable() {
		return long, short, ErrDegenerateHull
	}

	verts := make([]r2.Vec, len(h.Vertices))
	for i, p := range h.Vertices {
		verts[i] = r2.Vec{X: p.X, Y: p.Y}
	}

	p1, p2 := farthestPair(verts)
	long = models.Segment{P1: toPoint(p1), P2: toPoint(p2)}

	axis := r2.Sub(p2, p1)
	normal := r2.Unit(r2.Vec{X: -axis.Y, Y: axis.X})

	side := make([]float64, len(verts))
	for i, v := range verts {
		side[i] = r2.Cross(axis, r2.Sub(v, p1))
	}

	best := 0.0
	found := false
	n := len(verts)
	for i, v := range verts {
		if side[i] == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			next := (j + 1) % n
			// The edge must end on the other side of the long diameter
			if side[i] > 0 && side[next] > 0 || side[i] < 0 && side[next] < 0 {
				continue
			}
			hit, ok := lineSegmentIntersection(v, normal, verts[j], verts[next])
			if !ok {
				continue
			}
			if d := r2.Norm(r2.Sub(hit, v)); d > best {
				best = d
				short = models.Segment{P1: toPoint(v), P2: toPoint(hit)}
				found = true
			}
		}
	}

	if !found {
		return long, short, ErrNoShortDiameter
	}
	return long, short, nil
}

// farthestPair returns the first pair of vertices at maximum distance.
func farthestPair(verts []r2.Vec) (r2.Vec, r2.Vec) {
	var a, b r2.Vec
	best := -1.0
	for i := range verts {
		for j := i + 1; j < len(verts); j++ {
			if d := r2.Norm2(r2.Sub(verts[i], verts[j])); d > best {
				best = d
				a, b = verts[i], verts[j]
			}
		}
	}
	return a, b
}

// lineSegmentIntersection intersects the infinite line through q with
// direction dir against the segment a-b.
func lineSegmentIntersection(q, dir, a, b r2.Vec) (r2.Vec, bool) {
	s := r2.Sub(b, a)
	denom := r2.Cross(dir, s)
	if denom == 0 {
		return r2.Vec{}, false
	}
	u := r2.Cross(r2.Sub(a, q), dir) / denom
	const eps = 1e-12
	if u < -eps || u > 1+eps || math.IsNaN(u) {
		return r2.Vec{}, false
	}
	return r2.Add(a, r2.Scale(u, s)), true
}

func toPoint(v r2.Vec) models.Point {
	return models.Point{X: v.X, Y: v.Y}
}
