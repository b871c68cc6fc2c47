// Package hull reduces planar contour samples to their convex hull.
package hull

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"nodulevis/internal/models"
)

// Kind classifies the result of a hull reduction.
type Kind int

const (
	// Empty means the input had zero or one distinct point
	Empty Kind = iota
	// Segment means every distinct point lies on one line
	Segment
	// Polygon means the hull has at least three strictly turning vertices
	Polygon
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Segment:
		return "segment"
	case Polygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Hull is the convex boundary of a point set.
//
// Vertices are in the order the monotone chain emits them: counter-clockwise
// in a y-up frame, starting from the vertex with the lowest x (lowest y on
// ties). The polygon is implicitly closed; the first vertex is not repeated.
// For a Segment hull, Vertices holds the two extreme endpoints; for an Empty
// hull it is nil.
type Hull struct {
	Kind     Kind
	Vertices []models.Point
}

// Renderable reports whether the hull is a proper polygon.
func (h Hull) Renderable() bool {
	return h.Kind == Polygon
}

// Reduce computes the convex hull of points using Andrew's monotone chain.
// Collinear points on an edge are dropped. The input is not modified.
func Reduce(points models.PointSet) Hull {
	pts := distinct(points)
	switch len(pts) {
	case 0, 1:
		return Hull{Kind: Empty}
	case 2:
		return Hull{Kind: Segment, Vertices: []models.Point{toPoint(pts[0]), toPoint(pts[1])}}
	}

	chain := make([]r2.Vec, 0, 2*len(pts))

	// Lower chain
	for _, p := range pts {
		for len(chain) >= 2 && turn(chain[len(chain)-2], chain[len(chain)-1], p) <= 0 {
			chain = chain[:len(chain)-1]
		}
		chain = append(chain, p)
	}

	// Upper chain
	lower := len(chain) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(chain) >= lower && turn(chain[len(chain)-2], chain[len(chain)-1], p) <= 0 {
			chain = chain[:len(chain)-1]
		}
		chain = append(chain, p)
	}

	// The last point repeats the first
	chain = chain[:len(chain)-1]

	if len(chain) < 3 {
		// All points collinear: the chain collapses to the two extremes
		return Hull{Kind: Segment, Vertices: []models.Point{toPoint(pts[0]), toPoint(pts[len(pts)-1])}}
	}

	vertices := make([]models.Point, len(chain))
	for i, v := range chain {
		vertices[i] = toPoint(v)
	}
	return Hull{Kind: Polygon, Vertices: vertices}
}

// Contains reports whether p lies inside or on the boundary of a polygon
// hull, within tolerance eps.
func (h Hull) Contains(p models.Point, eps float64) bool {
	if h.Kind != Polygon {
		return false
	}
	q := toVec(p)
	n := len(h.Vertices)
	for i := 0; i < n; i++ {
		a := toVec(h.Vertices[i])
		b := toVec(h.Vertices[(i+1)%n])
		if turn(a, b, q) < -eps {
			return false
		}
	}
	return true
}

// turn is the z component of (b-a) x (c-b); positive for a left turn.
func turn(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, b))
}

// distinct returns the points sorted by (x, y) with duplicates removed.
func distinct(points models.PointSet) []r2.Vec {
	pts := make([]r2.Vec, len(points))
	for i, p := range points {
		pts[i] = toVec(p)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func toVec(p models.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func toPoint(v r2.Vec) models.Point {
	return models.Point{X: v.X, Y: v.Y}
}
