// Package scene maps one matched slice into canvas pixel space.
//
// A scene is built from a correlated hull, its computed diameters and its
// reference axes. One AffineMap, derived from the hull's bounds, is applied
// to every geometric entity of the scene so that all overlays share one
// frame. Transformed coordinates are floored to the pixel that contains
// them.
package scene

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"nodulevis/internal/models"
	"nodulevis/pkg/correlate"
	"nodulevis/pkg/hull"
)

// Default canvas geometry.
const (
	DefaultCanvasSize = 800
	DefaultMargin     = 10
)

// MaxPixelCoordinate bounds the magnitude of every transformed coordinate
// accepted by Build.
const MaxPixelCoordinate = math.MaxInt32

// ErrDegenerateScene is matched by every DegenerateError.
var ErrDegenerateScene = errors.New("degenerate scene")

// Reason explains why a scene could not be built.
type Reason string

const (
	// ReasonHull means the hull has fewer than three vertices
	ReasonHull Reason = "hull is not a polygon"

	// ReasonZeroExtent means the bounds have zero width or height
	ReasonZeroExtent Reason = "zero extent bounds"

	// ReasonCoordinateRange means a transformed coordinate is not finite or
	// exceeds MaxPixelCoordinate
	ReasonCoordinateRange Reason = "coordinate outside pixel range"
)

// DegenerateError reports a non-renderable scene.
type DegenerateError struct {
	Slice  models.SliceID
	Reason Reason
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("slice %s: %s: %s", e.Slice, ErrDegenerateScene, e.Reason)
}

func (e *DegenerateError) Is(target error) bool {
	return target == ErrDegenerateScene
}

// Bounds is the axis-aligned extent of a hull in source units.
type Bounds struct {
	MinX float64 `msgpack:"min_x"`
	MinY float64 `msgpack:"min_y"`
	MaxX float64 `msgpack:"max_x"`
	MaxY float64 `msgpack:"max_y"`
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// BoundsOf computes the bounds of a hull. It returns false for a hull
// without vertices, for which bounds are undefined.
func BoundsOf(h hull.Hull) (Bounds, bool) {
	if len(h.Vertices) == 0 {
		return Bounds{}, false
	}
	xs := make([]float64, len(h.Vertices))
	ys := make([]float64, len(h.Vertices))
	for i, p := range h.Vertices {
		xs[i], ys[i] = p.X, p.Y
	}
	return Bounds{
		MinX: floats.Min(xs),
		MinY: floats.Min(ys),
		MaxX: floats.Max(xs),
		MaxY: floats.Max(ys),
	}, true
}

// Pixel is an integer canvas coordinate.
type Pixel struct {
	X int `msgpack:"x"`
	Y int `msgpack:"y"`
}

// PixelSegment is a segment in canvas coordinates.
type PixelSegment struct {
	P1 Pixel `msgpack:"p1"`
	P2 Pixel `msgpack:"p2"`
}

// Scene is the normalized geometry of one matched slice. It is never
// modified after Build returns it.
type Scene struct {
	Slice  models.SliceID `msgpack:"slice_id"`
	Nodule int            `msgpack:"nodule"`

	// Polygon is the hull in canvas pixels, in hull vertex order
	Polygon []Pixel `msgpack:"polygon"`

	LongDiameter  PixelSegment `msgpack:"long_diameter"`
	ShortDiameter PixelSegment `msgpack:"short_diameter"`

	// LongAxis and ShortAxis are nil when the nodule has no such axis
	LongAxis  *PixelSegment `msgpack:"long_axis"`
	ShortAxis *PixelSegment `msgpack:"short_axis"`

	Map    AffineMap `msgpack:"map"`
	Bounds Bounds    `msgpack:"bounds"`

	// Source geometry, kept for reporting
	Diameter models.DiameterRecord `msgpack:"-"`
}

// Normalizer builds scenes on a fixed canvas.
type Normalizer struct {
	// CanvasSize is the side of the square canvas in pixels
	CanvasSize float64

	// Margin is added around the bounds, in source units
	Margin float64
}

// NewNormalizer returns a normalizer with the default canvas geometry.
func NewNormalizer() Normalizer {
	return Normalizer{CanvasSize: DefaultCanvasSize, Margin: DefaultMargin}
}

// Build normalizes a match into a scene. Degenerate geometry is detected
// before any division and reported as a *DegenerateError.
func (n Normalizer) Build(m correlate.Match) (Scene, error) {
	h := m.Hull.Hull
	if !h.Renderable() {
		return Scene{}, &DegenerateError{Slice: m.Slice, Reason: ReasonHull}
	}

	bounds, ok := BoundsOf(h)
	if !ok || bounds.Width() == 0 || bounds.Height() == 0 {
		return Scene{}, &DegenerateError{Slice: m.Slice, Reason: ReasonZeroExtent}
	}

	am, err := NewAffineMap(bounds, n.CanvasSize, n.Margin)
	if err != nil {
		return Scene{}, err
	}

	// Diameters and axes come from other sources than the hull and may lie
	// anywhere
	points := append([]models.Point{
		m.Diameter.Long.P1, m.Diameter.Long.P2,
		m.Diameter.Short.P1, m.Diameter.Short.P2,
	}, h.Vertices...)
	for _, seg := range []*models.Segment{m.Axis.Long, m.Axis.Short} {
		if seg != nil {
			points = append(points, seg.P1, seg.P2)
		}
	}
	for _, p := range points {
		if !am.representable(p) {
			return Scene{}, &DegenerateError{Slice: m.Slice, Reason: ReasonCoordinateRange}
		}
	}

	polygon := make([]Pixel, len(h.Vertices))
	for i, v := range h.Vertices {
		polygon[i] = am.Pixel(v)
	}

	return Scene{
		Slice:         m.Slice,
		Nodule:        m.Hull.Nodule,
		Polygon:       polygon,
		LongDiameter:  am.Segment(m.Diameter.Long),
		ShortDiameter: am.Segment(m.Diameter.Short),
		LongAxis:      am.optionalSegment(m.Axis.Long),
		ShortAxis:     am.optionalSegment(m.Axis.Short),
		Map:           am,
		Bounds:        bounds,
		Diameter:      m.Diameter,
	}, nil
}

// AffineMap maps source coordinates to canvas coordinates:
//
//	x' = (x + OffsetX) * ScaleX,  y' = (y + OffsetY) * ScaleY
//
// where Offset = margin - min. Axes are scaled independently, so the hull
// fills the canvas but its aspect ratio is not preserved.
type AffineMap struct {
	ScaleX  float64 `msgpack:"scale_x"`
	ScaleY  float64 `msgpack:"scale_y"`
	OffsetX float64 `msgpack:"offset_x"`
	OffsetY float64 `msgpack:"offset_y"`
	Canvas  float64 `msgpack:"canvas"`
}

// NewAffineMap derives the map for bounds on a canvas of the given size.
func NewAffineMap(b Bounds, canvas, margin float64) (AffineMap, error) {
	if canvas <= 0 || margin < 0 || math.IsNaN(margin) {
		return AffineMap{}, fmt.Errorf("invalid canvas geometry: size %g, margin %g", canvas, margin)
	}
	spanX := b.Width() + 2*margin
	spanY := b.Height() + 2*margin
	if b.Width() < 0 || b.Height() < 0 || spanX == 0 || spanY == 0 {
		return AffineMap{}, fmt.Errorf("%w: %s", ErrDegenerateScene, ReasonZeroExtent)
	}
	return AffineMap{
		ScaleX:  canvas / spanX,
		ScaleY:  canvas / spanY,
		OffsetX: margin - b.MinX,
		OffsetY: margin - b.MinY,
		Canvas:  canvas,
	}, nil
}

// Apply transforms p into canvas coordinates without rounding.
func (m AffineMap) Apply(p models.Point) (x, y float64) {
	return (p.X + m.OffsetX) * m.ScaleX, (p.Y + m.OffsetY) * m.ScaleY
}

// Pixel transforms p and floors the result. It does not range check;
// Build rejects scenes with points that Pixel cannot represent.
func (m AffineMap) Pixel(p models.Point) Pixel {
	x, y := m.Apply(p)
	return Pixel{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

func (m AffineMap) representable(p models.Point) bool {
	x, y := m.Apply(p)
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.Abs(math.Floor(v)) > MaxPixelCoordinate {
			return false
		}
	}
	return true
}

// Segment transforms both endpoints of s.
func (m AffineMap) Segment(s models.Segment) PixelSegment {
	return PixelSegment{P1: m.Pixel(s.P1), P2: m.Pixel(s.P2)}
}

func (m AffineMap) optionalSegment(s *models.Segment) *PixelSegment {
	if s == nil {
		return nil
	}
	ps := m.Segment(*s)
	return &ps
}

// Invert maps canvas coordinates back to source units. It is meant for
// labeling only.
func (m AffineMap) Invert(x, y float64) models.Point {
	return models.Point{X: x/m.ScaleX - m.OffsetX, Y: y/m.ScaleY - m.OffsetY}
}
