package visualization

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawLine rasterizes a segment with Bresenham's algorithm, stamping a
// square brush of the given width at each step. The segment is clipped to
// the image first, so only visible steps are walked.
func drawLine(img draw.Image, x0, y0, x1, y1, width int, c color.Color) {
	var ok bool
	x0, y0, x1, y1, ok = clipSegment(x0, y0, x1, y1, img.Bounds().Inset(-width))
	if !ok {
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(img, x0, y0, width, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// clipSegment clips a segment to r with the Liang-Barsky algorithm. It
// reports false when no part of the segment lies inside r.
func clipSegment(x0, y0, x1, y1 int, r image.Rectangle) (int, int, int, int, bool) {
	fx, fy := float64(x0), float64(y0)
	dx, dy := float64(x1)-fx, float64(y1)-fy

	t0, t1 := 0.0, 1.0
	edges := [4]struct{ p, q float64 }{
		{-dx, fx - float64(r.Min.X)},
		{dx, float64(r.Max.X-1) - fx},
		{-dy, fy - float64(r.Min.Y)},
		{dy, float64(r.Max.Y-1) - fy},
	}
	for _, e := range edges {
		if e.p == 0 {
			// Parallel to this edge
			if e.q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := e.q / e.p
		if e.p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}

	if t1 < 1 {
		x1 = int(math.Round(fx + t1*dx))
		y1 = int(math.Round(fy + t1*dy))
	}
	if t0 > 0 {
		x0 = int(math.Round(fx + t0*dx))
		y0 = int(math.Round(fy + t0*dy))
	}
	return x0, y0, x1, y1, true
}

// drawDashedLine draws an axis-aligned or diagonal dashed line.
func drawDashedLine(img draw.Image, x0, y0, x1, y1, dash int, c color.Color) {
	n := max(abs(x1-x0), abs(y1-y0))
	if n == 0 {
		img.Set(x0, y0, c)
		return
	}
	for i := 0; i <= n; i++ {
		if (i/dash)%2 == 1 {
			continue
		}
		x := x0 + (x1-x0)*i/n
		y := y0 + (y1-y0)*i/n
		img.Set(x, y, c)
	}
}

func stamp(img draw.Image, x, y, width int, c color.Color) {
	lo := -(width - 1) / 2
	hi := lo + width
	b := img.Bounds()
	for dy := lo; dy < hi; dy++ {
		for dx := lo; dx < hi; dx++ {
			p := image.Point{X: x + dx, Y: y + dy}
			if p.In(b) {
				img.Set(p.X, p.Y, c)
			}
		}
	}
}

// drawText writes s with its baseline at (x, y).
func drawText(img draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textWidth returns the advance of s in pixels.
func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
