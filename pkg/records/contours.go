package records

import (
	"nodulevis/internal/models"
)

// Contours flattens every nodule's contours into per-slice point sets, in
// record order. Coordinates are copied unchanged.
func (d *Document) Contours() []models.ContourSlice {
	var out []models.ContourSlice
	for i, n := range d.Nodules {
		for _, c := range n.Contours {
			ring := c.Data[0]
			points := make(models.PointSet, len(ring))
			for k, p := range ring {
				points[k] = models.Point{X: p[0], Y: p[1]}
			}
			out = append(out, models.ContourSlice{
				Nodule: i,
				Slice:  *c.SliceID,
				Points: points,
			})
		}
	}
	return out
}

// FilterContours keeps the contours whose slice is in keys, preserving order.
func FilterContours(contours []models.ContourSlice, keys models.KeySet) []models.ContourSlice {
	var out []models.ContourSlice
	for _, c := range contours {
		if keys.Contains(c.Slice) {
			out = append(out, c)
		}
	}
	return out
}
