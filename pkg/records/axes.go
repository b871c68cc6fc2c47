package records

import (
	"nodulevis/internal/models"
)

// AxisSet is the result of axis extraction.
type AxisSet struct {
	// Records holds one entry per nodule that names a key slice
	Records []models.AxisRecord

	// Keys is the set of key slices present in Records
	Keys models.KeySet

	// MissingKey counts nodules skipped for lacking a keySliceId
	MissingKey int
}

// Axes extracts the reference axes of every nodule. A nodule without a
// keySliceId cannot be correlated and is counted, not treated as an error.
func (d *Document) Axes() AxisSet {
	set := AxisSet{Keys: models.NewKeySet()}
	for i, n := range d.Nodules {
		if n.KeySliceID == nil {
			set.MissingKey++
			continue
		}
		set.Records = append(set.Records, models.AxisRecord{
			Nodule: i,
			Slice:  *n.KeySliceID,
			Long:   axisSegment(n.LongAxis),
			Short:  axisSegment(n.ShortAxis),
		})
		set.Keys.Add(*n.KeySliceID)
	}
	return set
}

// axisSegment converts a flat [x1,y1,x2,y2] array; absent axes map to nil.
func axisSegment(values []float64) *models.Segment {
	if len(values) != 4 {
		return nil
	}
	return &models.Segment{
		P1: models.Point{X: values[0], Y: values[1]},
		P2: models.Point{X: values[2], Y: values[3]},
	}
}
