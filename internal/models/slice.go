package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrFractionalSliceID is returned when a slice identifier is numeric but not
// integer valued.
var ErrFractionalSliceID = errors.New("slice id is not integer valued")

// SliceID identifies the same slice of the same nodule across the contour
// records, the axis records and the diameter file. All three sources decode
// their identifiers through ParseSliceID so that equality is the same
// everywhere.
type SliceID int64

// ParseSliceID parses a slice identifier token. Integer-valued numbers are
// accepted in any of the forms "41", "41.0" or "\"41\""; fractional values
// are rejected rather than truncated. Quotes must enclose the whole token.
func ParseSliceID(token string) (SliceID, error) {
	s := strings.TrimSpace(token)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return 0, fmt.Errorf("empty slice id")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return SliceID(n), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid slice id %q: %w", token, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q", ErrFractionalSliceID, token)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("slice id %q out of range", token)
	}
	return SliceID(f), nil
}

// Equal reports whether two identifiers refer to the same slice.
func (s SliceID) Equal(o SliceID) bool {
	return s == o
}

func (s SliceID) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (s *SliceID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("slice id is null")
	}
	id, err := ParseSliceID(string(data))
	if err != nil {
		return err
	}
	*s = id
	return nil
}

// MarshalJSON writes the identifier as a JSON number.
func (s SliceID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(s))
}

// KeySet is a set of key-slice identifiers.
type KeySet map[SliceID]struct{}

// NewKeySet builds a set from the given identifiers.
func NewKeySet(ids ...SliceID) KeySet {
	ks := make(KeySet, len(ids))
	for _, id := range ids {
		ks.Add(id)
	}
	return ks
}

// Add inserts id into the set.
func (ks KeySet) Add(id SliceID) {
	ks[id] = struct{}{}
}

// Contains reports whether id is a member. A nil set contains nothing.
func (ks KeySet) Contains(id SliceID) bool {
	_, ok := ks[id]
	return ok
}

// Point is a planar coordinate pair in source units (unscaled).
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// PointSet is the raw contour sample of one slice.
type PointSet []Point

// Segment is a pair of endpoints, used for both diameters and axes.
type Segment struct {
	P1 Point `json:"p1" msgpack:"p1"`
	P2 Point `json:"p2" msgpack:"p2"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return math.Hypot(s.P2.X-s.P1.X, s.P2.Y-s.P1.Y)
}

// ContourSlice is one slice's contour of one nodule.
type ContourSlice struct {
	// Nodule is the index of the owning nodule in the record file
	Nodule int

	// Slice is the contour's slice identifier
	Slice SliceID

	// Points is the first ring of the contour's data
	Points PointSet
}

// DiameterRecord holds computed long (P1,P2) and short (P3,P4) diameter
// endpoints for one slice, as stored in the external diameter file.
type DiameterRecord struct {
	Slice SliceID
	Long  Segment
	Short Segment
}

// AxisRecord holds the reference axes stored with a nodule. Long and Short
// are nil when the record carries no such axis.
type AxisRecord struct {
	// Nodule is the index of the owning nodule in the record file
	Nodule int

	// Slice is the nodule's key slice
	Slice SliceID

	Long  *Segment
	Short *Segment
}
