// Package records decodes nodule measurement records: per-slice contour
// samples and the reference long/short axes stored with each nodule.
package records

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"nodulevis/internal/models"
)

// Document is a decoded record file.
type Document struct {
	// Source names the file the document was read from, for error messages
	Source string

	Nodules []Nodule
}

// Nodule is one entry of the ct_nodule collection.
type Nodule struct {
	KeySliceID *models.SliceID `json:"keySliceId"`
	LongAxis   []float64       `json:"longAxis"`
	ShortAxis  []float64       `json:"shortAxis"`
	Contours   []Contour       `json:"contour3D"`
}

// Contour is one slice of a nodule. Data holds one or more rings of
// [x, y(, z)] points; only the first ring is used.
type Contour struct {
	SliceID *models.SliceID `json:"sliceId"`
	Data    [][][]float64   `json:"data"`
}

type document struct {
	Nodules *[]Nodule `json:"ct_nodule"`
}

// Load reads and decodes a record file. The file is read completely and
// closed before returning.
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file, path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes a record document from r. source is used in error messages.
func Parse(r io.Reader, source string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read records: %w", source, err)
	}

	var raw document
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid record JSON: %w", source, err)
	}
	if raw.Nodules == nil {
		return nil, fmt.Errorf("%s: record has no ct_nodule collection", source)
	}

	doc := &Document{Source: source, Nodules: *raw.Nodules}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// validate rejects structurally malformed nodules. There is no partial
// recovery: one bad record aborts the document.
func (d *Document) validate() error {
	for i, n := range d.Nodules {
		if err := checkAxis(n.LongAxis); err != nil {
			return fmt.Errorf("%s: nodule %d: longAxis: %w", d.Source, i, err)
		}
		if err := checkAxis(n.ShortAxis); err != nil {
			return fmt.Errorf("%s: nodule %d: shortAxis: %w", d.Source, i, err)
		}

		for j, c := range n.Contours {
			if c.SliceID == nil {
				return fmt.Errorf("%s: nodule %d contour %d: missing sliceId", d.Source, i, j)
			}
			if len(c.Data) == 0 {
				return fmt.Errorf("%s: nodule %d contour %d (slice %s): missing point data", d.Source, i, j, c.SliceID)
			}
			for k, p := range c.Data[0] {
				if len(p) < 2 {
					return fmt.Errorf("%s: nodule %d contour %d (slice %s): point %d has %d coordinates, want at least 2",
						d.Source, i, j, c.SliceID, k, len(p))
				}
			}
		}
	}
	return nil
}

func checkAxis(values []float64) error {
	if len(values) != 0 && len(values) != 4 {
		return fmt.Errorf("expected 4 values [x1,y1,x2,y2], got %d", len(values))
	}
	return nil
}
