// Package diameter reads, writes and computes long/short diameter records.
//
// The on-disk format is plain text with one record per line and nine
// whitespace separated fields:
//
//	slice_id x1 y1 x2 y2 x3 y3 x4 y4
//
// (x1,y1)-(x2,y2) is the long diameter and (x3,y3)-(x4,y4) the short one.
package diameter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"nodulevis/internal/models"
)

// FieldCount is the number of fields on a diameter line.
const FieldCount = 9

var (
	// ErrFieldCount is returned for a line without exactly FieldCount fields
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrNotNumeric is returned for a coordinate that is not a number
	ErrNotNumeric = errors.New("non-numeric field")
)

// ParsePolicy selects what happens when a line cannot be parsed.
type ParsePolicy string

const (
	// Abort stops reading at the first malformed line
	Abort ParsePolicy = "abort"

	// Skip logs the malformed line, counts it and continues
	Skip ParsePolicy = "skip"
)

// ParsePolicyFromString validates a policy name.
func ParsePolicyFromString(s string) (ParsePolicy, error) {
	switch p := ParsePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case Abort, Skip:
		return p, nil
	case "":
		return Abort, nil
	default:
		return "", fmt.Errorf("invalid parse policy %q (must be abort or skip)", s)
	}
}

// ParseError describes a malformed diameter line.
type ParseError struct {
	File    string
	Line    int
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Content)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadOptions controls Read.
type ReadOptions struct {
	// Policy is applied to malformed lines; the zero value aborts
	Policy ParsePolicy

	// Keys, when non-nil, keeps only records whose slice is a member
	Keys models.KeySet

	// Source names the input in errors and warnings
	Source string

	// Logger receives skip warnings; nil uses the standard logger
	Logger *log.Logger
}

// ReadStats summarizes a read.
type ReadStats struct {
	// Lines is the number of non-blank lines seen
	Lines int

	// Skipped holds the parse errors of lines dropped under the Skip policy
	Skipped []*ParseError

	// Filtered counts well-formed records dropped by the key filter
	Filtered int
}

// ReadFile reads a diameter file. The file is read completely and closed
// before returning.
func ReadFile(path string, opts ReadOptions) ([]models.DiameterRecord, ReadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("failed to open diameter file: %w", err)
	}
	defer file.Close()

	if opts.Source == "" {
		opts.Source = path
	}
	return Read(file, opts)
}

// Read parses diameter records from r in input order.
func Read(r io.Reader, opts ReadOptions) ([]models.DiameterRecord, ReadStats, error) {
	var (
		records []models.DiameterRecord
		stats   ReadStats
	)
	source := opts.Source
	if source == "" {
		source = "<input>"
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		rec, err := ParseLine(line)
		if err != nil {
			perr := &ParseError{File: source, Line: lineNo, Content: line, Err: err}
			if opts.Policy != Skip {
				return nil, stats, perr
			}
			logf(opts.Logger, "Warning: skipping diameter line: %v", perr)
			stats.Skipped = append(stats.Skipped, perr)
			continue
		}

		if opts.Keys != nil && !opts.Keys.Contains(rec.Slice) {
			stats.Filtered++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("%s: failed to read diameters: %w", source, err)
	}

	return records, stats, nil
}

// ParseLine parses one record line. NaN and infinite coordinates are
// rejected as non-numeric.
func ParseLine(line string) (models.DiameterRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != FieldCount {
		return models.DiameterRecord{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), FieldCount)
	}

	id, err := models.ParseSliceID(fields[0])
	if err != nil {
		return models.DiameterRecord{}, err
	}

	var v [FieldCount - 1]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return models.DiameterRecord{}, fmt.Errorf("%w: field %d %q", ErrNotNumeric, i+2, fields[i+1])
		}
		v[i] = f
	}

	return models.DiameterRecord{
		Slice: id,
		Long: models.Segment{
			P1: models.Point{X: v[0], Y: v[1]},
			P2: models.Point{X: v[2], Y: v[3]},
		},
		Short: models.Segment{
			P1: models.Point{X: v[4], Y: v[5]},
			P2: models.Point{X: v[6], Y: v[7]},
		},
	}, nil
}

func logf(l *log.Logger, format string, args ...interface{}) {
	if l == nil {
		log.Printf(format, args...)
		return
	}
	l.Printf(format, args...)
}
