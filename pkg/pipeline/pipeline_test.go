package pipeline

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nodulevis/internal/models"
	"nodulevis/pkg/diameter"
	"nodulevis/pkg/hull"
	"nodulevis/pkg/records"
)

// Nodule 0 has a proper key slice 2, nodule 1 a collinear key slice 3,
// nodule 2 no key slice at all
const testRecords = `{
  "ct_nodule": [
    {
      "keySliceId": 2,
      "longAxis": [0, 0, 10, 10],
      "contour3D": [
        {"sliceId": 1, "data": [[[0, 0], [5, 0], [5, 5]]]},
        {"sliceId": 2, "data": [[[0, 0], [10, 0], [10, 10], [0, 10], [4, 4]]]}
      ]
    },
    {
      "keySliceId": 3,
      "shortAxis": [0, 0, 1, 1],
      "contour3D": [
        {"sliceId": 3, "data": [[[0, 0], [1, 1], [2, 2]]]}
      ]
    },
    {
      "contour3D": [
        {"sliceId": 9, "data": [[[0, 0], [1, 0], [1, 1]]]}
      ]
    }
  ]
}`

const testDiameters = `1 0 0 5 5 5 0 0 5
2 0 0 10 10 10 0 0 10
3 0 0 2 2 0 0 1 1
4 0 0 1 1 1 0 0 1
`

func writeInputs(t *testing.T, recordsContent, diametersContent string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	rec := filepath.Join(dir, "records.json")
	dia := filepath.Join(dir, "diameters.txt")
	require.NoError(t, os.WriteFile(rec, []byte(recordsContent), 0644))
	require.NoError(t, os.WriteFile(dia, []byte(diametersContent), 0644))
	return rec, dia
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "", 0)
}

func TestProcess(t *testing.T) {
	rec, dia := writeInputs(t, testRecords, testDiameters)

	var logs bytes.Buffer
	p := NewPipeline(&Params{
		RecordsFile:   rec,
		DiametersFile: dia,
		ParsePolicy:   diameter.Abort,
		CanvasSize:    800,
		Margin:        10,
		Logger:        quietLogger(&logs),
	})
	require.NoError(t, p.Process())

	summary := p.GetSummary()
	require.Equal(t, 2, summary.Slices)
	require.Equal(t, 1, summary.Rendered)
	require.Equal(t, 1, summary.Degenerate)
	require.Equal(t, 0, summary.UnmatchedDiameters)
	require.Equal(t, 2, summary.Diameters, "slices 1 and 4 are not key slices")
	require.Equal(t, 1, summary.MissingKeySlice)
	require.Equal(t, "1 of 2 slices rendered, 1 skipped as degenerate, 0 diameters unmatched", summary.String())

	scenes := p.Scenes()
	require.Len(t, scenes, 1)
	s := scenes[0]
	require.Equal(t, models.SliceID(2), s.Slice)
	require.Len(t, s.Polygon, 4)
	require.NotNil(t, s.LongAxis)
	require.Nil(t, s.ShortAxis)
	require.Equal(t, s.Polygon[0], s.LongDiameter.P1)

	require.InDelta(t, 14.142135, summary.LongMean, 1e-5)
	require.Equal(t, 0.0, summary.LongStdDev)
	require.Contains(t, logs.String(), "no keySliceId")
}

func TestProcessParsePolicy(t *testing.T) {
	bad := testDiameters + "2 0 0 10\n"
	rec, dia := writeInputs(t, testRecords, bad)

	var logs bytes.Buffer
	p := NewPipeline(&Params{RecordsFile: rec, DiametersFile: dia, Logger: quietLogger(&logs)})
	err := p.Process()
	require.Error(t, err)

	var perr *diameter.ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 5, perr.Line)
	require.Equal(t, dia, perr.File)

	p = NewPipeline(&Params{RecordsFile: rec, DiametersFile: dia, ParsePolicy: diameter.Skip, Logger: quietLogger(&logs)})
	require.NoError(t, p.Process())
	require.Equal(t, 1, p.GetSummary().SkippedLines)
	require.Len(t, p.SkippedLines(), 1)
	require.Contains(t, logs.String(), "skipping diameter line")
}

func TestProcessUnmatched(t *testing.T) {
	// Slice 3 is a key slice with a diameter, but its only contour belongs
	// to slice 7, so there is no hull
	recordJSON := `{"ct_nodule": [{"keySliceId": 3, "contour3D": [{"sliceId": 7, "data": [[[0,0],[1,0],[1,1]]]}]}]}`
	rec, dia := writeInputs(t, recordJSON, "3 0 0 1 1 1 0 0 1\n")

	var logs bytes.Buffer
	p := NewPipeline(&Params{RecordsFile: rec, DiametersFile: dia, Logger: quietLogger(&logs)})
	require.NoError(t, p.Process())
	require.Equal(t, 1, p.GetSummary().UnmatchedDiameters)
	require.Empty(t, p.Scenes())
}

// TestProcessFarDiameter skips a slice whose diameter endpoint cannot be
// mapped to a pixel and keeps going
func TestProcessFarDiameter(t *testing.T) {
	far := strings.Replace(testDiameters, "2 0 0 10 10", "2 0 0 1e300 10", 1)
	rec, dia := writeInputs(t, testRecords, far)

	var logs bytes.Buffer
	p := NewPipeline(&Params{RecordsFile: rec, DiametersFile: dia, Logger: quietLogger(&logs)})
	require.NoError(t, p.Process())

	summary := p.GetSummary()
	require.Equal(t, 0, summary.Rendered)
	require.Equal(t, 2, summary.Degenerate)
	require.Empty(t, p.Scenes())
	require.Contains(t, logs.String(), "coordinate outside pixel range")
}

func TestProcessStructuralError(t *testing.T) {
	rec, dia := writeInputs(t, `{"ct_nodule": [{"contour3D": [{"data": []}]}]}`, testDiameters)

	p := NewPipeline(&Params{RecordsFile: rec, DiametersFile: dia})
	err := p.Process()
	require.Error(t, err)
	require.Contains(t, err.Error(), rec)
	require.Contains(t, err.Error(), "nodule 0 contour 0")
}

func TestProcessMissingFile(t *testing.T) {
	rec, _ := writeInputs(t, testRecords, testDiameters)

	p := NewPipeline(&Params{RecordsFile: rec, DiametersFile: filepath.Join(t.TempDir(), "none.txt")})
	require.ErrorIs(t, p.Process(), os.ErrNotExist)
}

// TestProcessComputedDiameters feeds the pipeline a diameter file produced
// from the same records, as the extract command does
func TestProcessComputedDiameters(t *testing.T) {
	rec, _ := writeInputs(t, testRecords, "")
	dia := filepath.Join(t.TempDir(), "computed.txt")

	doc, err := records.Load(rec)
	require.NoError(t, err)

	var computed []models.DiameterRecord
	for _, c := range doc.Contours() {
		long, short, err := diameter.Compute(hull.Reduce(c.Points))
		if err != nil {
			continue
		}
		computed = append(computed, models.DiameterRecord{Slice: c.Slice, Long: long, Short: short})
	}
	require.Len(t, computed, 3, "the collinear slice 3 has no diameters")
	require.NoError(t, diameter.WriteFile(dia, computed))

	var logs bytes.Buffer
	p := NewPipeline(&Params{RecordsFile: rec, DiametersFile: dia, Logger: quietLogger(&logs)})
	require.NoError(t, p.Process())

	summary := p.GetSummary()
	require.Equal(t, 1, summary.Rendered)
	require.Equal(t, 0, summary.Degenerate)
	require.Equal(t, 1, summary.Diameters)

	// Computed endpoints are hull vertices, so they land on polygon pixels
	s := p.Scenes()[0]
	require.Contains(t, s.Polygon, s.LongDiameter.P1)
	require.Contains(t, s.Polygon, s.LongDiameter.P2)
}
