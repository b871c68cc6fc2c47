// Package pipeline runs the batch from input files to normalized scenes.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/gonum/stat"

	"nodulevis/pkg/correlate"
	"nodulevis/pkg/diameter"
	"nodulevis/pkg/hull"
	"nodulevis/pkg/records"
	"nodulevis/pkg/scene"
)

// Summary holds the counts reported at the end of a batch run.
type Summary struct {
	// Slices is the number of correlated slice matches considered
	Slices int

	// Rendered counts scenes that were built
	Rendered int

	// Degenerate counts matches skipped for degenerate geometry
	Degenerate int

	// Diameters is the number of diameter records kept by the key filter
	Diameters int

	// UnmatchedDiameters counts diameters without a hull or axis counterpart
	UnmatchedDiameters int

	// SkippedLines counts malformed diameter lines dropped under the skip policy
	SkippedLines int

	// MissingKeySlice counts nodules that carry no keySliceId
	MissingKeySlice int

	// Mean and standard deviation of the rendered scenes' computed
	// diameter lengths, in source units
	LongMean, LongStdDev   float64
	ShortMean, ShortStdDev float64
}

// String renders the one-line batch summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d of %d slices rendered, %d skipped as degenerate, %d diameters unmatched",
		s.Rendered, s.Slices, s.Degenerate, s.UnmatchedDiameters)
}

// Params holds the pipeline inputs.
type Params struct {
	// RecordsFile is the JSON nodule record file
	RecordsFile string

	// DiametersFile is the computed diameter text file
	DiametersFile string

	// ParsePolicy is applied to malformed diameter lines
	ParsePolicy diameter.ParsePolicy

	// CanvasSize and Margin define the scene normalization; a zero
	// CanvasSize selects the default geometry
	CanvasSize float64
	Margin     float64

	// Verbose enables step and per-slice progress output
	Verbose bool

	// Logger receives warnings; nil uses the standard logger
	Logger *log.Logger
}

// Pipeline turns a record file and a diameter file into normalized scenes.
//
// The process consists of several steps:
// 1. Reading the record file
// 2. Extracting reference axes and the key slice set
// 3. Reading the diameter file, filtered to key slices
// 4. Reducing key-slice contours to convex hulls
// 5. Correlating hulls, axes and diameters by slice id
// 6. Normalizing each match into a scene
//
// Both files are fully read and closed before step 4 starts.
type Pipeline struct {
	params *Params
	logger *log.Logger

	readStats diameter.ReadStats

	scenes  []scene.Scene
	summary Summary
}

// NewPipeline creates a pipeline for the given parameters.
func NewPipeline(params *Params) *Pipeline {
	logger := params.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Pipeline{
		params: params,
		logger: logger,
	}
}

// Process runs the complete pipeline. Structural errors in either input
// abort the run; degenerate slices and correlation misses are counted.
func (p *Pipeline) Process() error {
	// Step 1: Read inputs before any geometry
	p.step("Step 1: Reading nodule records...")
	doc, err := records.Load(p.params.RecordsFile)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	// Step 2: Axes and key slices
	p.step("Step 2: Extracting reference axes...")
	axes := doc.Axes()
	p.summary.MissingKeySlice = axes.MissingKey
	if axes.MissingKey > 0 {
		p.logger.Printf("Warning: %d nodules have no keySliceId and cannot be correlated", axes.MissingKey)
	}

	// Step 3: Diameters of key slices only
	p.step("Step 3: Reading computed diameters...")
	diameters, readStats, err := diameter.ReadFile(p.params.DiametersFile, diameter.ReadOptions{
		Policy: p.params.ParsePolicy,
		Keys:   axes.Keys,
		Logger: p.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to read diameters: %w", err)
	}
	p.readStats = readStats
	p.summary.Diameters = len(diameters)
	p.summary.SkippedLines = len(readStats.Skipped)

	// Step 4: Hulls of key-slice contours
	p.step("Step 4: Computing convex hulls...")
	contours := records.FilterContours(doc.Contours(), axes.Keys)
	hulls := make([]correlate.SliceHull, len(contours))
	for i, c := range contours {
		hulls[i] = correlate.SliceHull{
			Nodule: c.Nodule,
			Slice:  c.Slice,
			Hull:   hull.Reduce(c.Points),
		}
	}

	// Step 5: Correlation
	p.step("Step 5: Correlating slices...")
	matches, cstats := correlate.Correlate(hulls, axes.Records, diameters)
	p.summary.Slices = len(matches)
	p.summary.UnmatchedDiameters = cstats.UnmatchedDiameters

	// Step 6: Normalization
	p.step("Step 6: Normalizing scenes...")
	if err := p.normalize(matches); err != nil {
		return err
	}

	p.calculateStatistics()
	return nil
}

func (p *Pipeline) normalize(matches []correlate.Match) error {
	normalizer := scene.Normalizer{CanvasSize: p.params.CanvasSize, Margin: p.params.Margin}
	if normalizer.CanvasSize == 0 {
		normalizer = scene.NewNormalizer()
	}

	p.scenes = make([]scene.Scene, 0, len(matches))
	for _, m := range matches {
		s, err := normalizer.Build(m)
		if err != nil {
			var derr *scene.DegenerateError
			if errors.As(err, &derr) {
				p.summary.Degenerate++
				switch {
				case derr.Reason == scene.ReasonCoordinateRange:
					p.logger.Printf("Warning: skipping %v", err)
				case p.params.Verbose:
					p.logger.Printf("Skipping %v", err)
				}
				continue
			}
			return fmt.Errorf("failed to normalize slice %s: %w", m.Slice, err)
		}
		p.scenes = append(p.scenes, s)
	}
	p.summary.Rendered = len(p.scenes)
	return nil
}

// calculateStatistics fills the diameter length statistics of the summary.
func (p *Pipeline) calculateStatistics() {
	if len(p.scenes) == 0 {
		return
	}
	long := make([]float64, len(p.scenes))
	short := make([]float64, len(p.scenes))
	for i, s := range p.scenes {
		long[i] = s.Diameter.Long.Length()
		short[i] = s.Diameter.Short.Length()
	}
	p.summary.LongMean, p.summary.LongStdDev = meanStdDev(long)
	p.summary.ShortMean, p.summary.ShortStdDev = meanStdDev(short)
}

// meanStdDev is stat.MeanStdDev with a zero deviation for a single sample.
func meanStdDev(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func (p *Pipeline) step(msg string) {
	if p.params.Verbose {
		fmt.Println(msg)
	}
}

// Scenes returns the normalized scenes in correlation order.
func (p *Pipeline) Scenes() []scene.Scene {
	return p.scenes
}

// GetSummary returns the counts of the last run.
func (p *Pipeline) GetSummary() Summary {
	return p.summary
}

// SkippedLines returns the diameter lines dropped under the skip policy.
func (p *Pipeline) SkippedLines() []*diameter.ParseError {
	return p.readStats.Skipped
}
