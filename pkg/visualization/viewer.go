// Package visualization draws normalized scenes to images.
//
// The renderer only consumes scene.Scene values; it never recomputes
// geometry. Tick labels are obtained from the scene's inverse map so they
// show source units.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"

	"nodulevis/pkg/scene"
)

// Gutter sizes around the canvas, in pixels.
const (
	gutterLeft   = 64
	gutterTop    = 8
	gutterRight  = 16
	gutterBottom = 28
)

// Renderer draws scenes with a fixed style.
type Renderer struct {
	style Style
}

// NewRenderer creates a renderer.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// CanvasOrigin returns where canvas pixel (0,0) lands in a rendered image.
func CanvasOrigin() image.Point {
	return image.Point{X: gutterLeft, Y: gutterTop}
}

// Render draws one scene: the closed hull polyline, the computed diameters,
// the reference axes when present, the slice label and the tick labels.
func (r *Renderer) Render(s scene.Scene) *image.NRGBA {
	canvas := int(s.Map.Canvas)
	img := imaging.New(gutterLeft+canvas+gutterRight, gutterTop+canvas+gutterBottom, r.style.Background)
	origin := CanvasOrigin()

	r.drawTicks(img, s, canvas, origin)

	line := func(seg scene.PixelSegment, c color.Color) {
		drawLine(img,
			origin.X+seg.P1.X, origin.Y+seg.P1.Y,
			origin.X+seg.P2.X, origin.Y+seg.P2.Y,
			r.style.LineWidth, c)
	}

	n := len(s.Polygon)
	for i := 0; i < n; i++ {
		line(scene.PixelSegment{P1: s.Polygon[i], P2: s.Polygon[(i+1)%n]}, r.style.Hull)
	}

	line(s.LongDiameter, r.style.LongDiameter)
	line(s.ShortDiameter, r.style.ShortDiameter)

	if s.LongAxis != nil {
		line(*s.LongAxis, r.style.LongAxis)
	}
	if s.ShortAxis != nil {
		line(*s.ShortAxis, r.style.ShortAxis)
	}

	drawText(img, origin.X+10, origin.Y+30, fmt.Sprintf("Slice ID: %s", s.Slice), r.style.Text)

	return img
}

// drawTicks draws dashed grid lines and source-unit labels along the
// bottom and left edges of the canvas.
func (r *Renderer) drawTicks(img draw.Image, s scene.Scene, canvas int, origin image.Point) {
	if r.style.Ticks < 2 {
		return
	}
	last := canvas - 1

	for _, t := range s.TicksX(r.style.Ticks) {
		x := origin.X + min(int(t.Pixel), last)
		drawDashedLine(img, x, origin.Y, x, origin.Y+last, 4, r.style.Grid)
		label := formatTick(t.Value)
		drawText(img, x-textWidth(label)/2, origin.Y+canvas+18, label, r.style.Text)
	}

	for _, t := range s.TicksY(r.style.Ticks) {
		y := origin.Y + min(int(t.Pixel), last)
		drawDashedLine(img, origin.X, y, origin.X+last, y, 4, r.style.Grid)
		label := formatTick(t.Value)
		drawText(img, origin.X-6-textWidth(label), y+4, label, r.style.Text)
	}
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// SaveScene renders s and writes it to filename. The format follows the
// file extension.
func (r *Renderer) SaveScene(s scene.Scene, filename string) error {
	if err := imaging.Save(r.Render(s), filename); err != nil {
		return fmt.Errorf("failed to save slice %s: %w", s.Slice, err)
	}
	return nil
}

// SceneFilename is the file name used for the index-th scene.
func SceneFilename(s scene.Scene, index int) string {
	return fmt.Sprintf("slice_%s_%03d.png", s.Slice, index)
}

// SaveSceneSequence renders every scene into outputDir using workers
// goroutines. Each worker renders into its own image. It returns the
// written paths in scene order, or the first error encountered.
func (r *Renderer) SaveSceneSequence(scenes []scene.Scene, outputDir string, workers int) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	type renderResult struct {
		index int
		path  string
		err   error
	}

	jobs := make(chan int)
	resultChan := make(chan renderResult)

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				path := filepath.Join(outputDir, SceneFilename(scenes[i], i))
				resultChan <- renderResult{index: i, path: path, err: r.SaveScene(scenes[i], path)}
			}
		}()
	}

	go func() {
		for i := range scenes {
			jobs <- i
		}
		close(jobs)
	}()

	paths := make([]string, len(scenes))
	var firstErr error
	for completed := 0; completed < len(scenes); completed++ {
		res := <-resultChan
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		paths[res.index] = res.path
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return paths, nil
}
