package diameter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nodulevis/internal/models"
)

// FormatRecord renders a record as one line (without newline). Floats use
// the shortest representation that parses back to the same value.
func FormatRecord(rec models.DiameterRecord) string {
	values := []float64{
		rec.Long.P1.X, rec.Long.P1.Y, rec.Long.P2.X, rec.Long.P2.Y,
		rec.Short.P1.X, rec.Short.P1.Y, rec.Short.P2.X, rec.Short.P2.Y,
	}

	var b strings.Builder
	b.WriteString(rec.Slice.String())
	for _, v := range values {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// Write writes records one per line.
func Write(w io.Writer, records []models.DiameterRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(FormatRecord(rec) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes records to path, creating the parent directory.
func WriteFile(path string, records []models.DiameterRecord) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create diameter file: %w", err)
	}

	if err := Write(file, records); err != nil {
		file.Close()
		return fmt.Errorf("failed to write diameter file: %w", err)
	}
	return file.Close()
}
