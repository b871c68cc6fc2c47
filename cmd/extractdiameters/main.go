package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"nodulevis/internal/models"
	"nodulevis/pkg/diameter"
	"nodulevis/pkg/hull"
	"nodulevis/pkg/records"
)

func main() {
	recordsFile := flag.String("records", "", "JSON file with ct_nodule records")
	outputFile := flag.String("output", "diameters_output.txt", "Diameter file to write")
	quiet := flag.Bool("quiet", false, "Do not print per-slice lengths")
	flag.Parse()

	if *recordsFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	doc, err := records.Load(*recordsFile)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	var out []models.DiameterRecord
	skipped := 0
	for _, c := range doc.Contours() {
		h := hull.Reduce(c.Points)
		long, short, err := diameter.Compute(h)
		if err != nil {
			log.Printf("Warning: nodule %d slice %s: %v", c.Nodule, c.Slice, err)
			skipped++
			continue
		}
		out = append(out, models.DiameterRecord{Slice: c.Slice, Long: long, Short: short})

		if !*quiet {
			fmt.Printf("Contour sliceId %s:\n", c.Slice)
			fmt.Printf("  Calculated long diameter: %.4f\n", long.Length())
			fmt.Printf("  Calculated short diameter: %.4f\n", short.Length())
		}
	}

	if err := diameter.WriteFile(*outputFile, out); err != nil {
		log.Fatalf("Failed to write diameters: %v", err)
	}
	fmt.Printf("%d diameter records written to %s (%d contours skipped)\n", len(out), *outputFile, skipped)
}
