package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"nodulevis/pkg/config"
	"nodulevis/pkg/diameter"
	"nodulevis/pkg/pipeline"
	"nodulevis/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "nodulevis.yaml", "YAML configuration file (defaults are used if missing)")
	envFile := flag.String("env", ".env", "Environment file with NODULEVIS_* overrides")
	recordsFile := flag.String("records", "", "JSON file with ct_nodule records")
	diametersFile := flag.String("diameters", "", "Text file with computed long/short diameters")
	outputDir := flag.String("output", "", "Directory for rendered scene images")
	policy := flag.String("on-parse-error", "", "Malformed diameter line policy: abort or skip")
	workers := flag.Int("workers", 0, "Number of scenes rendered concurrently (default from config)")
	exportPath := flag.String("export", "", "Write all scenes as msgpack to this file")
	noRender := flag.Bool("no-render", false, "Only report, do not write images")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	// Flags win over config and environment
	if *recordsFile != "" {
		cfg.Input.Records = *recordsFile
	}
	if *diametersFile != "" {
		cfg.Input.Diameters = *diametersFile
	}
	if *outputDir != "" {
		cfg.Render.OutputDir = *outputDir
	}
	if *policy != "" {
		cfg.Input.ParsePolicy = *policy
	}
	if *workers > 0 {
		cfg.Render.Workers = *workers
	}
	if *exportPath != "" {
		cfg.Output.SceneExport = *exportPath
	}
	if *noRender {
		cfg.Render.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Input.Records == "" || cfg.Input.Diameters == "" {
		flag.Usage()
		os.Exit(1)
	}
	parsePolicy, _ := diameter.ParsePolicyFromString(cfg.Input.ParsePolicy)

	params := &pipeline.Params{
		RecordsFile:   cfg.Input.Records,
		DiametersFile: cfg.Input.Diameters,
		ParsePolicy:   parsePolicy,
		CanvasSize:    float64(cfg.Scene.CanvasSize),
		Margin:        cfg.Scene.Margin,
		Verbose:       cfg.Output.Verbose,
	}

	p := pipeline.NewPipeline(params)
	startTime := time.Now()
	if err := p.Process(); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	scenes := p.Scenes()

	if cfg.Output.SceneExport != "" {
		if err := visualization.ExportScenes(cfg.Output.SceneExport, scenes); err != nil {
			log.Fatalf("Scene export failed: %v", err)
		}
		fmt.Printf("Scenes exported to: %s\n", cfg.Output.SceneExport)
	}

	if cfg.Render.Enabled && len(scenes) > 0 {
		c := cfg.Render.Colors
		style, err := visualization.NewStyle(visualization.HexColors{
			Background:    c.Background,
			Hull:          c.Hull,
			LongDiameter:  c.LongDiameter,
			ShortDiameter: c.ShortDiameter,
			LongAxis:      c.LongAxis,
			ShortAxis:     c.ShortAxis,
			Text:          c.Text,
			Grid:          c.Grid,
		}, cfg.Render.LineWidth, cfg.Render.Ticks)
		if err != nil {
			log.Fatalf("Invalid render colors: %v", err)
		}

		fmt.Printf("Rendering %d scenes to: %s\n", len(scenes), cfg.Render.OutputDir)
		renderer := visualization.NewRenderer(style)
		if _, err := renderer.SaveSceneSequence(scenes, cfg.Render.OutputDir, cfg.Render.Workers); err != nil {
			log.Fatalf("Rendering failed: %v", err)
		}
	}

	summary := p.GetSummary()
	fmt.Printf("\nCompleted in %.2f seconds\n", time.Since(startTime).Seconds())
	fmt.Println(summary.String())
	if summary.SkippedLines > 0 {
		fmt.Printf("%d malformed diameter lines skipped\n", summary.SkippedLines)
	}
	if summary.MissingKeySlice > 0 {
		fmt.Printf("%d nodules without keySliceId\n", summary.MissingKeySlice)
	}
	if summary.Rendered > 0 {
		fmt.Printf("Long diameter:  mean %.3f, std %.3f\n", summary.LongMean, summary.LongStdDev)
		fmt.Printf("Short diameter: mean %.3f, std %.3f\n", summary.ShortMean, summary.ShortStdDev)
	}
}
