// Package main implements the landex-split pipeline binary.
// This binary disaggregates a coarse projected land class into
// fine-grained classes using observed reference fractions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/landex/landex/internal/app"
	"github.com/landex/landex/internal/config"
)

// Flags holds the binary's command line configuration.
type Flags struct {
	DataDir       string
	ObservedPath  string
	ProjectedPath string
	OutPath       string
	FractionsOut  string
	TargetClass   string
	Classes       string
	MetricField   string
	Years         string
	FillMissing   bool
}

func main() {
	flags := parseFlags()

	log.Printf("Starting landex-split...")
	log.Printf("Observed:  %s", flags.ObservedPath)
	log.Printf("Projected: %s", flags.ProjectedPath)

	years, err := parseYears(flags.Years)
	if err != nil {
		log.Fatalf("Invalid -years value: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeSplit
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	cfg.Split.ObservedPath = flags.ObservedPath
	cfg.Split.ProjectedPath = flags.ProjectedPath
	cfg.Split.OutPath = flags.OutPath
	cfg.Split.FractionsOutPath = flags.FractionsOut
	cfg.Split.TargetLandclass = flags.TargetClass
	cfg.Split.ObservedClasses = splitList(flags.Classes)
	if flags.MetricField != "" {
		cfg.Split.MetricField = flags.MetricField
	}
	cfg.Split.Years = years
	cfg.Split.FillMissingFractions = flags.FillMissing

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Disaggregation failed: %v", err)
	}
}

func parseFlags() Flags {
	flags := Flags{}

	flag.StringVar(&flags.DataDir, "data-dir", "./data", "Base directory for working files")
	flag.StringVar(&flags.ObservedPath, "observed", "", "Observed reference CSV (required)")
	flag.StringVar(&flags.ProjectedPath, "projected", "", "Projected CSV to disaggregate (required)")
	flag.StringVar(&flags.OutPath, "out", "", "Destination for the disaggregated CSV (required)")
	flag.StringVar(&flags.FractionsOut, "fractions-out", "", "Optional destination for the observed fraction table")
	flag.StringVar(&flags.TargetClass, "target", "", "Coarse land class to replace, e.g. RockIceDesert (required)")
	flag.StringVar(&flags.Classes, "classes", "", "Comma-separated replacement classes (required)")
	flag.StringVar(&flags.MetricField, "metric-field", "", "Sub-region column in the observed file (default basin_id)")
	flag.StringVar(&flags.Years, "years", "", "Comma-separated year columns to scale (default 2010-2100 step 5)")
	flag.BoolVar(&flags.FillMissing, "fill-missing", false, "Zero-fill fractions for projected keys with no observed coverage")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "landex-split - disaggregate a coarse projected land class\n\n")
		fmt.Fprintf(os.Stderr, "Usage: landex-split [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flags.ObservedPath == "" || flags.ProjectedPath == "" || flags.OutPath == "" ||
		flags.TargetClass == "" || flags.Classes == "" {
		flag.Usage()
		os.Exit(2)
	}

	return flags
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseYears parses a comma-separated year list; empty input keeps the
// configured defaults.
func parseYears(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad year %q: %w", p, err)
		}
		years = append(years, y)
	}
	return years, nil
}
