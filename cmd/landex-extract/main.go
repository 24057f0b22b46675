// Package main implements the landex-extract pipeline binary.
// This binary queries land allocation from a model output database and
// reshapes it into a wide projected CSV.
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
	DatabasePath  string
	QueryPath     string
	RegionRefPath string
	BasinRefPath  string
	OutPath       string
	Years         string
	Delimiter     string
	NoCache       bool
}

func main() {
	flags := parseFlags()

	log.Printf("Starting landex-extract...")
	log.Printf("Database: %s", flags.DatabasePath)
	log.Printf("Query:    %s", flags.QueryPath)

	years, err := parseYears(flags.Years)
	if err != nil {
		log.Fatalf("Invalid -years value: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeExtract
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	cfg.Extract.DatabasePath = flags.DatabasePath
	cfg.Extract.QueryPath = flags.QueryPath
	cfg.Extract.RegionRefPath = flags.RegionRefPath
	cfg.Extract.BasinRefPath = flags.BasinRefPath
	cfg.Extract.OutPath = flags.OutPath
	cfg.Extract.Years = years
	if flags.Delimiter != "" {
		cfg.Extract.Delimiter = flags.Delimiter
	}
	cfg.Extract.CacheEnabled = !flags.NoCache

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
}

func parseFlags() Flags {
	flags := Flags{}

	flag.StringVar(&flags.DataDir, "data-dir", "./data", "Base directory for working files and the query cache")
	flag.StringVar(&flags.DatabasePath, "db", "", "Path to the model output database (required)")
	flag.StringVar(&flags.QueryPath, "query", "", "Path to the land allocation query file (required)")
	flag.StringVar(&flags.RegionRefPath, "region-ref", "", "Region reference CSV, name to id (required)")
	flag.StringVar(&flags.BasinRefPath, "basin-ref", "", "Sub-basin reference CSV, abbreviation to id (required)")
	flag.StringVar(&flags.OutPath, "out", "", "Destination for the projected CSV (required)")
	flag.StringVar(&flags.Years, "years", "", "Comma-separated model years (default 2010-2100 step 5)")
	flag.StringVar(&flags.Delimiter, "delimiter", "", "Category token delimiter (default _)")
	flag.BoolVar(&flags.NoCache, "no-cache", false, "Disable the on-disk query result cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "landex-extract - query and reshape land allocation\n\n")
		fmt.Fprintf(os.Stderr, "Usage: landex-extract [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flags.DatabasePath == "" || flags.QueryPath == "" || flags.OutPath == "" ||
		flags.RegionRefPath == "" || flags.BasinRefPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	return flags
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
