// Package main implements the unified landex binary.
// This binary can run the full pipeline (extract then split) or an
// individual stage based on the --mode flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/landex/landex/internal/app"
	"github.com/landex/landex/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configFile  string
		dataDir     string
		mode        string
		dbPath      string
		queryPath   string
		extractOut  string
		splitOut    string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for working files and the query cache")
	flag.StringVar(&mode, "mode", "", "Pipeline mode: all, extract, split")
	flag.StringVar(&dbPath, "db", "", "Path to the model output database")
	flag.StringVar(&queryPath, "query", "", "Path to the land allocation query file")
	flag.StringVar(&extractOut, "extract-out", "", "Destination for the projected CSV")
	flag.StringVar(&splitOut, "split-out", "", "Destination for the disaggregated CSV")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Landex - Land Allocation Extraction and Disaggregation\n\n")
		fmt.Fprintf(os.Stderr, "Usage: landex [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  landex --config /etc/landex/config.yaml\n")
		fmt.Fprintf(os.Stderr, "  landex --mode extract --db output.db --query land.sql --extract-out projected.csv\n")
		fmt.Fprintf(os.Stderr, "  landex --mode split --config config.yaml --split-out split.csv\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LANDEX_MODE           Pipeline mode (all, extract, split)\n")
		fmt.Fprintf(os.Stderr, "  LANDEX_DATA_DIR       Base directory for working files\n")
		fmt.Fprintf(os.Stderr, "  LANDEX_DATABASE_PATH  Model output database path\n")
		fmt.Fprintf(os.Stderr, "  LANDEX_QUERY_PATH     Land allocation query file\n")
		fmt.Fprintf(os.Stderr, "  LANDEX_STORAGE_TYPE   Artifact storage type (none, local, s3)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("landex version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := loadConfig(configFile, dataDir, mode, dbPath, queryPath, extractOut, splitOut)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Print startup banner
	printBanner(cfg)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, dataDir, mode, dbPath, queryPath, extractOut, splitOut string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if mode != "" {
		cfg.Mode = config.Mode(mode)
	}
	if dbPath != "" {
		cfg.Extract.DatabasePath = dbPath
	}
	if queryPath != "" {
		cfg.Extract.QueryPath = queryPath
	}
	if extractOut != "" {
		cfg.Extract.OutPath = extractOut
	}
	if splitOut != "" {
		cfg.Split.OutPath = splitOut
	}

	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("Landex - Land Allocation Extraction and Disaggregation")
	log.Printf("")
	log.Printf("Configuration:")
	log.Printf("  Mode:     %s", cfg.Mode)
	log.Printf("  Data Dir: %s", cfg.DataDir)
	log.Printf("  Storage:  %s", cfg.Storage.Type)
	log.Printf("")

	if cfg.ShouldRunExtract() {
		log.Printf("Extraction:")
		log.Printf("  Database: %s", cfg.Extract.DatabasePath)
		log.Printf("  Query:    %s", cfg.Extract.QueryPath)
		log.Printf("  Output:   %s", cfg.Extract.OutPath)
		log.Printf("  Cache:    %v", cfg.Extract.CacheEnabled)
	}

	if cfg.ShouldRunSplit() {
		log.Printf("Disaggregation:")
		log.Printf("  Observed:  %s", cfg.Split.ObservedPath)
		log.Printf("  Projected: %s", cfg.Split.ProjectedPath)
		log.Printf("  Output:    %s", cfg.Split.OutPath)
		log.Printf("  Target:    %s -> %v", cfg.Split.TargetLandclass, cfg.Split.ObservedClasses)
	}

	log.Printf("")
}
