// Package config provides unified configuration for the landex pipelines.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode represents which pipeline(s) to run.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeExtract Mode = "extract"
	ModeSplit   Mode = "split"
)

// Config holds the unified configuration for the landex pipelines.
type Config struct {
	// Mode specifies which pipelines to run: all, extract, split
	Mode Mode `json:"mode" yaml:"mode"`

	// DataDir is the base directory for scratch data (result cache)
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Extract configures the database-to-projected-table pipeline
	Extract ExtractConfig `json:"extract" yaml:"extract"`

	// Split configures the landclass disaggregation pipeline
	Split SplitConfig `json:"split" yaml:"split"`

	// Storage configures optional artifact publication
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ExtractConfig holds extraction pipeline configuration.
type ExtractConfig struct {
	// DatabasePath is the model output database file
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// QueryPath is the land-allocation query file
	QueryPath string `json:"query_path" yaml:"query_path"`

	// RegionRefPath is the region reference file (name → id)
	RegionRefPath string `json:"region_ref_path" yaml:"region_ref_path"`

	// BasinRefPath is the sub-basin reference file (abbreviation → id)
	BasinRefPath string `json:"basin_ref_path" yaml:"basin_ref_path"`

	// OutPath is the projected CSV destination; required when writing
	OutPath string `json:"out_path" yaml:"out_path"`

	// Years are the model years to extract; empty takes the default
	// 2010–2100 range in five-year steps
	Years []int `json:"years" yaml:"years"`

	// Reference file column names
	RegionRefNameField string `json:"region_ref_name_field" yaml:"region_ref_name_field"`
	RegionRefIDField   string `json:"region_ref_id_field" yaml:"region_ref_id_field"`
	BasinRefNameField  string `json:"basin_ref_name_field" yaml:"basin_ref_name_field"`
	BasinRefIDField    string `json:"basin_ref_id_field" yaml:"basin_ref_id_field"`

	// Projected table column names; empty values take the reshape defaults
	RegionNameField string `json:"region_name_field" yaml:"region_name_field"`
	BasinNameField  string `json:"basin_name_field" yaml:"basin_name_field"`
	RegionIDField   string `json:"region_id_field" yaml:"region_id_field"`
	MetricIDField   string `json:"metric_id_field" yaml:"metric_id_field"`
	LandclassField  string `json:"landclass_field" yaml:"landclass_field"`

	// Category vocabulary; empty values take the decoder defaults
	Delimiter     string   `json:"delimiter" yaml:"delimiter"`
	CompoundBases []string `json:"compound_bases" yaml:"compound_bases"`
	IrrigatedName string   `json:"irrigated_name" yaml:"irrigated_name"`
	RainfedName   string   `json:"rainfed_name" yaml:"rainfed_name"`

	// CacheEnabled turns on the on-disk query result cache
	CacheEnabled bool `json:"cache_enabled" yaml:"cache_enabled"`
}

// SplitConfig holds disaggregation pipeline configuration.
type SplitConfig struct {
	// ObservedPath is the observed reference data file
	ObservedPath string `json:"observed_path" yaml:"observed_path"`

	// ProjectedPath is the projected data file; in mode all it defaults
	// to the extraction output
	ProjectedPath string `json:"projected_path" yaml:"projected_path"`

	// OutPath is the disaggregated CSV destination
	OutPath string `json:"out_path" yaml:"out_path"`

	// FractionsOutPath optionally writes the observed fraction table
	FractionsOutPath string `json:"fractions_out_path" yaml:"fractions_out_path"`

	// TargetLandclass is the coarse class to replace (e.g. RockIceDesert)
	TargetLandclass string `json:"target_landclass" yaml:"target_landclass"`

	// ObservedClasses are the fine-grained replacement classes
	ObservedClasses []string `json:"observed_classes" yaml:"observed_classes"`

	// MetricField is the sub-region column in the observed file
	// (basin_id or aez_id)
	MetricField string `json:"metric_field" yaml:"metric_field"`

	// Observed/projected column names; empty values take the defaults
	RegionIDField  string `json:"region_id_field" yaml:"region_id_field"`
	MetricIDField  string `json:"metric_id_field" yaml:"metric_id_field"`
	LandclassField string `json:"landclass_field" yaml:"landclass_field"`

	// Years are the year columns to scale; empty takes the extract years
	Years []int `json:"years" yaml:"years"`

	// FillMissingFractions zero-fills fractions for projected keys with
	// no observed coverage instead of propagating nulls
	FillMissingFractions bool `json:"fill_missing_fractions" yaml:"fill_missing_fractions"`
}

// StorageConfig holds artifact publication configuration.
type StorageConfig struct {
	// Type is the storage type: none, local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage root (for local type)
	Path string `json:"path" yaml:"path"`

	// Prefix is prepended to published object paths
	Prefix string `json:"prefix" yaml:"prefix"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultYears returns the standard model output years, 2010–2100 in
// five-year steps.
func DefaultYears() []int {
	var years []int
	for y := 2010; y <= 2100; y += 5 {
		years = append(years, y)
	}
	return years
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode:    ModeAll,
		DataDir: "./data/landex",
		Extract: ExtractConfig{
			RegionRefNameField: "region_name",
			RegionRefIDField:   "region_id",
			BasinRefNameField:  "basin_name",
			BasinRefIDField:    "basin_id",
			CacheEnabled:       true,
		},
		Split: SplitConfig{
			MetricField: "basin_id",
		},
		Storage: StorageConfig{
			Type: "none",
		},
	}
}

// Resolve fills derived defaults: year lists, the split pipeline's input in
// mode all, and scratch paths under DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/landex"
	}
	if len(c.Extract.Years) == 0 {
		c.Extract.Years = DefaultYears()
	}
	if len(c.Split.Years) == 0 {
		c.Split.Years = append([]int(nil), c.Extract.Years...)
	}
	if c.Mode == ModeAll && c.Split.ProjectedPath == "" {
		c.Split.ProjectedPath = c.Extract.OutPath
	}
}

// CacheDir returns the query result cache directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// ShouldRunExtract returns true if the extraction pipeline should run.
func (c *Config) ShouldRunExtract() bool {
	return c.Mode == ModeAll || c.Mode == ModeExtract
}

// ShouldRunSplit returns true if the disaggregation pipeline should run.
func (c *Config) ShouldRunSplit() bool {
	return c.Mode == ModeAll || c.Mode == ModeSplit
}

// Validate checks the configuration for the selected mode.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAll, ModeExtract, ModeSplit:
		// Valid modes
	default:
		return fmt.Errorf("invalid mode: %s (must be all, extract, or split)", c.Mode)
	}

	if c.ShouldRunExtract() {
		if c.Extract.DatabasePath == "" {
			return fmt.Errorf("extract.database_path is required")
		}
		if c.Extract.QueryPath == "" {
			return fmt.Errorf("extract.query_path is required")
		}
		if c.Extract.RegionRefPath == "" {
			return fmt.Errorf("extract.region_ref_path is required")
		}
		if c.Extract.BasinRefPath == "" {
			return fmt.Errorf("extract.basin_ref_path is required")
		}
	}

	if c.ShouldRunSplit() {
		if c.Split.ObservedPath == "" {
			return fmt.Errorf("split.observed_path is required")
		}
		if c.Split.ProjectedPath == "" {
			return fmt.Errorf("split.projected_path is required")
		}
		if c.Split.TargetLandclass == "" {
			return fmt.Errorf("split.target_landclass is required")
		}
		if len(c.Split.ObservedClasses) == 0 {
			return fmt.Errorf("split.observed_classes is required")
		}
		if c.Split.MetricField == "" {
			return fmt.Errorf("split.metric_field is required")
		}
	}

	switch c.Storage.Type {
	case "none", "local", "s3":
		// Valid storage types
	default:
		return fmt.Errorf("invalid storage type: %s (must be none, local, or s3)", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required when storage type is s3")
	}
	if c.Storage.Type == "local" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when storage type is local")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration overrides from environment variables.
// Environment variables use the LANDEX_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("LANDEX_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("LANDEX_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LANDEX_DATABASE_PATH"); v != "" {
		cfg.Extract.DatabasePath = v
	}
	if v := os.Getenv("LANDEX_QUERY_PATH"); v != "" {
		cfg.Extract.QueryPath = v
	}
	if v := os.Getenv("LANDEX_EXTRACT_OUT"); v != "" {
		cfg.Extract.OutPath = v
	}
	if v := os.Getenv("LANDEX_SPLIT_OUT"); v != "" {
		cfg.Split.OutPath = v
	}
	if v := os.Getenv("LANDEX_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Extract.CacheEnabled = b
		}
	}
	if v := os.Getenv("LANDEX_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("LANDEX_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("LANDEX_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
}
