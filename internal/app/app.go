// Package app wires the landex pipelines together: extraction from the model
// output database into the projected table, and disaggregation of a coarse
// landclass over observed fractions. Both are one-shot batch transforms; the
// app owns their sequencing, artifact publication, and run statistics.
package app

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/landex/landex/internal/category"
	"github.com/landex/landex/internal/config"
	"github.com/landex/landex/internal/disaggregate"
	"github.com/landex/landex/internal/fraction"
	"github.com/landex/landex/internal/frame"
	"github.com/landex/landex/internal/lookup"
	"github.com/landex/landex/internal/observability"
	"github.com/landex/landex/internal/query"
	"github.com/landex/landex/internal/reshape"
	"github.com/landex/landex/internal/storage"
	"github.com/landex/landex/pkg/types"
)

// App runs the landex pipelines for one invocation.
type App struct {
	cfg   *config.Config
	runID string
	stats *observability.RunStats
	store storage.ObjectStorage // nil when publication is disabled
}

// New creates an App with the given configuration. Paths are resolved and
// the configuration validated before anything touches the filesystem.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		cfg:   cfg,
		runID: uuid.New().String()[:8],
		stats: observability.NewRunStats(),
	}

	switch cfg.Storage.Type {
	case "local":
		store, err := storage.NewLocalStorage(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.store = store
	case "s3":
		store, err := storage.NewS3Storage(context.Background(), cfg.Storage.S3.Bucket, storage.S3Config{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.store = store
	}

	return a, nil
}

// RunID returns the identifier stamped on this invocation's logs and
// published artifacts.
func (a *App) RunID() string {
	return a.runID
}

// Run executes the pipelines selected by the configured mode.
func (a *App) Run(ctx context.Context) error {
	log.Printf("landex run %s starting (mode=%s)", a.runID, a.cfg.Mode)

	if a.cfg.ShouldRunExtract() {
		if _, err := a.RunExtract(ctx); err != nil {
			return err
		}
	}
	if a.cfg.ShouldRunSplit() {
		if _, err := a.RunSplit(ctx); err != nil {
			return err
		}
	}

	log.Printf("landex run %s finished: %s", a.runID, a.stats.Summary())
	return nil
}

// RunExtract queries the model output database, reshapes the rows into the
// projected wide table, and writes it to the configured output path.
func (a *App) RunExtract(ctx context.Context) (*frame.Table, error) {
	ec := a.cfg.Extract

	queryText, err := query.LoadQueryFile(ec.QueryPath)
	if err != nil {
		return nil, err
	}

	rows, err := a.queryRows(ctx, queryText)
	if err != nil {
		return nil, err
	}
	log.Printf("extract: %d raw rows from %s", len(rows), ec.DatabasePath)

	regions, err := lookup.Load(ec.RegionRefPath, ec.RegionRefNameField, ec.RegionRefIDField)
	if err != nil {
		return nil, err
	}
	basins, err := lookup.Load(ec.BasinRefPath, ec.BasinRefNameField, ec.BasinRefIDField)
	if err != nil {
		return nil, err
	}
	log.Printf("extract: lookups loaded (%d regions, %d sub-basins)", regions.Len(), basins.Len())

	eng := reshape.New(reshape.Options{
		Years:           ec.Years,
		RegionNameField: ec.RegionNameField,
		BasinNameField:  ec.BasinNameField,
		RegionIDField:   ec.RegionIDField,
		MetricIDField:   ec.MetricIDField,
		LandclassField:  ec.LandclassField,
		Vocabulary: category.Vocabulary{
			Delimiter:     ec.Delimiter,
			CompoundBases: ec.CompoundBases,
			IrrigatedName: ec.IrrigatedName,
			RainfedName:   ec.RainfedName,
		},
	}, regions, basins)

	start := time.Now()
	projected, err := eng.Reshape(rows)
	if err != nil {
		return nil, err
	}
	a.stats.Record("reshape", time.Since(start), int64(len(rows)), int64(projected.Len()))
	log.Printf("extract: pivoted to %d projected rows x %d years", projected.Len(), len(ec.Years))

	if err := a.writeArtifact(ctx, projected, ec.OutPath, "write_projected"); err != nil {
		return nil, err
	}
	return projected, nil
}

// queryRows returns the raw query result, from the result cache when it is
// enabled and holds a current entry.
func (a *App) queryRows(ctx context.Context, queryText string) ([]types.RawRow, error) {
	ec := a.cfg.Extract

	var cache *query.ResultCache
	var key string
	if ec.CacheEnabled {
		var err error
		cache, err = query.NewResultCache(a.cfg.CacheDir())
		if err != nil {
			return nil, err
		}
		key, err = query.Fingerprint(ec.DatabasePath, queryText)
		if err != nil {
			return nil, err
		}
		if rows, ok := cache.Get(key); ok {
			log.Printf("extract: query cache hit (%s)", key[:8])
			a.stats.Record("query", 0, 0, int64(len(rows)))
			return rows, nil
		}
	}

	exec, err := query.Open(ec.DatabasePath, query.FieldNames{})
	if err != nil {
		return nil, err
	}
	defer exec.Close()

	start := time.Now()
	rows, err := exec.Execute(ctx, queryText)
	if err != nil {
		return nil, err
	}
	a.stats.Record("query", time.Since(start), 0, int64(len(rows)))

	if cache != nil {
		if err := cache.Put(key, rows); err != nil {
			// The cache is an optimization; a failed write must not
			// fail the extraction.
			log.Printf("extract: query cache write failed: %v", err)
		}
	}
	return rows, nil
}

// RunSplit computes observed fractions and disaggregates the target coarse
// landclass of the projected table.
func (a *App) RunSplit(ctx context.Context) (*frame.Table, error) {
	sc := a.cfg.Split

	observed, err := frame.ReadCSV(sc.ObservedPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fractions, err := fraction.Calculate(observed, fraction.Options{
		RegionIDField: sc.RegionIDField,
		MetricField:   sc.MetricField,
		Classes:       sc.ObservedClasses,
	})
	if err != nil {
		return nil, err
	}
	a.stats.Record("fractions", time.Since(start), int64(observed.Len()), int64(fractions.Len()))
	log.Printf("split: %d observed keys with fractions for %v", fractions.Len(), sc.ObservedClasses)

	if sc.FractionsOutPath != "" {
		if err := fractions.Frame().WriteCSV(sc.FractionsOutPath); err != nil {
			return nil, err
		}
		log.Printf("split: fraction table written to %s", sc.FractionsOutPath)
	}

	projected, err := frame.ReadCSV(sc.ProjectedPath)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	out, err := disaggregate.Split(projected, fractions, disaggregate.Options{
		TargetClass:          sc.TargetLandclass,
		Years:                sc.Years,
		RegionIDField:        sc.RegionIDField,
		MetricIDField:        sc.MetricIDField,
		LandclassField:       sc.LandclassField,
		FillMissingFractions: sc.FillMissingFractions,
	})
	if err != nil {
		return nil, err
	}
	a.stats.Record("disaggregate", time.Since(start), int64(projected.Len()), int64(out.Len()))
	log.Printf("split: %q replaced by %v (%d rows in, %d out)",
		sc.TargetLandclass, sc.ObservedClasses, projected.Len(), out.Len())

	if err := a.writeArtifact(ctx, out, sc.OutPath, "write_split"); err != nil {
		return nil, err
	}
	return out, nil
}

// writeArtifact writes a table to outPath and publishes it when storage is
// configured.
func (a *App) writeArtifact(ctx context.Context, tbl *frame.Table, outPath, stage string) error {
	start := time.Now()
	if err := tbl.WriteCSV(outPath); err != nil {
		return err
	}
	a.stats.Record(stage, time.Since(start), int64(tbl.Len()), int64(tbl.Len()))
	log.Printf("%s: %d rows written to %s", stage, tbl.Len(), outPath)

	if a.store == nil {
		return nil
	}

	objectPath := path.Join(a.cfg.Storage.Prefix, a.runID, filepath.Base(outPath))
	if err := a.store.Upload(ctx, outPath, objectPath); err != nil {
		return err
	}
	log.Printf("%s: published to %s", stage, objectPath)
	return nil
}
