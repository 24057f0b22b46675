// Package fraction computes, from an observed reference table, the share of
// each fine-grained landclass within their combined total per sub-region
// (region id x sub-basin metric). The resulting fractions drive the
// proportional disaggregation of a coarse projected landclass.
package fraction

import (
	"sort"
	"strings"

	"github.com/landex/landex/internal/errors"
	"github.com/landex/landex/internal/frame"
	"github.com/landex/landex/pkg/types"
)

// DefaultRegionIDField is the region id column name in observed data.
const DefaultRegionIDField = "region_id"

// Options configure a fraction calculation.
type Options struct {
	// RegionIDField names the region id column in the observed table;
	// empty takes the default
	RegionIDField string

	// MetricField names the sub-region metric column, e.g. "basin_id"
	// or "aez_id"
	MetricField string

	// Classes are the observed fine-grained landclass columns to
	// redistribute over
	Classes []string
}

// KeyField derives the composite-key column name from the metric field:
// "basin_id" → "reg_basin". The disaggregator builds the same name so the
// two tables join without configuration.
func (o Options) KeyField() string {
	base := strings.SplitN(o.MetricField, "_", 2)[0]
	return "reg_" + base
}

// CompositeKey joins a region id and metric value into the join key used
// between observed fractions and projected rows.
func CompositeKey(regionID, metric string) string {
	return regionID + "_" + metric
}

// Table holds one fraction per fine-grained class per composite key.
type Table struct {
	// Classes gives the fraction column order
	Classes []string

	keyField  string
	fractions map[string][]float64
}

// Calculate restricts the observed table to the needed columns, sums each
// class per (region id, metric) group, and converts the sums to fractions of
// the group total. Groups with a zero total get fraction 0 for every class
// rather than a division artifact.
func Calculate(observed *frame.Table, opts Options) (*Table, error) {
	if opts.RegionIDField == "" {
		opts.RegionIDField = DefaultRegionIDField
	}
	if opts.MetricField == "" {
		return nil, errors.New(errors.ErrCategoryFraction, errors.CodeInvalidConfig,
			"metric field is required")
	}
	if len(opts.Classes) == 0 {
		return nil, errors.New(errors.ErrCategoryFraction, errors.CodeInvalidConfig,
			"at least one observed class is required")
	}

	cols := append([]string{opts.RegionIDField, opts.MetricField}, opts.Classes...)
	idx, err := observed.RequireColumns(cols...)
	if err != nil {
		return nil, err
	}

	// Sum each class per composite key. Multiple raw rows may share a key.
	sums := make(map[string][]float64)
	for i := 0; i < observed.Len(); i++ {
		key := CompositeKey(observed.Cell(i, idx[0]), observed.Cell(i, idx[1]))
		acc, ok := sums[key]
		if !ok {
			acc = make([]float64, len(opts.Classes))
			sums[key] = acc
		}
		for c := range opts.Classes {
			cell, err := observed.Float(i, idx[2+c])
			if err != nil {
				return nil, err
			}
			// Empty observed cells contribute nothing.
			if cell.Valid {
				acc[c] += cell.Float64
			}
		}
	}

	fractions := make(map[string][]float64, len(sums))
	for key, acc := range sums {
		total := 0.0
		for _, v := range acc {
			total += v
		}
		fr := make([]float64, len(acc))
		if total != 0 {
			for c, v := range acc {
				fr[c] = v / total
			}
		}
		// total == 0 leaves every fraction at 0: the documented
		// non-conservation case for keys with no observed coverage.
		fractions[key] = fr
	}

	return &Table{
		Classes:   append([]string(nil), opts.Classes...),
		keyField:  opts.KeyField(),
		fractions: fractions,
	}, nil
}

// Fractions returns the per-class fractions for a composite key and whether
// the key has observed coverage.
func (t *Table) Fractions(key string) ([]float64, bool) {
	fr, ok := t.fractions[key]
	return fr, ok
}

// Len returns the number of composite keys.
func (t *Table) Len() int {
	return len(t.fractions)
}

// KeyField returns the composite-key column name used when the table is
// materialized as a frame.
func (t *Table) KeyField() string {
	return t.keyField
}

// Frame materializes the fractions as a table with the composite key column
// followed by one "frac_<class>" column per class, keys sorted for
// deterministic output.
func (t *Table) Frame() *frame.Table {
	columns := []string{t.keyField}
	for _, c := range t.Classes {
		columns = append(columns, "frac_"+c)
	}

	keys := make([]string, 0, len(t.fractions))
	for k := range t.fractions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := frame.New(columns...)
	for _, k := range keys {
		row := make([]string, 0, len(columns))
		row = append(row, k)
		for _, f := range t.fractions[k] {
			row = append(row, types.Val(f).String())
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
