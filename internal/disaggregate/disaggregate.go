// Package disaggregate replaces one coarse projected landclass with several
// fine-grained classes, scaling each year value by the observed per
// sub-region fraction of that class. Rows of every other landclass pass
// through untouched.
package disaggregate

import (
	"log"
	"strconv"

	"github.com/landex/landex/internal/errors"
	"github.com/landex/landex/internal/fraction"
	"github.com/landex/landex/internal/frame"
	"github.com/landex/landex/pkg/types"
)

// Default projected-table column names.
const (
	DefaultRegionIDField  = "region_id"
	DefaultMetricIDField  = "metric_id"
	DefaultLandclassField = "landclass"
)

// Options configure a disaggregation pass.
type Options struct {
	// TargetClass is the coarse landclass to replace, e.g. "RockIceDesert"
	TargetClass string

	// Years are the year columns to scale; every listed year must be a
	// column of the projected table
	Years []int

	// Projected-table column names; empty values take the defaults. The
	// metric id field may be named differently than in the observed
	// schema as long as it resolves to the same sub-region identifier.
	RegionIDField  string
	MetricIDField  string
	LandclassField string

	// FillMissingFractions treats projected keys with no observed
	// coverage as fraction 0 instead of letting nulls propagate into the
	// scaled year cells. Off by default: null propagation is the
	// documented behavior, and silently zeroing would hide coverage gaps.
	FillMissingFractions bool
}

func (o *Options) applyDefaults() {
	if o.RegionIDField == "" {
		o.RegionIDField = DefaultRegionIDField
	}
	if o.MetricIDField == "" {
		o.MetricIDField = DefaultMetricIDField
	}
	if o.LandclassField == "" {
		o.LandclassField = DefaultLandclassField
	}
}

// Split partitions the projected table into target and pass-through rows,
// then emits one copy of every target row per fine-grained class with the
// landclass renamed and each year cell multiplied by that class's fraction
// for the row's composite key. The output keeps the projected schema; no
// helper or fraction columns are added.
//
// A target class with zero matching rows is not an error: the projected
// table may legitimately omit it, so the pass-through rows are returned
// unchanged and a warning is logged to surface likely misconfiguration.
func Split(projected *frame.Table, fractions *fraction.Table, opts Options) (*frame.Table, error) {
	opts.applyDefaults()
	if opts.TargetClass == "" {
		return nil, errors.New(errors.ErrCategoryConfig, errors.CodeInvalidConfig,
			"target landclass is required")
	}

	keyCols, err := projected.RequireColumns(opts.RegionIDField, opts.MetricIDField, opts.LandclassField)
	if err != nil {
		return nil, err
	}
	regionIdx, metricIdx, classIdx := keyCols[0], keyCols[1], keyCols[2]

	yearNames := make([]string, len(opts.Years))
	for i, y := range opts.Years {
		yearNames[i] = strconv.Itoa(y)
	}
	yearIdx, err := projected.RequireColumns(yearNames...)
	if err != nil {
		return nil, err
	}

	var targets []int
	out := frame.New(projected.Columns...)
	for i := 0; i < projected.Len(); i++ {
		if projected.Cell(i, classIdx) == opts.TargetClass {
			targets = append(targets, i)
		} else {
			out.Rows = append(out.Rows, cloneRow(projected, i))
		}
	}

	if len(targets) == 0 {
		log.Printf("disaggregate: no projected rows match target landclass %q; output unchanged", opts.TargetClass)
		return out, nil
	}

	for c, class := range fractions.Classes {
		for _, i := range targets {
			row := cloneRow(projected, i)
			row[classIdx] = class

			key := fraction.CompositeKey(projected.Cell(i, regionIdx), projected.Cell(i, metricIdx))
			frac := classFraction(fractions, key, c, opts.FillMissingFractions)

			for k, j := range yearIdx {
				cell, err := projected.Float(i, j)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCategoryReshape, errors.CodeBadValue,
						"year column "+yearNames[k]+" is not numeric", err)
				}
				row[j] = cell.Mul(frac).String()
			}
			out.Rows = append(out.Rows, row)
		}
	}

	return out, nil
}

// classFraction resolves the fraction for one class at one composite key.
// Keys without observed coverage yield a null fraction so the miss stays
// visible in the output, unless the caller opted into zero filling.
func classFraction(fractions *fraction.Table, key string, class int, fill bool) types.Cell {
	if fr, ok := fractions.Fractions(key); ok {
		return types.Val(fr[class])
	}
	if fill {
		return types.Val(0)
	}
	return types.Null()
}

func cloneRow(t *frame.Table, i int) []string {
	row := make([]string, len(t.Columns))
	copy(row, t.Rows[i])
	return row
}
