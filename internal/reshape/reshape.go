// Package reshape turns raw land-allocation query rows into the wide
// projected table consumed by the downscaling model: one row per
// (region name, sub-basin name, region id, sub-basin id, landclass) key and
// one column per requested year, with management-intensity variants collapsed
// by summation.
package reshape

import (
	"sort"
	"strconv"
	"strings"

	"github.com/landex/landex/internal/category"
	"github.com/landex/landex/internal/frame"
	"github.com/landex/landex/internal/lookup"
	"github.com/landex/landex/pkg/types"
)

// Default output column names for the projected table.
const (
	DefaultRegionNameField = "region_name"
	DefaultBasinNameField  = "basin_name"
	DefaultRegionIDField   = "region_id"
	DefaultMetricIDField   = "metric_id"
	DefaultLandclassField  = "landclass"
)

// Options configure the reshape engine. Field names are free-form strings
// naming the output columns so downstream schemas can be matched without
// renaming passes.
type Options struct {
	// Years restricts output to these model years; every listed year is a
	// column in the result even when all its cells are zero
	Years []int

	// Output column names; empty values take the defaults above
	RegionNameField string
	BasinNameField  string
	RegionIDField   string
	MetricIDField   string
	LandclassField  string

	// Vocabulary drives category decoding; the zero value uses the
	// current model conventions
	Vocabulary category.Vocabulary
}

func (o *Options) applyDefaults() {
	if o.RegionNameField == "" {
		o.RegionNameField = DefaultRegionNameField
	}
	if o.BasinNameField == "" {
		o.BasinNameField = DefaultBasinNameField
	}
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

// Engine reshapes raw query rows into the wide projected table.
type Engine struct {
	opts    Options
	decoder *category.Decoder
	regions *lookup.Table
	basins  *lookup.Table
}

// New creates a reshape engine over the given region and sub-basin lookups.
func New(opts Options, regions, basins *lookup.Table) *Engine {
	opts.applyDefaults()
	return &Engine{
		opts:    opts,
		decoder: category.NewDecoder(opts.Vocabulary),
		regions: regions,
		basins:  basins,
	}
}

// group accumulates summed year values for one pivot key.
type group struct {
	regionName string
	basinName  string
	regionID   types.NullID
	metricID   types.NullID
	landclass  string
	values     map[int]float64
}

// Reshape filters rows to the requested years, decodes category strings,
// maps region and sub-basin names to ids (misses yield null ids, never an
// error), and pivots to one output row per distinct key with year columns
// summed and zero-filled.
//
// A category string that does not decompose aborts the whole reshape; there
// is no partial decode.
func (e *Engine) Reshape(rows []types.RawRow) (*frame.Table, error) {
	wantYear := make(map[int]struct{}, len(e.opts.Years))
	for _, y := range e.opts.Years {
		wantYear[y] = struct{}{}
	}

	groups := make(map[string]*group)
	for _, row := range rows {
		if _, ok := wantYear[row.Year]; !ok {
			continue
		}

		// Scenario and units are dropped here: the projected table
		// carries neither.
		dec, err := e.decoder.Decode(row.Category)
		if err != nil {
			return nil, err
		}

		landclass := dec.SuffixedLandclass()
		key := groupKey(row.Region, dec.SubBasin, landclass)

		g, ok := groups[key]
		if !ok {
			g = &group{
				regionName: row.Region,
				basinName:  dec.SubBasin,
				regionID:   e.regions.NullID(row.Region),
				metricID:   e.basins.NullID(dec.SubBasin),
				landclass:  landclass,
				values:     make(map[int]float64, len(e.opts.Years)),
			}
			groups[key] = g
		}
		// Sum collapses hi/lo management-intensity variants sharing
		// the same key.
		g.values[row.Year] += row.Value
	}

	return e.flatten(groups), nil
}

// flatten converts the group map into a deterministic wide table: keys
// sorted by (region name, sub-basin name, landclass), years ascending.
func (e *Engine) flatten(groups map[string]*group) *frame.Table {
	years := append([]int(nil), e.opts.Years...)
	sort.Ints(years)

	columns := []string{
		e.opts.RegionNameField,
		e.opts.BasinNameField,
		e.opts.RegionIDField,
		e.opts.MetricIDField,
		e.opts.LandclassField,
	}
	for _, y := range years {
		columns = append(columns, strconv.Itoa(y))
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.regionName != b.regionName {
			return a.regionName < b.regionName
		}
		if a.basinName != b.basinName {
			return a.basinName < b.basinName
		}
		return a.landclass < b.landclass
	})

	out := frame.New(columns...)
	for _, g := range ordered {
		row := make([]string, 0, len(columns))
		row = append(row, g.regionName, g.basinName, g.regionID.String(), g.metricID.String(), g.landclass)
		for _, y := range years {
			// Missing cells fill with 0.
			row = append(row, types.Val(g.values[y]).String())
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// groupKey builds the map key for one pivot group. Region and sub-basin ids
// are functions of the names, so the names alone identify the group.
func groupKey(parts ...string) string {
	return strings.Join(parts, "\x00")
}
