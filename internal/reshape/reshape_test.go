package reshape

import (
	"testing"

	landexerr "github.com/landex/landex/internal/errors"
	"github.com/landex/landex/internal/lookup"
	"github.com/landex/landex/pkg/types"
)

func testLookups() (*lookup.Table, *lookup.Table) {
	regions := lookup.FromMap(map[string]int64{"Brazil": 1, "Canada": 2})
	basins := lookup.FromMap(map[string]int64{"AmazonBasin": 10, "Nelson": 20})
	return regions, basins
}

func TestReshape_PivotSumsManagementVariants(t *testing.T) {
	regions, basins := testLookups()
	eng := New(Options{Years: []int{2010}}, regions, basins)

	// Same (region, basin, landclass) key from hi and lo management rows.
	rows := []types.RawRow{
		{Scenario: "ref", Region: "Brazil", Category: "Corn_AmazonBasin_IRR_hi", Year: 2010, Units: "thous km2", Value: 40},
		{Scenario: "ref", Region: "Brazil", Category: "Corn_AmazonBasin_IRR_lo", Year: 2010, Units: "thous km2", Value: 2.5},
	}

	out, err := eng.Reshape(rows)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("got %d rows, want 1", out.Len())
	}

	idx, err := out.RequireColumns("landclass", "2010")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Cell(0, idx[0]); got != "Corn_IRR" {
		t.Errorf("landclass: got %q, want Corn_IRR", got)
	}
	v, err := out.Float(0, idx[1])
	if err != nil {
		t.Fatal(err)
	}
	if !v.Valid || v.Float64 != 42.5 {
		t.Errorf("2010 value: got %+v, want 42.5", v)
	}
}

func TestReshape_AllRequestedYearsPresent(t *testing.T) {
	regions, basins := testLookups()
	eng := New(Options{Years: []int{2010, 2015, 2020}}, regions, basins)

	rows := []types.RawRow{
		{Region: "Brazil", Category: "Forest_AmazonBasin", Year: 2015, Value: 7},
	}

	out, err := eng.Reshape(rows)
	if err != nil {
		t.Fatal(err)
	}

	idx, err := out.RequireColumns("2010", "2015", "2020")
	if err != nil {
		t.Fatalf("every requested year should be a column: %v", err)
	}
	for col, want := range map[int]string{idx[0]: "0", idx[1]: "7", idx[2]: "0"} {
		if got := out.Cell(0, col); got != want {
			t.Errorf("col %d: got %q, want %q (missing cells fill with 0)", col, got, want)
		}
	}
}

func TestReshape_FiltersYears(t *testing.T) {
	regions, basins := testLookups()
	eng := New(Options{Years: []int{2010}}, regions, basins)

	rows := []types.RawRow{
		{Region: "Brazil", Category: "Forest_AmazonBasin", Year: 2010, Value: 1},
		{Region: "Brazil", Category: "Forest_AmazonBasin", Year: 2005, Value: 99},
	}

	out, err := eng.Reshape(rows)
	if err != nil {
		t.Fatal(err)
	}
	idx, _ := out.RequireColumns("2010")
	if got := out.Cell(0, idx[0]); got != "1" {
		t.Errorf("unrequested year leaked into the pivot: got %q, want 1", got)
	}
}

func TestReshape_UnmappedNamesYieldNullIDs(t *testing.T) {
	regions, basins := testLookups()
	eng := New(Options{Years: []int{2010}}, regions, basins)

	rows := []types.RawRow{
		{Region: "Atlantis", Category: "Corn_LostBasin_RFD", Year: 2010, Value: 5},
	}

	out, err := eng.Reshape(rows)
	if err != nil {
		t.Fatalf("unmapped lookup keys must not be an error: %v", err)
	}

	idx, err := out.RequireColumns("region_id", "metric_id", "region_name", "basin_name")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Cell(0, idx[0]); got != "" {
		t.Errorf("region_id should be null, got %q", got)
	}
	if got := out.Cell(0, idx[1]); got != "" {
		t.Errorf("metric_id should be null, got %q", got)
	}
	if out.Cell(0, idx[2]) != "Atlantis" || out.Cell(0, idx[3]) != "LostBasin" {
		t.Error("names should pass through even when unmapped")
	}
}

func TestReshape_MalformedCategoryAborts(t *testing.T) {
	regions, basins := testLookups()
	eng := New(Options{Years: []int{2010}}, regions, basins)

	rows := []types.RawRow{
		{Region: "Brazil", Category: "Forest", Year: 2010, Value: 1},
	}

	_, err := eng.Reshape(rows)
	if err == nil {
		t.Fatal("malformed category should abort the reshape")
	}
	if !landexerr.IsMalformedCategory(err) {
		t.Errorf("want MALFORMED_CATEGORY, got %v", err)
	}
}

func TestReshape_CustomFieldNamesAndOrdering(t *testing.T) {
	regions, basins := testLookups()
	eng := New(Options{
		Years:           []int{2020, 2010},
		RegionNameField: "gcam_region_name",
		BasinNameField:  "glu_name",
	}, regions, basins)

	rows := []types.RawRow{
		{Region: "Canada", Category: "Wheat_Nelson_RFD", Year: 2010, Value: 3},
		{Region: "Brazil", Category: "Corn_AmazonBasin_IRR", Year: 2010, Value: 4},
		{Region: "Brazil", Category: "biomass_grass_AmazonBasin_IRR", Year: 2020, Value: 5},
	}

	out, err := eng.Reshape(rows)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"gcam_region_name", "glu_name", "region_id", "metric_id", "landclass", "2010", "2020"}
	if len(out.Columns) != len(want) {
		t.Fatalf("columns: got %v, want %v", out.Columns, want)
	}
	for i := range want {
		if out.Columns[i] != want[i] {
			t.Fatalf("columns: got %v, want %v", out.Columns, want)
		}
	}

	// Deterministic ordering: region name, basin name, landclass.
	lcIdx, _ := out.RequireColumns("landclass")
	order := []string{"Corn_IRR", "biomass_grass_IRR", "Wheat_RFD"}
	for i, want := range order {
		if got := out.Cell(i, lcIdx[0]); got != want {
			t.Errorf("row %d landclass: got %q, want %q", i, got, want)
		}
	}
}
