package disaggregate

import (
	"math"
	"testing"

	"github.com/landex/landex/internal/fraction"
	"github.com/landex/landex/internal/frame"
)

func snowSparseFractions(t *testing.T) *fraction.Table {
	t.Helper()
	observed := frame.New("region_id", "basin_id", "snow", "sparse")
	observed.Append("1", "10", "30", "70")
	observed.Append("2", "20", "0", "0")

	ft, err := fraction.Calculate(observed, fraction.Options{
		MetricField: "basin_id",
		Classes:     []string{"snow", "sparse"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ft
}

func projectedTable() *frame.Table {
	tbl := frame.New("region_name", "basin_name", "region_id", "metric_id", "landclass", "2010", "2015")
	tbl.Append("Brazil", "AmazonBasin", "1", "10", "RockIceDesert", "100", "50")
	tbl.Append("Brazil", "AmazonBasin", "1", "10", "Forest", "7", "8")
	tbl.Append("Canada", "Nelson", "2", "20", "Corn_IRR", "1", "2")
	return tbl
}

func TestSplit(t *testing.T) {
	out, err := Split(projectedTable(), snowSparseFractions(t), Options{
		TargetClass: "RockIceDesert",
		Years:       []int{2010, 2015},
	})
	if err != nil {
		t.Fatal(err)
	}

	// 3 input rows: target row replaced by 2 class rows, 2 pass-through.
	if out.Len() != 4 {
		t.Fatalf("got %d rows, want 4", out.Len())
	}

	idx, err := out.RequireColumns("landclass", "2010", "2015")
	if err != nil {
		t.Fatal(err)
	}

	byClass := map[string][]string{}
	for i := 0; i < out.Len(); i++ {
		byClass[out.Cell(i, idx[0])] = []string{out.Cell(i, idx[1]), out.Cell(i, idx[2])}
	}

	if _, ok := byClass["RockIceDesert"]; ok {
		t.Error("target coarse class should be removed from the output")
	}
	if got := byClass["snow"]; got[0] != "30" || got[1] != "15" {
		t.Errorf("snow: got %v, want [30 15]", got)
	}
	if got := byClass["sparse"]; got[0] != "70" || got[1] != "35" {
		t.Errorf("sparse: got %v, want [70 35]", got)
	}

	// Mass conservation: snow + sparse == original value per year.
	for col, want := range map[int]float64{idx[1]: 100, idx[2]: 50} {
		sum := 0.0
		for i := 0; i < out.Len(); i++ {
			class := out.Cell(i, idx[0])
			if class != "snow" && class != "sparse" {
				continue
			}
			v, err := out.Float(i, col)
			if err != nil {
				t.Fatal(err)
			}
			sum += v.Float64
		}
		if math.Abs(sum-want) > 1e-9 {
			t.Errorf("col %d: split rows sum to %v, want %v", col, sum, want)
		}
	}
}

func TestSplit_PassThroughRowsUnchanged(t *testing.T) {
	projected := projectedTable()
	out, err := Split(projected, snowSparseFractions(t), Options{
		TargetClass: "RockIceDesert",
		Years:       []int{2010, 2015},
	})
	if err != nil {
		t.Fatal(err)
	}

	idx, _ := out.RequireColumns("landclass")
	found := 0
	for i := 0; i < out.Len(); i++ {
		class := out.Cell(i, idx[0])
		if class != "Forest" && class != "Corn_IRR" {
			continue
		}
		found++
		var want []string
		for j := 0; j < projected.Len(); j++ {
			if projected.Cell(j, idx[0]) == class {
				want = projected.Rows[j]
			}
		}
		for j := range out.Columns {
			if out.Cell(i, j) != want[j] {
				t.Errorf("%s col %d: got %q, want %q", class, j, out.Cell(i, j), want[j])
			}
		}
	}
	if found != 2 {
		t.Errorf("found %d pass-through rows, want 2", found)
	}
}

func TestSplit_MissingFractionPropagatesNull(t *testing.T) {
	projected := frame.New("region_id", "metric_id", "landclass", "2010")
	projected.Append("9", "99", "RockIceDesert", "100")

	out, err := Split(projected, snowSparseFractions(t), Options{
		TargetClass: "RockIceDesert",
		Years:       []int{2010},
	})
	if err != nil {
		t.Fatal(err)
	}

	idx, _ := out.RequireColumns("2010")
	for i := 0; i < out.Len(); i++ {
		if got := out.Cell(i, idx[0]); got != "" {
			t.Errorf("row %d: unmatched key should yield null year cell, got %q", i, got)
		}
	}
}

func TestSplit_FillMissingFractions(t *testing.T) {
	projected := frame.New("region_id", "metric_id", "landclass", "2010")
	projected.Append("9", "99", "RockIceDesert", "100")

	out, err := Split(projected, snowSparseFractions(t), Options{
		TargetClass:          "RockIceDesert",
		Years:                []int{2010},
		FillMissingFractions: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	idx, _ := out.RequireColumns("2010")
	for i := 0; i < out.Len(); i++ {
		if got := out.Cell(i, idx[0]); got != "0" {
			t.Errorf("row %d: filled fraction should yield 0, got %q", i, got)
		}
	}
}

func TestSplit_ZeroTotalKeyScalesToZero(t *testing.T) {
	projected := frame.New("region_id", "metric_id", "landclass", "2010")
	projected.Append("2", "20", "RockIceDesert", "100")

	out, err := Split(projected, snowSparseFractions(t), Options{
		TargetClass: "RockIceDesert",
		Years:       []int{2010},
	})
	if err != nil {
		t.Fatal(err)
	}

	idx, _ := out.RequireColumns("2010")
	if out.Len() != 2 {
		t.Fatalf("got %d rows, want 2", out.Len())
	}
	for i := 0; i < out.Len(); i++ {
		if got := out.Cell(i, idx[0]); got != "0" {
			t.Errorf("zero-total key: got %q, want 0", got)
		}
	}
}

func TestSplit_AbsentTargetClassIsPermissive(t *testing.T) {
	projected := frame.New("region_id", "metric_id", "landclass", "2010")
	projected.Append("1", "10", "Forest", "7")

	out, err := Split(projected, snowSparseFractions(t), Options{
		TargetClass: "RockIceDesert",
		Years:       []int{2010},
	})
	if err != nil {
		t.Fatalf("absent target class must not be an error: %v", err)
	}
	if out.Len() != 1 || out.Cell(0, 2) != "Forest" {
		t.Errorf("pass-through rows should survive unchanged: %+v", out.Rows)
	}
}

func TestSplit_NoHelperColumnsInOutput(t *testing.T) {
	out, err := Split(projectedTable(), snowSparseFractions(t), Options{
		TargetClass: "RockIceDesert",
		Years:       []int{2010, 2015},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Columns) != 7 {
		t.Fatalf("output schema changed: %v", out.Columns)
	}
	for _, c := range out.Columns {
		if c == "reg_basin" || c == "frac_snow" || c == "frac_sparse" {
			t.Errorf("helper column %q leaked into output", c)
		}
	}
}
