package fraction

import (
	"math"
	"testing"

	"github.com/landex/landex/internal/frame"
)

func observedTable() *frame.Table {
	tbl := frame.New("region_id", "basin_id", "snow", "sparse", "other")
	tbl.Append("1", "10", "30", "70", "999")
	tbl.Append("1", "11", "0", "0", "999")
	tbl.Append("2", "10", "5", "15", "999")
	// second raw row for key 2_10: sums aggregate before fractions
	tbl.Append("2", "10", "15", "15", "999")
	return tbl
}

func TestCalculate(t *testing.T) {
	ft, err := Calculate(observedTable(), Options{
		MetricField: "basin_id",
		Classes:     []string{"snow", "sparse"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if ft.Len() != 3 {
		t.Fatalf("got %d keys, want 3", ft.Len())
	}

	fr, ok := ft.Fractions("1_10")
	if !ok {
		t.Fatal("key 1_10 missing")
	}
	if math.Abs(fr[0]-0.3) > 1e-12 || math.Abs(fr[1]-0.7) > 1e-12 {
		t.Errorf("1_10 fractions: got %v, want [0.3 0.7]", fr)
	}

	// Rows sharing a key aggregate first: snow 5+15=20, sparse 15+15=30.
	fr, ok = ft.Fractions("2_10")
	if !ok {
		t.Fatal("key 2_10 missing")
	}
	if math.Abs(fr[0]-0.4) > 1e-12 || math.Abs(fr[1]-0.6) > 1e-12 {
		t.Errorf("2_10 fractions: got %v, want [0.4 0.6]", fr)
	}
}

func TestCalculate_ZeroTotalYieldsZeroFractions(t *testing.T) {
	ft, err := Calculate(observedTable(), Options{
		MetricField: "basin_id",
		Classes:     []string{"snow", "sparse"},
	})
	if err != nil {
		t.Fatal(err)
	}

	fr, ok := ft.Fractions("1_11")
	if !ok {
		t.Fatal("zero-total key should still be present")
	}
	for i, f := range fr {
		if f != 0 {
			t.Errorf("class %d: got %v, want explicit 0 (no NaN propagation)", i, f)
		}
	}
}

func TestCalculate_MissingClassColumn(t *testing.T) {
	_, err := Calculate(observedTable(), Options{
		MetricField: "basin_id",
		Classes:     []string{"snow", "glacier"},
	})
	if err == nil {
		t.Fatal("missing observed class column should fail")
	}
}

func TestOptions_KeyField(t *testing.T) {
	tests := []struct {
		metric string
		want   string
	}{
		{"basin_id", "reg_basin"},
		{"aez_id", "reg_aez"},
		{"zone", "reg_zone"},
	}
	for _, tt := range tests {
		if got := (Options{MetricField: tt.metric}).KeyField(); got != tt.want {
			t.Errorf("KeyField(%q): got %q, want %q", tt.metric, got, tt.want)
		}
	}
}

func TestTable_Frame(t *testing.T) {
	ft, err := Calculate(observedTable(), Options{
		MetricField: "basin_id",
		Classes:     []string{"snow", "sparse"},
	})
	if err != nil {
		t.Fatal(err)
	}

	f := ft.Frame()
	want := []string{"reg_basin", "frac_snow", "frac_sparse"}
	for i := range want {
		if f.Columns[i] != want[i] {
			t.Fatalf("columns: got %v, want %v", f.Columns, want)
		}
	}
	if f.Len() != 3 {
		t.Fatalf("got %d rows, want 3", f.Len())
	}
	// Keys are sorted for deterministic output.
	if f.Cell(0, 0) != "1_10" || f.Cell(1, 0) != "1_11" || f.Cell(2, 0) != "2_10" {
		t.Errorf("unexpected key order: %v %v %v", f.Cell(0, 0), f.Cell(1, 0), f.Cell(2, 0))
	}
}
