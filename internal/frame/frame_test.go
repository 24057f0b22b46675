package frame

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	landexerr "github.com/landex/landex/internal/errors"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tbl := New("region_id", "metric_id", "landclass", "2010", "2015")
	tbl.Append("1", "10", "Corn_IRR", "100.5", "101.25")
	tbl.Append("1", "11", "Forest", "0", "")
	tbl.Append("2", "10", "UrbanLand", "-3.25", "7e-05")

	if err := tbl.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if len(got.Columns) != len(tbl.Columns) {
		t.Fatalf("columns: got %v, want %v", got.Columns, tbl.Columns)
	}
	if got.Len() != tbl.Len() {
		t.Fatalf("rows: got %d, want %d", got.Len(), tbl.Len())
	}

	// Numeric cells must survive the trip within floating tolerance.
	yearCols := []int{3, 4}
	for i := 0; i < tbl.Len(); i++ {
		for _, j := range yearCols {
			want, err := tbl.Float(i, j)
			if err != nil {
				t.Fatal(err)
			}
			have, err := got.Float(i, j)
			if err != nil {
				t.Fatal(err)
			}
			if want.Valid != have.Valid {
				t.Errorf("row %d col %d: validity changed", i, j)
			}
			if want.Valid && math.Abs(want.Float64-have.Float64) > 1e-12 {
				t.Errorf("row %d col %d: got %v, want %v", i, j, have.Float64, want.Float64)
			}
		}
	}
}

func TestWriteCSV_NoDestination(t *testing.T) {
	tbl := New("a")
	tbl.Append("1")

	err := tbl.WriteCSV("")
	if err == nil {
		t.Fatal("WriteCSV with empty path should fail")
	}
	if !landexerr.IsMissingOutputPath(err) {
		t.Errorf("want MISSING_OUTPUT_PATH, got %v", err)
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("ReadCSV of a missing file should fail")
	}
	if !errors.Is(err, landexerr.New(landexerr.ErrCategoryIO, landexerr.CodeReadFailed, "")) {
		t.Errorf("want READ_FAILED, got %v", err)
	}
}

func TestRequireColumns(t *testing.T) {
	tbl := New("region_id", "basin_id", "snow")

	idx, err := tbl.RequireColumns("basin_id", "region_id")
	if err != nil {
		t.Fatal(err)
	}
	if idx[0] != 1 || idx[1] != 0 {
		t.Errorf("got %v, want [1 0]", idx)
	}

	_, err = tbl.RequireColumns("sparse")
	if err == nil {
		t.Fatal("missing column should fail")
	}
	if !errors.Is(err, landexerr.New(landexerr.ErrCategoryLookup, landexerr.CodeMissingColumn, "")) {
		t.Errorf("want MISSING_COLUMN, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	tbl := New("region_id", "basin_id", "snow", "sparse")
	tbl.Append("1", "10", "30", "70")
	tbl.Append("2", "20", "5", "0")

	got, err := tbl.Select("region_id", "sparse")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 || got.Cell(0, 1) != "70" || got.Cell(1, 0) != "2" {
		t.Errorf("unexpected selection: %+v", got)
	}
}

func TestAppend_PadsShortRows(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.Append("1")
	if got := tbl.Cell(0, 2); got != "" {
		t.Errorf("padded cell should be empty, got %q", got)
	}
}
