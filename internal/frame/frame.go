// Package frame provides a small in-memory row-oriented table with CSV
// read/write support. All landex pipelines are batch transforms over tables
// that fit in memory, so the representation favors simplicity: a header and
// string cells, with typed accessors where arithmetic is needed.
package frame

import (
	"encoding/csv"
	"os"

	"github.com/landex/landex/internal/errors"
	"github.com/landex/landex/pkg/types"
)

// Table is a row-oriented table with named columns. Cells are CSV fields;
// empty cells represent nulls.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. Short rows are padded with empty cells so every row
// has one cell per column.
func (t *Table) Append(row ...string) {
	for len(row) < len(t.Columns) {
		row = append(row, "")
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// RequireColumns resolves the positions of the named columns, failing with
// a MISSING_COLUMN error on the first absent name.
func (t *Table) RequireColumns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, ok := t.ColumnIndex(name)
		if !ok {
			return nil, errors.Newf(errors.ErrCategoryLookup, errors.CodeMissingColumn,
				"column %q not found (have %v)", name, t.Columns)
		}
		idx[i] = j
	}
	return idx, nil
}

// Cell returns the cell at row i, column j. Out-of-range positions read as
// empty (null) cells.
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// Float parses the cell at row i, column j as a nullable float.
func (t *Table) Float(i, j int) (types.Cell, error) {
	s := t.Cell(i, j)
	c, err := types.ParseCell(s)
	if err != nil {
		return types.Null(), errors.Wrap(errors.ErrCategoryQuery, errors.CodeBadValue,
			"cell "+s+" is not numeric", err)
	}
	return c, nil
}

// ReadCSV loads a comma-separated file into a table. The first record is the
// header. I/O and parse failures propagate wrapped, with no retry.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryIO, errors.CodeReadFailed,
			"open "+path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryIO, errors.CodeReadFailed,
			"parse "+path, err)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCategoryIO, errors.CodeReadFailed,
			"file "+path+" has no header record")
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// WriteCSV writes the table to a comma-separated file with a header record
// and no index column. An empty path fails with MISSING_OUTPUT_PATH before
// any write is attempted.
func (t *Table) WriteCSV(path string) error {
	if path == "" {
		return errors.New(errors.ErrCategoryConfig, errors.CodeMissingOutputPath,
			"output requested but no destination path configured")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"create "+path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"write header to "+path, err)
	}
	for _, row := range t.Rows {
		// Pad short rows so the file stays rectangular.
		if len(row) < len(t.Columns) {
			padded := make([]string, len(t.Columns))
			copy(padded, row)
			row = padded
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
				"write row to "+path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"flush "+path, err)
	}
	return nil
}

// Select returns a new table restricted to the named columns, in order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx, err := t.RequireColumns(names...)
	if err != nil {
		return nil, err
	}

	out := New(names...)
	for i := range t.Rows {
		row := make([]string, len(idx))
		for k, j := range idx {
			row[k] = t.Cell(i, j)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
