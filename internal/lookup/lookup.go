// Package lookup loads name→id reference tables from comma-separated files.
// Region and sub-basin lookups share the same shape: a name column and an
// integer id column, with caller-configurable column names.
//
// Misses are not errors. The API returns (id, ok) so callers consciously
// decide how to handle unmapped names; the reshape pipeline records a null
// id and moves on, matching the pass-through policy of the model toolchain.
package lookup

import (
	"strconv"

	"github.com/landex/landex/internal/errors"
	"github.com/landex/landex/internal/frame"
	"github.com/landex/landex/pkg/types"
)

// Table maps reference names to integer identifiers.
type Table struct {
	ids map[string]int64
}

// Load reads a reference file and builds the lookup from its name and id
// columns. Rows sharing a name keep the last id seen, mirroring how the
// reference files are consumed elsewhere in the toolchain; reference data is
// expected to be unique-keyed.
func Load(path, nameField, idField string) (*Table, error) {
	tbl, err := frame.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return FromFrame(tbl, nameField, idField)
}

// FromFrame builds the lookup from an already-loaded table.
func FromFrame(tbl *frame.Table, nameField, idField string) (*Table, error) {
	idx, err := tbl.RequireColumns(nameField, idField)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		name := tbl.Cell(i, idx[0])
		raw := tbl.Cell(i, idx[1])
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategoryLookup, errors.CodeBadID,
				"id "+raw+" for key "+name+" is not an integer", err)
		}
		ids[name] = id
	}

	return &Table{ids: ids}, nil
}

// FromMap builds a lookup directly from a map, mainly for tests.
func FromMap(ids map[string]int64) *Table {
	cp := make(map[string]int64, len(ids))
	for k, v := range ids {
		cp[k] = v
	}
	return &Table{ids: cp}
}

// ID returns the identifier for name and whether it is mapped.
func (t *Table) ID(name string) (int64, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// NullID returns the identifier for name as a NullID, invalid on a miss.
func (t *Table) NullID(name string) types.NullID {
	if id, ok := t.ids[name]; ok {
		return types.ID(id)
	}
	return types.NullID{}
}

// Len returns the number of mapped names.
func (t *Table) Len() int {
	return len(t.ids)
}
