package types

import "strconv"

// NullID is an integer identifier that may be absent. Lookup misses produce
// invalid ids which serialize as empty CSV fields; downstream consumers must
// tolerate them.
type NullID struct {
	Int64 int64
	Valid bool
}

// ID returns a valid NullID holding v.
func ID(v int64) NullID {
	return NullID{Int64: v, Valid: true}
}

// String formats the id for CSV output. Invalid ids render as "".
func (n NullID) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

// Cell is a floating-point table cell that may be null. Nulls arise when a
// projected row has no matching observed fraction; multiplication with a null
// stays null rather than being silently zeroed.
type Cell struct {
	Float64 float64
	Valid   bool
}

// Val returns a valid Cell holding v.
func Val(v float64) Cell {
	return Cell{Float64: v, Valid: true}
}

// Null returns the null Cell.
func Null() Cell {
	return Cell{}
}

// Mul multiplies the cell by f. A null on either side yields null.
func (c Cell) Mul(f Cell) Cell {
	if !c.Valid || !f.Valid {
		return Null()
	}
	return Val(c.Float64 * f.Float64)
}

// String formats the cell for CSV output. Nulls render as "".
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Float64, 'g', -1, 64)
}

// ParseCell parses a CSV field into a Cell. Empty fields are null.
func ParseCell(s string) (Cell, error) {
	if s == "" {
		return Null(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null(), err
	}
	return Val(f), nil
}

// ParseNullID parses a CSV field into a NullID. Empty fields are invalid ids.
func ParseNullID(s string) (NullID, error) {
	if s == "" {
		return NullID{}, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NullID{}, err
	}
	return ID(v), nil
}
