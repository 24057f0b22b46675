// Package query runs the land-allocation query against the model output
// database and returns row records for the reshape pipeline. The database
// engine and the query text are opaque collaborators: the executor only
// requires that the result set carries the scenario, region, category, year,
// units, and value columns.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/landex/landex/internal/errors"
	"github.com/landex/landex/pkg/types"
)

// FieldNames maps the expected result-set columns to the caller's schema.
type FieldNames struct {
	Scenario string
	Region   string
	Category string
	Year     string
	Units    string
	Value    string
}

// DefaultFieldNames returns the column names used by current model output
// databases.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Scenario: "scenario",
		Region:   "region",
		Category: "land-allocation",
		Year:     "year",
		Units:    "units",
		Value:    "value",
	}
}

// Executor runs queries against one model output database.
type Executor struct {
	db     *sql.DB
	fields FieldNames
}

// Open opens the model output database read-only. The caller owns the
// returned executor and must Close it.
func Open(dbPath string, fields FieldNames) (*Executor, error) {
	if fields == (FieldNames{}) {
		fields = DefaultFieldNames()
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryQuery, errors.CodeQueryFailed,
			"open database "+dbPath, err)
	}
	// Single batch invocation; one connection is all the pipeline uses.
	db.SetMaxOpenConns(1)

	return &Executor{db: db, fields: fields}, nil
}

// Close releases the database connection.
func (e *Executor) Close() error {
	return e.db.Close()
}

// LoadQueryFile reads the land-allocation query text from a file. The file
// format is owned by the caller; the executor passes the text through to the
// database unchanged.
func LoadQueryFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCategoryIO, errors.CodeReadFailed,
			"read query file "+path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New(errors.ErrCategoryQuery, errors.CodeQueryFailed,
			"query file "+path+" is empty")
	}
	return text, nil
}

// Execute runs the query and converts the result set into raw rows. Result
// columns are matched by name, so the query may return them in any order and
// may carry extra columns, which are ignored.
func (e *Executor) Execute(ctx context.Context, queryText string) ([]types.RawRow, error) {
	rs, err := e.db.QueryContext(ctx, queryText)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryQuery, errors.CodeQueryFailed,
			"execute land-allocation query", err)
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryQuery, errors.CodeQueryFailed,
			"read result columns", err)
	}

	idx, err := e.columnIndexes(columns)
	if err != nil {
		return nil, err
	}

	var rows []types.RawRow
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rs.Next() {
		if err := rs.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCategoryQuery, errors.CodeQueryFailed,
				"scan result row", err)
		}

		year, err := toYear(values[idx.year])
		if err != nil {
			return nil, err
		}
		value, err := toFloat(values[idx.value])
		if err != nil {
			return nil, err
		}

		rows = append(rows, types.RawRow{
			Scenario: toString(values[idx.scenario]),
			Region:   toString(values[idx.region]),
			Category: toString(values[idx.category]),
			Year:     year,
			Units:    toString(values[idx.units]),
			Value:    value,
		})
	}
	if err := rs.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCategoryQuery, errors.CodeQueryFailed,
			"iterate result rows", err)
	}

	return rows, nil
}

type fieldIndexes struct {
	scenario, region, category, year, units, value int
}

// columnIndexes resolves the expected field names within the result columns.
func (e *Executor) columnIndexes(columns []string) (fieldIndexes, error) {
	find := func(name string) (int, error) {
		for i, c := range columns {
			if strings.EqualFold(c, name) {
				return i, nil
			}
		}
		return -1, errors.Newf(errors.ErrCategoryQuery, errors.CodeMissingColumn,
			"result set has no column %q (have %v)", name, columns)
	}

	var idx fieldIndexes
	var err error
	if idx.scenario, err = find(e.fields.Scenario); err != nil {
		return idx, err
	}
	if idx.region, err = find(e.fields.Region); err != nil {
		return idx, err
	}
	if idx.category, err = find(e.fields.Category); err != nil {
		return idx, err
	}
	if idx.year, err = find(e.fields.Year); err != nil {
		return idx, err
	}
	if idx.units, err = find(e.fields.Units); err != nil {
		return idx, err
	}
	if idx.value, err = find(e.fields.Value); err != nil {
		return idx, err
	}
	return idx, nil
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

func toYear(v interface{}) (int, error) {
	switch y := v.(type) {
	case int64:
		return int(y), nil
	case float64:
		return int(y), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return 0, errors.Wrap(errors.ErrCategoryQuery, errors.CodeBadYear,
				"year "+y+" is not an integer", err)
		}
		return n, nil
	case []byte:
		return toYear(string(y))
	default:
		return 0, errors.Newf(errors.ErrCategoryQuery, errors.CodeBadYear,
			"year has unsupported type %T", v)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case int64:
		return float64(f), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCategoryQuery, errors.CodeBadValue,
				"value "+f+" is not numeric", err)
		}
		return n, nil
	case []byte:
		return toFloat(string(f))
	default:
		return 0, errors.Newf(errors.ErrCategoryQuery, errors.CodeBadValue,
			"value has unsupported type %T", v)
	}
}
