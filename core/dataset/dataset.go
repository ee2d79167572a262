package dataset

import (
	"errors"
	"fmt"
)

// Column is a named, ordered slice of values.
type Column struct {
	Name   string
	Values []Value
}

// NewColumn builds a column from values.
func NewColumn(name string, values ...Value) Column {
	return Column{Name: name, Values: values}
}

// Dataset is an immutable set of equal-length columns.
type Dataset struct {
	label   string
	columns []Column
	index   map[string]int
	rows    int
}

// New validates the columns and returns a dataset that owns copies of them.
func New(label string, columns ...Column) (*Dataset, error) {
	ds := &Dataset{
		label:   label,
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		if _, dup := ds.index[col.Name]; dup {
			return nil, &SchemaError{
				Stage:   "load",
				Dataset: label,
				Columns: []string{col.Name},
				Reason:  "duplicate column name",
			}
		}
		if i == 0 {
			ds.rows = len(col.Values)
		} else if len(col.Values) != ds.rows {
			return nil, &SchemaError{
				Stage:   "load",
				Dataset: label,
				Columns: []string{columns[0].Name, col.Name},
				Reason:  fmt.Sprintf("column lengths differ (%d vs %d)", ds.rows, len(col.Values)),
			}
		}

		values := make([]Value, len(col.Values))
		copy(values, col.Values)
		ds.index[col.Name] = i
		ds.columns = append(ds.columns, Column{Name: col.Name, Values: values})
	}

	return ds, nil
}

// FromRows builds a dataset from a header and row-major values converted with FromAny.
func FromRows(label string, header []string, rows [][]any) (*Dataset, error) {
	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Values: make([]Value, 0, len(rows))}
	}

	for r, row := range rows {
		if len(row) != len(header) {
			return nil, &SchemaError{
				Stage:   "load",
				Dataset: label,
				Reason:  fmt.Sprintf("row %d has %d fields, header has %d", r, len(row), len(header)),
			}
		}
		for c, raw := range row {
			v, err := FromAny(raw)
			if err != nil {
				var tce *TypeCoercionError
				if errors.As(err, &tce) {
					tce.Column = header[c]
				}
				return nil, fmt.Errorf("row %d: %w", r, err)
			}
			columns[c].Values = append(columns[c].Values, v)
		}
	}

	return New(label, columns...)
}

// Label returns the display label of the dataset.
func (d *Dataset) Label() string { return d.label }

// WithLabel returns a dataset sharing the same columns under a new label.
func (d *Dataset) WithLabel(label string) *Dataset {
	cp := *d
	cp.label = label
	return &cp
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int { return d.rows }

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int { return len(d.columns) }

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether the dataset has a column with this name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	values := make([]Value, d.rows)
	copy(values, d.columns[i].Values)
	return Column{Name: name, Values: values}, true
}

// Value returns the cell at row in the named column.
func (d *Dataset) Value(row int, name string) (Value, bool) {
	i, ok := d.index[name]
	if !ok || row < 0 || row >= d.rows {
		return Value{}, false
	}
	return d.columns[i].Values[row], true
}

// Row returns a copy of every cell in row, in column order.
func (d *Dataset) Row(row int) []Value {
	out := make([]Value, len(d.columns))
	for i, col := range d.columns {
		out[i] = col.Values[row]
	}
	return out
}

// ColumnKind returns the kind shared by the non-null values of a column.
// Columns that are all null report KindNull; mixed columns report KindString.
func (d *Dataset) ColumnKind(name string) Kind {
	i, ok := d.index[name]
	if !ok {
		return KindNull
	}
	kind := KindNull
	for _, v := range d.columns[i].Values {
		if v.kind == KindNull {
			continue
		}
		if kind == KindNull {
			kind = v.kind
		} else if kind != v.kind {
			return KindString
		}
	}
	return kind
}
