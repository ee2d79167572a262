package compare

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"datadiff/core/dataset"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// decodeCSV reads a header row followed by data rows. Empty cells become null.
func decodeCSV(label string, r io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &dataset.SchemaError{Stage: "load", Dataset: label, Reason: "csv has no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+1, err)
		}

		row := make([]any, len(record))
		for i, cell := range record {
			if cell == "" {
				row[i] = nil
				continue
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}

	return dataset.FromRows(label, header, rows)
}

// decodeParquet reads a whole Parquet file into memory through Arrow.
func decodeParquet(ctx context.Context, label string, r parquet.ReaderAtSeeker) (*dataset.Dataset, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	return tableToDataset(label, table)
}

func tableToDataset(label string, table arrow.Table) (*dataset.Dataset, error) {
	schema := table.Schema()
	columns := make([]dataset.Column, schema.NumFields())

	for c := 0; c < int(table.NumCols()); c++ {
		name := schema.Field(c).Name
		values := make([]dataset.Value, 0, table.NumRows())
		for _, chunk := range table.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				v, err := arrowValue(chunk, i)
				if err != nil {
					var tce *dataset.TypeCoercionError
					if errors.As(err, &tce) {
						tce.Column = name
					}
					return nil, err
				}
				values = append(values, v)
			}
		}
		columns[c] = dataset.NewColumn(name, values...)
	}

	return dataset.New(label, columns...)
}

// arrowValue maps one Arrow cell to a Value. Nested and exotic types fall back to
// their JSON-marshal form as strings.
func arrowValue(col arrow.Array, pos int) (dataset.Value, error) {
	if col.IsNull(pos) {
		return dataset.Null(), nil
	}

	switch a := col.(type) {
	case *array.String:
		return dataset.String(a.Value(pos)), nil
	case *array.LargeString:
		return dataset.String(a.Value(pos)), nil
	case *array.Binary:
		return dataset.String(string(a.Value(pos))), nil
	case *array.Boolean:
		return dataset.Boolean(a.Value(pos)), nil
	case *array.Int8:
		return dataset.Integer(int64(a.Value(pos))), nil
	case *array.Int16:
		return dataset.Integer(int64(a.Value(pos))), nil
	case *array.Int32:
		return dataset.Integer(int64(a.Value(pos))), nil
	case *array.Int64:
		return dataset.Integer(a.Value(pos)), nil
	case *array.Uint8:
		return dataset.Integer(int64(a.Value(pos))), nil
	case *array.Uint16:
		return dataset.Integer(int64(a.Value(pos))), nil
	case *array.Uint32:
		return dataset.Integer(int64(a.Value(pos))), nil
	case *array.Uint64:
		return dataset.FromAny(a.Value(pos))
	case *array.Float32:
		return dataset.Float(float64(a.Value(pos))), nil
	case *array.Float64:
		return dataset.Float(a.Value(pos)), nil
	case *array.Date32:
		return dataset.Timestamp(a.Value(pos).ToTime()), nil
	case *array.Date64:
		return dataset.Timestamp(a.Value(pos).ToTime()), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return dataset.Timestamp(a.Value(pos).ToTime(unit)), nil
	case *array.Decimal128:
		return dataset.String(a.ValueStr(pos)), nil
	}

	raw := col.GetOneForMarshal(pos)
	if s, ok := raw.(string); ok {
		return dataset.String(s), nil
	}
	return dataset.String(col.ValueStr(pos)), nil
}
