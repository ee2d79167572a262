package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"datadiff/core/reconcile"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/goccy/go-json"
)

// ExportFormat selects how a report is encoded.
type ExportFormat string

const (
	FormatJSON    ExportFormat = "json"
	FormatCSV     ExportFormat = "csv"
	FormatParquet ExportFormat = "parquet"
)

// FormatFromPath picks the export format from a file extension. JSON is the default.
func FormatFromPath(path string) ExportFormat {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		return FormatCSV
	case isParquet(path):
		return FormatParquet
	default:
		return FormatJSON
	}
}

// recordHeader is the column order of tabular exports.
var recordHeader = []string{
	"source_a_label", "source_b_label", "key_columns", "key_values",
	"error_description", "error_field", "value_a", "value_b", "detected_at",
}

// ExportReport writes the report in the given format. JSON carries the whole report;
// CSV and Parquet carry the records only.
func ExportReport(w io.Writer, report *reconcile.Report, format ExportFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatCSV:
		return exportCSV(w, report.Records)
	case FormatParquet:
		return exportParquet(w, report.Records)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func recordFields(rec reconcile.DiffRecord) []string {
	return []string{
		rec.SourceALabel,
		rec.SourceBLabel,
		strings.Join(rec.KeyColumns, ","),
		rec.KeyValues,
		string(rec.ErrorDescription),
		rec.ErrorField,
		rec.ValueA,
		rec.ValueB,
		rec.DetectedAt.UTC().Format(time.RFC3339Nano),
	}
}

func exportCSV(w io.Writer, records []reconcile.DiffRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(recordHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(recordFields(rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportParquet(w io.Writer, records []reconcile.DiffRecord) error {
	fields := make([]arrow.Field, 0, len(recordHeader))
	for _, name := range recordHeader[:len(recordHeader)-1] {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.BinaryTypes.String})
	}
	fields = append(fields, arrow.Field{Name: "detected_at", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}})
	schema := arrow.NewSchema(fields, nil)

	mem := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, rec := range records {
		for i, v := range recordFields(rec)[:len(recordHeader)-1] {
			builder.Field(i).(*array.StringBuilder).Append(v)
		}
		ts, err := arrow.TimestampFromTime(rec.DetectedAt, arrow.Microsecond)
		if err != nil {
			return fmt.Errorf("failed to convert detected_at: %w", err)
		}
		builder.Field(len(recordHeader) - 1).(*array.TimestampBuilder).Append(ts)
	}

	batch := builder.NewRecord()
	defer batch.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(batch); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet data: %w", err)
	}
	return writer.Close()
}
