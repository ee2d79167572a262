package compare

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"datadiff/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var detectedAt = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func sampleReport() *reconcile.Report {
	key := []string{"id"}
	return &reconcile.Report{
		ID:           "run-1",
		SourceALabel: "old",
		SourceBLabel: "new",
		KeyColumns:   key,
		Records: []reconcile.DiffRecord{
			{SourceALabel: "old", SourceBLabel: "new", KeyColumns: key, KeyValues: "1", ErrorDescription: reconcile.OnlyInA, DetectedAt: detectedAt},
			{SourceALabel: "old", SourceBLabel: "new", KeyColumns: key, KeyValues: "2", ErrorDescription: reconcile.ValueDifference, ErrorField: "amount", ValueA: "10", ValueB: "11", DetectedAt: detectedAt},
		},
		Summary: reconcile.Summary{
			RowsOnlyInA:      1,
			ValueDifferences: 1,
			MatchedRows:      1,
			RowCountA:        2,
			RowCountB:        1,
			ColumnsOnlyInA:   []string{},
			ColumnsOnlyInB:   []string{},
		},
		GeneratedAt: detectedAt,
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromPath("out/report.CSV"))
	assert.Equal(t, FormatParquet, FormatFromPath("report.parquet"))
	assert.Equal(t, FormatParquet, FormatFromPath("report.pq"))
	assert.Equal(t, FormatJSON, FormatFromPath("report.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("report"))
}

func TestExportReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportReport(&buf, sampleReport(), FormatJSON))

	var decoded reconcile.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.ID)
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, reconcile.ValueDifference, decoded.Records[1].ErrorDescription)
	assert.True(t, detectedAt.Equal(decoded.Records[1].DetectedAt))
}

func TestExportReport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportReport(&buf, sampleReport(), FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, recordHeader, rows[0])
	assert.Equal(t, []string{"old", "new", "id", "2", "value_difference", "amount", "10", "11", "2025-03-04T05:06:07Z"}, rows[2])
}

func TestExportReport_Parquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportReport(&buf, sampleReport(), FormatParquet))

	ds, err := decodeParquet(context.Background(), "export", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 2, ds.NumRows())
	assert.Equal(t, recordHeader, ds.ColumnNames())

	v, _ := ds.Value(1, "error_field")
	assert.Equal(t, "amount", v.Render())
	v, _ = ds.Value(0, "detected_at")
	ts, ok := v.Time()
	require.True(t, ok)
	assert.True(t, detectedAt.Equal(ts))
}

func TestExportReport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.EqualError(t, ExportReport(&buf, sampleReport(), "xml"), "unsupported export format: xml")
}
