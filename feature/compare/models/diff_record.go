package models

import (
	"strings"
	"time"

	"datadiff/core/reconcile"
)

// DiffRecordRow is the persisted form of one reconcile.DiffRecord.
type DiffRecordRow struct {
	ID               uint      `gorm:"primaryKey;column:id"`
	RunID            string    `gorm:"column:run_id;type:varchar(36);index"`
	SourceALabel     string    `gorm:"column:source_a_label;type:varchar(255)"`
	SourceBLabel     string    `gorm:"column:source_b_label;type:varchar(255)"`
	KeyColumns       string    `gorm:"column:key_columns;type:varchar(1024)"`
	KeyValues        string    `gorm:"column:key_values;type:text"`
	ErrorDescription string    `gorm:"column:error_description;type:varchar(64);index"`
	ErrorField       string    `gorm:"column:error_field;type:varchar(255)"`
	ValueA           string    `gorm:"column:value_a;type:text"`
	ValueB           string    `gorm:"column:value_b;type:text"`
	DetectedAt       time.Time `gorm:"column:detected_at"`
}

// TableName is the default table; the database sink may override it.
func (DiffRecordRow) TableName() string { return "diff_records" }

// DiffRunRow stores the summary of one comparison run.
type DiffRunRow struct {
	ID               string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	SourceALabel     string    `gorm:"column:source_a_label;type:varchar(255)"`
	SourceBLabel     string    `gorm:"column:source_b_label;type:varchar(255)"`
	KeyColumns       string    `gorm:"column:key_columns;type:varchar(1024)"`
	RowsOnlyInA      int       `gorm:"column:rows_only_in_a"`
	RowsOnlyInB      int       `gorm:"column:rows_only_in_b"`
	ValueDifferences int       `gorm:"column:value_differences"`
	UntrimmedOnly    int       `gorm:"column:untrimmed_only"`
	MatchedRows      int       `gorm:"column:matched_rows"`
	RowCountA        int       `gorm:"column:row_count_a"`
	RowCountB        int       `gorm:"column:row_count_b"`
	ColumnsOnlyInA   string    `gorm:"column:columns_only_in_a;type:text"`
	ColumnsOnlyInB   string    `gorm:"column:columns_only_in_b;type:text"`
	GeneratedAt      time.Time `gorm:"column:generated_at"`
}

// TableName returns the run summary table.
func (DiffRunRow) TableName() string { return "diff_runs" }

// NewDiffRecordRows flattens a report into rows.
func NewDiffRecordRows(report *reconcile.Report) []DiffRecordRow {
	rows := make([]DiffRecordRow, len(report.Records))
	for i, rec := range report.Records {
		rows[i] = DiffRecordRow{
			RunID:            report.ID,
			SourceALabel:     rec.SourceALabel,
			SourceBLabel:     rec.SourceBLabel,
			KeyColumns:       strings.Join(rec.KeyColumns, ","),
			KeyValues:        rec.KeyValues,
			ErrorDescription: string(rec.ErrorDescription),
			ErrorField:       rec.ErrorField,
			ValueA:           rec.ValueA,
			ValueB:           rec.ValueB,
			DetectedAt:       rec.DetectedAt,
		}
	}
	return rows
}

// NewDiffRunRow builds the run summary row.
func NewDiffRunRow(report *reconcile.Report) DiffRunRow {
	s := report.Summary
	return DiffRunRow{
		ID:               report.ID,
		SourceALabel:     report.SourceALabel,
		SourceBLabel:     report.SourceBLabel,
		KeyColumns:       strings.Join(report.KeyColumns, ","),
		RowsOnlyInA:      s.RowsOnlyInA,
		RowsOnlyInB:      s.RowsOnlyInB,
		ValueDifferences: s.ValueDifferences,
		UntrimmedOnly:    s.UntrimmedOnly,
		MatchedRows:      s.MatchedRows,
		RowCountA:        s.RowCountA,
		RowCountB:        s.RowCountB,
		ColumnsOnlyInA:   strings.Join(s.ColumnsOnlyInA, ","),
		ColumnsOnlyInB:   strings.Join(s.ColumnsOnlyInB, ","),
		GeneratedAt:      report.GeneratedAt,
	}
}
