package reconcile

import (
	"time"

	"datadiff/core/dataset"

	"go.uber.org/zap"
)

// Description classifies a DiffRecord. The string values are a closed, stable
// vocabulary that sinks persist verbatim.
type Description string

const (
	// OnlyInA marks a key present in dataset A but absent from B.
	OnlyInA Description = "only_in_a"
	// OnlyInB marks a key present in dataset B but absent from A.
	OnlyInB Description = "only_in_b"
	// ValueDifference marks a matched cell whose values differ.
	ValueDifference Description = "value_difference"
	// ValueDifferenceUntrimmedOnly marks string cells equal once surrounding whitespace is trimmed.
	ValueDifferenceUntrimmedOnly Description = "value_difference_untrimmed_only"
)

// Descriptions lists every Description in report order.
var Descriptions = []Description{OnlyInA, OnlyInB, ValueDifference, ValueDifferenceUntrimmedOnly}

// DiffRecord is one reported discrepancy.
type DiffRecord struct {
	// SourceALabel and SourceBLabel name the compared datasets.
	SourceALabel string `json:"source_a_label"`
	SourceBLabel string `json:"source_b_label"`

	// KeyColumns is the ordered key specification.
	KeyColumns []string `json:"key_columns"`

	// KeyValues is the comma-joined key tuple of the affected row.
	KeyValues string `json:"key_values"`

	// ErrorDescription classifies the discrepancy.
	ErrorDescription Description `json:"error_description"`

	// ErrorField is the compared column. Empty for row-presence records.
	ErrorField string `json:"error_field"`

	// ValueA and ValueB are the rendered cell values. Empty for row-presence records.
	ValueA string `json:"value_a"`
	ValueB string `json:"value_b"`

	// DetectedAt is the assembly timestamp shared by every record of a report.
	DetectedAt time.Time `json:"detected_at"`
}

// Summary provides aggregate counts for a report.
type Summary struct {
	// RowsOnlyInA counts only_in_a records.
	RowsOnlyInA int `json:"rows_only_in_a"`

	// RowsOnlyInB counts only_in_b records.
	RowsOnlyInB int `json:"rows_only_in_b"`

	// ValueDifferences counts every value record, untrimmed-only ones included.
	ValueDifferences int `json:"value_differences"`

	// UntrimmedOnly counts value_difference_untrimmed_only records.
	UntrimmedOnly int `json:"untrimmed_only"`

	// MatchedRows counts matched row pairs.
	MatchedRows int `json:"matched_rows"`

	RowCountA          int `json:"row_count_a"`
	RowCountB          int `json:"row_count_b"`
	RowCountDifference int `json:"row_count_difference"`

	ColumnsOnlyInA []string `json:"columns_only_in_a"`
	ColumnsOnlyInB []string `json:"columns_only_in_b"`
}

// Report is the result of one comparison. It is built once by Assemble and must be
// treated as read-only afterwards.
type Report struct {
	// ID identifies the comparison run.
	ID string `json:"id"`

	SourceALabel string   `json:"source_a_label"`
	SourceBLabel string   `json:"source_b_label"`
	KeyColumns   []string `json:"key_columns"`

	// Records holds only_in_a, only_in_b and value records, in that order.
	Records []DiffRecord `json:"records"`

	Summary Summary `json:"summary"`

	GeneratedAt time.Time `json:"generated_at"`
}

// HasDifferences reports whether any record or schema drift was found.
func (r *Report) HasDifferences() bool {
	return len(r.Records) > 0 ||
		len(r.Summary.ColumnsOnlyInA) > 0 ||
		len(r.Summary.ColumnsOnlyInB) > 0 ||
		r.Summary.RowCountDifference > 0
}

// Spec defines the configuration for a comparison.
type Spec struct {
	// LabelA and LabelB name the datasets in records.
	// Empty labels fall back to the dataset labels, then to "a" and "b".
	LabelA string
	LabelB string

	// Key is the ordered key specification. Names are normalized before lookup.
	Key []string

	// Normalize tunes type inference for both datasets.
	Normalize dataset.NormalizeOptions

	// Workers bounds the per-column value diff workers. Zero means runtime.NumCPU.
	Workers int

	// Logger receives stage timings and warnings. Nil means no logging.
	Logger *zap.Logger

	// Clock stamps records. Nil means time.Now.
	Clock func() time.Time
}
