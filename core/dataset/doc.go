// Package dataset holds the in-memory tabular model compared by the reconcile engine.
//
// A Dataset is an ordered list of named columns. Every column holds the same number of
// typed Values, aligned by row index. Values are a small tagged union (null, string,
// integer, float, boolean, timestamp) so that loaders for CSV, Parquet and SQL sources
// can all produce the same shape.
//
// # Normalization
//
// Normalize turns a raw dataset into a comparable one:
//   - Column names are trimmed, internal whitespace becomes "_" and anything outside
//     [A-Za-z0-9_] is dropped.
//   - Tab, newline and carriage-return noise (raw or escaped) is scrubbed from strings.
//   - String columns are converted to the most specific kind every value parses as.
//
// Normalize never mutates its input and is idempotent.
//
// # Usage
//
//	raw, err := dataset.New("orders", dataset.NewColumn("Order ID", ids))
//	norm, err := dataset.Normalize(raw, dataset.NormalizeOptions{})
package dataset
