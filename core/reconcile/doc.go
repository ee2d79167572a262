// Package reconcile compares two normalized datasets and reports their differences.
//
// A comparison runs in stages:
//
//  1. Both datasets are normalized concurrently (dataset.Normalize).
//  2. DiffColumns and CountRows measure schema and row-count drift.
//  3. Reconcile performs a full outer join on the key columns and partitions the rows
//     into matched pairs, rows only in A and rows only in B.
//  4. DiffValues compares every matched pair cell by cell, one worker per column.
//  5. Assemble merges the records into a Report.
//
// Compare runs all stages as one cancellable unit. Every stage returns new values and
// never mutates its inputs, so results are deterministic regardless of input row order.
//
// # Usage Example
//
//	report, err := reconcile.Compare(ctx, &reconcile.Spec{
//	    Key:    []string{"id"},
//	    Logger: log,
//	}, a, b)
//	if errors.Is(err, reconcile.ErrKey) {
//	    // the key does not exist in both datasets
//	}
//
// DatasetCache keeps loaded datasets between comparisons with TTL expiry and
// stampede protection.
package reconcile
