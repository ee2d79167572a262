package reconcile

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"datadiff/core/dataset"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Compare runs normalization, schema and row-count drift, key reconciliation and value
// diffing as one cancellable unit and assembles the report.
// Neither input dataset is modified.
func Compare(ctx context.Context, spec *Spec, a, b *dataset.Dataset) (*Report, error) {
	if spec == nil {
		spec = &Spec{}
	}
	log := spec.Logger
	if log == nil {
		log = zap.NewNop()
	}
	labelA := firstNonEmpty(spec.LabelA, a.Label(), "a")
	labelB := firstNonEmpty(spec.LabelB, b.Label(), "b")
	workers := spec.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Key columns keep their text so both sides build keys from the same representation.
	normOpts := spec.Normalize
	normOpts.StringColumns = append(append([]string{}, spec.Normalize.StringColumns...), spec.Key...)

	start := time.Now()

	var normA, normB *dataset.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		normA, err = dataset.Normalize(a.WithLabel(labelA), normOpts)
		if err == nil {
			err = gctx.Err()
		}
		return err
	})
	g.Go(func() error {
		var err error
		normB, err = dataset.Normalize(b.WithLabel(labelB), normOpts)
		if err == nil {
			err = gctx.Err()
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	log.Debug("Normalized datasets",
		zap.String("a", labelA),
		zap.String("b", labelB),
		zap.Duration("took", time.Since(start)))

	onlyA, onlyB := DiffColumns(normA, normB)
	countA, countB, _ := CountRows(normA, normB)
	if len(onlyA) > 0 || len(onlyB) > 0 {
		log.Info("Schema drift detected",
			zap.Strings("columns_only_in_a", onlyA),
			zap.Strings("columns_only_in_b", onlyB))
	}

	stage := time.Now()
	partition, err := Reconcile(ctx, normA, normB, spec.Key)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	if partition.DuplicateKeysA > 0 || partition.DuplicateKeysB > 0 {
		log.Warn("Key is not unique, matched rows include every combination",
			zap.Strings("key", partition.Key),
			zap.Int("duplicates_a", partition.DuplicateKeysA),
			zap.Int("duplicates_b", partition.DuplicateKeysB))
	}
	log.Debug("Reconciled keys",
		zap.Int("matched", len(partition.Matched)),
		zap.Int("only_in_a", len(partition.LeftOnly)),
		zap.Int("only_in_b", len(partition.RightOnly)),
		zap.Duration("took", time.Since(stage)))

	stage = time.Now()
	values, err := DiffValues(ctx, normA, normB, partition, ValueOptions{
		LabelA:  labelA,
		LabelB:  labelB,
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("diff values: %w", err)
	}
	log.Debug("Compared values",
		zap.Int("differences", len(values)),
		zap.Duration("took", time.Since(stage)))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	report := Assemble(AssembleInput{
		LabelA:         labelA,
		LabelB:         labelB,
		Partition:      partition,
		Values:         values,
		ColumnsOnlyInA: onlyA,
		ColumnsOnlyInB: onlyB,
		RowCountA:      countA,
		RowCountB:      countB,
		Clock:          spec.Clock,
	})

	log.Info("Comparison completed",
		zap.String("id", report.ID),
		zap.Int("records", len(report.Records)),
		zap.Duration("took", time.Since(start)))

	return report, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
