package reconcile

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"time"

	"datadiff/core/dataset"

	"golang.org/x/sync/errgroup"
)

// ValueOptions configures DiffValues.
type ValueOptions struct {
	LabelA string
	LabelB string

	// Workers bounds the number of columns compared at once. Zero means runtime.NumCPU.
	Workers int
}

// CompareColumns returns the columns DiffValues inspects: the non-key columns of b that
// also exist in a, sorted by name.
func CompareColumns(a, b *dataset.Dataset, key []string) []string {
	keySet := make(map[string]struct{}, len(key))
	for _, k := range key {
		keySet[k] = struct{}{}
	}

	var cols []string
	for _, name := range b.ColumnNames() {
		if _, isKey := keySet[name]; isKey {
			continue
		}
		if !a.HasColumn(name) {
			continue
		}
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// DiffValues compares every matched row pair cell by cell and returns one record per
// differing cell. Records are ordered by column name, then by the partition's key order.
func DiffValues(ctx context.Context, a, b *dataset.Dataset, p *Partition, opts ValueOptions) ([]DiffRecord, error) {
	cols := CompareColumns(a, b, p.Key)
	if len(cols) == 0 || len(p.Matched) == 0 {
		return []DiffRecord{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perColumn := make([][]DiffRecord, len(cols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, col := range cols {
		g.Go(func() error {
			recs, err := diffColumn(gctx, a, b, p, col, opts)
			if err != nil {
				return err
			}
			perColumn[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, recs := range perColumn {
		total += len(recs)
	}
	out := make([]DiffRecord, 0, total)
	for _, recs := range perColumn {
		out = append(out, recs...)
	}
	return out, nil
}

func diffColumn(ctx context.Context, a, b *dataset.Dataset, p *Partition, col string, opts ValueOptions) ([]DiffRecord, error) {
	colA, okA := a.Column(col)
	colB, okB := b.Column(col)
	if !okA || !okB {
		return nil, nil
	}

	var recs []DiffRecord
	for n, pair := range p.Matched {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if pair.RowA >= len(colA.Values) || pair.RowB >= len(colB.Values) {
			continue
		}

		va := truncateTime(colA.Values[pair.RowA])
		vb := truncateTime(colB.Values[pair.RowB])
		if va.Equal(vb) {
			continue
		}

		recs = append(recs, DiffRecord{
			SourceALabel:     opts.LabelA,
			SourceBLabel:     opts.LabelB,
			KeyColumns:       p.Key,
			KeyValues:        pair.KeyValues,
			ErrorDescription: classify(va, vb),
			ErrorField:       col,
			ValueA:           va.Render(),
			ValueB:           vb.Render(),
		})
	}
	return recs, nil
}

// truncateTime normalizes timestamps to UTC whole seconds. Other kinds pass through.
func truncateTime(v dataset.Value) dataset.Value {
	if t, ok := v.Time(); ok {
		return dataset.Timestamp(t.UTC().Truncate(time.Second))
	}
	return v
}

// classify assumes va and vb differ.
func classify(va, vb dataset.Value) Description {
	sa, okA := va.Str()
	sb, okB := vb.Str()
	if okA && okB && strings.TrimSpace(sa) == strings.TrimSpace(sb) {
		return ValueDifferenceUntrimmedOnly
	}
	return ValueDifference
}
