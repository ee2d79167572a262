package reconcile

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"datadiff/core/dataset"

	"golang.org/x/sync/errgroup"
)

// ctxCheckEvery is how many rows are indexed between cancellation checks.
const ctxCheckEvery = 4096

// RowRef points at a row of one dataset together with its string-coerced key.
type RowRef struct {
	Row       int
	Key       []string
	KeyValues string
}

// MatchedPair links a row of A to a row of B sharing the same key.
type MatchedPair struct {
	RowA      int
	RowB      int
	Key       []string
	KeyValues string
}

// Partition is the outcome of the outer join.
type Partition struct {
	// Key is the resolved, normalized key specification.
	Key []string

	Matched   []MatchedPair
	LeftOnly  []RowRef
	RightOnly []RowRef

	// DuplicateKeysA and DuplicateKeysB count rows whose key was already seen on the
	// same side. Non-zero values mean Matched holds a cross product for those keys.
	DuplicateKeysA int
	DuplicateKeysB int
}

// keyIndex groups the rows of one dataset by key.
type keyIndex struct {
	tuples     [][]string
	groups     map[string][]int
	duplicates int
}

// Reconcile performs a full outer join of a and b on key. Every row of both datasets
// ends up in exactly one of Matched, LeftOnly or RightOnly (a row with a duplicated key
// may appear in several pairs). Results are sorted by key tuple.
func Reconcile(ctx context.Context, a, b *dataset.Dataset, key []string) (*Partition, error) {
	resolved, err := ResolveKey(a, b, key)
	if err != nil {
		return nil, err
	}

	var idxA, idxB *keyIndex
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		idxA, err = buildIndex(gctx, a, resolved)
		return err
	})
	g.Go(func() error {
		var err error
		idxB, err = buildIndex(gctx, b, resolved)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := &Partition{
		Key:            resolved,
		DuplicateKeysA: idxA.duplicates,
		DuplicateKeysB: idxB.duplicates,
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		for k, rowsA := range idxA.groups {
			if err := gctx.Err(); err != nil {
				return err
			}
			rowsB, matched := idxB.groups[k]
			for _, ra := range rowsA {
				tuple := idxA.tuples[ra]
				if !matched {
					p.LeftOnly = append(p.LeftOnly, newRowRef(ra, tuple))
					continue
				}
				for _, rb := range rowsB {
					p.Matched = append(p.Matched, MatchedPair{
						RowA:      ra,
						RowB:      rb,
						Key:       tuple,
						KeyValues: joinKeyValues(tuple),
					})
				}
			}
		}
		return nil
	})
	g.Go(func() error {
		for k, rowsB := range idxB.groups {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, matched := idxA.groups[k]; matched {
				continue
			}
			for _, rb := range rowsB {
				p.RightOnly = append(p.RightOnly, newRowRef(rb, idxB.tuples[rb]))
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortRowRefs(p.LeftOnly, a)
	sortRowRefs(p.RightOnly, b)
	sort.Slice(p.Matched, func(i, j int) bool {
		x, y := p.Matched[i], p.Matched[j]
		if c := compareTuples(x.Key, y.Key); c != 0 {
			return c < 0
		}
		if c := compareRows(a, x.RowA, y.RowA); c != 0 {
			return c < 0
		}
		return compareRows(b, x.RowB, y.RowB) < 0
	})

	return p, nil
}

// ResolveKey normalizes the key names and checks them against both datasets.
func ResolveKey(a, b *dataset.Dataset, key []string) ([]string, error) {
	if len(key) == 0 {
		return nil, &KeyError{Reason: "key specification is empty"}
	}

	resolved := make([]string, 0, len(key))
	seen := make(map[string]struct{}, len(key))
	for _, raw := range key {
		name := dataset.NormalizeName(raw)
		if name == "" {
			return nil, &KeyError{Column: raw, Reason: "column name is empty after normalization"}
		}
		if _, dup := seen[name]; dup {
			return nil, &KeyError{Column: name, Reason: "column appears more than once in the key"}
		}
		seen[name] = struct{}{}

		if !a.HasColumn(name) {
			return nil, &KeyError{Column: name, Side: "a", Dataset: a.Label(), Reason: "column not found"}
		}
		if !b.HasColumn(name) {
			return nil, &KeyError{Column: name, Side: "b", Dataset: b.Label(), Reason: "column not found"}
		}
		resolved = append(resolved, name)
	}
	return resolved, nil
}

func buildIndex(ctx context.Context, ds *dataset.Dataset, key []string) (*keyIndex, error) {
	rows := ds.NumRows()
	idx := &keyIndex{
		tuples: make([][]string, rows),
		groups: make(map[string][]int, rows),
	}

	for r := 0; r < rows; r++ {
		if r%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		tuple := make([]string, len(key))
		for i, col := range key {
			v, _ := ds.Value(r, col)
			tuple[i] = v.Render()
		}
		idx.tuples[r] = tuple

		k := indexKey(tuple)
		if _, exists := idx.groups[k]; exists {
			idx.duplicates++
		}
		idx.groups[k] = append(idx.groups[k], r)
	}
	return idx, nil
}

func newRowRef(row int, tuple []string) RowRef {
	return RowRef{Row: row, Key: tuple, KeyValues: joinKeyValues(tuple)}
}

// indexKey encodes a key tuple as length-prefixed parts, so no cell content can
// make two different tuples share an index entry.
func indexKey(tuple []string) string {
	var sb strings.Builder
	for _, part := range tuple {
		sb.WriteString(strconv.Itoa(len(part)))
		sb.WriteByte(':')
		sb.WriteString(part)
	}
	return sb.String()
}

func joinKeyValues(tuple []string) string {
	return strings.Join(tuple, ",")
}

func sortRowRefs(refs []RowRef, ds *dataset.Dataset) {
	sort.Slice(refs, func(i, j int) bool {
		if c := compareTuples(refs[i].Key, refs[j].Key); c != 0 {
			return c < 0
		}
		return compareRows(ds, refs[i].Row, refs[j].Row) < 0
	})
}

// compareTuples orders key tuples lexicographically, element by element.
func compareTuples(x, y []string) int {
	for i := 0; i < len(x) && i < len(y); i++ {
		if c := strings.Compare(x[i], y[i]); c != 0 {
			return c
		}
	}
	return len(x) - len(y)
}

// compareRows orders two rows of the same dataset by their rendered cells. It only
// runs for duplicate keys, keeping the output independent of input row order.
func compareRows(ds *dataset.Dataset, i, j int) int {
	if i == j {
		return 0
	}
	x, y := ds.Row(i), ds.Row(j)
	for c := range x {
		if cmp := strings.Compare(x[c].Render(), y[c].Render()); cmp != 0 {
			return cmp
		}
	}
	return 0
}
