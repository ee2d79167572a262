package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// NormalizeOptions tunes type inference.
type NormalizeOptions struct {
	// StringColumns are kept as strings instead of being inferred.
	// Names are matched after normalization.
	StringColumns []string

	// SkipInference keeps every column's values as loaded.
	SkipInference bool
}

// timestampLayouts are tried in order when inferring timestamp columns.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var scrubber = strings.NewReplacer(
	`\t`, "",
	`\n`, "",
	`\r`, "",
	"\t", "",
	"\n", "",
	"\r", "",
)

// NormalizeName canonicalizes a column name.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, trimmed)
}

// Scrub removes raw and escaped tab, newline and carriage-return sequences.
func Scrub(s string) string {
	for {
		next := scrubber.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// Normalize returns a new dataset with canonical column names, scrubbed strings and
// inferred column types. The input is left untouched.
func Normalize(ds *Dataset, opts NormalizeOptions) (*Dataset, error) {
	pinned := make(map[string]struct{}, len(opts.StringColumns))
	for _, name := range opts.StringColumns {
		pinned[NormalizeName(name)] = struct{}{}
	}

	origin := make(map[string]string, len(ds.columns))
	columns := make([]Column, 0, len(ds.columns))

	for _, col := range ds.columns {
		name := NormalizeName(col.Name)
		if name == "" {
			return nil, &SchemaError{
				Stage:   "normalize",
				Dataset: ds.label,
				Columns: []string{col.Name},
				Reason:  "column name is empty after normalization",
			}
		}
		if prev, clash := origin[name]; clash {
			return nil, &SchemaError{
				Stage:   "normalize",
				Dataset: ds.label,
				Columns: []string{prev, col.Name},
				Reason:  "columns collide on normalized name " + strconv.Quote(name),
			}
		}
		origin[name] = col.Name

		values := scrubValues(col.Values)
		if _, keep := pinned[name]; keep {
			values = renderStrings(values)
		} else if !opts.SkipInference {
			values = inferColumn(values)
		}
		columns = append(columns, Column{Name: name, Values: values})
	}

	return New(ds.label, columns...)
}

func scrubValues(in []Value) []Value {
	out := make([]Value, len(in))
	for i, v := range in {
		if v.kind == KindString {
			v.s = Scrub(v.s)
		}
		out[i] = v
	}
	return out
}

func renderStrings(values []Value) []Value {
	for i, v := range values {
		if v.kind != KindNull && v.kind != KindString {
			values[i] = String(v.Render())
		}
	}
	return values
}

// inferColumn converts values in place to the most specific kind they all share.
func inferColumn(values []Value) []Value {
	seen := make(map[Kind]struct{})
	for _, v := range values {
		if v.kind != KindNull {
			seen[v.kind] = struct{}{}
		}
	}

	switch {
	case len(seen) == 0:
		return values
	case len(seen) == 1:
		if _, onlyStrings := seen[KindString]; !onlyStrings {
			return values
		}
	case len(seen) == 2 && hasKinds(seen, KindInteger, KindFloat):
		for i, v := range values {
			if v.kind == KindInteger {
				values[i] = Float(float64(v.i))
			}
		}
		return values
	default:
		values = renderStrings(values)
	}

	for _, parse := range []func(string) (Value, bool){parseBool, parseInt, parseFloat, parseTimestamp} {
		if converted, ok := convertAll(values, parse); ok {
			return converted
		}
	}
	return values
}

func hasKinds(seen map[Kind]struct{}, kinds ...Kind) bool {
	for _, k := range kinds {
		if _, ok := seen[k]; !ok {
			return false
		}
	}
	return true
}

func convertAll(values []Value, parse func(string) (Value, bool)) ([]Value, bool) {
	out := make([]Value, len(values))
	for i, v := range values {
		if v.kind == KindNull {
			continue
		}
		parsed, ok := parse(v.s)
		if !ok {
			return nil, false
		}
		out[i] = parsed
	}
	return out, true
}

func parseBool(s string) (Value, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return Boolean(true), true
	case strings.EqualFold(s, "false"):
		return Boolean(false), true
	default:
		return Value{}, false
	}
}

func parseInt(s string) (Value, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return Integer(i), true
}

func parseFloat(s string) (Value, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Value{}, false
	}
	return Float(f), true
}

func parseTimestamp(s string) (Value, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp(t), true
		}
	}
	return Value{}, false
}
