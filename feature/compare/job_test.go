package compare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJob = `
comparisons:
  - a: file:exports/orders_old.csv
    b: pg:public.orders
    key: [order_id]
    label_a: legacy
    string_columns: [price]
    sinks: [database]
  - a: s3:a.parquet
    b: s3:b.parquet
    key: [region, sku]
    sinks: [file]
    output: out/report.csv
`

func TestParseJob(t *testing.T) {
	job, err := ParseJob([]byte(sampleJob))
	require.NoError(t, err)
	require.Len(t, job.Comparisons, 2)

	first := job.Comparisons[0]
	assert.Equal(t, "file:exports/orders_old.csv", first.A)
	assert.Equal(t, "pg:public.orders", first.B)
	assert.Equal(t, []string{"order_id"}, first.Key)
	assert.Equal(t, "legacy", first.LabelA)
	assert.Equal(t, []string{"price"}, first.StringColumns)
	assert.Equal(t, []string{SinkDatabase}, first.Sinks)

	assert.Equal(t, []string{"region", "sku"}, job.Comparisons[1].Key)
	assert.Equal(t, "out/report.csv", job.Comparisons[1].Output)
}

func TestParseJob_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"Empty", "comparisons: []", "job must define at least one comparison"},
		{"Missing key", "comparisons:\n  - a: x.csv\n    b: y.csv\n", "comparison 1: invalid request: key is required"},
		{"Unknown sink", "comparisons:\n  - a: x.csv\n    b: y.csv\n    key: [id]\n    sinks: [kafka]\n", `comparison 1: invalid request: unknown sink "kafka"`},
		{"File sink without output", "comparisons:\n  - a: x.csv\n    b: y.csv\n    key: [id]\n    sinks: [file]\n", "comparison 1: invalid request: file sink requires output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJob([]byte(tt.yaml))
			assert.EqualError(t, err, tt.want)
		})
	}

	_, err := ParseJob([]byte("comparisons: [unclosed"))
	assert.ErrorContains(t, err, "parse job")
}

func TestLoadJob(t *testing.T) {
	p := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sampleJob), 0o644))

	job, err := LoadJob(p)
	require.NoError(t, err)
	assert.Len(t, job.Comparisons, 2)

	_, err = LoadJob("")
	assert.EqualError(t, err, "job path is required")

	_, err = LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read job file")
}
