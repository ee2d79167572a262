package compare

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datadiff/core/database"
	"datadiff/core/dataset"
	"datadiff/core/storage/mocks"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Descriptor
		wantErr bool
	}{
		{"File", "file:data/a.csv", Descriptor{SchemeFile, "data/a.csv"}, false},
		{"Bare path", "data/a.csv", Descriptor{SchemeFile, "data/a.csv"}, false},
		{"Windows path", `C:\data\a.csv`, Descriptor{SchemeFile, `C:\data\a.csv`}, false},
		{"Object", "s3:exports/a.parquet", Descriptor{SchemeObject, "exports/a.parquet"}, false},
		{"Database", "db:orders", Descriptor{SchemeDatabase, "orders"}, false},
		{"Postgres", "pg:public.orders", Descriptor{SchemePostgres, "public.orders"}, false},
		{"Empty", "  ", Descriptor{}, true},
		{"No location", "db:", Descriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDescriptor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVFileSource(t *testing.T) {
	p := writeFile(t, "a.csv", "id,name,amount\n1,Alice,10\n2,,20\n")
	src := &CSVFileSource{Path: p}

	ds, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "file:"+p, ds.Label())
	assert.Equal(t, []string{"id", "name", "amount"}, ds.ColumnNames())
	assert.Equal(t, 2, ds.NumRows())

	v, _ := ds.Value(1, "name")
	assert.True(t, v.IsNull())
	v, _ = ds.Value(0, "amount")
	assert.Equal(t, "10", v.Render())
}

func TestCSVFileSource_Errors(t *testing.T) {
	_, err := (&CSVFileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}).Load(context.Background())
	assert.Error(t, err)

	_, err = (&CSVFileSource{Path: writeFile(t, "empty.csv", "")}).Load(context.Background())
	assert.True(t, errors.Is(err, dataset.ErrSchema))

	_, err = (&CSVFileSource{Path: writeFile(t, "ragged.csv", "id,name\n1\n")}).Load(context.Background())
	assert.True(t, errors.Is(err, dataset.ErrSchema))
}

func writeParquet(t *testing.T) string {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "price", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "created", Type: &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}},
	}, nil)

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{9.5, 0}, []bool{true, false})
	b.Field(2).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
	b.Field(3).(*array.StringBuilder).AppendValues([]string{"a", "b"}, nil)
	ts, err := arrow.TimestampFromTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), arrow.Millisecond)
	require.NoError(t, err)
	b.Field(4).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{ts, ts}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	p := filepath.Join(t.TempDir(), "a.parquet")
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	w, err := pqarrow.NewFileWriter(schema, f, nil, pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return p
}

func TestParquetFileSource(t *testing.T) {
	p := writeParquet(t)

	ds, err := (&ParquetFileSource{Path: p}).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.NumRows())

	assert.Equal(t, dataset.KindInteger, ds.ColumnKind("id"))
	assert.Equal(t, dataset.KindBoolean, ds.ColumnKind("active"))
	assert.Equal(t, dataset.KindString, ds.ColumnKind("name"))
	assert.Equal(t, dataset.KindTimestamp, ds.ColumnKind("created"))

	price, _ := ds.Value(0, "price")
	assert.Equal(t, "9.5", price.Render())
	price, _ = ds.Value(1, "price")
	assert.True(t, price.IsNull())

	created, _ := ds.Value(0, "created")
	assert.Equal(t, "2024-01-02 03:04:05", created.Render())
}

func TestObjectSource(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "exports/a.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader("id,v\n1,x\n")), nil)

	src := &ObjectSource{Client: client, Bucket: "bucket", Key: "exports/a.csv"}
	assert.Equal(t, "s3:exports/a.csv", src.Name())

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.NumRows())
	assert.Equal(t, []string{"id", "v"}, ds.ColumnNames())

	_, err = (&ObjectSource{Key: "x.csv"}).Load(context.Background())
	assert.EqualError(t, err, "storage client is not configured")
}

func TestObjectSource_Parquet(t *testing.T) {
	data, err := os.ReadFile(writeParquet(t))
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "a.parquet", mock.Anything).
		Return(io.NopCloser(strings.NewReader(string(data))), nil)

	ds, err := (&ObjectSource{Client: client, Bucket: "bucket", Key: "a.parquet"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.NumRows())
}

func TestTableSource(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE orders (id INTEGER, amount REAL, note TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO orders VALUES (1, 9.5, 'x'), (2, NULL, 'y')").Error)

	src := &TableSource{DB: db, Table: "orders"}
	assert.Equal(t, "db:orders", src.Name())

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.NumRows())
	assert.Equal(t, []string{"id", "amount", "note"}, ds.ColumnNames())

	id, _ := ds.Value(0, "id")
	assert.Equal(t, dataset.KindInteger, id.Kind())
	amount, _ := ds.Value(1, "amount")
	assert.True(t, amount.IsNull())
	note, _ := ds.Value(1, "note")
	assert.Equal(t, "y", note.Render())

	_, err = (&TableSource{DB: db, Table: "orders; drop"}).Load(context.Background())
	assert.Error(t, err)
	_, err = (&TableSource{Table: "orders"}).Load(context.Background())
	assert.EqualError(t, err, "database connection is nil")
}

// fakeRows implements pgx.Rows over in-memory values.
type fakeRows struct {
	fields []string
	rows   [][]any
	pos    int
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.fields))
	for i, f := range r.fields {
		out[i] = pgconn.FieldDescription{Name: f}
	}
	return out
}
func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}
func (r *fakeRows) Scan(dest ...any) error { return errors.New("not supported") }
func (r *fakeRows) Values() ([]any, error) { return append([]any(nil), r.rows[r.pos-1]...), nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeQuerier struct {
	sql  string
	rows *fakeRows
	err  error
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestPostgresSource(t *testing.T) {
	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78}
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	q := &fakeQuerier{rows: &fakeRows{
		fields: []string{"id", "amount", "created", "meta"},
		rows: [][]any{
			{id, int32(5), created, map[string]any{"k": "v"}},
			{id, nil, created, nil},
		},
	}}

	src := &PostgresSource{Conn: q, Table: "public.orders"}
	assert.Equal(t, "pg:public.orders", src.Name())

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "public"."orders"`, q.sql)
	require.Equal(t, 2, ds.NumRows())

	v, _ := ds.Value(0, "id")
	assert.Equal(t, "12345678-1234-5678-1234-567812345678", v.Render())
	v, _ = ds.Value(0, "amount")
	assert.Equal(t, dataset.KindInteger, v.Kind())
	v, _ = ds.Value(0, "created")
	assert.Equal(t, dataset.KindTimestamp, v.Kind())
	v, _ = ds.Value(0, "meta")
	assert.Equal(t, `{"k":"v"}`, v.Render())
	v, _ = ds.Value(1, "amount")
	assert.True(t, v.IsNull())
}

func TestPostgresSource_Errors(t *testing.T) {
	_, err := (&PostgresSource{Table: "orders"}).Load(context.Background())
	assert.EqualError(t, err, "postgres connection is not configured")

	q := &fakeQuerier{err: errors.New("relation does not exist")}
	_, err = (&PostgresSource{Conn: q, Table: "orders"}).Load(context.Background())
	assert.ErrorContains(t, err, "relation does not exist")

	_, err = (&PostgresSource{Conn: q, Table: `orders"; --`}).Load(context.Background())
	assert.ErrorContains(t, err, "invalid table name")
}
