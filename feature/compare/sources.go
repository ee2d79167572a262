package compare

import (
	"bytes"
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datadiff/core/database"
	"datadiff/core/dataset"
	"datadiff/core/storage"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// Source loads one dataset.
type Source interface {
	// Name is the source descriptor, used as label default and cache key.
	Name() string
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Source descriptor schemes.
const (
	SchemeFile     = "file"
	SchemeObject   = "s3"
	SchemeDatabase = "db"
	SchemePostgres = "pg"
)

// Descriptor is a parsed "<scheme>:<location>" source reference.
type Descriptor struct {
	Scheme   string
	Location string
}

// String returns the descriptor in its textual form.
func (d Descriptor) String() string {
	return d.Scheme + ":" + d.Location
}

// ParseDescriptor parses a source reference such as "file:orders.csv" or "pg:public.orders".
// A reference without a scheme is treated as a local file.
func ParseDescriptor(raw string) (Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Descriptor{}, fmt.Errorf("empty source")
	}

	scheme, location, found := strings.Cut(raw, ":")
	if !found || !knownScheme(scheme) {
		return Descriptor{Scheme: SchemeFile, Location: raw}, nil
	}
	if location == "" {
		return Descriptor{}, fmt.Errorf("source %q has no location", raw)
	}
	return Descriptor{Scheme: scheme, Location: location}, nil
}

func knownScheme(s string) bool {
	switch s {
	case SchemeFile, SchemeObject, SchemeDatabase, SchemePostgres:
		return true
	}
	return false
}

// isParquet reports whether a path names a Parquet file.
func isParquet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".parquet" || ext == ".pq"
}

// CSVFileSource reads a local CSV file.
type CSVFileSource struct {
	Path string
}

// Name returns the source descriptor.
func (s *CSVFileSource) Name() string { return SchemeFile + ":" + s.Path }

// Load reads the file.
func (s *CSVFileSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	return decodeCSV(s.Name(), f)
}

// ParquetFileSource reads a local Parquet file.
type ParquetFileSource struct {
	Path string
}

// Name returns the source descriptor.
func (s *ParquetFileSource) Name() string { return SchemeFile + ":" + s.Path }

// Load reads the file.
func (s *ParquetFileSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	return decodeParquet(ctx, s.Name(), f)
}

// ObjectSource reads a CSV or Parquet object from the bucket.
type ObjectSource struct {
	Client storage.Client
	Bucket string
	Key    string
}

// Name returns the source descriptor.
func (s *ObjectSource) Name() string { return SchemeObject + ":" + s.Key }

// Load downloads the object and decodes it by extension.
func (s *ObjectSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("storage client is not configured")
	}

	data, err := storage.ReadObject(ctx, s.Client, s.Bucket, s.Key)
	if err != nil {
		return nil, err
	}

	if isParquet(s.Key) {
		return decodeParquet(ctx, s.Name(), bytes.NewReader(data))
	}
	return decodeCSV(s.Name(), bytes.NewReader(data))
}

// TableSource reads every row of a SQL table through GORM.
type TableSource struct {
	DB    *gorm.DB
	Table string
}

// Name returns the source descriptor.
func (s *TableSource) Name() string { return SchemeDatabase + ":" + s.Table }

// Load selects the whole table.
func (s *TableSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if err := database.ValidateIdentifier(s.Table); err != nil {
		return nil, err
	}

	rows, err := s.DB.WithContext(ctx).Table(s.Table).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", s.Table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.Table, err)
	}

	var data [][]any
	for rows.Next() {
		row := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", s.Table, err)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", s.Table, err)
	}

	return dataset.FromRows(s.Name(), header, data)
}

// PgQuerier is satisfied by *pgx.Conn and *pgxpool.Pool.
type PgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads every row of a Postgres table through pgx.
type PostgresSource struct {
	Conn PgQuerier
	// Table is "table" or "schema.table".
	Table string
}

// Name returns the source descriptor.
func (s *PostgresSource) Name() string { return SchemePostgres + ":" + s.Table }

// Load selects the whole table.
func (s *PostgresSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if s.Conn == nil {
		return nil, fmt.Errorf("postgres connection is not configured")
	}
	if err := database.ValidateIdentifier(s.Table); err != nil {
		return nil, err
	}

	ident := pgx.Identifier(strings.Split(s.Table, "."))
	rows, err := s.Conn.Query(ctx, "SELECT * FROM "+ident.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", s.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to decode row of %s: %w", s.Table, err)
		}
		for i, v := range values {
			values[i] = pgValue(v)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", s.Table, err)
	}

	return dataset.FromRows(s.Name(), header, data)
}

// pgValue converts pgx-decoded values that dataset.FromAny cannot handle.
func pgValue(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case time.Time, driver.Valuer:
		return x
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return v
}
