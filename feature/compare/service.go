package compare

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"datadiff/core/dataset"
	"datadiff/core/reconcile"
	"datadiff/core/storage"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrInvalidRequest marks requests rejected before any data is loaded.
var ErrInvalidRequest = errors.New("invalid request")

// Request describes one comparison. It is the API body and a job file entry.
type Request struct {
	A             string   `json:"a" yaml:"a"`
	B             string   `json:"b" yaml:"b"`
	Key           []string `json:"key" yaml:"key"`
	LabelA        string   `json:"label_a,omitempty" yaml:"label_a"`
	LabelB        string   `json:"label_b,omitempty" yaml:"label_b"`
	StringColumns []string `json:"string_columns,omitempty" yaml:"string_columns"`
	Sinks         []string `json:"sinks,omitempty" yaml:"sinks"`
	// Output is the file sink path.
	Output string `json:"output,omitempty" yaml:"output"`
}

// Validate checks the request shape.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.A) == "" || strings.TrimSpace(r.B) == "" {
		return fmt.Errorf("%w: both sources a and b are required", ErrInvalidRequest)
	}
	if len(r.Key) == 0 {
		return fmt.Errorf("%w: key is required", ErrInvalidRequest)
	}
	for _, name := range r.Sinks {
		switch name {
		case SinkStorage, SinkDatabase:
		case SinkFile:
			if r.Output == "" {
				return fmt.Errorf("%w: file sink requires output", ErrInvalidRequest)
			}
		default:
			return fmt.Errorf("%w: unknown sink %q", ErrInvalidRequest, name)
		}
	}
	return nil
}

// Options wires the service to its collaborators. Unset collaborators disable the
// sources and sinks that need them.
type Options struct {
	Storage      storage.Client
	Bucket       string
	Region       string
	ReportPrefix string

	DB        *gorm.DB
	SinkTable string

	// Postgres is used for pg: sources. When nil and PostgresDSN is set, a pool is
	// opened on first use.
	Postgres    PgQuerier
	PostgresDSN string

	// CacheTTL keeps loaded datasets between requests. Zero disables caching.
	CacheTTL time.Duration
	Workers  int
	LabelA   string
	LabelB   string

	// AllowLocalFiles enables file: sources and the file sink. Only the CLI sets it;
	// API callers cannot read or write the server's filesystem.
	AllowLocalFiles bool

	Logger *zap.Logger
}

// Service runs comparisons between configured sources.
type Service struct {
	opts   Options
	cache  *reconcile.DatasetCache
	logger *zap.Logger

	pgMu   sync.Mutex
	pg     PgQuerier
	pgPool *pgxpool.Pool
}

// NewService creates a comparison service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReportPrefix == "" {
		opts.ReportPrefix = "reports"
	}
	return &Service{
		opts:   opts,
		cache:  reconcile.NewDatasetCache(opts.CacheTTL),
		logger: logger,
		pg:     opts.Postgres,
	}
}

// Close releases the Postgres pool opened by the service, if any.
func (s *Service) Close() {
	s.pgMu.Lock()
	defer s.pgMu.Unlock()
	if s.pgPool != nil {
		s.pgPool.Close()
		s.pgPool = nil
		s.pg = nil
	}
}

func (s *Service) postgres(ctx context.Context) (PgQuerier, error) {
	s.pgMu.Lock()
	defer s.pgMu.Unlock()

	if s.pg != nil {
		return s.pg, nil
	}
	if s.opts.PostgresDSN == "" {
		return nil, errors.New("postgres dsn is not configured")
	}

	pool, err := pgxpool.New(ctx, s.opts.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s.pgPool = pool
	s.pg = pool
	return pool, nil
}

// ResolveSource builds the Source for a descriptor.
func (s *Service) ResolveSource(ctx context.Context, raw string) (Source, error) {
	d, err := ParseDescriptor(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	switch d.Scheme {
	case SchemeFile:
		if !s.opts.AllowLocalFiles {
			return nil, fmt.Errorf("%w: local file sources are disabled", ErrInvalidRequest)
		}
		if isParquet(d.Location) {
			return &ParquetFileSource{Path: d.Location}, nil
		}
		return &CSVFileSource{Path: d.Location}, nil
	case SchemeObject:
		return &ObjectSource{Client: s.opts.Storage, Bucket: s.opts.Bucket, Key: d.Location}, nil
	case SchemeDatabase:
		return &TableSource{DB: s.opts.DB, Table: d.Location}, nil
	case SchemePostgres:
		conn, err := s.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return &PostgresSource{Conn: conn, Table: d.Location}, nil
	}
	return nil, fmt.Errorf("%w: unsupported source %q", ErrInvalidRequest, raw)
}

// Load resolves and loads a source, going through the dataset cache.
func (s *Service) Load(ctx context.Context, raw string) (*dataset.Dataset, error) {
	src, err := s.ResolveSource(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.loadSource(ctx, src)
}

func (s *Service) loadSource(ctx context.Context, src Source) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := s.cache.Get(ctx, src.Name(), src.Load)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	s.logger.Debug("Loaded dataset",
		zap.String("source", src.Name()),
		zap.Int("rows", ds.NumRows()),
		zap.Int("columns", ds.NumColumns()),
		zap.Duration("took", time.Since(start)))
	return ds, nil
}

// loadPair resolves both descriptors before loading either, so a rejected
// descriptor never races a load error.
func (s *Service) loadPair(ctx context.Context, a, b string) (*dataset.Dataset, *dataset.Dataset, error) {
	srcA, err := s.ResolveSource(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	srcB, err := s.ResolveSource(ctx, b)
	if err != nil {
		return nil, nil, err
	}

	var dsA, dsB *dataset.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dsA, err = s.loadSource(gctx, srcA)
		return err
	})
	g.Go(func() error {
		var err error
		dsB, err = s.loadSource(gctx, srcB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return dsA, dsB, nil
}

// Sinks builds the sinks named by the request.
func (s *Service) Sinks(req Request) ([]Sink, error) {
	sinks := make([]Sink, 0, len(req.Sinks))
	for _, name := range req.Sinks {
		switch name {
		case SinkStorage:
			sinks = append(sinks, &StorageSink{
				Client: s.opts.Storage,
				Bucket: s.opts.Bucket,
				Region: s.opts.Region,
				Prefix: s.opts.ReportPrefix,
			})
		case SinkDatabase:
			sinks = append(sinks, &DatabaseSink{DB: s.opts.DB, Table: s.opts.SinkTable})
		case SinkFile:
			if !s.opts.AllowLocalFiles {
				return nil, fmt.Errorf("%w: file sink is disabled", ErrInvalidRequest)
			}
			sinks = append(sinks, &FileSink{Path: req.Output})
		default:
			return nil, fmt.Errorf("%w: unknown sink %q", ErrInvalidRequest, name)
		}
	}
	return sinks, nil
}

// Compare loads both sources, compares them and writes the report to the requested sinks.
func (s *Service) Compare(ctx context.Context, req Request) (*reconcile.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sinks, err := s.Sinks(req)
	if err != nil {
		return nil, err
	}

	a, b, err := s.loadPair(ctx, req.A, req.B)
	if err != nil {
		return nil, err
	}

	report, err := reconcile.Compare(ctx, &reconcile.Spec{
		LabelA:    firstNonEmpty(req.LabelA, s.opts.LabelA),
		LabelB:    firstNonEmpty(req.LabelB, s.opts.LabelB),
		Key:       req.Key,
		Normalize: dataset.NormalizeOptions{StringColumns: req.StringColumns},
		Workers:   s.opts.Workers,
		Logger:    s.logger,
	}, a, b)
	if err != nil {
		return nil, err
	}

	if err := WriteAll(ctx, report, sinks...); err != nil {
		return report, err
	}
	return report, nil
}

// Schema compares column sets, column kinds and row counts of two sources.
func (s *Service) Schema(ctx context.Context, a, b string) (*SchemaReport, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return nil, fmt.Errorf("%w: both sources a and b are required", ErrInvalidRequest)
	}

	dsA, dsB, err := s.loadPair(ctx, a, b)
	if err != nil {
		return nil, err
	}

	normA, err := dataset.Normalize(dsA, dataset.NormalizeOptions{})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	normB, err := dataset.Normalize(dsB, dataset.NormalizeOptions{})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return BuildSchemaReport(normA, normB), nil
}

// Tables compares the declared schemas of two database tables.
func (s *Service) Tables(a, b string) (*TableComparison, error) {
	if a == "" || b == "" {
		return nil, fmt.Errorf("%w: both tables a and b are required", ErrInvalidRequest)
	}
	return CompareTables(s.opts.DB, a, b)
}

// ListReports returns the IDs of reports written by the storage sink.
func (s *Service) ListReports(ctx context.Context) ([]string, error) {
	if s.opts.Storage == nil {
		return nil, errors.New("storage client is not configured")
	}

	keys, err := storage.ListKeys(ctx, s.opts.Storage, s.opts.Bucket, s.opts.ReportPrefix+"/")
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, key := range keys {
		if path.Ext(key) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(path.Base(key), ".json"))
	}
	return ids, nil
}

// GetReport reads a report written by the storage sink.
func (s *Service) GetReport(ctx context.Context, id string) (*reconcile.Report, error) {
	if s.opts.Storage == nil {
		return nil, errors.New("storage client is not configured")
	}
	if id == "" || strings.ContainsAny(id, "/\\") {
		return nil, fmt.Errorf("%w: invalid report id %q", ErrInvalidRequest, id)
	}

	sink := &StorageSink{Prefix: s.opts.ReportPrefix}
	data, err := storage.ReadObject(ctx, s.opts.Storage, s.opts.Bucket, sink.ReportKey(id))
	if err != nil {
		return nil, err
	}

	var report reconcile.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
