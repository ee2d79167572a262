package integrity

import (
	"context"

	"datadiff/core/storage"
	"datadiff/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service checks that the report sinks are ready to be written.
type Service struct {
	client      storage.Client
	bucket      string
	region      string
	prefix      string
	db          *gorm.DB
	recordTable string
	logger      *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, bucket, region, prefix string, db *gorm.DB, recordTable string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:      client,
		bucket:      bucket,
		region:      region,
		prefix:      prefix,
		db:          db,
		recordTable: recordTable,
		logger:      logger,
	}
}

// CheckStorage inspects the bucket and report prefix.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.bucket, s.prefix)
}

// FixStorage creates the bucket and report prefix.
func (s *Service) FixStorage(ctx context.Context) error {
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.prefix, s.logger)
}

// CheckDatabase inspects the sink tables.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	return checks.CheckDatabase(s.db, s.recordTable)
}

// FixDatabase migrates the sink tables.
func (s *Service) FixDatabase(ctx context.Context) error {
	return checks.FixDatabase(ctx, s.db, s.recordTable)
}
