package compare

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"

	"datadiff/core/reconcile"
	"datadiff/core/storage"
	"datadiff/feature/compare/models"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// Sink persists a finished report. Sinks must not modify the report.
type Sink interface {
	Name() string
	Write(ctx context.Context, report *reconcile.Report) error
}

// Sink names accepted by the CLI and the API.
const (
	SinkStorage  = "storage"
	SinkDatabase = "database"
	SinkFile     = "file"
)

// WriteAll writes the report to every sink in order and stops at the first error.
func WriteAll(ctx context.Context, report *reconcile.Report, sinks ...Sink) error {
	for _, s := range sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Write(ctx, report); err != nil {
			return fmt.Errorf("sink %s: %w", s.Name(), err)
		}
	}
	return nil
}

// StorageSink uploads the report as "<prefix>/<id>.json" plus a CSV of its records.
type StorageSink struct {
	Client storage.Client
	Bucket string
	Region string
	Prefix string
}

// Name returns the sink name.
func (s *StorageSink) Name() string { return SinkStorage }

// ReportKey returns the object key of the JSON report for a run ID.
func (s *StorageSink) ReportKey(id string) string {
	return path.Join(s.Prefix, id+".json")
}

// Write uploads both objects.
func (s *StorageSink) Write(ctx context.Context, report *reconcile.Report) error {
	if s.Client == nil {
		return fmt.Errorf("storage client is not configured")
	}
	if err := storage.EnsureBucket(ctx, s.Client, s.Bucket, s.Region); err != nil {
		return err
	}

	objects := []struct {
		key         string
		format      ExportFormat
		contentType string
	}{
		{s.ReportKey(report.ID), FormatJSON, "application/json"},
		{path.Join(s.Prefix, report.ID+".csv"), FormatCSV, "text/csv"},
	}

	for _, obj := range objects {
		var buf bytes.Buffer
		if err := ExportReport(&buf, report, obj.format); err != nil {
			return fmt.Errorf("failed to encode %s: %w", obj.key, err)
		}
		_, err := s.Client.PutObject(ctx, s.Bucket, obj.key, &buf, int64(buf.Len()), minio.PutObjectOptions{
			ContentType: obj.contentType,
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", obj.key, err)
		}
	}
	return nil
}

// DatabaseSink inserts the records and the run summary through GORM.
type DatabaseSink struct {
	DB *gorm.DB
	// Table overrides the record table name.
	Table string
	// BatchSize bounds rows per INSERT. Zero means 500.
	BatchSize int
}

// Name returns the sink name.
func (s *DatabaseSink) Name() string { return SinkDatabase }

func (s *DatabaseSink) recordTable() string {
	if s.Table == "" {
		return models.DiffRecordRow{}.TableName()
	}
	return s.Table
}

// Migrate creates or updates the sink tables.
func (s *DatabaseSink) Migrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).Table(s.recordTable()).AutoMigrate(&models.DiffRecordRow{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.recordTable(), err)
	}
	if err := s.DB.WithContext(ctx).AutoMigrate(&models.DiffRunRow{}); err != nil {
		return fmt.Errorf("failed to migrate diff runs: %w", err)
	}
	return nil
}

// Write stores the run and its records in one transaction.
func (s *DatabaseSink) Write(ctx context.Context, report *reconcile.Report) error {
	if s.DB == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = 500
	}

	run := models.NewDiffRunRow(report)
	rows := models.NewDiffRecordRows(report)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Table(s.recordTable()).CreateInBatches(rows, batch).Error; err != nil {
			return fmt.Errorf("failed to insert records: %w", err)
		}
		return nil
	})
}

// FileSink writes the report to a local file. The format follows the extension.
type FileSink struct {
	Path string
}

// Name returns the sink name.
func (s *FileSink) Name() string { return SinkFile }

// Write creates or truncates the file.
func (s *FileSink) Write(ctx context.Context, report *reconcile.Report) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.Path, err)
	}

	if err := ExportReport(f, report, FormatFromPath(s.Path)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return f.Close()
}
