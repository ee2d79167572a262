package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"datadiff/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport is the result of a storage check.
type StorageReport struct {
	Bucket       string `json:"bucket"`
	BucketExists bool   `json:"bucket_exists"`
	ReportPrefix string `json:"report_prefix"`
	PrefixExists bool   `json:"prefix_exists"`
	Reports      int    `json:"reports"`
}

// Ready reports whether the storage sink can write without creating anything.
func (r *StorageReport) Ready() bool {
	return r.BucketExists && r.PrefixExists
}

func folder(prefix string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// CheckStorage verifies that the bucket and the report prefix exist and counts stored reports.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*StorageReport, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is not configured")
	}

	report := &StorageReport{Bucket: bucket, ReportPrefix: folder(prefix)}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		return report, nil
	}

	opts := minio.ListObjectsOptions{
		Prefix:    report.ReportPrefix,
		Recursive: true,
	}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", report.ReportPrefix, obj.Err)
		}
		report.PrefixExists = true
		if strings.HasSuffix(obj.Key, ".json") {
			report.Reports++
		}
	}

	return report, nil
}

// FixStorage creates the bucket and a folder marker for the report prefix.
func FixStorage(ctx context.Context, client storage.Client, bucket, region, prefix string, logger *zap.Logger) error {
	if client == nil {
		return fmt.Errorf("storage client is not configured")
	}
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}

	marker := folder(prefix)
	_, err := client.PutObject(ctx, bucket, marker, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
	if err != nil {
		logger.Error("Failed to create report folder", zap.String("folder", marker), zap.Error(err))
		return err
	}
	logger.Info("Created report folder", zap.String("bucket", bucket), zap.String("folder", marker))
	return nil
}
