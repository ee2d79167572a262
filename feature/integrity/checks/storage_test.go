package checks

import (
	"context"
	"errors"
	"testing"

	"datadiff/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestCheckStorage(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "diffs").Return(false, nil)

		report, err := CheckStorage(context.Background(), client, "diffs", "reports")
		require.NoError(t, err)
		assert.False(t, report.BucketExists)
		assert.False(t, report.Ready())
		client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Prefix Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "diffs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "diffs", mock.Anything).Return(objects())

		report, err := CheckStorage(context.Background(), client, "diffs", "reports")
		require.NoError(t, err)
		assert.True(t, report.BucketExists)
		assert.False(t, report.PrefixExists)
		assert.Equal(t, "reports/", report.ReportPrefix)
	})

	t.Run("Ready", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "diffs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "diffs", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "reports/"
		})).Return(objects("reports/", "reports/a.json", "reports/a.csv", "reports/b.json"))

		report, err := CheckStorage(context.Background(), client, "diffs", "reports/")
		require.NoError(t, err)
		assert.True(t, report.Ready())
		assert.Equal(t, 2, report.Reports)
	})

	t.Run("Errors", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "diffs").Return(false, errors.New("timeout"))

		_, err := CheckStorage(context.Background(), client, "diffs", "reports")
		assert.ErrorContains(t, err, "failed to check bucket existence")

		_, err = CheckStorage(context.Background(), nil, "diffs", "reports")
		assert.EqualError(t, err, "storage client is not configured")
	})
}

func TestFixStorage(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "diffs").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "diffs", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)
	client.On("PutObject", mock.Anything, "diffs", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStorage(context.Background(), client, "diffs", "eu-west-1", "reports", zap.NewNop())
	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "PutObject", 1)
	client.AssertExpectations(t)
}

func TestFixStorage_PutFails(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "diffs").Return(true, nil)
	client.On("PutObject", mock.Anything, "diffs", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, errors.New("denied"))

	err := FixStorage(context.Background(), client, "diffs", "", "reports", zap.NewNop())
	assert.EqualError(t, err, "denied")
}
