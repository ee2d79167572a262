package integrity

import (
	"context"
	"testing"

	"datadiff/core/database"
	"datadiff/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_Storage(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "test-bucket", "", "reports", nil, "", zap.NewNop())

	t.Run("CheckStorage", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

		report, err := svc.CheckStorage(context.Background())
		assert.NoError(t, err)
		assert.False(t, report.Ready())
	})

	t.Run("FixStorage", func(t *testing.T) {
		mockClient.On("PutObject", mock.Anything, "test-bucket", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		err := svc.FixStorage(context.Background())
		assert.NoError(t, err)
	})
}

func TestService_Database(t *testing.T) {
	db := setupSQLite(t)
	svc := NewService(nil, "", "", "", db, "diff_records", nil)

	report, err := svc.CheckDatabase()
	require.NoError(t, err)
	assert.False(t, report.Matched)

	require.NoError(t, svc.FixDatabase(context.Background()))

	report, err = svc.CheckDatabase()
	require.NoError(t, err)
	assert.True(t, report.Matched)
}

func TestService_NoDatabase(t *testing.T) {
	svc := NewService(nil, "", "", "", nil, "", nil)

	_, err := svc.CheckDatabase()
	assert.EqualError(t, err, "database connection is nil")
	assert.Error(t, svc.FixDatabase(context.Background()))
}
