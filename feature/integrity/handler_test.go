package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"datadiff/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, db *gorm.DB) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "test-bucket", "", "reports", db, "", zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, mockClient
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)

	status, body := getJSON(t, app, "/integrity")
	assert.Equal(t, 200, status)

	storage := body["storage"].(map[string]any)
	assert.Equal(t, false, storage["bucket_exists"])
	database := body["database"].(map[string]any)
	assert.Equal(t, "error", database["status"])
}

func TestHandleStorageCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

	status, body := getJSON(t, app, "/integrity/storage")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])

	mockClient.On("PutObject", mock.Anything, "test-bucket", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
	status, body = getJSON(t, app, "/integrity/storage?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestHandleDatabaseCheck(t *testing.T) {
	app, _ := setupTestApp(t, setupSQLite(t))

	status, body := getJSON(t, app, "/integrity/database")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, false, body["report"].(map[string]any)["matched"])

	status, body = getJSON(t, app, "/integrity/database?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])

	_, body = getJSON(t, app, "/integrity/database")
	assert.Equal(t, true, body["report"].(map[string]any)["matched"])
}

func TestHandleDatabaseCheck_NoDatabase(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, body := getJSON(t, app, "/integrity/database")
	assert.Equal(t, 500, status)
	assert.Equal(t, "database connection is nil", body["error"])
}
