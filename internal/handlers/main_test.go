package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/middleware"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupMockDB points the package-global connection at a sqlmock instance for
// the duration of one test.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock database: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("Failed to create GORM instance: %v", err)
	}

	db.DB = gormDB

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return mock
}

// newTestContext builds a gin context carrying an authenticated user, a JSON
// body, and route params.
func newTestContext(t *testing.T, method string, body interface{}, user middleware.AuthenticatedUser, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, "/test", &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx.Request = req
	ctx.Params = params
	ctx.Set(types.ContextUserKey, user)

	return ctx, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func eventParam(id string) gin.Params {
	return gin.Params{{Key: "event_id", Value: id}}
}
