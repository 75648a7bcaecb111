package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afterlife-dev/afterlife/db"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
		t.Fatalf("Failed to open gorm with mock connection: %v", err)
	}

	db.DB = gormDB

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return mock
}
