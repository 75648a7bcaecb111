package db

import (
	"fmt"
	"strings"

	"github.com/afterlife-dev/afterlife/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Postgres enum domains backing the status columns. Out-of-range values are
// rejected by the database itself, not only by handler validation.
var enumTypes = map[string][]string{
	"rsvp_status":  {"accepted", "maybe", "declined", "invited"},
	"event_status": {"draft", "published", "cancelled"},
}

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	for name, values := range enumTypes {
		if err := createEnumType(name, values); err != nil {
			return err
		}
	}

	models := []interface{}{
		&models.User{},
		&models.Memorial{},
		&models.Event{},
		&models.EventAttendee{},
		&models.EventInvitation{},
		&models.Notification{},
		&models.AuditLog{},
		&models.EmailLog{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

func createEnumType(name string, values []string) error {
	var exists bool

	if err := DB.Raw("SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = ?)", name).Scan(&exists).Error; err != nil {
		return err
	}

	if exists {
		return nil
	}

	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}

	return DB.Exec(fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", name, strings.Join(quoted, ", "))).Error
}
