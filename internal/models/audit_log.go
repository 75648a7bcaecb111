package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is append-only: rows are created by privileged procedures and never
// updated or deleted by the application.
type AuditLog struct {
	gorm.Model

	Action      string `gorm:"not null;index"` // e.g. "EVENT_STATUS_CHANGED", "EVENT_ROLE_CHANGED"
	ActorID     uint   `gorm:"not null;index"`
	TargetType  string `gorm:"not null"`
	TargetID    uint   `gorm:"not null;index"`
	Description string
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
}
