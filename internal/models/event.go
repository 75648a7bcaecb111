package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model

	Title        string `gorm:"not null"`
	Description  string
	StartTime    time.Time `gorm:"not null"`
	EndTime      *time.Time
	LocationText string
	Status       string `gorm:"type:event_status;not null;default:draft"` // "draft", "published", "cancelled"
	CreatorID    uint   `gorm:"not null;index"`
	MemorialID   *uint  `gorm:"index"`

	// Relationships
	Creator     User              `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memorial    *Memorial         `gorm:"foreignKey:MemorialID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Attendees   []EventAttendee   `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Invitations []EventInvitation `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
