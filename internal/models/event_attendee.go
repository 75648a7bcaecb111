package models

import (
	"time"

	"gorm.io/gorm"
)

// EventAttendee holds one row per (event, user) pair. The composite unique
// index is the conflict key for the RSVP upsert.
type EventAttendee struct {
	gorm.Model

	EventID     uint   `gorm:"not null;uniqueIndex:idx_event_user"`
	UserID      uint   `gorm:"not null;uniqueIndex:idx_event_user"`
	Status      string `gorm:"type:rsvp_status;not null"` // "accepted", "maybe", "declined", "invited"
	Role        string `gorm:"not null;default:attendee"` // "manager", "co_manager", "attendee"
	RespondedAt *time.Time

	// Relationships
	Event Event `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
