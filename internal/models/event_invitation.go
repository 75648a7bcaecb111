package models

import "gorm.io/gorm"

// EventInvitation is an email-only invitee with no user account. Displayed as
// status "invited" alongside registered attendees.
type EventInvitation struct {
	gorm.Model

	EventID uint   `gorm:"not null;uniqueIndex:idx_event_email"`
	Email   string `gorm:"not null;uniqueIndex:idx_event_email"`
	Token   string `gorm:"uniqueIndex;not null"`

	// Relationships
	Event Event `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
