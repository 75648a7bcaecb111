package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification rows are deduplicated per (recipient, entity, type): the
// composite unique index is the conflict key for the notification upsert, so
// repeated RSVP flips overwrite one row instead of piling up.
type Notification struct {
	gorm.Model

	RecipientID uint           `gorm:"not null;uniqueIndex:idx_recipient_entity_type"`
	SenderID    *uint          `gorm:"index"`
	Type        string         `gorm:"not null;uniqueIndex:idx_recipient_entity_type"`
	EntityType  string         `gorm:"not null;uniqueIndex:idx_recipient_entity_type"`
	EntityID    uint           `gorm:"not null;uniqueIndex:idx_recipient_entity_type"`
	Message     string         `gorm:"not null"`
	IsRead      bool           `gorm:"not null;default:false"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Recipient User  `gorm:"foreignKey:RecipientID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sender    *User `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
