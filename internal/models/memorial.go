package models

import "gorm.io/gorm"

// Memorial is the parent page an event can belong to. Only the fields the
// event workflow needs are modelled here; the full memorial feature set lives
// outside this service.
type Memorial struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	CreatorID   uint `gorm:"not null;index"`

	// Relationships
	Creator User    `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Events  []Event `gorm:"foreignKey:MemorialID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
