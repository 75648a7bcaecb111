package models

import "gorm.io/gorm"

// EmailLog records every outbound transactional mail. The invitation path
// consults it so an address that already received an invitation mail for an
// event is not mailed again.
type EmailLog struct {
	gorm.Model

	EventID        uint   `gorm:"not null;index"`
	RecipientEmail string `gorm:"not null;index"`
	MailType       string `gorm:"not null"` // "EVENT_INVITATION", "EVENT_CANCELLATION"
	Status         string `gorm:"not null"` // "sent", "failed"
}
