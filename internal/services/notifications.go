package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertNotification writes a notification deduplicated on
// (recipient, entity, type): an existing row is overwritten with the new
// message and flipped back to unread instead of a duplicate piling up.
func upsertNotification(n models.Notification) error {
	return db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "recipient_id"},
			{Name: "entity_type"},
			{Name: "entity_id"},
			{Name: "type"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"sender_id":  n.SenderID,
			"message":    n.Message,
			"is_read":    false,
			"metadata":   n.Metadata,
			"updated_at": time.Now(),
		}),
	}).Create(&n).Error
}

func statusDisplay(status string) string {
	switch status {
	case types.RSVPAccepted:
		return "Accepted"
	case types.RSVPMaybe:
		return "Maybe"
	case types.RSVPDeclined:
		return "Declined"
	case types.RSVPInvited:
		return "Invited"
	}
	return status
}

// memorialTitlePart resolves " of memorial 'X'" for events linked to a parent
// memorial. Lookup failures degrade to an empty suffix.
func memorialTitlePart(memorialID *uint) string {
	if memorialID == nil {
		return ""
	}

	var memorial models.Memorial

	if err := db.DB.Select("title").Where("id = ?", *memorialID).First(&memorial).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Could not fetch memorial %d title: %v", *memorialID, err)
		}
		return ""
	}

	return fmt.Sprintf(" of memorial '%s'", memorial.Title)
}

// actorName resolves a user's display name, degrading to a placeholder.
func actorName(userID uint) string {
	var user models.User

	if err := db.DB.Select("full_name", "username").Where("id = ?", userID).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Could not fetch user %d name: %v", userID, err)
		}
		return "A user"
	}

	if user.FullName != "" {
		return user.FullName
	}
	if user.Username != "" {
		return user.Username
	}
	return "A user"
}

// ComposeRSVPNotification tells the event creator about an attendee's RSVP
// change (or, with the synthetic status "invited", about a new invitation).
// Repeated flips by the same user evolve a single notification row. The actor
// is never notified about their own RSVP.
func ComposeRSVPNotification(eventID, actorID uint, status string) error {
	var event models.Event

	err := db.DB.Select("id", "title", "creator_id", "memorial_id").Where("id = ?", eventID).First(&event).Error

	if err != nil {
		return fmt.Errorf("event not found or cannot be accessed: %w", err)
	}

	if event.CreatorID == actorID {
		return nil
	}

	eventTitlePart := "an event"
	if event.Title != "" {
		eventTitlePart = fmt.Sprintf("'%s'", event.Title)
	}

	notificationType := types.NotificationEventRSVPChange
	if status == types.RSVPInvited {
		notificationType = types.NotificationEventInvitation
	}

	message := fmt.Sprintf("%s (%s) %s%s.",
		actorName(actorID), statusDisplay(status), eventTitlePart, memorialTitlePart(event.MemorialID))

	sender := actorID

	return upsertNotification(models.Notification{
		RecipientID: event.CreatorID,
		SenderID:    &sender,
		Type:        notificationType,
		EntityType:  types.EntityEvent,
		EntityID:    event.ID,
		Message:     message,
		Metadata:    datatypes.JSON([]byte(fmt.Sprintf(`{"status":%q}`, status))),
	})
}

// NotifyInvitation tells a registered user they were invited to an event.
func NotifyInvitation(eventID, actorID, recipientID uint) error {
	var event models.Event

	err := db.DB.Select("id", "title", "memorial_id").Where("id = ?", eventID).First(&event).Error

	if err != nil {
		return fmt.Errorf("event not found or cannot be accessed: %w", err)
	}

	eventTitlePart := "an event"
	if event.Title != "" {
		eventTitlePart = fmt.Sprintf("'%s'", event.Title)
	}

	message := fmt.Sprintf("%s invited you to %s%s.",
		actorName(actorID), eventTitlePart, memorialTitlePart(event.MemorialID))

	sender := actorID

	return upsertNotification(models.Notification{
		RecipientID: recipientID,
		SenderID:    &sender,
		Type:        types.NotificationEventInvitation,
		EntityType:  types.EntityEvent,
		EntityID:    event.ID,
		Message:     message,
	})
}

// NotifyRoleChange tells the target user about their promotion or demotion.
func NotifyRoleChange(event models.Event, actorID, targetID uint, oldRole, newRole string) error {
	notificationType := types.NotificationRoleDemotion
	message := fmt.Sprintf("Your co-manager role for event \"%s\" has been removed", event.Title)

	if newRole == types.RoleCoManager {
		notificationType = types.NotificationRolePromotion
		message = fmt.Sprintf("You have been made a co-manager for event \"%s\"", event.Title)
	}

	sender := actorID

	return upsertNotification(models.Notification{
		RecipientID: targetID,
		SenderID:    &sender,
		Type:        notificationType,
		EntityType:  types.EntityEvent,
		EntityID:    event.ID,
		Message:     message,
		Metadata: datatypes.JSON([]byte(fmt.Sprintf(
			`{"old_role":%q,"new_role":%q}`, oldRole, newRole))),
	})
}

// NotifyCancellation fans out one deduplicated notification and one email per
// attendee whose status is accepted, invited, or maybe. Declined attendees are
// excluded. Every step is best-effort: individual failures are logged and the
// fan-out continues.
func NotifyCancellation(event models.Event, actorID uint, reason string) {
	var attendees []models.EventAttendee

	err := db.DB.Where("event_id = ? AND status IN ?", event.ID,
		[]string{types.RSVPAccepted, types.RSVPInvited, types.RSVPMaybe}).Find(&attendees).Error

	if err != nil {
		log.Printf("Could not fetch attendees for cancellation of event %d: %v", event.ID, err)
		return
	}

	if len(attendees) == 0 {
		return
	}

	sender := actorID
	message := fmt.Sprintf("Event \"%s\" has been cancelled", event.Title)

	userIDs := make([]uint, 0, len(attendees))

	for _, attendee := range attendees {
		userIDs = append(userIDs, attendee.UserID)

		err := upsertNotification(models.Notification{
			RecipientID: attendee.UserID,
			SenderID:    &sender,
			Type:        types.NotificationEventCancelled,
			EntityType:  types.EntityEvent,
			EntityID:    event.ID,
			Message:     message,
		})

		if err != nil {
			log.Printf("Cancellation notification for event %d user %d failed: %v", event.ID, attendee.UserID, err)
		}
	}

	var users []models.User

	if err := db.DB.Select("id", "email").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		log.Printf("Could not resolve attendee emails for event %d cancellation: %v", event.ID, err)
		return
	}

	creatorName := actorName(actorID)

	for _, u := range users {
		if u.Email == "" {
			continue
		}
		SendCancellationEmail(event, u.Email, creatorName, reason)
	}
}
