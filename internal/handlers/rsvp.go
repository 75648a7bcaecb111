package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/services"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UpdateRSVPRequest struct {
	Status string `json:"status" binding:"required"`
}

// Swapped out in tests.
var notifyRSVP = services.ComposeRSVPNotification

// UpdateRSVP upserts the caller's attendance row for the event, keyed on
// (event_id, user_id) so repeated calls are idempotent and concurrent
// identical writes from the same user are race-safe. The notification to the
// event creator is fired after the write and never affects its outcome.
func UpdateRSVP(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateRSVPRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidRSVPStatus(body.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of accepted, maybe, declined"})
		return
	}

	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	if event.Status == types.EventStatusCancelled {
		ctx.JSON(http.StatusConflict, gin.H{"error": "This event has been cancelled"})
		return
	}

	now := time.Now()

	attendee := models.EventAttendee{
		EventID:     event.ID,
		UserID:      user.ID,
		Status:      body.Status,
		Role:        types.RoleAttendee,
		RespondedAt: &now,
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       body.Status,
			"responded_at": now,
			"updated_at":   now,
		}),
	}).Create(&attendee).Error

	if err != nil {
		if utils.IsEnumViolation(err) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "RSVP update failed: invalid status value. Please contact support if this persists."})
			return
		}
		log.Printf("Failed to upsert RSVP for event %d user %d: %v", event.ID, user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update RSVP"})
		return
	}

	go func(eventID, actorID uint, status string) {
		if err := notifyRSVP(eventID, actorID, status); err != nil {
			log.Printf("RSVP notification for event %d failed: %v", eventID, err)
		}
	}(event.ID, user.ID, body.Status)

	ctx.JSON(http.StatusOK, gin.H{
		"event_id": event.ID,
		"user_id":  user.ID,
		"status":   body.Status,
	})
}

// GetMyRSVP returns the caller's current attendance row, if any.
func GetMyRSVP(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	var attendee models.EventAttendee

	err = db.DB.Where("event_id = ? AND user_id = ?", event.ID, user.ID).First(&attendee).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusOK, gin.H{"status": nil})
		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve RSVP"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":       attendee.Status,
		"role":         attendee.Role,
		"responded_at": attendee.RespondedAt,
	})
}
