package handlers

import (
	"log"
	"net/http"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/services"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type ChangeStatusRequest struct {
	NewStatus          string `json:"new_status" binding:"required"`
	CancellationReason string `json:"cancellation_reason"`
}

// Swapped out in tests.
var notifyCancellation = services.NotifyCancellation

// ChangeEventStatus moves an event through its draft/published/cancelled
// lifecycle. Authorization is checked here regardless of what the client
// believes. A transition to cancelled fans out notifications and emails to
// every attendee who accepted, is invited, or answered maybe; declined
// attendees are excluded from the fan-out.
func ChangeEventStatus(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ChangeStatusRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidEventStatus(body.NewStatus) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of draft, published, cancelled"})
		return
	}

	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	if event.CreatorID != user.ID && !user.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the event creator or an admin can change event status"})
		return
	}

	oldStatus := event.Status

	if err := db.DB.Model(&event).Update("status", body.NewStatus).Error; err != nil {
		log.Printf("Failed to update status of event %d: %v", event.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event status"})
		return
	}

	if body.NewStatus == types.EventStatusCancelled {
		notifyCancellation(event, user.ID, body.CancellationReason)
	}

	// Exactly one audit row per status change, whatever the fan-out did.
	audit := models.AuditLog{
		Action:      types.AuditEventStatusChanged,
		ActorID:     user.ID,
		TargetType:  types.EntityEvent,
		TargetID:    event.ID,
		Description: "Event status changed from " + oldStatus + " to " + body.NewStatus,
		Metadata: datatypes.JSON([]byte(`{"old_status":"` + oldStatus +
			`","new_status":"` + body.NewStatus + `"}`)),
	}

	if err := db.DB.Create(&audit).Error; err != nil {
		log.Printf("Failed to write audit log for event %d status change: %v", event.ID, err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"event_id":        event.ID,
		"previous_status": oldStatus,
		"new_status":      body.NewStatus,
	})
}
