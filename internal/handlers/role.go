package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/services"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ManageRoleRequest struct {
	TargetUserID uint   `json:"target_user_id" binding:"required"`
	NewRole      string `json:"new_role" binding:"required"`
}

// Swapped out in tests.
var notifyRoleChange = services.NotifyRoleChange

// ManageRole promotes or demotes a participant between attendee and
// co-manager. The original event creator can never be set to attendee through
// this procedure, so an event cannot lose its last manager this way.
func ManageRole(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ManageRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.NewRole != types.RoleCoManager && body.NewRole != types.RoleAttendee {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be co_manager or attendee"})
		return
	}

	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	if event.CreatorID != user.ID && !user.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the event creator or an admin can manage co-manager roles"})
		return
	}

	var attendee models.EventAttendee

	err = db.DB.Where("event_id = ? AND user_id = ?", event.ID, body.TargetUserID).First(&attendee).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Target user is not a participant in this event"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve participant"})
		}
		return
	}

	if body.TargetUserID == event.CreatorID && body.NewRole == types.RoleAttendee {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote the original event creator"})
		return
	}

	oldRole := attendee.Role

	if err := db.DB.Model(&attendee).Update("role", body.NewRole).Error; err != nil {
		log.Printf("Failed to update role for event %d user %d: %v", event.ID, body.TargetUserID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attendee role"})
		return
	}

	audit := models.AuditLog{
		Action:     types.AuditEventRoleChanged,
		ActorID:    user.ID,
		TargetType: types.EntityEventAttendee,
		TargetID:   attendee.ID,
		Description: fmt.Sprintf("Changed role of user %d from %s to %s for event %d",
			body.TargetUserID, oldRole, body.NewRole, event.ID),
		Metadata: datatypes.JSON([]byte(fmt.Sprintf(
			`{"event_id":%d,"target_user_id":%d,"old_role":%q,"new_role":%q}`,
			event.ID, body.TargetUserID, oldRole, body.NewRole))),
	}

	if err := db.DB.Create(&audit).Error; err != nil {
		log.Printf("Failed to write audit log for event %d role change: %v", event.ID, err)
	}

	// The notification is best-effort; its failure never fails the role change.
	if err := notifyRoleChange(event, user.ID, body.TargetUserID, oldRole, body.NewRole); err != nil {
		log.Printf("Role change notification for event %d user %d failed: %v", event.ID, body.TargetUserID, err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"event_id":       event.ID,
		"target_user_id": body.TargetUserID,
		"previous_role":  oldRole,
		"new_role":       body.NewRole,
	})
}
