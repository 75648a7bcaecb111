package handlers

import (
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
)

type RemoveParticipantRequest struct {
	UserID *uint   `json:"user_id"`
	Email  *string `json:"email"`
}

// MergeParticipants combines registered attendee rows and guest invitations
// into one tagged sequence sorted case-insensitively by display string. Guests
// without an email are dropped; registered entries are always included.
func MergeParticipants(attendees []models.EventAttendee, invitations []models.EventInvitation) []types.Participant {
	participants := make([]types.Participant, 0, len(attendees)+len(invitations))

	for _, att := range attendees {
		display := att.User.FullName
		if display == "" {
			display = att.User.Username
		}
		if display == "" {
			display = "Registered User"
		}

		participants = append(participants, types.Participant{
			Type:    "registered",
			Display: display,
			Status:  att.Status,
			Registered: &types.RegisteredDetails{
				UserID:    att.UserID,
				FullName:  att.User.FullName,
				Username:  att.User.Username,
				AvatarURL: att.User.AvatarURL,
				Role:      att.Role,
			},
		})
	}

	for _, inv := range invitations {
		if inv.Email == "" {
			continue
		}

		participants = append(participants, types.Participant{
			Type:    "guest",
			Display: inv.Email,
			Status:  types.RSVPInvited,
			Guest: &types.GuestDetails{
				Email: inv.Email,
				Token: inv.Token,
			},
		})
	}

	sort.SliceStable(participants, func(i, j int) bool {
		return strings.ToLower(participants[i].Display) < strings.ToLower(participants[j].Display)
	})

	return participants
}

func ListParticipants(ctx *gin.Context) {
	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	var attendees []models.EventAttendee

	if err := db.DB.Preload("User").Where("event_id = ?", event.ID).Find(&attendees).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve participants"})
		return
	}

	var invitations []models.EventInvitation

	if err := db.DB.Where("event_id = ?", event.ID).Find(&invitations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invitations"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"participants": MergeParticipants(attendees, invitations)})
}

// RemoveParticipant deletes either a registered attendee row (by user_id) or a
// guest invitation (by email). Exactly one identifier must be supplied. A
// removal that matches no row is a no-op outcome, not an error, and writes
// nothing anywhere else.
func RemoveParticipant(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body RemoveParticipantRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if (body.UserID == nil) == (body.Email == nil) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Provide exactly one of user_id or email"})
		return
	}

	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	role, err := attendeeRole(event.ID, user.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}

	if !types.IsManagerRole(role) && event.CreatorID != user.ID && !user.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only an event manager can remove participants"})
		return
	}

	if body.UserID != nil && *body.UserID == user.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot remove yourself from the event"})
		return
	}

	var rowsAffected int64

	if body.UserID != nil {
		result := db.DB.Unscoped().
			Where("event_id = ? AND user_id = ?", event.ID, *body.UserID).
			Delete(&models.EventAttendee{})
		err = result.Error
		rowsAffected = result.RowsAffected
	} else {
		email := strings.ToLower(strings.TrimSpace(*body.Email))
		result := db.DB.Unscoped().
			Where("event_id = ? AND email = ?", event.ID, email).
			Delete(&models.EventInvitation{})
		err = result.Error
		rowsAffected = result.RowsAffected
	}

	if err != nil {
		log.Printf("Failed to remove participant from event %d: %v", event.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove participant"})
		return
	}

	if rowsAffected == 0 {
		ctx.JSON(http.StatusOK, gin.H{
			"removed": false,
			"message": "No change was made",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"removed": true,
		"message": "Participant removed successfully",
	})
}
