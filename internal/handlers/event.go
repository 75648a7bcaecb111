package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateEventRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	StartTime    time.Time  `json:"start_time" binding:"required"`
	EndTime      *time.Time `json:"end_time"`
	LocationText string     `json:"location_text"`
	MemorialID   *uint      `json:"memorial_id"`
	Publish      bool       `json:"publish"`
}

type UpdateEventRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	StartTime    time.Time  `json:"start_time" binding:"required"`
	EndTime      *time.Time `json:"end_time"`
	LocationText string     `json:"location_text"`
}

type EventResponse struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	LocationText string     `json:"location_text"`
	Status       string     `json:"status"`
	CreatorID    uint       `json:"creator_id"`
	MemorialID   *uint      `json:"memorial_id,omitempty"`
}

func eventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		LocationText: event.LocationText,
		Status:       event.Status,
		CreatorID:    event.CreatorID,
		MemorialID:   event.MemorialID,
	}
}

// findEvent loads the event addressed by the :event_id route parameter.
func findEvent(ctx *gin.Context) (models.Event, bool) {
	var event models.Event

	if err := db.DB.Where("id = ?", ctx.Param("event_id")).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return models.Event{}, false
	}

	return event, true
}

// attendeeRole returns the user's attendee role on the event, or "" when they
// hold no attendee row.
func attendeeRole(eventID, userID uint) (string, error) {
	var attendee models.EventAttendee

	err := db.DB.Where("event_id = ? AND user_id = ?", eventID, userID).First(&attendee).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return attendee.Role, nil
}

func CreateEvent(ctx *gin.Context) {
	var body CreateEventRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	status := types.EventStatusDraft
	if body.Publish {
		status = types.EventStatusPublished
	}

	event := models.Event{
		Title:        body.Title,
		Description:  body.Description,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		LocationText: body.LocationText,
		Status:       status,
		CreatorID:    userID,
		MemorialID:   body.MemorialID,
	}

	now := time.Now()

	// The creator becomes a manager attendee in the same transaction, so an
	// event never exists without a manager.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		creatorRow := models.EventAttendee{
			EventID:     event.ID,
			UserID:      userID,
			Status:      types.RSVPAccepted,
			Role:        types.RoleManager,
			RespondedAt: &now,
		}

		return tx.Create(&creatorRow).Error
	})

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	ctx.JSON(http.StatusCreated, eventResponse(event))
}

func GetEvent(ctx *gin.Context) {
	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, eventResponse(event))
}

func ListEvents(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var events []models.Event

	err = db.DB.
		Where("creator_id = ?", userID).
		Or("id IN (?)", db.DB.Model(&models.EventAttendee{}).Select("event_id").Where("user_id = ?", userID)).
		Order("start_time").
		Find(&events).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	response := make([]EventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, eventResponse(event))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateEvent(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
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

	if event.CreatorID != user.ID && role != types.RoleCoManager && !user.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the event creator or a co-manager can edit this event"})
		return
	}

	var body UpdateEventRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	event.Title = body.Title
	event.Description = body.Description
	event.StartTime = body.StartTime
	event.EndTime = body.EndTime
	event.LocationText = body.LocationText

	if err := db.DB.Save(&event).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	ctx.JSON(http.StatusOK, eventResponse(event))
}

// DeleteEvent hard-deletes the event row; attendees and invitations go with it
// via the cascade constraints. The parent memorial id is echoed back so the
// client knows where to navigate afterwards.
func DeleteEvent(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	if event.CreatorID != user.ID && !user.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the event creator or an admin can delete this event"})
		return
	}

	if err := db.DB.Unscoped().Delete(&event).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Event deleted successfully",
		"memorial_id": event.MemorialID,
	})
}
