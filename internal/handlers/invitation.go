package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/middleware"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/services"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

// Swapped out in tests.
var (
	notifyInvitation    = services.NotifyInvitation
	sendInvitationEmail = services.SendInvitationEmail
)

type InviteResponse struct {
	Invited        []string `json:"invited"`
	Skipped        []string `json:"skipped"`
	SkippedInvalid int      `json:"skipped_invalid"`
}

// InviteParticipants accepts a raw email batch, drops invalid and duplicate
// entries up front (advisory; the counts are reported back), then applies the
// authoritative duplicate policy: addresses already attending, already
// invited, or already mailed an invitation are skipped.
func InviteParticipants(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body InviteRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	processInviteBatch(ctx, user, body.Emails)
}

// ImportInvitations accepts a multipart CSV upload with an email column and
// feeds the extracted addresses through the same batch path.
func ImportInvitations(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A CSV file is required"})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	emails, err := utils.ExtractEmailColumn(file)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	processInviteBatch(ctx, user, emails)
}

func processInviteBatch(ctx *gin.Context, user middleware.AuthenticatedUser, rawEmails []string) {
	emails, skippedInvalid := utils.FilterInviteEmails(rawEmails)

	if len(emails) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid email addresses to invite"})
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
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only an event manager can invite participants"})
		return
	}

	if event.Status == types.EventStatusCancelled {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Cannot invite participants to a cancelled event"})
		return
	}

	var invited, skipped []string

	for _, email := range emails {
		added, err := inviteOne(event, user, email)

		if err != nil {
			log.Printf("Failed to invite %s to event %d: %v", email, event.ID, err)
			skipped = append(skipped, email)
			continue
		}

		if added {
			invited = append(invited, email)
		} else {
			skipped = append(skipped, email)
		}
	}

	ctx.JSON(http.StatusOK, InviteResponse{
		Invited:        invited,
		Skipped:        skipped,
		SkippedInvalid: skippedInvalid,
	})
}

// inviteOne invites a single address. Registered users get an attendee row
// with status "invited" plus a deduplicated notification; unknown addresses
// get a guest invitation row. Returns false when the duplicate policy skipped
// the address.
func inviteOne(event models.Event, actor middleware.AuthenticatedUser, email string) (bool, error) {
	var invitee models.User

	err := db.DB.Where("email = ?", email).First(&invitee).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err == nil {
		return inviteRegistered(event, actor, invitee)
	}

	return inviteGuest(event, actor, email)
}

func inviteRegistered(event models.Event, actor middleware.AuthenticatedUser, invitee models.User) (bool, error) {
	var existing models.EventAttendee

	err := db.DB.Where("event_id = ? AND user_id = ?", event.ID, invitee.ID).First(&existing).Error

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	// An address invited as a guest before its account existed keeps its
	// original invitation: the guest row becomes an attendee row and no
	// second mail goes out.
	var guest models.EventInvitation

	err = db.DB.Where("event_id = ? AND email = ?", event.ID, invitee.Email).First(&guest).Error

	if err == nil {
		return false, convertGuestInvitation(event, guest, invitee)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var mailed models.EmailLog

	err = db.DB.Where("event_id = ? AND recipient_email = ? AND mail_type = ?",
		event.ID, invitee.Email, types.MailEventInvitation).First(&mailed).Error

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	attendee := models.EventAttendee{
		EventID: event.ID,
		UserID:  invitee.ID,
		Status:  types.RSVPInvited,
		Role:    types.RoleAttendee,
	}

	if err := db.DB.Create(&attendee).Error; err != nil {
		return false, err
	}

	go func() {
		if err := notifyInvitation(event.ID, actor.ID, invitee.ID); err != nil {
			log.Printf("Invitation notification for event %d user %d failed: %v", event.ID, invitee.ID, err)
		}
		if err := notifyRSVP(event.ID, actor.ID, types.RSVPInvited); err != nil {
			log.Printf("Invitation RSVP notification for event %d failed: %v", event.ID, err)
		}
		sendInvitationEmail(event, invitee.Email)
	}()

	return true, nil
}

// convertGuestInvitation replaces a guest invitation row with a registered
// attendee row once the invitee has an account, so the participant list shows
// one entry per person.
func convertGuestInvitation(event models.Event, guest models.EventInvitation, invitee models.User) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&guest).Error; err != nil {
			return err
		}

		attendee := models.EventAttendee{
			EventID: event.ID,
			UserID:  invitee.ID,
			Status:  types.RSVPInvited,
			Role:    types.RoleAttendee,
		}

		return tx.Create(&attendee).Error
	})
}

func inviteGuest(event models.Event, actor middleware.AuthenticatedUser, email string) (bool, error) {
	var existing models.EventInvitation

	err := db.DB.Where("event_id = ? AND email = ?", event.ID, email).First(&existing).Error

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var mailed models.EmailLog

	err = db.DB.Where("event_id = ? AND recipient_email = ? AND mail_type = ?",
		event.ID, email, types.MailEventInvitation).First(&mailed).Error

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	invitation := models.EventInvitation{
		EventID: event.ID,
		Email:   email,
		Token:   uuid.NewString(),
	}

	if err := db.DB.Create(&invitation).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			// Lost a race against a concurrent invite of the same address.
			return false, nil
		}
		return false, err
	}

	go sendInvitationEmail(event, email)

	return true, nil
}
