package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/types"
)

// Assigned from config at startup. An empty EmailWebhookURL disables outbound
// mail entirely; callers treat mail as best-effort either way.
var (
	EmailWebhookURL string
	EmailFrom       string
	ClientURL       string
)

type EmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendInvitationEmail mails an event invitation and records the attempt in
// the email log, which the invitation path consults to avoid re-sending.
// Failures are logged, never returned.
func SendInvitationEmail(event models.Event, email string) {
	subject := fmt.Sprintf("You're invited: %s", event.Title)

	html := fmt.Sprintf(
		"<h2>You have been invited to %s</h2>"+
			"<p><strong>When:</strong> %s</p>"+
			"<p><strong>Where:</strong> %s</p>"+
			"<p><a href=\"%s/events/%d\">View the event and RSVP</a></p>",
		event.Title,
		event.StartTime.Format("Monday, 2 January 2006 at 15:04"),
		locationOrTBA(event.LocationText),
		ClientURL, event.ID)

	deliver(event.ID, email, types.MailEventInvitation, subject, html)
}

// SendCancellationEmail mails a cancellation notice to one attendee.
func SendCancellationEmail(event models.Event, email, organizerName, reason string) {
	if reason == "" {
		reason = "The event has been cancelled by the organizer."
	}

	subject := fmt.Sprintf("Cancelled: %s", event.Title)

	html := fmt.Sprintf(
		"<h2>%s has been cancelled</h2>"+
			"<p>%s</p>"+
			"<p><strong>Originally scheduled:</strong> %s</p>"+
			"<p>— %s</p>",
		event.Title,
		reason,
		event.StartTime.Format("Monday, 2 January 2006 at 15:04"),
		organizerName)

	deliver(event.ID, email, types.MailEventCancellation, subject, html)
}

func deliver(eventID uint, email, mailType, subject, html string) {
	status := "sent"

	if err := sendEmail(email, subject, html); err != nil {
		log.Printf("Failed to send %s email to %s for event %d: %v", mailType, email, eventID, err)
		status = "failed"
	}

	entry := models.EmailLog{
		EventID:        eventID,
		RecipientEmail: email,
		MailType:       mailType,
		Status:         status,
	}

	if err := db.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to record email log for event %d recipient %s: %v", eventID, email, err)
	}
}

func sendEmail(to, subject, html string) error {
	if EmailWebhookURL == "" {
		return fmt.Errorf("email provider not configured")
	}

	payload := EmailRequest{
		From:    EmailFrom,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	resp, err := http.Post(EmailWebhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}

func locationOrTBA(location string) string {
	if location == "" {
		return "To be announced"
	}
	return location
}
