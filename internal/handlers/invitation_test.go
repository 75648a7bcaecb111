package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afterlife-dev/afterlife/internal/middleware"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// inviteStubs replaces the notification and email hooks and tracks the
// background deliveries so the test can wait for them before asserting.
type inviteStubs struct {
	mu             sync.Mutex
	wg             sync.WaitGroup
	notifications  []uint
	creatorNotices []string
	emails         []string
}

func stubInviteSideEffects(t *testing.T) *inviteStubs {
	s := &inviteStubs{}

	origNotify := notifyInvitation
	origNotifyRSVP := notifyRSVP
	origEmail := sendInvitationEmail

	notifyInvitation = func(eventID, actorID, recipientID uint) error {
		s.mu.Lock()
		s.notifications = append(s.notifications, recipientID)
		s.mu.Unlock()
		return nil
	}
	notifyRSVP = func(eventID, actorID uint, status string) error {
		s.mu.Lock()
		s.creatorNotices = append(s.creatorNotices, status)
		s.mu.Unlock()
		return nil
	}
	sendInvitationEmail = func(event models.Event, email string) {
		s.mu.Lock()
		s.emails = append(s.emails, email)
		s.mu.Unlock()
		s.wg.Done()
	}

	t.Cleanup(func() {
		notifyInvitation = origNotify
		notifyRSVP = origNotifyRSVP
		sendInvitationEmail = origEmail
	})

	return s
}

func (s *inviteStubs) expectEmails(n int) { s.wg.Add(n) }

func (s *inviteStubs) wait() {
	s.wg.Wait()
}

func expectNoRow(mock sqlmock.Sqlmock, query string) {
	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

func TestInviteParticipants_RegisteredUserGetsAttendeeRow(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)
	stubs.expectEmails(1)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	// Address resolves to a registered user with no attendee row and no
	// prior invitation in any form.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name"}).
			AddRow(42, "ana@example.com", "Ana Cole"))
	expectNoRow(mock, `SELECT \* FROM "event_attendees"`)
	expectNoRow(mock, `SELECT \* FROM "event_invitations"`)
	expectNoRow(mock, `SELECT \* FROM "email_logs"`)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "event_attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"ana@example.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, manager, eventParam("1"))

	InviteParticipants(ctx)
	stubs.wait()

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"ana@example.com"}, response["invited"])
	assert.Nil(t, response["skipped"])
	assert.Equal(t, float64(0), response["skipped_invalid"])

	assert.Equal(t, []uint{42}, stubs.notifications)
	assert.Equal(t, []string{types.RSVPInvited}, stubs.creatorNotices)
	assert.Equal(t, []string{"ana@example.com"}, stubs.emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_GuestWhoRegisteredIsConvertedNotRemailed(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	// The address now belongs to an account, but the event still holds the
	// guest invitation row from before registration.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name"}).
			AddRow(42, "ana@example.com", "Ana Cole"))
	expectNoRow(mock, `SELECT \* FROM "event_attendees"`)
	mock.ExpectQuery(`SELECT \* FROM "event_invitations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "email", "token"}).
			AddRow(3, 1, "ana@example.com", "tok-1"))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "event_invitations"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "event_attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"ana@example.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, manager, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Nil(t, response["invited"])
	assert.Equal(t, []interface{}{"ana@example.com"}, response["skipped"])

	// The person was already invited: no second mail, no new notification.
	assert.Empty(t, stubs.emails)
	assert.Empty(t, stubs.notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_RegisteredUserAlreadyMailedIsSkipped(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name"}).
			AddRow(42, "ana@example.com", "Ana Cole"))
	expectNoRow(mock, `SELECT \* FROM "event_attendees"`)
	expectNoRow(mock, `SELECT \* FROM "event_invitations"`)
	mock.ExpectQuery(`SELECT \* FROM "email_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_email"}).
			AddRow(8, "ana@example.com"))

	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"ana@example.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, manager, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"ana@example.com"}, response["skipped"])
	assert.Empty(t, stubs.emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_UnknownAddressGetsGuestInvitation(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)
	stubs.expectEmails(1)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	expectNoRow(mock, `SELECT \* FROM "users"`)
	expectNoRow(mock, `SELECT \* FROM "event_invitations"`)
	expectNoRow(mock, `SELECT \* FROM "email_logs"`)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "event_invitations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"guest@example.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, manager, eventParam("1"))

	InviteParticipants(ctx)
	stubs.wait()

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"guest@example.com"}, response["invited"])
	assert.Empty(t, stubs.notifications)
	assert.Equal(t, []string{"guest@example.com"}, stubs.emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_ExistingInvitationIsSkipped(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	expectNoRow(mock, `SELECT \* FROM "users"`)
	mock.ExpectQuery(`SELECT \* FROM "event_invitations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "email"}).
			AddRow(3, 1, "guest@example.com"))

	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"guest@example.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, manager, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Nil(t, response["invited"])
	assert.Equal(t, []interface{}{"guest@example.com"}, response["skipped"])
	assert.Empty(t, stubs.emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_PriorInvitationEmailIsSkipped(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	expectNoRow(mock, `SELECT \* FROM "users"`)
	expectNoRow(mock, `SELECT \* FROM "event_invitations"`)
	mock.ExpectQuery(`SELECT \* FROM "email_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_email"}).
			AddRow(8, "guest@example.com"))

	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"guest@example.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, manager, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"guest@example.com"}, response["skipped"])
	assert.Empty(t, stubs.emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_NoValidEmails(t *testing.T) {
	mock := setupMockDB(t)

	user := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"not-an-email", "also bad"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, user, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_NonManagerForbidden(t *testing.T) {
	mock := setupMockDB(t)

	expectEventRow(mock, 1, "published", 2)
	expectAttendeeRoleRow(mock, types.RoleAttendee)

	user := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"a@b.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, user, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteParticipants_CancelledEventConflict(t *testing.T) {
	mock := setupMockDB(t)

	expectEventRow(mock, 1, "cancelled", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	creator := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	body := InviteRequest{Emails: []string{"a@b.com"}}
	ctx, rec := newTestContext(t, http.MethodPost, body, creator, eventParam("1"))

	InviteParticipants(ctx)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newCSVUploadContext(t *testing.T, csv string, user middleware.AuthenticatedUser, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "guests.csv")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.Close()

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	req := httptest.NewRequest(http.MethodPost, "/test", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	ctx.Request = req
	ctx.Params = params
	ctx.Set(types.ContextUserKey, user)

	return ctx, rec
}

func TestImportInvitations_ReadsEmailColumnFromCSV(t *testing.T) {
	mock := setupMockDB(t)
	stubs := stubInviteSideEffects(t)
	stubs.expectEmails(1)

	expectEventRow(mock, 1, "published", 5)
	expectAttendeeRoleRow(mock, types.RoleManager)

	expectNoRow(mock, `SELECT \* FROM "users"`)
	expectNoRow(mock, `SELECT \* FROM "event_invitations"`)
	expectNoRow(mock, `SELECT \* FROM "email_logs"`)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "event_invitations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	csv := "name,email\nSam,sam@example.com\nBroken,not-an-email\n"
	manager := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	ctx, rec := newCSVUploadContext(t, csv, manager, eventParam("1"))

	ImportInvitations(ctx)
	stubs.wait()

	assert.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"sam@example.com"}, response["invited"])
	assert.Equal(t, float64(1), response["skipped_invalid"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportInvitations_MissingFile(t *testing.T) {
	user := middleware.AuthenticatedUser{ID: 5, Role: "USER"}
	ctx, rec := newTestContext(t, http.MethodPost, nil, user, eventParam("1"))

	ImportInvitations(ctx)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
