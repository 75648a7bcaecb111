package types

// Event lifecycle statuses.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
)

// RSVP statuses. "invited" is set by the invitation path, never by the RSVP
// endpoint itself.
const (
	RSVPAccepted = "accepted"
	RSVPMaybe    = "maybe"
	RSVPDeclined = "declined"
	RSVPInvited  = "invited"
)

// Attendee roles. The event creator always holds "manager".
const (
	RoleManager   = "manager"
	RoleCoManager = "co_manager"
	RoleAttendee  = "attendee"
)

// Global account roles.
const (
	UserRoleStandard = "USER"
	UserRoleAdmin    = "ADMIN"
)

// Notification types.
const (
	NotificationEventRSVPChange = "EVENT_RSVP_CHANGE"
	NotificationEventInvitation = "EVENT_INVITATION"
	NotificationEventCancelled  = "EVENT_CANCELLED"
	NotificationRolePromotion   = "ROLE_PROMOTION"
	NotificationRoleDemotion    = "ROLE_DEMOTION"
)

// Entity types referenced by notifications and audit logs.
const (
	EntityEvent         = "EVENT"
	EntityEventAttendee = "EVENT_ATTENDEE"
)

// Audit log actions.
const (
	AuditEventStatusChanged = "EVENT_STATUS_CHANGED"
	AuditEventRoleChanged   = "EVENT_ROLE_CHANGED"
)

// Outbound mail types.
const (
	MailEventInvitation   = "EVENT_INVITATION"
	MailEventCancellation = "EVENT_CANCELLATION"
)

func IsValidRSVPStatus(status string) bool {
	switch status {
	case RSVPAccepted, RSVPMaybe, RSVPDeclined:
		return true
	}
	return false
}

func IsValidEventStatus(status string) bool {
	switch status {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}

func IsManagerRole(role string) bool {
	return role == RoleManager || role == RoleCoManager
}
