package types

// Participant is the tagged union shown in participant lists: a registered
// attendee row or an email-only guest invitation. Exactly one of the two
// detail blocks is populated, according to Type.
type Participant struct {
	Type       string             `json:"type"` // "registered" or "guest"
	Display    string             `json:"display"`
	Status     string             `json:"status"`
	Registered *RegisteredDetails `json:"registered,omitempty"`
	Guest      *GuestDetails      `json:"guest,omitempty"`
}

type RegisteredDetails struct {
	UserID    uint   `json:"user_id"`
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
}

type GuestDetails struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
