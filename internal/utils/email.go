package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// FilterInviteEmails normalizes a raw invitee batch: trims, lowercases, drops
// invalid addresses and in-batch duplicates. Order of first appearance is
// preserved. The skipped count is reported back to the inviter; the server
// remains the authority on addresses already invited.
func FilterInviteEmails(raw []string) (valid []string, skipped int) {
	seen := make(map[string]bool, len(raw))

	for _, entry := range raw {
		email := strings.ToLower(strings.TrimSpace(entry))

		if email == "" || !IsValidEmail(email) || seen[email] {
			skipped++
			continue
		}

		seen[email] = true
		valid = append(valid, email)
	}

	return valid, skipped
}
