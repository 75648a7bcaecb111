package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("b@x.com"))
	assert.True(t, IsValidEmail("first.last@sub.domain.org"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail("spaces in@x.com"))
	assert.False(t, IsValidEmail(""))
}

func TestFilterInviteEmails_DropsInvalidAndDuplicates(t *testing.T) {
	valid, skipped := FilterInviteEmails([]string{"b@x.com", "not-an-email", "b@x.com"})

	assert.Equal(t, []string{"b@x.com"}, valid)
	assert.Equal(t, 2, skipped)
}

func TestFilterInviteEmails_NormalizesCaseAndWhitespace(t *testing.T) {
	valid, skipped := FilterInviteEmails([]string{"  Alice@Example.COM ", "alice@example.com", "bob@example.com"})

	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, valid)
	assert.Equal(t, 1, skipped)
}

func TestFilterInviteEmails_PreservesFirstAppearanceOrder(t *testing.T) {
	valid, skipped := FilterInviteEmails([]string{"z@x.com", "a@x.com", "z@x.com", "m@x.com"})

	assert.Equal(t, []string{"z@x.com", "a@x.com", "m@x.com"}, valid)
	assert.Equal(t, 1, skipped)
}

func TestFilterInviteEmails_EmptyBatch(t *testing.T) {
	valid, skipped := FilterInviteEmails(nil)

	assert.Empty(t, valid)
	assert.Zero(t, skipped)
}

func TestFilterInviteEmails_BlankEntriesAreSkipped(t *testing.T) {
	valid, skipped := FilterInviteEmails([]string{"", "   ", "ok@x.com"})

	assert.Equal(t, []string{"ok@x.com"}, valid)
	assert.Equal(t, 2, skipped)
}
