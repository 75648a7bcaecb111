package utils

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// IsEnumViolation reports whether err is Postgres rejecting a value outside an
// enum domain (invalid_text_representation). Matched so the RSVP path can show
// a status-specific message instead of the generic failure.
func IsEnumViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "22P02"
	}
	return err != nil && strings.Contains(err.Error(), "invalid input value for enum")
}

// IsUniqueViolation reports whether err is a unique constraint conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
