package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsEnumViolation(t *testing.T) {
	assert.True(t, IsEnumViolation(&pq.Error{Code: "22P02"}))
	assert.True(t, IsEnumViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "22P02"})))
	assert.True(t, IsEnumViolation(errors.New(`invalid input value for enum rsvp_status: "going"`)))
	assert.False(t, IsEnumViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsEnumViolation(errors.New("connection refused")))
	assert.False(t, IsEnumViolation(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "22P02"}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key value")))
	assert.False(t, IsUniqueViolation(nil))
}
