package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("jane"))
	assert.NoError(t, ValidateUsername("jane.doe-42_x"))
	assert.NoError(t, ValidateUsername("42jane"))

	assert.Error(t, ValidateUsername("jd"))
	assert.Error(t, ValidateUsername("a-very-long-username-well-over-thirty-characters"))
	assert.Error(t, ValidateUsername("jane doe"))
	assert.Error(t, ValidateUsername(".jane"))
	assert.Error(t, ValidateUsername("-jane"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("jane@example.com"))
	assert.NoError(t, ValidateEmail(" jane@example.com "))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("jane"))
	assert.Error(t, ValidateEmail("jane@example"))
	assert.Error(t, ValidateEmail("jane doe@example.com"))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "jane", NormalizeUsername("  Jane "))
}
