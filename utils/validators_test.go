package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"full_name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestFieldErrors(t *testing.T) {
	validate, translator := NewValidator()

	err := validate.Struct(sample{Email: "nope"})
	require.Error(t, err)

	fields, ok := FieldErrors(err, translator)
	require.True(t, ok)
	assert.Equal(t, "this field is required", fields["full_name"])
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "Name")
}

func TestFieldErrors_notValidation(t *testing.T) {
	_, translator := NewValidator()
	_, ok := FieldErrors(assert.AnError, translator)
	assert.False(t, ok)
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Jane Doe", CleanString("  Jane Doe \n"))
	assert.Equal(t, "jane@test.io", CleanString(" Jane@Test.io ", true))
}
