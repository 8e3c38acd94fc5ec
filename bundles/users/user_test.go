package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateUserInput_IsEmpty(t *testing.T) {
	var uu UpdateUserInput
	assert.True(t, uu.IsEmpty())

	name := "New Name"
	uu.Name = &name
	assert.False(t, uu.IsEmpty())

	uu = UpdateUserInput{}
	email := "user@example.org"
	uu.Email = &email
	assert.False(t, uu.IsEmpty())
}
