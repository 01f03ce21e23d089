package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,min=2"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(signup{Username: "batman", Email: "bruce@example.com"}))

	short := "x"
	err := Struct(signup{Email: "not-an-email", Nickname: &short})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "username", verr.Fields[0].Field)
	assert.Equal(t, "required", verr.Fields[0].Tag)
	assert.Equal(t, "email", verr.Fields[1].Field)
	assert.Equal(t, "nickname", verr.Fields[2].Field)

	assert.Equal(t,
		"username is required; email must be a valid email address; nickname must be at least 2 characters",
		err.Error())
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
