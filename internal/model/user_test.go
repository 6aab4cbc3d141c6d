package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_SetAndCheckPassword(t *testing.T) {
	user := &User{}

	err := user.SetPassword("secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUser_ResetTokenLifecycle(t *testing.T) {
	user := &User{}
	now := time.Now()

	raw, err := user.NewResetToken(now)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)

	assert.NotNil(t, user.ForgotPasswordToken)
	assert.NotNil(t, user.ForgotPasswordExpiry)
	assert.Equal(t, HashResetToken(raw), *user.ForgotPasswordToken)
	assert.Equal(t, now.Add(ResetTokenTTL), *user.ForgotPasswordExpiry)

	// The raw secret is never what gets stored.
	assert.NotEqual(t, raw, *user.ForgotPasswordToken)

	user.ClearResetToken()
	assert.Nil(t, user.ForgotPasswordToken)
	assert.Nil(t, user.ForgotPasswordExpiry)
}

func TestUser_ResetTokensAreUnique(t *testing.T) {
	a := &User{}
	b := &User{}
	now := time.Now()

	rawA, err := a.NewResetToken(now)
	assert.NoError(t, err)
	rawB, err := b.NewResetToken(now)
	assert.NoError(t, err)

	assert.NotEqual(t, rawA, rawB)
}

func TestUser_JSONNeverLeaksSecrets(t *testing.T) {
	user := &User{
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  RoleUser,
		Photo: Photo{ID: "users/abc", URL: "https://img.example.com/abc"},
	}
	assert.NoError(t, user.SetPassword("secret123"))
	_, err := user.NewResetToken(time.Now())
	assert.NoError(t, err)

	payload, err := json.Marshal(user)
	assert.NoError(t, err)

	body := string(payload)
	assert.NotContains(t, body, user.PasswordHash)
	assert.NotContains(t, body, *user.ForgotPasswordToken)
	assert.NotContains(t, body, "password")
	assert.Contains(t, body, `"id":"users/abc"`)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleManager))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
