// internal/models/common_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserTypeIsPrivileged(t *testing.T) {
	assert.False(t, UserTypeReader.IsPrivileged())
	assert.True(t, UserTypeLibrarian.IsPrivileged())
	assert.True(t, UserTypeAdmin.IsPrivileged())
	assert.False(t, UserType("visitor").IsPrivileged())
}

func TestCirculationTypeIsValid(t *testing.T) {
	assert.True(t, CirculationTypePaper.IsValid())
	assert.True(t, CirculationTypeElectronic.IsValid())
	assert.True(t, CirculationTypeAudio.IsValid())
	assert.False(t, CirculationType("braille").IsValid())
	assert.False(t, CirculationType("").IsValid())
}

func TestJSONBRoundTrip(t *testing.T) {
	data := JSONB{"avatar_url": "https://cdn.example.com/a.png", "bio": "reader"}

	value, err := data.Value()
	assert.NoError(t, err)

	var scanned JSONB
	assert.NoError(t, scanned.Scan(value))
	assert.Equal(t, "reader", scanned["bio"])
}

func TestUserPassword(t *testing.T) {
	user := &User{}
	assert.NoError(t, user.SetPassword("SecurePass123!"))
	assert.NotEqual(t, "SecurePass123!", user.PasswordHash)

	assert.NoError(t, user.CheckPassword("SecurePass123!"))
	assert.Error(t, user.CheckPassword("WrongPass123!"))
}
