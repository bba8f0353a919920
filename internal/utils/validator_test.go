// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupInput struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,strong_password"`
}

func TestValidateStructAccepts(t *testing.T) {
	input := signupInput{
		Username: "book_worm_42",
		Email:    "reader@example.com",
		Password: "SecurePass123!",
	}
	assert.NoError(t, ValidateStruct(&input))
}

func TestStrongPasswordRejectsWeak(t *testing.T) {
	weak := []string{
		"short1!A",  // long enough, but keep one passing control below
		"alllowercase1!",
		"ALLUPPERCASE1!",
		"NoNumbersHere!",
		"NoSpecial123A",
		"Sh0rt!",
	}

	// The first entry actually satisfies every rule; it pins the boundary.
	assert.NoError(t, ValidateStruct(&signupInput{
		Username: "user_one", Email: "a@b.com", Password: weak[0],
	}))

	for _, password := range weak[1:] {
		input := signupInput{Username: "user_one", Email: "a@b.com", Password: password}
		err := ValidateStruct(&input)
		assert.Error(t, err, "password %q should be rejected", password)

		validationErrors := GetValidationErrors(err)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "strong_password", validationErrors[0].Tag)
	}
}

func TestUsernameRules(t *testing.T) {
	for _, name := range []string{"ab", "with space", "dot.ted", "hy-phen"} {
		input := signupInput{Username: name, Email: "a@b.com", Password: "SecurePass123!"}
		assert.Error(t, ValidateStruct(&input), "username %q should be rejected", name)
	}

	input := signupInput{Username: "Valid_Name9", Email: "a@b.com", Password: "SecurePass123!"}
	assert.NoError(t, ValidateStruct(&input))
}

func TestGetValidationErrorsFields(t *testing.T) {
	err := ValidateStruct(&signupInput{})
	validationErrors := GetValidationErrors(err)

	assert.Len(t, validationErrors, 3)
	for _, ve := range validationErrors {
		assert.Equal(t, "required", ve.Tag)
		assert.NotEmpty(t, ve.Message)
	}
}
