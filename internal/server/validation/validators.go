// Package validation contains the stateless format checks applied to
// caller-supplied email addresses and passwords.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const (
	maxEmailLength    = 254
	minPasswordLength = 8
)

var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile("[!@#$%^&*()_+\\-=\\[\\]{};:'\",.<>?/\\\\|`~]")
)

// NormalizeEmail returns the canonical form of an email address: trimmed and
// lower-cased. All lookups and storage use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the format of an email address. The returned error
// wraps common.ErrValidation and is safe to show to the caller.
func ValidateEmail(email string) error {
	err := ozzo.Validate(NormalizeEmail(email),
		ozzo.Required.Error("email must not be empty"),
		ozzo.Length(0, maxEmailLength).Error(fmt.Sprintf("email is too long (max %d characters)", maxEmailLength)),
		is.Email.Error("invalid email format"),
	)
	if err != nil {
		return fmt.Errorf("%w: email: %v", common.ErrValidation, err)
	}
	return nil
}

// ValidatePassword checks password strength: minimum length plus at least one
// uppercase letter, lowercase letter, digit, and special character.
func ValidatePassword(pw string) error {
	err := ozzo.Validate(pw,
		ozzo.Required.Error("password must not be empty"),
		ozzo.Length(minPasswordLength, 0).Error(fmt.Sprintf("password must be at least %d characters long", minPasswordLength)),
		ozzo.Match(upperPattern).Error("password must contain at least one uppercase letter"),
		ozzo.Match(lowerPattern).Error("password must contain at least one lowercase letter"),
		ozzo.Match(digitPattern).Error("password must contain at least one digit"),
		ozzo.Match(specialPattern).Error("password must contain at least one special character"),
	)
	if err != nil {
		return fmt.Errorf("%w: password: %v", common.ErrValidation, err)
	}
	return nil
}
