package validationx

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

const (
	MinPasswordLen = 8
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
	MaxUsernameLen   = 150
	MaxEmailLen      = 254
)

var (
	// MubasEmailRegex accepts MUBAS SOMASE student addresses: mseYY-<anything>@mubas.ac.mw.
	MubasEmailRegex = regexp.MustCompile(`^mse\d{2}-.+@mubas\.ac\.mw$`)
	PhoneRegex      = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
	usernameRegex   = regexp.MustCompile(`^[\p{L}\p{N}_.@+\-]+$`)
)

var (
	ErrNotMubasEmail   = validation.NewError(i18nx.ValidationIsMubasEmail, i18nx.MsgValidationIsMubasEmail)
	ErrInvalidPhone    = validation.NewError(i18nx.ValidationIsPhone, i18nx.MsgValidationIsPhone)
	ErrInvalidUsername = validation.NewError(i18nx.ValidationIsUsername, i18nx.MsgValidationIsUsername)
)

var (
	IsMubasEmail = validation.Match(MubasEmailRegex).ErrorObject(ErrNotMubasEmail)
	IsPhone      = validation.Match(PhoneRegex).ErrorObject(ErrInvalidPhone)
	IsUsername   = validation.Match(usernameRegex).ErrorObject(ErrInvalidUsername)
)

var (
	UsernameRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(1, MaxUsernameLen),
		IsUsername,
	}

	EmailRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(1, MaxEmailLen),
		IsMubasEmail,
	}
)

// PasswordViolation names the first password policy rule a password breaks.
type PasswordViolation int

const (
	PasswordOK PasswordViolation = iota
	PasswordTooShort
	PasswordTooLong
	PasswordNoDigit
	PasswordNoUpper
	PasswordNoLower
)

// CheckPassword applies the policy rules in order: length, digit, uppercase, lowercase.
// The minimum counts runes, the maximum counts bytes.
func CheckPassword(password string) PasswordViolation {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return PasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return PasswordTooLong
	}

	var hasDigit, hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	switch {
	case !hasDigit:
		return PasswordNoDigit
	case !hasUpper:
		return PasswordNoUpper
	case !hasLower:
		return PasswordNoLower
	default:
		return PasswordOK
	}
}

// MaxWords fails when a string has more than n whitespace separated words.
func MaxWords(n int) validation.Rule {
	err := validation.NewError(i18nx.ValidationTooManyWords, i18nx.MsgValidationTooManyWords).
		SetParams(map[string]any{i18nx.ArgThreshold: n})
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if len(strings.Fields(s)) > n {
			return err
		}
		return nil
	})
}

func AssertValidationErrors(t *testing.T, err error, expected validation.Errors) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", expected)
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected error to be of type validation.Errors, got %T: %v", err, err)
	}

	if len(verrs) != len(expected) {
		t.Fatalf("expected %d validation errors, got %d: %v", len(expected), len(verrs), verrs)
	}

	for field, expectedErr := range expected {
		actualErr, found := verrs[field]
		if !found {
			t.Errorf("field %s: expected error %v, got none", field, expectedErr)
			continue
		}
		AssertValidationError(t, actualErr, expectedErr)
	}
}

func AssertValidationError(t *testing.T, err error, expected error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", expected)
	}

	var verr validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected error to be of type validation.Error, got %T: %v", err, err)
	}
	var expectedVerr validation.Error
	if !errors.As(expected, &expectedVerr) {
		t.Fatalf("expected error to be of type validation.Error, got %T: %v", expected, expected)
	}

	if verr.Code() != expectedVerr.Code() {
		t.Errorf("expected validation error code %q, got %q", expectedVerr.Code(), verr.Code())
	}
}
