package validationx

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		want     PasswordViolation
	}{
		{name: "valid", password: "Abc12345", want: PasswordOK},
		{name: "valid with symbols", password: "Str0ng!Pass", want: PasswordOK},
		{name: "too short", password: "Ab1", want: PasswordTooShort},
		{name: "seven runes", password: "Abcdef1", want: PasswordTooShort},
		{name: "no digit", password: "Abcdefgh", want: PasswordNoDigit},
		{name: "no uppercase", password: "abc12345", want: PasswordNoUpper},
		{name: "no lowercase", password: "ABC12345", want: PasswordNoLower},
		{name: "length checked before classes", password: "abc", want: PasswordTooShort},
		{name: "digit checked before uppercase", password: "abcdefgh", want: PasswordNoDigit},
		{name: "unicode letters count", password: "Ñandú123", want: PasswordOK},
		{name: "bcrypt limit", password: "Abc12345" + strings.Repeat("x", 64), want: PasswordOK},
		{name: "over bcrypt limit", password: "Abc12345" + strings.Repeat("x", 65), want: PasswordTooLong},
		{name: "limit counts bytes", password: "Abc12345" + strings.Repeat("ñ", 33), want: PasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CheckPassword(tt.password))
		})
	}
}

func TestIsMubasEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{email: "mse23-jbanda@mubas.ac.mw", valid: true},
		{email: "mse01-a.b.c@mubas.ac.mw", valid: true},
		{email: "mse2-jbanda@mubas.ac.mw", valid: false},
		{email: "mse23jbanda@mubas.ac.mw", valid: false},
		{email: "mse23-@mubas.ac.mw", valid: false},
		{email: "bit23-jbanda@mubas.ac.mw", valid: false},
		{email: "mse23-jbanda@gmail.com", valid: false},
		{email: "mse23-jbanda@mubas.ac.mw.evil.com", valid: false},
		{email: "xmse23-jbanda@mubas.ac.mw", valid: false},
		{email: "MSE23-jbanda@mubas.ac.mw", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			err := validation.Validate(tt.email, IsMubasEmail)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			AssertValidationError(t, err, ErrNotMubasEmail)
		})
	}
}

func TestIsPhone(t *testing.T) {
	t.Parallel()

	valid := []string{"+265 999 123 456", "0999123456", "(0888) 123-456"}
	invalid := []string{"12345", "+265abc12345", "phone number"}

	for _, p := range valid {
		assert.NoError(t, validation.Validate(p, IsPhone), p)
	}
	for _, p := range invalid {
		AssertValidationError(t, validation.Validate(p, IsPhone), ErrInvalidPhone)
	}
}

func TestMaxWords(t *testing.T) {
	t.Parallel()

	rule := MaxWords(3)
	assert.NoError(t, validation.Validate("", rule))
	assert.NoError(t, validation.Validate("one two three", rule))
	assert.NoError(t, validation.Validate("  one\ntwo\tthree  ", rule))
	assert.Error(t, validation.Validate("one two three four", rule))

	manifesto := strings.Repeat("word ", 201)
	assert.Error(t, validation.Validate(manifesto, MaxWords(200)))
	assert.NoError(t, validation.Validate(strings.Repeat("word ", 200), MaxWords(200)))
}

func TestRuleSets(t *testing.T) {
	t.Parallel()

	type form struct {
		Username string
		Email    string
	}

	f := form{Username: "john doe", Email: "john@gmail.com"}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Username, UsernameRules...),
		validation.Field(&f.Email, EmailRules...),
	)

	AssertValidationErrors(t, err, validation.Errors{
		"Username": ErrInvalidUsername,
		"Email":    ErrNotMubasEmail,
	})

	ok := form{Username: "john_banda", Email: "mse23-jbanda@mubas.ac.mw"}
	assert.NoError(t, validation.ValidateStruct(&ok,
		validation.Field(&ok.Username, UsernameRules...),
		validation.Field(&ok.Email, EmailRules...),
	))
}
