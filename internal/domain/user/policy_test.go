package user_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
)

func TestRegistrationForm_MissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		form user.RegistrationForm
		want []string
	}{
		{
			name: "complete",
			form: user.RegistrationForm{Username: "u", Email: "e", Password: "p", Password2: "p"},
		},
		{
			name: "all missing",
			form: user.RegistrationForm{},
			want: []string{"username", "email", "password", "password2"},
		},
		{
			name: "confirmation missing",
			form: user.RegistrationForm{Username: "u", Email: "e", Password: "p"},
			want: []string{"password2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.form.MissingFields())
		})
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		wantKey  string
	}{
		{password: "Abc12345"},
		{password: "Ab1", wantKey: user.ErrPasswordTooShort.MessageKey},
		{password: "Abcdefgh", wantKey: user.ErrPasswordNoDigit.MessageKey},
		{password: "abc12345", wantKey: user.ErrPasswordNoUpper.MessageKey},
		{password: "ABC12345", wantKey: user.ErrPasswordNoLower.MessageKey},
		{password: "Abc12345" + strings.Repeat("x", 80), wantKey: user.ErrPasswordTooLong.MessageKey},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			t.Parallel()
			err := user.CheckPasswordPolicy(tt.password)
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, user.ErrPasswordTooShort, "all policy errors share one code")
			var i18nErr *errorx.I18nError
			require.ErrorAs(t, err, &i18nErr)
			assert.Equal(t, tt.wantKey, i18nErr.MessageKey)
		})
	}
}

func TestCheckEmailDomain(t *testing.T) {
	t.Parallel()

	assert.NoError(t, user.CheckEmailDomain("mse23-cbanda@mubas.ac.mw"))
	assert.ErrorIs(t, user.CheckEmailDomain("cbanda@mubas.ac.mw"), user.ErrInvalidEmailDomain)
	assert.ErrorIs(t, user.CheckEmailDomain("mse23-cbanda@gmail.com"), user.ErrInvalidEmailDomain)
}

func TestCheckPasswordsMatch(t *testing.T) {
	t.Parallel()

	assert.NoError(t, user.CheckPasswordsMatch("Abc12345", "Abc12345"))
	assert.ErrorIs(t, user.CheckPasswordsMatch("Abc12345", "Abc12346"), user.ErrPasswordMismatch)
}
