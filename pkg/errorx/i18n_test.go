package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestI18nError_WithHelpersDoNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := NewConflict()
	derived := base.WithArgs(map[string]any{"Field": "email"}).
		WithErrorType("smtp_timeout").
		WithDetails(map[string]string{"email": "taken"}).
		WithHTTPCode(http.StatusTeapot)

	assert.Empty(t, base.MessageArgs)
	assert.Empty(t, base.ErrorType)
	assert.Empty(t, base.Details)
	assert.Equal(t, http.StatusConflict, base.HTTPStatusCode())

	assert.Equal(t, "email", derived.MessageArgs["Field"])
	assert.Equal(t, "smtp_timeout", derived.ErrorType)
	assert.Equal(t, "taken", derived.Details["email"])
	assert.Equal(t, http.StatusTeapot, derived.HTTPStatusCode())
}

func TestI18nError_IsComparesCode(t *testing.T) {
	t.Parallel()

	errTaken := New(CodeUsernameTaken, "username_taken")
	errRegistered := New(CodeEmailAlreadyRegistered, "email_already_registered")

	wrapped := Wrap(errTaken.WithCause(errors.New("unique violation")), "repo.Save")
	wrapped = fmt.Errorf("handler: %w", wrapped)

	assert.ErrorIs(t, wrapped, errTaken)
	assert.NotErrorIs(t, wrapped, errRegistered)
	assert.True(t, IsConflict(wrapped))
	assert.True(t, IsCode(wrapped, CodeUsernameTaken))
	assert.False(t, IsNotFound(wrapped))
}

func TestI18nError_CauseIsReachable(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewInternalError().WithCause(cause, "op.Name")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []string{"op.Name"}, Ops(err.Unwrap()))
	assert.Contains(t, err.Error(), "boom")
}

func TestI18nError_Localize(t *testing.T) {
	t.Parallel()

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	_, err := bundle.ParseMessageFileBytes([]byte(`
[validation_failed_field]
other = "Field {{.Field}} is invalid"
`), "en.toml")
	require.NoError(t, err)
	loc := i18n.NewLocalizer(bundle, "en")

	t.Run("known key", func(t *testing.T) {
		assert.Equal(t, "Field email is invalid", NewValidationFieldFailed("email").Localize(loc))
	})
	t.Run("unknown key falls back to key", func(t *testing.T) {
		assert.Equal(t, "nope", New(CodeInvalid, "nope").Localize(loc))
	})
	t.Run("nil localizer", func(t *testing.T) {
		assert.Equal(t, "nope", New(CodeInvalid, "nope").Localize(nil))
	})
}

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want int
	}{
		{CodeMissingField, http.StatusBadRequest},
		{CodeWeakPassword, http.StatusBadRequest},
		{CodeEmailAlreadyRegistered, http.StatusConflict},
		{CodeDuplicatePositionApplication, http.StatusConflict},
		{CodeUnknownEmail, http.StatusNotFound},
		{CodeAccountNotVerified, http.StatusForbidden},
		{CodeDeliveryFailed, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.code))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap(nil, "op"))

	base := errors.New("base")
	err := Wrap(Wrap(base, "inner"), "outer")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, []string{"outer", "inner"}, Ops(err))
	assert.Equal(t, "outer <- inner", Trace(err))
	assert.Equal(t, "outer: inner: base", err.Error())

	same := Wrap(Wrap(base, "op"), "op")
	assert.Equal(t, []string{"op"}, Ops(same))
}
