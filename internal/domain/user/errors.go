package user

import (
	"strings"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
	"github.com/mubas-somase/voting-backend/pkg/validationx"
)

var (
	ErrMissingID       = errorx.NewValidationFieldFailed("id")
	ErrMissingPassHash = errorx.NewValidationFieldFailed("password_hash")

	ErrMissingFields          = errorx.New(errorx.CodeMissingField, i18nx.KeyMissingFields)
	ErrInvalidEmailDomain     = errorx.New(errorx.CodeInvalidEmailDomain, i18nx.KeyInvalidEmailDomain)
	ErrEmailAlreadyRegistered = errorx.New(errorx.CodeEmailAlreadyRegistered, i18nx.KeyEmailAlreadyRegistered)
	ErrUsernameTaken          = errorx.New(errorx.CodeUsernameTaken, i18nx.KeyUsernameTaken)
	// ErrUsernameTakenUnverified is returned when the email and username both
	// belong to the same unverified account.
	ErrUsernameTakenUnverified = errorx.New(errorx.CodeUsernameTaken, i18nx.KeyUsernameTakenUnverified)

	ErrPasswordTooShort = errorx.New(errorx.CodeWeakPassword, i18nx.KeyPasswordTooShort).
				WithArgs(map[string]any{i18nx.ArgMinLen: validationx.MinPasswordLen})
	ErrPasswordTooLong = errorx.New(errorx.CodeWeakPassword, i18nx.KeyPasswordTooLong).
				WithArgs(map[string]any{i18nx.ArgMaxLen: validationx.MaxPasswordBytes})
	ErrPasswordNoDigit  = errorx.New(errorx.CodeWeakPassword, i18nx.KeyPasswordNoDigit)
	ErrPasswordNoUpper  = errorx.New(errorx.CodeWeakPassword, i18nx.KeyPasswordNoUpper)
	ErrPasswordNoLower  = errorx.New(errorx.CodeWeakPassword, i18nx.KeyPasswordNoLower)
	ErrPasswordMismatch = errorx.New(errorx.CodePasswordMismatch, i18nx.KeyPasswordMismatch)

	ErrInvalidAttachment     = errorx.New(errorx.CodeInvalidAttachment, i18nx.KeyInvalidAttachment)
	ErrInvalidActivationLink = errorx.New(errorx.CodeInvalidActivationLink, i18nx.KeyInvalidActivationLink)
	ErrAccountNotFound       = errorx.NewNotFound()
)

// NewMissingFieldsError names every absent field, in the order given.
func NewMissingFieldsError(fields []string) *errorx.I18nError {
	details := make(map[string]string, len(fields))
	for _, f := range fields {
		details[f] = "This field is required."
	}
	return ErrMissingFields.
		WithArgs(map[string]any{i18nx.ArgFields: strings.Join(fields, ", ")}).
		WithDetails(details)
}
