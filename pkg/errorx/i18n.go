package errorx

import (
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

// I18nError is a client facing error. Its methods never mutate the receiver,
// so package level values can be shared and specialised with the With* helpers.
type I18nError struct {
	cause       error
	MessageKey  string
	MessageArgs map[string]any
	HTTPCode    int
	Code        Code
	// ErrorType is an optional machine readable subtype, e.g. the kind of a mail delivery failure.
	ErrorType string
	Details   map[string]string
}

func (e I18nError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.MessageKey)
	}

	return fmt.Sprintf("[%s] %s: %s", e.Code, e.MessageKey, e.cause)
}

func (e I18nError) Unwrap() error {
	return e.cause
}

func (e *I18nError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	var t *I18nError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Localize renders the message for the localizer's language. Unknown keys fall
// back to the key itself instead of panicking.
func (e I18nError) Localize(localizer *i18n.Localizer) string {
	if localizer == nil {
		return e.MessageKey
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    e.MessageKey,
		TemplateData: e.MessageArgs,
	})
	if err != nil || msg == "" {
		return e.MessageKey
	}
	return msg
}

func (e I18nError) HTTPStatusCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}

	return HTTPStatusCode(e.Code)
}

func (e I18nError) WithHTTPCode(code int) *I18nError {
	e.HTTPCode = code
	return &e
}

func (e I18nError) WithKey(key string) *I18nError {
	e.MessageKey = key
	return &e
}

func (e I18nError) WithArgs(args map[string]any) *I18nError {
	merged := make(map[string]any, len(e.MessageArgs)+len(args))
	maps.Copy(merged, e.MessageArgs)
	maps.Copy(merged, args)
	e.MessageArgs = merged
	return &e
}

func (e I18nError) WithErrorType(errorType string) *I18nError {
	e.ErrorType = errorType
	return &e
}

func (e I18nError) WithDetails(details map[string]string) *I18nError {
	merged := make(map[string]string, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	e.Details = merged
	return &e
}

// WithCause keeps the cause for logs and errors.Is/As; it is never shown to clients.
func (e I18nError) WithCause(cause error, op ...string) *I18nError {
	if len(op) > 0 {
		cause = Wrap(cause, op[0])
	}
	e.cause = cause
	return &e
}

func HTTPStatusCode(code Code) int {
	switch code {
	case CodeInvalid, CodeValidationFailed, CodeMalformedJSON,
		CodeMissingField, CodeInvalidEmailDomain, CodeWeakPassword,
		CodePasswordMismatch, CodeInvalidAttachment, CodeInvalidActivationLink:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbidden, CodeAccountNotVerified:
		return http.StatusForbidden
	case CodeNotFound, CodeUnknownEmail:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeConflict, CodeEmailAlreadyRegistered, CodeUsernameTaken,
		CodeDuplicateApplication, CodeDuplicatePositionApplication:
		return http.StatusConflict
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func IsCode(err error, code Code) bool {
	var i18nErr *I18nError
	if errors.As(err, &i18nErr) {
		return i18nErr.Code == code
	}

	return false
}

func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

func IsConflict(err error) bool {
	var i18nErr *I18nError
	if errors.As(err, &i18nErr) {
		return i18nErr.HTTPStatusCode() == http.StatusConflict
	}
	return false
}

func New(code Code, messageKey string) *I18nError {
	return &I18nError{
		MessageKey: messageKey,
		Code:       code,
		HTTPCode:   HTTPStatusCode(code),
	}
}

// Client Errors (4xx)
func NewInvalidRequest() *I18nError {
	return New(CodeInvalid, i18nx.KeyInvalid)
}

func NewValidationFailed() *I18nError {
	return New(CodeValidationFailed, i18nx.KeyValidationFailed)
}

func NewValidationFieldFailed(field string) *I18nError {
	return New(CodeValidationFailed, i18nx.KeyValidationFailedField).
		WithArgs(map[string]any{i18nx.ArgField: field})
}

func NewMalformedJSON() *I18nError {
	return New(CodeMalformedJSON, i18nx.KeyMalformedJSON)
}

func NewUnauthorized() *I18nError {
	return New(CodeUnauthorized, i18nx.KeyUnauthorized)
}

func NewTokenExpired() *I18nError {
	return New(CodeTokenExpired, i18nx.KeyTokenExpired)
}

func NewForbidden() *I18nError {
	return New(CodeForbidden, i18nx.KeyForbidden)
}

func NewNotFound() *I18nError {
	return New(CodeNotFound, i18nx.KeyNotFound)
}

func NewMethodNotAllowed() *I18nError {
	return New(CodeMethodNotAllowed, i18nx.KeyMethodNotAllowed)
}

func NewConflict() *I18nError {
	return New(CodeConflict, i18nx.KeyConflict)
}

func NewRateLimitExceededWithRetry(retryAfter int) *I18nError {
	return New(CodeRateLimitExceeded, i18nx.KeyRateLimitExceededWithTime).
		WithArgs(map[string]any{i18nx.ArgRetryAfter: retryAfter})
}

// Server Errors (5xx)
func NewInternalError() *I18nError {
	return New(CodeInternal, i18nx.KeyInternalError)
}

func NewServiceUnavailable() *I18nError {
	return New(CodeServiceUnavailable, i18nx.KeyServiceUnavailable)
}
