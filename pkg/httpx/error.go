package httpx

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	somase "github.com/mubas-somase/voting-backend"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

type ErrorHandler struct {
	bundle *i18n.Bundle
	enloc  *i18n.Localizer
}

func NewErrorHandler() *ErrorHandler {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, path := range []string{"locales/en.toml", "locales/validation.en.toml"} {
		if _, err := bundle.LoadMessageFileFS(somase.Locales, path); err != nil {
			slog.Error("failed to load locale file", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	return &ErrorHandler{
		bundle: bundle,
		enloc:  i18n.NewLocalizer(bundle, language.English.String()),
	}
}

// Localizer resolves an Accept-Language header. Only English ships today, so
// every language falls back to it.
func (h *ErrorHandler) Localizer(acceptLanguage string) *i18n.Localizer {
	if acceptLanguage == "" {
		return h.enloc
	}
	return i18n.NewLocalizer(h.bundle, acceptLanguage, language.English.String())
}

// Message localizes a plain message key for the request's language, falling
// back to the key itself.
func (h *ErrorHandler) Message(r *http.Request, key string) string {
	msg, err := h.Localizer(r.Header.Get("Accept-Language")).Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil || msg == "" {
		return key
	}
	return msg
}

// HandleError records err on the span and writes the JSON error body:
// {"success": false, "code", "error", "error_type"?, "details"?}.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, span trace.Span, err error, desc string) {
	h.HandleErrorWithFields(w, r, span, err, desc, nil)
}

// HandleErrorWithFields is HandleError with extra top level fields in the body.
func (h *ErrorHandler) HandleErrorWithFields(w http.ResponseWriter, r *http.Request, span trace.Span, err error, desc string, fields Envelope) {
	if err == nil {
		return
	}
	otelx.RecordSpanError(span, err, desc)

	localizer := h.Localizer(r.Header.Get("Accept-Language"))

	var appErr *errorx.I18nError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatusCode()
		logError(r, status, desc, err)
		writeError(w, r, status, errorBody{
			Code:      appErr.Code,
			Message:   appErr.Localize(localizer),
			ErrorType: appErr.ErrorType,
			Details:   appErr.Details,
			Fields:    fields,
		})
		return
	}

	var valErrs validation.Errors
	if errors.As(err, &valErrs) {
		logError(r, http.StatusBadRequest, desc, err)
		writeError(w, r, http.StatusBadRequest, errorBody{
			Code:    errorx.CodeValidationFailed,
			Message: errorx.NewValidationFailed().Localize(localizer),
			Details: h.localizeErrors(localizer, valErrs),
			Fields:  fields,
		})
		return
	}

	var valErr validation.Error
	if errors.As(err, &valErr) {
		logError(r, http.StatusBadRequest, desc, err)
		writeError(w, r, http.StatusBadRequest, errorBody{
			Code:    errorx.CodeValidationFailed,
			Message: h.localizeValidation(localizer, valErr),
			Fields:  fields,
		})
		return
	}

	logError(r, http.StatusInternalServerError, desc, err)
	internalErr := errorx.NewInternalError()
	writeError(w, r, internalErr.HTTPStatusCode(), errorBody{
		Code:    internalErr.Code,
		Message: internalErr.Localize(localizer),
		Fields:  fields,
	})
}

func (h *ErrorHandler) localizeErrors(localizer *i18n.Localizer, errs validation.Errors) map[string]string {
	details := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			for k, v := range h.localizeErrors(localizer, nested) {
				details[field+"."+k] = v
			}
			continue
		}
		var verr validation.Error
		if errors.As(fieldErr, &verr) {
			details[field] = h.localizeValidation(localizer, verr)
			continue
		}
		details[field] = fieldErr.Error()
	}
	return details
}

func (h *ErrorHandler) localizeValidation(localizer *i18n.Localizer, verr validation.Error) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    verr.Code(),
		TemplateData: verr.Params(),
	})
	if err != nil || msg == "" {
		return verr.Error()
	}
	return msg
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	slog.WarnContext(r.Context(), "bad request", slog.String("message", message))
	writeError(w, r, http.StatusBadRequest, errorBody{
		Code:    errorx.CodeInvalid,
		Message: message,
	})
}

type errorBody struct {
	Code      errorx.Code
	Message   string
	ErrorType string
	Details   map[string]string
	Fields    Envelope
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	response := make(Envelope, len(body.Fields)+5)
	maps.Copy(response, body.Fields)
	maps.Copy(response, Envelope{
		"success": false,
		"code":    body.Code,
		"error":   body.Message,
	})
	if body.ErrorType != "" {
		response["error_type"] = body.ErrorType
	}
	if len(body.Details) > 0 {
		response["details"] = body.Details
	}

	if err := WriteJSON(w, status, response, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func logError(r *http.Request, status int, desc string, err error) {
	attrs := []any{
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("trace", errorx.Trace(err)),
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), desc, attrs...)
		return
	}
	slog.WarnContext(r.Context(), desc, attrs...)
}
