package candidatehttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	candidateapp "github.com/mubas-somase/voting-backend/internal/application/candidate"
	"github.com/mubas-somase/voting-backend/internal/application/candidate/candidatecmd"
	"github.com/mubas-somase/voting-backend/internal/application/candidate/candidatequery"
	"github.com/mubas-somase/voting-backend/internal/ports/http/middlewares"
	"github.com/mubas-somase/voting-backend/pkg/httpx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
	"github.com/mubas-somase/voting-backend/pkg/sanitizex"
	"github.com/mubas-somase/voting-backend/pkg/validationx"
)

var (
	tracer = otel.Tracer("somase/internal/ports/http/candidate")
	logger = otelslog.NewLogger("somase/internal/ports/http/candidate")
)

const (
	PhotoField = "profile_photo"
	applyScope = "apply"
)

type HTTP struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	app        *candidateapp.App
	errhandler *httpx.ErrorHandler
	middleware *middlewares.Middleware
	limit      int
	window     time.Duration
}

type Args struct {
	Tracer      trace.Tracer
	Logger      *slog.Logger
	App         *candidateapp.App
	Errhandler  *httpx.ErrorHandler
	Middleware  *middlewares.Middleware
	ApplyLimit  int
	ApplyWindow time.Duration
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Errhandler == nil {
		args.Errhandler = httpx.NewErrorHandler()
	}

	return &HTTP{
		tracer:     args.Tracer,
		logger:     args.Logger,
		app:        args.App,
		errhandler: args.Errhandler,
		middleware: args.Middleware,
		limit:      args.ApplyLimit,
		window:     args.ApplyWindow,
	}
}

func (h *HTTP) Route(r chi.Router) {
	apply := r.With(h.middleware.RateLimit(applyScope, h.limit, h.window))
	apply.Post("/candidates/apply", h.Apply)
	apply.Post("/candidate/register", h.Apply)

	r.Get("/candidates/check-application", h.CheckApplication)
	r.Get("/api/candidates/check-application", h.CheckApplication)
}

type ApplyRequest struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Position  string `json:"position"`
	Phone     string `json:"phone"`
	Slogan    string `json:"slogan"`
	Manifesto string `json:"manifesto"`
}

func (r *ApplyRequest) Sanitized() {
	r.Email = sanitizex.CleanSingleLine(r.Email)
	r.FullName = sanitizex.CleanSingleLine(r.FullName)
	r.Position = sanitizex.CleanSingleLine(r.Position)
	r.Phone = sanitizex.CleanSingleLine(r.Phone)
	r.Slogan = sanitizex.CleanSingleLine(r.Slogan)
	r.Manifesto = sanitizex.CleanMultiline(r.Manifesto)
}

func (r *ApplyRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{
		"request.email":    logging.RedactEmail(r.Email),
		"request.position": r.Position,
	})
}

// Validate only checks the email here. The application fields are checked
// by the handler once the account is known to be eligible.
func (r *ApplyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, validation.RuneLength(1, validationx.MaxEmailLen)),
	)
}

func (h *HTTP) Apply(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ApplyCandidate")
	defer span.End()

	var (
		req    ApplyRequest
		upload *httpx.Upload
	)
	if httpx.IsMultipart(r) {
		if err := httpx.ParseMultipart(w, r); err != nil {
			h.errhandler.HandleError(w, r, span, err, "failed to parse multipart form")
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		req = ApplyRequest{
			Email:     r.PostFormValue("email"),
			FullName:  r.PostFormValue("full_name"),
			Position:  r.PostFormValue("position"),
			Phone:     r.PostFormValue("phone"),
			Slogan:    r.PostFormValue("slogan"),
			Manifesto: r.PostFormValue("manifesto"),
		}

		var err error
		upload, err = httpx.FormFile(r, PhotoField)
		if err != nil {
			h.errhandler.HandleError(w, r, span, err, "failed to read candidate photo")
			return
		}
		defer upload.Close()
	} else if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	cmd := candidatecmd.Apply{
		Email:     req.Email,
		FullName:  req.FullName,
		Position:  req.Position,
		Phone:     req.Phone,
		Slogan:    req.Slogan,
		Manifesto: req.Manifesto,
	}
	if upload != nil {
		cmd.Photo = &candidatecmd.Photo{
			File:        upload.File,
			Size:        upload.Size,
			ContentType: upload.ContentType,
			Filename:    upload.Filename,
		}
	}

	res, err := h.app.Command.Apply.Handle(ctx, cmd)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to submit candidate application")
		return
	}

	httpx.Success(w, r, http.StatusCreated, httpx.Envelope{
		"message": h.errhandler.Message(r, i18nx.KeyApplicationSubmitted),
		"application": httpx.Envelope{
			"id":               res.ID.String(),
			"full_name":        res.FullName,
			"position":         res.Position.String(),
			"position_display": res.PositionDisplay,
			"status":           res.Status.String(),
		},
	})
}

func (h *HTTP) CheckApplication(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckApplication")
	defer span.End()

	email := sanitizex.CleanSingleLine(r.URL.Query().Get("email"))
	otelx.SetSpanAttrs(span, map[string]any{"request.email": logging.RedactEmail(email)})

	err := validation.Validate(email, validation.Required, validation.RuneLength(1, validationx.MaxEmailLen))
	if err != nil {
		h.errhandler.HandleError(w, r, span, validation.Errors{"email": err}, "failed to validate email")
		return
	}

	res, err := h.app.Query.CheckApplication.Handle(ctx, candidatequery.CheckApplication{Email: email})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to check application")
		return
	}

	body := httpx.Envelope{"has_applied": res.HasApplied}
	if res.HasApplied {
		body["id"] = res.ID
		body["full_name"] = res.FullName
		body["position"] = res.Position
		body["position_display"] = res.PositionDisplay
		body["status"] = res.Status
		if res.PhotoURL != "" {
			body["photo_url"] = res.PhotoURL
		}
	}
	httpx.Success(w, r, http.StatusOK, body)
}
