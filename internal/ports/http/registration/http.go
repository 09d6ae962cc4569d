package registrationhttp

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	registrationapp "github.com/mubas-somase/voting-backend/internal/application/registration"
	"github.com/mubas-somase/voting-backend/internal/application/registration/registrationcmd"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/ports/http/middlewares"
	"github.com/mubas-somase/voting-backend/pkg/ctxs"
	"github.com/mubas-somase/voting-backend/pkg/httpx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
	"github.com/mubas-somase/voting-backend/pkg/sanitizex"
)

var (
	tracer = otel.Tracer("somase/internal/ports/http/registration")
	logger = otelslog.NewLogger("somase/internal/ports/http/registration")
)

const (
	ProfilePhotoField = "profile_photo"
	registerScope     = "register"
)

type HTTP struct {
	tracer      trace.Tracer
	logger      *slog.Logger
	cmd         *registrationapp.Command
	errhandler  *httpx.ErrorHandler
	middleware  *middlewares.Middleware
	frontendURL string
	limit       int
	window      time.Duration
}

type Args struct {
	Tracer      trace.Tracer
	Logger      *slog.Logger
	App         *registrationapp.App
	Errhandler  *httpx.ErrorHandler
	Middleware  *middlewares.Middleware
	FrontendURL string
	// RegisterLimit is the number of registrations one client address may
	// attempt per RegisterWindow. Zero disables the limit.
	RegisterLimit  int
	RegisterWindow time.Duration
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
		tracer:      args.Tracer,
		logger:      args.Logger,
		cmd:         &args.App.Command,
		errhandler:  args.Errhandler,
		middleware:  args.Middleware,
		frontendURL: strings.TrimRight(args.FrontendURL, "/"),
		limit:       args.RegisterLimit,
		window:      args.RegisterWindow,
	}
}

func (h *HTTP) Route(r chi.Router) {
	r.With(h.middleware.RateLimit(registerScope, h.limit, h.window)).Post("/register", h.Register)
	r.Get("/activate/{uid}/{token}", h.Activate)
	r.With(h.middleware.Auth).Delete("/account", h.DeleteAccount)
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (r *RegisterRequest) Sanitized() {
	r.Username = sanitizex.CleanSingleLine(r.Username)
	r.Email = sanitizex.CleanSingleLine(r.Email)
}

func (r *RegisterRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{
		"request.email":    logging.RedactEmail(r.Email),
		"request.username": logging.RedactUsername(r.Username),
	})
}

// Register accepts either a JSON body or a multipart form carrying an
// optional profile_photo file.
func (h *HTTP) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Register")
	defer span.End()

	var (
		req    RegisterRequest
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

		req = RegisterRequest{
			Username:  r.PostFormValue("username"),
			Email:     r.PostFormValue("email"),
			Password:  r.PostFormValue("password"),
			Password2: r.PostFormValue("password2"),
		}

		var err error
		upload, err = httpx.FormFile(r, ProfilePhotoField)
		if err != nil {
			h.errhandler.HandleError(w, r, span, err, "failed to read profile photo")
			return
		}
		defer upload.Close()
	} else if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	req.SetSpanAttrs(span)

	cmd := registrationcmd.Register{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
	}
	if upload != nil {
		cmd.Photo = &registrationcmd.Photo{
			File:        upload.File,
			Size:        upload.Size,
			ContentType: upload.ContentType,
			Filename:    upload.Filename,
		}
	}

	res, err := h.cmd.Register.Handle(ctx, cmd)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to register account")
		return
	}

	httpx.Success(w, r, http.StatusCreated, httpx.Envelope{
		"message":    h.errhandler.Message(r, i18nx.KeyRegistrationSucceeded),
		"user_id":    res.AccountID.String(),
		"email_sent": res.EmailSent,
	})
}

// Activate consumes the link from the verification email. Both outcomes
// tell the frontend where to go next.
func (h *HTTP) Activate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Activate")
	defer span.End()

	cmd := registrationcmd.Activate{
		UID:   sanitizex.CleanSingleLine(chi.URLParam(r, "uid")),
		Token: sanitizex.CleanSingleLine(chi.URLParam(r, "token")),
	}

	res, err := h.cmd.Activate.Handle(ctx, cmd)
	if err != nil {
		h.errhandler.HandleErrorWithFields(w, r, span, err, "failed to activate account", httpx.Envelope{
			"redirect_url": h.frontendURL + "/register",
		})
		return
	}

	key := i18nx.KeyActivationSucceeded
	if res.AlreadyActive {
		key = i18nx.KeyAlreadyActivated
	}
	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"message":      h.errhandler.Message(r, key),
		"redirect_url": h.frontendURL + "/login",
	})
}

func (h *HTTP) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAccount")
	defer span.End()

	session, err := ctxs.SessionFromCtx(ctx)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to get session from context")
		return
	}
	session.SetSpanAttrs(span)

	if err := h.cmd.DeleteAccount.Handle(ctx, registrationcmd.DeleteAccount{AccountID: user.ID(session.AccountID)}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to delete account")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"message": h.errhandler.Message(r, i18nx.KeyAccountDeleted),
	})
}
