package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	candidateapp "github.com/mubas-somase/voting-backend/internal/application/candidate"
	mailapp "github.com/mubas-somase/voting-backend/internal/application/mail"
	registrationapp "github.com/mubas-somase/voting-backend/internal/application/registration"
	candidatehttp "github.com/mubas-somase/voting-backend/internal/ports/http/candidate"
	mailhttp "github.com/mubas-somase/voting-backend/internal/ports/http/mail"
	"github.com/mubas-somase/voting-backend/internal/ports/http/middlewares"
	registrationhttp "github.com/mubas-somase/voting-backend/internal/ports/http/registration"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/httpx"
)

type Port struct {
	reg        *registrationhttp.HTTP
	candidate  *candidatehttp.HTTP
	mail       *mailhttp.HTTP
	errhandler *httpx.ErrorHandler
	origins    []string
}

type Args struct {
	RegistrationApp *registrationapp.App
	CandidateApp    *candidateapp.App
	MailApp         *mailapp.App
	Middleware      *middlewares.Middleware
	Errhandler      *httpx.ErrorHandler
	// AllowedOrigins lists the frontend origins. The first one is sent when
	// the request carries no listed Origin.
	AllowedOrigins []string
	FrontendURL    string
	RegisterLimit  int
	ApplyLimit     int
	RateWindow     time.Duration
}

func NewPort(args Args) *Port {
	if args.Errhandler == nil {
		args.Errhandler = httpx.NewErrorHandler()
	}
	origins := args.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{args.FrontendURL}
	}

	return &Port{
		reg: registrationhttp.NewHTTP(registrationhttp.Args{
			App:            args.RegistrationApp,
			Errhandler:     args.Errhandler,
			Middleware:     args.Middleware,
			FrontendURL:    args.FrontendURL,
			RegisterLimit:  args.RegisterLimit,
			RegisterWindow: args.RateWindow,
		}),
		candidate: candidatehttp.NewHTTP(candidatehttp.Args{
			App:         args.CandidateApp,
			Errhandler:  args.Errhandler,
			Middleware:  args.Middleware,
			ApplyLimit:  args.ApplyLimit,
			ApplyWindow: args.RateWindow,
		}),
		mail: mailhttp.NewHTTP(mailhttp.Args{
			App: args.MailApp,
		}),
		errhandler: args.Errhandler,
		origins:    origins,
	}
}

// Route mounts every endpoint on r. CORS wraps the whole router, so 404 and
// 405 responses carry the headers too.
func (p *Port) Route(r chi.Router) chi.Router {
	if r == nil {
		r = chi.NewRouter()
	}

	r.Use(
		middlewares.CORS(p.origins...),
		middleware.RequestID,
		middleware.Recoverer,
		middlewares.Logger,
		middlewares.OTel,
		middleware.StripSlashes,
	)
	r.NotFound(p.notFound)
	r.MethodNotAllowed(p.methodNotAllowed)

	p.reg.Route(r)
	p.candidate.Route(r)
	p.mail.Route(r)

	return r
}

func (p *Port) notFound(w http.ResponseWriter, r *http.Request) {
	p.errhandler.HandleError(w, r, trace.SpanFromContext(r.Context()), errorx.NewNotFound(), "route not found")
}

func (p *Port) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	p.errhandler.HandleError(w, r, trace.SpanFromContext(r.Context()), errorx.NewMethodNotAllowed(), "method not allowed")
}
