package mailhttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	mailapp "github.com/mubas-somase/voting-backend/internal/application/mail"
	"github.com/mubas-somase/voting-backend/internal/application/mail/mailcmd"
	"github.com/mubas-somase/voting-backend/pkg/env"
	"github.com/mubas-somase/voting-backend/pkg/httpx"
)

var (
	tracer = otel.Tracer("somase/internal/ports/http/mail")
	logger = otelslog.NewLogger("somase/internal/ports/http/mail")
)

type HTTP struct {
	tracer trace.Tracer
	logger *slog.Logger
	cmd    *mailapp.Command
}

type Args struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	App    *mailapp.App
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &HTTP{
		tracer: args.Tracer,
		logger: args.Logger,
		cmd:    &args.App.Command,
	}
}

// Route mounts the SMTP self test outside production only.
func (h *HTTP) Route(r chi.Router) {
	if !env.Current().IsDiagnosticAllowed() {
		return
	}

	r.Get("/email/test", h.SelfTest)
	r.Post("/email/test", h.SelfTest)
}

// SelfTest probes the SMTP server. POST also sends a test message to the
// configured from address.
func (h *HTTP) SelfTest(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EmailSelfTest")
	defer span.End()

	res := h.cmd.SelfTest.Handle(ctx, mailcmd.SelfTest{Send: r.Method == http.MethodPost})

	status := http.StatusOK
	if !res.SMTPConnection || !res.SMTPAuthentication || (r.Method == http.MethodPost && !res.EmailSend) {
		status = http.StatusServiceUnavailable
	}

	if err := httpx.WriteJSON(w, status, httpx.Envelope{
		"success":             status == http.StatusOK,
		"smtp_connection":     res.SMTPConnection,
		"smtp_authentication": res.SMTPAuthentication,
		"email_send":          res.EmailSend,
		"details":             res.Details,
		"config":              res.Config,
	}, nil); err != nil {
		h.logger.ErrorContext(ctx, "failed to write self test response", slog.String("error", err.Error()))
	}
}
