package mailcmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/application/mail/mailcmd")
	logger = otelslog.NewLogger("somase/internal/application/mail/mailcmd")
)

const TestSubject = "MUBAS SOMASE Voting: SMTP configuration test"

type Diagnoser interface {
	// Probe connects and authenticates without sending anything.
	Probe(ctx context.Context) error
	SendVerificationEmail(ctx context.Context, payload mail.Payload) error
	Settings() mail.Settings
}

type SelfTest struct {
	// Send also delivers a test message to the configured from address.
	Send bool
}

type SelfTestConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	UseTLS  bool   `json:"use_tls"`
	User    string `json:"user"`
	From    string `json:"from_email"`
	Timeout string `json:"timeout"`
}

type SelfTestResult struct {
	SMTPConnection     bool           `json:"smtp_connection"`
	SMTPAuthentication bool           `json:"smtp_authentication"`
	EmailSend          bool           `json:"email_send"`
	Details            []string       `json:"details"`
	Config             SelfTestConfig `json:"config"`
}

type SelfTestHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	diagnoser Diagnoser
}

type SelfTestHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Diagnoser Diagnoser
}

func NewSelfTestHandler(args SelfTestHandlerArgs) *SelfTestHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &SelfTestHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		diagnoser: args.Diagnoser,
	}
}

// Handle never fails: every problem is reported in the result.
func (h *SelfTestHandler) Handle(ctx context.Context, cmd SelfTest) *SelfTestResult {
	ctx, span := h.tracer.Start(ctx, "SelfTestHandler.Handle", trace.WithAttributes(
		attribute.Bool("selftest.send", cmd.Send),
	))
	defer span.End()

	settings := h.diagnoser.Settings()
	res := &SelfTestResult{
		Details: []string{},
		Config: SelfTestConfig{
			Host:    settings.Host,
			Port:    settings.Port,
			UseTLS:  settings.UseTLS,
			User:    logging.RedactEmail(settings.User),
			From:    settings.From,
			Timeout: settings.Timeout.String(),
		},
	}

	if err := h.diagnoser.Probe(ctx); err != nil {
		otelx.RecordSpanError(span, err, "smtp probe failed")
		kind := mail.KindOf(err)
		// An authentication failure means the server answered.
		res.SMTPConnection = kind == mail.KindAuthentication
		res.Details = append(res.Details, fmt.Sprintf("probe failed (%s): %v", kind, err))
		h.log(ctx, res)
		return res
	}
	res.SMTPConnection = true
	res.SMTPAuthentication = true
	res.Details = append(res.Details, "connected and authenticated")

	if !cmd.Send {
		h.log(ctx, res)
		return res
	}

	err := h.diagnoser.SendVerificationEmail(ctx, mail.Payload{
		To:       settings.From,
		Subject:  TestSubject,
		HTMLBody: "<p>This is a test message from the MUBAS SOMASE Voting backend.</p>",
		TextBody: "This is a test message from the MUBAS SOMASE Voting backend.",
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "test email failed")
		res.Details = append(res.Details, fmt.Sprintf("send failed (%s): %v", mail.KindOf(err), err))
		h.log(ctx, res)
		return res
	}
	res.EmailSend = true
	res.Details = append(res.Details, fmt.Sprintf("test email sent to %s at %s", settings.From, time.Now().UTC().Format(time.RFC3339)))

	h.log(ctx, res)
	return res
}

func (h *SelfTestHandler) log(ctx context.Context, res *SelfTestResult) {
	h.logger.InfoContext(ctx, "smtp self test finished",
		slog.Bool("smtp.connection", res.SMTPConnection),
		slog.Bool("smtp.authentication", res.SMTPAuthentication),
		slog.Bool("smtp.email_send", res.EmailSend),
	)
}
