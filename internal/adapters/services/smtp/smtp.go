package smtp

import (
	"context"
	"crypto/tls"
	"log/slog"
	netmail "net/mail"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"

	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/adapters/services/smtp")
	logger = otelslog.NewLogger("somase/internal/adapters/services/smtp")
)

const DefaultTimeout = 15 * time.Second

type dialer interface {
	Dial() (gomail.SendCloser, error)
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// UseTLS makes the connection fail unless STARTTLS succeeds. Port 465
	// always uses implicit TLS.
	UseTLS  bool
	Timeout time.Duration
}

// Sender delivers mail over SMTP, one connection per message.
type Sender struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	dialer  dialer
	cfg     Config
	timeout time.Duration
	// envelopeFrom is the bare address of cfg.From, used for MAIL FROM.
	envelopeFrom string
}

func NewSender(cfg Config) *Sender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Port == 465
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	return newSender(cfg, d)
}

func newSender(cfg Config, d dialer) *Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	envelopeFrom := cfg.From
	if addr, err := netmail.ParseAddress(cfg.From); err == nil {
		envelopeFrom = addr.Address
	}

	return &Sender{
		tracer:       tracer,
		logger:       logger,
		dialer:       d,
		cfg:          cfg,
		timeout:      timeout,
		envelopeFrom: envelopeFrom,
	}
}

func (s *Sender) SendVerificationEmail(ctx context.Context, payload mail.Payload) error {
	ctx, span := s.tracer.Start(ctx, "Sender.SendVerificationEmail", trace.WithAttributes(
		attribute.String("smtp.host", s.cfg.Host),
		attribute.Int("smtp.port", s.cfg.Port),
		attribute.String("mail.to", logging.RedactEmail(payload.To)),
	))
	defer span.End()

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", payload.To)
	msg.SetHeader("Subject", payload.Subject)
	msg.SetBody("text/plain", payload.TextBody)
	if payload.HTMLBody != "" {
		msg.AddAlternative("text/html", payload.HTMLBody)
	}

	err := s.withTimeout(ctx, func(ctx context.Context) error {
		sc, err := s.dialer.Dial()
		if err != nil {
			return mail.NewDeliveryError(classify(err, phaseDial), err)
		}
		defer sc.Close()

		// The caller has already given up and may have rolled back the
		// account, so a late connection must not deliver the link.
		if err := ctx.Err(); err != nil {
			return mail.NewDeliveryError(mail.KindTimeout, err)
		}

		// SendCloser.Send returns the net/smtp error unwrapped. gomail.Send
		// would flatten it into a string and hide the reply code.
		if err := sc.Send(s.envelopeFrom, []string{payload.To}, msg); err != nil {
			return mail.NewDeliveryError(classify(err, phaseSend), err)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to send email")
		s.logger.ErrorContext(ctx, "failed to send email",
			slog.String("mail.to", logging.RedactEmail(payload.To)),
			slog.String("mail.error_kind", mail.KindOf(err).String()),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.logger.InfoContext(ctx, "email sent", slog.String("mail.to", logging.RedactEmail(payload.To)))
	return nil
}

// Probe connects and authenticates without sending a message.
func (s *Sender) Probe(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "Sender.Probe", trace.WithAttributes(
		attribute.String("smtp.host", s.cfg.Host),
		attribute.Int("smtp.port", s.cfg.Port),
	))
	defer span.End()

	err := s.withTimeout(ctx, func(context.Context) error {
		sc, err := s.dialer.Dial()
		if err != nil {
			return mail.NewDeliveryError(classify(err, phaseDial), err)
		}
		return sc.Close()
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "smtp probe failed")
	}
	return err
}

func (s *Sender) Settings() mail.Settings {
	return mail.Settings{
		Host:    s.cfg.Host,
		Port:    s.cfg.Port,
		UseTLS:  s.cfg.UseTLS,
		User:    s.cfg.Username,
		From:    s.cfg.From,
		Timeout: s.timeout,
	}
}

// withTimeout bounds fn by the sender timeout and ctx. gomail has no context
// support, so on expiry fn keeps running in the background. fn receives a
// context that is cancelled once withTimeout returns and must check it before
// doing anything visible.
func (s *Sender) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return mail.NewDeliveryError(mail.KindTimeout, ctx.Err())
	}
}
