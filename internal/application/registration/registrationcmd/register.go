package registrationcmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/application/registration/registrationcmd")
	logger = otelslog.NewLogger("somase/internal/application/registration/registrationcmd")
	meter  = otel.Meter("somase/internal/application/registration/registrationcmd")
)

type Photo struct {
	File        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type Register struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	Photo     *Photo
}

type RegisterResult struct {
	AccountID user.ID
	Email     string
	EmailSent bool
}

type RegisterHandler struct {
	tracer       trace.Tracer
	logger       *slog.Logger
	repo         AccountRepo
	storage      PhotoStorage
	photos       *photo.Service
	issuer       TokenIssuer
	sender       MailSender
	frontendURL  string
	linkTTL      time.Duration
	hashPassword func(string) ([]byte, error)
	outcomes     metric.Int64Counter
}

type RegisterHandlerArgs struct {
	Tracer       trace.Tracer
	Logger       *slog.Logger
	Repo         AccountRepo
	Storage      PhotoStorage
	PhotoService *photo.Service
	Issuer       TokenIssuer
	Sender       MailSender
	// FrontendURL is the base of the activation link.
	FrontendURL string
	LinkTTL     time.Duration
	// HashPassword defaults to user.NewPasswordHash.
	HashPassword func(string) ([]byte, error)
}

func NewRegisterHandler(args RegisterHandlerArgs) *RegisterHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.HashPassword == nil {
		args.HashPassword = user.NewPasswordHash
	}
	if args.LinkTTL == 0 {
		args.LinkTTL = 24 * time.Hour
	}

	outcomes, err := meter.Int64Counter("somase.registrations",
		metric.WithDescription("Registration attempts by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &RegisterHandler{
		tracer:       args.Tracer,
		logger:       args.Logger,
		repo:         args.Repo,
		storage:      args.Storage,
		photos:       args.PhotoService,
		issuer:       args.Issuer,
		sender:       args.Sender,
		frontendURL:  strings.TrimRight(args.FrontendURL, "/"),
		linkTTL:      args.LinkTTL,
		hashPassword: args.HashPassword,
		outcomes:     outcomes,
	}
}

// Handle validates cmd in a fixed order, stopping at the first failure, and
// only then creates the account. Once the account exists every failure rolls
// it back, so a failed request never leaves an account behind.
func (h *RegisterHandler) Handle(ctx context.Context, cmd Register) (res *RegisterResult, err error) {
	const op = "registrationcmd.RegisterHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RegisterHandler.Handle", trace.WithAttributes(
		attribute.String("account.email", logging.RedactEmail(cmd.Email)),
		attribute.String("account.username", logging.RedactUsername(cmd.Username)),
		attribute.Bool("account.has_photo", cmd.Photo != nil),
	))
	defer span.End()
	defer func() { h.recordOutcome(ctx, err) }()

	stale, err := h.validate(ctx, cmd)
	if err != nil {
		otelx.RecordSpanError(span, err, "registration rejected")
		return nil, errorx.Wrap(err, op)
	}

	passHash, err := h.hashPassword(cmd.Password)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to hash password")
		return nil, errorx.NewInternalError().WithCause(err, op)
	}

	account, err := user.NewAccount(user.NewAccountArgs{
		ID:       user.NewID(),
		Username: cmd.Username,
		Email:    cmd.Email,
		PassHash: passHash,
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "invalid account")
		return nil, errorx.Wrap(err, op)
	}
	span.SetAttributes(attribute.String("account.id", account.ID().String()))

	if stale != nil {
		if err := stale.Delete(user.ReasonReclaimed); err != nil {
			otelx.RecordSpanError(span, err, "failed to mark stale account")
			return nil, errorx.NewInternalError().WithCause(err, op)
		}
		span.AddEvent("reclaiming stale unverified account", trace.WithAttributes(
			attribute.String("stale.account.id", stale.ID().String()),
		))
	}

	if err := h.repo.SaveAccount(ctx, account, stale); err != nil {
		otelx.RecordSpanError(span, err, "failed to save account")
		return nil, errorx.Wrap(err, op)
	}
	if key := stale.Photo().S3Key; key != "" {
		h.deletePhoto(ctx, key)
	}

	if cmd.Photo != nil {
		h.attachPhoto(ctx, account, cmd.Photo)
	}

	if err := h.sendVerification(ctx, account); err != nil {
		otelx.RecordSpanError(span, err, "verification email not sent, rolling back")
		h.rollback(ctx, account)
		return nil, errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "account registered",
		slog.String("account.id", account.ID().String()),
		slog.String("account.email", logging.RedactEmail(account.Email())),
		slog.Bool("reclaimed", stale != nil),
	)

	return &RegisterResult{
		AccountID: account.ID(),
		Email:     account.Email(),
		EmailSent: true,
	}, nil
}

// validate runs the registration checks in order and returns the stale
// unverified account to reclaim, if any.
func (h *RegisterHandler) validate(ctx context.Context, cmd Register) (*user.Account, error) {
	form := user.RegistrationForm{
		Username:  cmd.Username,
		Email:     cmd.Email,
		Password:  cmd.Password,
		Password2: cmd.Password2,
	}
	if missing := form.MissingFields(); len(missing) > 0 {
		return nil, user.NewMissingFieldsError(missing)
	}

	if err := user.CheckEmailDomain(cmd.Email); err != nil {
		return nil, err
	}

	byEmail, err := h.repo.GetAccountByEmail(ctx, cmd.Email)
	if err != nil && !errors.Is(err, user.ErrAccountNotFound) {
		return nil, err
	}
	if byEmail != nil && !byEmail.IsReclaimable() {
		return nil, user.ErrEmailAlreadyRegistered
	}

	byUsername, err := h.repo.GetAccountByUsername(ctx, cmd.Username)
	if err != nil && !errors.Is(err, user.ErrAccountNotFound) {
		return nil, err
	}
	if byUsername != nil {
		if byEmail != nil && byUsername.ID() == byEmail.ID() {
			return nil, user.ErrUsernameTakenUnverified
		}
		return nil, user.ErrUsernameTaken
	}

	if err := user.CheckPasswordPolicy(cmd.Password); err != nil {
		return nil, err
	}
	if err := user.CheckPasswordsMatch(cmd.Password, cmd.Password2); err != nil {
		return nil, err
	}

	if cmd.Photo != nil {
		if err := h.photos.ValidateFile(cmd.Photo.ContentType, cmd.Photo.Size); err != nil {
			msg := err.Error()
			var verr validation.Error
			if errors.As(err, &verr) {
				msg = verr.Error()
			}
			return nil, user.ErrInvalidAttachment.
				WithDetails(map[string]string{"profile_photo": msg}).
				WithCause(err)
		}
	}

	return byEmail, nil
}

// attachPhoto uploads the profile photo. Failures are logged and the account
// carries on without one.
func (h *RegisterHandler) attachPhoto(ctx context.Context, account *user.Account, p *Photo) {
	ctx, span := h.tracer.Start(ctx, "RegisterHandler.attachPhoto")
	defer span.End()

	key := h.photos.GenerateS3Key(photo.PrefixProfile, account.ID().String())
	span.SetAttributes(attribute.String("s3.key", key))

	if err := h.storage.UploadFile(ctx, key, p.File, p.ContentType); err != nil {
		otelx.RecordSpanError(span, err, "failed to upload profile photo")
		h.logger.WarnContext(ctx, "profile photo upload failed, continuing without photo",
			slog.String("account.id", account.ID().String()),
			slog.String("error", err.Error()),
		)
		return
	}

	err := h.repo.UpdateAccount(ctx, account.ID(), func(_ context.Context, a *user.Account) error {
		return a.SetPhoto(h.photos.New(key))
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to store profile photo reference")
		h.logger.WarnContext(ctx, "failed to store profile photo reference",
			slog.String("account.id", account.ID().String()),
			slog.String("error", err.Error()),
		)
		h.deletePhoto(ctx, key)
		return
	}

	_ = account.SetPhoto(h.photos.New(key))
}

func (h *RegisterHandler) sendVerification(ctx context.Context, account *user.Account) error {
	token, err := h.issuer.Issue(account)
	if err != nil {
		return errorx.NewInternalError().WithCause(err, "issue activation token")
	}

	htmlBody, textBody, err := renderVerification(verificationData{
		Username:  account.Username(),
		Link:      ActivationLink(h.frontendURL, account.ID(), token),
		ExpiresIn: humanDuration(h.linkTTL),
	})
	if err != nil {
		return errorx.NewInternalError().WithCause(err, "render verification email")
	}

	err = h.sender.SendVerificationEmail(ctx, mail.Payload{
		To:       account.Email(),
		Subject:  VerificationSubject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return mail.NewDeliveryFailedError(err)
	}
	return nil
}

// rollback removes an account whose registration could not complete. It
// uses a fresh context so a cancelled request still gets cleaned up.
func (h *RegisterHandler) rollback(ctx context.Context, account *user.Account) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "RegisterHandler.rollback", trace.WithAttributes(
		attribute.String("account.id", account.ID().String()),
	))
	defer span.End()

	account.MarkEventsAsCommitted()
	if err := account.Delete(user.ReasonRollback); err != nil {
		otelx.RecordSpanError(span, err, "failed to mark account for rollback")
	}
	if err := h.repo.DeleteAccount(ctx, account); err != nil {
		otelx.RecordSpanError(span, err, "failed to roll back account")
		h.logger.ErrorContext(ctx, "failed to roll back account after verification email failure",
			slog.String("account.id", account.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	if key := account.Photo().S3Key; key != "" {
		h.deletePhoto(ctx, key)
	}
}

func (h *RegisterHandler) deletePhoto(ctx context.Context, key string) {
	if err := h.storage.DeleteFile(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "failed to delete profile photo",
			slog.String("s3.key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (h *RegisterHandler) recordOutcome(ctx context.Context, err error) {
	if h.outcomes == nil {
		return
	}
	outcome := "created"
	var i18nErr *errorx.I18nError
	switch {
	case err == nil:
	case errors.As(err, &i18nErr):
		outcome = strings.ToLower(i18nErr.Code.String())
	default:
		outcome = "internal_error"
	}
	h.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// ActivationLink builds <frontend>/activate/<base64url(id)>/<token>/.
func ActivationLink(frontendURL string, id user.ID, token string) string {
	uid := base64.RawURLEncoding.EncodeToString([]byte(id.String()))
	return fmt.Sprintf("%s/activate/%s/%s/", strings.TrimRight(frontendURL, "/"), uid, token)
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
