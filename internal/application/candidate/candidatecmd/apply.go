package candidatecmd

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/application/candidate/candidatecmd")
	logger = otelslog.NewLogger("somase/internal/application/candidate/candidatecmd")
)

// PhotoDetailsKey names the photo in error details, matching the form field.
const PhotoDetailsKey = "profile_photo"

type Photo struct {
	File        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type Apply struct {
	Email     string
	FullName  string
	Position  string
	Phone     string
	Slogan    string
	Manifesto string
	Photo     *Photo
}

type ApplyResult struct {
	ID              candidate.ID
	FullName        string
	Position        candidate.Position
	PositionDisplay string
	Status          candidate.Status
}

type ApplyHandler struct {
	tracer       trace.Tracer
	logger       *slog.Logger
	accounts     AccountReader
	applications ApplicationRepo
	storage      PhotoStorage
	photos       *photo.Service
}

type ApplyHandlerArgs struct {
	Tracer       trace.Tracer
	Logger       *slog.Logger
	Accounts     AccountReader
	Applications ApplicationRepo
	Storage      PhotoStorage
	PhotoService *photo.Service
}

func NewApplyHandler(args ApplyHandlerArgs) *ApplyHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &ApplyHandler{
		tracer:       args.Tracer,
		logger:       args.Logger,
		accounts:     args.Accounts,
		applications: args.Applications,
		storage:      args.Storage,
		photos:       args.PhotoService,
	}
}

func (h *ApplyHandler) Handle(ctx context.Context, cmd Apply) (*ApplyResult, error) {
	const op = "candidatecmd.ApplyHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "ApplyHandler.Handle", trace.WithAttributes(
		attribute.String("account.email", logging.RedactEmail(cmd.Email)),
		attribute.String("candidate.position", cmd.Position),
		attribute.Bool("candidate.has_photo", cmd.Photo != nil),
	))
	defer span.End()

	account, err := h.accounts.GetAccountByEmail(ctx, cmd.Email)
	if errors.Is(err, user.ErrAccountNotFound) {
		otelx.RecordSpanError(span, err, "unknown email")
		return nil, candidate.ErrUnknownEmail.WithCause(err, op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account")
		return nil, errorx.Wrap(err, op)
	}
	span.SetAttributes(attribute.String("account.id", account.ID().String()))

	if !account.IsEmailVerified() {
		otelx.RecordSpanError(span, candidate.ErrAccountNotVerified, "account not verified")
		return nil, errorx.Wrap(candidate.ErrAccountNotVerified, op)
	}

	position := candidate.Position(cmd.Position)
	existing, err := h.applications.GetApplicationByAccountID(ctx, account.ID())
	switch {
	case errors.Is(err, candidate.ErrApplicationNotFound):
	case err != nil:
		otelx.RecordSpanError(span, err, "failed to get existing application")
		return nil, errorx.Wrap(err, op)
	case existing.Position() == position:
		return nil, errorx.Wrap(candidate.NewDuplicatePositionError(position), op)
	default:
		return nil, errorx.Wrap(candidate.NewDuplicateApplicationError(existing.Position()), op)
	}

	args := candidate.SubmitArgs{
		ID:        candidate.NewID(),
		AccountID: account.ID(),
		Email:     account.Email(),
		FullName:  cmd.FullName,
		Position:  position,
		Phone:     cmd.Phone,
		Slogan:    cmd.Slogan,
		Manifesto: cmd.Manifesto,
	}
	if err := args.Validate(); err != nil {
		otelx.RecordSpanError(span, err, "invalid application")
		return nil, errorx.Wrap(err, op)
	}

	if cmd.Photo != nil {
		if err := h.photos.ValidateFile(cmd.Photo.ContentType, cmd.Photo.Size); err != nil {
			otelx.RecordSpanError(span, err, "invalid candidate photo")
			return nil, candidate.ErrInvalidAttachment.
				WithDetails(map[string]string{PhotoDetailsKey: err.Error()}).
				WithCause(err)
		}
		args.Photo = h.uploadPhoto(ctx, account.ID(), cmd.Photo)
	}

	app, err := candidate.Submit(args)
	if err != nil {
		h.deletePhoto(ctx, args.Photo.S3Key)
		otelx.RecordSpanError(span, err, "invalid application")
		return nil, errorx.Wrap(err, op)
	}

	if err := h.applications.SaveApplication(ctx, app); err != nil {
		h.deletePhoto(ctx, args.Photo.S3Key)
		otelx.RecordSpanError(span, err, "failed to save application")
		return nil, errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "candidate application submitted",
		slog.String("application.id", app.ID().String()),
		slog.String("account.id", account.ID().String()),
		slog.String("candidate.position", position.String()),
	)

	return &ApplyResult{
		ID:              app.ID(),
		FullName:        app.FullName(),
		Position:        app.Position(),
		PositionDisplay: app.Position().Display(),
		Status:          app.Status(),
	}, nil
}

// uploadPhoto stores the candidate photo. The application goes ahead without
// one when the upload fails.
func (h *ApplyHandler) uploadPhoto(ctx context.Context, accountID user.ID, p *Photo) photo.Photo {
	ctx, span := h.tracer.Start(ctx, "ApplyHandler.uploadPhoto")
	defer span.End()

	key := h.photos.GenerateS3Key(photo.PrefixCandidate, accountID.String())
	span.SetAttributes(attribute.String("s3.key", key))

	if err := h.storage.UploadFile(ctx, key, p.File, p.ContentType); err != nil {
		otelx.RecordSpanError(span, err, "failed to upload candidate photo")
		h.logger.WarnContext(ctx, "candidate photo upload failed, continuing without photo",
			slog.String("account.id", accountID.String()),
			slog.String("error", err.Error()),
		)
		return photo.Photo{}
	}
	return h.photos.New(key)
}

func (h *ApplyHandler) deletePhoto(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.storage.DeleteFile(context.WithoutCancel(ctx), key); err != nil {
		h.logger.WarnContext(ctx, "failed to delete candidate photo",
			slog.String("s3.key", key),
			slog.String("error", err.Error()),
		)
	}
}
