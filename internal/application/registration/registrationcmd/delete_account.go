package registrationcmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

type DeleteAccount struct {
	AccountID user.ID
}

type DeleteAccountHandler struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	repo    AccountRepo
	storage PhotoStorage
}

type DeleteAccountHandlerArgs struct {
	Tracer  trace.Tracer
	Logger  *slog.Logger
	Repo    AccountRepo
	Storage PhotoStorage
}

func NewDeleteAccountHandler(args DeleteAccountHandlerArgs) *DeleteAccountHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &DeleteAccountHandler{
		tracer:  args.Tracer,
		logger:  args.Logger,
		repo:    args.Repo,
		storage: args.Storage,
	}
}

func (h *DeleteAccountHandler) Handle(ctx context.Context, cmd DeleteAccount) error {
	const op = "registrationcmd.DeleteAccountHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "DeleteAccountHandler.Handle", trace.WithAttributes(
		attribute.String("account.id", cmd.AccountID.String()),
	))
	defer span.End()

	account, err := h.repo.GetAccountByID(ctx, cmd.AccountID)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account")
		return errorx.Wrap(err, op)
	}

	if err := account.Delete(user.ReasonSelf); err != nil {
		otelx.RecordSpanError(span, err, "failed to delete account")
		return errorx.NewInternalError().WithCause(err, op)
	}
	if err := h.repo.DeleteAccount(ctx, account); err != nil {
		otelx.RecordSpanError(span, err, "failed to delete account")
		return errorx.Wrap(err, op)
	}

	if key := account.Photo().S3Key; key != "" && h.storage != nil {
		if err := h.storage.DeleteFile(ctx, key); err != nil {
			h.logger.WarnContext(ctx, "failed to delete profile photo of deleted account",
				slog.String("s3.key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	h.logger.InfoContext(ctx, "account deleted by owner", slog.String("account.id", cmd.AccountID.String()))
	return nil
}
