package registrationcmd

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

type Activate struct {
	// UID is the base64url encoded account id taken from the activation link.
	UID   string
	Token string
}

type ActivateResult struct {
	AccountID     user.ID
	AlreadyActive bool
}

type ActivateHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   AccountRepo
	issuer TokenIssuer
}

type ActivateHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Repo   AccountRepo
	Issuer TokenIssuer
}

func NewActivateHandler(args ActivateHandlerArgs) *ActivateHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &ActivateHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		repo:   args.Repo,
		issuer: args.Issuer,
	}
}

// Handle activates the account named by the link. Activating an already
// active account succeeds without checking the token again.
func (h *ActivateHandler) Handle(ctx context.Context, cmd Activate) (*ActivateResult, error) {
	const op = "registrationcmd.ActivateHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "ActivateHandler.Handle", trace.WithAttributes(
		attribute.String("activation.token", logging.RedactToken(cmd.Token)),
	))
	defer span.End()

	id, err := DecodeUID(cmd.UID)
	if err == nil && cmd.Token == "" {
		err = errors.New("empty activation token")
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "malformed activation link")
		return nil, user.ErrInvalidActivationLink.WithCause(err, op)
	}
	span.SetAttributes(attribute.String("account.id", id.String()))

	res := &ActivateResult{AccountID: id}
	err = h.repo.UpdateAccount(ctx, id, func(_ context.Context, a *user.Account) error {
		if a.IsActive() && a.IsEmailVerified() {
			res.AlreadyActive = true
			return nil
		}
		if !h.issuer.Verify(a, cmd.Token) {
			return user.ErrInvalidActivationLink
		}
		_, err := a.Activate()
		return err
	})
	if errors.Is(err, user.ErrAccountNotFound) {
		otelx.RecordSpanError(span, err, "account not found")
		return nil, user.ErrInvalidActivationLink.WithCause(err, op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to activate account")
		return nil, errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "account activated",
		slog.String("account.id", id.String()),
		slog.Bool("already_active", res.AlreadyActive),
	)
	return res, nil
}

// DecodeUID accepts the account id in base64url, padded or not.
func DecodeUID(uid string) (user.ID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return "", err
	}
	return user.ParseID(string(raw))
}
