package candidatequery

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/application/candidate/candidatequery")
	logger = otelslog.NewLogger("somase/internal/application/candidate/candidatequery")
)

type Reader interface {
	GetAccountByEmail(ctx context.Context, email string) (*user.Account, error)
	GetApplicationByAccountID(ctx context.Context, accountID user.ID) (*candidate.Application, error)
}

type CheckApplication struct {
	Email string `json:"email"`
}

type CheckApplicationResponse struct {
	HasApplied      bool   `json:"has_applied"`
	ID              string `json:"id,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	Position        string `json:"position,omitempty"`
	PositionDisplay string `json:"position_display,omitempty"`
	Status          string `json:"status,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
}

type CheckApplicationHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	reader Reader
}

type CheckApplicationHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Reader Reader
}

func NewCheckApplicationHandler(args CheckApplicationHandlerArgs) *CheckApplicationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &CheckApplicationHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		reader: args.Reader,
	}
}

// Handle reports whether the email's owner has applied. Unknown emails are
// reported as not applied.
func (h *CheckApplicationHandler) Handle(ctx context.Context, query CheckApplication) (*CheckApplicationResponse, error) {
	const op = "candidatequery.CheckApplicationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "CheckApplicationHandler.Handle", trace.WithAttributes(
		attribute.String("account.email", logging.RedactEmail(query.Email)),
	))
	defer span.End()

	account, err := h.reader.GetAccountByEmail(ctx, query.Email)
	if errors.Is(err, user.ErrAccountNotFound) {
		return &CheckApplicationResponse{}, nil
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account")
		return nil, errorx.Wrap(err, op)
	}

	app, err := h.reader.GetApplicationByAccountID(ctx, account.ID())
	if errors.Is(err, candidate.ErrApplicationNotFound) {
		return &CheckApplicationResponse{}, nil
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get application")
		return nil, errorx.Wrap(err, op)
	}

	return &CheckApplicationResponse{
		HasApplied:      true,
		ID:              app.ID().String(),
		FullName:        app.FullName(),
		Position:        app.Position().String(),
		PositionDisplay: app.Position().Display(),
		Status:          app.Status().String(),
		PhotoURL:        app.Photo().URL,
	}, nil
}
