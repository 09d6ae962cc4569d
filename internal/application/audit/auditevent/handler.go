package auditevent

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/auditlog"
	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/event"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/application/audit/auditevent")
	logger = otelslog.NewLogger("somase/internal/application/audit/auditevent")
)

type Repo interface {
	// SaveEntry must ignore an entry whose EventID is already stored.
	SaveEntry(ctx context.Context, entry *auditlog.Entry) error
}

// Handler turns domain events into audit log entries.
type Handler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   Repo
}

type HandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Repo   Repo
}

func NewHandler(args HandlerArgs) *Handler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &Handler{
		tracer: args.Tracer,
		logger: args.Logger,
		repo:   args.Repo,
	}
}

func (h *Handler) OnApplicationSubmitted(ctx context.Context, e *candidate.ApplicationSubmitted) error {
	if e == nil {
		return nil
	}
	return h.record(ctx, "OnApplicationSubmitted", e.Extract(), e.Header, auditlog.NewEntryArgs{
		AccountID: e.AccountID,
		Action:    auditlog.ActionApplicationSubmitted,
		Details: map[string]string{
			"application_id": e.ApplicationID.String(),
			"position":       e.Position.String(),
			"full_name":      e.FullName,
		},
	})
}

func (h *Handler) OnAccountActivated(ctx context.Context, e *user.AccountActivated) error {
	if e == nil {
		return nil
	}
	return h.record(ctx, "OnAccountActivated", e.Extract(), e.Header, auditlog.NewEntryArgs{
		AccountID: e.AccountID,
		Action:    auditlog.ActionAccountActivated,
	})
}

func (h *Handler) OnAccountDeleted(ctx context.Context, e *user.AccountDeleted) error {
	if e == nil {
		return nil
	}
	return h.record(ctx, "OnAccountDeleted", e.Extract(), e.Header, auditlog.NewEntryArgs{
		AccountID: e.AccountID,
		Action:    auditlog.ActionAccountDeleted,
		Details:   map[string]string{"reason": string(e.Reason)},
	})
}

func (h *Handler) record(ctx context.Context, name string, origin context.Context, header event.Header, args auditlog.NewEntryArgs) error {
	ctx, span := h.tracer.Start(ctx, "Handler."+name,
		trace.WithNewRoot(),
		trace.WithLinks(trace.LinkFromContext(origin)),
		trace.WithAttributes(
			attribute.String("event.id", header.ID.String()),
			attribute.String("audit.action", string(args.Action)),
			attribute.String("account.id", args.AccountID.String()),
		),
	)
	defer span.End()

	args.EventID = header.ID
	args.At = header.Timestamp
	entry, err := auditlog.NewEntry(args)
	if err != nil {
		otelx.RecordSpanError(span, err, "invalid audit entry")
		h.logger.ErrorContext(ctx, "dropping invalid audit entry",
			slog.String("event.id", header.ID.String()),
			slog.String("error", err.Error()),
		)
		// A malformed event will never become valid, so retrying it is pointless.
		return nil
	}

	if err := h.repo.SaveEntry(ctx, entry); err != nil {
		otelx.RecordSpanError(span, err, "failed to save audit entry")
		return err
	}

	h.logger.DebugContext(ctx, "audit entry recorded",
		slog.String("audit.action", string(entry.Action)),
		slog.String("event.id", header.ID.String()),
	)
	return nil
}
