package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/auditlog"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

type AuditLogRepo struct {
	tracer trace.Tracer
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewAuditLogRepo creates a new instance of AuditLogRepo.
//
// WARNING: panics if pool is nil
func NewAuditLogRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *AuditLogRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &AuditLogRepo{tracer: t, logger: l, pool: pool}
}

// SaveEntry is a no-op for an event that was already recorded.
func (r *AuditLogRepo) SaveEntry(ctx context.Context, e *auditlog.Entry) error {
	const op = "postgres.AuditLogRepo.SaveEntry"
	ctx, span := r.tracer.Start(ctx, "AuditLogRepo.SaveEntry",
		trace.WithAttributes(
			attribute.String("event.id", e.EventID.String()),
			attribute.String("audit.action", string(e.Action)),
		),
	)
	defer span.End()

	details, err := json.Marshal(e.Details)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to marshal details")
		return errorx.Wrap(err, op)
	}

	res, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, event_id, account_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING;`,
		e.ID, e.EventID, e.AccountID.String(), string(e.Action), details, e.CreatedAt,
	)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to insert audit entry")
		return errorx.Wrap(err, op)
	}
	if res.RowsAffected() == 0 {
		r.logger.DebugContext(ctx, "audit entry already recorded", slog.String("event.id", e.EventID.String()))
	}

	return nil
}

func (r *AuditLogRepo) ListEntriesByAccount(ctx context.Context, accountID user.ID) ([]*auditlog.Entry, error) {
	const op = "postgres.AuditLogRepo.ListEntriesByAccount"
	ctx, span := r.tracer.Start(ctx, "AuditLogRepo.ListEntriesByAccount",
		trace.WithAttributes(attribute.String("account.id", accountID.String())),
	)
	defer span.End()

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, account_id, action, details, created_at
		FROM audit_logs WHERE account_id = $1 ORDER BY created_at;`,
		accountID.String(),
	)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to query audit entries")
		return nil, errorx.Wrap(err, op)
	}
	defer rows.Close()

	var entries []*auditlog.Entry
	for rows.Next() {
		var (
			e         auditlog.Entry
			owner     string
			action    string
			details   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.EventID, &owner, &action, &details, &createdAt); err != nil {
			otelx.RecordSpanError(span, err, "failed to scan audit entry")
			return nil, errorx.Wrap(err, op)
		}
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, errorx.Wrap(err, op)
		}
		e.AccountID = user.ID(owner)
		e.Action = auditlog.Action(action)
		e.CreatedAt = createdAt
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		otelx.RecordSpanError(span, err, "failed to iterate audit entries")
		return nil, errorx.Wrap(err, op)
	}

	return entries, nil
}
