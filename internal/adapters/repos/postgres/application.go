package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
	"github.com/mubas-somase/voting-backend/pkg/postgres"
	"github.com/mubas-somase/voting-backend/pkg/watermillx"
)

const (
	applicationColumns = `id, account_id, full_name, position, phone, slogan, manifesto,
		photo_s3_key, photo_url, status, created_at, updated_at`

	insertApplicationQuery = `INSERT INTO candidate_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
)

type ApplicationRepo struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	pool    *pgxpool.Pool
	wlogger watermill.LoggerAdapter
}

// NewApplicationRepo creates a new instance of ApplicationRepo.
//
// WARNING: panics if pool is nil
func NewApplicationRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *ApplicationRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &ApplicationRepo{
		tracer:  t,
		logger:  l,
		pool:    pool,
		wlogger: watermillx.NewOTelFilteredSlogLogger(l, slog.LevelWarn),
	}
}

func (r *ApplicationRepo) GetApplicationByAccountID(ctx context.Context, accountID user.ID) (*candidate.Application, error) {
	const op = "postgres.ApplicationRepo.GetApplicationByAccountID"
	ctx, span := r.tracer.Start(ctx, "ApplicationRepo.GetApplicationByAccountID",
		trace.WithAttributes(attribute.String("account.id", accountID.String())),
	)
	defer span.End()

	var dto ApplicationDTO
	err := r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM candidate_applications WHERE account_id = $1;`,
		accountID.String(),
	).Scan(
		&dto.ID, &dto.AccountID, &dto.FullName, &dto.Position, &dto.Phone, &dto.Slogan, &dto.Manifesto,
		&dto.PhotoS3Key, &dto.PhotoURL, &dto.Status, &dto.CreatedAt, &dto.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, candidate.ErrApplicationNotFound.WithCause(err, op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get application")
		return nil, errorx.Wrap(err, op)
	}

	return ApplicationToDomain(dto), nil
}

func (r *ApplicationRepo) SaveApplication(ctx context.Context, app *candidate.Application) error {
	const op = "postgres.ApplicationRepo.SaveApplication"
	ctx, span := r.tracer.Start(ctx, "ApplicationRepo.SaveApplication",
		trace.WithAttributes(
			attribute.String("application.id", app.ID().String()),
			attribute.String("candidate.position", app.Position().String()),
		),
	)
	defer span.End()

	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		dto := DomainToApplicationDTO(app)
		res, err := tx.Exec(ctx, insertApplicationQuery,
			dto.ID,
			dto.AccountID,
			dto.FullName,
			dto.Position,
			dto.Phone,
			dto.Slogan,
			dto.Manifesto,
			dto.PhotoS3Key,
			dto.PhotoURL,
			dto.Status,
			dto.CreatedAt,
			dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to insert application")
			return errorx.Wrap(conflictFromUnique(err), op)
		}
		if res.RowsAffected() == 0 {
			otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected while inserting application")
			return errorx.Wrap(ErrNoRowsAffected, op)
		}

		if err := watermillx.Publish(ctx, tx, r.wlogger, app.GetUncommittedEvents()...); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to execute transaction")
		return err
	}

	app.MarkEventsAsCommitted()
	return nil
}
