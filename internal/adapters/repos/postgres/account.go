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

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
	"github.com/mubas-somase/voting-backend/pkg/postgres"
	"github.com/mubas-somase/voting-backend/pkg/watermillx"
)

const (
	accountColumns = `id, username, email, pass_hash, is_active, is_email_verified,
		photo_s3_key, photo_url, created_at, updated_at`

	insertAccountQuery = `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	updateAccountQuery = `UPDATE accounts
		SET username = $2, email = $3, pass_hash = $4, is_active = $5, is_email_verified = $6,
			photo_s3_key = $7, photo_url = $8, updated_at = $9
		WHERE id = $1;`

	// Only unverified accounts may be reclaimed. If the stale account got
	// verified meanwhile nothing is deleted and the insert hits accounts_email_key.
	deleteStaleAccountQuery = `DELETE FROM accounts WHERE id = $1 AND is_email_verified = FALSE;`
	deleteAccountQuery      = `DELETE FROM accounts WHERE id = $1;`
)

type AccountRepo struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	pool    *pgxpool.Pool
	wlogger watermill.LoggerAdapter
}

// NewAccountRepo creates a new instance of AccountRepo.
//
// WARNING: panics if pool is nil
func NewAccountRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *AccountRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &AccountRepo{
		tracer:  t,
		logger:  l,
		pool:    pool,
		wlogger: watermillx.NewOTelFilteredSlogLogger(l, slog.LevelWarn),
	}
}

func (r *AccountRepo) GetAccountByID(ctx context.Context, id user.ID) (*user.Account, error) {
	const op = "postgres.AccountRepo.GetAccountByID"
	ctx, span := r.tracer.Start(ctx, "AccountRepo.GetAccountByID",
		trace.WithAttributes(attribute.String("account.id", id.String())),
	)
	defer span.End()

	return r.getAccount(ctx, span, op, `SELECT `+accountColumns+` FROM accounts WHERE id = $1;`, id.String())
}

func (r *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*user.Account, error) {
	const op = "postgres.AccountRepo.GetAccountByEmail"
	ctx, span := r.tracer.Start(ctx, "AccountRepo.GetAccountByEmail")
	defer span.End()

	return r.getAccount(ctx, span, op, `SELECT `+accountColumns+` FROM accounts WHERE email = $1;`, email)
}

func (r *AccountRepo) GetAccountByUsername(ctx context.Context, username string) (*user.Account, error) {
	const op = "postgres.AccountRepo.GetAccountByUsername"
	ctx, span := r.tracer.Start(ctx, "AccountRepo.GetAccountByUsername")
	defer span.End()

	return r.getAccount(ctx, span, op, `SELECT `+accountColumns+` FROM accounts WHERE username = $1;`, username)
}

func (r *AccountRepo) getAccount(ctx context.Context, span trace.Span, op, query string, arg any) (*user.Account, error) {
	dto, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrAccountNotFound.WithCause(err, op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account")
		return nil, errorx.Wrap(err, op)
	}
	return AccountToDomain(dto), nil
}

// SaveAccount inserts a and, when stale is not nil, deletes the stale
// unverified account in the same transaction.
func (r *AccountRepo) SaveAccount(ctx context.Context, a *user.Account, stale *user.Account) error {
	const op = "postgres.AccountRepo.SaveAccount"
	ctx, span := r.tracer.Start(ctx, "AccountRepo.SaveAccount",
		trace.WithAttributes(
			attribute.String("account.id", a.ID().String()),
			attribute.Bool("account.reclaims_stale", stale != nil),
		),
	)
	defer span.End()

	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if stale != nil {
			res, err := tx.Exec(ctx, deleteStaleAccountQuery, stale.ID().String())
			if err != nil {
				otelx.RecordSpanError(span, err, "failed to delete stale account")
				return errorx.Wrap(err, op)
			}
			if res.RowsAffected() > 0 {
				if err := watermillx.Publish(ctx, tx, r.wlogger, stale.GetUncommittedEvents()...); err != nil {
					otelx.RecordSpanError(span, err, "failed to publish events")
					return errorx.Wrap(err, op)
				}
			}
		}

		dto := DomainToAccountDTO(a)
		res, err := tx.Exec(ctx, insertAccountQuery,
			dto.ID,
			dto.Username,
			dto.Email,
			dto.PassHash,
			dto.IsActive,
			dto.IsEmailVerified,
			dto.PhotoS3Key,
			dto.PhotoURL,
			dto.CreatedAt,
			dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to insert account")
			return errorx.Wrap(conflictFromUnique(err), op)
		}
		if res.RowsAffected() == 0 {
			otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected while inserting account")
			return errorx.Wrap(ErrNoRowsAffected, op)
		}

		if err := watermillx.Publish(ctx, tx, r.wlogger, a.GetUncommittedEvents()...); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to execute transaction")
		return err
	}

	a.MarkEventsAsCommitted()
	if stale != nil {
		stale.MarkEventsAsCommitted()
	}
	return nil
}

// UpdateAccount locks the row, applies fn and writes the result back with
// the events fn raised. Nothing is written when fn fails.
func (r *AccountRepo) UpdateAccount(
	ctx context.Context,
	id user.ID,
	fn func(ctx context.Context, a *user.Account) error,
) error {
	const op = "postgres.AccountRepo.UpdateAccount"
	ctx, span := r.tracer.Start(ctx, "AccountRepo.UpdateAccount",
		trace.WithAttributes(attribute.String("account.id", id.String())),
	)
	defer span.End()
	if fn == nil {
		otelx.RecordSpanError(span, ErrNilFunc, "update function cannot be nil")
		return ErrNilFunc
	}

	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		dto, err := scanAccount(tx.QueryRow(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE;`, id.String()))
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrAccountNotFound.WithCause(err, op)
		}
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to get account")
			return errorx.Wrap(err, op)
		}

		a := AccountToDomain(dto)
		if err := fn(ctx, a); err != nil {
			return errorx.Wrap(err, op)
		}

		dto = DomainToAccountDTO(a)
		res, err := tx.Exec(ctx, updateAccountQuery,
			dto.ID,
			dto.Username,
			dto.Email,
			dto.PassHash,
			dto.IsActive,
			dto.IsEmailVerified,
			dto.PhotoS3Key,
			dto.PhotoURL,
			dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to update account")
			return errorx.Wrap(conflictFromUnique(err), op)
		}
		if res.RowsAffected() == 0 {
			otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected while updating account")
			return errorx.Wrap(ErrNoRowsAffected, op)
		}

		if err := watermillx.Publish(ctx, tx, r.wlogger, a.GetUncommittedEvents()...); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "transaction to update account failed")
		return err
	}

	return nil
}

func (r *AccountRepo) DeleteAccount(ctx context.Context, a *user.Account) error {
	const op = "postgres.AccountRepo.DeleteAccount"
	ctx, span := r.tracer.Start(ctx, "AccountRepo.DeleteAccount",
		trace.WithAttributes(attribute.String("account.id", a.ID().String())),
	)
	defer span.End()

	err := postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		res, err := tx.Exec(ctx, deleteAccountQuery, a.ID().String())
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to delete account")
			return errorx.Wrap(err, op)
		}
		if res.RowsAffected() == 0 {
			return user.ErrAccountNotFound.WithCause(ErrNoRowsAffected, op)
		}

		if err := watermillx.Publish(ctx, tx, r.wlogger, a.GetUncommittedEvents()...); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return errorx.Wrap(err, op)
		}
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "transaction to delete account failed")
		return err
	}

	a.MarkEventsAsCommitted()
	return nil
}

func scanAccount(row pgx.Row) (AccountDTO, error) {
	var dto AccountDTO
	err := row.Scan(
		&dto.ID, &dto.Username, &dto.Email, &dto.PassHash, &dto.IsActive, &dto.IsEmailVerified,
		&dto.PhotoS3Key, &dto.PhotoURL, &dto.CreatedAt, &dto.UpdatedAt,
	)
	return dto, err
}
