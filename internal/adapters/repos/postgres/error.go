package postgres

import (
	"errors"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/postgres"
)

var (
	ErrNoRowsAffected = errors.New("no rows affected")
	ErrNilFunc        = errors.New("update function cannot be nil")
)

// conflictFromUnique maps unique constraint violations onto the domain
// conflict errors. Anything else is returned unchanged.
func conflictFromUnique(err error) error {
	constraint, ok := postgres.UniqueViolation(err)
	if !ok {
		return err
	}

	switch constraint {
	case "accounts_email_key":
		return user.ErrEmailAlreadyRegistered.WithCause(err)
	case "accounts_username_key":
		return user.ErrUsernameTaken.WithCause(err)
	case "candidate_applications_account_id_key", "candidate_applications_account_position_key":
		return candidate.ErrDuplicateApplication.WithCause(err)
	default:
		return err
	}
}
