package candidatecmd

import (
	"context"
	"io"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

type AccountReader interface {
	// GetAccountByEmail returns user.ErrAccountNotFound when nothing matches.
	GetAccountByEmail(ctx context.Context, email string) (*user.Account, error)
}

type ApplicationRepo interface {
	// GetApplicationByAccountID returns candidate.ErrApplicationNotFound when the account has none.
	GetApplicationByAccountID(ctx context.Context, accountID user.ID) (*candidate.Application, error)
	// SaveApplication inserts the application and publishes its events in the same transaction.
	SaveApplication(ctx context.Context, app *candidate.Application) error
}

type PhotoStorage interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error
	DeleteFile(ctx context.Context, key string) error
}
