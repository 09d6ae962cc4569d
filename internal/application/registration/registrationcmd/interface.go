package registrationcmd

import (
	"context"
	"io"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
)

// AccountRepo reports a missing account with user.ErrAccountNotFound.
type AccountRepo interface {
	GetAccountByID(ctx context.Context, id user.ID) (*user.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*user.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*user.Account, error)
	// SaveAccount inserts a, deleting stale first when it is not nil, in one transaction.
	SaveAccount(ctx context.Context, a *user.Account, stale *user.Account) error
	UpdateAccount(ctx context.Context, id user.ID, fn func(context.Context, *user.Account) error) error
	DeleteAccount(ctx context.Context, a *user.Account) error
}

type PhotoStorage interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error
	DeleteFile(ctx context.Context, key string) error
}

type TokenIssuer interface {
	Issue(a *user.Account) (string, error)
	Verify(a *user.Account, token string) bool
}

type MailSender interface {
	SendVerificationEmail(ctx context.Context, payload mail.Payload) error
}
