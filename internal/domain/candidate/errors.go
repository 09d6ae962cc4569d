package candidate

import (
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

var (
	ErrUnknownEmail         = errorx.New(errorx.CodeUnknownEmail, i18nx.KeyUnknownEmail)
	ErrAccountNotVerified   = errorx.New(errorx.CodeAccountNotVerified, i18nx.KeyAccountNotVerified)
	ErrDuplicateApplication = errorx.New(errorx.CodeDuplicateApplication, i18nx.KeyDuplicateApplication)
	ErrDuplicatePosition    = errorx.New(errorx.CodeDuplicatePositionApplication, i18nx.KeyDuplicatePositionApplication)
	ErrApplicationNotFound  = errorx.NewNotFound()
	ErrInvalidAttachment    = errorx.New(errorx.CodeInvalidAttachment, i18nx.KeyInvalidAttachment)
)

func NewDuplicatePositionError(p Position) *errorx.I18nError {
	return ErrDuplicatePosition.WithArgs(map[string]any{i18nx.ArgPosition: p.Display()})
}

// NewDuplicateApplicationError names the position the account already holds.
func NewDuplicateApplicationError(existing Position) *errorx.I18nError {
	return ErrDuplicateApplication.WithArgs(map[string]any{i18nx.ArgPosition: existing.Display()})
}
