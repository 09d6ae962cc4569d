package mocks

import (
	"fmt"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

// TokenIssuer issues readable tokens bound to the account id and its
// activation state, which is enough to check state binding in handler tests.
type TokenIssuer struct {
	IssueErr error
}

func NewTokenIssuer() *TokenIssuer {
	return &TokenIssuer{}
}

func (i *TokenIssuer) Issue(a *user.Account) (string, error) {
	if i.IssueErr != nil {
		return "", i.IssueErr
	}
	return i.token(a), nil
}

func (i *TokenIssuer) Verify(a *user.Account, token string) bool {
	return token != "" && token == i.token(a)
}

func (i *TokenIssuer) token(a *user.Account) string {
	return fmt.Sprintf("tok-%s-%t-%t", a.ID(), a.IsActive(), a.IsEmailVerified())
}
