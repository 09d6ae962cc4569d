package builders

import (
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	"github.com/mubas-somase/voting-backend/tests/fixtures"
)

// TestPasswordCost keeps bcrypt fast in tests.
const TestPasswordCost = bcrypt.MinCost

type AccountBuilder struct {
	args     user.RehydrateAccountArgs
	password string
}

func NewAccountBuilder() *AccountBuilder {
	now := time.Now().UTC()
	b := &AccountBuilder{
		args: user.RehydrateAccountArgs{
			ID:        user.NewID(),
			Username:  fmt.Sprintf("user_%d_%d", rand.Uint()%1000, now.UnixNano()),
			Email:     fmt.Sprintf("mse%02d-user%d@mubas.ac.mw", rand.IntN(100), now.UnixNano()),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	return b.WithPassword(fixtures.ValidPassword)
}

func (b *AccountBuilder) WithID(id user.ID) *AccountBuilder {
	b.args.ID = id
	return b
}

func (b *AccountBuilder) WithUsername(username string) *AccountBuilder {
	b.args.Username = username
	return b
}

func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.args.Email = email
	return b
}

func (b *AccountBuilder) WithPassword(password string) *AccountBuilder {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), TestPasswordCost)
	if err != nil {
		panic(err)
	}
	b.password = password
	b.args.PassHash = hash
	return b
}

func (b *AccountBuilder) WithPhoto(p photo.Photo) *AccountBuilder {
	b.args.Photo = p
	return b
}

// Verified marks the account active and verified, as after activation.
func (b *AccountBuilder) Verified() *AccountBuilder {
	b.args.IsActive = true
	b.args.IsEmailVerified = true
	return b
}

func (b *AccountBuilder) Unverified() *AccountBuilder {
	b.args.IsActive = false
	b.args.IsEmailVerified = false
	return b
}

func (b *AccountBuilder) RehydrateArgs() user.RehydrateAccountArgs {
	return b.args
}

func (b *AccountBuilder) Build() *user.Account {
	return user.RehydrateAccount(b.args)
}
