package builders

import (
	"time"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

type ApplicationBuilder struct {
	args candidate.RehydrateApplicationArgs
}

func NewApplicationBuilder() *ApplicationBuilder {
	now := time.Now().UTC()
	return &ApplicationBuilder{
		args: candidate.RehydrateApplicationArgs{
			ID:        candidate.NewID(),
			AccountID: user.NewID(),
			FullName:  "Chisomo Banda",
			Position:  candidate.PositionPresident,
			Phone:     "+265 999 123 456",
			Slogan:    "Students first",
			Manifesto: "Open books, open doors.",
			Status:    candidate.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *ApplicationBuilder) WithAccount(a *user.Account) *ApplicationBuilder {
	b.args.AccountID = a.ID()
	return b
}

func (b *ApplicationBuilder) WithPosition(p candidate.Position) *ApplicationBuilder {
	b.args.Position = p
	return b
}

func (b *ApplicationBuilder) WithStatus(s candidate.Status) *ApplicationBuilder {
	b.args.Status = s
	return b
}

func (b *ApplicationBuilder) Build() *candidate.Application {
	return candidate.RehydrateApplication(b.args)
}
