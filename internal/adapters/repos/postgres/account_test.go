package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	"github.com/mubas-somase/voting-backend/tests/builders"
	"github.com/mubas-somase/voting-backend/tests/fixtures"
)

func TestAccountRepo_SaveAndGet(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountRepo(pool, nil, nil)

	a := builders.NewAccountBuilder().
		WithPhoto(photo.Photo{S3Key: "profile_photos/x/1", URL: "http://cdn/profile_photos/x/1"}).
		Build()
	require.NoError(t, repo.SaveAccount(t.Context(), a, nil))

	getters := map[string]func(context.Context) (*user.Account, error){
		"by id":       func(ctx context.Context) (*user.Account, error) { return repo.GetAccountByID(ctx, a.ID()) },
		"by email":    func(ctx context.Context) (*user.Account, error) { return repo.GetAccountByEmail(ctx, a.Email()) },
		"by username": func(ctx context.Context) (*user.Account, error) { return repo.GetAccountByUsername(ctx, a.Username()) },
	}
	for name, get := range getters {
		t.Run(name, func(t *testing.T) {
			got, err := get(t.Context())
			require.NoError(t, err)
			assert.Equal(t, a.ID(), got.ID())
			assert.Equal(t, a.Username(), got.Username())
			assert.Equal(t, a.Email(), got.Email())
			assert.Equal(t, a.PassHash(), got.PassHash())
			assert.False(t, got.IsActive())
			assert.Equal(t, a.Photo(), got.Photo())
			assert.WithinDuration(t, a.CreatedAt(), got.CreatedAt(), time.Millisecond)
			require.NoError(t, got.ComparePassword(fixtures.ValidPassword))
		})
	}

	_, err := repo.GetAccountByEmail(t.Context(), "mse00-missing@mubas.ac.mw")
	require.ErrorIs(t, err, user.ErrAccountNotFound)
}

func TestAccountRepo_SaveConflicts(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountRepo(pool, nil, nil)

	existing := builders.NewAccountBuilder().Verified().Build()
	require.NoError(t, repo.SaveAccount(t.Context(), existing, nil))

	sameEmail := builders.NewAccountBuilder().WithEmail(existing.Email()).Build()
	err := repo.SaveAccount(t.Context(), sameEmail, nil)
	require.ErrorIs(t, err, user.ErrEmailAlreadyRegistered)

	sameUsername := builders.NewAccountBuilder().WithUsername(existing.Username()).Build()
	err = repo.SaveAccount(t.Context(), sameUsername, nil)
	require.ErrorIs(t, err, user.ErrUsernameTaken)
}

func TestAccountRepo_SaveReclaimsStale(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountRepo(pool, nil, nil)

	stale := builders.NewAccountBuilder().Unverified().Build()
	require.NoError(t, repo.SaveAccount(t.Context(), stale, nil))

	stale, err := repo.GetAccountByEmail(t.Context(), stale.Email())
	require.NoError(t, err)
	require.NoError(t, stale.Delete(user.ReasonReclaimed))

	fresh := builders.NewAccountBuilder().WithEmail(stale.Email()).Build()
	require.NoError(t, repo.SaveAccount(t.Context(), fresh, stale))

	_, err = repo.GetAccountByID(t.Context(), stale.ID())
	require.ErrorIs(t, err, user.ErrAccountNotFound)

	got, err := repo.GetAccountByEmail(t.Context(), fresh.Email())
	require.NoError(t, err)
	assert.Equal(t, fresh.ID(), got.ID())
	assert.Empty(t, stale.GetUncommittedEvents())
}

func TestAccountRepo_SaveKeepsStaleVerifiedMeanwhile(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountRepo(pool, nil, nil)

	stale := builders.NewAccountBuilder().Unverified().Build()
	require.NoError(t, repo.SaveAccount(t.Context(), stale, nil))

	// activated between the pre-check and the write
	require.NoError(t, repo.UpdateAccount(t.Context(), stale.ID(), func(_ context.Context, a *user.Account) error {
		_, err := a.Activate()
		return err
	}))

	fresh := builders.NewAccountBuilder().WithEmail(stale.Email()).Build()
	err := repo.SaveAccount(t.Context(), fresh, stale)
	require.ErrorIs(t, err, user.ErrEmailAlreadyRegistered)

	got, err := repo.GetAccountByID(t.Context(), stale.ID())
	require.NoError(t, err)
	assert.True(t, got.IsActive())
}

func TestAccountRepo_UpdateAccount(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountRepo(pool, nil, nil)

	a := builders.NewAccountBuilder().Unverified().Build()
	require.NoError(t, repo.SaveAccount(t.Context(), a, nil))

	err := repo.UpdateAccount(t.Context(), a.ID(), func(_ context.Context, a *user.Account) error {
		if _, err := a.Activate(); err != nil {
			return err
		}
		return a.SetPhoto(photo.Photo{S3Key: "profile_photos/y/2", URL: "http://cdn/profile_photos/y/2"})
	})
	require.NoError(t, err)

	got, err := repo.GetAccountByID(t.Context(), a.ID())
	require.NoError(t, err)
	assert.True(t, got.IsActive())
	assert.True(t, got.IsEmailVerified())
	assert.Equal(t, "profile_photos/y/2", got.Photo().S3Key)

	err = repo.UpdateAccount(t.Context(), user.NewID(), func(context.Context, *user.Account) error { return nil })
	require.ErrorIs(t, err, user.ErrAccountNotFound)

	require.ErrorIs(t, repo.UpdateAccount(t.Context(), a.ID(), nil), ErrNilFunc)
}

func TestAccountRepo_DeleteCascadesApplication(t *testing.T) {
	pool := testPool(t)
	accounts := NewAccountRepo(pool, nil, nil)
	applications := NewApplicationRepo(pool, nil, nil)

	a := builders.NewAccountBuilder().Verified().Build()
	require.NoError(t, accounts.SaveAccount(t.Context(), a, nil))
	require.NoError(t, applications.SaveApplication(t.Context(), builders.NewApplicationBuilder().WithAccount(a).Build()))

	require.NoError(t, a.Delete(user.ReasonSelf))
	require.NoError(t, accounts.DeleteAccount(t.Context(), a))

	_, err := applications.GetApplicationByAccountID(t.Context(), a.ID())
	require.ErrorIs(t, err, candidate.ErrApplicationNotFound)

	err = accounts.DeleteAccount(t.Context(), a)
	require.ErrorIs(t, err, user.ErrAccountNotFound)
}
