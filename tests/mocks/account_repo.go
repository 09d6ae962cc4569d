package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

// AccountRepo keeps accounts as snapshots, so every read returns a fresh copy
// the way a database would.
type AccountRepo struct {
	*EventRepo
	mu   sync.Mutex
	byID map[user.ID]user.RehydrateAccountArgs

	saveErr   error
	updateErr error
	deleteErr error
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		EventRepo: NewEventRepo(),
		byID:      make(map[user.ID]user.RehydrateAccountArgs),
	}
}

func snapshot(a *user.Account) user.RehydrateAccountArgs {
	return user.RehydrateAccountArgs{
		ID:              a.ID(),
		Username:        a.Username(),
		Email:           a.Email(),
		PassHash:        append([]byte(nil), a.PassHash()...),
		IsActive:        a.IsActive(),
		IsEmailVerified: a.IsEmailVerified(),
		Photo:           a.Photo(),
		CreatedAt:       a.CreatedAt(),
		UpdatedAt:       a.UpdatedAt(),
	}
}

func (r *AccountRepo) GetAccountByID(_ context.Context, id user.ID) (*user.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byID[id]; ok {
		return user.RehydrateAccount(s), nil
	}
	return nil, user.ErrAccountNotFound
}

func (r *AccountRepo) GetAccountByEmail(_ context.Context, email string) (*user.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.byID {
		if s.Email == email {
			return user.RehydrateAccount(s), nil
		}
	}
	return nil, user.ErrAccountNotFound
}

func (r *AccountRepo) GetAccountByUsername(_ context.Context, username string) (*user.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.byID {
		if s.Username == username {
			return user.RehydrateAccount(s), nil
		}
	}
	return nil, user.ErrAccountNotFound
}

func (r *AccountRepo) SaveAccount(_ context.Context, a *user.Account, stale *user.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}

	if stale != nil {
		if _, ok := r.byID[stale.ID()]; !ok {
			return user.ErrAccountNotFound
		}
	}
	for id, s := range r.byID {
		if stale != nil && id == stale.ID() {
			continue
		}
		if s.Email == a.Email() {
			return user.ErrEmailAlreadyRegistered
		}
		if s.Username == a.Username() {
			return user.ErrUsernameTaken
		}
	}

	if stale != nil {
		delete(r.byID, stale.ID())
		r.appendEvents(stale.GetUncommittedEvents()...)
		stale.MarkEventsAsCommitted()
	}
	r.byID[a.ID()] = snapshot(a)
	r.appendEvents(a.GetUncommittedEvents()...)
	a.MarkEventsAsCommitted()

	return nil
}

func (r *AccountRepo) UpdateAccount(ctx context.Context, id user.ID, fn func(context.Context, *user.Account) error) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}

	s, ok := r.byID[id]
	if !ok {
		return user.ErrAccountNotFound
	}

	a := user.RehydrateAccount(s)
	if err := fn(ctx, a); err != nil {
		return fmt.Errorf("failed to apply update function: %w", err)
	}

	r.byID[id] = snapshot(a)
	r.appendEvents(a.GetUncommittedEvents()...)
	return nil
}

func (r *AccountRepo) DeleteAccount(_ context.Context, a *user.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[a.ID()]; !ok {
		return user.ErrAccountNotFound
	}

	delete(r.byID, a.ID())
	r.appendEvents(a.GetUncommittedEvents()...)
	a.MarkEventsAsCommitted()
	return nil
}

func (r *AccountRepo) SetSaveError(err error)   { r.mu.Lock(); r.saveErr = err; r.mu.Unlock() }
func (r *AccountRepo) SetUpdateError(err error) { r.mu.Lock(); r.updateErr = err; r.mu.Unlock() }
func (r *AccountRepo) SetDeleteError(err error) { r.mu.Lock(); r.deleteErr = err; r.mu.Unlock() }

func (r *AccountRepo) SeedAccount(t *testing.T, a *user.Account) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID()]; exists {
		t.Fatalf("account with ID %s already exists", a.ID())
	}
	r.byID[a.ID()] = snapshot(a)
}

func (r *AccountRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *AccountRepo) AssertAccountExistsByEmail(t *testing.T, email string) *AccountAssertion {
	t.Helper()

	a, err := r.GetAccountByEmail(t.Context(), email)
	if err != nil {
		t.Fatalf("expected account with email %s to exist: %v", email, err)
	}
	return &AccountAssertion{t: t, a: a}
}

func (r *AccountRepo) AssertAccountNotExistsByEmail(t *testing.T, email string) *AccountRepo {
	t.Helper()

	if _, err := r.GetAccountByEmail(t.Context(), email); err == nil {
		t.Errorf("expected account with email %s to not exist", email)
	}
	return r
}

func (r *AccountRepo) AssertAccountNotExistsByID(t *testing.T, id user.ID) *AccountRepo {
	t.Helper()

	if _, err := r.GetAccountByID(t.Context(), id); err == nil {
		t.Errorf("expected account %s to not exist", id)
	}
	return r
}

func (r *AccountRepo) AssertCount(t *testing.T, want int) *AccountRepo {
	t.Helper()
	assert.Equal(t, want, r.Count(), "account count")
	return r
}

type AccountAssertion struct {
	t *testing.T
	a *user.Account
}

func (a *AccountAssertion) Account() *user.Account { return a.a }

func (a *AccountAssertion) AssertUsername(want string) *AccountAssertion {
	a.t.Helper()
	assert.Equal(a.t, want, a.a.Username(), "username")
	return a
}

func (a *AccountAssertion) AssertInactive() *AccountAssertion {
	a.t.Helper()
	assert.False(a.t, a.a.IsActive(), "is_active")
	assert.False(a.t, a.a.IsEmailVerified(), "is_email_verified")
	return a
}

func (a *AccountAssertion) AssertActive() *AccountAssertion {
	a.t.Helper()
	assert.True(a.t, a.a.IsActive(), "is_active")
	assert.True(a.t, a.a.IsEmailVerified(), "is_email_verified")
	return a
}

func (a *AccountAssertion) AssertPassword(password string) *AccountAssertion {
	a.t.Helper()
	assert.NoError(a.t, a.a.ComparePassword(password), "password")
	return a
}

func (a *AccountAssertion) AssertPhotoKey(want string) *AccountAssertion {
	a.t.Helper()
	assert.Equal(a.t, want, a.a.Photo().S3Key, "photo key")
	return a
}
