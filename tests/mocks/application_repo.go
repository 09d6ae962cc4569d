package mocks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

type ApplicationRepo struct {
	*EventRepo
	mu        sync.Mutex
	byAccount map[user.ID]*candidate.Application
	saveErr   error
}

func NewApplicationRepo() *ApplicationRepo {
	return &ApplicationRepo{
		EventRepo: NewEventRepo(),
		byAccount: make(map[user.ID]*candidate.Application),
	}
}

func (r *ApplicationRepo) GetApplicationByAccountID(_ context.Context, accountID user.ID) (*candidate.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.byAccount[accountID]
	if !ok {
		return nil, candidate.ErrApplicationNotFound
	}
	return app, nil
}

// SaveApplication enforces one application per account the way the unique
// constraint on candidate_applications.account_id does.
func (r *ApplicationRepo) SaveApplication(_ context.Context, app *candidate.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	if existing, ok := r.byAccount[app.AccountID()]; ok {
		return candidate.NewDuplicateApplicationError(existing.Position())
	}

	r.byAccount[app.AccountID()] = app
	r.appendEvents(app.GetUncommittedEvents()...)
	app.MarkEventsAsCommitted()
	return nil
}

func (r *ApplicationRepo) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *ApplicationRepo) SeedApplication(t *testing.T, app *candidate.Application) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAccount[app.AccountID()]; exists {
		t.Fatalf("account %s already has an application", app.AccountID())
	}
	r.byAccount[app.AccountID()] = app
}

func (r *ApplicationRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byAccount)
}

func (r *ApplicationRepo) AssertApplicationExists(t *testing.T, accountID user.ID) *candidate.Application {
	t.Helper()

	app, err := r.GetApplicationByAccountID(t.Context(), accountID)
	if err != nil {
		t.Fatalf("expected application for account %s: %v", accountID, err)
	}
	return app
}

func (r *ApplicationRepo) AssertCount(t *testing.T, want int) *ApplicationRepo {
	t.Helper()
	assert.Equal(t, want, r.Count(), "application count")
	return r
}
