package mocks

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/mubas-somase/voting-backend/internal/domain/auditlog"
)

type AuditLogRepo struct {
	mu      sync.Mutex
	entries []*auditlog.Entry
	seen    map[uuid.UUID]struct{}
	saveErr error
}

func NewAuditLogRepo() *AuditLogRepo {
	return &AuditLogRepo{seen: make(map[uuid.UUID]struct{})}
}

func (r *AuditLogRepo) SaveEntry(_ context.Context, entry *auditlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.seen[entry.EventID]; ok {
		return nil
	}
	r.seen[entry.EventID] = struct{}{}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *AuditLogRepo) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *AuditLogRepo) Entries() []*auditlog.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*auditlog.Entry(nil), r.entries...)
}

func (r *AuditLogRepo) RequireEntry(t *testing.T, action auditlog.Action) *auditlog.Entry {
	t.Helper()

	for _, e := range r.Entries() {
		if e.Action == action {
			return e
		}
	}
	t.Fatalf("audit entry with action %s not found", action)
	return nil
}
