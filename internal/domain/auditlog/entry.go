package auditlog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

type Action string

const (
	ActionApplicationSubmitted Action = "candidate_application_submitted"
	ActionAccountActivated     Action = "account_activated"
	ActionAccountDeleted       Action = "account_deleted"
)

// Entry is an append-only record of something an account did or had done to it.
// EventID ties the entry to the event it was derived from, so replays are idempotent.
type Entry struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	AccountID user.ID
	Action    Action
	Details   map[string]string
	CreatedAt time.Time
}

type NewEntryArgs struct {
	EventID   uuid.UUID
	AccountID user.ID
	Action    Action
	Details   map[string]string
	At        time.Time
}

func NewEntry(p NewEntryArgs) (*Entry, error) {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.EventID, validation.By(requiredUUID)),
		validation.Field(&p.AccountID, validation.Required),
		validation.Field(&p.Action, validation.Required, validation.In(
			ActionApplicationSubmitted, ActionAccountActivated, ActionAccountDeleted,
		)),
	)
	if err != nil {
		return nil, err
	}

	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	details := p.Details
	if details == nil {
		details = map[string]string{}
	}

	return &Entry{
		ID:        uuid.New(),
		EventID:   p.EventID,
		AccountID: p.AccountID,
		Action:    p.Action,
		Details:   details,
		CreatedAt: at.UTC(),
	}, nil
}

// requiredUUID stands in for validation.Required, which treats every
// fixed size array, uuid.Nil included, as present.
func requiredUUID(value any) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return validation.ErrRequired
	}
	return nil
}
