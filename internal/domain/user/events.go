package user

import "github.com/mubas-somase/voting-backend/internal/domain/event"

const AccountEventStreamName = "events_account"

type DeletionReason string

const (
	// ReasonSelf is an owner initiated delete.
	ReasonSelf DeletionReason = "self"
	// ReasonRollback undoes a registration whose verification email could not be sent.
	ReasonRollback DeletionReason = "rollback"
	// ReasonReclaimed frees the email of a stale unverified account for a new registration.
	ReasonReclaimed DeletionReason = "reclaimed"
)

func (r DeletionReason) IsValid() bool {
	switch r {
	case ReasonSelf, ReasonRollback, ReasonReclaimed:
		return true
	default:
		return false
	}
}

type AccountActivated struct {
	event.Header
	event.Otel
	AccountID ID `json:"account_id"`
}

func (e *AccountActivated) GetStreamName() string {
	return AccountEventStreamName
}

type AccountDeleted struct {
	event.Header
	event.Otel
	AccountID ID             `json:"account_id"`
	Reason    DeletionReason `json:"reason"`
}

func (e *AccountDeleted) GetStreamName() string {
	return AccountEventStreamName
}
