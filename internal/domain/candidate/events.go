package candidate

import (
	"github.com/mubas-somase/voting-backend/internal/domain/event"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

const ApplicationEventStreamName = "events_candidate_application"

type ApplicationSubmitted struct {
	event.Header
	event.Otel
	ApplicationID ID       `json:"application_id"`
	AccountID     user.ID  `json:"account_id"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name"`
	Position      Position `json:"position"`
}

func (e *ApplicationSubmitted) GetStreamName() string {
	return ApplicationEventStreamName
}
