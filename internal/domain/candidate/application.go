package candidate

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/mubas-somase/voting-backend/internal/domain/event"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	"github.com/mubas-somase/voting-backend/pkg/validationx"
)

const (
	MinFullNameLen  = 2
	MaxFullNameLen  = 100
	MaxSloganLen    = 50
	MaxManifestoLen = 200 // words
)

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

// Application is one account's bid for one position.
type Application struct {
	event.Recorder
	id        ID
	accountID user.ID
	fullName  string
	position  Position
	phone     string
	slogan    string
	manifesto string
	photo     photo.Photo
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// SubmitArgs json tags name the fields in validation errors.
type SubmitArgs struct {
	ID        ID          `json:"id"`
	AccountID user.ID     `json:"account_id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Position  Position    `json:"position"`
	Phone     string      `json:"phone"`
	Slogan    string      `json:"slogan"`
	Manifesto string      `json:"manifesto"`
	Photo     photo.Photo `json:"-"`
}

func (a *SubmitArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.AccountID, validation.Required),
		validation.Field(&a.FullName, validation.Required, validation.RuneLength(MinFullNameLen, MaxFullNameLen)),
		validation.Field(&a.Position, validation.Required),
		validation.Field(&a.Phone, validation.Required, validationx.IsPhone),
		validation.Field(&a.Slogan, validation.RuneLength(0, MaxSloganLen)),
		validation.Field(&a.Manifesto, validationx.MaxWords(MaxManifestoLen)),
	)
}

// Submit creates a pending application and records ApplicationSubmitted.
func Submit(p SubmitArgs) (*Application, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app := &Application{
		id:        p.ID,
		accountID: p.AccountID,
		fullName:  p.FullName,
		position:  p.Position,
		phone:     p.Phone,
		slogan:    p.Slogan,
		manifesto: p.Manifesto,
		photo:     p.Photo,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}

	app.AddEvent(&ApplicationSubmitted{
		Header:        event.NewEventHeader(),
		ApplicationID: p.ID,
		AccountID:     p.AccountID,
		Email:         p.Email,
		FullName:      p.FullName,
		Position:      p.Position,
	})

	return app, nil
}

type RehydrateApplicationArgs struct {
	ID        ID
	AccountID user.ID
	FullName  string
	Position  Position
	Phone     string
	Slogan    string
	Manifesto string
	Photo     photo.Photo
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func RehydrateApplication(p RehydrateApplicationArgs) *Application {
	return &Application{
		id:        p.ID,
		accountID: p.AccountID,
		fullName:  p.FullName,
		position:  p.Position,
		phone:     p.Phone,
		slogan:    p.Slogan,
		manifesto: p.Manifesto,
		photo:     p.Photo,
		status:    p.Status,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
	}
}

func (a *Application) SetPhoto(p photo.Photo) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.photo = p
	a.updatedAt = time.Now().UTC()
	return nil
}

func (a *Application) ID() ID {
	if a == nil {
		return ""
	}
	return a.id
}

func (a *Application) AccountID() user.ID {
	if a == nil {
		return ""
	}
	return a.accountID
}

func (a *Application) FullName() string {
	if a == nil {
		return ""
	}
	return a.fullName
}

func (a *Application) Position() Position {
	if a == nil {
		return ""
	}
	return a.position
}

func (a *Application) Phone() string {
	if a == nil {
		return ""
	}
	return a.phone
}

func (a *Application) Slogan() string {
	if a == nil {
		return ""
	}
	return a.slogan
}

func (a *Application) Manifesto() string {
	if a == nil {
		return ""
	}
	return a.manifesto
}

func (a *Application) Photo() photo.Photo {
	if a == nil {
		return photo.Photo{}
	}
	return a.photo
}

func (a *Application) Status() Status {
	if a == nil {
		return ""
	}
	return a.status
}

func (a *Application) CreatedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.createdAt
}

func (a *Application) UpdatedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.updatedAt
}
