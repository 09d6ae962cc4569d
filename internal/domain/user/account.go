package user

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mubas-somase/voting-backend/internal/domain/event"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	"github.com/mubas-somase/voting-backend/pkg/validationx"
)

const PasswordCostFactor = 12

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return ID(id.String()), nil
}

func (id ID) String() string {
	return string(id)
}

// Account is a registered identity. It starts inactive and unverified and
// becomes both at activation.
type Account struct {
	event.Recorder
	id              ID
	username        string
	email           string
	passHash        []byte
	isActive        bool
	isEmailVerified bool
	photo           photo.Photo
	createdAt       time.Time
	updatedAt       time.Time
}

type NewAccountArgs struct {
	ID       ID
	Username string
	Email    string
	PassHash []byte
}

func NewAccount(p NewAccountArgs) (*Account, error) {
	if p.ID == "" {
		return nil, ErrMissingID
	}
	if len(p.PassHash) == 0 {
		return nil, ErrMissingPassHash
	}
	if err := validation.Validate(p.Username, validationx.UsernameRules...); err != nil {
		return nil, validation.Errors{"username": err}
	}
	if err := validation.Validate(p.Email, validationx.EmailRules...); err != nil {
		return nil, validation.Errors{"email": err}
	}

	now := time.Now().UTC()
	return &Account{
		id:        p.ID,
		username:  p.Username,
		email:     p.Email,
		passHash:  p.PassHash,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type RehydrateAccountArgs struct {
	ID              ID
	Username        string
	Email           string
	PassHash        []byte
	IsActive        bool
	IsEmailVerified bool
	Photo           photo.Photo
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func RehydrateAccount(p RehydrateAccountArgs) *Account {
	return &Account{
		id:              p.ID,
		username:        p.Username,
		email:           p.Email,
		passHash:        p.PassHash,
		isActive:        p.IsActive,
		isEmailVerified: p.IsEmailVerified,
		photo:           p.Photo,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}

// Activate marks the account active and verified. It reports false when the
// account already was.
func (a *Account) Activate() (bool, error) {
	if a == nil {
		return false, errors.New("account is nil")
	}
	if a.isActive && a.isEmailVerified {
		return false, nil
	}

	a.isActive = true
	a.isEmailVerified = true
	a.updatedAt = time.Now().UTC()

	a.AddEvent(&AccountActivated{
		Header:    event.NewEventHeader(),
		AccountID: a.id,
	})
	return true, nil
}

func (a *Account) SetPhoto(p photo.Photo) error {
	if a == nil {
		return errors.New("account is nil")
	}
	if err := validation.Validate(p.S3Key, validation.Required); err != nil {
		return validation.Errors{"profile_photo": err}
	}

	a.photo = p
	a.updatedAt = time.Now().UTC()
	return nil
}

// Delete records the removal. The repository does the actual delete.
func (a *Account) Delete(reason DeletionReason) error {
	if a == nil {
		return errors.New("account is nil")
	}
	if !reason.IsValid() {
		return fmt.Errorf("invalid deletion reason %q", reason)
	}

	a.AddEvent(&AccountDeleted{
		Header:    event.NewEventHeader(),
		AccountID: a.id,
		Reason:    reason,
	})
	return nil
}

// IsReclaimable reports whether a new registration may take over this
// account's email.
func (a *Account) IsReclaimable() bool {
	return a != nil && !a.isEmailVerified
}

func (a *Account) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(a.PassHash(), []byte(password))
}

func (a *Account) ID() ID {
	if a == nil {
		return ""
	}
	return a.id
}

func (a *Account) Username() string {
	if a == nil {
		return ""
	}
	return a.username
}

func (a *Account) Email() string {
	if a == nil {
		return ""
	}
	return a.email
}

func (a *Account) PassHash() []byte {
	if a == nil {
		return nil
	}
	return a.passHash
}

func (a *Account) IsActive() bool {
	if a == nil {
		return false
	}
	return a.isActive
}

func (a *Account) IsEmailVerified() bool {
	if a == nil {
		return false
	}
	return a.isEmailVerified
}

func (a *Account) Photo() photo.Photo {
	if a == nil {
		return photo.Photo{}
	}
	return a.photo
}

func (a *Account) CreatedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.createdAt
}

func (a *Account) UpdatedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.updatedAt
}

func NewPasswordHash(password string) ([]byte, error) {
	passhash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCostFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password hash from password: %w", err)
	}
	return passhash, nil
}
