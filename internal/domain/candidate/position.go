package candidate

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

type Position string

const (
	PositionPresident             Position = "president"
	PositionVicePresident         Position = "vice-president"
	PositionGeneralSecretary      Position = "general-secretary"
	PositionOrganisingSecretary   Position = "organising-secretary"
	PositionPublicitySecretary    Position = "publicity-secretary"
	PositionTreasurer             Position = "treasurer"
	PositionEntertainmentDirector Position = "entertainment-director"
	PositionSportsDirector        Position = "sports-director"
	PositionSocietyMember         Position = "society-member"
)

var positionDisplay = map[Position]string{
	PositionPresident:             "President",
	PositionVicePresident:         "Vice President",
	PositionGeneralSecretary:      "General Secretary",
	PositionOrganisingSecretary:   "Organising Secretary",
	PositionPublicitySecretary:    "Publicity Secretary",
	PositionTreasurer:             "Treasurer",
	PositionEntertainmentDirector: "Entertainment Director",
	PositionSportsDirector:        "Sports Director",
	PositionSocietyMember:         "Society Member",
}

var ErrInvalidPosition = validation.NewError(i18nx.ValidationIsPosition, i18nx.MsgValidationIsPosition)

// Positions returns every position in ballot order.
func Positions() []Position {
	return []Position{
		PositionPresident,
		PositionVicePresident,
		PositionGeneralSecretary,
		PositionOrganisingSecretary,
		PositionPublicitySecretary,
		PositionTreasurer,
		PositionEntertainmentDirector,
		PositionSportsDirector,
		PositionSocietyMember,
	}
}

func (p Position) String() string {
	return string(p)
}

func (p Position) IsValid() bool {
	_, ok := positionDisplay[p]
	return ok
}

func (p Position) Display() string {
	return positionDisplay[p]
}

// Validate lets a Position be used directly as an ozzo-validation Validatable.
func (p Position) Validate() error {
	if p == "" {
		return nil
	}
	if !p.IsValid() {
		return ErrInvalidPosition
	}
	return nil
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}
