package postgres

import (
	"time"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
)

type AccountDTO struct {
	ID              string
	Username        string
	Email           string
	PassHash        []byte
	IsActive        bool
	IsEmailVerified bool
	PhotoS3Key      *string
	PhotoURL        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func DomainToAccountDTO(a *user.Account) AccountDTO {
	key, url := photoColumns(a.Photo())
	return AccountDTO{
		ID:              a.ID().String(),
		Username:        a.Username(),
		Email:           a.Email(),
		PassHash:        a.PassHash(),
		IsActive:        a.IsActive(),
		IsEmailVerified: a.IsEmailVerified(),
		PhotoS3Key:      key,
		PhotoURL:        url,
		CreatedAt:       a.CreatedAt(),
		UpdatedAt:       a.UpdatedAt(),
	}
}

func AccountToDomain(dto AccountDTO) *user.Account {
	return user.RehydrateAccount(user.RehydrateAccountArgs{
		ID:              user.ID(dto.ID),
		Username:        dto.Username,
		Email:           dto.Email,
		PassHash:        dto.PassHash,
		IsActive:        dto.IsActive,
		IsEmailVerified: dto.IsEmailVerified,
		Photo:           photoFromColumns(dto.PhotoS3Key, dto.PhotoURL),
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
	})
}

type ApplicationDTO struct {
	ID         string
	AccountID  string
	FullName   string
	Position   string
	Phone      string
	Slogan     string
	Manifesto  string
	PhotoS3Key *string
	PhotoURL   *string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func DomainToApplicationDTO(a *candidate.Application) ApplicationDTO {
	key, url := photoColumns(a.Photo())
	return ApplicationDTO{
		ID:         a.ID().String(),
		AccountID:  a.AccountID().String(),
		FullName:   a.FullName(),
		Position:   a.Position().String(),
		Phone:      a.Phone(),
		Slogan:     a.Slogan(),
		Manifesto:  a.Manifesto(),
		PhotoS3Key: key,
		PhotoURL:   url,
		Status:     a.Status().String(),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
}

func ApplicationToDomain(dto ApplicationDTO) *candidate.Application {
	return candidate.RehydrateApplication(candidate.RehydrateApplicationArgs{
		ID:        candidate.ID(dto.ID),
		AccountID: user.ID(dto.AccountID),
		FullName:  dto.FullName,
		Position:  candidate.Position(dto.Position),
		Phone:     dto.Phone,
		Slogan:    dto.Slogan,
		Manifesto: dto.Manifesto,
		Photo:     photoFromColumns(dto.PhotoS3Key, dto.PhotoURL),
		Status:    candidate.Status(dto.Status),
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	})
}

func photoColumns(p photo.Photo) (key, url *string) {
	if p.IsZero() {
		return nil, nil
	}
	return &p.S3Key, &p.URL
}

func photoFromColumns(key, url *string) photo.Photo {
	var p photo.Photo
	if key != nil {
		p.S3Key = *key
	}
	if url != nil {
		p.URL = *url
	}
	return p
}
