package user

import (
	"github.com/mubas-somase/voting-backend/pkg/validationx"
)

// RegistrationForm holds the raw registration input.
type RegistrationForm struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

// MissingFields lists the required fields that are empty, in form order.
func (f RegistrationForm) MissingFields() []string {
	var missing []string
	if f.Username == "" {
		missing = append(missing, "username")
	}
	if f.Email == "" {
		missing = append(missing, "email")
	}
	if f.Password == "" {
		missing = append(missing, "password")
	}
	if f.Password2 == "" {
		missing = append(missing, "password2")
	}
	return missing
}

func CheckEmailDomain(email string) error {
	if !validationx.MubasEmailRegex.MatchString(email) {
		return ErrInvalidEmailDomain
	}
	return nil
}

// CheckPasswordPolicy reports the first rule the password breaks.
func CheckPasswordPolicy(password string) error {
	switch validationx.CheckPassword(password) {
	case validationx.PasswordTooShort:
		return ErrPasswordTooShort
	case validationx.PasswordTooLong:
		return ErrPasswordTooLong
	case validationx.PasswordNoDigit:
		return ErrPasswordNoDigit
	case validationx.PasswordNoUpper:
		return ErrPasswordNoUpper
	case validationx.PasswordNoLower:
		return ErrPasswordNoLower
	default:
		return nil
	}
}

func CheckPasswordsMatch(password, password2 string) error {
	if password != password2 {
		return ErrPasswordMismatch
	}
	return nil
}
