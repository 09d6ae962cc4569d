package mail

import (
	"errors"
	"fmt"
	"time"
)

type Payload struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Kind classifies why a message could not be delivered.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindConnection     Kind = "connection"
	KindDisconnected   Kind = "disconnected"
	KindTimeout        Kind = "timeout"
	KindGeneral        Kind = "general"
	KindUnexpected     Kind = "unexpected"
)

func (k Kind) String() string {
	return string(k)
}

// ErrorType is the machine readable form reported to clients, e.g. "smtp_timeout".
func (k Kind) ErrorType() string {
	return "smtp_" + string(k)
}

type DeliveryError struct {
	Kind Kind
	Err  error
}

func NewDeliveryError(kind Kind, err error) *DeliveryError {
	return &DeliveryError{Kind: kind, Err: err}
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mail delivery failed (%s)", e.Kind)
	}
	return fmt.Sprintf("mail delivery failed (%s): %s", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// KindOf returns the delivery failure kind carried by err, or KindUnexpected
// when err is not a DeliveryError.
func KindOf(err error) Kind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// Settings is the SMTP configuration as it may be shown to operators. It
// never carries the password.
type Settings struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	UseTLS  bool          `json:"use_tls"`
	User    string        `json:"user"`
	From    string        `json:"from_email"`
	Timeout time.Duration `json:"-"`
}
