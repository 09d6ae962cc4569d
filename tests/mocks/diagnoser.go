package mocks

import (
	"context"

	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
)

// Diagnoser is a MailSender that can also be probed.
type Diagnoser struct {
	*MailSender
	ProbeErr error
	Config   mail.Settings
}

func NewDiagnoser(settings mail.Settings) *Diagnoser {
	return &Diagnoser{MailSender: NewMailSender(), Config: settings}
}

func (d *Diagnoser) Probe(context.Context) error {
	return d.ProbeErr
}

func (d *Diagnoser) Settings() mail.Settings {
	return d.Config
}
