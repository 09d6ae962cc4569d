package mocks

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
)

type MailSender struct {
	mu        sync.Mutex
	sentMails []mail.Payload
	attempts  int
	failWith  error
}

func NewMailSender() *MailSender {
	return &MailSender{
		sentMails: make([]mail.Payload, 0),
	}
}

// FailWith makes every following send return err; nil restores delivery.
func (m *MailSender) FailWith(err error) *MailSender {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failWith = err
	return m
}

func (m *MailSender) SendVerificationEmail(_ context.Context, payload mail.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.failWith != nil {
		return m.failWith
	}
	m.sentMails = append(m.sentMails, payload)
	return nil
}

// Reset forgets sent mails and attempts and restores delivery.
func (m *MailSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sentMails = m.sentMails[:0]
	m.attempts = 0
	m.failWith = nil
}

func (m *MailSender) GetSentMails() []mail.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]mail.Payload{}, m.sentMails...)
}

func (m *MailSender) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *MailSender) AssertMailSent(t *testing.T, to, subject string) mail.Payload {
	t.Helper()

	for _, p := range m.GetSentMails() {
		if p.To == to && strings.Contains(p.Subject, subject) {
			return p
		}
	}
	t.Errorf("expected mail to %s with subject containing %q not found", to, subject)
	return mail.Payload{}
}

func (m *MailSender) AssertNoMailSent(t *testing.T) {
	t.Helper()

	if sent := m.GetSentMails(); len(sent) > 0 {
		t.Errorf("expected no mails, got %d", len(sent))
	}
}
