package smtp

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
)

type fakeSendCloser struct {
	sendErr error
	from    string
	to      []string
	raw     bytes.Buffer
	sends   int
	closed  bool
	// onClose, when set, is closed after Close runs.
	onClose chan struct{}
}

func (f *fakeSendCloser) Send(from string, to []string, msg io.WriterTo) error {
	f.sends++
	if f.sendErr != nil {
		return f.sendErr
	}
	f.from = from
	f.to = to
	_, err := msg.WriteTo(&f.raw)
	return err
}

func (f *fakeSendCloser) Close() error {
	f.closed = true
	if f.onClose != nil {
		close(f.onClose)
	}
	return nil
}

type fakeDialer struct {
	conn    *fakeSendCloser
	dialErr error
	block   chan struct{}
	dials   int
}

func (d *fakeDialer) Dial() (gomail.SendCloser, error) {
	d.dials++
	if d.block != nil {
		<-d.block
	}
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func testConfig() Config {
	return Config{
		Host:     "smtp.gmail.com",
		Port:     587,
		Username: "somase@mubas.ac.mw",
		Password: "app-password",
		From:     "MUBAS SOMASE <somase@mubas.ac.mw>",
		UseTLS:   true,
	}
}

func testPayload() mail.Payload {
	return mail.Payload{
		To:       "mse23-jbanda@mubas.ac.mw",
		Subject:  "Activate your account",
		TextBody: "Open http://localhost:5173/activate/abc/def/",
		HTMLBody: `<a href="http://localhost:5173/activate/abc/def/">Activate</a>`,
	}
}

func TestSender_SendVerificationEmail(t *testing.T) {
	t.Parallel()

	conn := &fakeSendCloser{}
	s := newSender(testConfig(), &fakeDialer{conn: conn})

	err := s.SendVerificationEmail(t.Context(), testPayload())
	require.NoError(t, err)

	assert.True(t, conn.closed)
	assert.Equal(t, 1, conn.sends)
	assert.Equal(t, "somase@mubas.ac.mw", conn.from)
	assert.Equal(t, []string{"mse23-jbanda@mubas.ac.mw"}, conn.to)

	raw := conn.raw.String()
	assert.Contains(t, raw, "Subject: Activate your account")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestSender_SendVerificationEmail_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dialErr  error
		sendErr  error
		wantKind mail.Kind
	}{
		{
			name:     "bad credentials",
			dialErr:  &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"},
			wantKind: mail.KindAuthentication,
		},
		{
			name:     "connection refused",
			dialErr:  &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			wantKind: mail.KindConnection,
		},
		{
			name:     "server hung up",
			sendErr:  io.EOF,
			wantKind: mail.KindDisconnected,
		},
		{
			name:     "connection reset mid session",
			sendErr:  &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)},
			wantKind: mail.KindDisconnected,
		},
		{
			name:     "recipient rejected",
			sendErr:  &textproto.Error{Code: 550, Msg: "5.1.1 mailbox unavailable"},
			wantKind: mail.KindGeneral,
		},
		{
			name:     "auth required at send",
			sendErr:  &textproto.Error{Code: 530, Msg: "5.7.0 Authentication Required"},
			wantKind: mail.KindAuthentication,
		},
		{
			name:     "unexpected",
			sendErr:  errors.New("gomail: invalid address"),
			wantKind: mail.KindUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newSender(testConfig(), &fakeDialer{
				conn:    &fakeSendCloser{sendErr: tt.sendErr},
				dialErr: tt.dialErr,
			})

			err := s.SendVerificationEmail(t.Context(), testPayload())
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, mail.KindOf(err))
		})
	}
}

func TestSender_Timeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	s := newSender(cfg, &fakeDialer{conn: &fakeSendCloser{}, block: block})

	start := time.Now()
	err := s.SendVerificationEmail(t.Context(), testPayload())

	require.Error(t, err)
	assert.Equal(t, mail.KindTimeout, mail.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestSender_LateConnectionDoesNotSend(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	conn := &fakeSendCloser{onClose: make(chan struct{})}

	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	s := newSender(cfg, &fakeDialer{conn: conn, block: block})

	err := s.SendVerificationEmail(t.Context(), testPayload())
	require.Error(t, err)
	assert.Equal(t, mail.KindTimeout, mail.KindOf(err))

	close(block)
	select {
	case <-conn.onClose:
	case <-time.After(time.Second):
		t.Fatal("connection was not closed after the dial finished")
	}
	assert.Zero(t, conn.sends)
	assert.Empty(t, conn.raw.String())
}

func TestSender_Probe(t *testing.T) {
	t.Parallel()

	conn := &fakeSendCloser{}
	s := newSender(testConfig(), &fakeDialer{conn: conn})
	require.NoError(t, s.Probe(t.Context()))
	assert.True(t, conn.closed)

	s = newSender(testConfig(), &fakeDialer{dialErr: &textproto.Error{Code: 534, Msg: "application-specific password required"}})
	err := s.Probe(t.Context())
	assert.Equal(t, mail.KindAuthentication, mail.KindOf(err))
}

func TestSender_Settings(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.From = ""
	got := newSender(cfg, &fakeDialer{}).Settings()

	assert.Equal(t, "smtp.gmail.com", got.Host)
	assert.Equal(t, 587, got.Port)
	assert.True(t, got.UseTLS)
	assert.Equal(t, cfg.Username, got.From)
	assert.Equal(t, DefaultTimeout, got.Timeout)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		phase phase
		want  mail.Kind
	}{
		{name: "deadline", err: context.DeadlineExceeded, phase: phaseSend, want: mail.KindTimeout},
		{name: "net timeout", err: &net.OpError{Op: "read", Err: timeoutErr{}}, phase: phaseSend, want: mail.KindTimeout},
		{name: "530", err: &textproto.Error{Code: 530}, phase: phaseDial, want: mail.KindAuthentication},
		{name: "538", err: &textproto.Error{Code: 538}, phase: phaseDial, want: mail.KindAuthentication},
		{name: "421", err: &textproto.Error{Code: 421}, phase: phaseSend, want: mail.KindGeneral},
		{name: "reset", err: &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, phase: phaseSend, want: mail.KindDisconnected},
		{name: "broken pipe", err: fmt.Errorf("write: %w", syscall.EPIPE), phase: phaseSend, want: mail.KindDisconnected},
		{name: "unexpected eof", err: io.ErrUnexpectedEOF, phase: phaseDial, want: mail.KindDisconnected},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "smtp.invalid"}, phase: phaseDial, want: mail.KindConnection},
		{name: "unknown authority", err: x509.UnknownAuthorityError{}, phase: phaseDial, want: mail.KindConnection},
		{name: "other", err: errors.New("boom"), phase: phaseSend, want: mail.KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classify(tt.err, tt.phase))
		})
	}
}
