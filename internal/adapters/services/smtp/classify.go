package smtp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/textproto"
	"syscall"

	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
)

type phase int

const (
	phaseDial phase = iota
	phaseSend
)

// authReplyCodes are the SMTP replies servers use to refuse credentials.
var authReplyCodes = map[int]struct{}{530: {}, 534: {}, 535: {}, 538: {}}

// classify maps a gomail or net/smtp error onto a delivery failure kind.
func classify(err error, p phase) mail.Kind {
	var (
		protoErr *textproto.Error
		netErr   net.Error
		opErr    *net.OpError
		dnsErr   *net.DNSError
		certErr  *tls.CertificateVerificationError
		unkAuth  x509.UnknownAuthorityError
		hostErr  x509.HostnameError
		recErr   tls.RecordHeaderError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return mail.KindTimeout
	case errors.As(err, &protoErr):
		if _, ok := authReplyCodes[protoErr.Code]; ok {
			return mail.KindAuthentication
		}
		return mail.KindGeneral
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, net.ErrClosed):
		return mail.KindDisconnected
	case errors.As(err, &dnsErr),
		errors.As(err, &certErr),
		errors.As(err, &unkAuth),
		errors.As(err, &hostErr),
		errors.As(err, &recErr),
		errors.As(err, &opErr),
		p == phaseDial && errors.As(err, &netErr):
		return mail.KindConnection
	default:
		return mail.KindUnexpected
	}
}
