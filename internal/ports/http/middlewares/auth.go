package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/ctxs"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
)

const (
	SessionCookie  = "somase_session"
	maxTokenLength = 2048
)

// Auth resolves the caller from the session cookie or a Bearer token and
// stores it in the request context as a ctxs.Session.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "AuthMiddleware")
		defer span.End()

		raw, err := sessionToken(r)
		if err != nil {
			m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "missing session token")
			return
		}

		session, err := m.parseSession(raw)
		if err != nil {
			m.unauthorized(w, r, span, err)
			return
		}

		session.SetSpanAttrs(span)
		next.ServeHTTP(w, r.WithContext(ctxs.WithSession(ctx, session)))
	})
}

func (m *Middleware) parseSession(raw string) (*ctxs.Session, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	id, err := user.ParseID(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", sub, err)
	}

	return &ctxs.Session{AccountID: id.String()}, nil
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	if errors.Is(err, jwt.ErrTokenExpired) {
		m.errhandler.HandleError(w, r, span, errorx.NewTokenExpired().WithCause(err), "session token expired")
		return
	}
	m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "invalid session token")
}

func sessionToken(r *http.Request) (string, error) {
	var raw string
	if c, err := r.Cookie(SessionCookie); err == nil {
		raw = c.Value
	} else if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", errors.New("authorization header is not a bearer token")
		}
		raw = strings.TrimSpace(value)
	}

	if raw == "" {
		return "", errors.New("no session token")
	}
	if len(raw) > maxTokenLength {
		return "", errors.New("session token too long")
	}
	return raw, nil
}
