package ctxs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
)

type ctxKey int

const (
	txKey ctxKey = iota
	sessionKey
)

// Session is the authenticated caller resolved by the auth middleware.
type Session struct {
	AccountID string
}

func (s *Session) SetSpanAttrs(span trace.Span) {
	if s == nil || span == nil {
		return
	}
	span.SetAttributes(attribute.String("session.account_id", s.AccountID))
}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

func Tx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok && tx != nil
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromCtx(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil || s.AccountID == "" {
		return nil, errorx.NewUnauthorized()
	}
	return s, nil
}
