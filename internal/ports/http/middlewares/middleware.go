package middlewares

import (
	"log/slog"
	"net/netip"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/pkg/httpx"
)

var (
	tracer = otel.Tracer("somase/internal/ports/http/middlewares")
	logger = otelslog.NewLogger("somase/internal/ports/http/middlewares")
)

// Middleware holds the middlewares that need collaborators: session auth and
// rate limiting. Stateless ones (CORS, Logger, OTel) are plain functions.
type Middleware struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	secret     []byte
	limiter    Limiter
	errhandler *httpx.ErrorHandler

	trustedProxies []netip.Prefix
}

type Args struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	// Secret verifies HS256 session tokens.
	Secret     []byte
	Limiter    Limiter
	Errhandler *httpx.ErrorHandler
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	TrustedProxies []netip.Prefix
}

func NewMiddleware(args Args) *Middleware {
	m := &Middleware{
		tracer:     args.Tracer,
		logger:     args.Logger,
		secret:     args.Secret,
		limiter:    args.Limiter,
		errhandler: args.Errhandler,

		trustedProxies: args.TrustedProxies,
	}

	if m.tracer == nil {
		m.tracer = tracer
	}
	if m.logger == nil {
		m.logger = logger
	}
	if len(m.secret) == 0 {
		panic("secret key is required for auth middleware")
	}
	if m.limiter == nil {
		m.limiter = NewMemoryLimiter()
	}
	if m.errhandler == nil {
		m.errhandler = httpx.NewErrorHandler()
	}
	return m
}
