package postgres

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("somase/internal/adapters/repos/postgres")
	logger = otelslog.NewLogger("somase/internal/adapters/repos/postgres")
)
