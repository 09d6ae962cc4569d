package postgres

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	somase "github.com/mubas-somase/voting-backend"
	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/env"
	"github.com/mubas-somase/voting-backend/pkg/postgres"
	"github.com/mubas-somase/voting-backend/pkg/watermillx"
)

var (
	poolOnce    sync.Once
	sharedPool  *pgxpool.Pool
	poolErr     error
	pgContainer *tcpostgres.PostgresContainer
)

func TestMain(m *testing.M) {
	code := m.Run()

	if sharedPool != nil {
		sharedPool.Close()
	}
	if pgContainer != nil {
		_ = testcontainers.TerminateContainer(pgContainer)
	}
	os.Exit(code)
}

// testPool starts one postgres container for the whole package, migrated and
// with the outbox tables in place.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	poolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, poolErr = tcpostgres.Run(ctx, "postgres:17-alpine",
			tcpostgres.WithDatabase("somase_test"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			tcpostgres.BasicWaitStrategies(),
		)
		if poolErr != nil {
			return
		}

		var dsn string
		dsn, poolErr = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if poolErr != nil {
			return
		}

		if poolErr = postgres.Migrate(strings.Replace(dsn, "postgres://", "pgx5://", 1), somase.Migrations); poolErr != nil {
			return
		}

		sharedPool, poolErr = postgres.NewPgxPool(ctx, dsn, env.Test)
		if poolErr != nil {
			return
		}

		poolErr = watermillx.InitializeEventSchema(ctx, sharedPool, watermill.NopLogger{},
			user.AccountEventStreamName,
			candidate.ApplicationEventStreamName,
		)
	})
	require.NoError(t, poolErr)

	return sharedPool
}
