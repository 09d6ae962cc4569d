package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	somase "github.com/mubas-somase/voting-backend"
	"github.com/mubas-somase/voting-backend/internal/adapters/repos/postgres"
	"github.com/mubas-somase/voting-backend/internal/adapters/services/activation"
	"github.com/mubas-somase/voting-backend/internal/adapters/services/s3"
	auditapp "github.com/mubas-somase/voting-backend/internal/application/audit"
	candidateapp "github.com/mubas-somase/voting-backend/internal/application/candidate"
	mailapp "github.com/mubas-somase/voting-backend/internal/application/mail"
	registrationapp "github.com/mubas-somase/voting-backend/internal/application/registration"
	"github.com/mubas-somase/voting-backend/internal/domain/auditlog"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	httpport "github.com/mubas-somase/voting-backend/internal/ports/http"
	"github.com/mubas-somase/voting-backend/internal/ports/http/middlewares"
	watermillport "github.com/mubas-somase/voting-backend/internal/ports/watermill"
	"github.com/mubas-somase/voting-backend/pkg/env"
	pgpkg "github.com/mubas-somase/voting-backend/pkg/postgres"
	"github.com/mubas-somase/voting-backend/pkg/watermillx"
	"github.com/mubas-somase/voting-backend/tests/fixtures"
	"github.com/mubas-somase/voting-backend/tests/mocks"
)

var activationPathRegex = regexp.MustCompile(`/activate/[^/\s"]+/[^/\s"]+/`)

type candidateRepo struct {
	*postgres.AccountRepo
	*postgres.ApplicationRepo
}

// TestSuite runs the HTTP port against real postgres and minio containers.
// Mail delivery is mocked.
type TestSuite struct {
	suite.Suite

	pgContainer    *tcpostgres.PostgresContainer
	minioContainer *minio.MinioContainer
	pool           *pgxpool.Pool
	router         *message.Router
	stopRouter     context.CancelFunc

	Handler   http.Handler
	Sender    *mocks.MailSender
	Storage   *s3.Client
	Accounts  *postgres.AccountRepo
	AuditLogs *postgres.AuditLogRepo
}

func (s *TestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(s.T())

	ctx := context.Background()

	var err error
	s.pgContainer, err = tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("somase_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)

	dsn, err := s.pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(pgpkg.Migrate(strings.Replace(dsn, "postgres://", "pgx5://", 1), somase.Migrations))

	s.pool, err = pgpkg.NewPgxPool(ctx, dsn, env.Test)
	s.Require().NoError(err)

	s.minioContainer, err = minio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	s.Require().NoError(err)
	endpoint, err := s.minioContainer.ConnectionString(ctx)
	s.Require().NoError(err)

	s.Storage, err = s3.NewClient(ctx, s3.Args{
		Endpoint:  "http://" + endpoint,
		AccessKey: s.minioContainer.Username,
		SecretKey: s.minioContainer.Password,
		Bucket:    "somase-test",
		Region:    "us-east-1",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.Storage.EnsureBucket(ctx))

	s.Accounts = postgres.NewAccountRepo(s.pool, nil, nil)
	s.AuditLogs = postgres.NewAuditLogRepo(s.pool, nil, nil)
	s.Sender = mocks.NewMailSender()
	photos := photo.NewService("http://" + endpoint + "/somase-test")

	wmlogger := watermillx.NewOTelFilteredSlogLogger(slog.Default(), slog.LevelWarn)
	s.Require().NoError(watermillx.InitializeEventSchema(ctx, s.pool, wmlogger, watermillport.Streams...))
	s.router, err = message.NewRouter(message.RouterConfig{}, wmlogger)
	s.Require().NoError(err)
	wmport, err := watermillport.NewPortForTest(s.router, s.pool, wmlogger)
	s.Require().NoError(err)
	s.Require().NoError(wmport.Run(ctx, watermillport.AppEventHandlers{
		Audit: auditapp.NewApp(auditapp.Args{Repo: s.AuditLogs}),
	}))

	routerCtx, cancel := context.WithCancel(ctx)
	s.stopRouter = cancel
	go func() {
		_ = s.router.Run(routerCtx)
	}()
	<-s.router.Running()

	port := httpport.NewPort(httpport.Args{
		RegistrationApp: registrationapp.NewApp(registrationapp.Args{
			Repo:         s.Accounts,
			Storage:      s.Storage,
			PhotoService: photos,
			Issuer:       activation.NewIssuer([]byte("integration-activation-secret"), activation.DefaultTTL),
			Sender:       s.Sender,
			FrontendURL:  fixtures.FrontendURL,
			LinkTTL:      activation.DefaultTTL,
		}),
		CandidateApp: candidateapp.NewApp(candidateapp.Args{
			Repo:         candidateRepo{AccountRepo: s.Accounts, ApplicationRepo: postgres.NewApplicationRepo(s.pool, nil, nil)},
			Storage:      s.Storage,
			PhotoService: photos,
		}),
		MailApp: mailapp.NewApp(mailapp.Args{Diagnoser: mocks.NewDiagnoser(mail.Settings{Host: "localhost", Port: 25})}),
		Middleware: middlewares.NewMiddleware(middlewares.Args{
			Secret: []byte(fixtures.SessionSecret),
		}),
		FrontendURL: fixtures.FrontendURL,
	})
	s.Handler = port.Route(nil)
}

func (s *TestSuite) TearDownSuite() {
	if s.stopRouter != nil {
		s.stopRouter()
	}
	if s.router != nil {
		_ = s.router.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		s.NoError(testcontainers.TerminateContainer(s.pgContainer))
	}
	if s.minioContainer != nil {
		s.NoError(testcontainers.TerminateContainer(s.minioContainer))
	}
}

func (s *TestSuite) AfterTest(_, _ string) {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE TABLE audit_logs, candidate_applications, accounts CASCADE")
	s.Require().NoError(err)
	s.Sender.Reset()
}

// Do serves req and decodes the JSON body.
func (s *TestSuite) Do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func (s *TestSuite) JSON(method, target string, v any) *http.Request {
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		s.Require().NoError(err)
		body = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ActivationPath pulls the activation path out of the last mail sent to email.
func (s *TestSuite) ActivationPath(email string) string {
	sent := s.Sender.GetSentMails()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To != email {
			continue
		}
		path := activationPathRegex.FindString(sent[i].TextBody)
		s.Require().NotEmpty(path, "no activation link in %q", sent[i].TextBody)
		return path
	}
	s.FailNow(fmt.Sprintf("no mail sent to %s", email))
	return ""
}

// RequireAuditEntry waits for the outbox to deliver an entry for accountID.
func (s *TestSuite) RequireAuditEntry(accountID user.ID, action auditlog.Action) *auditlog.Entry {
	var found *auditlog.Entry
	s.Require().Eventually(func() bool {
		entries, err := s.AuditLogs.ListEntriesByAccount(context.Background(), accountID)
		if err != nil {
			return false
		}
		for _, e := range entries {
			if e.Action == action {
				found = e
				return true
			}
		}
		return false
	}, 10*time.Second, 50*time.Millisecond, "audit entry %s for %s", action, accountID)
	return found
}
