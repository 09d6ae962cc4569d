package http_test

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candidateapp "github.com/mubas-somase/voting-backend/internal/application/candidate"
	mailapp "github.com/mubas-somase/voting-backend/internal/application/mail"
	"github.com/mubas-somase/voting-backend/internal/application/mail/mailcmd"
	registrationapp "github.com/mubas-somase/voting-backend/internal/application/registration"
	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/mail"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	porthttp "github.com/mubas-somase/voting-backend/internal/ports/http"
	"github.com/mubas-somase/voting-backend/internal/ports/http/middlewares"
	"github.com/mubas-somase/voting-backend/pkg/httpx"
	"github.com/mubas-somase/voting-backend/tests/builders"
	"github.com/mubas-somase/voting-backend/tests/fixtures"
	"github.com/mubas-somase/voting-backend/tests/mocks"
)

type candidateRepo struct {
	*mocks.AccountRepo
	*mocks.ApplicationRepo
}

type PortTestSuite struct {
	Handler      http.Handler
	Accounts     *mocks.AccountRepo
	Applications *mocks.ApplicationRepo
	Storage      *mocks.PhotoStorage
	Sender       *mocks.MailSender
	Issuer       *mocks.TokenIssuer
	Diagnoser    *mocks.Diagnoser
}

type suiteOptions struct {
	registerLimit int
}

func NewPortTestSuite(t *testing.T, opts ...func(*suiteOptions)) *PortTestSuite {
	t.Helper()

	var o suiteOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &PortTestSuite{
		Accounts:     mocks.NewAccountRepo(),
		Applications: mocks.NewApplicationRepo(),
		Storage:      mocks.NewPhotoStorage(),
		Sender:       mocks.NewMailSender(),
		Issuer:       mocks.NewTokenIssuer(),
		Diagnoser: mocks.NewDiagnoser(mail.Settings{
			Host: "smtp.gmail.com", Port: 587, UseTLS: true,
			User: "somase@mubas.ac.mw", From: "somase@mubas.ac.mw", Timeout: 15 * time.Second,
		}),
	}
	photos := photo.NewService("http://localhost:9000/somase")
	errhandler := httpx.NewErrorHandler()

	port := porthttp.NewPort(porthttp.Args{
		RegistrationApp: registrationapp.NewApp(registrationapp.Args{
			Repo:         s.Accounts,
			Storage:      s.Storage,
			PhotoService: photos,
			Issuer:       s.Issuer,
			Sender:       s.Sender,
			FrontendURL:  fixtures.FrontendURL,
			LinkTTL:      24 * time.Hour,
		}),
		CandidateApp: candidateapp.NewApp(candidateapp.Args{
			Repo:         candidateRepo{AccountRepo: s.Accounts, ApplicationRepo: s.Applications},
			Storage:      s.Storage,
			PhotoService: photos,
		}),
		MailApp: mailapp.NewApp(mailapp.Args{Diagnoser: s.Diagnoser}),
		Middleware: middlewares.NewMiddleware(middlewares.Args{
			Secret:     []byte(fixtures.SessionSecret),
			Errhandler: errhandler,
		}),
		Errhandler:    errhandler,
		FrontendURL:   fixtures.FrontendURL,
		RegisterLimit: o.registerLimit,
		RateWindow:    time.Minute,
	})
	s.Handler = port.Route(nil)

	return s
}

func (s *PortTestSuite) Do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req.Header.Set("Origin", fixtures.FrontendURL)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	assert.Equal(t, fixtures.FrontendURL, rec.Header().Get("Access-Control-Allow-Origin"), "CORS origin on %s %s", req.Method, req.URL)
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"), "CORS credentials on %s %s", req.Method, req.URL)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func jsonRequest(method, target string, v any) *http.Request {
	var body io.Reader
	if v != nil {
		b, _ := json.Marshal(v)
		body = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registerBody() map[string]string {
	return map[string]string{
		"username":  fixtures.ValidUsername,
		"email":     fixtures.ValidEmail,
		"password":  fixtures.ValidPassword,
		"password2": fixtures.ValidPassword,
	}
}

func TestPort_CORSOnEveryResponse(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{name: "preflight", req: httptest.NewRequest(http.MethodOptions, "/register/", nil), wantStatus: http.StatusOK},
		{name: "malformed json", req: httptest.NewRequest(http.MethodPost, "/register/", strings.NewReader("{")), wantStatus: http.StatusBadRequest},
		{name: "validation error", req: jsonRequest(http.MethodPost, "/register/", map[string]string{"email": "x"}), wantStatus: http.StatusBadRequest},
		{name: "not found", req: httptest.NewRequest(http.MethodGet, "/nowhere", nil), wantStatus: http.StatusNotFound},
		{name: "method not allowed", req: httptest.NewRequest(http.MethodPut, "/register", nil), wantStatus: http.StatusMethodNotAllowed},
		{name: "unauthorized", req: httptest.NewRequest(http.MethodDelete, "/account", nil), wantStatus: http.StatusUnauthorized},
		{name: "query", req: httptest.NewRequest(http.MethodGet, "/candidates/check-application?email="+fixtures.OtherEmail, nil), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, _ := s.Do(t, tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestPort_Register_JSON(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)

	rec, body := s.Do(t, jsonRequest(http.MethodPost, "/register/", registerBody()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["email_sent"])
	assert.NotEmpty(t, body["message"])

	a := s.Accounts.AssertAccountExistsByEmail(t, fixtures.ValidEmail).AssertInactive().Account()
	assert.Equal(t, a.ID().String(), body["user_id"])
	s.Sender.AssertMailSent(t, fixtures.ValidEmail, "Activate")
}

func TestPort_Register_Multipart(t *testing.T) {
	t.Parallel()

	t.Run("with photo", func(t *testing.T) {
		t.Parallel()
		s := NewPortTestSuite(t)

		form, contentType := fixtures.MultipartForm(registerBody(), "profile_photo", &fixtures.PNGPhoto)
		req := httptest.NewRequest(http.MethodPost, "/register/", form)
		req.Header.Set("Content-Type", contentType)

		rec, _ := s.Do(t, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		keys := s.Storage.Keys()
		require.Len(t, keys, 1)
		assert.True(t, strings.HasPrefix(keys[0], "profile_photos/"))
		assert.Equal(t, "image/png", s.Storage.AssertFileExists(t, keys[0]).ContentType)
	})

	t.Run("content type is sniffed", func(t *testing.T) {
		t.Parallel()
		s := NewPortTestSuite(t)

		disguised := fixtures.PDFPhoto
		disguised.ContentType = "image/jpeg"
		disguised.Filename = "me.jpg"
		form, contentType := fixtures.MultipartForm(registerBody(), "profile_photo", &disguised)
		req := httptest.NewRequest(http.MethodPost, "/register/", form)
		req.Header.Set("Content-Type", contentType)

		rec, body := s.Do(t, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Equal(t, "INVALID_ATTACHMENT", body["code"])
		assert.Contains(t, body["details"], "profile_photo")
		s.Accounts.AssertCount(t, 0)
	})
}

func TestPort_Register_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(map[string]string)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing password2",
			mutate:     func(b map[string]string) { delete(b, "password2") },
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FIELD",
		},
		{
			name:       "gmail address",
			mutate:     func(b map[string]string) { b["email"] = "chisomo@gmail.com" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_EMAIL_DOMAIN",
		},
		{
			name:       "no uppercase",
			mutate:     func(b map[string]string) { b["password"], b["password2"] = "abc12345", "abc12345" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "WEAK_PASSWORD",
		},
		{
			name:       "mismatch",
			mutate:     func(b map[string]string) { b["password2"] = "Abc123456" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "PASSWORD_MISMATCH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewPortTestSuite(t)

			b := registerBody()
			tt.mutate(b)
			rec, body := s.Do(t, jsonRequest(http.MethodPost, "/register/", b))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["error"])
			s.Accounts.AssertCount(t, 0)
		})
	}
}

func TestPort_Register_EmailAlreadyRegistered(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	s.Accounts.SeedAccount(t, builders.NewAccountBuilder().WithEmail(fixtures.ValidEmail).Verified().Build())

	rec, body := s.Do(t, jsonRequest(http.MethodPost, "/register/", registerBody()))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", body["code"])
}

func TestPort_Register_DeliveryFailure(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	s.Sender.FailWith(mail.NewDeliveryError(mail.KindAuthentication, errors.New("535 5.7.8 bad credentials")))

	rec, body := s.Do(t, jsonRequest(http.MethodPost, "/register/", registerBody()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DELIVERY_FAILED", body["code"])
	assert.Equal(t, "smtp_authentication", body["error_type"])
	assert.NotContains(t, body["error"], "535")
	s.Accounts.AssertAccountNotExistsByEmail(t, fixtures.ValidEmail)
}

func TestPort_Register_RateLimited(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t, func(o *suiteOptions) { o.registerLimit = 1 })

	rec, _ := s.Do(t, jsonRequest(http.MethodPost, "/register/", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := s.Do(t, jsonRequest(http.MethodPost, "/register/", registerBody()))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestPort_Activate(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	a := builders.NewAccountBuilder().Unverified().Build()
	s.Accounts.SeedAccount(t, a)
	token, err := s.Issuer.Issue(a)
	require.NoError(t, err)
	uid := base64.RawURLEncoding.EncodeToString([]byte(a.ID().String()))

	rec, body := s.Do(t, httptest.NewRequest(http.MethodGet, "/activate/"+uid+"/bad-token/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ACTIVATION_LINK", body["code"])
	assert.Equal(t, fixtures.FrontendURL+"/register", body["redirect_url"])

	rec, body = s.Do(t, httptest.NewRequest(http.MethodGet, "/activate/"+uid+"/"+token+"/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, fixtures.FrontendURL+"/login", body["redirect_url"])
	s.Accounts.AssertAccountExistsByEmail(t, a.Email()).AssertActive()

	rec, body = s.Do(t, httptest.NewRequest(http.MethodGet, "/activate/"+uid+"/"+token+"/", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "activation is idempotent")
	assert.Equal(t, fixtures.FrontendURL+"/login", body["redirect_url"])
}

func TestPort_DeleteAccount(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	a := builders.NewAccountBuilder().Verified().Build()
	s.Accounts.SeedAccount(t, a)

	req := httptest.NewRequest(http.MethodDelete, "/account", nil)
	req.AddCookie(&http.Cookie{
		Name:  middlewares.SessionCookie,
		Value: builders.SessionToken(a.ID().String()).BuildSignedStringT(t),
	})
	rec, body := s.Do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Account deleted successfully", body["message"])
	s.Accounts.AssertAccountNotExistsByID(t, a.ID())

	req = httptest.NewRequest(http.MethodDelete, "/account", nil)
	req.Header.Set("Authorization", "Bearer "+builders.SessionToken(a.ID().String()).BuildSignedStringT(t))
	rec, body = s.Do(t, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func applyBody(position string) map[string]string {
	return map[string]string{
		"email":     fixtures.ValidEmail,
		"full_name": "Chisomo Banda",
		"position":  position,
		"phone":     "+265 999 123 456",
		"slogan":    "Students first",
		"manifesto": "I will represent every SOMASE member.",
	}
}

func TestPort_Candidate(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	a := builders.NewAccountBuilder().WithEmail(fixtures.ValidEmail).Verified().Build()
	s.Accounts.SeedAccount(t, a)

	rec, body := s.Do(t, jsonRequest(http.MethodPost, "/candidates/apply/", applyBody(candidate.PositionPresident.String())))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	application, ok := body["application"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "president", application["position"])
	assert.Equal(t, "pending", application["status"])
	assert.NotEmpty(t, application["id"])

	rec, body = s.Do(t, httptest.NewRequest(http.MethodGet, "/api/candidates/check-application/?email="+fixtures.ValidEmail, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["has_applied"])
	assert.Equal(t, "president", body["position"])

	rec, body = s.Do(t, jsonRequest(http.MethodPost, "/candidates/apply/", applyBody(candidate.PositionPresident.String())))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_POSITION_APPLICATION", body["code"])

	rec, body = s.Do(t, jsonRequest(http.MethodPost, "/candidate/register/", applyBody(candidate.PositionTreasurer.String())))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_APPLICATION", body["code"])
}

func TestPort_Candidate_Errors(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	s.Accounts.SeedAccount(t, builders.NewAccountBuilder().WithEmail(fixtures.OtherEmail).Unverified().Build())

	rec, body := s.Do(t, jsonRequest(http.MethodPost, "/candidates/apply", applyBody("president")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_EMAIL", body["code"])

	b := applyBody("president")
	b["email"] = fixtures.OtherEmail
	rec, body = s.Do(t, jsonRequest(http.MethodPost, "/candidates/apply", b))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_NOT_VERIFIED", body["code"])

	rec, body = s.Do(t, httptest.NewRequest(http.MethodGet, "/candidates/check-application", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["details"], "email")

	s.Accounts.SeedAccount(t, builders.NewAccountBuilder().WithEmail(fixtures.ValidEmail).Verified().Build())
	form, contentType := fixtures.MultipartForm(applyBody("treasurer"), "profile_photo", &fixtures.PDFPhoto)
	req := httptest.NewRequest(http.MethodPost, "/candidates/apply", form)
	req.Header.Set("Content-Type", contentType)
	rec, body = s.Do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_ATTACHMENT", body["code"])
	assert.Contains(t, body["details"], "profile_photo")
	s.Applications.AssertCount(t, 0)
}

func TestPort_EmailSelfTest(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)

	rec, body := s.Do(t, httptest.NewRequest(http.MethodGet, "/email/test/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["smtp_connection"])
	assert.Equal(t, false, body["email_send"])
	config, ok := body["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "smtp.gmail.com", config["host"])
	assert.NotContains(t, config, "password")
	s.Diagnoser.AssertNoMailSent(t)

	rec, body = s.Do(t, httptest.NewRequest(http.MethodPost, "/email/test/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["email_send"])
	s.Diagnoser.AssertMailSent(t, "somase@mubas.ac.mw", mailcmd.TestSubject)
}

func TestPort_EmailSelfTest_ProbeFails(t *testing.T) {
	t.Parallel()

	s := NewPortTestSuite(t)
	s.Diagnoser.ProbeErr = mail.NewDeliveryError(mail.KindConnection, errors.New("dial tcp: connection refused"))

	rec, body := s.Do(t, httptest.NewRequest(http.MethodGet, "/email/test", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, body["smtp_connection"])
	assert.NotEmpty(t, body["details"])
}
