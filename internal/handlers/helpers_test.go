package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/glossahub/glossahub-backend/internal/config"
	"github.com/glossahub/glossahub-backend/internal/database"
	"github.com/glossahub/glossahub-backend/internal/models"
	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// testEnv wires the handler globals to fakes: sqlmock for PostgreSQL,
// miniredis for sessions and counters, a capturing mailer for SMTP.
type testEnv struct {
	mock sqlmock.Sqlmock
	mr   *miniredis.Miniredis
	mail *fakeMailer
	cfg  *config.Config
}

type sentMail struct {
	subject    string
	body       string
	recipients []string
	replyTo    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(subject, body string, recipients []string, replyTo string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{subject, body, recipients, replyTo})
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	database.PostgresDB = db

	mr, err := miniredis.Run()
	require.NoError(t, err)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mail := &fakeMailer{}
	services.Mail = mail

	c := &config.Config{
		AuthBackends:        []string{"email"},
		AuthMaxAttempts:     5,
		RegistrationOpen:    true,
		OfferHosting:        true,
		AdminEmails:         []string{"admin@example.com"},
		EmailSubjectPrefix:  "[GlossaHub] ",
		MailRateLimitMax:    5,
		MailRateLimitWindow: 3600,
	}
	Init(c)

	t.Cleanup(func() {
		db.Close()
		mr.Close()
		database.PostgresDB = nil
		database.RedisClient = nil
		services.Mail = nil
		cfg = nil
		registry = nil
		cloudinaryService = nil
	})

	return &testEnv{mock: mock, mr: mr, mail: mail, cfg: c}
}

func testUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Username:  "jane",
		Email:     "jane@example.com",
		FullName:  "Jane Translator",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// login creates a live session for the user and returns its token.
func (e *testEnv) login(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := services.CreateSession(user.ID)
	require.NoError(t, err)
	return token
}

// expectUserByID queues the user lookup done on every authenticated request.
func (e *testEnv) expectUserByID(user *models.User) {
	e.mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(user.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "full_name", "password_hash", "is_active", "is_demo", "created_at",
		}).AddRow(user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
			user.IsActive, user.IsDemo, user.CreatedAt))
}

func doRequest(handler http.HandlerFunc, r *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

// withChiParam injects a chi URL parameter when calling a handler directly.
// Repeated calls accumulate parameters on the same route context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
