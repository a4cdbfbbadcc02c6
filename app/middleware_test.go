package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/afokou/bloglist/internal/tokenservice"
	"github.com/afokou/bloglist/internal/userservice"
)

// minimalApplication builds an application without any backing stores, enough
// for middleware that never touches the database.
func minimalApplication(cfg *Config) *application {
	return &application{
		config:       cfg,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokenService: tokenservice.NewService([]byte(cfg.AuthSecret), cfg.AuthTokenTTL),
	}
}

func TestRecoverPanic(t *testing.T) {
	app := minimalApplication(testConfig())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	app.recoverPanic(next).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.LimiterEnabled = true
	cfg.LimiterRPS = 2
	cfg.LimiterBurst = 4

	app := minimalApplication(cfg)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := app.rateLimit(next)

	// The first burst of requests from one client passes, the next is
	// rejected.
	for i := 0; i < 4; i++ {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"

		handler.ServeHTTP(rr, r)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	handler.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// A different client has its own allowance.
	rr = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:1234"

	handler.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.LimiterEnabled = false
	cfg.LimiterRPS = 1
	cfg.LimiterBurst = 1

	app := minimalApplication(cfg)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := app.rateLimit(next)

	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"

		handler.ServeHTTP(rr, r)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestAuthenticate(t *testing.T) {
	app := minimalApplication(testConfig())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.getUserContext(r)
		if user.IsAnonymous() {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := app.authenticate(next)

	t.Run("missing header leaves caller anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		handler.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Equal(t, "Authorization", rr.Header().Get("Vary"))
	})

	t.Run("malformed header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc123")

		handler.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer not-a-real-token")

		handler.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := tokenservice.NewService([]byte("other-secret"), time.Hour)
		token, err := other.Issue(1)
		assert.NoError(t, err)

		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		handler.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireAuthUser(t *testing.T) {
	app := minimalApplication(testConfig())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := app.requireAuthUser(next)

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = app.createUserContext(r, &userservice.AnonymousUser)

		handler.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("authenticated caller passes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = app.createUserContext(r, &userservice.User{ID: 1, Username: "alice"})

		handler.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
