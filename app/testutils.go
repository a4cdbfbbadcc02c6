package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/afokou/bloglist/internal/blogservice"
	"github.com/afokou/bloglist/internal/common"
	"github.com/afokou/bloglist/internal/tokenservice"
	"github.com/afokou/bloglist/internal/userservice"
)

type mockProducer struct {
	mu        sync.Mutex
	published []common.BindingKey
}

func (p *mockProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, key)
	return nil
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig() *Config {
	return &Config{
		Port:           ":0",
		Environment:    "test",
		Version:        "test",
		AuthSecret:     "test-secret",
		AuthTokenTTL:   time.Hour,
		LimiterEnabled: false,
	}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	cfg := testConfig()
	mb := &mockProducer{}

	app := &application{
		config:       cfg,
		logger:       logger,
		userService:  userservice.NewUserService(db, mb),
		blogService:  blogservice.NewBlogService(db, cache, mb),
		tokenService: tokenservice.NewService([]byte(cfg.AuthSecret), cfg.AuthTokenTTL),
	}

	return app, db
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	if len(responseBody) > 0 {
		err = json.Unmarshal(responseBody, &envelope)
		if err != nil {
			t.Fatal(err)
		}
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, token *string) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, token)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, payload, token)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, payload, token)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, token)
}

// registerAndLogin registers a user through the API and returns the bearer
// token from a subsequent login.
func (ts *testServer) registerAndLogin(t *testing.T, username, name, password string) string {
	status, _, _ := ts.post(t, "/api/users", map[string]string{
		"username": username,
		"name":     name,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	status, _, body := ts.post(t, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusOK, status)

	token, ok := body["token"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	return token
}
