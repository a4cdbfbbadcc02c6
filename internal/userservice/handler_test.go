package userservice

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/afokou/bloglist/internal/common"
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

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, *mockProducer, func() error) {
	db := common.TestDB("file://../../migrations", t)
	mb := &mockProducer{}

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM users")
		return err
	}

	return NewUserService(db, mb), db, mb, cleanup
}

func TestRegisterUser(t *testing.T) {
	s, db, mb, cleanup := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		username    string
		fullName    string
		password    string
		expectedErr error
	}{
		{
			name:        "valid user",
			username:    "alice",
			fullName:    "Alice Example",
			password:    "secret1",
			expectedErr: nil,
		},
		{
			name:        "missing username",
			username:    "",
			fullName:    "Alice Example",
			password:    "secret1",
			expectedErr: common.ValidationError{Errors: map[string]string{"username": "must be provided"}},
		},
		{
			name:        "missing name",
			username:    "alice",
			fullName:    "",
			password:    "secret1",
			expectedErr: common.ValidationError{Errors: map[string]string{"name": "must be provided"}},
		},
		{
			name:        "short password",
			username:    "alice",
			fullName:    "Alice Example",
			password:    "ab",
			expectedErr: common.ValidationError{Errors: map[string]string{"password": "must be between 3 and 72 characters long"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			user, err := s.RegisterUser(ctx, tc.username, tc.fullName, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			var count int
			if tc.expectedErr == nil {
				assert.NotNil(t, user)
				assert.NotZero(t, user.ID)

				err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			} else {
				err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 0, count)
			}

			t.Cleanup(func() {
				assert.NoError(t, cleanup())
			})
		})
	}

	assert.Contains(t, mb.published, common.UserRegisteredKey)
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.RegisterUser(ctx, "alice", "Alice Example", "secret1")
	assert.NoError(t, err)

	// A second registration with the same username must fail and must not
	// create a second record.
	_, err = s.RegisterUser(ctx, "alice", "Another Alice", "secret2")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'alice'").Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuthenticate(t *testing.T) {
	s, _, _, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	registered, err := s.RegisterUser(ctx, "alice", "Alice Example", "secret1")
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		username    string
		password    string
		expectedErr error
	}{
		{name: "valid credentials", username: "alice", password: "secret1"},
		{name: "wrong password", username: "alice", password: "wrong", expectedErr: ErrAuthenticationFailure},
		{name: "unknown user", username: "nobody", password: "secret1", expectedErr: ErrAuthenticationFailure},
		{name: "missing password", username: "alice", password: "", expectedErr: common.ValidationError{Errors: map[string]string{"password": "must be provided"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := s.Authenticate(ctx, tc.username, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			if tc.expectedErr == nil {
				assert.Equal(t, registered.ID, user.ID)
				assert.Equal(t, "alice", user.Username)
			}
		})
	}
}

func TestListUsersExpandsBlogs(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice, err := s.RegisterUser(ctx, "alice", "Alice Example", "secret1")
	assert.NoError(t, err)

	_, err = s.RegisterUser(ctx, "bob", "Bob Example", "secret2")
	assert.NoError(t, err)

	_, err = db.Exec("INSERT INTO blogs (title, author, url, user_id) VALUES ($1, $2, $3, $4)", "T", "A", "http://u", alice.ID)
	assert.NoError(t, err)

	users, err := s.ListUsers(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	assert.Equal(t, "alice", users[0].Username)
	assert.Len(t, users[0].Blogs, 1)
	assert.Equal(t, "T", users[0].Blogs[0].Title)
	assert.Equal(t, "http://u", users[0].Blogs[0].URL)

	// A user without blogs serializes an empty list, not null.
	assert.NotNil(t, users[1].Blogs)
	assert.Len(t, users[1].Blogs, 0)
}
