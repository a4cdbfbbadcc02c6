package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/afokou/bloglist/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
	}
}

// RegisterUser creates a new user account and publishes a user.registered
// event. The plaintext password never leaves this call.
func (s *UserService) RegisterUser(ctx context.Context, username, name, password string) (*User, error) {
	// Perform validation
	v := common.NewValidator()
	validateUsername(v, username)
	validateName(v, name)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Name:     name,
		Blogs:    []BlogRef{},
	}

	// Set the password hash
	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	// Insert the user into the database
	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	data := struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}{
		ID:       u.ID,
		Username: u.Username,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	// Publish the user registered event
	err = s.mb.Publish(ctx, eventData, common.UserRegisteredKey, common.EventExchange)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Authenticate verifies a username/password pair and returns the matching
// user. A missing user and a wrong password both surface as
// ErrAuthenticationFailure so callers cannot tell the two apart.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	v := common.NewValidator()
	v.Check(username != "", "username", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	// Get the user from the database
	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	// Compare the password hash
	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

// ListUsers returns every user with their blog references expanded.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	return s.m.listUsers(ctx)
}

// Reset removes every user, cascading to their blogs and comments. Meant for
// the testing reset endpoint only.
func (s *UserService) Reset(ctx context.Context) error {
	return s.m.deleteAllUsers(ctx)
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
