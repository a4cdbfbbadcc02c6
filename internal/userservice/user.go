package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrNotFound          = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

// uniqueViolationError reports whether err is a unique constraint violation
// on the named constraint.
func uniqueViolationError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// insertUser persists a new user. Username uniqueness is enforced by the
// database constraint, so concurrent registrations with the same username
// cannot both succeed.
func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	args := []any{
		u.Username,
		u.Name,
		u.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		switch {
		case uniqueViolationError(err, "users_username_key"):
			return ErrDuplicateUsername
		default:
			return err
		}
	}
	return nil
}

func (m *DBModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, name, password_hash, created_at
		FROM users
		WHERE username = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Name, &u.Password.hash, &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, username, name, created_at
		FROM users
		WHERE id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Name, &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// listUsers returns every user with their owned blogs expanded to
// {id, title, author, url}. Password hashes stay in the database.
func (m *DBModel) listUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT u.id, u.username, u.name, u.created_at, b.id, b.title, b.author, b.url
		FROM users u
		LEFT JOIN blogs b ON b.user_id = u.id
		ORDER BY u.id, b.id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	index := map[int]int{}

	for rows.Next() {
		var u User
		var blogID sql.NullInt64
		var title, author, url sql.NullString

		err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.CreatedAt, &blogID, &title, &author, &url)
		if err != nil {
			return nil, err
		}

		i, ok := index[u.ID]
		if !ok {
			u.Blogs = []BlogRef{}
			users = append(users, u)
			i = len(users) - 1
			index[u.ID] = i
		}

		if blogID.Valid {
			users[i].Blogs = append(users[i].Blogs, BlogRef{
				ID:     int(blogID.Int64),
				Title:  title.String,
				Author: author.String,
				URL:    url.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// deleteAllUsers wipes every user. Blogs and comments go with them through
// the cascading foreign keys.
func (m *DBModel) deleteAllUsers(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM users")
	return err
}
