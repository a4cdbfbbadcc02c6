package userservice

import (
	"database/sql"
	"time"

	"github.com/afokou/bloglist/internal/common"
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m  *DBModel
	mb common.MessageProducer
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// Blogs holds the blog references owned by this user, expanded for the
	// user listing. The password hash is never serialized.
	Blogs []BlogRef `json:"blogs"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte
}

// BlogRef is the projection of an owned blog embedded in a user listing.
type BlogRef struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}
