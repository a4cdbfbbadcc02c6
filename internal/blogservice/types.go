package blogservice

import (
	"database/sql"
	"time"

	"github.com/afokou/bloglist/internal/common"
)

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Author is free text naming who wrote the piece. It is unrelated to
	// ownership, which is carried by the user reference.
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	Owner     Owner     `json:"user"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// Owner is the projection of the owning user embedded in blog responses.
type Owner struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Comment struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	BlogID  int    `json:"blog_id"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m  *BlogModel
	c  *common.Cache
	mb common.MessageProducer
}
