package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrOwnerForeignKey = errors.New("owner does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// insert persists a new blog for its owner. Ownership is the user_id foreign
// key, so the owner's blog set gains the reference in the same statement that
// creates the blog.
func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	args := []any{blog.Title, blog.Author, blog.URL, blog.Likes, blog.Owner.ID}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.CreatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrOwnerForeignKey
		default:
			return err
		}
	}

	return nil
}

// getBlogById returns a single blog joined with its owner and comments.
func (m *BlogModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.created_at, u.id, u.username, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	row := m.db.QueryRowContext(ctx, query, id)

	var blog Blog
	err := row.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.CreatedAt, &blog.Owner.ID, &blog.Owner.Username, &blog.Owner.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	comments, err := m.getComments(ctx, []int{blog.ID})
	if err != nil {
		return nil, err
	}
	blog.Comments = comments[blog.ID]
	if blog.Comments == nil {
		blog.Comments = []Comment{}
	}

	return &blog, nil
}

// getBlogs returns every blog in creation order with owners and comments
// expanded.
func (m *BlogModel) getBlogs(ctx context.Context) ([]Blog, error) {
	query := `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.created_at, u.id, u.username, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		ORDER BY b.id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	ids := []int{}

	for rows.Next() {
		var blog Blog
		err := rows.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.CreatedAt, &blog.Owner.ID, &blog.Owner.Username, &blog.Owner.Name)
		if err != nil {
			return nil, err
		}
		blog.Comments = []Comment{}
		blogs = append(blogs, blog)
		ids = append(ids, blog.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return blogs, nil
	}

	comments, err := m.getComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range blogs {
		if c, ok := comments[blogs[i].ID]; ok {
			blogs[i].Comments = c
		}
	}

	return blogs, nil
}

// getComments loads the comments for a batch of blog ids in one query.
func (m *BlogModel) getComments(ctx context.Context, blogIDs []int) (map[int][]Comment, error) {
	query := `
		SELECT id, content, blog_id
		FROM comments
		WHERE blog_id = ANY($1)
		ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query, pq.Array(blogIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := map[int][]Comment{}

	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.Content, &c.BlogID)
		if err != nil {
			return nil, err
		}
		comments[c.BlogID] = append(comments[c.BlogID], c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// updateLikes replaces the like count of a blog. Ownership is deliberately
// not required here.
func (m *BlogModel) updateLikes(ctx context.Context, id, likes int) error {
	query := `
		UPDATE blogs
		SET likes = $1
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, likes, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, blogId, userId int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1 AND user_id = $2`

	res, err := m.db.ExecContext(ctx, query, blogId, userId)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// insertComment appends a comment to a blog. The foreign key makes the
// append atomic with creation and rejects unknown blogs.
func (m *BlogModel) insertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (content, blog_id)
		VALUES ($1, $2)
		RETURNING id`

	err := m.db.QueryRowContext(ctx, query, c.Content, c.BlogID).Scan(&c.ID)
	if err != nil {
		switch {
		case ForeignKeyError(err, "comments_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) deleteAllBlogs(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM blogs")
	return err
}
