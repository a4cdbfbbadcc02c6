package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/afokou/bloglist/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache, mb common.MessageProducer) *BlogService {
	return &BlogService{m: newBlogModel(db), c: c, mb: mb}
}

type CreateBlogRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	URL     string `json:"url"`
	Likes   *int   `json:"likes"`
	OwnerID int    `json:"-"`
}

// CreateBlog creates a new blog post owned by the requesting user. A missing
// likes value defaults to zero.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	likes := 0
	if req.Likes != nil {
		likes = *req.Likes
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateURL(v, req.URL)
	validateLikes(v, likes)
	validateInt(v, req.OwnerID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := Blog{
		Title:    req.Title,
		Author:   req.Author,
		URL:      req.URL,
		Likes:    likes,
		Owner:    Owner{ID: req.OwnerID},
		Comments: []Comment{},
	}

	err := s.m.insert(ctx, &blog)
	if err != nil {
		return nil, err
	}

	s.invalidate(blog.ID)

	err = s.publish(ctx, common.BlogCreatedKey, struct {
		ID      int    `json:"id"`
		Title   string `json:"title"`
		OwnerID int    `json:"owner_id"`
	}{blog.ID, blog.Title, req.OwnerID})
	if err != nil {
		return nil, err
	}

	// Reload through the owner join so the response carries the expanded
	// owner projection.
	return s.m.getBlogById(ctx, blog.ID)
}

// GetBlogByID returns a blog post by its ID.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		return cached.(*Blog), nil
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), blog)

	return blog, nil
}

// GetBlogs returns every blog with owner and comments expanded. The listing
// is cached until the next mutation.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	if cached, ok := s.c.Get(common.CacheKeyBlogList()); ok {
		return cached.([]Blog), nil
	}

	blogs, err := s.m.getBlogs(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlogList(), blogs)

	return blogs, nil
}

// UpdateLikes replaces the like count of a blog. Any caller may do this;
// ownership is not checked.
func (s *BlogService) UpdateLikes(ctx context.Context, id, likes int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateLikes(v, likes)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err := s.m.updateLikes(ctx, id, likes)
	if err != nil {
		return nil, err
	}

	s.invalidate(id)

	return s.m.getBlogById(ctx, id)
}

// DeleteBlog deletes a blog post on behalf of its owner. Comments are removed
// with the blog.
func (s *BlogService) DeleteBlog(ctx context.Context, blogId, userId int) error {
	v := common.NewValidator()
	validateInt(v, blogId, "id")
	validateInt(v, userId, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	err := s.m.deleteBlog(ctx, blogId, userId)
	if err != nil {
		return err
	}

	s.invalidate(blogId)

	return s.publish(ctx, common.BlogDeletedKey, struct {
		ID int `json:"id"`
	}{blogId})
}

// AddComment appends a comment to an existing blog. Comments are anonymous;
// only the target blog must exist.
func (s *BlogService) AddComment(ctx context.Context, blogId int, content string) (*Comment, error) {
	content = sanitizeContent(content)

	v := common.NewValidator()
	validateInt(v, blogId, "id")
	validateContent(v, content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	comment := Comment{
		Content: content,
		BlogID:  blogId,
	}

	err := s.m.insertComment(ctx, &comment)
	if err != nil {
		return nil, err
	}

	s.invalidate(blogId)

	err = s.publish(ctx, common.CommentCreatedKey, struct {
		ID     int `json:"id"`
		BlogID int `json:"blog_id"`
	}{comment.ID, comment.BlogID})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// Reset removes every blog and comment. Meant for the testing reset endpoint
// only.
func (s *BlogService) Reset(ctx context.Context) error {
	err := s.m.deleteAllBlogs(ctx)
	if err != nil {
		return err
	}

	s.c.Flush()

	return nil
}

func (s *BlogService) invalidate(blogId int) {
	s.c.Delete(common.CacheKeyBlogList())
	s.c.Delete(common.CacheKeyBlog(blogId))
}

func (s *BlogService) publish(ctx context.Context, key common.BindingKey, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, data, key, common.EventExchange)
}
