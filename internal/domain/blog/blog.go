// Package blog holds the content types for the store's blog.
package blog

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no post matches the lookup.
	ErrNotFound = errors.New("blog post not found")
	// ErrSlugTaken is returned when a post's slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrTitleRequired is returned when creating a post without a title.
	ErrTitleRequired = errors.New("title is required")
)

// Post is a blog article. Slug is unique and derived from the title when
// not supplied explicitly.
type Post struct {
	ID         string
	Title      string
	Slug       string
	Body       string
	CoverImage string
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Repository defines persistence operations for blog posts. Create must
// return ErrSlugTaken when the slug uniqueness constraint is violated.
type Repository interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	ListPublished(ctx context.Context, page, limit int) ([]Post, error)
	ListAll(ctx context.Context, page, limit int) ([]Post, error)
}
