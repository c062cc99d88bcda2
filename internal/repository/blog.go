package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/blog"
)

const blogColumns = `id, title, slug, body, cover_image, published, created_at, updated_at`

const (
	insertPostSQL = `INSERT INTO blog_posts (id, title, slug, body, cover_image, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	updatePostSQL = `UPDATE blog_posts SET
		title = $2, slug = $3, body = $4, cover_image = $5, published = $6, updated_at = now()
		WHERE id = $1`

	deletePostSQL = `DELETE FROM blog_posts WHERE id = $1`

	getPostBySlugSQL = `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = $1`

	listPublishedSQL = `SELECT ` + blogColumns + ` FROM blog_posts
		WHERE published ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	listAllPostsSQL = `SELECT ` + blogColumns + ` FROM blog_posts
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
)

var _ blog.Repository = (*BlogRepository)(nil)

// BlogRepository implements blog.Repository backed by PostgreSQL.
type BlogRepository struct {
	pool *pgxpool.Pool
}

// NewBlogRepository returns a BlogRepository that uses the given pool.
func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// Create inserts a new post. A slug uniqueness violation is surfaced as
// blog.ErrSlugTaken.
func (r *BlogRepository) Create(ctx context.Context, p *blog.Post) error {
	_, err := r.pool.Exec(ctx, insertPostSQL,
		p.ID, p.Title, p.Slug, p.Body, p.CoverImage, p.Published, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return blog.ErrSlugTaken
		}
		return fmt.Errorf("creating blog post %q: %w", p.ID, err)
	}
	return nil
}

// Update persists changes to a post.
func (r *BlogRepository) Update(ctx context.Context, p *blog.Post) error {
	tag, err := r.pool.Exec(ctx, updatePostSQL,
		p.ID, p.Title, p.Slug, p.Body, p.CoverImage, p.Published,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return blog.ErrSlugTaken
		}
		return fmt.Errorf("updating blog post %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// Delete removes a post by ID.
func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePostSQL, id)
	if err != nil {
		return fmt.Errorf("deleting blog post %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// GetBySlug returns the post with the given slug.
func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	rows, err := r.pool.Query(ctx, getPostBySlugSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("getting blog post %q: %w", slug, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("getting blog post %q: %w", slug, err)
	}
	return &p, nil
}

// ListPublished returns a page of published posts, newest first.
func (r *BlogRepository) ListPublished(ctx context.Context, page, limit int) ([]blog.Post, error) {
	return r.list(ctx, listPublishedSQL, page, limit)
}

// ListAll returns a page of all posts for the admin view.
func (r *BlogRepository) ListAll(ctx context.Context, page, limit int) ([]blog.Post, error) {
	return r.list(ctx, listAllPostsSQL, page, limit)
}

func (r *BlogRepository) list(ctx context.Context, sql string, page, limit int) ([]blog.Post, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing blog posts: %w", err)
	}
	return pgx.CollectRows(rows, scanPost)
}

func scanPost(row pgx.CollectableRow) (blog.Post, error) {
	var p blog.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.CoverImage, &p.Published,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
