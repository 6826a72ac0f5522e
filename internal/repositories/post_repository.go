package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
	"social-service/internal/pagination"
)

// PostRepository abstracts post persistence and likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (models.Post, error)
	ListByCommunity(ctx context.Context, communityID string, before *pagination.Cursor, limit int) ([]models.Post, error)
	ListAll(ctx context.Context, before *pagination.Cursor, limit int) ([]models.Post, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (bool, []string, error)
}

// PostRepo is a sqlx implementation of PostRepository.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

const postSelect = `SELECT p.id, p.community_id, p.user_id, p.content, p.created_at, p.updated_at,
        COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at) FROM post_likes l WHERE l.post_id = p.id), '{}') AS likes
    FROM posts p`

func (r *PostRepo) Create(ctx context.Context, post *models.Post) error {
	return r.db.QueryRowxContext(ctx, `INSERT INTO posts (id, community_id, user_id, content) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
		post.ID, post.CommunityID, post.UserID, post.Content).Scan(&post.CreatedAt, &post.UpdatedAt)
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, postSelect+` WHERE p.id=$1`, id)
	return post, notFound(err)
}

// ListByCommunity returns posts newest first, strictly before the cursor.
func (r *PostRepo) ListByCommunity(ctx context.Context, communityID string, before *pagination.Cursor, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if before == nil {
		err := r.db.SelectContext(ctx, &posts, postSelect+` WHERE p.community_id=$1 ORDER BY p.created_at DESC, p.id DESC LIMIT $2`, communityID, limit)
		return posts, err
	}
	err := r.db.SelectContext(ctx, &posts, postSelect+` WHERE p.community_id=$1 AND (p.created_at, p.id) < ($2, $3)
        ORDER BY p.created_at DESC, p.id DESC LIMIT $4`, communityID, before.CreatedAt, before.ID, limit)
	return posts, err
}

// ListAll returns posts across every community, newest first.
func (r *PostRepo) ListAll(ctx context.Context, before *pagination.Cursor, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if before == nil {
		err := r.db.SelectContext(ctx, &posts, postSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT $1`, limit)
		return posts, err
	}
	err := r.db.SelectContext(ctx, &posts, postSelect+` WHERE (p.created_at, p.id) < ($1, $2)
        ORDER BY p.created_at DESC, p.id DESC LIMIT $3`, before.CreatedAt, before.ID, limit)
	return posts, err
}

// Delete removes a post; its comments and likes cascade.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, []string, error) {
	return toggleLike(ctx, r.db, "post_likes", "post_id", postID, userID)
}
