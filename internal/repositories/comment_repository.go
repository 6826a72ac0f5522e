package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
	"social-service/internal/pagination"
)

// CommentRepository persists one-level comment threads.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (models.Comment, error)
	ListRoots(ctx context.Context, postID string, before *pagination.Cursor, limit int) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID string, after *pagination.Cursor, limit int) ([]models.Comment, error)
	UpdateText(ctx context.Context, id, text string) (models.Comment, error)
	DeleteWithReplies(ctx context.Context, id string) (int64, error)
	ToggleLike(ctx context.Context, commentID, userID string) (bool, []string, error)
}

// CommentRepo is a sqlx implementation of CommentRepository.
type CommentRepo struct {
	db *sqlx.DB
}

// NewCommentRepo constructs a CommentRepo.
func NewCommentRepo(db *sqlx.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const commentSelect = `SELECT c.id, c.post_id, c.user_id, c.text, c.parent_comment_id, c.created_at, c.updated_at,
        COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at) FROM comment_likes l WHERE l.comment_id = c.id), '{}') AS likes
    FROM comments c`

func (r *CommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.QueryRowxContext(ctx, `INSERT INTO comments (id, post_id, user_id, text, parent_comment_id) VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`, comment.ID, comment.PostID, comment.UserID, comment.Text, comment.ParentCommentID).
		Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *CommentRepo) GetByID(ctx context.Context, id string) (models.Comment, error) {
	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, commentSelect+` WHERE c.id=$1`, id)
	return comment, notFound(err)
}

// ListRoots returns top-level comments of a post, newest first.
func (r *CommentRepo) ListRoots(ctx context.Context, postID string, before *pagination.Cursor, limit int) ([]models.Comment, error) {
	comments := []models.Comment{}
	if before == nil {
		err := r.db.SelectContext(ctx, &comments, commentSelect+` WHERE c.post_id=$1 AND c.parent_comment_id IS NULL
            ORDER BY c.created_at DESC, c.id DESC LIMIT $2`, postID, limit)
		return comments, err
	}
	err := r.db.SelectContext(ctx, &comments, commentSelect+` WHERE c.post_id=$1 AND c.parent_comment_id IS NULL
        AND (c.created_at, c.id) < ($2, $3)
        ORDER BY c.created_at DESC, c.id DESC LIMIT $4`, postID, before.CreatedAt, before.ID, limit)
	return comments, err
}

// ListReplies returns direct replies in reading order, oldest first.
func (r *CommentRepo) ListReplies(ctx context.Context, parentID string, after *pagination.Cursor, limit int) ([]models.Comment, error) {
	comments := []models.Comment{}
	if after == nil {
		err := r.db.SelectContext(ctx, &comments, commentSelect+` WHERE c.parent_comment_id=$1
            ORDER BY c.created_at ASC, c.id ASC LIMIT $2`, parentID, limit)
		return comments, err
	}
	err := r.db.SelectContext(ctx, &comments, commentSelect+` WHERE c.parent_comment_id=$1
        AND (c.created_at, c.id) > ($2, $3)
        ORDER BY c.created_at ASC, c.id ASC LIMIT $4`, parentID, after.CreatedAt, after.ID, limit)
	return comments, err
}

func (r *CommentRepo) UpdateText(ctx context.Context, id, text string) (models.Comment, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE comments SET text=$2, updated_at=NOW() WHERE id=$1`, id, text)
	if err != nil {
		return models.Comment{}, err
	}
	if err := mustAffect(res); err != nil {
		return models.Comment{}, err
	}
	return r.GetByID(ctx, id)
}

// DeleteWithReplies removes the comment and its direct replies in one transaction
// and returns how many rows went away.
func (r *CommentRepo) DeleteWithReplies(ctx context.Context, id string) (int64, error) {
	var total int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE parent_comment_id=$1`, id)
		if err != nil {
			return err
		}
		replies, err := res.RowsAffected()
		if err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		total = replies + 1
		return nil
	})
	return total, err
}

func (r *CommentRepo) ToggleLike(ctx context.Context, commentID, userID string) (bool, []string, error) {
	return toggleLike(ctx, r.db, "comment_likes", "comment_id", commentID, userID)
}
