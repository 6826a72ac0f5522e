package services

import (
	"context"
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/pagination"
	"social-service/internal/repositories"
)

const (
	DefaultCommentLimit = 20
	MaxCommentLimit     = 100
)

// CommentService keeps comment threads exactly one level deep.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	events   observability.Publisher
}

func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, events observability.Publisher) *CommentService {
	return &CommentService{comments: comments, posts: posts, events: events}
}

type CreateCommentInput struct {
	PostID          string  `json:"postId" binding:"required"`
	Text            string  `json:"text" binding:"required"`
	ParentCommentID *string `json:"parentComment"`
}

func (s *CommentService) Create(ctx context.Context, authorID string, in CreateCommentInput) (models.Comment, error) {
	postID := strings.TrimSpace(in.PostID)
	text := strings.TrimSpace(in.Text)
	if postID == "" || text == "" {
		return models.Comment{}, apperrors.InvalidInput("postId and text are required")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return models.Comment{}, storeErr(err, apperrors.ErrPostNotFound, "failed to create comment")
	}

	var parentID *string
	if in.ParentCommentID != nil && strings.TrimSpace(*in.ParentCommentID) != "" {
		id := strings.TrimSpace(*in.ParentCommentID)
		parent, err := s.comments.GetByID(ctx, id)
		if err != nil {
			return models.Comment{}, storeErr(err, apperrors.ErrCommentNotFound, "failed to create comment")
		}
		if parent.PostID != postID {
			return models.Comment{}, apperrors.InvalidInput("parent comment belongs to another post")
		}
		if !parent.IsRoot() {
			return models.Comment{}, apperrors.InvalidInput("replies cannot be replied to")
		}
		parentID = &id
	}

	comment := models.Comment{
		ID:              newID(),
		PostID:          postID,
		UserID:          authorID,
		Text:            text,
		ParentCommentID: parentID,
		Likes:           []string{},
	}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return models.Comment{}, apperrors.Internal("failed to create comment", err)
	}
	publishEvent(ctx, s.events, "comment.created", authorID, comment.ID, map[string]any{"post_id": postID})
	return comment, nil
}

func (s *CommentService) Get(ctx context.Context, id string) (models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return models.Comment{}, storeErr(err, apperrors.ErrCommentNotFound, "failed to load comment")
	}
	return comment, nil
}

// ListForPost returns root comments, newest first.
func (s *CommentService) ListForPost(ctx context.Context, postID, before string, limit int) (pagination.Page[models.Comment], error) {
	cursor, err := pagination.Decode(before)
	if err != nil {
		return pagination.Page[models.Comment]{}, apperrors.InvalidInput("before cursor is malformed")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return pagination.Page[models.Comment]{}, storeErr(err, apperrors.ErrPostNotFound, "failed to load comments")
	}
	limit = clampLimit(limit, DefaultCommentLimit, MaxCommentLimit)
	comments, err := s.comments.ListRoots(ctx, postID, cursor, limit+1)
	if err != nil {
		return pagination.Page[models.Comment]{}, apperrors.Internal("failed to load comments", err)
	}
	return pagination.Build(comments, limit, commentCursor), nil
}

// ListReplies returns the direct replies of a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID, after string, limit int) (pagination.Page[models.Comment], error) {
	cursor, err := pagination.Decode(after)
	if err != nil {
		return pagination.Page[models.Comment]{}, apperrors.InvalidInput("after cursor is malformed")
	}
	if _, err := s.Get(ctx, commentID); err != nil {
		return pagination.Page[models.Comment]{}, err
	}
	limit = clampLimit(limit, DefaultCommentLimit, MaxCommentLimit)
	replies, err := s.comments.ListReplies(ctx, commentID, cursor, limit+1)
	if err != nil {
		return pagination.Page[models.Comment]{}, apperrors.Internal("failed to load replies", err)
	}
	return pagination.Build(replies, limit, commentCursor), nil
}

func (s *CommentService) Update(ctx context.Context, callerID, id, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, apperrors.InvalidInput("text is required")
	}
	comment, err := s.Get(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.UserID != callerID {
		return models.Comment{}, apperrors.Forbidden("only the author can edit this comment")
	}
	updated, err := s.comments.UpdateText(ctx, id, text)
	if err != nil {
		return models.Comment{}, storeErr(err, apperrors.ErrCommentNotFound, "failed to update comment")
	}
	return updated, nil
}

// Delete removes the comment and its direct replies. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, callerID, id string) (int64, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if comment.UserID != callerID {
		return 0, apperrors.Forbidden("only the author can delete this comment")
	}
	removed, err := s.comments.DeleteWithReplies(ctx, id)
	if err != nil {
		return 0, storeErr(err, apperrors.ErrCommentNotFound, "failed to delete comment")
	}
	publishEvent(ctx, s.events, "comment.deleted", callerID, id, map[string]any{"removed": removed})
	return removed, nil
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID string) (models.LikeResult, error) {
	if _, err := s.Get(ctx, commentID); err != nil {
		return models.LikeResult{}, err
	}
	liked, likes, err := s.comments.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return models.LikeResult{}, apperrors.Internal("failed to like comment", err)
	}
	return models.LikeResult{Liked: liked, Likes: likes}, nil
}

func commentCursor(c models.Comment) pagination.Cursor {
	return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
}
